package main

import (
	"context"
	"log"
	"os"
)

// waterAnalyzer is the analyzer surface the ingestion handlers depend on.
type waterAnalyzer interface {
	Analyze(ctx context.Context, prompt string, refImage, sampleImage []byte) *Analysis
}

type App struct {
	cfg      Config
	store    Store
	analyzer waterAnalyzer
	images   *ImageStore

	// refImage is the downscaled clean-water reference attached to every AI
	// call as Image 1; nil when no reference is configured or readable.
	refImage []byte
}

func newApp(ctx context.Context, cfg Config) (*App, error) {
	var store Store
	switch cfg.StoreBackend {
	case backendMongo:
		store = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	case backendFile:
		fs, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	return &App{
		cfg:      cfg,
		store:    store,
		analyzer: NewAnalyzer(cfg.OpenAIKey, cfg.AIModels),
		images:   NewImageStore(cfg.UploadsDir),
		refImage: loadReferenceImage(cfg.ReferencePath),
	}, nil
}

func (a *App) close(ctx context.Context) { _ = a.store.Close(ctx) }

func loadReferenceImage(path string) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Printf("reference image not loaded, analysis proceeds without it: %v", err)
		return nil
	}
	scaled, err := downscaleJPEG(b, maxImageDim)
	if err != nil {
		log.Printf("reference image %s not decodable: %v", path, err)
		return nil
	}
	return scaled
}
