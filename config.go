package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	backendMongo = "mongo"
	backendFile  = "file"
)

type Config struct {
	Port string

	// StoreBackend selects the persistence variant at process start: "mongo" or
	// "file". Call sites never branch on it again.
	StoreBackend string
	MongoURI     string
	MongoDB      string
	DataDir      string

	UploadsDir    string
	ReferencePath string

	OpenAIKey string
	AIModels  []string

	// Fallback coordinate applied when a submission carries no location.
	DefaultLat float64
	DefaultLng float64
}

// mongoCredentials is the service credential shape accepted either inline via
// MONGO_CREDENTIALS or from a file via MONGO_CREDENTIALS_FILE.
type mongoCredentials struct {
	URI string `json:"uri"`
	DB  string `json:"db"`
}

func loadConfig() (Config, error) {
	cfg := Config{
		Port:          getenv("PORT", "8000"),
		StoreBackend:  getenv("STORE_BACKEND", backendFile),
		MongoDB:       getenv("MONGO_DB", "jalrakshak"),
		DataDir:       getenv("DATA_DIR", "server/data"),
		UploadsDir:    getenv("UPLOADS_DIR", "server/uploads"),
		ReferencePath: getenv("REFERENCE_IMAGE", "server/reference_clean.jpg"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		AIModels:      splitList(getenv("AI_MODELS", "gpt-4o,gpt-4o-mini,gpt-4.1-mini,gpt-4-turbo")),
		DefaultLat:    getenvFloat("DEFAULT_LAT", 22.7196),
		DefaultLng:    getenvFloat("DEFAULT_LNG", 75.8577),
	}

	switch cfg.StoreBackend {
	case backendFile:
		// Nothing to resolve; the store creates its data directory on demand.
	case backendMongo:
		uri, db, err := resolveMongoCredentials(cfg.MongoDB)
		if err != nil {
			return cfg, err
		}
		cfg.MongoURI, cfg.MongoDB = uri, db
	default:
		return cfg, fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)", cfg.StoreBackend, backendMongo, backendFile)
	}
	return cfg, nil
}

// resolveMongoCredentials accepts the connection credential as a plain URI, an
// inline JSON blob, or a path to a JSON file, and collapses all three to one URI
// so the store never branches on the credential source. Startup fails fast when
// none is configured.
func resolveMongoCredentials(defaultDB string) (uri, db string, err error) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		return v, defaultDB, nil
	}

	raw := os.Getenv("MONGO_CREDENTIALS")
	if raw == "" {
		path := os.Getenv("MONGO_CREDENTIALS_FILE")
		if path == "" {
			return "", "", fmt.Errorf("mongo backend selected but none of MONGO_URI, MONGO_CREDENTIALS, MONGO_CREDENTIALS_FILE is set")
		}
		b, readErr := os.ReadFile(path)
		if readErr != nil {
			return "", "", fmt.Errorf("read MONGO_CREDENTIALS_FILE: %w", readErr)
		}
		raw = string(b)
	}

	var creds mongoCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return "", "", fmt.Errorf("parse mongo credentials: %w", err)
	}
	if creds.URI == "" {
		return "", "", fmt.Errorf("mongo credentials missing \"uri\"")
	}
	if creds.DB == "" {
		creds.DB = defaultDB
	}
	return creds.URI, creds.DB, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
