package main

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// maxImageDim bounds the longer side of images submitted to the AI call. The
// stored artifact keeps its original resolution.
const maxImageDim = 800

// ImageStore writes uploaded sample images into a content directory under
// collision-free names and hands back the path the serving layer exposes.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore { return &ImageStore{dir: dir} }

// Save writes the full payload atomically and returns a /uploads/... reference.
// On any failure no reference is returned and no partial file survives.
func (s *ImageStore) Save(content []byte, originalFilename string) (string, error) {
	ext := filepath.Ext(originalFilename)
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &StorageError{Op: "create uploads dir", Err: err}
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", &StorageError{Op: "store image", Err: err}
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &StorageError{Op: "store image", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", &StorageError{Op: "store image", Err: err}
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", &StorageError{Op: "store image", Err: err}
	}
	return "/uploads/" + name, nil
}

// downscaleJPEG decodes content, scales it down so the longer side is at most
// maxDim, and re-encodes as JPEG for submission to the AI call. Images already
// within bounds are only re-encoded.
func downscaleJPEG(content []byte, maxDim int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxDim || h > maxDim {
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
