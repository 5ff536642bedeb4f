//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/gridshot/format"
	"github.com/tsawler/gridshot/model"
)

// Tesseract wraps a gosseract client as an Engine.
// A gosseract client holds one image at a time, so calls are serialised.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a new Tesseract engine.
// The engine should be closed when no longer needed to release resources.
func NewTesseract() (*Tesseract, error) {
	client := gosseract.NewClient()
	return &Tesseract{client: client}, nil
}

// Close releases OCR resources.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		err := t.client.Close()
		t.client = nil
		return err
	}
	return nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+jpn").
// Default is "eng" (English).
func (t *Tesseract) SetLanguage(lang string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.SetLanguage(lang)
}

// SetPageSegMode sets the page segmentation mode.
// Table screenshots usually work best with PSM_SPARSE_TEXT or PSM_AUTO.
func (t *Tesseract) SetPageSegMode(mode PageSegMode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.SetPageSegMode(gosseract.PageSegMode(mode))
}

// Recognize performs OCR on image data and returns the symbol hierarchy.
// WebP and GIF input is converted to PNG first.
func (t *Tesseract) Recognize(ctx context.Context, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, _, err := format.Normalize(data)
	if err != nil {
		return nil, err
	}
	info, err := format.Probe(data)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil, fmt.Errorf("tesseract: engine closed")
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	words, err := t.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	symbols, err := t.client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	return assemble(toBoxes(words), toBoxes(symbols), info.Width, info.Height), nil
}

func toBoxes(in []gosseract.BoundingBox) []box {
	out := make([]box, 0, len(in))
	for _, b := range in {
		out = append(out, box{
			rect:       rectToBBox(b.Box),
			text:       b.Word,
			confidence: b.Confidence,
			block:      b.BlockNum,
			par:        b.ParNum,
		})
	}
	return out
}

func rectToBBox(r image.Rectangle) model.BBox {
	return model.NewBBox(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}
