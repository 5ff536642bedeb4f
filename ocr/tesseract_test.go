package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestPNG creates a simple PNG image with a text-like block for testing.
// OCR might or might not recognize anything in it.
func createTestPNG(width, height int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	for x := 10; x < 50; x++ {
		for y := 10; y < 30; y++ {
			img.Set(x, y, color.Black)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestNewTesseract(t *testing.T) {
	engine, err := NewTesseract()
	if err != nil {
		if !errors.Is(err, ErrOCRNotEnabled) {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Skipf("Tesseract not available: %v", err)
	}
	defer engine.Close()

	if engine == nil {
		t.Error("Expected non-nil engine")
	}
}

func TestTesseractRecognize(t *testing.T) {
	engine, err := NewTesseract()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer engine.Close()

	// The image is just a rectangle; only check the call succeeds
	if _, err := engine.Recognize(context.Background(), createTestPNG(100, 50)); err != nil {
		t.Errorf("Recognize failed: %v", err)
	}
}

func TestTesseractRecognize_EmptyImage(t *testing.T) {
	engine, err := NewTesseract()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Recognize(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}

func TestTesseractSetLanguage(t *testing.T) {
	engine, err := NewTesseract()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer engine.Close()

	// English should always be available
	if err := engine.SetLanguage("eng"); err != nil {
		t.Errorf("SetLanguage failed: %v", err)
	}
}

func TestTesseractClose(t *testing.T) {
	engine, err := NewTesseract()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}

	if err := engine.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	// Second close should also be safe
	if err := engine.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
