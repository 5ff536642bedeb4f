//go:build !ocr

package ocr

import "context"

// Tesseract is a stub engine used when the "ocr" build tag is not set.
// All methods return ErrOCRNotEnabled.
//
// To enable OCR, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
type Tesseract struct{}

// NewTesseract returns an error indicating OCR support is not enabled.
// To enable OCR, rebuild with: go build -tags ocr
func NewTesseract() (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub engine.
// It is safe to call on a nil engine.
func (t *Tesseract) Close() error {
	return nil
}

// SetLanguage returns an error indicating OCR support is not enabled.
func (t *Tesseract) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetPageSegMode returns an error indicating OCR support is not enabled.
func (t *Tesseract) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}

// Recognize returns an error indicating OCR support is not enabled.
func (t *Tesseract) Recognize(ctx context.Context, data []byte) (*Result, error) {
	return nil, ErrOCRNotEnabled
}
