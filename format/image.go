package format

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Decoders for image.DecodeConfig and image.Decode.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info describes an image without decoding its pixels.
type Info struct {
	Format Format
	Width  int
	Height int
}

// Probe reads the image header and returns its format and dimensions.
func Probe(data []byte) (Info, error) {
	f, err := DetectImage(data)
	if err != nil {
		return Info{}, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("reading %s header: %w", f, err)
	}
	return Info{Format: f, Width: cfg.Width, Height: cfg.Height}, nil
}

// needsConversion lists formats Leptonica builds commonly lack.
func needsConversion(f Format) bool {
	return f == WebP || f == GIF
}

// Normalize converts images in formats Tesseract cannot read reliably
// (WebP, GIF) to PNG. Other images are returned unchanged. The returned
// Format is the format of the returned bytes.
func Normalize(data []byte) ([]byte, Format, error) {
	f, err := DetectImage(data)
	if err != nil {
		return nil, Unknown, err
	}
	if !needsConversion(f) {
		return data, f, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Unknown, fmt.Errorf("decoding %s: %w", f, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, Unknown, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), PNG, nil
}
