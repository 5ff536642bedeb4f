// Package ocr defines the text-detection result consumed by table
// reconstruction and the engines that produce it.
//
// An [Engine] turns raw image bytes into a [Result], a hierarchy of pages,
// blocks, paragraphs, words and symbols where every symbol carries its text
// and a 4-vertex polygon in image pixel coordinates.
//
// # Engines
//
//   - [Tesseract] - local recognition through gosseract. It requires
//     Tesseract to be installed and the "ocr" build tag:
//
//	go build -tags ocr
//
//     Without the tag every Tesseract method returns [ErrOCRNotEnabled].
//     On macOS install via "brew install tesseract", on Ubuntu/Debian via
//     "apt-get install tesseract-ocr libtesseract-dev".
//
//   - [Vision] - Google Cloud Vision DOCUMENT_TEXT_DETECTION.
//
// # Decorators
//
// Engines compose with [WithRateLimit] (token bucket with backoff after a
// 429) and [WithTimeout] (per-call deadline):
//
//	engine := ocr.WithRateLimit(ocr.WithTimeout(vision, 30*time.Second), ocr.DefaultRateLimit)
//	result, err := engine.Recognize(ctx, pngBytes)
package ocr
