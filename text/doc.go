// Package text turns engine detection results into positioned symbols.
//
// The [ExtractSymbols] function walks an [ocr.Result] and reduces every
// recognized glyph to a [model.Symbol]: its text, the centroid of its
// bounding polygon and its vertical extent.
//
//	symbols := text.ExtractSymbols(result)
//	avg := text.AverageHeight(symbols)
//
// The average height is the per-image tolerance that line clustering and
// row tokenizing scale from. It is computed fresh for every image.
package text
