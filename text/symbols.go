package text

import (
	"github.com/tsawler/gridshot/model"
	"github.com/tsawler/gridshot/ocr"
)

// ExtractSymbols flattens a detection result into one Symbol per leaf
// glyph. Traversal follows the result hierarchy; callers must not rely on
// the order since clustering re-sorts. A nil or empty result yields nil.
func ExtractSymbols(res *ocr.Result) []model.Symbol {
	var symbols []model.Symbol
	res.Walk(func(s ocr.Symbol) {
		symbols = append(symbols, model.NewSymbol(s.Text, s.Vertices))
	})
	return symbols
}

// AverageHeight returns the mean symbol height, or 0 for no symbols.
func AverageHeight(symbols []model.Symbol) float64 {
	if len(symbols) == 0 {
		return 0
	}
	var sum float64
	for _, s := range symbols {
		sum += s.Height
	}
	return sum / float64(len(symbols))
}
