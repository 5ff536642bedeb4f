package ocr

import (
	"strings"

	"github.com/tsawler/gridshot/model"
)

// Result is the hierarchical text-detection output for one image
type Result struct {
	Pages []Page
}

// Page is one page of a detection result. Width and Height are zero when
// the engine does not report them.
type Page struct {
	Width  int
	Height int
	Blocks []Block
}

// Block is a region of text on a page
type Block struct {
	Paragraphs []Paragraph
}

// Paragraph is a run of words inside a block
type Paragraph struct {
	Words []Word
}

// Word is a run of symbols the engine considered one word
type Word struct {
	Symbols []Symbol
}

// Symbol is a single recognized glyph with its bounding polygon
type Symbol struct {
	Text       string
	Vertices   model.Quad
	Confidence float64
}

// Walk calls fn for every symbol in the result, pages first, then blocks,
// paragraphs and words. It is safe to call on a nil Result.
func (r *Result) Walk(fn func(Symbol)) {
	if r == nil {
		return
	}
	for _, page := range r.Pages {
		for _, block := range page.Blocks {
			for _, para := range block.Paragraphs {
				for _, word := range para.Words {
					for _, sym := range word.Symbols {
						fn(sym)
					}
				}
			}
		}
	}
}

// SymbolCount returns the number of leaf symbols in the result
func (r *Result) SymbolCount() int {
	n := 0
	r.Walk(func(Symbol) { n++ })
	return n
}

// IsEmpty returns true if the result holds no symbols
func (r *Result) IsEmpty() bool {
	return r.SymbolCount() == 0
}

// Text returns the recognized text with words separated by spaces and
// paragraphs by newlines. It is meant for logging and debugging; table
// reconstruction works from symbol geometry instead.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	var lines []string
	for _, page := range r.Pages {
		for _, block := range page.Blocks {
			for _, para := range block.Paragraphs {
				words := make([]string, 0, len(para.Words))
				for _, word := range para.Words {
					var sb strings.Builder
					for _, sym := range word.Symbols {
						sb.WriteString(sym.Text)
					}
					words = append(words, sb.String())
				}
				lines = append(lines, strings.Join(words, " "))
			}
		}
	}
	return strings.Join(lines, "\n")
}
