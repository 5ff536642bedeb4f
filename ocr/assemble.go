package ocr

import (
	"github.com/tsawler/gridshot/model"
)

// box is an engine-neutral rectangle with its recognized text and position
// in the block/paragraph numbering Tesseract reports.
type box struct {
	rect       model.BBox
	text       string
	confidence float64
	block      int
	par        int
}

type paraKey struct {
	block, par int
}

type wordRef struct {
	block, para, word int
	rect              model.BBox
}

// assemble rebuilds the page/block/paragraph/word/symbol hierarchy from
// word boxes and symbol boxes. Each symbol joins the first word whose box
// contains its centroid. Words no symbol landed in are split evenly into
// one symbol per rune; symbols outside every word end up as single-symbol
// words in a trailing block.
func assemble(words, symbols []box, width, height int) *Result {
	page := Page{Width: width, Height: height}

	blockIndex := make(map[int]int)
	paraIndex := make(map[paraKey]int)
	refs := make([]wordRef, 0, len(words))

	for _, w := range words {
		bi, ok := blockIndex[w.block]
		if !ok {
			bi = len(page.Blocks)
			blockIndex[w.block] = bi
			page.Blocks = append(page.Blocks, Block{})
		}
		key := paraKey{w.block, w.par}
		pi, ok := paraIndex[key]
		if !ok {
			pi = len(page.Blocks[bi].Paragraphs)
			paraIndex[key] = pi
			page.Blocks[bi].Paragraphs = append(page.Blocks[bi].Paragraphs, Paragraph{})
		}
		para := &page.Blocks[bi].Paragraphs[pi]
		refs = append(refs, wordRef{block: bi, para: pi, word: len(para.Words), rect: w.rect})
		para.Words = append(para.Words, Word{})
	}

	var orphans []Word
	for _, s := range symbols {
		sym := Symbol{
			Text:       s.text,
			Vertices:   quadFromBBox(s.rect),
			Confidence: s.confidence,
		}
		center := s.rect.Center()
		placed := false
		for _, ref := range refs {
			if ref.rect.Contains(center) {
				w := &page.Blocks[ref.block].Paragraphs[ref.para].Words[ref.word]
				w.Symbols = append(w.Symbols, sym)
				placed = true
				break
			}
		}
		if !placed {
			orphans = append(orphans, Word{Symbols: []Symbol{sym}})
		}
	}

	for i, ref := range refs {
		w := &page.Blocks[ref.block].Paragraphs[ref.para].Words[ref.word]
		if len(w.Symbols) == 0 {
			w.Symbols = splitWord(words[i])
		}
	}

	if len(orphans) > 0 {
		page.Blocks = append(page.Blocks, Block{
			Paragraphs: []Paragraph{{Words: orphans}},
		})
	}

	if len(page.Blocks) == 0 {
		return &Result{}
	}
	return &Result{Pages: []Page{page}}
}

// splitWord divides a word box horizontally into one symbol per rune.
func splitWord(w box) []Symbol {
	runes := []rune(w.text)
	if len(runes) == 0 {
		return nil
	}
	step := w.rect.Width / float64(len(runes))
	out := make([]Symbol, len(runes))
	for i, r := range runes {
		x0 := w.rect.X + step*float64(i)
		out[i] = Symbol{
			Text:       string(r),
			Vertices:   model.NewQuadFromRect(x0, w.rect.Top(), x0+step, w.rect.Bottom()),
			Confidence: w.confidence,
		}
	}
	return out
}

func quadFromBBox(b model.BBox) model.Quad {
	return model.NewQuadFromRect(b.Left(), b.Top(), b.Right(), b.Bottom())
}
