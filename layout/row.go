package layout

import (
	"strings"

	"github.com/tsawler/gridshot/model"
)

// RowConfig holds configuration for row tokenizing
type RowConfig struct {
	// GapFactor multiplies the average symbol height to give the
	// horizontal step at which a new cell starts (default: 2.0)
	GapFactor float64
}

// DefaultRowConfig returns sensible default configuration
func DefaultRowConfig() RowConfig {
	return RowConfig{GapFactor: 2.0}
}

// RowTokenizer splits lines into cells by horizontal gaps
type RowTokenizer struct {
	config RowConfig
}

// NewRowTokenizer creates a row tokenizer with default configuration
func NewRowTokenizer() *RowTokenizer {
	return &RowTokenizer{config: DefaultRowConfig()}
}

// NewRowTokenizerWithConfig creates a row tokenizer with custom configuration
func NewRowTokenizerWithConfig(config RowConfig) *RowTokenizer {
	return &RowTokenizer{config: config}
}

// Tokenize produces one row per line, in line order
func (t *RowTokenizer) Tokenize(lines []Line, avgHeight float64) []model.Row {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]model.Row, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, t.TokenizeLine(line, avgHeight))
	}
	return rows
}

// TokenizeLine walks the line's symbols left to right. A symbol whose X
// is less than GapFactor*avgHeight past the previous symbol's X extends
// the current cell; otherwise the cell is flushed and a new one started.
// An empty line yields an empty row.
func (t *RowTokenizer) TokenizeLine(line Line, avgHeight float64) model.Row {
	if len(line.Symbols) == 0 {
		return model.Row{}
	}

	gap := t.config.GapFactor * avgHeight

	var row model.Row
	var word strings.Builder
	prevX := line.Symbols[0].X

	for i, s := range line.Symbols {
		if i > 0 && !(s.X-prevX < gap) {
			row = append(row, word.String())
			word.Reset()
		}
		word.WriteString(s.Text)
		prevX = s.X
	}

	return append(row, word.String())
}
