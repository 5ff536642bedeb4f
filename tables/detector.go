package tables

import (
	"github.com/tsawler/gridshot/layout"
	"github.com/tsawler/gridshot/model"
	"github.com/tsawler/gridshot/ocr"
	"github.com/tsawler/gridshot/text"
)

// Config holds detector configuration
type Config struct {
	// Line controls vertical clustering of symbols into lines
	Line layout.LineConfig

	// Row controls horizontal splitting of lines into cells
	Row layout.RowConfig

	// Body controls which rows count as the table body
	Body BodyConfig
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Line: layout.DefaultLineConfig(),
		Row:  layout.DefaultRowConfig(),
		Body: DefaultBodyConfig(),
	}
}

// Detection is the outcome of running the pipeline on one image
type Detection struct {
	// Table is the filtered table body
	Table model.Table

	// Rows are all tokenized rows, one per line, before filtering
	Rows []model.Row

	// Discarded are the rows the body filter rejected
	Discarded []model.Row

	// Lines are the clustered text lines
	Lines []layout.Line

	// SymbolCount is the number of symbols extracted from the result
	SymbolCount int

	// AverageHeight is the tolerance unit used for this image
	AverageHeight float64

	// ModeColumns is the dominant row length (0 when there were no rows)
	ModeColumns int
}

// IsEmpty returns true if no table rows were found
func (d *Detection) IsEmpty() bool {
	return d == nil || d.Table.IsEmpty()
}

// Detector turns one engine result into a filtered table. A Detector holds
// no per-image state and is safe for concurrent use.
type Detector struct {
	clusterer *layout.LineClusterer
	tokenizer *layout.RowTokenizer
	filter    *BodyFilter
}

// NewDetector creates a detector with default configuration
func NewDetector() *Detector {
	return NewDetectorWithConfig(DefaultConfig())
}

// NewDetectorWithConfig creates a detector with custom configuration
func NewDetectorWithConfig(config Config) *Detector {
	return &Detector{
		clusterer: layout.NewLineClustererWithConfig(config.Line),
		tokenizer: layout.NewRowTokenizerWithConfig(config.Row),
		filter:    NewBodyFilterWithConfig(config.Body),
	}
}

// Detect runs extraction, clustering, tokenizing and filtering. A result
// without symbols yields an empty Detection, never an error.
func (d *Detector) Detect(res *ocr.Result) *Detection {
	symbols := text.ExtractSymbols(res)
	if len(symbols) == 0 {
		return &Detection{}
	}

	avg := text.AverageHeight(symbols)
	lines := d.clusterer.Cluster(symbols, avg)
	rows := d.tokenizer.Tokenize(lines, avg)
	table, discarded := d.filter.Filter(rows)
	mode, _ := ModeColumns(rows)

	return &Detection{
		Table:         table,
		Rows:          rows,
		Discarded:     discarded,
		Lines:         lines,
		SymbolCount:   len(symbols),
		AverageHeight: avg,
		ModeColumns:   mode,
	}
}
