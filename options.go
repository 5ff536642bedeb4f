package gridshot

import (
	"go.uber.org/zap"

	"github.com/tsawler/gridshot/ocr"
	"github.com/tsawler/gridshot/source"
	"github.com/tsawler/gridshot/tables"
)

// DefaultConcurrency is the number of images recognized at once.
const DefaultConcurrency = 4

// ExtractOptions holds configuration for a batch.
type ExtractOptions struct {
	engine      ocr.Engine
	concurrency int
	logger      *zap.Logger
	observer    Observer
	detector    tables.Config
	selection   source.Range
	batchID     string
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
		observer:    nopObserver{},
		detector:    tables.DefaultConfig(),
	}
}
