package gridshot

import (
	"time"

	"github.com/tsawler/gridshot/model"
	"github.com/tsawler/gridshot/tables"
)

// ImageResult is the outcome for one image of a batch.
type ImageResult struct {
	// Index is the image's position in the batch (0-based)
	Index int

	// Name is the image name
	Name string

	// Table is the filtered table for this image; empty when Err is set
	Table model.Table

	// Detection holds pipeline details; nil when Err is set
	Detection *tables.Detection

	// OCRDuration is how long the engine call took
	OCRDuration time.Duration

	// Err is the recognition or format error, if any
	Err error
}

// Failed reports whether the image contributed no rows because of an error
func (r ImageResult) Failed() bool {
	return r.Err != nil
}

// BatchStats summarizes a completed batch.
type BatchStats struct {
	// ID identifies the batch in logs and export metadata
	ID string

	// Images is the number of images submitted
	Images int

	// Failed is the number of images that produced a warning
	Failed int

	// RawRows counts rows before body filtering, over all images
	RawRows int

	// KeptRows counts rows after body filtering, over all images
	KeptRows int

	// Duplicates counts rows removed by the cross-image merge
	Duplicates int

	// Duration is the wall time of the batch
	Duration time.Duration
}

// Observer receives per-image and per-batch notifications. Implementations
// must be safe for concurrent use: ObserveImage is called from the worker
// goroutines.
type Observer interface {
	ObserveImage(ImageResult)
	ObserveBatch(BatchStats)
}

type nopObserver struct{}

func (nopObserver) ObserveImage(ImageResult) {}
func (nopObserver) ObserveBatch(BatchStats)  {}
