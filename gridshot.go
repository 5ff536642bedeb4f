// Package gridshot provides a fluent API for reconstructing tables from
// screenshots.
//
// Basic usage:
//
//	table, warnings, err := gridshot.FromFiles("shot1.png", "shot2.png").
//	    Engine(engine).
//	    Table(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", gridshot.FormatWarnings(warnings))
//	}
//
// Every image is recognized by the configured OCR engine and turned into a
// table on its own. The per-image tables are then concatenated in the order
// the images were given and repeated rows are dropped, so overlapping
// screenshots of a scrolling table merge into one.
//
// An image whose recognition fails contributes nothing and is reported as
// a Warning; it never fails the batch. Cancelling the context does.
//
// For lower-level control, the tables, layout and text packages expose the
// individual pipeline stages.
package gridshot

import (
	"github.com/tsawler/gridshot/source"
)

// FromImages creates an Extractor over in-memory images, processed in the
// order given.
//
// Example:
//
//	table, _, err := gridshot.FromImages(source.Image{Name: "a.png", Data: data}).
//	    Engine(engine).
//	    Table(ctx)
func FromImages(images ...source.Image) *Extractor {
	return FromSource(source.Static(images...))
}

// FromSource creates an Extractor that reads its images from src when a
// terminal operation runs.
//
// Example:
//
//	table, _, err := gridshot.FromSource(source.Dir("screenshots")).
//	    Engine(engine).
//	    Select(source.Range{Count: 5}).
//	    Table(ctx)
func FromSource(src source.Source) *Extractor {
	return &Extractor{
		source:  src,
		options: defaultOptions(),
	}
}

// FromFiles creates an Extractor over image files, processed in argument
// order.
func FromFiles(paths ...string) *Extractor {
	return FromSource(source.Files(paths...))
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	batch := gridshot.Must(gridshot.FromFiles("a.png").Engine(engine).Run(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustTable is a helper that wraps a call to Table() or Tables() and panics
// if the error is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	table := gridshot.MustTable(gridshot.FromFiles("a.png").Engine(engine).Table(ctx))
func MustTable[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
