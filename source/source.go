// Package source supplies the ordered image batches that tables are
// reconstructed from: files on disk, a directory, a saved HTML chat export,
// or attachment URLs.
package source

import (
	"context"
	"errors"
	"sort"
	"time"
)

// MaxImageBytes caps the size of a single image read by any source.
const MaxImageBytes = 32 << 20

var (
	// ErrNoImages is returned when a source resolves to zero images.
	ErrNoImages = errors.New("source: no images found")

	// ErrTooLarge is returned when an image exceeds MaxImageBytes.
	ErrTooLarge = errors.New("source: image exceeds size limit")
)

// Image is one raw image in a batch.
type Image struct {
	// Name identifies the image in warnings and logs (file name or URL).
	Name string

	// Data holds the encoded image bytes.
	Data []byte

	// Time is when the image was posted or last modified. It is zero when
	// unknown.
	Time time.Time
}

// Source produces images in submission order.
type Source interface {
	Images(ctx context.Context) ([]Image, error)
}

// Func adapts an ordinary function to the Source interface.
type Func func(ctx context.Context) ([]Image, error)

// Images calls f(ctx).
func (f Func) Images(ctx context.Context) ([]Image, error) {
	return f(ctx)
}

// Static returns a Source that always yields the given images.
func Static(images ...Image) Source {
	return Func(func(context.Context) ([]Image, error) {
		return images, nil
	})
}

// Range limits a batch to recent images.
type Range struct {
	// Count keeps at most this many of the newest images.
	Count int

	// Window keeps only images posted within this duration before the
	// newest image.
	Window time.Duration
}

// IsZero reports whether no limit was requested.
func (r Range) IsZero() bool {
	return r.Count == 0 && r.Window == 0
}

// Select applies r to images. A zero Range returns every image in its
// original order. Otherwise images are ordered oldest first, the newest
// Count are kept (Count < 1 means 1 unless a Window is set, in which case
// it means no count limit), and a positive Window then drops images older
// than newest.Time - Window.
func Select(images []Image, r Range) []Image {
	out := make([]Image, len(images))
	copy(out, images)
	if r.IsZero() || len(out) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	count := r.Count
	if count < 1 && r.Window <= 0 {
		count = 1
	}
	if count > 0 && len(out) > count {
		out = out[len(out)-count:]
	}

	if r.Window > 0 {
		cutoff := out[len(out)-1].Time.Add(-r.Window)
		kept := out[:0]
		for _, img := range out {
			if !img.Time.Before(cutoff) {
				kept = append(kept, img)
			}
		}
		out = kept
	}
	return out
}

// Selected wraps src so that its images are filtered through Select.
func Selected(src Source, r Range) Source {
	return Func(func(ctx context.Context) ([]Image, error) {
		images, err := src.Images(ctx)
		if err != nil {
			return nil, err
		}
		return Select(images, r), nil
	})
}
