package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

// Engine recognizes text in a single image.
type Engine interface {
	// Recognize runs text detection on raw image bytes (PNG, JPEG, ...).
	// A valid image without text yields an empty Result and a nil error.
	Recognize(ctx context.Context, image []byte) (*Result, error)
}

// EngineFunc adapts an ordinary function to the Engine interface.
type EngineFunc func(ctx context.Context, image []byte) (*Result, error)

// Recognize calls f(ctx, image).
func (f EngineFunc) Recognize(ctx context.Context, image []byte) (*Result, error) {
	return f(ctx, image)
}

var (
	// ErrOCRNotEnabled is returned when Tesseract functions are called but
	// OCR support was not compiled in. Rebuild with -tags ocr to enable it.
	ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

	// ErrEmptyImage is returned when an engine is handed zero bytes.
	ErrEmptyImage = errors.New("ocr: empty image")

	// ErrRateLimited indicates the engine's request quota was exceeded.
	ErrRateLimited = errors.New("ocr: rate limit exceeded")

	// ErrTimeout indicates a recognition call exceeded its deadline.
	ErrTimeout = errors.New("ocr: recognition timed out")
)

// IsRateLimited returns true if the error indicates rate limiting, either
// ErrRateLimited or an HTTP 429 from a Google API.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

type timeoutEngine struct {
	next    Engine
	timeout time.Duration
}

// WithTimeout bounds every Recognize call on e by d. A non-positive d
// returns e unchanged. Engines that ignore their context (cgo calls) keep
// running in the background after the deadline; the caller is released.
func WithTimeout(e Engine, d time.Duration) Engine {
	if d <= 0 {
		return e
	}
	return &timeoutEngine{next: e, timeout: d}
}

type recognizeResult struct {
	res *Result
	err error
}

func (t *timeoutEngine) Recognize(ctx context.Context, image []byte) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan recognizeResult, 1)
	go func() {
		res, err := t.next.Recognize(ctx, image)
		done <- recognizeResult{res: res, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %v", ErrTimeout, t.timeout, r.err)
		}
		return r.res, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, t.timeout)
		}
		return nil, ctx.Err()
	}
}
