package main

import (
	"context"
	"fmt"

	"github.com/tsawler/gridshot/internal/config"
	"github.com/tsawler/gridshot/ocr"
)

// engineFactory builds the OCR engine; tests replace it.
var engineFactory = newEngine

// newEngine builds the configured engine behind a per-call timeout and a
// shared rate limit. The returned func releases engine resources.
func newEngine(ctx context.Context, cfg config.OCRConfig) (ocr.Engine, func() error, error) {
	var (
		engine  ocr.Engine
		closeFn = func() error { return nil }
	)

	switch cfg.Engine {
	case config.EngineTesseract:
		t, err := ocr.NewTesseract()
		if err != nil {
			return nil, nil, fmt.Errorf("creating tesseract engine: %w", err)
		}
		if cfg.Language != "" {
			if err := t.SetLanguage(cfg.Language); err != nil {
				t.Close()
				return nil, nil, fmt.Errorf("setting language: %w", err)
			}
		}
		if err := t.SetPageSegMode(ocr.PageSegMode(cfg.PageSegMode)); err != nil {
			t.Close()
			return nil, nil, fmt.Errorf("setting page segmentation mode: %w", err)
		}
		engine, closeFn = t, t.Close

	case config.EngineVision:
		v, err := ocr.NewVision(ctx, ocr.VisionConfig{
			CredentialsFile: cfg.CredentialsFile,
			APIKey:          cfg.APIKey,
			LanguageHints:   cfg.LanguageHints,
			Endpoint:        cfg.Endpoint,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating vision engine: %w", err)
		}
		engine = v

	default:
		return nil, nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
	}

	// the timeout covers the engine call only, not the wait for a token
	engine = ocr.WithTimeout(engine, cfg.Timeout)
	engine = ocr.WithRateLimit(engine, cfg.RateLimit())
	return engine, closeFn, nil
}
