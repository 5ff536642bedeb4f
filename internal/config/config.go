// Package config provides configuration loading for gridshot.
//
// Configuration is assembled from built-in defaults, an optional YAML file
// and GRIDSHOT_-prefixed environment variables, in that order of precedence
// (lowest first).
package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // export.time_zone defaults to Asia/Tokyo
	"unicode/utf8"

	"go.uber.org/zap/zapcore"

	"github.com/tsawler/gridshot/export"
	"github.com/tsawler/gridshot/layout"
	"github.com/tsawler/gridshot/ocr"
	"github.com/tsawler/gridshot/tables"
)

// Recognized OCR engine names.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

// Config holds the complete gridshot configuration.
type Config struct {
	OCR      OCRConfig      `koanf:"ocr"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Export   ExportConfig   `koanf:"export"`
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
}

// OCRConfig selects and tunes the recognition engine.
type OCRConfig struct {
	Engine          string        `koanf:"engine"`
	Language        string        `koanf:"language"`       // Tesseract language list, e.g. "eng+jpn"
	LanguageHints   []string      `koanf:"language_hints"` // Vision BCP-47 hints
	CredentialsFile string        `koanf:"credentials_file"`
	APIKey          string        `koanf:"api_key"`
	Endpoint        string        `koanf:"endpoint"`
	Rate            float64       `koanf:"rate"` // requests per second
	Burst           int           `koanf:"burst"`
	Backoff         time.Duration `koanf:"backoff"`
	Timeout         time.Duration `koanf:"timeout"`
	PageSegMode     int           `koanf:"page_seg_mode"`
}

// RateLimit returns the engine rate limit settings.
func (c OCRConfig) RateLimit() ocr.RateLimitConfig {
	return ocr.RateLimitConfig{
		RequestsPerSecond: c.Rate,
		BurstSize:         c.Burst,
		Backoff:           c.Backoff,
	}
}

// PipelineConfig holds the table reconstruction tunables.
type PipelineConfig struct {
	Concurrency   int     `koanf:"concurrency"`
	LineTolerance float64 `koanf:"line_tolerance"`
	GapFactor     float64 `koanf:"gap_factor"`
	Slack         int     `koanf:"slack"`
}

// Detector returns the per-image pipeline configuration.
func (c PipelineConfig) Detector() tables.Config {
	return tables.Config{
		Line: layout.LineConfig{Tolerance: c.LineTolerance},
		Row:  layout.RowConfig{GapFactor: c.GapFactor},
		Body: tables.BodyConfig{Slack: c.Slack},
	}
}

// ExportConfig controls the table file written by the CLI and the server.
type ExportConfig struct {
	Format    string   `koanf:"format"`
	BOM       bool     `koanf:"bom"`
	CRLF      bool     `koanf:"crlf"`
	Delimiter string   `koanf:"delimiter"`
	Header    []string `koanf:"header"`
	Prefix    string   `koanf:"prefix"`    // output filename prefix
	TimeZone  string   `koanf:"time_zone"` // zone used for output filenames
}

// Exporter returns the export settings for the configured format.
func (c ExportConfig) Exporter() (export.Config, error) {
	f, err := export.ParseFormat(c.Format)
	if err != nil {
		return export.Config{}, err
	}

	cfg := export.DefaultConfig()
	cfg.Format = f
	cfg.BOM = c.BOM
	cfg.CRLF = c.CRLF
	cfg.Header = c.Header
	if f == export.FormatTSV {
		cfg.Delimiter = '\t'
	} else if c.Delimiter != "" {
		r, _ := utf8.DecodeRuneInString(c.Delimiter)
		cfg.Delimiter = r
	}
	return cfg, nil
}

// Location loads the configured time zone.
func (c ExportConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error

	switch c.OCR.Engine {
	case EngineTesseract, EngineVision:
	default:
		errs = append(errs, fmt.Errorf("ocr.engine must be %q or %q, got %q", EngineTesseract, EngineVision, c.OCR.Engine))
	}
	if c.OCR.Rate < 0 {
		errs = append(errs, errors.New("ocr.rate must not be negative"))
	}
	if c.OCR.Timeout < 0 {
		errs = append(errs, errors.New("ocr.timeout must not be negative"))
	}
	if c.OCR.PageSegMode < int(ocr.PSM_OSD_ONLY) || c.OCR.PageSegMode > int(ocr.PSM_RAW_LINE) {
		errs = append(errs, fmt.Errorf("ocr.page_seg_mode out of range: %d", c.OCR.PageSegMode))
	}

	if c.Pipeline.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("pipeline.concurrency must be at least 1, got %d", c.Pipeline.Concurrency))
	}
	if c.Pipeline.LineTolerance <= 0 {
		errs = append(errs, errors.New("pipeline.line_tolerance must be positive"))
	}
	if c.Pipeline.GapFactor <= 0 {
		errs = append(errs, errors.New("pipeline.gap_factor must be positive"))
	}
	if c.Pipeline.Slack < 0 {
		errs = append(errs, errors.New("pipeline.slack must not be negative"))
	}

	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	}
	if utf8.RuneCountInString(c.Export.Delimiter) > 1 {
		errs = append(errs, fmt.Errorf("export.delimiter must be a single character, got %q", c.Export.Delimiter))
	}
	if _, err := c.Export.Location(); err != nil {
		errs = append(errs, fmt.Errorf("export.time_zone: %w", err))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
