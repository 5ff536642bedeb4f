package main

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/gridshot"
	"github.com/tsawler/gridshot/export"
	"github.com/tsawler/gridshot/internal/config"
	"github.com/tsawler/gridshot/source"
)

type extractOptions struct {
	dir         string
	html        string
	urls        []string
	count       int
	minutes     int
	meta        []string
	header      []string
	format      string
	output      string
	concurrency int
}

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract [images...]",
	Short: "Extract a table from screenshots",
	Long: `Extract one table from a batch of screenshots.

Images come from exactly one of: file arguments, --dir, --html or --url.
Rows of overlapping screenshots are merged in image order.

Examples:
  # Two screenshots to a timestamped CSV (ocr_YYYYMMDD_HHMM.csv)
  gridshot extract shot1.png shot2.png

  # The 5 newest images of a directory, at most 30 minutes apart
  gridshot extract --dir ./screens --count 5 --minutes 30

  # Images embedded in a saved chat export, with metadata lines
  gridshot extract --html export.html --meta channel=raids --header name,score -o raids.csv

  # JSON to stdout
  gridshot extract --format json -o - shot.png`,
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractOpts.dir, "dir", "", "read every image in a directory, oldest first")
	f.StringVar(&extractOpts.html, "html", "", "read the images of a saved HTML export")
	f.StringSliceVar(&extractOpts.urls, "url", nil, "download images from URLs (repeatable)")
	f.IntVar(&extractOpts.count, "count", 0, "keep only the N newest images")
	f.IntVar(&extractOpts.minutes, "minutes", 0, "keep only images within N minutes of the newest")
	f.StringArrayVar(&extractOpts.meta, "meta", nil, "metadata line key=value written before the table (repeatable)")
	f.StringSliceVar(&extractOpts.header, "header", nil, "header row, comma separated")
	f.StringVar(&extractOpts.format, "format", "", "output format: csv, tsv, markdown, json (default from config)")
	f.StringVarP(&extractOpts.output, "output", "o", "", `output file; "-" for stdout (default <prefix>_YYYYMMDD_HHMM.<ext>)`)
	f.IntVar(&extractOpts.concurrency, "concurrency", 0, "images recognized at once (default from config)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	src, err := imageSource(args, extractOpts)
	if err != nil {
		return err
	}
	exportCfg, err := exportConfig(cfg.Export, extractOpts)
	if err != nil {
		return err
	}
	if extractOpts.count < 0 || extractOpts.minutes < 0 {
		return errors.New("--count and --minutes must not be negative")
	}

	ctx := cmd.Context()
	engine, closeEngine, err := engineFactory(ctx, cfg.OCR)
	if err != nil {
		return err
	}
	defer func() { _ = closeEngine() }()

	concurrency := cfg.Pipeline.Concurrency
	if extractOpts.concurrency > 0 {
		concurrency = extractOpts.concurrency
	}
	detector := cfg.Pipeline.Detector()

	batch, err := gridshot.FromSource(src).
		Engine(engine).
		Concurrency(concurrency).
		Logger(logger).
		LineConfig(detector.Line).
		RowConfig(detector.Row).
		BodyConfig(detector.Body).
		Select(source.Range{
			Count:  extractOpts.count,
			Window: time.Duration(extractOpts.minutes) * time.Minute,
		}).
		Run(ctx)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, w := range batch.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	exporter := export.NewExporterWithConfig(exportCfg)
	if extractOpts.output == "-" {
		return exporter.Export(batch.Table, cmd.OutOrStdout())
	}

	path, err := outputPath(cfg.Export, exportCfg.Format, extractOpts.output, time.Now())
	if err != nil {
		return err
	}
	if err := exporter.ExportToFile(batch.Table, path); err != nil {
		return err
	}

	logger.Debug("table written", zap.String("path", path), zap.String("batch", batch.ID))
	fmt.Fprintf(stderr, "wrote %d rows from %d images to %s\n",
		batch.Table.RowCount(), batch.Stats.Images, path)
	return nil
}

// imageSource picks the single image source named by args and flags.
func imageSource(args []string, opts extractOptions) (source.Source, error) {
	var sources []source.Source
	if len(args) > 0 {
		sources = append(sources, source.Files(args...))
	}
	if opts.dir != "" {
		sources = append(sources, source.Dir(opts.dir))
	}
	if opts.html != "" {
		sources = append(sources, source.HTMLExport(opts.html))
	}
	if len(opts.urls) > 0 {
		sources = append(sources, source.URLs(&http.Client{Timeout: time.Minute}, opts.urls...))
	}

	switch len(sources) {
	case 0:
		return nil, errors.New("no images: pass files or one of --dir, --html, --url")
	case 1:
		return sources[0], nil
	default:
		return nil, errors.New("use only one of file arguments, --dir, --html, --url")
	}
}

// exportConfig merges the configured export settings with the flags.
func exportConfig(c config.ExportConfig, opts extractOptions) (export.Config, error) {
	if opts.format != "" {
		c.Format = opts.format
	}
	if len(opts.header) > 0 {
		c.Header = opts.header
	}
	cfg, err := c.Exporter()
	if err != nil {
		return export.Config{}, err
	}

	for _, kv := range opts.meta {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return export.Config{}, fmt.Errorf("invalid --meta %q: want key=value", kv)
		}
		cfg.Meta = append(cfg.Meta, export.MetaField{Key: key, Value: value})
	}
	return cfg, nil
}

// outputPath returns output, or a timestamped name in the configured zone
// with the extension of f.
func outputPath(c config.ExportConfig, f export.Format, output string, now time.Time) (string, error) {
	if output != "" {
		return output, nil
	}
	loc, err := c.Location()
	if err != nil {
		return "", err
	}
	name := export.Filename(c.Prefix, now, loc)
	return strings.TrimSuffix(name, filepath.Ext(name)) + f.FileExtension(), nil
}
