package gridshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/gridshot/format"
	"github.com/tsawler/gridshot/layout"
	"github.com/tsawler/gridshot/model"
	"github.com/tsawler/gridshot/ocr"
	"github.com/tsawler/gridshot/source"
	"github.com/tsawler/gridshot/tables"
)

// ErrNoEngine is returned by terminal operations when no OCR engine was set.
var ErrNoEngine = errors.New("gridshot: no OCR engine configured")

// Extractor provides a fluent interface for reconstructing a table from a
// batch of images. Each configuration method returns a new Extractor
// instance, making it safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	source source.Source

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// Batch is the full outcome of a run.
type Batch struct {
	// ID identifies the batch
	ID string

	// Table is the merged, de-duplicated table
	Table model.Table

	// Images holds per-image results in submission order
	Images []ImageResult

	// Warnings lists the images that failed, in submission order
	Warnings []Warning

	// Stats summarizes the run
	Stats BatchStats
}

// clone creates a copy of the Extractor. This ensures immutability - each
// chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		source:  e.source,
		options: e.options,
		err:     e.err,
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Engine sets the OCR engine. It is required.
func (e *Extractor) Engine(engine ocr.Engine) *Extractor {
	newExt := e.clone()
	newExt.options.engine = engine
	return newExt
}

// Concurrency sets how many images are recognized at once. Values below 1
// make every terminal operation fail.
func (e *Extractor) Concurrency(n int) *Extractor {
	newExt := e.clone()
	if n < 1 {
		newExt.err = fmt.Errorf("concurrency must be at least 1, got %d", n)
		return newExt
	}
	newExt.options.concurrency = n
	return newExt
}

// Logger sets the logger. A nil logger disables logging.
func (e *Extractor) Logger(logger *zap.Logger) *Extractor {
	newExt := e.clone()
	if logger == nil {
		logger = zap.NewNop()
	}
	newExt.options.logger = logger
	return newExt
}

// Observer sets the hook notified of per-image and per-batch results.
func (e *Extractor) Observer(o Observer) *Extractor {
	newExt := e.clone()
	if o == nil {
		o = nopObserver{}
	}
	newExt.options.observer = o
	return newExt
}

// LineConfig overrides line clustering settings.
func (e *Extractor) LineConfig(config layout.LineConfig) *Extractor {
	newExt := e.clone()
	newExt.options.detector.Line = config
	return newExt
}

// RowConfig overrides row tokenizing settings.
func (e *Extractor) RowConfig(config layout.RowConfig) *Extractor {
	newExt := e.clone()
	newExt.options.detector.Row = config
	return newExt
}

// BodyConfig overrides body filter settings.
func (e *Extractor) BodyConfig(config tables.BodyConfig) *Extractor {
	newExt := e.clone()
	newExt.options.detector.Body = config
	return newExt
}

// Select limits the batch to recent images. See source.Select.
//
// Example:
//
//	table, _, err := gridshot.FromSource(source.Dir("shots")).
//	    Engine(engine).
//	    Select(source.Range{Count: 3, Window: 10 * time.Minute}).
//	    Table(ctx)
func (e *Extractor) Select(r source.Range) *Extractor {
	newExt := e.clone()
	newExt.options.selection = r
	return newExt
}

// BatchID sets the batch identifier. By default a random UUID is used.
func (e *Extractor) BatchID(id string) *Extractor {
	newExt := e.clone()
	newExt.options.batchID = id
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Table runs the batch and returns the merged table. Warnings list images
// that contributed nothing because recognition failed.
func (e *Extractor) Table(ctx context.Context) (model.Table, []Warning, error) {
	batch, err := e.Run(ctx)
	if err != nil {
		return model.Table{}, nil, err
	}
	return batch.Table, batch.Warnings, nil
}

// Tables runs the batch and returns the per-image results before merging.
func (e *Extractor) Tables(ctx context.Context) ([]ImageResult, []Warning, error) {
	batch, err := e.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return batch.Images, batch.Warnings, nil
}

// Run recognizes every image concurrently, reconstructs a table per image,
// and merges the tables in submission order. Per-image failures become
// warnings. Context cancellation aborts the batch.
func (e *Extractor) Run(ctx context.Context) (*Batch, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.options.engine == nil {
		return nil, ErrNoEngine
	}
	if e.source == nil {
		return nil, source.ErrNoImages
	}

	start := time.Now()
	id := e.options.batchID
	if id == "" {
		id = uuid.NewString()
	}
	logger := e.options.logger.With(zap.String("batch", id))

	images, err := e.source.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading images: %w", err)
	}
	images = source.Select(images, e.options.selection)
	logger.Debug("batch started", zap.Int("images", len(images)))

	detector := tables.NewDetectorWithConfig(e.options.detector)
	results := make([]ImageResult, len(images))

	var g errgroup.Group
	g.SetLimit(e.options.concurrency)
	for i, img := range images {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = e.processImage(ctx, logger, detector, i, img)
			e.options.observer.ObserveImage(results[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn("batch cancelled", zap.Error(err))
		return nil, err
	}

	batch := e.merge(id, results)
	batch.Stats.Duration = time.Since(start)
	e.options.observer.ObserveBatch(batch.Stats)

	logger.Info("batch complete",
		zap.Int("images", batch.Stats.Images),
		zap.Int("failed", batch.Stats.Failed),
		zap.Int("rows", batch.Table.RowCount()),
		zap.Int("duplicates", batch.Stats.Duplicates),
		zap.Duration("duration", batch.Stats.Duration),
	)
	return batch, nil
}

// processImage runs recognition and detection for one image. It never
// returns an error; failures are recorded on the result.
func (e *Extractor) processImage(ctx context.Context, logger *zap.Logger, detector *tables.Detector, index int, img source.Image) ImageResult {
	result := ImageResult{Index: index, Name: img.Name}
	logger = logger.With(zap.Int("index", index), zap.String("image", img.Name))

	if _, err := format.DetectImage(img.Data); err != nil {
		result.Err = err
		logger.Warn("skipping image", zap.Error(err))
		return result
	}

	begin := time.Now()
	res, err := e.options.engine.Recognize(ctx, img.Data)
	result.OCRDuration = time.Since(begin)
	if err != nil {
		result.Err = fmt.Errorf("recognizing: %w", err)
		logger.Warn("recognition failed", zap.Error(err), zap.Duration("took", result.OCRDuration))
		return result
	}

	detection := detector.Detect(res)
	result.Detection = detection
	result.Table = detection.Table

	logger.Debug("image processed",
		zap.Int("symbols", detection.SymbolCount),
		zap.Float64("avg_height", detection.AverageHeight),
		zap.Int("rows", len(detection.Rows)),
		zap.Int("kept", detection.Table.RowCount()),
		zap.Int("mode_columns", detection.ModeColumns),
		zap.Duration("took", result.OCRDuration),
	)
	return result
}

// merge combines per-image results in submission order.
func (e *Extractor) merge(id string, results []ImageResult) *Batch {
	batch := &Batch{
		ID:     id,
		Images: results,
		Stats:  BatchStats{ID: id, Images: len(results)},
	}

	parts := make([]model.Table, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			batch.Warnings = append(batch.Warnings, newWarning(r.Index, r.Name, r.Err))
			batch.Stats.Failed++
			continue
		}
		if r.Detection != nil {
			batch.Stats.RawRows += len(r.Detection.Rows)
		}
		batch.Stats.KeptRows += r.Table.RowCount()
		parts = append(parts, r.Table)
	}

	batch.Table = tables.Merge(parts...)
	batch.Stats.Duplicates = batch.Stats.KeptRows - batch.Table.RowCount()
	return batch
}
