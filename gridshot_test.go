package gridshot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tsawler/gridshot/format"
	"github.com/tsawler/gridshot/model"
	"github.com/tsawler/gridshot/ocr"
	"github.com/tsawler/gridshot/source"
)

const pngMagic = "\x89PNG\r\n\x1a\n"

// cell is a glyph placed at column col, line line of a synthetic screenshot
type cell struct {
	text      string
	col, line int
}

// screenshot builds a detection result with 10x20 glyphs on a 100x50 grid
func screenshot(cells ...cell) *ocr.Result {
	var words []ocr.Word
	for _, c := range cells {
		x, y := float64(c.col*100), float64(c.line*50)
		words = append(words, ocr.Word{Symbols: []ocr.Symbol{{
			Text:     c.text,
			Vertices: model.NewQuadFromRect(x, y, x+10, y+20),
		}}})
	}
	return &ocr.Result{Pages: []ocr.Page{{Blocks: []ocr.Block{{Paragraphs: []ocr.Paragraph{{Words: words}}}}}}}
}

// fakeEngine returns canned results keyed by image payload after the magic
type fakeEngine struct {
	results map[string]*ocr.Result
	errs    map[string]error
	delays  map[string]time.Duration
}

func (f *fakeEngine) Recognize(ctx context.Context, image []byte) (*ocr.Result, error) {
	key := strings.TrimPrefix(string(image), pngMagic)
	if d := f.delays[key]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	if res, ok := f.results[key]; ok {
		return res, nil
	}
	return &ocr.Result{}, nil
}

func img(key string) source.Image {
	return source.Image{Name: key + ".png", Data: []byte(pngMagic + key)}
}

func rows(t model.Table) [][]string {
	return t.Records()
}

func TestTable_TwoByTwoGrid(t *testing.T) {
	engine := &fakeEngine{results: map[string]*ocr.Result{
		"grid": screenshot(cell{"A", 0, 0}, cell{"B", 1, 0}, cell{"C", 0, 1}, cell{"D", 1, 1}),
	}}

	table, warnings, err := FromImages(img("grid")).Engine(engine).Table(context.Background())
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %s", FormatWarnings(warnings))
	}
	want := model.NewTable(model.Row{"A", "B"}, model.Row{"C", "D"})
	if !table.Equal(want) {
		t.Errorf("Table() = %q, want %q", rows(table), rows(want))
	}
}

func TestTable_OverlappingImagesDeduplicate(t *testing.T) {
	shot := screenshot(cell{"X", 0, 0}, cell{"1", 1, 0}, cell{"Y", 0, 1}, cell{"2", 1, 1})
	engine := &fakeEngine{results: map[string]*ocr.Result{"one": shot, "two": shot}}

	batch, err := FromImages(img("one"), img("two")).Engine(engine).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := model.NewTable(model.Row{"X", "1"}, model.Row{"Y", "2"})
	if !batch.Table.Equal(want) {
		t.Errorf("Table = %q, want %q", rows(batch.Table), rows(want))
	}
	if batch.Stats.KeptRows != 4 || batch.Stats.Duplicates != 2 {
		t.Errorf("unexpected stats: %+v", batch.Stats)
	}
}

func TestTable_MergesInSubmissionOrder(t *testing.T) {
	engine := &fakeEngine{
		results: map[string]*ocr.Result{
			"first":  screenshot(cell{"a", 0, 0}, cell{"1", 1, 0}, cell{"b", 0, 1}, cell{"2", 1, 1}),
			"second": screenshot(cell{"b", 0, 0}, cell{"2", 1, 0}),
			"third":  screenshot(cell{"c", 0, 0}, cell{"3", 1, 0}),
		},
		// the first image finishes last
		delays: map[string]time.Duration{"first": 40 * time.Millisecond, "second": 10 * time.Millisecond},
	}

	for run := 0; run < 3; run++ {
		table, _, err := FromImages(img("first"), img("second"), img("third")).
			Engine(engine).
			Concurrency(3).
			Table(context.Background())
		if err != nil {
			t.Fatalf("Table failed: %v", err)
		}
		want := model.NewTable(model.Row{"a", "1"}, model.Row{"b", "2"}, model.Row{"c", "3"})
		if !table.Equal(want) {
			t.Fatalf("run %d: Table() = %q, want %q", run, rows(table), rows(want))
		}
	}
}

func TestTable_FailedImageBecomesWarning(t *testing.T) {
	engine := &fakeEngine{
		results: map[string]*ocr.Result{
			"ok": screenshot(cell{"k", 0, 0}, cell{"v", 1, 0}),
		},
		errs: map[string]error{"bad": ocr.ErrRateLimited},
	}

	batch, err := FromImages(img("bad"), img("ok"), source.Image{Name: "notes.txt", Data: []byte("hello")}).
		Engine(engine).
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !batch.Table.Equal(model.NewTable(model.Row{"k", "v"})) {
		t.Errorf("Table = %q", rows(batch.Table))
	}
	if len(batch.Warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %d", len(batch.Warnings))
	}
	if w := batch.Warnings[0]; w.Index != 0 || w.Image != "bad.png" || !errors.Is(w.Err, ocr.ErrRateLimited) {
		t.Errorf("unexpected first warning: %+v", w)
	}
	if w := batch.Warnings[1]; w.Index != 2 || !errors.Is(w.Err, format.ErrNotImage) {
		t.Errorf("unexpected second warning: %+v", w)
	}
	if !batch.Images[0].Failed() || !batch.Images[0].Table.IsEmpty() {
		t.Error("failed image must contribute no rows")
	}
	if batch.Stats.Failed != 2 {
		t.Errorf("Stats.Failed = %d, want 2", batch.Stats.Failed)
	}
}

func TestTable_NoText(t *testing.T) {
	table, warnings, err := FromImages(img("blank")).Engine(&fakeEngine{}).Table(context.Background())
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if !table.IsEmpty() || len(warnings) != 0 {
		t.Errorf("Expected empty table without warnings, got %q / %v", rows(table), warnings)
	}
}

func TestTable_NoImages(t *testing.T) {
	table, _, err := FromImages().Engine(&fakeEngine{}).Table(context.Background())
	if err != nil || !table.IsEmpty() {
		t.Errorf("Table() = %q, %v", rows(table), err)
	}
}

func TestTable_Cancelled(t *testing.T) {
	engine := &fakeEngine{delays: map[string]time.Duration{"slow": time.Minute}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := FromImages(img("slow"), img("slow")).Engine(engine).Table(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestTable_NoEngine(t *testing.T) {
	if _, _, err := FromImages(img("x")).Table(context.Background()); !errors.Is(err, ErrNoEngine) {
		t.Errorf("expected ErrNoEngine, got %v", err)
	}
}

func TestTable_InvalidConcurrency(t *testing.T) {
	_, _, err := FromImages(img("x")).Engine(&fakeEngine{}).Concurrency(0).Table(context.Background())
	if err == nil {
		t.Error("expected error for concurrency 0")
	}
}

func TestTable_SourceError(t *testing.T) {
	boom := errors.New("boom")
	src := source.Func(func(context.Context) ([]source.Image, error) { return nil, boom })
	if _, _, err := FromSource(src).Engine(&fakeEngine{}).Table(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected source error, got %v", err)
	}
}

func TestTables_PerImage(t *testing.T) {
	engine := &fakeEngine{results: map[string]*ocr.Result{
		"a": screenshot(cell{"x", 0, 0}, cell{"1", 1, 0}),
		"b": screenshot(cell{"x", 0, 0}, cell{"1", 1, 0}),
	}}

	results, _, err := FromImages(img("a"), img("b")).Engine(engine).Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	if len(results) != 2 || results[1].Index != 1 || results[1].Table.RowCount() != 1 {
		t.Errorf("unexpected per-image results: %+v", results)
	}
}

func TestExtractor_Select(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	older, newer := img("old"), img("new")
	older.Time, newer.Time = base, base.Add(time.Minute)
	engine := &fakeEngine{results: map[string]*ocr.Result{
		"old": screenshot(cell{"o", 0, 0}),
		"new": screenshot(cell{"n", 0, 0}),
	}}

	table, _, err := FromImages(newer, older).Engine(engine).Select(source.Range{Count: 1}).Table(context.Background())
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if !table.Equal(model.NewTable(model.Row{"n"})) {
		t.Errorf("Table() = %q, want only the newest image", rows(table))
	}
}

func TestExtractor_Immutable(t *testing.T) {
	base := FromImages(img("a"))
	withEngine := base.Engine(&fakeEngine{})
	if base.options.engine != nil {
		t.Error("Engine() modified the receiver")
	}
	if withEngine.Concurrency(8).options.concurrency != 8 || withEngine.options.concurrency != DefaultConcurrency {
		t.Error("Concurrency() modified the receiver")
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	images  int
	batches []BatchStats
}

func (r *recordingObserver) ObserveImage(ImageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images++
}

func (r *recordingObserver) ObserveBatch(s BatchStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, s)
}

func TestExtractor_ObserverAndLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	obs := &recordingObserver{}

	_, err := FromImages(img("a"), img("b")).
		Engine(&fakeEngine{}).
		Observer(obs).
		Logger(zap.New(core)).
		BatchID("batch-1").
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if obs.images != 2 || len(obs.batches) != 1 || obs.batches[0].ID != "batch-1" {
		t.Errorf("observer saw %d images and %+v", obs.images, obs.batches)
	}

	complete := logs.FilterMessage("batch complete").All()
	if len(complete) != 1 {
		t.Fatalf("Expected one completion log, got %d", len(complete))
	}
	if got := complete[0].ContextMap()["batch"]; got != "batch-1" {
		t.Errorf("batch field = %v", got)
	}
	if n := logs.FilterMessage("image processed").Len(); n != 2 {
		t.Errorf("Expected 2 per-image logs, got %d", n)
	}
}

func TestFormatWarnings(t *testing.T) {
	if FormatWarnings(nil) != "" {
		t.Error("Expected empty string for no warnings")
	}
	warnings := []Warning{
		newWarning(0, "a.png", errors.New("timeout")),
		{Index: 3, Message: "skipped"},
	}
	want := "image 1 (a.png): timeout\nimage 4: skipped"
	if got := FormatWarnings(warnings); got != want {
		t.Errorf("FormatWarnings() = %q, want %q", got, want)
	}
}

func TestMustTable_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustTable(FromImages(img("x")).Table(context.Background()))
}

func TestMust(t *testing.T) {
	batch := Must(FromImages(img("x")).Engine(&fakeEngine{}).Run(context.Background()))
	if batch.ID == "" {
		t.Error("expected a generated batch ID")
	}
}
