package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tsawler/gridshot/internal/config"
	"github.com/tsawler/gridshot/internal/metrics"
	"github.com/tsawler/gridshot/model"
	"github.com/tsawler/gridshot/ocr"
)

const pngMagic = "\x89PNG\r\n\x1a\n"

// grid builds a detection result with one 10x20 glyph per cell, rows of
// cells laid out on a 100x50 grid
func grid(rows ...[]string) *ocr.Result {
	var words []ocr.Word
	for line, cells := range rows {
		for col, text := range cells {
			x, y := float64(col*100), float64(line*50)
			words = append(words, ocr.Word{Symbols: []ocr.Symbol{{
				Text:     text,
				Vertices: model.NewQuadFromRect(x, y, x+10, y+20),
			}}})
		}
	}
	return &ocr.Result{Pages: []ocr.Page{{Blocks: []ocr.Block{{Paragraphs: []ocr.Paragraph{{Words: words}}}}}}}
}

// fakeEngine returns canned results keyed by the payload after the PNG magic
type fakeEngine map[string]*ocr.Result

func (f fakeEngine) Recognize(_ context.Context, image []byte) (*ocr.Result, error) {
	key := strings.TrimPrefix(string(image), pngMagic)
	if key == "broken" {
		return nil, errors.New("engine exploded")
	}
	if res, ok := f[key]; ok {
		return res, nil
	}
	return &ocr.Result{}, nil
}

var testEngine = fakeEngine{
	"grid":   grid([]string{"A", "B"}, []string{"C", "D"}),
	"first":  grid([]string{"a", "1"}, []string{"b", "2"}),
	"second": grid([]string{"b", "2"}, []string{"c", "3"}),
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return New(cfg, testEngine, zap.NewNop(), metrics.NewRecorder())
}

type upload struct {
	field, name, data string
}

func png(field, key string) upload {
	return upload{field: field, name: key + ".png", data: pngMagic + key}
}

func multipartBody(t *testing.T, parts ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postTables(t *testing.T, s *Server, query string, parts ...upload) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, parts...)
	req := httptest.NewRequest(http.MethodPost, "/v1/tables"+query, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestTables_CSV(t *testing.T) {
	s := newTestServer(t)
	rec := postTables(t, s, "", png("images", "grid"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	batchID := rec.Header().Get(headerBatchID)
	assert.NotEmpty(t, batchID)
	assert.Equal(t, "0", rec.Header().Get(headerFailed))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\ufeff#batch: "+batchID+"\r\n"), body)
	assert.Contains(t, body, "#images: 1\r\n#failed: 0\r\n")
	assert.True(t, strings.HasSuffix(body, "A,B\r\nC,D\r\n"), body)
}

func TestTables_MergesInUploadOrder(t *testing.T) {
	s := newTestServer(t)
	rec := postTables(t, s, "", png("images", "first"), png("images", "second"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasSuffix(rec.Body.String(), "a,1\r\nb,2\r\nc,3\r\n"), rec.Body.String())
}

func TestTables_IgnoresOtherFields(t *testing.T) {
	s := newTestServer(t)
	rec := postTables(t, s, "",
		upload{field: "note", name: "note.txt", data: "hello"},
		png("images", "grid"),
	)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "#images: 1")
}

func TestTables_JSON(t *testing.T) {
	s := newTestServer(t)
	rec := postTables(t, s, "?format=json&header=k,v", png("images", "grid"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		Meta   map[string]string `json:"meta"`
		Header []string          `json:"header"`
		Rows   [][]string        `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, rec.Header().Get(headerBatchID), doc.Meta["batch"])
	assert.Equal(t, "1", doc.Meta["images"])
	assert.Equal(t, []string{"k", "v"}, doc.Header)
	assert.Equal(t, [][]string{{"A", "B"}, {"C", "D"}}, doc.Rows)
}

func TestTables_FailedImage(t *testing.T) {
	s := newTestServer(t)
	resp := postTables(t, s, "", png("images", "grid"), png("images", "broken"))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "1", resp.Header().Get(headerFailed))
	assert.Contains(t, resp.Body.String(), "#images: 2\r\n#failed: 1\r\n")
	assert.True(t, strings.HasSuffix(resp.Body.String(), "A,B\r\nC,D\r\n"))

	mrec := httptest.NewRecorder()
	s.Handler().ServeHTTP(mrec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, mrec.Code)
	assert.Contains(t, mrec.Body.String(), `gridshot_images_total{status="failed"} 1`)
	assert.Contains(t, mrec.Body.String(), `gridshot_images_total{status="ok"} 1`)
}

func TestTables_Count(t *testing.T) {
	s := newTestServer(t)
	rec := postTables(t, s, "?count=1", png("images", "first"), png("images", "second"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "#images: 1\r\n")
	assert.True(t, strings.HasSuffix(body, "b,2\r\nc,3\r\n"), body)
	assert.NotContains(t, body, "a,1")
}

func TestTables_BadRequests(t *testing.T) {
	s := newTestServer(t)

	t.Run("unknown format", func(t *testing.T) {
		rec := postTables(t, s, "?format=xlsx", png("images", "grid"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad count", func(t *testing.T) {
		rec := postTables(t, s, "?count=zero", png("images", "grid"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no images", func(t *testing.T) {
		rec := postTables(t, s, "", upload{field: "note", name: "n.txt", data: "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/tables", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tables", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestTables_UploadLimit(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Server.MaxUploadBytes = 64
	s := New(cfg, testEngine, nil, nil)

	big := upload{field: "images", name: "big.png", data: pngMagic + strings.Repeat("x", 1024)}
	rec := postTables(t, s, "", big)

	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg, err := config.Default()
	require.NoError(t, err)
	s := New(cfg, testEngine, zap.New(core), nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/healthz", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
