package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	vision "google.golang.org/api/vision/v1"

	"github.com/tsawler/gridshot/model"
)

func visionPoly(x0, y0, x1, y1 int64) *vision.BoundingPoly {
	return &vision.BoundingPoly{Vertices: []*vision.Vertex{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}
}

func TestFromVision(t *testing.T) {
	a := &vision.TextAnnotation{Pages: []*vision.Page{{
		Width:  640,
		Height: 480,
		Blocks: []*vision.Block{{Paragraphs: []*vision.Paragraph{{Words: []*vision.Word{
			{Symbols: []*vision.Symbol{
				{Text: "A", BoundingBox: visionPoly(10, 10, 20, 30), Confidence: 0.9},
				nil,
				{Text: "B", BoundingBox: visionPoly(20, 10, 30, 30)},
			}},
		}}}}},
	}}}

	res := fromVision(a)
	if len(res.Pages) != 1 || res.Pages[0].Width != 640 || res.Pages[0].Height != 480 {
		t.Fatalf("unexpected pages: %+v", res.Pages)
	}
	if res.SymbolCount() != 2 {
		t.Fatalf("SymbolCount() = %d, want 2", res.SymbolCount())
	}
	first := res.Pages[0].Blocks[0].Paragraphs[0].Words[0].Symbols[0]
	c := first.Vertices.Centroid()
	if c.X != 15 || c.Y != 20 {
		t.Errorf("centroid = %+v, want (15, 20)", c)
	}
	if first.Confidence != 0.9 {
		t.Errorf("confidence = %f", first.Confidence)
	}
}

func TestFromVision_Nil(t *testing.T) {
	if res := fromVision(nil); !res.IsEmpty() {
		t.Error("nil annotation should convert to an empty result")
	}
}

func TestQuadFromPoly_MissingVertices(t *testing.T) {
	q := quadFromPoly(&vision.BoundingPoly{Vertices: []*vision.Vertex{{X: 4, Y: 8}, nil}})
	if q[0].X != 4 || q[0].Y != 8 {
		t.Errorf("first vertex = %+v", q[0])
	}
	if q[1].X != 0 || q[3].Y != 0 {
		t.Error("missing vertices should read as zero")
	}
	if quadFromPoly(nil) != (model.Quad{}) {
		t.Error("nil polygon should give a zero quad")
	}
}

func newVisionTestServer(t *testing.T, handler http.HandlerFunc) *Vision {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	v, err := NewVision(context.Background(), VisionConfig{
		Endpoint:      srv.URL + "/",
		HTTPClient:    srv.Client(),
		LanguageHints: []string{"ja"},
	})
	if err != nil {
		t.Fatalf("NewVision failed: %v", err)
	}
	return v
}

func TestVisionRecognize(t *testing.T) {
	v := newVisionTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "images:annotate") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req vision.BatchAnnotateImagesRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Requests) != 1 || req.Requests[0].Features[0].Type != "DOCUMENT_TEXT_DETECTION" {
			t.Errorf("unexpected request: %s", body)
		}
		if req.Requests[0].ImageContext == nil || req.Requests[0].ImageContext.LanguageHints[0] != "ja" {
			t.Error("language hints not sent")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"responses":[{"fullTextAnnotation":{"pages":[{"width":100,"height":50,
			"blocks":[{"paragraphs":[{"words":[{"symbols":[
			{"text":"X","boundingBox":{"vertices":[{"x":10,"y":10},{"x":20,"y":10},{"x":20,"y":30},{"x":10,"y":30}]}}
			]}]}]}]}]}}]}`)
	})

	res, err := v.Recognize(context.Background(), []byte("fake-png"))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if res.SymbolCount() != 1 || res.Text() != "X" {
		t.Errorf("unexpected result text %q", res.Text())
	}
}

func TestVisionRecognize_ResponseError(t *testing.T) {
	v := newVisionTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"responses":[{"error":{"code":8,"message":"quota"}}]}`)
	})

	_, err := v.Recognize(context.Background(), []byte("fake-png"))
	if !IsRateLimited(err) {
		t.Errorf("expected rate limited error, got %v", err)
	}
}

func TestVisionRecognize_HTTP429(t *testing.T) {
	v := newVisionTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"slow down"}}`)
	})

	_, err := v.Recognize(context.Background(), []byte("fake-png"))
	if !IsRateLimited(err) {
		t.Errorf("expected rate limited error, got %v", err)
	}
}

func TestVisionRecognize_EmptyImage(t *testing.T) {
	v := &Vision{}
	if _, err := v.Recognize(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
}
