package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tsawler/gridshot"
	"github.com/tsawler/gridshot/export"
	"github.com/tsawler/gridshot/source"
)

// imagesField is the multipart field carrying the screenshots.
const imagesField = "images"

// Response headers set by POST /v1/tables.
const (
	headerBatchID = "X-Batch-ID"
	headerFailed  = "X-Failed-Images"
)

var errNotMultipart = errors.New("request must be multipart/form-data")

// handleTables reconstructs one table from the uploaded images.
// POST /v1/tables?format=csv&count=3&header=a,b
//
// Images are read from every "images" part in the order they appear in the
// body. The response carries the export plus #batch, #images and #failed
// metadata lines.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))

	exportCfg, err := s.cfg.Export.Exporter()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	if name := q.Get("format"); name != "" {
		f, err := export.ParseFormat(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		exportCfg.Format = f
		if f == export.FormatTSV {
			exportCfg.Delimiter = '\t'
		}
	}
	if h := q.Get("header"); h != "" {
		exportCfg.Header = strings.Split(h, ",")
	}
	var selection source.Range
	if c := q.Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 1 {
			http.Error(w, "count must be a positive integer", http.StatusBadRequest)
			return
		}
		selection.Count = n
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	images, err := readImages(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), errors.Is(err, source.ErrTooLarge):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	if len(images) == 0 {
		http.Error(w, source.ErrNoImages.Error(), http.StatusBadRequest)
		return
	}

	detector := s.cfg.Pipeline.Detector()
	batch, err := gridshot.FromImages(images...).
		Engine(s.engine).
		Concurrency(s.cfg.Pipeline.Concurrency).
		Logger(logger).
		Observer(s.recorder).
		LineConfig(detector.Line).
		RowConfig(detector.Row).
		BodyConfig(detector.Body).
		Select(selection).
		Run(r.Context())
	if err != nil {
		logger.Error("batch failed", zap.Error(err))
		http.Error(w, "extraction failed", http.StatusInternalServerError)
		return
	}

	exportCfg.Meta = append(exportCfg.Meta,
		export.MetaField{Key: "batch", Value: batch.ID},
		export.MetaField{Key: "images", Value: strconv.Itoa(batch.Stats.Images)},
		export.MetaField{Key: "failed", Value: strconv.Itoa(batch.Stats.Failed)},
	)
	exporter := export.NewExporterWithConfig(exportCfg)

	w.Header().Set("Content-Type", exportCfg.Format.ContentType())
	w.Header().Set(headerBatchID, batch.ID)
	w.Header().Set(headerFailed, strconv.Itoa(batch.Stats.Failed))
	if err := exporter.Export(batch.Table, w); err != nil {
		logger.Error("writing response", zap.Error(err))
	}
}

// readImages collects the "images" parts of a multipart body in order.
func readImages(r *http.Request) ([]source.Image, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, errNotMultipart
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("reading multipart body: %w", err)
	}

	var images []source.Image
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading multipart body: %w", err)
		}
		if part.FormName() != imagesField {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, source.MaxImageBytes+1))
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", part.FileName(), err)
		}
		if len(data) > source.MaxImageBytes {
			return nil, fmt.Errorf("%s: %w", part.FileName(), source.ErrTooLarge)
		}

		name := part.FileName()
		if name == "" {
			name = fmt.Sprintf("image-%d", len(images)+1)
		}
		images = append(images, source.Image{Name: name, Data: data})
	}
	return images, nil
}
