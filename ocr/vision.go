package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/tsawler/gridshot/model"
)

// documentTextDetection is the Vision feature that returns the full
// page/block/paragraph/word/symbol hierarchy.
const documentTextDetection = "DOCUMENT_TEXT_DETECTION"

// VisionConfig holds Google Cloud Vision client settings. When no
// credential field is set, Application Default Credentials are used.
type VisionConfig struct {
	// CredentialsJSON is a service account key.
	CredentialsJSON []byte

	// CredentialsFile is a path to a service account key file.
	CredentialsFile string

	// APIKey authenticates with an API key instead of a service account.
	APIKey string

	// LanguageHints are BCP-47 codes passed to the detector (e.g. "ja").
	LanguageHints []string

	// Endpoint overrides the API base URL.
	Endpoint string

	// HTTPClient replaces the authenticated transport entirely.
	HTTPClient *http.Client
}

// Vision is an Engine backed by Google Cloud Vision document text detection.
type Vision struct {
	svc   *vision.Service
	hints []string
}

// NewVision creates a Cloud Vision engine.
func NewVision(ctx context.Context, cfg VisionConfig) (*Vision, error) {
	opts, err := visionOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision service: %w", err)
	}

	return &Vision{svc: svc, hints: cfg.LanguageHints}, nil
}

func visionOptions(ctx context.Context, cfg VisionConfig) ([]option.ClientOption, error) {
	var opts []option.ClientOption

	creds := cfg.CredentialsJSON
	if len(creds) == 0 && cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		creds = data
	}

	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case len(creds) > 0:
		c, err := google.CredentialsFromJSON(ctx, creds, vision.CloudVisionScope)
		if err != nil {
			return nil, fmt.Errorf("parsing credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(c.TokenSource))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	return opts, nil
}

// Recognize sends the image to Cloud Vision and converts the full text
// annotation into a Result.
func (v *Vision) Recognize(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{Type: documentTextDetection}},
		}},
	}
	if len(v.hints) > 0 {
		req.Requests[0].ImageContext = &vision.ImageContext{LanguageHints: v.hints}
	}

	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &Result{}, nil
	}

	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		if r.Error.Code == 8 { // RESOURCE_EXHAUSTED
			return nil, fmt.Errorf("vision: %s: %w", r.Error.Message, ErrRateLimited)
		}
		return nil, fmt.Errorf("vision: %s (code %d)", r.Error.Message, r.Error.Code)
	}

	return fromVision(r.FullTextAnnotation), nil
}

// fromVision converts a Vision text annotation. Nil nodes are skipped and
// missing vertex coordinates read as zero, as in the Vision JSON.
func fromVision(a *vision.TextAnnotation) *Result {
	res := &Result{}
	if a == nil {
		return res
	}

	for _, p := range a.Pages {
		if p == nil {
			continue
		}
		page := Page{Width: int(p.Width), Height: int(p.Height)}
		for _, b := range p.Blocks {
			if b == nil {
				continue
			}
			var block Block
			for _, para := range b.Paragraphs {
				if para == nil {
					continue
				}
				var paragraph Paragraph
				for _, w := range para.Words {
					if w == nil {
						continue
					}
					var word Word
					for _, s := range w.Symbols {
						if s == nil {
							continue
						}
						word.Symbols = append(word.Symbols, Symbol{
							Text:       s.Text,
							Vertices:   quadFromPoly(s.BoundingBox),
							Confidence: s.Confidence,
						})
					}
					paragraph.Words = append(paragraph.Words, word)
				}
				block.Paragraphs = append(block.Paragraphs, paragraph)
			}
			page.Blocks = append(page.Blocks, block)
		}
		res.Pages = append(res.Pages, page)
	}

	return res
}

func quadFromPoly(poly *vision.BoundingPoly) model.Quad {
	var q model.Quad
	if poly == nil {
		return q
	}
	for i, v := range poly.Vertices {
		if i >= len(q) {
			break
		}
		if v == nil {
			continue
		}
		q[i] = model.Point{X: float64(v.X), Y: float64(v.Y)}
	}
	return q
}
