package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// imageRef is an <img> found in an export, with the timestamp of the
// nearest preceding <time datetime="..."> element.
type imageRef struct {
	src  string
	time time.Time
}

// HTMLExport returns a Source reading the images referenced by a saved
// chat export. Images come in document order. Relative src attributes are
// resolved against the export's directory; data: URIs are decoded inline;
// remote URLs are skipped. Each image takes the time of the nearest
// preceding <time datetime> element, or the referenced file's modification
// time when there is none.
func HTMLExport(path string) Source {
	return Func(func(ctx context.Context) ([]Image, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening file: %w", err)
		}
		defer f.Close()

		doc, err := html.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("parsing HTML: %w", err)
		}

		base := filepath.Dir(path)
		var images []Image
		for i, ref := range collectImages(doc) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			img, ok, err := resolveRef(base, ref, i)
			if err != nil {
				return nil, err
			}
			if ok {
				images = append(images, img)
			}
		}
		return images, nil
	})
}

// collectImages walks the document in order, tracking the latest <time>.
func collectImages(doc *html.Node) []imageRef {
	var refs []imageRef
	var current time.Time

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "time":
				if t, ok := parseDatetime(getAttr(n, "datetime")); ok {
					current = t
				}
			case "img":
				if src := strings.TrimSpace(getAttr(n, "src")); src != "" {
					refs = append(refs, imageRef{src: src, time: current})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return refs
}

func resolveRef(base string, ref imageRef, index int) (Image, bool, error) {
	if strings.HasPrefix(ref.src, "data:") {
		data, err := decodeDataURI(ref.src)
		if err != nil {
			return Image{}, false, fmt.Errorf("image %d: %w", index, err)
		}
		return Image{Name: fmt.Sprintf("inline-%d", index), Data: data, Time: ref.time}, true, nil
	}

	u, err := url.Parse(ref.src)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return Image{}, false, nil
	}

	p := u.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, filepath.FromSlash(p))
	}
	img, err := readFile(p)
	if err != nil {
		return Image{}, false, err
	}
	if !ref.time.IsZero() {
		img.Time = ref.time
	}
	return img, true, nil
}

// decodeDataURI decodes a base64 data URI. Other encodings are rejected.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data URI: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func parseDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
