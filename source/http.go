package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxParallelDownloads bounds concurrent fetches in URLs.
const maxParallelDownloads = 4

// URLs returns a Source downloading each URL with client, keeping argument
// order regardless of completion order. A nil client uses
// http.DefaultClient. Image.Time comes from the Last-Modified header when
// present. Any failed download fails the whole source.
func URLs(client *http.Client, urls ...string) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return Func(func(ctx context.Context) ([]Image, error) {
		images := make([]Image, len(urls))

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(maxParallelDownloads)
		for i, u := range urls {
			g.Go(func() error {
				img, err := fetch(ctx, client, u)
				if err != nil {
					return err
				}
				images[i] = img
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return images, nil
	})
}

func fetch(ctx context.Context, client *http.Client, rawURL string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Image{}, fmt.Errorf("building request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, fmt.Errorf("fetching %s: unexpected status %s", rawURL, resp.Status)
	}

	data, err := readLimited(resp.Body, rawURL)
	if err != nil {
		return Image{}, err
	}

	var modified time.Time
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			modified = t
		}
	}

	return Image{Name: displayName(rawURL), Data: data, Time: modified}, nil
}

// displayName is the last path segment of the URL, or the URL itself.
func displayName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return rawURL
	}
	return path.Base(u.Path)
}
