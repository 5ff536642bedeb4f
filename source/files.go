package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/tsawler/gridshot/format"
)

// Files returns a Source reading the given paths in argument order.
func Files(paths ...string) Source {
	return Func(func(ctx context.Context) ([]Image, error) {
		images := make([]Image, 0, len(paths))
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			img, err := readFile(path)
			if err != nil {
				return nil, err
			}
			images = append(images, img)
		}
		return images, nil
	})
}

// Dir returns a Source reading every image file directly inside dir,
// oldest modification time first, ties broken by name. Files are
// recognized by extension; subdirectories are not visited.
func Dir(dir string) Source {
	return Func(func(ctx context.Context) ([]Image, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}

		var images []Image
		for _, entry := range entries {
			if entry.IsDir() || !format.Detect(entry.Name()).IsImage() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			img, err := readFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			images = append(images, img)
		}

		sort.SliceStable(images, func(i, j int) bool {
			if !images[i].Time.Equal(images[j].Time) {
				return images[i].Time.Before(images[j].Time)
			}
			return images[i].Name < images[j].Name
		})
		return images, nil
	})
}

func readFile(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Image{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxImageBytes {
		return Image{}, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return Image{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Image{Name: path, Data: data, Time: info.ModTime()}, nil
}

// readLimited reads r up to MaxImageBytes and fails beyond it.
func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	return data, nil
}
