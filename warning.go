package gridshot

import (
	"fmt"
	"strings"
)

// Warning reports a non-fatal problem with one image of a batch. The image
// contributed no rows.
type Warning struct {
	// Index is the image's position in the batch (0-based)
	Index int

	// Image is the image name
	Image string

	// Message describes the problem
	Message string

	// Err is the underlying error, if any
	Err error
}

// String formats the warning as "image N (name): message"
func (w Warning) String() string {
	if w.Image == "" {
		return fmt.Sprintf("image %d: %s", w.Index+1, w.Message)
	}
	return fmt.Sprintf("image %d (%s): %s", w.Index+1, w.Image, w.Message)
}

// Unwrap returns the underlying error
func (w Warning) Unwrap() error {
	return w.Err
}

// newWarning builds a warning from a per-image failure
func newWarning(index int, image string, err error) Warning {
	return Warning{Index: index, Image: image, Message: err.Error(), Err: err}
}

// FormatWarnings renders warnings one per line, or "" when there are none.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
