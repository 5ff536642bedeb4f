package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/gridshot/model"
)

// LineConfig holds configuration for line clustering
type LineConfig struct {
	// Tolerance multiplies the average symbol height to give the vertical
	// band a symbol must fall within to join the open line (default: 1.0)
	Tolerance float64
}

// DefaultLineConfig returns the configuration that compares against the
// plain average height
func DefaultLineConfig() LineConfig {
	return LineConfig{Tolerance: 1.0}
}

// Assignment records how a symbol joined its line
type Assignment struct {
	// Anchor is the line anchor the symbol was compared against
	Anchor float64

	// Deviation is |symbol.Y - Anchor| at the time of assignment
	Deviation float64
}

// Line is a cluster of symbols judged to lie on one horizontal text line
type Line struct {
	// Symbols are the members, sorted left to right
	Symbols []model.Symbol

	// Assignments parallels Symbols
	Assignments []Assignment

	// Start is the anchor the line was opened with (its first symbol's Y)
	Start float64

	// Anchor is the anchor after the last member joined
	Anchor float64

	// Tolerance is the band width that was in force for this line
	Tolerance float64
}

// Len returns the number of symbols in the line
func (l Line) Len() int {
	return len(l.Symbols)
}

// Text concatenates the member texts left to right
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Symbols {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// MaxDeviation returns the largest vertical distance between a member and
// the line's starting anchor. It can exceed Tolerance when the anchor
// drifted across many members.
func (l Line) MaxDeviation() float64 {
	var worst float64
	for _, s := range l.Symbols {
		if d := math.Abs(s.Y - l.Start); d > worst {
			worst = d
		}
	}
	return worst
}

// LineClusterer groups symbols into lines by vertical proximity
type LineClusterer struct {
	config LineConfig
}

// NewLineClusterer creates a line clusterer with default configuration
func NewLineClusterer() *LineClusterer {
	return &LineClusterer{config: DefaultLineConfig()}
}

// NewLineClustererWithConfig creates a line clusterer with custom configuration
func NewLineClustererWithConfig(config LineConfig) *LineClusterer {
	return &LineClusterer{config: config}
}

type member struct {
	sym    model.Symbol
	assign Assignment
}

// Cluster sorts symbols by Y and walks them with a running anchor. A
// symbol closer than Tolerance*avgHeight to the anchor joins the open line
// and the anchor becomes the midpoint of itself and the symbol's Y;
// otherwise the line is closed and a new one starts at the symbol. The
// first symbol always opens a line. The input slice is not modified.
func (c *LineClusterer) Cluster(symbols []model.Symbol, avgHeight float64) []Line {
	if len(symbols) == 0 {
		return nil
	}

	sorted := make([]model.Symbol, len(symbols))
	copy(sorted, symbols)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y < sorted[j].Y
	})

	tolerance := c.config.Tolerance * avgHeight

	var lines []Line
	var current []member
	var start, anchor float64

	for _, s := range sorted {
		if len(current) > 0 {
			if d := math.Abs(s.Y - anchor); d < tolerance {
				current = append(current, member{sym: s, assign: Assignment{Anchor: anchor, Deviation: d}})
				anchor = (anchor + s.Y) / 2
				continue
			}
			lines = append(lines, closeLine(current, start, anchor, tolerance))
		}
		start, anchor = s.Y, s.Y
		current = []member{{sym: s, assign: Assignment{Anchor: anchor}}}
	}

	return append(lines, closeLine(current, start, anchor, tolerance))
}

// closeLine sorts members by X, keeping equal X in arrival order
func closeLine(members []member, start, anchor, tolerance float64) Line {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].sym.X < members[j].sym.X
	})

	line := Line{
		Symbols:     make([]model.Symbol, len(members)),
		Assignments: make([]Assignment, len(members)),
		Start:       start,
		Anchor:      anchor,
		Tolerance:   tolerance,
	}
	for i, m := range members {
		line.Symbols[i] = m.sym
		line.Assignments[i] = m.assign
	}
	return line
}
