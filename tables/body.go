package tables

import (
	"github.com/tsawler/gridshot/model"
)

// BodyConfig holds configuration for the table body filter
type BodyConfig struct {
	// Slack is how many cells short of the mode a row may be and still be
	// kept (default: 1)
	Slack int
}

// DefaultBodyConfig returns the default body filter configuration
func DefaultBodyConfig() BodyConfig {
	return BodyConfig{Slack: 1}
}

// ModeColumns returns the most frequent row length. Ties go to the length
// that reached the winning count first when scanning rows in order. The
// boolean is false when rows is empty.
func ModeColumns(rows []model.Row) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}

	counts := make(map[int]int)
	mode, best := 0, 0
	for _, row := range rows {
		n := row.Len()
		counts[n]++
		if counts[n] > best {
			mode, best = n, counts[n]
		}
	}
	return mode, true
}

// BodyFilter keeps the rows that conform to the dominant cell count
type BodyFilter struct {
	config BodyConfig
}

// NewBodyFilter creates a body filter with default configuration
func NewBodyFilter() *BodyFilter {
	return &BodyFilter{config: DefaultBodyConfig()}
}

// NewBodyFilterWithConfig creates a body filter with custom configuration
func NewBodyFilterWithConfig(config BodyConfig) *BodyFilter {
	return &BodyFilter{config: config}
}

// Filter splits rows into the table body and the discarded rows, both in
// input order. A row is kept when len(row)+Slack >= the mode length.
func (f *BodyFilter) Filter(rows []model.Row) (model.Table, []model.Row) {
	mode, ok := ModeColumns(rows)
	if !ok {
		return model.Table{}, nil
	}

	var kept, discarded []model.Row
	for _, row := range rows {
		if row.Len()+f.config.Slack >= mode {
			kept = append(kept, row)
		} else {
			discarded = append(discarded, row)
		}
	}
	return model.NewTable(kept...), discarded
}

// FilterBody applies the default body filter and returns the kept rows
func FilterBody(rows []model.Row) model.Table {
	table, _ := NewBodyFilter().Filter(rows)
	return table
}
