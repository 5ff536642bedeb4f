package model

import (
	"strconv"
	"strings"
)

// Row is one reconstructed table row: the cells (words) of a single text
// line, left to right.
type Row []string

// Len returns the cell count of the row
func (r Row) Len() int {
	return len(r)
}

// Equal reports whether two rows have the same cells in the same positions.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the row that shares no storage with r
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Key returns a string that is identical for two rows exactly when the rows
// are Equal. Each cell is length-prefixed so that cell boundaries cannot be
// confused with cell content.
func (r Row) Key() string {
	var sb strings.Builder
	for _, cell := range r {
		sb.WriteString(strconv.Itoa(len(cell)))
		sb.WriteByte(':')
		sb.WriteString(cell)
	}
	return sb.String()
}

// Table is an ordered sequence of rows. Rows are not required to share a
// length; a filtered table body normally holds rows of the dominant length
// and rows one cell short.
type Table struct {
	Rows []Row
}

// NewTable creates a table from the given rows
func NewTable(rows ...Row) Table {
	return Table{Rows: rows}
}

// RowCount returns the number of rows
func (t Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the length of the longest row
func (t Table) ColCount() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// IsEmpty returns true if the table has no rows
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Equal reports whether both tables hold equal rows in the same order.
func (t Table) Equal(other Table) bool {
	if len(t.Rows) != len(other.Rows) {
		return false
	}
	for i := range t.Rows {
		if !t.Rows[i].Equal(other.Rows[i]) {
			return false
		}
	}
	return true
}

// Records returns the rows as plain string slices, the shape encoding/csv
// and JSON encoders expect.
func (t Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = []string(row.Clone())
	}
	return out
}

// GetText returns the table as tab-separated lines
func (t Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToMarkdown converts the table to markdown format. The first row is used
// as the header; short rows are padded with empty cells.
func (t Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	cols := t.ColCount()
	var sb strings.Builder

	writeRow := func(row Row) {
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = strings.ReplaceAll(row[j], "|", "\\|")
			}
			sb.WriteString("| ")
			sb.WriteString(cell)
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	writeRow(t.Rows[0])
	for j := 0; j < cols; j++ {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}

	return sb.String()
}

// ToCSV converts the table to CSV format
func (t Table) ToCSV() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			// Escape quotes and wrap in quotes if necessary
			text := cell
			if strings.ContainsAny(text, ",\"\n\r") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
