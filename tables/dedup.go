package tables

import (
	"github.com/tsawler/gridshot/model"
)

// Dedup keeps the first occurrence of every distinct row, preserving
// order. Rows are compared cell by cell with exact string equality.
func Dedup(rows []model.Row) model.Table {
	seen := make(map[string]struct{}, len(rows))
	var out []model.Row
	for _, row := range rows {
		key := row.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return model.NewTable(out...)
}

// Merge concatenates tables in the order given and removes duplicate rows.
// Callers processing images concurrently must pass the tables in image
// submission order, not completion order.
func Merge(tables ...model.Table) model.Table {
	var rows []model.Row
	for _, t := range tables {
		rows = append(rows, t.Rows...)
	}
	return Dedup(rows)
}
