package tables

import (
	"testing"

	"github.com/tsawler/gridshot/model"
)

func TestDedup(t *testing.T) {
	rows := []model.Row{
		{"a", "1"},
		{"b", "2"},
		{"a", "1"},
		{"a", "1", ""},
		{"a1"},
		{"b", "2"},
	}

	got := Dedup(rows)
	want := model.NewTable(model.Row{"a", "1"}, model.Row{"b", "2"}, model.Row{"a", "1", ""}, model.Row{"a1"})
	if !got.Equal(want) {
		t.Errorf("Dedup() = %q, want %q", got.Rows, want.Rows)
	}
}

func TestDedup_CellBoundaries(t *testing.T) {
	rows := []model.Row{{"ab", "c"}, {"a", "bc"}, {"a:b"}, {"1:a", "b"}}
	if got := Dedup(rows); got.RowCount() != 4 {
		t.Errorf("Rows differing only in cell boundaries were merged: %q", got.Rows)
	}
}

func TestDedup_Idempotent(t *testing.T) {
	rows := []model.Row{{"x"}, {"y", "z"}, {"x"}, {"y", "z"}, {}, {}}
	once := Dedup(rows)
	twice := Dedup(once.Rows)
	if !once.Equal(twice) {
		t.Errorf("Dedup not idempotent: %q then %q", once.Rows, twice.Rows)
	}
	if once.RowCount() != 3 {
		t.Errorf("Expected 3 distinct rows, got %d", once.RowCount())
	}
}

func TestDedup_Empty(t *testing.T) {
	if got := Dedup(nil); !got.IsEmpty() {
		t.Error("Expected empty table")
	}
}

func TestMerge_FirstOccurrenceWins(t *testing.T) {
	image1 := model.NewTable(model.Row{"a", "b"}, model.Row{"c", "d"})
	image2 := model.NewTable(model.Row{"c", "d"})
	image3 := model.NewTable(model.Row{"e", "f"}, model.Row{"a", "b"})

	got := Merge(image1, image2, image3)
	want := model.NewTable(model.Row{"a", "b"}, model.Row{"c", "d"}, model.Row{"e", "f"})
	if !got.Equal(want) {
		t.Errorf("Merge() = %q, want %q", got.Rows, want.Rows)
	}
}

func TestMerge_EmptyContribution(t *testing.T) {
	got := Merge(model.Table{}, model.NewTable(model.Row{"x"}), model.Table{})
	if got.RowCount() != 1 {
		t.Errorf("Expected 1 row, got %d", got.RowCount())
	}
}
