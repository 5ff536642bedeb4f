// Package model provides the value types shared by every stage of table
// reconstruction.
//
// # Geometry
//
// OCR engines report each recognized glyph inside a 4-vertex polygon:
//
//   - [Point] - 2D point in image pixel coordinates (Y grows downward)
//   - [Quad] - bounding polygon with centroid and extent calculations
//   - [BBox] - axis-aligned bounding box with containment and union
//
// # Symbols
//
// A [Symbol] is the flattened form of one glyph: its text, the centroid of
// its polygon and its height. All clustering works on symbols only, never on
// an engine-specific response.
//
// # Tables
//
// A [Row] is the ordered list of cells built from one text line and a
// [Table] is an ordered list of rows:
//
//	table := model.NewTable(model.Row{"A", "B"}, model.Row{"C", "D"})
//	fmt.Print(table.ToCSV())
//
// Export helpers ToMarkdown() and ToCSV() are available for quick output;
// the export package handles metadata lines, headers and encodings.
package model
