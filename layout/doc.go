// Package layout groups positioned symbols into text lines and tokenizes
// each line into a row of cells.
//
// # Line Clustering
//
// The [LineClusterer] sorts symbols top to bottom and walks them with a
// running vertical anchor. A symbol joins the open line when its distance
// to the anchor is below the tolerance (the image's average symbol height
// by default), and the anchor moves halfway toward it:
//
//	lines := layout.NewLineClusterer().Cluster(symbols, avgHeight)
//
// Because the anchor moves, a long run of slightly slanted glyphs can end
// far from where the line started. Every [Line] records the anchor each
// member was compared against so this drift can be inspected.
//
// # Row Tokenizing
//
// The [RowTokenizer] walks each line left to right and starts a new cell
// whenever the horizontal step from the previous symbol reaches twice the
// average height:
//
//	rows := layout.NewRowTokenizer().Tokenize(lines, avgHeight)
//
// One row is produced per line.
//
// # Configuration
//
// Both stages scale their thresholds from the average height:
//
//	clusterer := layout.NewLineClustererWithConfig(layout.LineConfig{Tolerance: 0.8})
//	tokenizer := layout.NewRowTokenizerWithConfig(layout.RowConfig{GapFactor: 1.5})
package layout
