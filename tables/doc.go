// Package tables reconstructs tables from the symbols an OCR engine found
// in an image, and merges tables from overlapping images.
//
// # Per-image Detection
//
// A [Detector] runs the full per-image pipeline: symbol extraction, line
// clustering, row tokenizing and body filtering.
//
//	detection := tables.NewDetector().Detect(result)
//	fmt.Println(detection.Table.GetText())
//
// The returned [Detection] also carries the raw rows, the rows the body
// filter rejected, and the average symbol height the thresholds scaled from.
//
// # Body Filtering
//
// Rows whose cell count is the most common one, or one short of it, form the
// table body. Everything else (captions, clipped lines, stray glyphs) is
// dropped. When two lengths are equally common, the one that reached that
// count first while scanning rows in order wins.
//
// # Merging
//
// Screenshots of a scrolling table usually overlap. [Merge] concatenates
// per-image tables in submission order and [Dedup] drops every row that is
// an exact repeat of an earlier one:
//
//	table := tables.Merge(first.Table, second.Table, third.Table)
//
// # Configuration
//
// Thresholds are controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.Row.GapFactor = 1.5
//	config.Body.Slack = 0
//	detector := tables.NewDetectorWithConfig(config)
package tables
