// Package export writes reconstructed tables as CSV, TSV, Markdown or JSON.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tsawler/gridshot/model"
)

// Format defines the available export formats
type Format int

const (
	// FormatCSV exports as comma-separated values
	FormatCSV Format = iota
	// FormatTSV exports as tab-separated values
	FormatTSV
	// FormatMarkdown exports as a markdown table
	FormatMarkdown
	// FormatJSON exports as a JSON object
	FormatJSON
)

// String returns a human-readable representation of the export format
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatMarkdown:
		return "markdown"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (f Format) FileExtension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatTSV:
		return ".tsv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// ContentType returns the media type for HTTP responses
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat maps a name such as "csv" or "md" to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv", "":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatCSV, fmt.Errorf("unsupported export format: %q", name)
	}
}

// MetaField is one "#key: value" line written before the table
type MetaField struct {
	Key   string
	Value string
}

// Config holds configuration options for export
type Config struct {
	// Format specifies the export format
	Format Format

	// Delimiter specifies the field separator for CSV (default: comma)
	Delimiter rune

	// Header is written before the data rows when non-empty
	Header []string

	// Meta lines are written first, in order
	Meta []MetaField

	// BOM prefixes CSV and TSV output with a UTF-8 byte order mark so
	// spreadsheet applications detect the encoding
	BOM bool

	// CRLF terminates CSV and TSV records with \r\n
	CRLF bool

	// PrettyPrint enables indentation for JSON
	PrettyPrint bool
}

// DefaultConfig returns spreadsheet-friendly CSV settings
func DefaultConfig() Config {
	return Config{
		Format:    FormatCSV,
		Delimiter: ',',
		BOM:       true,
		CRLF:      true,
	}
}

// TSVConfig returns config for tab-separated export
func TSVConfig() Config {
	config := DefaultConfig()
	config.Format = FormatTSV
	config.Delimiter = '\t'
	return config
}

// Exporter writes tables in a configured format
type Exporter struct {
	config Config
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{config: DefaultConfig()}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config Config) *Exporter {
	return &Exporter{config: config}
}

// Config returns the exporter's configuration
func (e *Exporter) Config() Config {
	return e.config
}

// Export writes the table to w
func (e *Exporter) Export(table model.Table, w io.Writer) error {
	switch e.config.Format {
	case FormatCSV, FormatTSV:
		return e.exportCSV(table, w)
	case FormatMarkdown:
		return e.exportMarkdown(table, w)
	case FormatJSON:
		return e.exportJSON(table, w)
	default:
		return fmt.Errorf("unsupported export format: %v", e.config.Format)
	}
}

// ExportToFile writes the table to a file, replacing any existing one
func (e *Exporter) ExportToFile(table model.Table, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	if err := e.Export(table, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportToString writes the table to a string
func (e *Exporter) ExportToString(table model.Table) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(table, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) exportCSV(table model.Table, w io.Writer) error {
	out := w
	var bom io.WriteCloser
	if e.config.BOM {
		bom = transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		out = bom
	}

	csvWriter := csv.NewWriter(out)
	csvWriter.Comma = e.delimiter()
	csvWriter.UseCRLF = e.config.CRLF

	for _, m := range e.config.Meta {
		if err := csvWriter.Write([]string{metaLine(m)}); err != nil {
			return fmt.Errorf("writing metadata: %w", err)
		}
	}

	if len(e.config.Header) > 0 {
		if err := csvWriter.Write(e.config.Header); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	for i, row := range table.Rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}

	if bom != nil {
		// Close flushes the BOM even when nothing else was written.
		return bom.Close()
	}
	return nil
}

func (e *Exporter) delimiter() rune {
	if e.config.Delimiter != 0 {
		return e.config.Delimiter
	}
	if e.config.Format == FormatTSV {
		return '\t'
	}
	return ','
}

func metaLine(m MetaField) string {
	return "#" + m.Key + ": " + m.Value
}

func (e *Exporter) exportMarkdown(table model.Table, w io.Writer) error {
	var sb strings.Builder
	for _, m := range e.config.Meta {
		sb.WriteString("<!-- ")
		sb.WriteString(metaLine(m))
		sb.WriteString(" -->\n")
	}
	if len(e.config.Meta) > 0 {
		sb.WriteString("\n")
	}

	if len(e.config.Header) > 0 {
		rows := append([]model.Row{model.Row(e.config.Header)}, table.Rows...)
		table = model.NewTable(rows...)
	}
	sb.WriteString(table.ToMarkdown())

	_, err := io.WriteString(w, sb.String())
	return err
}

// jsonTable is the JSON export shape
type jsonTable struct {
	Meta   map[string]string `json:"meta,omitempty"`
	Header []string          `json:"header,omitempty"`
	Rows   [][]string        `json:"rows"`
}

func (e *Exporter) exportJSON(table model.Table, w io.Writer) error {
	doc := jsonTable{
		Header: e.config.Header,
		Rows:   table.Records(),
	}
	if len(e.config.Meta) > 0 {
		doc.Meta = make(map[string]string, len(e.config.Meta))
		for _, m := range e.config.Meta {
			doc.Meta[m.Key] = m.Value
		}
	}

	encoder := json.NewEncoder(w)
	if e.config.PrettyPrint {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encoding table: %w", err)
	}
	return nil
}

// Filename returns "<prefix>_YYYYMMDD_HHMM.csv" for t in loc. A nil loc
// uses t's own location.
func Filename(prefix string, t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s_%s%s", prefix, t.Format("20060102_1504"), FormatCSV.FileExtension())
}
