// Package fetcher decodes uploaded tabular files (CSV, XLSX) into typed cell
// grids for the ingest pipeline.
package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadminer/internal/ingest"
)

// CSVOptions configures the CSV decoder.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// ReadCSV decodes a CSV stream into a Table. The first record becomes the
// header row; data rows may be ragged. A decode error yields no partial
// output.
func ReadCSV(r io.Reader, opts CSVOptions) (ingest.Table, error) {
	reader := csv.NewReader(stripBOM(r))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return ingest.Table{}, eris.Wrap(err, "csv: read")
	}
	if len(records) == 0 {
		return ingest.Table{}, nil
	}

	t := ingest.Table{Headers: toCells(records[0])}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, toCells(rec))
	}
	return t, nil
}

func toCells(record []string) []ingest.Cell {
	cells := make([]ingest.Cell, len(record))
	for i, field := range record {
		cells[i] = ingest.StringCell(strings.TrimSpace(field))
	}
	return cells
}

// stripBOM drops a leading UTF-8 byte-order-mark, which Windows spreadsheet
// exports routinely prepend.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
