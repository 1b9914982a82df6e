// Package ingest converts exported comment spreadsheets into the normalized
// line corpus fed to the analysis model. It classifies header columns into
// semantic roles and renders data rows as labeled text lines.
package ingest

import (
	"strconv"
	"strings"
)

// CellKind discriminates the typed cell values a tabular decoder produces.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is one typed spreadsheet cell. Number cells keep their float value so
// spreadsheet serial dates survive decoding; Text always carries the raw
// stringified form.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// StringCell wraps a raw string as a Cell, collapsing blank strings to empty.
func StringCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Text: s}
}

// NumberCell wraps a numeric value as a Cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// String returns the stringified cell value; empty cells stringify to "".
func (c Cell) String() string {
	return c.Text
}

// Empty reports whether the cell holds no usable value.
func (c Cell) Empty() bool {
	return c.Kind == CellEmpty || strings.TrimSpace(c.Text) == ""
}

// Table is a decoded spreadsheet grid. Row 0 is the header row; data rows may
// be ragged and must be indexed defensively.
type Table struct {
	Headers []Cell
	Rows    [][]Cell
}

// At returns the cell at column idx of row, or an empty cell when the row is
// shorter than idx.
func At(row []Cell, idx int) Cell {
	if idx < 0 || idx >= len(row) {
		return Cell{}
	}
	return row[idx]
}
