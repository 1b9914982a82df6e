package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadminer/internal/ingest"
)

// XLSXOptions configures the XLSX decoder.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX decodes one sheet of an XLSX file into a Table. Numeric cells keep
// their float value so serial dates can be recognized downstream; everything
// else is carried as its stringified form.
func ReadXLSX(path string, opts XLSXOptions) (ingest.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return ingest.Table{}, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := pickSheet(f, opts)
	if err != nil {
		return ingest.Table{}, err
	}

	var t ingest.Table
	for i, row := range sheet.Rows {
		cells := rowToCells(row)
		if i == 0 {
			t.Headers = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func pickSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToCells(row *xlsx.Row) []ingest.Cell {
	cells := make([]ingest.Cell, len(row.Cells))
	for j, cell := range row.Cells {
		if cell.Type() == xlsx.CellTypeNumeric {
			if f, err := cell.Float(); err == nil {
				cells[j] = ingest.NumberCell(f)
				continue
			}
		}
		cells[j] = ingest.StringCell(cell.String())
	}
	return cells
}
