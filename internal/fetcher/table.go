package fetcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadminer/internal/ingest"
)

// ReadTableFile decodes a tabular file into a Table, dispatching on file
// extension. Supported: .csv, .tsv, .xlsx.
func ReadTableFile(path string) (ingest.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVFile(path, CSVOptions{})
	case ".tsv":
		return readCSVFile(path, CSVOptions{Delimiter: '\t'})
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{})
	default:
		return ingest.Table{}, eris.Errorf("fetcher: unsupported table format %q", filepath.Ext(path))
	}
}

func readCSVFile(path string, opts CSVOptions) (ingest.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.Table{}, eris.Wrapf(err, "fetcher: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, opts)
}
