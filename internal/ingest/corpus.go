package ingest

import "strings"

// ImportSeparator marks where imported spreadsheet data begins when appended
// to pre-existing free-text input.
const ImportSeparator = "--- IMPORTED DATA ---"

// BuildCorpus joins free-text input and normalized lines into the text block
// handed to the analysis model. Either part may be empty.
func BuildCorpus(freeText string, lines []string) string {
	freeText = strings.TrimSpace(freeText)
	block := strings.Join(lines, "\n")

	switch {
	case freeText == "":
		return block
	case block == "":
		return freeText
	default:
		return freeText + "\n\n" + ImportSeparator + "\n" + block
	}
}

// ExtractTable classifies a table's headers and normalizes its rows in one
// step. Returns ErrNoContentColumn when the table is unusable.
func ExtractTable(t Table, maxRows int) ([]string, RoleMap, error) {
	roles := ClassifyHeaders(t.Headers)
	if !roles.HasContent() {
		return nil, roles, ErrNoContentColumn
	}
	lines := Normalize(t.Rows, roles, maxRows)
	if len(lines) == 0 {
		return nil, roles, ErrNoContentColumn
	}
	return lines, roles, nil
}
