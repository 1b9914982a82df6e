package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultMaxRows caps how many data rows feed the analysis corpus.
const DefaultMaxRows = 300

// ErrNoContentColumn signals that no content column could be resolved for a
// table, or that no row carried content. Callers surface this as a
// "could not find matching columns" condition, not a crash.
var ErrNoContentColumn = eris.New("ingest: no content column matched the header vocabulary")

// Spreadsheet serial dates count days from the 1900 epoch; 25569 days offset
// to the Unix epoch, 86400 seconds per day.
const (
	serialEpochOffsetDays = 25569
	secondsPerDay         = 86400
)

// Normalize renders the first maxRows data rows as labeled text lines, one per
// row with non-empty content, preserving input order. Rows past the cap are
// never consumed, so a row with empty content within the window still counts
// against it. maxRows <= 0 means DefaultMaxRows.
func Normalize(rows [][]Cell, roles RoleMap, maxRows int) []string {
	if !roles.HasContent() {
		return nil
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	var lines []string
	for _, row := range rows {
		content := At(row, roles.Content)
		if content.Empty() {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Content: %q", content.String())

		if user := resolveUser(row, roles); user != "" {
			b.WriteString(" | User: ")
			b.WriteString(user)
		}
		if roles.Date >= 0 {
			if date := renderDate(At(row, roles.Date)); date != "" {
				b.WriteString(" | Date: ")
				b.WriteString(date)
			}
		}
		if roles.Location >= 0 {
			if loc := At(row, roles.Location); !loc.Empty() {
				b.WriteString(" | Loc: ")
				b.WriteString(loc.String())
			}
		}

		lines = append(lines, b.String())
	}
	return lines
}

// resolveUser combines the user-name and user-id cells into the User segment.
// Candidates that are empty or look like URLs are discarded; the segment is
// omitted entirely when neither survives.
func resolveUser(row []Cell, roles RoleMap) string {
	var name, id string
	if roles.UserName >= 0 {
		name = userCandidate(At(row, roles.UserName))
	}
	if roles.UserID >= 0 {
		id = userCandidate(At(row, roles.UserID))
	}

	switch {
	case name != "" && id != "":
		return fmt.Sprintf("%s (ID: %s)", name, id)
	case id != "":
		return "ID: " + id
	default:
		return name
	}
}

func userCandidate(c Cell) string {
	v := strings.TrimSpace(c.String())
	if v == "" || looksLikeURL(v) {
		return ""
	}
	return v
}

func looksLikeURL(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "www")
}

// renderDate formats a date cell. Numeric cells are interpreted as spreadsheet
// serial dates and rendered as an ISO calendar date; anything else passes
// through as its raw stringified value. Empty cells render as "".
func renderDate(c Cell) string {
	if c.Empty() {
		return ""
	}
	if c.Kind == CellNumber {
		if iso, ok := serialToISO(c.Number); ok {
			return iso
		}
	}
	return c.String()
}

// serialToISO converts a spreadsheet serial date to YYYY-MM-DD. Serials that
// land outside a sane calendar range are rejected so garbage numerics fall
// back to their raw form.
func serialToISO(serial float64) (string, bool) {
	ms := (serial - serialEpochOffsetDays) * secondsPerDay * 1000
	t := time.UnixMilli(int64(ms)).UTC()
	if t.Year() < 1900 || t.Year() > 2200 {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
