// Package leadview derives the visible lead sequence from mined results:
// conjunctive filters, a single-key comparator sort, and fixed-size pages.
// Everything here is pure over in-memory data.
package leadview

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sells-group/leadminer/internal/model"
)

// StaleAfter is the recency window: leads dated further than this from the
// current moment (in either direction) are stale.
const StaleAfter = 90 * 24 * time.Hour

// DefaultPageSize is the fixed page size of the result view.
const DefaultPageSize = 10

// Recency selects which side of the stale boundary passes the filter.
type Recency string

const (
	RecencyAll    Recency = "all"
	RecencyRecent Recency = "recent"
	RecencyStale  Recency = "stale"
)

// Filters are the independently toggleable lead predicates. Zero values pass
// everything through.
type Filters struct {
	Recency  Recency        `json:"recency,omitempty"`
	LeadType model.LeadType `json:"lead_type,omitempty"`
	Platform string         `json:"platform,omitempty"`
}

// SortKey names a sortable lead field.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByValue    SortKey = "value_category"
	SortByOutreach SortKey = "outreach_status"
	SortByAccount  SortKey = "account_name"
	SortByLeadType SortKey = "lead_type"
)

// Direction is the sort direction multiplier.
type Direction int

const (
	Asc  Direction = 1
	Desc Direction = -1
)

// Sort is the active sort state.
type Sort struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultDirection returns the direction a key starts with when first
// selected: descending for ordinal/date keys, ascending for textual keys.
func DefaultDirection(key SortKey) Direction {
	switch key {
	case SortByAccount, SortByLeadType:
		return Asc
	default:
		return Desc
	}
}

// DefaultSort is the initial sort state of a fresh result view.
func DefaultSort() Sort {
	return Sort{Key: SortByDate, Direction: Desc}
}

// Toggle applies a sort-header click: selecting the active key flips its
// direction, switching keys resets to that key's default direction.
func Toggle(cur Sort, key SortKey) Sort {
	if cur.Key == key {
		return Sort{Key: key, Direction: -cur.Direction}
	}
	return Sort{Key: key, Direction: DefaultDirection(key)}
}

// Page is one derived page of the result view.
type Page struct {
	Leads      []model.MinedLead `json:"leads"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int               `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// Deriver evaluates result views with locale-aware string collation.
type Deriver struct {
	collator *collate.Collator
}

// NewDeriver builds a Deriver for the given display locale.
func NewDeriver(loc model.Locale) *Deriver {
	tag := language.English
	if loc == model.LocaleZH {
		tag = language.SimplifiedChinese
	}
	return &Deriver{collator: collate.New(tag)}
}

// IsStale reports whether a lead's date lies outside the recency window as of
// now. Leads with absent or unparseable dates are never stale.
func IsStale(l model.MinedLead, now time.Time) bool {
	d := l.ParsedDate()
	if d.IsZero() {
		return false
	}
	diff := now.Sub(d)
	if diff < 0 {
		diff = -diff
	}
	return diff > StaleAfter
}

// Derive filters, sorts, and paginates leads. page is 1-based and clamped into
// range; pageSize <= 0 means DefaultPageSize. The input slice is not mutated.
func (d *Deriver) Derive(leads []model.MinedLead, filters Filters, s Sort, page, pageSize int, now time.Time) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if s.Key == "" {
		s = DefaultSort()
	}

	filtered := make([]model.MinedLead, 0, len(leads))
	for _, l := range leads {
		if !matches(l, filters, now) {
			continue
		}
		filtered = append(filtered, l)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return d.compare(filtered[i], filtered[j], s) < 0
	})

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Leads:      filtered[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

func matches(l model.MinedLead, f Filters, now time.Time) bool {
	switch f.Recency {
	case RecencyRecent:
		if IsStale(l, now) {
			return false
		}
	case RecencyStale:
		if !IsStale(l, now) {
			return false
		}
	}
	if f.LeadType != "" && l.LeadType != f.LeadType {
		return false
	}
	if f.Platform != "" && l.Platform != f.Platform {
		return false
	}
	return true
}

// compare orders two leads under the active sort. The direction multiplier
// applies to the primary key only; ties always break by descending parsed
// date so the ordering stays deterministic.
func (d *Deriver) compare(a, b model.MinedLead, s Sort) int {
	primary := 0
	switch s.Key {
	case SortByValue:
		primary = intCompare(a.ValueCategory.Priority(), b.ValueCategory.Priority())
	case SortByOutreach:
		primary = intCompare(a.OutreachStatus.Priority(), b.OutreachStatus.Priority())
	case SortByAccount:
		primary = d.collator.CompareString(a.AccountName, b.AccountName)
	case SortByLeadType:
		primary = d.collator.CompareString(string(a.LeadType), string(b.LeadType))
	default: // SortByDate
		primary = dateCompare(a, b)
	}

	if primary != 0 {
		return primary * int(s.Direction)
	}
	return -dateCompare(a, b)
}

// dateCompare orders by parsed timestamp ascending; absent dates count as
// epoch 0.
func dateCompare(a, b model.MinedLead) int {
	return intCompare64(epochMillis(a), epochMillis(b))
}

func epochMillis(l model.MinedLead) int64 {
	d := l.ParsedDate()
	if d.IsZero() {
		return 0
	}
	return d.UnixMilli()
}

func intCompare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func intCompare64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
