// Package model defines the domain types shared across the lead mining pipeline.
package model

import (
	"fmt"
	"hash/fnv"
	"time"
)

// LeadType classifies what kind of account a mined lead is.
type LeadType string

const (
	LeadTypeUser    LeadType = "user"
	LeadTypeFactory LeadType = "factory"
	LeadTypeKOL     LeadType = "kol"
)

// ValueCategory is an ordinal classification of a lead's business worth.
type ValueCategory string

const (
	ValueHigh    ValueCategory = "high_value"
	ValuePartner ValueCategory = "potential_partner"
	ValueMedium  ValueCategory = "medium_value"
	ValueLow     ValueCategory = "low_value"
)

// Priority returns the sort ordinal for a value category. Unknown categories
// rank lowest.
func (v ValueCategory) Priority() int {
	switch v {
	case ValueHigh:
		return 3
	case ValuePartner:
		return 2
	case ValueMedium:
		return 1
	default:
		return 0
	}
}

// OutreachStatus estimates whether a lead has already been contacted.
type OutreachStatus string

const (
	OutreachLikelyUncontacted OutreachStatus = "likely_uncontacted"
	OutreachUnknown           OutreachStatus = "unknown"
	OutreachLikelyContacted   OutreachStatus = "likely_contacted"
)

// Priority returns the sort ordinal for an outreach status.
func (o OutreachStatus) Priority() int {
	switch o {
	case OutreachLikelyUncontacted:
		return 2
	case OutreachUnknown:
		return 1
	default:
		return 0
	}
}

// MinedLead is a single structured lead returned by the analysis model.
type MinedLead struct {
	AccountName     string         `json:"account_name"`
	Platform        string         `json:"platform"`
	LeadType        LeadType       `json:"lead_type"`
	ValueCategory   ValueCategory  `json:"value_category"`
	OutreachStatus  OutreachStatus `json:"outreach_status"`
	Date            string         `json:"date,omitempty"`
	Context         string         `json:"context"`
	SuggestedAction string         `json:"suggested_action"`
	Reason          string         `json:"reason"`
}

// Key returns a stable identity for the lead, independent of its position in
// any derived view. Account names alone collide across platforms and repeated
// mentions, so the context is hashed in.
func (l MinedLead) Key() string {
	h := fnv.New64a()
	h.Write([]byte(l.AccountName))
	h.Write([]byte{0})
	h.Write([]byte(l.Context))
	return fmt.Sprintf("%s-%016x", sanitizeKeyPart(l.AccountName), h.Sum64())
}

func sanitizeKeyPart(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
		if len(out) >= 32 {
			break
		}
	}
	return string(out)
}

// ParsedDate returns the lead's date as a time, or the zero value when the
// date is absent or unparseable.
func (l MinedLead) ParsedDate() time.Time {
	return ParseLeadDate(l.Date)
}

// leadDateLayouts lists the date formats the analysis model has been observed
// to emit.
var leadDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseLeadDate parses an ISO-like lead date string. Returns the zero time for
// empty or unparseable input.
func ParseLeadDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range leadDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Tracking is a lightweight CRM record for one lead.
type Tracking struct {
	LeadKey     string         `json:"lead_key"`
	AccountName string         `json:"account_name"`
	Status      TrackingStatus `json:"status"`
	Note        string         `json:"note,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TrackingStatus is the manual CRM state of a lead.
type TrackingStatus string

const (
	TrackingNew       TrackingStatus = "new"
	TrackingContacted TrackingStatus = "contacted"
	TrackingReplied   TrackingStatus = "replied"
	TrackingClosed    TrackingStatus = "closed"
)

// ValidTrackingStatus reports whether s is one of the closed tracking states.
func ValidTrackingStatus(s TrackingStatus) bool {
	switch s {
	case TrackingNew, TrackingContacted, TrackingReplied, TrackingClosed:
		return true
	}
	return false
}
