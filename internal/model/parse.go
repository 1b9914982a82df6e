package model

import "strings"

// The analysis model is instructed to emit the canonical enum tokens, but in
// practice it sometimes answers with display labels instead. These parsers
// accept both and collapse anything else onto a safe default.

// ParseLeadType maps a raw model answer onto a LeadType.
func ParseLeadType(s string) LeadType {
	switch canonical(s) {
	case "factory", "工厂":
		return LeadTypeFactory
	case "kol", "达人", "博主":
		return LeadTypeKOL
	default:
		return LeadTypeUser
	}
}

// ParseValueCategory maps a raw model answer onto a ValueCategory.
func ParseValueCategory(s string) ValueCategory {
	switch canonical(s) {
	case "high_value", "high value user", "高价值用户":
		return ValueHigh
	case "potential_partner", "potential partner", "潜在合作方":
		return ValuePartner
	case "medium_value", "medium value user", "中价值用户":
		return ValueMedium
	default:
		return ValueLow
	}
}

// ParseOutreachStatus maps a raw model answer onto an OutreachStatus.
func ParseOutreachStatus(s string) OutreachStatus {
	switch canonical(s) {
	case "likely_uncontacted", "likely uncontacted", "大概率未触达":
		return OutreachLikelyUncontacted
	case "likely_contacted", "likely contacted", "大概率已触达":
		return OutreachLikelyContacted
	default:
		return OutreachUnknown
	}
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
