package model

// Locale selects a display-label table. Only English and Simplified Chinese
// are shipped; unknown locales fall back to English.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleZH Locale = "zh"
)

var leadTypeLabels = map[Locale]map[LeadType]string{
	LocaleEN: {
		LeadTypeUser:    "User",
		LeadTypeFactory: "Factory",
		LeadTypeKOL:     "KOL",
	},
	LocaleZH: {
		LeadTypeUser:    "用户",
		LeadTypeFactory: "工厂",
		LeadTypeKOL:     "达人",
	},
}

var valueCategoryLabels = map[Locale]map[ValueCategory]string{
	LocaleEN: {
		ValueHigh:    "High Value User",
		ValuePartner: "Potential Partner",
		ValueMedium:  "Medium Value User",
		ValueLow:     "Low Value User",
	},
	LocaleZH: {
		ValueHigh:    "高价值用户",
		ValuePartner: "潜在合作方",
		ValueMedium:  "中价值用户",
		ValueLow:     "低价值用户",
	},
}

var outreachStatusLabels = map[Locale]map[OutreachStatus]string{
	LocaleEN: {
		OutreachLikelyUncontacted: "Likely Uncontacted",
		OutreachUnknown:           "Unknown",
		OutreachLikelyContacted:   "Likely Contacted",
	},
	LocaleZH: {
		OutreachLikelyUncontacted: "大概率未触达",
		OutreachUnknown:           "未知",
		OutreachLikelyContacted:   "大概率已触达",
	},
}

// Label returns the localized display label for a lead type.
func (t LeadType) Label(loc Locale) string {
	return lookupLabel(leadTypeLabels, loc, t)
}

// Label returns the localized display label for a value category.
func (v ValueCategory) Label(loc Locale) string {
	return lookupLabel(valueCategoryLabels, loc, v)
}

// Label returns the localized display label for an outreach status.
func (o OutreachStatus) Label(loc Locale) string {
	return lookupLabel(outreachStatusLabels, loc, o)
}

func lookupLabel[K comparable](tables map[Locale]map[K]string, loc Locale, key K) string {
	table, ok := tables[loc]
	if !ok {
		table = tables[LocaleEN]
	}
	if label, ok := table[key]; ok {
		return label
	}
	// Closed enums should never reach here; the English table is exhaustive.
	return tables[LocaleEN][key]
}

// NormalizeLocale maps arbitrary locale strings ("zh-CN", "en-US") onto a
// supported Locale.
func NormalizeLocale(s string) Locale {
	if len(s) >= 2 && s[0] == 'z' && s[1] == 'h' {
		return LocaleZH
	}
	return LocaleEN
}
