// Package export renders mined leads as downloadable artifacts: a
// UTF-8-with-BOM CSV table and a plain-text strategy report.
package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadminer/internal/model"
)

// utf8BOM keeps Excel from mangling non-ASCII account names.
const utf8BOM = "\ufeff"

var csvHeaders = map[model.Locale][]string{
	model.LocaleEN: {
		"Account Name", "Platform", "Lead Type", "Value Category",
		"Outreach Status", "Date", "Context", "Suggested Action", "Reason",
	},
	model.LocaleZH: {
		"账号名称", "平台", "线索类型", "价值分类",
		"触达状态", "日期", "评论内容", "建议动作", "判定理由",
	},
}

// WriteLeadsCSV writes the lead table as CSV with a leading byte-order-mark
// and localized column labels. Field quoting follows RFC 4180.
func WriteLeadsCSV(w io.Writer, leads []model.MinedLead, loc model.Locale) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return eris.Wrap(err, "export: write BOM")
	}

	headers, ok := csvHeaders[loc]
	if !ok {
		headers = csvHeaders[model.LocaleEN]
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, l := range leads {
		record := []string{
			l.AccountName,
			l.Platform,
			l.LeadType.Label(loc),
			l.ValueCategory.Label(loc),
			l.OutreachStatus.Label(loc),
			l.Date,
			l.Context,
			l.SuggestedAction,
			l.Reason,
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}
