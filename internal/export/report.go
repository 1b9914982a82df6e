package export

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadminer/internal/model"
)

type reportStrings struct {
	title     string
	generated string
	source    string
	leadTotal string
	account   string
	platform  string
	category  string
	status    string
	action    string
	reason    string
	none      string
}

var reportLocales = map[model.Locale]reportStrings{
	model.LocaleEN: {
		title:     "SALES LEAD STRATEGY REPORT",
		generated: "Generated",
		source:    "Source",
		leadTotal: "Total leads",
		account:   "Account",
		platform:  "Platform",
		category:  "Value category",
		status:    "Outreach status",
		action:    "Suggested action",
		reason:    "Reason",
		none:      "No leads were identified in this analysis.",
	},
	model.LocaleZH: {
		title:     "销售线索策略报告",
		generated: "生成时间",
		source:    "数据来源",
		leadTotal: "线索总数",
		account:   "账号",
		platform:  "平台",
		category:  "价值分类",
		status:    "触达状态",
		action:    "建议动作",
		reason:    "判定理由",
		none:      "本次分析未识别出线索。",
	},
}

// WriteStrategyReport writes the fixed labeled-line report for an analysis.
// The file starts with a byte-order-mark like the CSV export.
func WriteStrategyReport(w io.Writer, a model.Analysis, leads []model.MinedLead, loc model.Locale) error {
	s, ok := reportLocales[loc]
	if !ok {
		s = reportLocales[model.LocaleEN]
	}

	var err error
	write := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	write("%s", utf8BOM)
	write("===== %s =====\n", s.title)
	write("%s: %s\n", s.generated, a.UpdatedAt.Format("2006-01-02 15:04"))
	if a.SourceFile != "" {
		write("%s: %s\n", s.source, a.SourceFile)
	}
	write("%s: %d\n\n", s.leadTotal, len(leads))

	if len(leads) == 0 {
		write("%s\n", s.none)
		return eris.Wrap(err, "export: write report")
	}

	for i, l := range leads {
		write("[%d] %s: %s (%s: %s)\n", i+1, s.account, l.AccountName, s.platform, l.Platform)
		write("    %s: %s | %s: %s\n", s.category, l.ValueCategory.Label(loc), s.status, l.OutreachStatus.Label(loc))
		write("    %s: %s\n", s.action, l.SuggestedAction)
		write("    %s: %s\n\n", s.reason, l.Reason)
	}
	return eris.Wrap(err, "export: write report")
}
