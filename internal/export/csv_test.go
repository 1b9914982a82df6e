package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadminer/internal/model"
)

func sampleLeads() []model.MinedLead {
	return []model.MinedLead{
		{
			AccountName:     "小王爱钓鱼",
			Platform:        "douyin",
			LeadType:        model.LeadTypeUser,
			ValueCategory:   model.ValueHigh,
			OutreachStatus:  model.OutreachLikelyUncontacted,
			Date:            "2025-05-20",
			Context:         `He said, "hi"`,
			SuggestedAction: "Send a quote",
			Reason:          "Asked for pricing twice",
		},
		{
			AccountName:    "FactoryDirect88",
			Platform:       "xiaohongshu",
			LeadType:       model.LeadTypeFactory,
			ValueCategory:  model.ValuePartner,
			OutreachStatus: model.OutreachUnknown,
		},
	}
}

func TestWriteLeadsCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteLeadsCSV(&buf, sampleLeads(), model.LocaleEN))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff"), "missing BOM")

	// A field containing a quote is doubled and wrapped per RFC 4180.
	assert.Contains(t, out, `"He said, ""hi"""`)

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff")))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Account Name", records[0][0])
	assert.Equal(t, "小王爱钓鱼", records[1][0])
	assert.Equal(t, "High Value User", records[1][3])
	assert.Equal(t, `He said, "hi"`, records[1][6])
	assert.Equal(t, "Potential Partner", records[2][3])
}

func TestWriteLeadsCSVChineseHeaders(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteLeadsCSV(&buf, sampleLeads(), model.LocaleZH))

	out := buf.String()
	assert.Contains(t, out, "账号名称")
	assert.Contains(t, out, "高价值用户")
	assert.Contains(t, out, "工厂")
}

func TestWriteLeadsCSVEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteLeadsCSV(&buf, nil, model.LocaleEN))

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff")))
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteStrategyReport(t *testing.T) {
	t.Parallel()

	a := model.Analysis{
		SourceFile: "comments.xlsx",
		UpdatedAt:  time.Date(2025, 5, 21, 9, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStrategyReport(&buf, a, sampleLeads(), model.LocaleEN))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff"), "missing BOM")
	assert.Contains(t, out, "===== SALES LEAD STRATEGY REPORT =====")
	assert.Contains(t, out, "Generated: 2025-05-21 09:30")
	assert.Contains(t, out, "Source: comments.xlsx")
	assert.Contains(t, out, "Total leads: 2")
	assert.Contains(t, out, "[1] Account: 小王爱钓鱼 (Platform: douyin)")
	assert.Contains(t, out, "Value category: High Value User | Outreach status: Likely Uncontacted")
	assert.Contains(t, out, "Suggested action: Send a quote")
	assert.Contains(t, out, "[2] Account: FactoryDirect88")
}

func TestWriteStrategyReportNoLeads(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteStrategyReport(&buf, model.Analysis{}, nil, model.LocaleZH))

	out := buf.String()
	assert.Contains(t, out, "销售线索策略报告")
	assert.Contains(t, out, "本次分析未识别出线索。")
	assert.NotContains(t, out, "[1]")
}

func TestWriteStrategyReportOmitsEmptySource(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteStrategyReport(&buf, model.Analysis{}, sampleLeads(), model.LocaleEN))
	assert.NotContains(t, buf.String(), "Source:")
}
