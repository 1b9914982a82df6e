package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	fullRoles := RoleMap{Content: 0, UserName: 1, UserID: 2, Date: 3, Location: 4}

	tests := []struct {
		name  string
		rows  [][]Cell
		roles RoleMap
		want  []string
	}{
		{
			name: "all segments present",
			rows: [][]Cell{
				headerRow("这个多少钱", "小王", "dy12345", "2025-01-15", "广东"),
			},
			roles: fullRoles,
			want:  []string{`Content: "这个多少钱" | User: 小王 (ID: dy12345) | Date: 2025-01-15 | Loc: 广东`},
		},
		{
			name: "empty content rows skipped",
			rows: [][]Cell{
				headerRow("", "小王", "dy1", "2025-01-15", ""),
				headerRow("在吗", "小李", "dy2", "2025-01-16", ""),
			},
			roles: fullRoles,
			want:  []string{`Content: "在吗" | User: 小李 (ID: dy2) | Date: 2025-01-16`},
		},
		{
			name: "id only user segment",
			rows: [][]Cell{
				headerRow("求链接", "", "dy9", "", ""),
			},
			roles: fullRoles,
			want:  []string{`Content: "求链接" | User: ID: dy9`},
		},
		{
			name: "name only user segment",
			rows: [][]Cell{
				headerRow("怎么买", "小张", "", "", ""),
			},
			roles: fullRoles,
			want:  []string{`Content: "怎么买" | User: 小张`},
		},
		{
			name: "url-like user values discarded",
			rows: [][]Cell{
				headerRow("great product", "https://example.com/u/1", "www.example.com", "", ""),
			},
			roles: fullRoles,
			want:  []string{`Content: "great product"`},
		},
		{
			name: "missing optional roles omit segments",
			rows: [][]Cell{
				headerRow("需要报价"),
			},
			roles: RoleMap{Content: 0, UserName: -1, UserID: -1, Date: -1, Location: -1},
			want:  []string{`Content: "需要报价"`},
		},
		{
			name: "short rows tolerated",
			rows: [][]Cell{
				headerRow("联系方式", "小陈"),
			},
			roles: fullRoles,
			want:  []string{`Content: "联系方式" | User: 小陈`},
		},
		{
			name: "quotes escaped in content",
			rows: [][]Cell{
				headerRow(`he said "hi"`),
			},
			roles: RoleMap{Content: 0, UserName: -1, UserID: -1, Date: -1, Location: -1},
			want:  []string{`Content: "he said \"hi\""`},
		},
		{
			name:  "no content role yields nothing",
			rows:  [][]Cell{headerRow("a", "b")},
			roles: emptyRoleMap(),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.rows, tt.roles, 0))
		})
	}
}

func TestNormalizeRowCap(t *testing.T) {
	t.Parallel()

	roles := RoleMap{Content: 0, UserName: -1, UserID: -1, Date: -1, Location: -1}
	var rows [][]Cell
	for i := 0; i < 10; i++ {
		rows = append(rows, headerRow(fmt.Sprintf("row %d", i)))
	}

	lines := Normalize(rows, roles, 3)
	assert.Len(t, lines, 3)
	assert.Equal(t, `Content: "row 0"`, lines[0])
	assert.Equal(t, `Content: "row 2"`, lines[2])
}

func TestNormalizeRowCapCountsConsumedRows(t *testing.T) {
	t.Parallel()

	// Empty-content rows inside the window still consume the cap, so the
	// normalizer never scans past maxRows rows to fill the quota.
	roles := RoleMap{Content: 0, UserName: -1, UserID: -1, Date: -1, Location: -1}
	rows := [][]Cell{
		headerRow(""),
		headerRow("one"),
		headerRow(""),
		headerRow("two"),
		headerRow("three"),
	}

	lines := Normalize(rows, roles, 4)
	assert.Equal(t, []string{`Content: "one"`, `Content: "two"`}, lines)
}

func TestNormalizeRowCapNeverScansPastWindow(t *testing.T) {
	t.Parallel()

	roles := RoleMap{Content: 0, UserName: -1, UserID: -1, Date: -1, Location: -1}
	rows := [][]Cell{headerRow("")}
	for i := 1; i < 302; i++ {
		rows = append(rows, headerRow(fmt.Sprintf("row %d", i-1)))
	}

	lines := Normalize(rows, roles, 300)
	assert.Len(t, lines, 299)
	assert.Equal(t, `Content: "row 298"`, lines[298])
}

func TestRenderDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"string date passes through", StringCell("2025-01-15 08:30:00"), "2025-01-15 08:30:00"},
		{"serial date converted", NumberCell(45000), "2023-03-15"},
		{"serial with fraction keeps calendar day", NumberCell(45000.75), "2023-03-15"},
		{"garbage numeric falls back to raw", NumberCell(9e9), "9000000000"},
		{"negative serial falls back to raw", NumberCell(-500000), "-500000"},
		{"empty cell", StringCell(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, renderDate(tt.cell))
		})
	}
}

func TestSerialToISO(t *testing.T) {
	t.Parallel()

	iso, ok := serialToISO(25569)
	assert.True(t, ok)
	assert.Equal(t, "1970-01-01", iso)

	_, ok = serialToISO(1e8)
	assert.False(t, ok)
}

func TestLooksLikeURL(t *testing.T) {
	t.Parallel()

	assert.True(t, looksLikeURL("https://example.com"))
	assert.True(t, looksLikeURL("HTTP://EXAMPLE.COM"))
	assert.True(t, looksLikeURL("www.example.com"))
	assert.False(t, looksLikeURL("小王"))
	assert.False(t, looksLikeURL("wwen"))
}
