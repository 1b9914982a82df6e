package ingest

import "strings"

// RoleMap assigns at most one column index to each semantic role. Absent roles
// hold -1. Absence of the content role means the table is unusable for
// normalization.
type RoleMap struct {
	Content  int
	UserName int
	UserID   int
	Date     int
	Location int
}

// emptyRoleMap is the all-absent starting state.
func emptyRoleMap() RoleMap {
	return RoleMap{Content: -1, UserName: -1, UserID: -1, Date: -1, Location: -1}
}

// HasContent reports whether a content column was resolved.
func (m RoleMap) HasContent() bool { return m.Content >= 0 }

// Header vocabulary, per role, covering the two supported locales (zh, en).
// Kept as explicit tables so the priority semantics live in classify, not in
// the matching order of a flat list.
var (
	contentExact = []string{"评论内容", "comment content"}
	contentTerms = []string{"内容", "评论", "content", "comment"}
	linkTerms    = []string{"链接", "网址", "link", "url"}
	idLikeTerms  = []string{"id", "uid", "序号", "编号", "账号", "抖音号", "code"}
	userTerms    = []string{"昵称", "用户名", "姓名", "名称", "nickname", "name", "user", "commenter"}
	userIDTerms  = []string{"抖音号", "账号", "id", "uid", "code", "编号"}
	dateTerms    = []string{"时间", "日期", "time", "date"}
	locTerms     = []string{"地区", "地址", "属地", "region", "location", "area"}
)

func containsAny(h string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(h, t) {
			return true
		}
	}
	return false
}

func equalsAny(h string, terms []string) bool {
	for _, t := range terms {
		if h == t {
			return true
		}
	}
	return false
}

// ClassifyHeaders assigns column indices to semantic roles from the header
// row. Single left-to-right pass; for each column the rules run in fixed
// priority (content, link guard, user name, user id, date, location) and the
// first unassigned role that matches wins. Non-string headers are matched on
// their stringified form. Duplicate headers resolve to the first occurrence.
func ClassifyHeaders(headers []Cell) RoleMap {
	m := emptyRoleMap()
	linkCols := make(map[int]bool, len(headers))

	for i, cell := range headers {
		h := strings.ToLower(strings.TrimSpace(cell.String()))
		if h == "" {
			continue
		}
		idLike := containsAny(h, idLikeTerms)
		if containsAny(h, linkTerms) {
			// Link columns carry profile URLs, never usable as name or id.
			linkCols[i] = true
		}

		if m.Content < 0 && (equalsAny(h, contentExact) || (!idLike && containsAny(h, contentTerms))) {
			m.Content = i
			continue
		}
		if m.UserName < 0 && !linkCols[i] && !idLike && containsAny(h, userTerms) {
			m.UserName = i
			continue
		}
		if m.UserID < 0 && !linkCols[i] && containsAny(h, userIDTerms) {
			m.UserID = i
			continue
		}
		if m.Date < 0 && containsAny(h, dateTerms) {
			m.Date = i
			continue
		}
		if m.Location < 0 && containsAny(h, locTerms) {
			m.Location = i
		}
	}

	return applyPositionalFallback(m, len(headers), linkCols)
}

// applyPositionalFallback recovers the common "Content, User, ID, ..."
// positional export layout that lacks descriptive headers. If nothing claimed
// column 0 it is assumed to be content; with content at column 0, user name
// and user id fill in at columns 1 and 2 when those are unclaimed.
func applyPositionalFallback(m RoleMap, cols int, linkCols map[int]bool) RoleMap {
	if m.Content < 0 && cols > 0 && !linkCols[0] && !m.claims(0) {
		m.Content = 0
	}
	if m.Content != 0 {
		return m
	}
	if m.UserName < 0 && cols >= 2 && !linkCols[1] && !m.claims(1) {
		m.UserName = 1
	}
	if m.UserID < 0 && cols >= 3 && !linkCols[2] && !m.claims(2) {
		m.UserID = 2
	}
	return m
}

// claims reports whether any role is already assigned to column idx.
func (m RoleMap) claims(idx int) bool {
	return m.Content == idx || m.UserName == idx || m.UserID == idx ||
		m.Date == idx || m.Location == idx
}
