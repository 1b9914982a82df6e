package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/leadminer/internal/config"
	"github.com/sells-group/leadminer/internal/leadview"
	"github.com/sells-group/leadminer/internal/miner"
	"github.com/sells-group/leadminer/internal/model"
	"github.com/sells-group/leadminer/internal/store"
	"github.com/sells-group/leadminer/pkg/anthropic"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const minedJSON = `[
  {
    "account_name": "小王爱钓鱼",
    "platform": "douyin",
    "lead_type": "user",
    "value_category": "high_value",
    "outreach_status": "likely_uncontacted",
    "date": "2025-05-20",
    "context": "问了三次价格",
    "suggested_action": "私信报价",
    "reason": "明确购买意向"
  }
]`

// cannedClient answers every model call with a fixed body.
type cannedClient struct {
	text string
}

func (c *cannedClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return &anthropic.MessageResponse{Text: c.text}, nil
}

func newTestAPI(t *testing.T) (*api, store.Store) {
	t.Helper()

	cfg = &config.Config{Mine: config.MineConfig{MaxRows: 300}, Locale: "en"}

	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))

	e := &env{
		Store:  s,
		Miner:  miner.New(&cannedClient{text: minedJSON}, miner.Options{}),
		Locale: model.LocaleEN,
	}
	return newAPI(e), s
}

func TestHandleHealth(t *testing.T) {
	a, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func multipartBody(t *testing.T, fields map[string]string, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func waitForStatus(t *testing.T, s store.Store, id string, want model.AnalysisStatus) *model.Analysis {
	t.Helper()
	var got *model.Analysis
	require.Eventually(t, func() bool {
		a, err := s.GetAnalysis(context.Background(), id)
		if err != nil {
			return false
		}
		got = a
		return a.Status == want
	}, 5*time.Second, 10*time.Millisecond)
	return got
}

func TestCreateAnalysisFreeText(t *testing.T) {
	a, s := newTestAPI(t)
	router := a.routes()

	body, contentType := multipartBody(t, map[string]string{"input": "我们卖渔具，这是最近的评论"}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id := resp["analysis_id"]
	require.NotEmpty(t, id)

	got := waitForStatus(t, s, id, model.AnalysisStatusComplete)
	assert.Equal(t, 1, got.LeadCount)

	leads, err := s.ListLeads(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "小王爱钓鱼", leads[0].AccountName)
}

func TestCreateAnalysisWithCSVUpload(t *testing.T) {
	a, s := newTestAPI(t)
	router := a.routes()

	csvData := "评论内容,昵称,时间\n这个怎么卖,小王,2025-05-20\n"
	body, contentType := multipartBody(t, nil, "comments.csv", csvData)
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	got := waitForStatus(t, s, resp["analysis_id"], model.AnalysisStatusComplete)
	assert.Equal(t, "comments.csv", got.SourceFile)
	assert.Equal(t, 1, got.RowCount)
	assert.Contains(t, got.Input, `Content: "这个怎么卖"`)
}

func TestCreateAnalysisUnusableColumnsWithoutText(t *testing.T) {
	a, _ := newTestAPI(t)
	router := a.routes()

	// No header the classifier can use, and no free text to fall back on.
	body, contentType := multipartBody(t, nil, "junk.csv", "主页链接,备注\nhttps://x.test,hello\n")
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not find matching columns")
}

func TestCreateAnalysisEmpty(t *testing.T) {
	a, _ := newTestAPI(t)
	router := a.routes()

	body, contentType := multipartBody(t, map[string]string{"input": ""}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func seedAnalysis(t *testing.T, s store.Store, leads []model.MinedLead) string {
	t.Helper()
	a, err := s.CreateAnalysis(context.Background(), "corpus", "f.csv", len(leads))
	require.NoError(t, err)
	require.NoError(t, s.CompleteAnalysis(context.Background(), a.ID, leads))
	return a.ID
}

func TestHandleLeads(t *testing.T) {
	a, s := newTestAPI(t)
	router := a.routes()

	id := seedAnalysis(t, s, []model.MinedLead{
		{AccountName: "high", ValueCategory: model.ValueHigh, Date: "2025-05-01"},
		{AccountName: "low", ValueCategory: model.ValueLow, Date: "2025-05-02"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/"+id+"/leads?sort=value_category", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page leadview.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Leads, 2)
	assert.Equal(t, "high", page.Leads[0].AccountName)
	assert.Equal(t, 1, page.TotalPages)
}

func TestHandleLatestLeads(t *testing.T) {
	a, s := newTestAPI(t)
	router := a.routes()

	body, contentType := multipartBody(t, map[string]string{"input": "最近的评论"}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	waitForStatus(t, s, resp["analysis_id"], model.AnalysisStatusComplete)

	// The session is updated just after the analysis completes.
	var page leadview.Page
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/leads/latest", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			return false
		}
		return len(page.Leads) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "小王爱钓鱼", page.Leads[0].AccountName)
}

func TestHandleLatestLeadsIgnoresStaleResponse(t *testing.T) {
	a, _ := newTestAPI(t)
	router := a.routes()

	// A response tied to a superseded generation never surfaces as the
	// latest result set.
	gen := a.session.Begin()
	a.session.Begin()
	a.session.Apply(gen, []model.MinedLead{{AccountName: "stale"}})

	req := httptest.NewRequest(http.MethodGet, "/api/leads/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page leadview.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Leads)
}

func TestHandleExportCSV(t *testing.T) {
	a, s := newTestAPI(t)
	router := a.routes()

	id := seedAnalysis(t, s, []model.MinedLead{{AccountName: "小王", Platform: "douyin"}})

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/"+id+"/export.csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeff"))
	assert.Contains(t, rec.Body.String(), "小王")
}

func TestHandleExportReport(t *testing.T) {
	a, s := newTestAPI(t)
	router := a.routes()

	id := seedAnalysis(t, s, []model.MinedLead{{AccountName: "小王", Platform: "douyin"}})

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/"+id+"/export.txt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SALES LEAD STRATEGY REPORT")
}

func TestHandleScript(t *testing.T) {
	a, s := newTestAPI(t)
	a.env.Miner = miner.New(&cannedClient{text: "你好，看到你的评论…"}, miner.Options{})
	router := a.routes()

	l := model.MinedLead{AccountName: "小王", Platform: "douyin", Context: "问价"}
	id := seedAnalysis(t, s, []model.MinedLead{l})

	payload := `{"lead_key": "` + l.Key() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyses/"+id+"/scripts", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var script model.OutreachScript
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &script))
	assert.Equal(t, "小王", script.AccountName)
	assert.NotEmpty(t, script.Script)
}

func TestHandleScriptUnknownLead(t *testing.T) {
	a, s := newTestAPI(t)
	router := a.routes()

	id := seedAnalysis(t, s, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyses/"+id+"/scripts", strings.NewReader(`{"lead_key": "nope"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSetTracking(t *testing.T) {
	a, _ := newTestAPI(t)
	router := a.routes()

	body := `{"account_name": "小王", "status": "contacted", "note": "sent quote"}`
	req := httptest.NewRequest(http.MethodPut, "/api/tracking/some-key", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/tracking", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "some-key")
	assert.Contains(t, rec.Body.String(), "contacted")
}

func TestHandleSetTrackingRejectsBadStatus(t *testing.T) {
	a, _ := newTestAPI(t)
	router := a.routes()

	req := httptest.NewRequest(http.MethodPut, "/api/tracking/k", strings.NewReader(`{"status": "archived"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetAnalysisNotFound(t *testing.T) {
	a, _ := newTestAPI(t)
	router := a.routes()

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
