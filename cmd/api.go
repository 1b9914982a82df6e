package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadminer/internal/export"
	"github.com/sells-group/leadminer/internal/fetcher"
	"github.com/sells-group/leadminer/internal/ingest"
	"github.com/sells-group/leadminer/internal/leadview"
	"github.com/sells-group/leadminer/internal/miner"
	"github.com/sells-group/leadminer/internal/model"
	"github.com/sells-group/leadminer/internal/store"
)

// api holds the request handlers for the browser-facing server.
type api struct {
	env     *env
	deriver *leadview.Deriver
	session *miner.Session
}

func newAPI(e *env) *api {
	return &api{
		env:     e,
		deriver: leadview.NewDeriver(e.Locale),
		session: &miner.Session{},
	}
}

// routes builds the full HTTP surface served to the browser UI.
func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", a.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyses", a.handleCreateAnalysis)
		r.Get("/analyses", a.handleListAnalyses)
		r.Get("/analyses/{id}", a.handleGetAnalysis)
		r.Get("/analyses/{id}/leads", a.handleLeads)
		r.Get("/leads/latest", a.handleLatestLeads)
		r.Get("/analyses/{id}/export.csv", a.handleExportCSV)
		r.Get("/analyses/{id}/export.txt", a.handleExportReport)
		r.Post("/analyses/{id}/scripts", a.handleScript)
		r.Get("/tracking", a.handleListTracking)
		r.Put("/tracking/{key}", a.handleSetTracking)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateAnalysis accepts a multipart form with an optional "file"
// spreadsheet and optional "input" free text, prepares the corpus, and mines
// it asynchronously. The response carries the analysis ID to poll.
func (a *api) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	freeText := r.FormValue("input")

	var (
		lines    []string
		rowCount int
		fileName string
	)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close() //nolint:errcheck
		fileName = header.Filename

		table, err := decodeUpload(file, header.Filename)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("could not decode %s", header.Filename))
			return
		}
		rowCount = len(table.Rows)

		lines, _, err = ingest.ExtractTable(table, cfg.Mine.MaxRows)
		if eris.Is(err, ingest.ErrNoContentColumn) {
			if freeText == "" {
				writeError(w, http.StatusUnprocessableEntity, "could not find matching columns")
				return
			}
			zap.L().Warn("could not find matching columns; continuing with free text",
				zap.String("file", header.Filename),
			)
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "ingest failed")
			return
		}
	}

	corpus := ingest.BuildCorpus(freeText, lines)
	if corpus == "" {
		writeError(w, http.StatusBadRequest, "input or file is required")
		return
	}

	analysis, err := a.env.Store.CreateAnalysis(ctx, corpus, fileName, rowCount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create analysis")
		return
	}

	gen := a.session.Begin()
	go a.runMining(analysis.ID, corpus, gen)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"analysis_id": analysis.ID,
		"status":      string(model.AnalysisStatusQueued),
	})
}

// runMining executes one mining request detached from the HTTP request. The
// generation token keeps an out-of-order completion from replacing the
// results of a newer request.
func (a *api) runMining(analysisID, corpus string, gen uint64) {
	ctx := context.Background()
	if err := a.env.Store.UpdateAnalysisStatus(ctx, analysisID, model.AnalysisStatusMining); err != nil {
		zap.L().Error("update analysis status", zap.Error(err))
	}

	leads, _, err := a.env.Miner.Mine(ctx, corpus)
	if err != nil {
		zap.L().Error("mining failed",
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
		if failErr := a.env.Store.FailAnalysis(ctx, analysisID, err.Error()); failErr != nil {
			zap.L().Error("mark analysis failed", zap.Error(failErr))
		}
		return
	}

	if err := a.env.Store.CompleteAnalysis(ctx, analysisID, leads); err != nil {
		zap.L().Error("complete analysis", zap.Error(err))
		return
	}
	if !a.session.Apply(gen, leads) {
		zap.L().Info("discarded stale mining response",
			zap.String("analysis_id", analysisID),
			zap.Uint64("generation", gen),
		)
	}
}

func (a *api) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := a.env.Store.ListAnalyses(r.Context(), store.AnalysisFilter{
		Status: model.AnalysisStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list analyses")
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (a *api) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := a.env.Store.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// handleLeads derives the filtered/sorted/paginated result view for a stored
// analysis.
func (a *api) handleLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := a.env.Store.ListLeads(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list leads")
		return
	}
	writeJSON(w, http.StatusOK, a.derivePage(leads, r.URL.Query()))
}

// handleLatestLeads serves the result set of the most recent mining request.
// The session guard means a slow earlier request can never surface here after
// a newer one has been started.
func (a *api) handleLatestLeads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.derivePage(a.session.Leads(), r.URL.Query()))
}

func (a *api) derivePage(leads []model.MinedLead, q url.Values) leadview.Page {
	sort := leadview.Sort{Key: leadview.SortKey(q.Get("sort"))}
	if sort.Key == "" {
		sort = leadview.DefaultSort()
	} else {
		sort.Direction = leadview.DefaultDirection(sort.Key)
	}
	switch q.Get("dir") {
	case "asc":
		sort.Direction = leadview.Asc
	case "desc":
		sort.Direction = leadview.Desc
	}
	pageNum, _ := strconv.Atoi(q.Get("page"))

	return a.deriver.Derive(leads, leadview.Filters{
		Recency:  leadview.Recency(q.Get("recency")),
		LeadType: model.LeadType(q.Get("type")),
		Platform: q.Get("platform"),
	}, sort, pageNum, leadview.DefaultPageSize, time.Now())
}

func (a *api) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	leads, err := a.env.Store.ListLeads(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list leads")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	if err := export.WriteLeadsCSV(w, leads, a.env.Locale); err != nil {
		zap.L().Error("csv export", zap.Error(err))
	}
}

func (a *api) handleExportReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	analysis, err := a.env.Store.GetAnalysis(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	leads, err := a.env.Store.ListLeads(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list leads")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="strategy-report.txt"`)
	if err := export.WriteStrategyReport(w, *analysis, leads, a.env.Locale); err != nil {
		zap.L().Error("report export", zap.Error(err))
	}
}

func (a *api) handleScript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LeadKey string `json:"lead_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LeadKey == "" {
		writeError(w, http.StatusBadRequest, "lead_key is required")
		return
	}

	leads, err := a.env.Store.ListLeads(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list leads")
		return
	}
	lead, ok := findLead(leads, req.LeadKey)
	if !ok {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	script, _, err := a.env.Miner.GenerateScript(r.Context(), lead)
	if err != nil {
		writeError(w, http.StatusBadGateway, "script generation failed")
		return
	}
	writeJSON(w, http.StatusOK, model.OutreachScript{
		LeadKey:     req.LeadKey,
		AccountName: lead.AccountName,
		Script:      script,
		GeneratedAt: time.Now().UTC(),
	})
}

func (a *api) handleListTracking(w http.ResponseWriter, r *http.Request) {
	records, err := a.env.Store.ListTracking(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list tracking")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *api) handleSetTracking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountName string `json:"account_name"`
		Status      string `json:"status"`
		Note        string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := model.TrackingStatus(req.Status)
	if !model.ValidTrackingStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	t := model.Tracking{
		LeadKey:     chi.URLParam(r, "key"),
		AccountName: req.AccountName,
		Status:      status,
		Note:        req.Note,
	}
	if err := a.env.Store.UpsertTracking(r.Context(), t); err != nil {
		writeError(w, http.StatusInternalServerError, "upsert tracking")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// decodeUpload spools an uploaded spreadsheet to a temp file and decodes it.
// XLSX decoding needs a seekable file; CSV goes through the same path for
// uniformity.
func decodeUpload(file io.Reader, name string) (ingest.Table, error) {
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(name))
	if err != nil {
		return ingest.Table{}, eris.Wrap(err, "create temp upload")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	defer tmp.Close()           //nolint:errcheck

	if _, err := io.Copy(tmp, file); err != nil {
		return ingest.Table{}, eris.Wrap(err, "spool upload")
	}
	return fetcher.ReadTableFile(tmp.Name())
}
