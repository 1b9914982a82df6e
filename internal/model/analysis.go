package model

import "time"

// AnalysisStatus represents the current state of a mining analysis.
type AnalysisStatus string

const (
	AnalysisStatusQueued   AnalysisStatus = "queued"
	AnalysisStatusMining   AnalysisStatus = "mining"
	AnalysisStatusComplete AnalysisStatus = "complete"
	AnalysisStatusFailed   AnalysisStatus = "failed"
)

// Analysis represents one lead-mining run: the prepared input corpus, its
// status, and counters filled in on completion.
type Analysis struct {
	ID         string         `json:"id"`
	Input      string         `json:"input"`
	SourceFile string         `json:"source_file,omitempty"`
	RowCount   int            `json:"row_count"`
	LeadCount  int            `json:"lead_count"`
	Status     AnalysisStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// OutreachScript is a generated outreach message for one lead.
type OutreachScript struct {
	LeadKey     string    `json:"lead_key"`
	AccountName string    `json:"account_name"`
	Script      string    `json:"script"`
	GeneratedAt time.Time `json:"generated_at"`
}
