package models

import (
	"database/sql"
	"time"
)

// Run statuses
const (
	RunStatusQueued     = "queued"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// MappingRun is one persisted pipeline invocation.
type MappingRun struct {
	ID           int64          `db:"id" json:"id"`
	RunCode      string         `db:"run_code" json:"run_code"`
	CaseID       string         `db:"case_id" json:"ai_case_id"`
	Status       string         `db:"status" json:"status"`
	InputJSON    string         `db:"input_json" json:"-"`
	ResultJSON   sql.NullString `db:"result_json" json:"-"`
	Diagnostics  sql.NullString `db:"diagnostics_json" json:"-"`
	ErrorMessage sql.NullString `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// PipelineResponse is the body returned by the pipeline endpoints.
type PipelineResponse struct {
	OK          bool         `json:"ok"`
	RunCode     string       `json:"run_code,omitempty"`
	Result      []ReportRow  `json:"result"`
	Output      []ReportRow  `json:"output"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	RequestMeta
}
