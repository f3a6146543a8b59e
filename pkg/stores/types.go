package stores

import (
	"context"
	"time"
)

// RunStatus represents the status of a scenario run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run represents one scenario solve.
type Run struct {
	ID          string     `json:"id"`
	Scenario    string     `json:"scenario"`
	Mode        string     `json:"mode"`
	YearStart   int        `json:"year_start"`
	YearEnd     int        `json:"year_end"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Metadata    string     `json:"metadata"` // JSON blob
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Decision is one persisted technology choice.
type Decision struct {
	ID         int64  `json:"id"`
	RunID      string `json:"run_id"`
	Year       int    `json:"year"`
	Plant      string `json:"plant"`
	StartTech  string `json:"start_tech"`
	ChosenTech string `json:"chosen_tech"`
	SwitchType string `json:"switch_type"`
	Rationale  string `json:"rationale"`
}

// MaterialAudit is one persisted constraint-check outcome.
type MaterialAudit struct {
	ID              int64  `json:"id"`
	RunID           string `json:"run_id"`
	Plant           string `json:"plant"`
	Year            int    `json:"year"`
	StartTech       string `json:"start_tech"`
	CandidateTech   string `json:"candidate_tech"`
	Result          string `json:"result"`
	FailedResources string `json:"failed_resources"` // comma separated
}

// CycleSchedule is one plant's persisted investment cycle years.
type CycleSchedule struct {
	ID    int64  `json:"id"`
	RunID string `json:"run_id"`
	Plant string `json:"plant"`
	Years string `json:"years"` // JSON array of ints
}

// Store is the persistence interface for scenario runs.
type Store interface {
	Init(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
	HealthCheck(ctx context.Context) error

	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	UpdateRunStatus(ctx context.Context, id string, status RunStatus, errMsg *string) error
	ListRuns(ctx context.Context, limit, offset int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error

	SaveDecisions(ctx context.Context, runID string, decisions []Decision) error
	ListDecisions(ctx context.Context, runID string) ([]*Decision, error)

	SaveMaterialAudit(ctx context.Context, runID string, entries []MaterialAudit) error
	ListMaterialAudit(ctx context.Context, runID string) ([]*MaterialAudit, error)

	SaveCycleSchedules(ctx context.Context, runID string, schedules []CycleSchedule) error
	ListCycleSchedules(ctx context.Context, runID string) ([]*CycleSchedule, error)
}
