package core

import "time"

// RunStatus represents the outcome of a pipeline run.
type RunStatus string

// Run status values.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StepStatus represents the outcome of a single pipeline step.
type StepStatus string

// Step status values.
const (
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
	StepStatusSkipped StepStatus = "skipped"
	StepStatusWarning StepStatus = "warning"
)

// Run is one recorded execution of the ETL pipeline.
type Run struct {
	ID          string
	Target      string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// StepRun is the persisted outcome of one pipeline step.
type StepRun struct {
	ID       string
	RunID    string
	Step     string
	Target   string
	Status   StepStatus
	Rows     int
	Path     string
	Error    string
	Duration time.Duration
}
