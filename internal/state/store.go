// Package state records the history of ETL pipeline runs in a SQLite
// database. The schema is managed with goose migrations embedded in the
// binary.
package state

import (
	"errors"

	"github.com/leapstack-labs/sakila-etl/pkg/core"
)

// ErrNotOpened is returned by store operations attempted before Open.
var ErrNotOpened = errors.New("database not opened")

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store persists pipeline runs and their steps.
type Store interface {
	Open(path string) error
	Close() error

	CreateRun(target string) (*core.Run, error)
	GetRun(id string) (*core.Run, error)
	CompleteRun(id string, status core.RunStatus, errMsg string) error
	ListRuns(limit int) ([]*core.Run, error)

	RecordStep(step *core.StepRun) error
	GetSteps(runID string) ([]*core.StepRun, error)
}

var _ Store = (*SQLiteStore)(nil)
