package etl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sakila-etl/pkg/core"
)

// Step names used in results and run history.
const (
	StepClearFolder = "clear_folder"
	StepResetSchema = "reset_schema"
	StepQuery       = "query"
	StepWriteTable  = "write_table"
	StepWriteReport = "write_report"
)

// ErrAborted marks a run stopped before all steps were attempted.
var ErrAborted = errors.New("pipeline aborted")

// Recorder persists run history. Implementations must be safe to call
// sequentially from a single goroutine.
type Recorder interface {
	CreateRun(target string) (*core.Run, error)
	RecordStep(step *core.StepRun) error
	CompleteRun(id string, status core.RunStatus, errMsg string) error
}

// StepResult is the explicit outcome of one pipeline step.
type StepResult struct {
	Step     string
	Target   string
	Status   core.StepStatus
	Err      error
	Rows     int
	Path     string
	Duration time.Duration
}

// Summary collects the outcome of every attempted step.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Aborted  bool
	Steps    []StepResult
}

// Err joins the errors of every failed step. Warnings are not failures.
func (s *Summary) Err() error {
	var errs []error
	for _, st := range s.Steps {
		if st.Status == core.StepStatusFailed && st.Err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", st.Step, st.Target, st.Err))
		}
	}
	if s.Aborted {
		errs = append(errs, ErrAborted)
	}
	return errors.Join(errs...)
}

// Count returns how many steps ended with status.
func (s *Summary) Count(status core.StepStatus) int {
	n := 0
	for _, st := range s.Steps {
		if st.Status == status {
			n++
		}
	}
	return n
}

// Pipeline runs the full reset-then-reload sequence.
type Pipeline struct {
	Runner
	ReportsDir string
	Reports    []Report
	// Target is the redacted connection descriptor recorded in history.
	Target   string
	Recorder Recorder

	runID string
}

// Run executes, in order: folder reset, schema reset, every query, every
// table write, every report file write.
//
// A missing reports folder is a warning. Any other folder reset failure, a
// schema reset failure or context cancellation aborts the run. A failed
// query skips only its own writers. The returned error is Summary.Err().
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	s := &Summary{Started: time.Now()}
	base := p.Logger
	defer func() { p.Logger = base }()
	reports := p.Reports
	if reports == nil {
		reports = DefaultReports()
	}
	p.beginRun()
	s.RunID = p.runID

	finish := func() (*Summary, error) {
		s.Duration = time.Since(s.Started)
		err := s.Err()
		p.completeRun(err)
		if err != nil {
			p.log().Error("ETL pipeline finished with errors", "failed", s.Count(core.StepStatusFailed),
				"skipped", s.Count(core.StepStatusSkipped), "duration", s.Duration)
		} else {
			p.log().Info("ETL pipeline completed", "steps", len(s.Steps), "duration", s.Duration)
		}
		return s, err
	}

	// Folder reset
	res := p.step(s, StepClearFolder, p.ReportsDir, func(*StepResult) error {
		return p.ClearFolder(p.ReportsDir)
	})
	if res.Err != nil {
		if !errors.Is(res.Err, fs.ErrNotExist) {
			s.Aborted = true
			return finish()
		}
		p.downgrade(s, "reports folder does not exist yet")
	}

	if p.aborted(ctx, s) {
		return finish()
	}

	// Schema reset
	if res := p.step(s, StepResetSchema, "summary tables", func(*StepResult) error {
		return p.ResetSchema(ctx)
	}); res.Err != nil {
		s.Aborted = true
		return finish()
	}

	// Queries
	results := make(map[string]*core.Result, len(reports))
	for _, rep := range reports {
		if p.aborted(ctx, s) {
			return finish()
		}
		p.step(s, StepQuery, rep.Name, func(sr *StepResult) error {
			r, err := p.RunQuery(ctx, rep.Query, rep.Schema)
			if err != nil {
				return err
			}
			results[rep.Name] = r
			sr.Rows = r.Len()
			return nil
		})
	}

	// Database writes
	for _, rep := range reports {
		if p.aborted(ctx, s) {
			return finish()
		}
		r, ok := results[rep.Name]
		if !ok {
			p.skip(s, StepWriteTable, rep.Table)
			continue
		}
		p.step(s, StepWriteTable, rep.Table, func(sr *StepResult) error {
			sr.Rows = r.Len()
			return p.WriteTable(ctx, r, rep.Table)
		})
	}

	// File writes
	for _, rep := range reports {
		if p.aborted(ctx, s) {
			return finish()
		}
		r, ok := results[rep.Name]
		if !ok {
			p.skip(s, StepWriteReport, rep.File)
			continue
		}
		p.step(s, StepWriteReport, rep.File, func(sr *StepResult) error {
			path, err := p.WriteReport(r, p.ReportsDir, rep.File)
			sr.Rows = r.Len()
			sr.Path = path
			return err
		})
	}

	return finish()
}

// step runs fn, times it, appends the result to s and records it.
func (p *Pipeline) step(s *Summary, name, target string, fn func(*StepResult) error) *StepResult {
	res := StepResult{Step: name, Target: target, Status: core.StepStatusSuccess}
	start := time.Now()
	if err := fn(&res); err != nil {
		res.Status = core.StepStatusFailed
		res.Err = err
	}
	res.Duration = time.Since(start)
	s.Steps = append(s.Steps, res)
	p.record(&s.Steps[len(s.Steps)-1])
	return &s.Steps[len(s.Steps)-1]
}

func (p *Pipeline) skip(s *Summary, name, target string) {
	p.log().Warn("Skipping step after failed query", "step", name, "target", target)
	s.Steps = append(s.Steps, StepResult{Step: name, Target: target, Status: core.StepStatusSkipped})
	p.record(&s.Steps[len(s.Steps)-1])
}

// downgrade turns the last failed step into a warning.
func (p *Pipeline) downgrade(s *Summary, reason string) {
	last := &s.Steps[len(s.Steps)-1]
	last.Status = core.StepStatusWarning
	p.log().Warn("Continuing after step warning", "step", last.Step, "target", last.Target, "reason", reason)
}

func (p *Pipeline) aborted(ctx context.Context, s *Summary) bool {
	if err := ctx.Err(); err != nil {
		p.log().Error("ETL pipeline cancelled", "error", err)
		s.Aborted = true
		return true
	}
	return false
}

func (p *Pipeline) beginRun() {
	p.runID = ""
	if p.Recorder == nil {
		return
	}
	run, err := p.Recorder.CreateRun(p.Target)
	if err != nil {
		p.log().Warn("failed to record run start", "error", err)
		return
	}
	p.runID = run.ID
	p.Logger = p.log().With(slog.String("run_id", run.ID))
}

func (p *Pipeline) record(res *StepResult) {
	if p.Recorder == nil || p.runID == "" {
		return
	}
	sr := &core.StepRun{
		RunID:    p.runID,
		Step:     res.Step,
		Target:   res.Target,
		Status:   res.Status,
		Rows:     res.Rows,
		Path:     res.Path,
		Duration: res.Duration,
	}
	if res.Err != nil {
		sr.Error = res.Err.Error()
	}
	if err := p.Recorder.RecordStep(sr); err != nil {
		p.log().Warn("failed to record step", "step", res.Step, "error", err)
	}
}

func (p *Pipeline) completeRun(runErr error) {
	if p.Recorder == nil || p.runID == "" {
		return
	}
	status, msg := core.RunStatusCompleted, ""
	if runErr != nil {
		status, msg = core.RunStatusFailed, runErr.Error()
	}
	if err := p.Recorder.CompleteRun(p.runID, status, msg); err != nil {
		p.log().Warn("failed to record run completion", "error", err)
	}
}
