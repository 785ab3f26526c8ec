package etl

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/sakila-etl/internal/sqlfiles"
	"github.com/leapstack-labs/sakila-etl/pkg/adapter"
)

// ResetSchema drops and recreates the three summary tables on a single
// connection. The DROP scripts run and commit in one transaction, then the
// CREATE scripts run and commit in a second one, so a failing CREATE never
// undoes a successful DROP.
func (r *Runner) ResetSchema(ctx context.Context) error {
	logger := r.log()
	logger.Info("Starting to manage tables in the database")

	a, err := r.Connector.Open(ctx)
	if err != nil {
		logger.Error("Error managing tables", "error", err)
		return fmt.Errorf("reset schema: %w", err)
	}
	defer r.closeAdapter(a)

	if err := r.execPhase(ctx, a, "drop", sqlfiles.DropScripts()); err != nil {
		logger.Error("Error managing tables", "phase", "drop", "error", err)
		return fmt.Errorf("reset schema: %w", err)
	}
	if err := r.execPhase(ctx, a, "create", sqlfiles.CreateScripts()); err != nil {
		logger.Error("Error managing tables", "phase", "create", "error", err)
		return fmt.Errorf("reset schema: %w", err)
	}

	logger.Info("Tables have been recreated in the database",
		"tables", []string{"payment_summary_table", "duration_summary_table", "profitable_actors_table"})
	return nil
}

// execPhase runs scripts in order inside one transaction and commits.
func (r *Runner) execPhase(ctx context.Context, a adapter.Adapter, phase string, scripts []string) error {
	tx, err := a.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%s phase: %w", phase, err)
	}

	for _, rel := range scripts {
		stmt, err := r.Scripts.Read(rel)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s phase: %w", phase, err)
		}
		r.log().Debug("executing script", "phase", phase, "script", r.Scripts.Location(rel))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s phase: %s: %w", phase, r.Scripts.Location(rel), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s phase: commit: %w", phase, err)
	}
	return nil
}
