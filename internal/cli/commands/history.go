package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
	"github.com/leapstack-labs/sakila-etl/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded pipeline runs",
		Long: `List the most recent pipeline runs from the run history database, or the
individual steps of one run with --run.`,
		Example: `  # Last 10 runs
  sakila-etl history

  # Steps of one run as JSON
  sakila-etl history --run 6f1c... -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit, runID)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the steps of this run")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int, runID string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	r := output.FromContext(ctx)

	if _, err := os.Stat(cfg.StatePath); errors.Is(err, os.ErrNotExist) {
		if runID != "" {
			return fmt.Errorf("%w: %s", state.ErrRunNotFound, runID)
		}
		return r.Runs(nil)
	}

	store := state.NewSQLiteStore(config.GetLogger(ctx))
	if err := store.Open(cfg.StatePath); err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer func() { _ = store.Close() }()

	if runID != "" {
		run, err := store.GetRun(runID)
		if err != nil {
			return err
		}
		steps, err := store.GetSteps(run.ID)
		if err != nil {
			return err
		}
		if r.EffectiveMode() != output.ModeJSON {
			r.Header(fmt.Sprintf("Run %s (%s)", run.ID, run.Status))
		}
		return r.Steps(steps)
	}

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	return r.Runs(runs)
}
