package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
	"github.com/leapstack-labs/sakila-etl/pkg/core"
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report <file>",
		Short: "Pretty-print an exported report file",
		Long: `Print a tab-separated report written by "sakila-etl run" as a table.

A bare file name is looked up in the configured reports folder.`,
		Example: `  sakila-etl report payment_summary.txt
  sakila-etl report reports/profitable_actors.txt -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args[0])
		},
	}
}

func runReport(cmd *cobra.Command, name string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	r := output.FromContext(ctx)

	path := name
	if _, err := os.Stat(path); err != nil && !strings.ContainsRune(name, filepath.Separator) {
		path = filepath.Join(cfg.ReportsDir, name)
	}

	f, err := os.Open(path) //nolint:gosec // path is a user-chosen report
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer func() { _ = f.Close() }()

	schema, rows, err := core.ReadTSV(f)
	if err != nil {
		return fmt.Errorf("failed to read report %s: %w", path, err)
	}
	return r.Report(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), schema, rows)
}
