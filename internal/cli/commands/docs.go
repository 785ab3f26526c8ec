package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
	"github.com/leapstack-labs/sakila-etl/internal/docs"
)

// DefaultDocsDir is the package documented when no directory is given.
const DefaultDocsDir = "internal/etl"

// NewDocsCommand creates the docs command.
func NewDocsCommand() *cobra.Command {
	var readme string

	cmd := &cobra.Command{
		Use:   "docs [directory]",
		Short: "Generate README.md from Go doc comments",
		Long: `Generate a README from the doc comments of the Go files in a directory.

Every non-test .go file gets a section with its package comment, followed by
one entry per top-level function with its doc comment.`,
		Example: `  # Document the ETL package
  sakila-etl docs

  # Document another directory into a custom file
  sakila-etl docs pkg/core --readme docs/CORE.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := DefaultDocsDir
			if len(args) > 0 {
				dir = args[0]
			}
			return runDocs(cmd, dir, readme)
		},
	}

	cmd.Flags().StringVar(&readme, "readme", "README.md", "Output file")

	return cmd
}

func runDocs(cmd *cobra.Command, dir, readme string) error {
	ctx := cmd.Context()
	logger := config.GetLogger(ctx)
	r := output.FromContext(ctx)

	logger.Info("generating README", "dir", dir, "output", readme)
	if err := docs.WriteREADME(dir, readme); err != nil {
		return fmt.Errorf("failed to generate README: %w", err)
	}
	r.Success(fmt.Sprintf("README.md generated at %s", readme))
	return nil
}
