package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
	"github.com/leapstack-labs/sakila-etl/internal/etl"
	"github.com/leapstack-labs/sakila-etl/internal/prompt"
	"github.com/leapstack-labs/sakila-etl/internal/sqlfiles"
	"github.com/leapstack-labs/sakila-etl/internal/state"
	"github.com/leapstack-labs/sakila-etl/pkg/adapter"

	// Register adapters
	_ "github.com/leapstack-labs/sakila-etl/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/sakila-etl/pkg/adapters/mssql"
	_ "github.com/leapstack-labs/sakila-etl/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/sakila-etl/pkg/adapters/sqlite"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	NoPrompt bool
	// Terminal overrides the interactive terminal used for credential
	// prompts.
	Terminal func() (prompt.Terminal, error)
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return newRunCommand(&RunOptions{})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ETL pipeline",
		Long: `Run the Sakila ETL pipeline against the configured target.

The pipeline clears the reports folder, drops and recreates the summary
tables, runs the payments, film duration and profitable actors queries,
writes each result to its summary table and exports it as a tab-separated
report file.

A server address, username or password that is not configured is asked for
interactively; the password is read without echo. Use --no-prompt to fail
instead.`,
		Example: `  # Run against the server from sakila-etl.yaml, prompting for credentials
  sakila-etl run

  # Run against an explicit server
  sakila-etl run --server tcp:sakila.database.windows.net --user corndeladmin

  # Run against a local SQLite copy of Sakila without run history
  sakila-etl run --type sqlite --path sakila.db --no-prompt --no-history`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().String("type", "", "Database type (mssql|postgres|duckdb|sqlite)")
	cmd.Flags().String("server", "", "Database server address")
	cmd.Flags().Int("port", 0, "Database server port")
	cmd.Flags().String("database", "", "Database name (default: sakila)")
	cmd.Flags().String("user", "", "Database username")
	cmd.Flags().String("path", "", "Database file for duckdb and sqlite targets")
	cmd.Flags().String("reports-dir", "", "Folder receiving the report files (default: reports)")
	cmd.Flags().String("sql-dir", "", "Folder with SQL scripts replacing the built-in set")
	cmd.Flags().BoolVar(&opts.NoPrompt, "no-prompt", false, "Never prompt for missing credentials")
	cmd.Flags().Bool("no-history", false, "Do not record the run in the history database")

	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListAdapters(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)
	r := output.FromContext(ctx)

	if err := cfg.ValidateDirectories(); err != nil {
		return err
	}
	if err := completeTarget(cmd, cfg.Target, opts); err != nil {
		return err
	}
	if err := cfg.Target.Validate(); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}

	acfg := cfg.Target.ToAdapterConfig()
	p := &etl.Pipeline{
		Runner: etl.Runner{
			Logger:    logger,
			Connector: adapter.NewConnector(acfg, logger),
			Scripts:   sqlfiles.New(cfg.SQLDir, acfg.Type),
		},
		ReportsDir: cfg.ReportsDir,
		Target:     acfg.Redacted(),
	}
	if cfg.History {
		if store := openHistory(cfg.StatePath, logger); store != nil {
			defer func() { _ = store.Close() }()
			p.Recorder = store
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	summary, runErr := p.Run(ctx)
	if err := r.Summary(summary); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("ETL pipeline failed: %w", runErr)
	}
	return nil
}

// completeTarget prompts for missing credentials unless prompting is off.
func completeTarget(cmd *cobra.Command, target *config.TargetConfig, opts *RunOptions) error {
	needHost, needUser, needPassword := prompt.Missing(target)
	if !needHost && !needUser && !needPassword {
		return nil
	}

	if opts.NoPrompt {
		// Validation reports a missing server; user and password may be
		// legitimately empty (integrated authentication).
		return nil
	}

	open := opts.Terminal
	if open == nil {
		open = func() (prompt.Terminal, error) {
			return prompt.NewTerminal(os.Stdin, cmd.ErrOrStderr())
		}
	}
	term, err := open()
	if err != nil {
		if errors.Is(err, prompt.ErrNoTerminal) {
			return fmt.Errorf("missing %s and stdin is not a terminal; set them in %s or use --no-prompt: %w",
				strings.Join(missingNames(needHost, needUser, needPassword), ", "), config.ConfigFileName, err)
		}
		return err
	}
	defer func() { _ = term.Close() }()

	return prompt.Complete(term, target)
}

func openHistory(path string, logger *slog.Logger) *state.SQLiteStore {
	store := state.NewSQLiteStore(logger)
	if err := store.Open(path); err != nil {
		logger.Warn("run history disabled", "path", path, "error", err)
		return nil
	}
	return store
}

func missingNames(host, user, password bool) []string {
	var names []string
	if host {
		names = append(names, "server")
	}
	if user {
		names = append(names, "user")
	}
	if password {
		names = append(names, "password")
	}
	return names
}
