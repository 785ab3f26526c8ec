package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
	"github.com/leapstack-labs/sakila-etl/internal/notebook"
)

// NewNotebookCommand creates the notebook command with subcommands.
func NewNotebookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notebook",
		Short: "Generate or update the teaching notebook",
		Long: `Build the Jupyter notebook (gophernotes kernel) that walks through the
ETL script one function at a time.

The source file is split into its preamble, its top-level functions and
its main block, which starts at the line "// Main block starts here".`,
	}

	cmd.PersistentFlags().String("source", "", "Go source file to mirror (default: "+config.DefaultNotebookSource+")")
	cmd.PersistentFlags().String("notebook", "", "Notebook file (default: "+config.DefaultNotebookOutput+")")

	cmd.AddCommand(newNotebookGenerateCommand())
	cmd.AddCommand(newNotebookUpdateCommand())

	return cmd
}

func newNotebookGenerateCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create the notebook from scratch",
		Long: `Create the notebook from scratch: introduction, one explained cell per
function and the main block. An existing notebook is replaced.

With --watch the notebook is rebuilt every time the source file is saved,
until interrupted.`,
		Example: `  sakila-etl notebook generate
  sakila-etl notebook generate --source cmd/sakila-etl-script/main.go --notebook etl.ipynb
  sakila-etl notebook generate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := runNotebook(cmd, false); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchNotebook(cmd)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild the notebook whenever the source changes")

	return cmd
}

func newNotebookUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the code cells of the notebook",
		Long: `Replace every code cell of the notebook with the current source while
keeping its Markdown cells, including your own notes. A missing or invalid
notebook is created empty first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotebook(cmd, true)
		},
	}
}

func runNotebook(cmd *cobra.Command, update bool) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)
	r := output.FromContext(ctx)

	logger.Info("parsing ETL source", "path", cfg.Notebook.Source)
	sec, err := notebook.ParseSource(cfg.Notebook.Source)
	if err != nil {
		return err
	}
	logger.Info("parsed ETL source", "functions", len(sec.Functions),
		"preamble", sec.Preamble != "", "main", sec.Main != "")

	layout := notebook.DefaultLayout(cfg.Notebook.Functions)
	var (
		nb       *notebook.Notebook
		warnings []string
	)
	if update {
		existing, found, err := notebook.Load(cfg.Notebook.Output)
		if err != nil {
			return err
		}
		if !found {
			logger.Warn("notebook not found or invalid, creating a new one", "path", cfg.Notebook.Output)
		}
		nb, warnings = notebook.Update(existing, sec, layout.FunctionNames())
	} else {
		nb, warnings = notebook.Generate(sec, layout)
	}

	for _, w := range warnings {
		logger.Warn(w)
		r.Warning(w)
	}
	if err := notebook.Save(cfg.Notebook.Output, nb); err != nil {
		return err
	}

	verb := "created"
	if update {
		verb = "updated"
	}
	r.Success(fmt.Sprintf("Notebook %s %s (%d cells)", cfg.Notebook.Output, verb, len(nb.Cells)))
	return nil
}

// watchNotebook regenerates the notebook on every change of the source.
// Failed rebuilds are reported and watching continues.
func watchNotebook(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)
	r := output.FromContext(ctx)

	w, err := notebook.NewWatcher(cfg.Notebook.Source)
	if err != nil {
		return err
	}
	r.Muted(fmt.Sprintf("Watching %s for changes (Ctrl-C to stop)", cfg.Notebook.Source))

	return w.Run(ctx, func() {
		if err := runNotebook(cmd, false); err != nil {
			logger.Error("notebook rebuild failed", "error", err)
			r.Error(err.Error())
		}
	})
}
