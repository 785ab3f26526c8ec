package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
	clitest "github.com/leapstack-labs/sakila-etl/internal/cli/testutil"
	"github.com/leapstack-labs/sakila-etl/internal/testutil"
)

// cmdEnv runs a command the way the root command would after loading the
// configuration: config, logger and renderer travel in the context.
type cmdEnv struct {
	cfg *config.Config
	r   *clitest.TestRenderer
}

func newCmdEnv(t *testing.T) *cmdEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.FromContext(context.Background())
	cfg.ReportsDir = filepath.Join(dir, "reports")
	cfg.StatePath = filepath.Join(dir, "state.db")
	cfg.Notebook.Output = filepath.Join(dir, "notebook.ipynb")
	cfg.ProjectRoot = dir
	return &cmdEnv{cfg: cfg, r: clitest.NewTestRendererMarkdown()}
}

func (e *cmdEnv) execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	return e.executeContext(context.Background(), t, cmd, args...)
}

func (e *cmdEnv) executeContext(ctx context.Context, t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	ctx = config.WithConfig(ctx, e.cfg)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))
	ctx = output.WithRenderer(ctx, e.r.Renderer)

	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(ctx)
}
