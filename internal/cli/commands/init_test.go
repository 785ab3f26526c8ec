package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sakila-etl/internal/cli/config"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   string
		wantFiles []string
		wantDirs  []string
		noFiles   []string
	}{
		{
			name:      "init empty directory",
			wantFiles: []string{"sakila-etl.yaml"},
			wantDirs:  []string{"reports"},
			noFiles:   []string{"sql"},
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "sakila-etl.yaml"), []byte("existing"), 0o600))
			},
			wantErr: "sakila-etl.yaml already exists",
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "sakila-etl.yaml"), []byte("existing"), 0o600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"sakila-etl.yaml"},
			wantDirs:  []string{"reports"},
		},
		{
			name: "init with exported SQL",
			args: []string{"--export-sql"},
			wantDirs: []string{"reports", "sql/queries", "sql/tableManagement"},
			wantFiles: []string{
				"sakila-etl.yaml",
				"sql/queries/payments.sql",
				"sql/queries/filmduration.sql",
				"sql/queries/profitable_actors.sql",
				"sql/tableManagement/create_payment_summary_table.sql",
				"sql/tableManagement/drop_profitable_actors_table.sql",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCmdEnv(t)
			dir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			err := env.execute(t, NewInitCommand(), append([]string{dir}, tt.args...)...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(dir, f))
			}
			for _, d := range tt.wantDirs {
				assert.DirExists(t, filepath.Join(dir, d))
			}
			for _, f := range tt.noFiles {
				assert.NoFileExists(t, filepath.Join(dir, f))
				assert.NoDirExists(t, filepath.Join(dir, f))
			}
			assert.Contains(t, env.r.Output(), "sakila-etl project initialized!")
		})
	}
}

func TestInitConfigLoads(t *testing.T) {
	tests := []struct {
		name       string
		exportSQL  bool
		wantSQLDir bool
	}{
		{name: "default"},
		{name: "with exported SQL", exportSQL: true, wantSQLDir: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			env := newCmdEnv(t)
			args := []string{dir}
			if tt.exportSQL {
				args = append(args, "--export-sql")
			}
			require.NoError(t, env.execute(t, NewInitCommand(), args...))

			data, err := os.ReadFile(filepath.Join(dir, config.ConfigFileName))
			require.NoError(t, err)
			assert.Contains(t, string(data), "# sakila-etl configuration")
			assert.NotRegexp(t, `(?m)^\s*password\s*:`, string(data), "no password key is ever written")

			cfg, err := config.LoadConfig(filepath.Join(dir, config.ConfigFileName), nil)
			require.NoError(t, err)
			assert.Equal(t, "mssql", cfg.Target.Type)
			assert.Equal(t, 1433, cfg.Target.Port)
			assert.Equal(t, "sakila", cfg.Target.Database)
			assert.True(t, cfg.Target.Encrypt)
			assert.True(t, cfg.History)
			assert.Equal(t, filepath.Join(dir, "reports"), cfg.ReportsDir)
			if tt.wantSQLDir {
				assert.Equal(t, filepath.Join(dir, "sql"), cfg.SQLDir)
				assert.NoError(t, cfg.ValidateDirectories())
			} else {
				assert.Empty(t, cfg.SQLDir)
			}
		})
	}
}

func TestInitExportSQLWithoutForceKeepsEdits(t *testing.T) {
	dir := t.TempDir()
	env := newCmdEnv(t)
	require.NoError(t, env.execute(t, NewInitCommand(), dir, "--export-sql"))

	edited := filepath.Join(dir, "sql", "queries", "payments.sql")
	require.NoError(t, os.WriteFile(edited, []byte("SELECT 1"), 0o600))
	require.NoError(t, os.Remove(filepath.Join(dir, config.ConfigFileName)))
	require.NoError(t, os.Remove(filepath.Join(dir, "sql", "queries", "filmduration.sql")))

	env = newCmdEnv(t)
	require.NoError(t, env.execute(t, NewInitCommand(), dir, "--export-sql"))

	data, err := os.ReadFile(edited)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", string(data))
	assert.NotContains(t, env.r.Output(), "sql/queries/payments.sql")
	assert.Contains(t, env.r.Output(), "sql/queries/filmduration.sql")
	assert.FileExists(t, filepath.Join(dir, "sql", "queries", "filmduration.sql"))
}
