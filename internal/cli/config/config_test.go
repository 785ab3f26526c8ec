package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/sakila-etl/pkg/adapters/mssql"
	_ "github.com/leapstack-labs/sakila-etl/pkg/adapters/sqlite"
)

// chdir switches to a fresh temporary directory for the test.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	// Resolve symlinks such as /tmp -> /private/tmp
	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	return abs
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single variable", input: "${TEST_VAR_ONE}", expected: "value_one"},
		{name: "multiple variables", input: "${TEST_VAR_ONE}/${TEST_VAR_TWO}", expected: "value_one/value_two"},
		{name: "unset variable stays as-is", input: "${UNSET_VARIABLE}", expected: "${UNSET_VARIABLE}"},
		{name: "no variables", input: "plain string", expected: "plain string"},
		{name: "empty string", input: "", expected: ""},
		{name: "mixed set and unset", input: "${TEST_VAR_ONE}:${UNSET_VAR}", expected: "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "reports_dir", envKey("SAKILA_ETL_REPORTS_DIR"))
	assert.Equal(t, "target.host", envKey("SAKILA_ETL_TARGET_HOST"))
	assert.Equal(t, "target.trust_server_certificate", envKey("SAKILA_ETL_TARGET_TRUST_SERVER_CERTIFICATE"))
	assert.Equal(t, "notebook.output", envKey("SAKILA_ETL_NOTEBOOK_OUTPUT"))
}

func TestMergeTargetConfig(t *testing.T) {
	t.Run("nil base returns override", func(t *testing.T) {
		override := &TargetConfig{Type: "sqlite", Path: "test.db"}
		assert.Equal(t, override, MergeTargetConfig(nil, override))
	})

	t.Run("nil override returns base", func(t *testing.T) {
		base := &TargetConfig{Type: "sqlite", Path: "test.db"}
		assert.Equal(t, base, MergeTargetConfig(base, nil))
	})

	t.Run("both nil returns nil", func(t *testing.T) {
		assert.Nil(t, MergeTargetConfig(nil, nil))
	})

	t.Run("override replaces base fields", func(t *testing.T) {
		base := &TargetConfig{Type: "mssql", Host: "localhost", User: "sa", Encrypt: true}
		override := &TargetConfig{Host: "staging", Port: 14330}

		result := MergeTargetConfig(base, override)
		assert.Equal(t, "mssql", result.Type, "Type should be inherited from base")
		assert.Equal(t, "staging", result.Host)
		assert.Equal(t, 14330, result.Port)
		assert.Equal(t, "sa", result.User, "User should be inherited from base")
		assert.True(t, result.Encrypt, "booleans kept without a type override")
		assert.Equal(t, "localhost", base.Host, "base must not be mutated")
	})

	t.Run("options are merged", func(t *testing.T) {
		base := &TargetConfig{Options: map[string]string{"key1": "base1", "key2": "base2"}}
		override := &TargetConfig{Options: map[string]string{"key2": "over2", "key3": "over3"}}

		result := MergeTargetConfig(base, override)
		assert.Equal(t, map[string]string{"key1": "base1", "key2": "over2", "key3": "over3"}, result.Options)
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	wd := chdir(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(wd, "reports"), cfg.ReportsDir)
	assert.Equal(t, filepath.Join(wd, "etl_pipeline.log"), cfg.LogFile)
	assert.Equal(t, filepath.Join(wd, ".sakila-etl", "state.db"), cfg.StatePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.History)
	assert.Equal(t, "auto", cfg.OutputFormat)

	require.NotNil(t, cfg.Target)
	assert.Equal(t, "mssql", cfg.Target.Type)
	assert.Equal(t, "sakila", cfg.Target.Database)
	assert.Equal(t, 1433, cfg.Target.Port)
	assert.True(t, cfg.Target.Encrypt)
	assert.False(t, cfg.Target.TrustServerCertificate)
	assert.Equal(t, 30*time.Second, cfg.Target.ConnectTimeout)
}

func TestLoadConfig_Fixtures(t *testing.T) {
	t.Run("mssql file with env expansion", func(t *testing.T) {
		ResetConfig()
		path := fixture(t, "valid_mssql.yaml")
		t.Setenv("SAKILA_TEST_PASSWORD", "Password01")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)

		assert.Equal(t, path, GetConfigFileUsed())
		assert.Equal(t, "tcp:sakila-demo.database.windows.net,1433", cfg.Target.Host)
		assert.Zero(t, cfg.Target.Port, "port carried by host")
		assert.Equal(t, "corndeladmin", cfg.Target.User)
		assert.Equal(t, "Password01", cfg.Target.Password)
		assert.True(t, cfg.Target.TrustServerCertificate)
		assert.Equal(t, 10*time.Second, cfg.Target.ConnectTimeout)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "out", "reports"), cfg.ReportsDir,
			"relative paths resolve against the config file")
	})

	t.Run("default environment", func(t *testing.T) {
		ResetConfig()
		path := fixture(t, "valid_with_envs.yaml")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)

		assert.Equal(t, "dev", cfg.Environment)
		assert.Equal(t, "sqlite", cfg.Target.Type)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "dev.db"), cfg.Target.Path)
	})

	t.Run("environment override to staging", func(t *testing.T) {
		ResetConfig()
		path := fixture(t, "valid_with_envs.yaml")

		cfg, err := LoadConfigWithEnv(path, "staging", nil)
		require.NoError(t, err)

		assert.Equal(t, "mssql", cfg.Target.Type)
		assert.Equal(t, "staging.internal", cfg.Target.Host)
		assert.Equal(t, 14330, cfg.Target.Port)
		assert.Equal(t, "sa", cfg.Target.User)
		assert.Equal(t, "sakila-etl-tests", cfg.Target.Options["app name"])
		assert.Equal(t, "4096", cfg.Target.Options["packet size"])
		assert.Equal(t, filepath.Join(filepath.Dir(path), "staging-reports"), cfg.ReportsDir)
	})

	t.Run("unknown environment", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithEnv(fixture(t, "valid_with_envs.yaml"), "prod", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown environment "prod"`)
	})

	t.Run("invalid log level", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(fixture(t, "invalid_log_level.yaml"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LogLevel must be one of")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(fixture(t, "malformed.yaml"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("missing explicit file", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		require.Error(t, err)
	})
}

func TestLoadConfig_DiscoversFileInWorkingDir(t *testing.T) {
	ResetConfig()
	wd := chdir(t)
	require.NoError(t, os.WriteFile(ConfigFileName, []byte("reports_dir: found\n"), 0o600))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, ConfigFileName, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(wd, "found"), cfg.ReportsDir)
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	path := fixture(t, "valid_mssql.yaml")
	wd := chdir(t)

	t.Setenv("SAKILA_ETL_TARGET_USER", "env-user")
	t.Setenv("SAKILA_ETL_TARGET_HOST", "env-host")
	t.Setenv("SAKILA_ETL_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server", "", "")
	flags.String("user", "", "")
	flags.Int("port", 0, "")
	flags.String("reports-dir", "", "")
	flags.Bool("no-history", false, "")
	flags.Bool("no-prompt", false, "")
	require.NoError(t, flags.Parse([]string{
		"--server", "flag-host", "--port", "2433", "--reports-dir", "flag-reports", "--no-history", "--no-prompt",
	}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "flag-host", cfg.Target.Host, "flag beats env and file")
	assert.Equal(t, 2433, cfg.Target.Port)
	assert.Equal(t, "env-user", cfg.Target.User, "env beats file")
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, filepath.Join(wd, "flag-reports"), cfg.ReportsDir, "flag paths are relative to the working dir")
	assert.False(t, cfg.History)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{ReportsDir: "reports", LogLevel: "info", OutputFormat: "auto", Target: &TargetConfig{Type: "mssql"}}
	}

	require.NoError(t, valid().Validate())

	c := valid()
	c.ReportsDir = ""
	assert.ErrorContains(t, c.Validate(), "ReportsDir is required")

	c = valid()
	c.OutputFormat = "xml"
	assert.ErrorContains(t, c.Validate(), "OutputFormat must be one of")

	c = valid()
	c.Target = nil
	assert.ErrorContains(t, c.Validate(), "target is required")
}

func TestConfig_ValidateDirectories(t *testing.T) {
	c := &Config{}
	assert.NoError(t, c.ValidateDirectories())

	c.SQLDir = t.TempDir()
	assert.NoError(t, c.ValidateDirectories())

	c.SQLDir = filepath.Join(c.SQLDir, "absent")
	assert.ErrorContains(t, c.ValidateDirectories(), "SQL directory does not exist")
}
