package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	sharedcfg "github.com/leapstack-labs/sakila-etl/internal/config"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "SAKILA_ETL_"

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// flagKeys maps CLI flag names to config keys where they differ from the
// kebab-to-snake rule. An empty key means the flag is not a config value.
var flagKeys = map[string]string{
	"type":       "target.type",
	"server":     "target.host",
	"port":       "target.port",
	"database":   "target.database",
	"user":       "target.user",
	"path":       "target.path",
	"state":      "state_path",
	"source":     "notebook.source",
	"notebook":   "notebook.output",
	"config":     "",
	"env":        "",
	"no-prompt":  "",
	"force":      "",
	"export-sql": "",
	"run":        "",
	"limit":      "",
	"dir":        "",
	"readme":     "",
	"watch":      "",
}

// pathKeys are config keys holding file system paths.
var pathKeys = []string{"reports_dir", "sql_dir", "log_file", "state_path", "target.path"}

// nestedEnvSections are the config sections reachable from env vars, e.g.
// SAKILA_ETL_TARGET_HOST -> target.host.
var nestedEnvSections = []string{"target", "notebook"}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// findConfigFile finds the config file to use.
// Priority: explicit path > sakila-etl.yaml > sakila-etl.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, already absolute or ":memory:".
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// envKey maps SAKILA_ETL_TARGET_TRUST_SERVER_CERTIFICATE to
// target.trust_server_certificate.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range nestedEnvSections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// flagKey maps a changed flag to its config key and value.
func flagKey(flags *pflag.FlagSet, f *pflag.Flag) (string, any) {
	if !f.Changed {
		return "", nil
	}
	if f.Name == "no-history" {
		v, _ := flags.GetBool("no-history")
		return "history", !v
	}
	key, mapped := flagKeys[f.Name]
	if !mapped {
		// Transform kebab-case to snake_case for config keys
		key = strings.ReplaceAll(f.Name, "-", "_")
	}
	if key == "" {
		return "", nil
	}
	return key, posflag.FlagVal(flags, f)
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithEnv(cfgFile, "", flags)
}

// LoadConfigWithEnv loads configuration and applies the overrides of the
// named environment (or of the configured "environment" key when envName is
// empty). Relative paths from the config file are resolved against the
// config file's directory; relative paths given as flags against the
// working directory.
func LoadConfigWithEnv(cfgFile, envName string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"reports_dir":                     DefaultReportsDir,
		"log_file":                        DefaultLogFile,
		"log_level":                       DefaultLogLevel,
		"state_path":                      DefaultStateFile,
		"history":                         true,
		"verbose":                         false,
		"output":                          DefaultOutput,
		"notebook.source":                 DefaultNotebookSource,
		"notebook.output":                 DefaultNotebookOutput,
		"target.type":                     sharedcfg.DefaultTargetType,
		"target.encrypt":                  sharedcfg.DefaultEncrypt,
		"target.trust_server_certificate": false,
		"target.connect_timeout":          sharedcfg.DefaultConnectTimeout,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	projectRoot := cwd
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// Relative paths loaded so far belong to the config file
	for _, key := range pathKeys {
		if v := k.String(key); v != "" {
			if err := k.Set(key, resolvePathRelativeTo(v, projectRoot)); err != nil {
				return nil, fmt.Errorf("failed to resolve %s: %w", key, err)
			}
		}
	}

	// 3. Load environment variables (SAKILA_ETL_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return flagKey(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	// Env vars and flags are relative to the working directory
	cfg.ReportsDir = resolvePathRelativeTo(cfg.ReportsDir, cwd)
	cfg.SQLDir = resolvePathRelativeTo(cfg.SQLDir, cwd)
	cfg.LogFile = resolvePathRelativeTo(cfg.LogFile, cwd)
	cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, cwd)

	// Apply environment-specific overrides if an environment is selected
	if envName == "" {
		envName = cfg.Environment
	}
	if envName != "" {
		envCfg, ok := cfg.Environments[envName]
		if !ok {
			return nil, fmt.Errorf("unknown environment %q", envName)
		}
		if envCfg.ReportsDir != "" {
			cfg.ReportsDir = resolvePathRelativeTo(envCfg.ReportsDir, projectRoot)
		}
		if envCfg.SQLDir != "" {
			cfg.SQLDir = resolvePathRelativeTo(envCfg.SQLDir, projectRoot)
		}
		if envCfg.Target != nil {
			if envCfg.Target.Path != "" {
				envCfg.Target.Path = resolvePathRelativeTo(envCfg.Target.Path, projectRoot)
			}
			cfg.Target = MergeTargetConfig(cfg.Target, envCfg.Target)
		}
		cfg.Environment = envName
	}

	if cfg.Target == nil {
		cfg.Target = &TargetConfig{}
	}
	cfg.Target.Path = resolvePathRelativeTo(cfg.Target.Path, cwd)

	// Apply defaults based on target type
	sharedcfg.ApplyTargetDefaults(cfg.Target)

	// Expand environment variables in target
	expandTargetEnvVars(cfg.Target)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.Path = expandEnvVars(t.Path)
}

// MergeTargetConfig merges two target configs, with override taking precedence.
// Booleans are taken from override only when it names a type, i.e. when it
// describes a complete target of its own.
func MergeTargetConfig(base, override *TargetConfig) *TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	// Start with a copy of base
	merged := *base
	merged.Options = make(map[string]string, len(base.Options)+len(override.Options))
	merged.Params = make(map[string]any, len(base.Params)+len(override.Params))
	for k, v := range base.Options {
		merged.Options[k] = v
	}
	for k, v := range base.Params {
		merged.Params[k] = v
	}

	// Apply overrides
	if override.Type != "" {
		merged.Type = override.Type
		merged.Encrypt = override.Encrypt
		merged.TrustServerCertificate = override.TrustServerCertificate
	}
	if override.Path != "" {
		merged.Path = override.Path
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.ConnectTimeout != 0 {
		merged.ConnectTimeout = override.ConnectTimeout
	}

	for k, v := range override.Options {
		merged.Options[k] = v
	}
	for k, v := range override.Params {
		merged.Params[k] = v
	}

	return &merged
}
