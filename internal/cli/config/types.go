// Package config provides configuration management for the sakila-etl CLI.
//
// This package extends the shared target configuration from internal/config
// with CLI-specific fields. The shared TargetConfig is re-exported here via
// a type alias for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/sakila-etl/internal/config"
)

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing internal/config.
type TargetConfig = sharedcfg.TargetConfig

// NotebookConfig controls the companion notebook generator.
type NotebookConfig struct {
	Source string `koanf:"source"`
	Output string `koanf:"output"`
	// Functions lists the functions to render, in order. Empty uses the
	// built-in layout.
	Functions []string `koanf:"functions"`
}

// Config holds all CLI configuration options.
type Config struct {
	ReportsDir   string               `koanf:"reports_dir" validate:"required"`
	SQLDir       string               `koanf:"sql_dir"`
	LogFile      string               `koanf:"log_file"`
	LogLevel     string               `koanf:"log_level" validate:"oneof=debug info warn error"`
	StatePath    string               `koanf:"state_path"`
	History      bool                 `koanf:"history"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output" validate:"oneof=auto text markdown json"`
	Target       *TargetConfig        `koanf:"target" validate:"-"`
	Notebook     NotebookConfig       `koanf:"notebook"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	ReportsDir string        `koanf:"reports_dir"`
	SQLDir     string        `koanf:"sql_dir"`
	Target     *TargetConfig `koanf:"target"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultReportsDir     = sharedcfg.DefaultReportsDir
	DefaultLogFile        = sharedcfg.DefaultLogFile
	DefaultLogLevel       = sharedcfg.DefaultLogLevel
	DefaultStateFile      = sharedcfg.DefaultStateFile
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultNotebookSource = "cmd/sakila-etl-script/main.go"
	DefaultNotebookOutput = "auto_generated_notebook.ipynb"
	ConfigFileName        = "sakila-etl.yaml"
	ConfigFileNameAlt     = "sakila-etl.yml"
)
