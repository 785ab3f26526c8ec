package config

import (
	"context"
	"log/slog"
)

// configKey is used to store config in context.
type configKey struct{}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config stored by WithConfig. Without one it
// returns a config holding only the defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		ReportsDir:   DefaultReportsDir,
		LogFile:      DefaultLogFile,
		LogLevel:     DefaultLogLevel,
		StatePath:    DefaultStateFile,
		History:      true,
		OutputFormat: DefaultOutput,
		Notebook: NotebookConfig{
			Source: DefaultNotebookSource,
			Output: DefaultNotebookOutput,
		},
		Target: &TargetConfig{},
	}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
