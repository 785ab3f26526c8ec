package config

import (
	"fmt"
	"os"

	sharedcfg "github.com/leapstack-labs/sakila-etl/internal/config"
)

// Validate checks the CLI-level settings. The target is validated
// separately, once credentials have been collected.
func (c *Config) Validate() error {
	if err := sharedcfg.Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", sharedcfg.FieldErrors(err))
	}
	if c.Target == nil {
		return fmt.Errorf("invalid configuration: target is required")
	}
	return nil
}

// ValidateDirectories checks if configured input directories exist.
func (c *Config) ValidateDirectories() error {
	if c.SQLDir == "" {
		return nil
	}
	if _, err := os.Stat(c.SQLDir); os.IsNotExist(err) {
		return fmt.Errorf("SQL directory does not exist: %s\nHint: Run 'sakila-etl init --export-sql' or use --sql-dir to specify a different path", c.SQLDir)
	}
	return nil
}
