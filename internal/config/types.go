// Package config provides the database target configuration shared by the
// CLI and the ETL pipeline: its defaults, validation and conversion into an
// adapter connection descriptor.
package config

import (
	"strings"
	"time"

	"github.com/leapstack-labs/sakila-etl/pkg/adapter"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type" validate:"required,adapter"` // mssql, postgres, duckdb, sqlite

	// File-based databases (DuckDB, SQLite)
	Path string `koanf:"path"`

	// Network databases. Host accepts the "tcp:host,port" form.
	Host     string `koanf:"host" validate:"required_if=Type mssql,required_if=Type postgres"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	Encrypt                bool          `koanf:"encrypt"`
	TrustServerCertificate bool          `koanf:"trust_server_certificate"`
	ConnectTimeout         time.Duration `koanf:"connect_timeout" validate:"gte=0"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g. DuckDB settings)
	Params map[string]any `koanf:"params"`
}

// IsNetwork reports whether the target is reached over the network and
// therefore needs a host and credentials.
func (t *TargetConfig) IsNetwork() bool {
	switch strings.ToLower(t.Type) {
	case "duckdb", "sqlite":
		return false
	}
	return true
}

// ToAdapterConfig converts the target into a connection descriptor.
func (t *TargetConfig) ToAdapterConfig() adapter.Config {
	return adapter.Config{
		Type:                   strings.ToLower(t.Type),
		Path:                   t.Path,
		Host:                   t.Host,
		Port:                   t.Port,
		Database:               t.Database,
		Username:               t.User,
		Password:               t.Password,
		Encrypt:                t.Encrypt,
		TrustServerCertificate: t.TrustServerCertificate,
		ConnectTimeout:         t.ConnectTimeout,
		Options:                t.Options,
		Params:                 t.Params,
	}
}
