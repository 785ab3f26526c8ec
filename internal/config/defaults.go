package config

import (
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultTargetType     = "mssql"
	DefaultDatabase       = "sakila"
	DefaultMSSQLPort      = 1433
	DefaultPostgresPort   = 5432
	DefaultConnectTimeout = 30 * time.Second
	DefaultEncrypt        = true
	DefaultReportsDir     = "reports"
	DefaultLogFile        = "etl_pipeline.log"
	DefaultLogLevel       = "info"
	DefaultStateFile      = ".sakila-etl/state.db"
)

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = DefaultTargetType
	}
	t.Type = strings.ToLower(t.Type)

	if t.ConnectTimeout == 0 {
		t.ConnectTimeout = DefaultConnectTimeout
	}

	switch t.Type {
	case "mssql":
		if t.Database == "" {
			t.Database = DefaultDatabase
		}
		// A port given in the "host,port" form wins over the default
		if t.Port == 0 && !strings.Contains(t.Host, ",") {
			t.Port = DefaultMSSQLPort
		}
	case "postgres":
		if t.Database == "" {
			t.Database = DefaultDatabase
		}
		if t.Port == 0 {
			t.Port = DefaultPostgresPort
		}
	}
}
