package duckdb

import (
	"fmt"
	"regexp"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Settings to apply at session level (e.g., memory_limit, threads)
	Settings map[string]string `mapstructure:"settings"`

	// ReadOnly opens the database file in read-only access mode.
	ReadOnly bool `mapstructure:"read_only"`
}

var settingName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// decodeParams decodes raw target params into Params.
func decodeParams(raw map[string]any) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("invalid duckdb params: %w", err)
	}
	for name := range p.Settings {
		if !settingName.MatchString(name) {
			return p, fmt.Errorf("invalid duckdb setting name %q", name)
		}
	}
	return p, nil
}
