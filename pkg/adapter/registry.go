package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Factory builds an unconnected adapter for one target type.
type Factory func(*slog.Logger) Adapter

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// Register makes a target type available to NewAdapter. Adapter packages
// call it from init; importing the package is enough to enable the type.
// Names are case-insensitive and a later registration replaces an earlier one.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[strings.ToLower(name)] = f
}

// Get returns the factory registered for name.
func Get(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[strings.ToLower(name)]
	return f, ok
}

// IsRegistered reports whether name is a known target type.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// ListAdapters returns the registered target types in sorted order.
func ListAdapters() []string {
	factoriesMu.RLock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	factoriesMu.RUnlock()
	slices.Sort(names)
	return names
}

// ErrNoTargetType is returned when the target config has no type.
var ErrNoTargetType = errors.New("adapter type not specified")

// NewAdapter builds the adapter for cfg.Type without connecting it.
// A nil logger discards.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, ErrNoTargetType
	}
	f, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return f(logger.With(slog.String("adapter", strings.ToLower(cfg.Type)))), nil
}

// UnknownAdapterError names a target type no adapter was registered for.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q (available: %s)\nHint: check target.type in sakila-etl.yaml",
		e.Type, strings.Join(e.Available, ", "))
}
