package adapter

import (
	"context"
	"fmt"
	"log/slog"
)

// Connector opens a fresh, connected adapter on every call. Callers own the
// returned adapter and must Close it; no connection is shared between calls.
type Connector interface {
	Open(ctx context.Context) (Adapter, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Adapter, error)

// Open calls f(ctx).
func (f ConnectorFunc) Open(ctx context.Context) (Adapter, error) { return f(ctx) }

// RegistryConnector builds adapters from the registry for a fixed descriptor.
type RegistryConnector struct {
	Config Config
	Logger *slog.Logger
}

// NewConnector returns a Connector for cfg.
func NewConnector(cfg Config, logger *slog.Logger) *RegistryConnector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RegistryConnector{Config: cfg, Logger: logger}
}

// Open creates an adapter for the configured type and connects it.
func (c *RegistryConnector) Open(ctx context.Context) (Adapter, error) {
	a, err := NewAdapter(c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, c.Config); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.Config.Redacted(), err)
	}
	return a, nil
}
