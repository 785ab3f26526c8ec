// Package testutil provides shared test helpers: a t.Log backed logger and
// a seeded Sakila SQLite fixture.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NewTestLogger routes debug and above to t.Log, so pipeline logs show up
// next to the failing assertion or under -v. Timestamps are dropped.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// tbWriter hands each record to t.Log. slog writes one record per call.
type tbWriter struct{ tb testing.TB }

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
