// Package testutil captures renderer output for command tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sakila-etl/internal/cli/output"
)

// TestRenderer is a non-TTY Renderer whose streams land in buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

func newTestRenderer(mode output.OutputMode) *TestRenderer {
	tr := &TestRenderer{Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}
	tr.Renderer = output.NewRendererWithTTY(tr.Out, tr.ErrOut, false, mode)
	return tr
}

// NewTestRendererMarkdown renders the way piped output and CI logs see it.
func NewTestRendererMarkdown() *TestRenderer {
	return newTestRenderer(output.ModeMarkdown)
}

// NewTestRendererJSON renders machine readable output.
func NewTestRendererJSON() *TestRenderer {
	return newTestRenderer(output.ModeJSON)
}

// Output returns what was written to stdout.
func (tr *TestRenderer) Output() string { return tr.Out.String() }

// ErrorOutput returns what was written to stderr.
func (tr *TestRenderer) ErrorOutput() string { return tr.ErrOut.String() }

// DecodeJSON unmarshals stdout into v, failing the test on bad JSON.
func (tr *TestRenderer) DecodeJSON(t testing.TB, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), v), "stdout: %s", tr.Out.String())
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails when s carries terminal escape codes.
func AssertNoANSI(t testing.TB, s string) {
	t.Helper()
	assert.False(t, ansiPattern.MatchString(s), "unexpected ANSI escapes in %q", s)
}

// AssertValidMarkdown checks fences are balanced, headers are not empty
// and every table row has the same column count as its header.
func AssertValidMarkdown(t testing.TB, md string) {
	t.Helper()
	assert.Zero(t, strings.Count(md, "```")%2, "unbalanced code fences")

	cols := 0
	for i, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			assert.NotEmpty(t, strings.TrimLeft(line, "# "), "empty header at line %d", i+1)
		}
		if !strings.HasPrefix(line, "|") {
			cols = 0
			continue
		}
		n := strings.Count(line, "|")
		if cols == 0 {
			cols = n
			continue
		}
		assert.Equal(t, cols, n, "ragged table row at line %d: %q", i+1, line)
	}
}
