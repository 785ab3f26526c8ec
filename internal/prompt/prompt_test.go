package prompt

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sakila-etl/internal/config"
)

type fakeTerminal struct {
	answers   map[string]string
	fail      map[string]error
	asked     []string
	passwords []string
}

func (f *fakeTerminal) ReadLine(prompt string) (string, error) {
	f.asked = append(f.asked, prompt)
	if err := f.fail[prompt]; err != nil {
		return "", err
	}
	return f.answers[prompt], nil
}

func (f *fakeTerminal) ReadPassword(prompt string) (string, error) {
	f.passwords = append(f.passwords, prompt)
	if err := f.fail[prompt]; err != nil {
		return "", err
	}
	return f.answers[prompt], nil
}

func (f *fakeTerminal) Close() error { return nil }

func TestComplete_AsksOnlyForMissing(t *testing.T) {
	tests := []struct {
		name          string
		target        config.TargetConfig
		wantAsked     []string
		wantPasswords int
		want          config.TargetConfig
	}{
		{
			name:          "everything missing",
			target:        config.TargetConfig{Type: "mssql"},
			wantAsked:     []string{ServerPrompt, UserPrompt},
			wantPasswords: 1,
			want:          config.TargetConfig{Type: "mssql", Host: "tcp:srv.database.windows.net", User: "corndeladmin", Password: "Password01"},
		},
		{
			name:          "only password missing",
			target:        config.TargetConfig{Type: "mssql", Host: "h", User: "u"},
			wantPasswords: 1,
			want:          config.TargetConfig{Type: "mssql", Host: "h", User: "u", Password: "Password01"},
		},
		{
			name:   "nothing missing",
			target: config.TargetConfig{Type: "postgres", Host: "h", User: "u", Password: "p"},
			want:   config.TargetConfig{Type: "postgres", Host: "h", User: "u", Password: "p"},
		},
		{
			name:   "file target never prompts",
			target: config.TargetConfig{Type: "sqlite", Path: "sakila.db"},
			want:   config.TargetConfig{Type: "sqlite", Path: "sakila.db"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := &fakeTerminal{answers: map[string]string{
				ServerPrompt:   "  tcp:srv.database.windows.net \n",
				UserPrompt:     "corndeladmin ",
				PasswordPrompt: " Password01",
			}}
			target := tt.target

			require.NoError(t, Complete(term, &target))
			assert.Equal(t, tt.want, target)
			assert.Equal(t, tt.wantAsked, term.asked)
			assert.Len(t, term.passwords, tt.wantPasswords)
		})
	}
}

func TestComplete_NoTerminal(t *testing.T) {
	target := config.TargetConfig{Type: "mssql", Host: "h"}
	err := Complete(nil, &target)
	assert.ErrorIs(t, err, ErrNoTerminal)

	complete := config.TargetConfig{Type: "mssql", Host: "h", User: "u", Password: "p"}
	assert.NoError(t, Complete(nil, &complete))
}

func TestComplete_Aborted(t *testing.T) {
	term := &fakeTerminal{fail: map[string]error{PasswordPrompt: ErrAborted}}
	target := config.TargetConfig{Type: "mssql", Host: "h", User: "u"}

	err := Complete(term, &target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAborted)
	assert.Contains(t, err.Error(), "read password")
	assert.Empty(t, target.Password)
}

func TestMissing(t *testing.T) {
	host, user, password := Missing(&config.TargetConfig{Type: "mssql", User: "sa"})
	assert.True(t, host)
	assert.False(t, user)
	assert.True(t, password)

	host, user, password = Missing(nil)
	assert.False(t, host || user || password)
}

func TestNewTerminal_NotATTY(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = NewTerminal(f, os.Stdout)
	assert.True(t, errors.Is(err, ErrNoTerminal))

	_, err = NewTerminal(nil, os.Stdout)
	assert.ErrorIs(t, err, ErrNoTerminal)
}

func TestMapReadlineErr(t *testing.T) {
	other := errors.New("boom")
	assert.Equal(t, other, mapReadlineErr(other))
	assert.NoError(t, mapReadlineErr(nil))
}
