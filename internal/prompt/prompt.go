// Package prompt collects missing connection credentials from the user.
// It is the only place sakila-etl reads interactive input; the pipeline
// itself always receives a complete target.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/leapstack-labs/sakila-etl/internal/config"
)

// ErrNoTerminal is returned when input is required but stdin is not a terminal.
var ErrNoTerminal = errors.New("credentials required but no interactive terminal is available")

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompt texts.
const (
	ServerPrompt   = "Enter SQL Server address (hint: starts with tcp and ends with .net): "
	UserPrompt     = "Enter your username: "
	PasswordPrompt = "Enter your password: "
)

// Terminal reads single lines of user input.
type Terminal interface {
	ReadLine(prompt string) (string, error)
	// ReadPassword reads a line without echoing it.
	ReadPassword(prompt string) (string, error)
	Close() error
}

type readlineTerminal struct {
	rl *readline.Instance
}

// NewTerminal returns a readline-backed Terminal over stdin and stdout.
// It fails with ErrNoTerminal when stdin is not a TTY.
func NewTerminal(stdin *os.File, stdout io.Writer) (Terminal, error) {
	if stdin == nil || !term.IsTerminal(int(stdin.Fd())) { //nolint:gosec // fd fits in int
		return nil, ErrNoTerminal
	}
	rl, err := readline.NewEx(&readline.Config{
		Stdin:                  stdin,
		Stdout:                 stdout,
		InterruptPrompt:        "^C",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return &readlineTerminal{rl: rl}, nil
}

func (t *readlineTerminal) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	return line, mapReadlineErr(err)
}

func (t *readlineTerminal) ReadPassword(prompt string) (string, error) {
	b, err := t.rl.ReadPassword(prompt)
	return string(b), mapReadlineErr(err)
}

func (t *readlineTerminal) Close() error { return t.rl.Close() }

func mapReadlineErr(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return ErrAborted
	}
	return err
}

// Missing reports which credentials of target are unset. File targets
// never need any.
func Missing(target *config.TargetConfig) (host, user, password bool) {
	if target == nil || !target.IsNetwork() {
		return false, false, false
	}
	return target.Host == "", target.User == "", target.Password == ""
}

// Complete asks for every unset server address, username and password of
// target and stores the trimmed answers. It does nothing when nothing is
// missing. A nil terminal with missing values yields ErrNoTerminal.
func Complete(t Terminal, target *config.TargetConfig) error {
	needHost, needUser, needPassword := Missing(target)
	if !needHost && !needUser && !needPassword {
		return nil
	}
	if t == nil {
		return ErrNoTerminal
	}

	if needHost {
		v, err := t.ReadLine(ServerPrompt)
		if err != nil {
			return fmt.Errorf("read server address: %w", err)
		}
		target.Host = strings.TrimSpace(v)
	}
	if needUser {
		v, err := t.ReadLine(UserPrompt)
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		target.User = strings.TrimSpace(v)
	}
	if needPassword {
		v, err := t.ReadPassword(PasswordPrompt)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		target.Password = strings.TrimSpace(v)
	}
	return nil
}
