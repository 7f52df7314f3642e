package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/evently-dev/evently/internal/cli/auth"
	"github.com/evently-dev/evently/internal/cli/client"
	"github.com/evently-dev/evently/internal/cli/session"
	"github.com/evently-dev/evently/internal/config"
)

// App carries everything a command needs. The root command fills it in
// before any subcommand runs; tests build one directly.
type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     zerolog.Logger
	Session    *session.Store
	API        *client.Client
	Creds      auth.CredentialStore

	Output   string
	Out      io.Writer
	Prompter Prompter
	Getenv   func(string) string
	Version  string

	closers []io.Closer
}

// AddCloser registers something to release when the command finishes
func (a *App) AddCloser(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Close shuts the session and any registered resources
func (a *App) Close() error {
	if a.Session != nil {
		a.Session.Close()
	}

	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) getenv(key string) string {
	if a.Getenv == nil {
		return os.Getenv(key)
	}
	return a.Getenv(key)
}

func (a *App) printer() *Printer {
	return &Printer{Format: a.Output, W: a.out()}
}

func (a *App) prompter() Prompter {
	if a.Prompter == nil {
		return NewTerminalPrompter()
	}
	return a.Prompter
}

func (a *App) ready() error {
	if a.Session == nil || a.API == nil {
		return fmt.Errorf("application not initialized")
	}
	return nil
}
