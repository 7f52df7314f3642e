package commands

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/evently-dev/evently/internal/cli/apitest"
	"github.com/evently-dev/evently/internal/cli/auth"
	"github.com/evently-dev/evently/internal/cli/client"
	"github.com/evently-dev/evently/internal/cli/gateway"
	"github.com/evently-dev/evently/internal/cli/session"
	"github.com/evently-dev/evently/internal/config"
)

// fakePrompter answers prompts from canned values
type fakePrompter struct {
	interactive bool
	inputs      map[string]string
	password    string
	selections  map[string]int
	asked       []string
}

func (f *fakePrompter) Interactive() bool { return f.interactive }

func (f *fakePrompter) Password(label string) (string, error) {
	f.asked = append(f.asked, label)
	if !f.interactive {
		return "", ErrNonInteractive
	}
	return f.password, nil
}

func (f *fakePrompter) Input(label string) (string, error) {
	f.asked = append(f.asked, label)
	if !f.interactive {
		return "", ErrNonInteractive
	}
	v, ok := f.inputs[label]
	if !ok {
		return "", fmt.Errorf("unexpected prompt %q", label)
	}
	return v, nil
}

func (f *fakePrompter) Select(label string, items []string) (int, error) {
	f.asked = append(f.asked, label)
	if !f.interactive {
		return 0, ErrNonInteractive
	}
	idx, ok := f.selections[label]
	if !ok || idx >= len(items) {
		return 0, fmt.Errorf("unexpected selection %q", label)
	}
	return idx, nil
}

type testEnv struct {
	app      *App
	backend  *apitest.Backend
	creds    *auth.MemoryStore
	out      *bytes.Buffer
	prompter *fakePrompter
	env      map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := apitest.New(t)
	creds := auth.NewMemoryStore()

	gw, err := gateway.New(backend.URL(), gateway.WithInterceptors(gateway.BearerToken(creds)))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.BaseURL = backend.URL()
	cfg.Storage.Backend = config.StorageMemory

	e := &testEnv{
		backend:  backend,
		creds:    creds,
		out:      &bytes.Buffer{},
		prompter: &fakePrompter{},
		env:      map[string]string{},
	}

	e.app = &App{
		Config:     cfg,
		ConfigPath: t.TempDir() + "/config.yaml",
		Logger:     zerolog.Nop(),
		Session:    session.New(gw, creds, zerolog.Nop()),
		API:        client.New(gw),
		Creds:      creds,
		Output:     OutputTable,
		Out:        e.out,
		Prompter:   e.prompter,
		Getenv:     func(k string) string { return e.env[k] },
		Version:    "test",
	}
	t.Cleanup(func() { e.app.Close() })

	return e
}

// loginAs stores a valid token for a new account with role
func (e *testEnv) loginAs(t *testing.T, role string) *apitest.Account {
	t.Helper()

	acc := e.backend.AddAccount(apitest.Account{
		Email:    role + "@example.com",
		Username: role,
		Password: "password-1",
		Role:     role,
		Active:   true,
	})
	token, err := e.backend.IssueToken(acc, time.Hour)
	require.NoError(t, err)
	require.NoError(t, e.creds.Save(auth.Credentials{AccessToken: token, RefreshToken: "refresh"}))
	return acc
}

// run executes cmd with args and returns what it printed
func (e *testEnv) run(cmd *cobra.Command, args ...string) (string, error) {
	e.out.Reset()
	cmd.SetArgs(args)
	cmd.SetOut(e.out)
	cmd.SetErr(e.out)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return e.out.String(), err
}
