package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evently-dev/evently/internal/cli/apitest"
	"github.com/evently-dev/evently/internal/cli/commands"
	"github.com/evently-dev/evently/internal/config"
)

// runRoot executes the full command tree with an isolated config file
func runRoot(t *testing.T, app *commands.App, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	app.Out = out

	root := NewRootCmd(app)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestRoot_Version(t *testing.T) {
	app := &commands.App{}

	out, err := runRoot(t, app, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "evently version dev")

	// Offline commands never build a session
	assert.Nil(t, app.Session)
	assert.Nil(t, app.API)
	require.NotNil(t, app.Config)
}

func TestRoot_InvalidOutput(t *testing.T) {
	_, err := runRoot(t, &commands.App{}, "-o", "xml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format 'xml'")
}

func TestRoot_InvalidStorage(t *testing.T) {
	_, err := runRoot(t, &commands.App{}, "--storage", "floppy", "events", "ls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")
}

func TestRoot_FlagsOverrideConfig(t *testing.T) {
	backend := apitest.New(t)
	app := &commands.App{}

	out, err := runRoot(t, app, "--base-url", backend.URL(), "--storage", config.StorageMemory, "--timeout", "0", "events", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found.")

	assert.Equal(t, backend.URL(), app.Config.BaseURL)
	assert.Equal(t, config.StorageMemory, app.Config.Storage.Backend)
	assert.Equal(t, time.Duration(0), app.Config.Timeout)
	require.NotNil(t, app.Session)
	require.NotNil(t, app.API)
	assert.Len(t, backend.Requests(), 1)
}

func TestRoot_LoginThenBook(t *testing.T) {
	backend := apitest.New(t)
	backend.AddAccount(apitest.Account{Email: "c@example.com", Username: "c", Password: "password-1", Role: "client", Active: true})
	backend.Seed("events", map[string]any{"title": "Wedding"})

	app := &commands.App{}
	_, err := runRoot(t, app, "--base-url", backend.URL(), "--storage", config.StorageMemory,
		"login", "--email", "c@example.com", "--password", "password-1")
	require.NoError(t, err)
	require.True(t, app.Session.IsAuthenticated())

	// The wired gateway reads the token the session just stored
	root := NewRootCmd(app)
	out := &bytes.Buffer{}
	app.Out = out
	root.SetArgs([]string{"bookings", "create", "--event", "1", "--amount", "10"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Booked 'Wedding'")

	last := backend.Requests()[len(backend.Requests())-1]
	assert.Equal(t, "/api/bookings/bookings/", last.Path)
	assert.Contains(t, last.Authorization, "Bearer ")
}

func TestRoot_TimeoutKeepsConfigUnlessSet(t *testing.T) {
	backend := apitest.New(t)

	app := &commands.App{}
	_, err := runRoot(t, app, "--base-url", backend.URL(), "--storage", config.StorageMemory, "events", "ls")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, app.Config.Timeout)

	app = &commands.App{}
	_, err = runRoot(t, app, "--base-url", backend.URL(), "--storage", config.StorageMemory, "--timeout", "5s", "events", "ls")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, app.Config.Timeout)
}

func TestRoot_HelpShowsNoSentinelTimeout(t *testing.T) {
	out, err := runRoot(t, &commands.App{}, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--timeout duration")
	assert.NotContains(t, out, "-1ns")
}
