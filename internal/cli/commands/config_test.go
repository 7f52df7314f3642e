package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evently-dev/evently/internal/config"
)

func TestInitCommand_WritesBaseURL(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(NewInitCmd(e.app), "https://events.example.com/api")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved backend https://events.example.com/api/")
	assert.Contains(t, out, "evently login")

	cfg, err := config.LoadFile(e.app.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "https://events.example.com/api/", cfg.BaseURL)

	out, err = e.run(NewInitCmd(e.app), "https://events.example.com/api/")
	require.NoError(t, err)
	assert.Contains(t, out, "already configured")
}

func TestInitCommand_KeepsOtherSettings(t *testing.T) {
	e := newTestEnv(t)

	cfg := config.Default()
	cfg.Timeout = 5 * time.Second
	require.NoError(t, config.Save(e.app.ConfigPath, cfg))

	_, err := e.run(NewInitCmd(e.app), "http://10.0.0.5:8000/api/")
	require.NoError(t, err)

	cfg, err = config.LoadFile(e.app.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000/api/", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestInitCommand_InvalidURL(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(NewInitCmd(e.app), "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base URL")
}

func TestConfigCommand_SetAndShow(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(NewConfigCmd(e.app), "set", "timeout", "45s")
	require.NoError(t, err)
	assert.Contains(t, out, "Set timeout = 45s")

	cfg, err := config.LoadFile(e.app.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Timeout)

	_, err = e.run(NewConfigCmd(e.app), "set", "storage.backend", "floppy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")

	_, err = e.run(NewConfigCmd(e.app), "set", "colour", "blue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")

	out, err = e.run(NewConfigCmd(e.app), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url:")
	assert.Contains(t, out, e.backend.URL())
	assert.Contains(t, out, "storage.backend:")
	assert.Contains(t, out, "memory")
}
