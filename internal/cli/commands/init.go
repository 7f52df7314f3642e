package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/cli/gateway"
	"github.com/evently-dev/evently/internal/config"
)

// NewInitCmd creates the init command
func NewInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init <base-url>",
		Short: "Point the CLI at an Evently backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(app, args[0])
		},
	}
}

func runInit(app *App, baseURL string) error {
	// Normalizes the URL the same way every request will
	gw, err := gateway.New(baseURL)
	if err != nil {
		return err
	}
	baseURL = gw.BaseURL()

	path, err := configPath(app)
	if err != nil {
		return err
	}

	p := app.printer()

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		p.Messagef("Found existing %s\n", path)
	}

	if cfg.BaseURL == baseURL {
		p.Messagef("Backend %s is already configured\n", baseURL)
	} else {
		if err := cfg.Set("base_url", baseURL); err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		p.Messagef("✓ Saved backend %s to %s\n", baseURL, path)
	}

	p.Messagef("\nNext steps:\n")
	p.Messagef("  1. Run 'evently register' if you don't have an account yet\n")
	p.Messagef("  2. Run 'evently login' to authenticate\n")

	return nil
}
