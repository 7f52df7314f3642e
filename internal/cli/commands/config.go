package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/config"
)

// NewConfigCmd creates the config command group
func NewConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if cfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			return app.printer().Print(cfg, func(w *tabwriter.Writer) {
				if app.ConfigPath != "" {
					fmt.Fprintf(w, "file:\t%s\n", app.ConfigPath)
				}
				fmt.Fprintf(w, "base_url:\t%s\n", cfg.BaseURL)
				fmt.Fprintf(w, "timeout:\t%s\n", cfg.Timeout)
				fmt.Fprintf(w, "storage.backend:\t%s\n", cfg.Storage.Backend)
				fmt.Fprintf(w, "storage.path:\t%s\n", orDash(cfg.Storage.Path))
				fmt.Fprintf(w, "logging.level:\t%s\n", cfg.Logging.Level)
				fmt.Fprintf(w, "logging.format:\t%s\n", cfg.Logging.Format)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a setting (base_url, timeout, storage.backend, storage.path, logging.level, logging.format)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(app, args[0], args[1])
		},
	})

	return cmd
}

func runConfigSet(app *App, key, value string) error {
	path, err := configPath(app)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	app.printer().Messagef("✓ Set %s = %s in %s\n", key, value, path)
	return nil
}

func configPath(app *App) (string, error) {
	if app.ConfigPath != "" {
		return app.ConfigPath, nil
	}
	return config.DefaultPath()
}
