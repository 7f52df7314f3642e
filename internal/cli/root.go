package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/cli/commands"
)

var version = "dev" // Will be set during build

// Commands that work without a backend connection
var offlineCommands = map[string]bool{
	"version": true,
	"init":    true,
	"config":  true,
	"help":    true,
}

// NewRootCmd builds the command tree around app. Fields already set on app
// (tests inject a session and API client) are kept as they are.
func NewRootCmd(app *commands.App) *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "evently",
		Short: "Evently - book events from the terminal",
		Long: `Evently CLI - browse events, book them, pay and leave testimonials.

Agencies and admins can also publish events and moderate testimonials.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !commands.ValidOutput(opts.output) {
				return fmt.Errorf("invalid output format '%s', must be one of: table, yaml, json", opts.output)
			}
			app.Output = opts.output
			opts.timeoutSet = cmd.Flags().Changed("timeout")
			if app.Version == "" {
				app.Version = version
			}
			return opts.setup(app, isOffline(cmd))
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/evently/config.yaml)")
	flags.StringVar(&opts.baseURL, "base-url", "", "Backend API base URL (or set EVENTLY_BASE_URL)")
	flags.StringVar(&opts.storage, "storage", "", "Credential storage: keyring, file, memory (or set EVENTLY_STORAGE)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (or set EVENTLY_LOG_LEVEL)")
	flags.StringVarP(&opts.output, "output", "o", commands.OutputTable, "Output format: table, yaml, json")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Request timeout, 0 disables (default from config, 30s)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "evently version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd(app))
	rootCmd.AddCommand(commands.NewConfigCmd(app))
	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewRegisterCmd(app))
	rootCmd.AddCommand(commands.NewActivateCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewEventsCmd(app))
	rootCmd.AddCommand(commands.NewPackagesCmd(app))
	rootCmd.AddCommand(commands.NewAnnouncementsCmd(app))
	rootCmd.AddCommand(commands.NewBookingsCmd(app))
	rootCmd.AddCommand(commands.NewPaymentsCmd(app))
	rootCmd.AddCommand(commands.NewTestimonialsCmd(app))
	rootCmd.AddCommand(commands.NewProfileCmd(app))
	rootCmd.AddCommand(commands.NewDashCmd(app))

	return rootCmd
}

func isOffline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if offlineCommands[c.Name()] {
			return true
		}
	}
	return false
}

// Execute runs the root command. SIGINT and SIGTERM cancel in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &commands.App{Version: version}
	rootCmd := NewRootCmd(app)

	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRun is skipped when a command fails
	if closeErr := app.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
