package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/cli/auth"
	"github.com/evently-dev/evently/internal/cli/session"
)

// Environment variables read by login (useful for CI/CD)
const (
	EnvEmail    = "EVENTLY_EMAIL"
	EnvPassword = "EVENTLY_PASSWORD"
)

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Evently backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set EVENTLY_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set EVENTLY_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, app *App, email, password string) error {
	if err := app.ready(); err != nil {
		return err
	}

	if email == "" {
		email = app.getenv(EnvEmail)
	}
	if password == "" {
		password = app.getenv(EnvPassword)
	}

	email, err := ask(app.prompter(), email, "Email", "email")
	if err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or EVENTLY_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		password, err = app.prompter().Password("Password")
		if errors.Is(err, ErrNonInteractive) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or EVENTLY_PASSWORD env var)")
		}
		if err != nil {
			return err
		}
	}

	p := app.printer()
	p.Messagef("Logging in to %s...\n", app.Config.BaseURL)

	user, err := app.Session.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return p.Print(user, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "✓ Login successful!")
		fmt.Fprintf(w, "  User:\t%s\n", displayName(user))
		if user.Role != "" {
			fmt.Fprintf(w, "  Role:\t%s\n", user.Role)
		}
	})
}

func displayName(u *session.User) string {
	switch {
	case u.Username != "" && u.Email != "":
		return fmt.Sprintf("%s (%s)", u.Username, u.Email)
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			app.Session.Logout()
			app.printer().Messagef("✓ Logged out\n")
			return nil
		},
	}
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(app *App) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, app, username, email, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(cmd *cobra.Command, app *App, username, email, password string) error {
	if err := app.ready(); err != nil {
		return err
	}

	prompter := app.prompter()

	username, err := ask(prompter, username, "Username", "username")
	if err != nil {
		return err
	}
	email, err = ask(prompter, email, "Email", "email")
	if err != nil {
		return err
	}
	if password == "" {
		password, err = prompter.Password("Password")
		if errors.Is(err, ErrNonInteractive) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
		if err != nil {
			return err
		}
	}

	if err := app.Session.Register(cmd.Context(), username, email, password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	app.printer().Messagef("✓ Registration successful! Check %s for the activation link, then run: evently activate <token>\n", email)
	return nil
}

// NewActivateCmd creates the activate command
func NewActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <token>",
		Short: "Activate an account with the token from the activation email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}

			msg, err := app.Session.Activate(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("activation failed: %w", err)
			}
			if msg == "" {
				msg = "Account activated"
			}
			app.printer().Messagef("✓ %s\n", msg)
			return nil
		},
	}
}

// whoami is the structured form of the whoami output
type whoami struct {
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	UserID        string     `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired       bool       `json:"expired" yaml:"expired"`
	Backend       string     `json:"backend" yaml:"backend"`
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored credentials belong to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(app, time.Now())
		},
	}
}

func runWhoami(app *App, now time.Time) error {
	if err := app.ready(); err != nil {
		return err
	}

	info := whoami{Backend: app.Config.BaseURL}

	claims, err := app.Session.Resume()
	switch {
	case errors.Is(err, auth.ErrNoCredentials):
	case err != nil:
		return err
	default:
		info.Authenticated = true
		info.UserID = claims.UserID
		info.Expired = claims.Expired(now)
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			info.ExpiresAt = &exp
		}
	}

	return app.printer().Print(info, func(w *tabwriter.Writer) {
		if !info.Authenticated {
			fmt.Fprintf(w, "Not logged in to %s\n", info.Backend)
			fmt.Fprintln(w, "Run 'evently login' to authenticate.")
			return
		}
		fmt.Fprintf(w, "Backend:\t%s\n", info.Backend)
		fmt.Fprintf(w, "User ID:\t%s\n", orDash(info.UserID))
		if info.ExpiresAt != nil {
			state := "valid"
			if info.Expired {
				state = "expired, run 'evently login'"
			}
			fmt.Fprintf(w, "Token expires:\t%s (%s)\n", info.ExpiresAt.Local().Format(time.RFC1123), state)
		}
	})
}
