package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/cli/client"
	"github.com/evently-dev/evently/internal/cli/session"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Edit your profile",
	}

	cmd.AddCommand(newProfileUpdateCmd(app))

	cmd.AddCommand(&cobra.Command{
		Use:   "upload-image <path>",
		Short: "Replace your profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer f.Close()

			user, err := app.API.UploadProfileImage(cmd.Context(), client.Upload{Name: filepath.Base(args[0]), Content: f})
			if err != nil {
				return err
			}
			return printProfile(app, user, "✓ Profile image updated")
		},
	})

	return cmd
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var update client.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields; only the flags you pass are changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			user, err := app.API.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			return printProfile(app, user, "✓ Profile updated")
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&update.Username, "username", "", "Username")
	flags.StringVar(&update.Email, "email", "", "Email address")
	flags.StringVar(&update.FirstName, "first-name", "", "First name")
	flags.StringVar(&update.LastName, "last-name", "", "Last name")
	flags.StringVar(&update.PhoneNumber, "phone", "", "Phone number")
	flags.StringVar(&update.DateOfBirth, "birth-date", "", "Date of birth (YYYY-MM-DD)")
	flags.StringVar(&update.Bio, "bio", "", "Short bio")
	flags.StringVar(&update.Address, "address", "", "Street address")
	flags.StringVar(&update.City, "city", "", "City")
	flags.StringVar(&update.Country, "country", "", "Country")
	flags.StringVar(&update.PostalCode, "postal-code", "", "Postal code")
	flags.StringVar(&update.Language, "language", "", "Preferred language")

	return cmd
}

func printProfile(app *App, user *session.User, headline string) error {
	// Keep the in-memory user in step when this process is logged in
	if app.Session.IsAuthenticated() {
		if err := app.Session.UpdateUser(user); err != nil {
			app.Logger.Debug().Err(err).Msg("Failed to refresh session user")
		}
	}

	return app.printer().Print(user, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, headline)
		fmt.Fprintf(w, "  User:\t%s\n", displayName(user))
		if name := fullName(user); name != "" {
			fmt.Fprintf(w, "  Name:\t%s\n", name)
		}
		if user.ProfileImage != "" {
			fmt.Fprintf(w, "  Image:\t%s\n", user.ProfileImage)
		}
	})
}

func fullName(u *session.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}
