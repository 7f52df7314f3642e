package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewDashCmd creates the dash command
func NewDashCmd(app *App) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Show the admin dashboard (admin/agency), or your own with --mine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mine {
				return runUserDash(cmd, app, time.Now())
			}
			return runDash(cmd, app)
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Show your events and bookings overview instead of the admin one")

	return cmd
}

func runUserDash(cmd *cobra.Command, app *App, now time.Time) error {
	if err := app.ready(); err != nil {
		return err
	}

	dash, err := app.API.UserDashboard(cmd.Context(), now)
	if err != nil {
		return err
	}

	return app.printer().Print(dash, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Events:\t%d\n", dash.TotalEvents)
		fmt.Fprintf(w, "Upcoming events:\t%d\n", dash.UpcomingEvents)
		fmt.Fprintf(w, "Your bookings:\t%d\n", dash.TotalBookings)

		if len(dash.RecentEvents) > 0 {
			fmt.Fprintln(w, "\nRecent events")
			for _, e := range dash.RecentEvents {
				fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", e.ID, truncate(e.Title, 40), orDash(e.Date), orDash(e.Location))
			}
		}
	})
}

func runDash(cmd *cobra.Command, app *App) error {
	if err := app.ready(); err != nil {
		return err
	}

	dash, err := app.API.Dashboard(cmd.Context())
	if err != nil {
		return err
	}

	return app.printer().Print(dash, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Events:\t%d\n", dash.TotalEvents)
		fmt.Fprintf(w, "Pending testimonials:\t%d\n", dash.TotalTestimonials)
		fmt.Fprintf(w, "Payments:\t%d\n", dash.TotalPayments)
		fmt.Fprintf(w, "Revenue:\t%s\n", dash.TotalRevenue)

		if len(dash.RecentEvents) > 0 {
			fmt.Fprintln(w, "\nRecent events")
			for _, e := range dash.RecentEvents {
				fmt.Fprintf(w, "  %d\t%s\t%s\n", e.ID, truncate(e.Title, 40), orDash(e.Date))
			}
		}

		if len(dash.PendingTestimonials) > 0 {
			fmt.Fprintln(w, "\nAwaiting moderation")
			for _, t := range dash.PendingTestimonials {
				fmt.Fprintf(w, "  %d\t%s\t%s\n", t.ID, truncate(t.Title, 40), stars(t.Rating))
			}
			fmt.Fprintln(w, "\nModerate with: evently testimonials approve|reject <id>")
		}

		if len(dash.RecentPayments) > 0 {
			fmt.Fprintln(w, "\nRecent payments")
			for _, p := range dash.RecentPayments {
				fmt.Fprintf(w, "  %d\t%s\t%s\t%s %s\t%s\n", p.ID, orDash(truncate(p.Booking.Event.Title, 30)), orDash(p.Client.Name()), p.Amount, p.Currency, p.Status)
			}
		}
	})
}
