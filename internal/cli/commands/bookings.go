package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/cli/client"
)

// NewBookingsCmd creates the bookings command group
func NewBookingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookings",
		Aliases: []string{"booking"},
		Short:   "Manage your bookings",
	}

	var search, status string
	lsCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List bookings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			bookings, err := app.API.ListBookings(cmd.Context())
			if err != nil {
				return err
			}
			bookings = client.FilterBookings(bookings, search, status)
			return app.printer().Print(bookings, func(w *tabwriter.Writer) {
				if len(bookings) == 0 {
					fmt.Fprintln(w, "No bookings found.")
					fmt.Fprintln(w, "\nBook an event with: evently bookings create --event <id>")
					return
				}
				fmt.Fprintln(w, "ID\tEVENT\tDATE\tCLIENT\tAMOUNT\tSTATUS")
				fmt.Fprintln(w, "──\t─────\t────\t──────\t──────\t──────")
				for _, b := range bookings {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						b.ID,
						truncate(b.Event.Title, 40),
						orDash(b.Event.Date),
						orDash(b.Client.Name()),
						b.AmountPaid,
						b.Status,
					)
				}
			})
		},
	}
	lsCmd.Flags().StringVar(&search, "search", "", "Only bookings whose event title or client username contains this text")
	lsCmd.Flags().StringVar(&status, "status", "", "Only bookings with this status (pending, confirmed, canceled)")
	cmd.AddCommand(lsCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			booking, err := app.API.GetBooking(cmd.Context(), id)
			if err != nil {
				return err
			}
			return app.printer().Print(booking, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID:\t%d\n", booking.ID)
				fmt.Fprintf(w, "Event:\t%s (id %d)\n", booking.Event.Title, booking.Event.ID)
				fmt.Fprintf(w, "Date:\t%s\n", orDash(booking.Event.Date))
				fmt.Fprintf(w, "Location:\t%s\n", orDash(booking.Event.Location))
				fmt.Fprintf(w, "Client:\t%s\n", orDash(booking.Client.Name()))
				fmt.Fprintf(w, "Amount paid:\t%s\n", booking.AmountPaid)
				fmt.Fprintf(w, "Status:\t%s\n", booking.Status)
				fmt.Fprintf(w, "Created:\t%s\n", orDash(booking.CreatedAt))
			})
		},
	})

	cmd.AddCommand(newBookingCreateCmd(app))

	return cmd
}

func newBookingCreateCmd(app *App) *cobra.Command {
	var (
		eventID  int64
		clientID int64
		amount   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book an event (clients only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}

			if eventID == 0 {
				id, err := selectEvent(cmd, app)
				if err != nil {
					return err
				}
				eventID = id
			}

			req := client.CreateBookingRequest{EventID: eventID, ClientID: clientID}
			if amount != "" {
				a, err := client.ParseAmount(amount)
				if err != nil {
					return err
				}
				req.AmountPaid = a
			}

			booking, err := app.API.CreateBooking(cmd.Context(), req)
			if err != nil {
				return err
			}

			return app.printer().Print(booking, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "✓ Booked '%s' (booking %d, %s)\n", booking.Event.Title, booking.ID, booking.Status)
				fmt.Fprintf(w, "\nPay with: evently payments create --booking %d\n", booking.ID)
			})
		},
	}

	cmd.Flags().Int64Var(&eventID, "event", 0, "Event ID (prompts on a terminal if omitted)")
	cmd.Flags().Int64Var(&clientID, "client", 0, "Client ID (defaults to the backend's view of you)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount paid up front")

	return cmd
}

// selectEvent lets the user pick an event interactively
func selectEvent(cmd *cobra.Command, app *App) (int64, error) {
	if !app.prompter().Interactive() {
		return 0, fmt.Errorf("event is required (use --event)")
	}

	events, err := app.API.ListEvents(cmd.Context())
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, fmt.Errorf("no events available to book")
	}

	labels := make([]string, len(events))
	for i, e := range events {
		labels[i] = fmt.Sprintf("%s (%s, %s)", e.Title, orDash(e.Date), orDash(e.Location))
	}

	idx, err := app.prompter().Select("Select an event", labels)
	if err != nil {
		return 0, err
	}
	return events[idx].ID, nil
}
