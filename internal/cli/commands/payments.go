package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/cli/client"
)

// NewPaymentsCmd creates the payments command group
func NewPaymentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"payment"},
		Short:   "Pay for bookings and review payments",
	}

	var search, status string
	lsCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List payments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			payments, err := app.API.ListPayments(cmd.Context())
			if err != nil {
				return err
			}
			return printPayments(app.printer(), client.FilterPayments(payments, search, status))
		},
	}
	lsCmd.Flags().StringVar(&search, "search", "", "Only payments whose event title, client username or transaction id contains this text")
	lsCmd.Flags().StringVar(&status, "status", "", "Only payments with this status (pending, processing, completed, failed, cancelled)")
	cmd.AddCommand(lsCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			payment, err := app.API.GetPayment(cmd.Context(), id)
			if err != nil {
				return err
			}
			return app.printer().Print(payment, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID:\t%d\n", payment.ID)
				fmt.Fprintf(w, "Booking:\t%d (%s)\n", payment.Booking.ID, orDash(payment.Booking.Status))
				if payment.Booking.Event.Title != "" {
					fmt.Fprintf(w, "Event:\t%s (%s)\n", payment.Booking.Event.Title, orDash(payment.Booking.Event.Date))
				}
				fmt.Fprintf(w, "Client:\t%s\n", orDash(payment.Client.Name()))
				fmt.Fprintf(w, "Amount:\t%s %s\n", payment.Amount, payment.Currency)
				fmt.Fprintf(w, "Method:\t%s\n", orDash(payment.PaymentMethod))
				fmt.Fprintf(w, "Status:\t%s\n", payment.Status)
				fmt.Fprintf(w, "Transaction:\t%s\n", orDash(payment.TransactionID))
				fmt.Fprintf(w, "Billed to:\t%s <%s>\n", orDash(payment.BillingName), orDash(payment.BillingEmail))
				if payment.Description != "" {
					fmt.Fprintf(w, "Description:\t%s\n", payment.Description)
				}
				fmt.Fprintf(w, "Created:\t%s\n", orDash(payment.CreatedAt))
			})
		},
	})

	cmd.AddCommand(newPaymentCreateCmd(app))

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show payment statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			stats, err := app.API.PaymentStats(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stats))
			for k := range stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			return app.printer().Print(stats, func(w *tabwriter.Writer) {
				for _, k := range keys {
					fmt.Fprintf(w, "%s:\t%s\n", k, stats[k])
				}
			})
		},
	})

	return cmd
}

type paymentResult struct {
	Payment *client.Payment       `json:"payment" yaml:"payment"`
	Result  *client.ProcessResult `json:"result,omitempty" yaml:"result,omitempty"`
}

func newPaymentCreateCmd(app *App) *cobra.Command {
	var (
		req       client.CreatePaymentRequest
		amount    string
		noProcess bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Pay for a booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			if req.BookingID == 0 {
				return fmt.Errorf("booking is required (use --booking)")
			}

			// Prefill from the booking the way the checkout form does
			if amount == "" || req.Description == "" {
				booking, err := app.API.GetBooking(cmd.Context(), req.BookingID)
				if err != nil {
					return err
				}
				if amount == "" {
					req.Amount = booking.AmountPaid
				}
				if req.Description == "" {
					req.Description = "Payment for event: " + booking.Event.Title
				}
			}
			if amount != "" {
				a, err := client.ParseAmount(amount)
				if err != nil {
					return err
				}
				req.Amount = a
			}

			if req.PaymentMethod == "" {
				method, err := selectPaymentMethod(app)
				if err != nil {
					return err
				}
				req.PaymentMethod = method
			}

			prompter := app.prompter()
			name, err := ask(prompter, req.BillingName, "Billing name", "name")
			if err != nil {
				return err
			}
			req.BillingName = name
			email, err := ask(prompter, req.BillingEmail, "Billing email", "email")
			if err != nil {
				return err
			}
			req.BillingEmail = email

			out := paymentResult{}
			if noProcess {
				out.Payment, err = app.API.CreatePayment(cmd.Context(), req)
			} else {
				out.Payment, out.Result, err = app.API.Pay(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			if err := app.printer().Print(out, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "✓ Payment %d created: %s %s\n", out.Payment.ID, out.Payment.Amount, out.Payment.Currency)
				if out.Result == nil {
					return
				}
				if out.Result.Success {
					fmt.Fprintf(w, "✓ %s\n", out.Result.Message)
					if out.Result.TransactionID != "" {
						fmt.Fprintf(w, "  Transaction:\t%s\n", out.Result.TransactionID)
					}
				} else {
					fmt.Fprintf(w, "✗ %s\n", out.Result.Message)
				}
			}); err != nil {
				return err
			}

			if out.Result != nil && !out.Result.Success {
				return fmt.Errorf("payment declined: %s", out.Result.Message)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&req.BookingID, "booking", 0, "Booking ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount (defaults to the booking's amount)")
	cmd.Flags().StringVar(&req.Currency, "currency", client.DefaultCurrency, "Currency code")
	cmd.Flags().StringVar(&req.PaymentMethod, "method", "", "Payment method: card, paypal, bank_transfer, cash (prompts on a terminal if omitted)")
	cmd.Flags().StringVar(&req.BillingName, "name", "", "Billing name")
	cmd.Flags().StringVar(&req.BillingEmail, "email", "", "Billing email")
	cmd.Flags().StringVar(&req.BillingPhone, "phone", "", "Billing phone")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description (defaults to the event title)")
	cmd.Flags().BoolVar(&noProcess, "no-process", false, "Only record the payment, do not process it")

	return cmd
}

func selectPaymentMethod(app *App) (string, error) {
	if !app.prompter().Interactive() {
		return "card", nil
	}
	idx, err := app.prompter().Select("Payment method", client.PaymentMethods)
	if err != nil {
		return "", err
	}
	return client.PaymentMethods[idx], nil
}

func printPayments(p *Printer, payments []client.Payment) error {
	if payments == nil {
		payments = []client.Payment{}
	}
	return p.Print(payments, func(w *tabwriter.Writer) {
		if len(payments) == 0 {
			fmt.Fprintln(w, "No payments found.")
			return
		}
		fmt.Fprintln(w, "ID\tEVENT\tCLIENT\tAMOUNT\tMETHOD\tSTATUS\tTRANSACTION")
		fmt.Fprintln(w, "──\t─────\t──────\t──────\t──────\t──────\t───────────")
		for _, pm := range payments {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s %s\t%s\t%s\t%s\n",
				pm.ID,
				orDash(truncate(pm.Booking.Event.Title, 30)),
				orDash(pm.Client.Name()),
				pm.Amount,
				pm.Currency,
				orDash(pm.PaymentMethod),
				pm.Status,
				orDash(pm.TransactionID),
			)
		}
	})
}
