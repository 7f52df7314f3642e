package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/cli/client"
)

// NewTestimonialsCmd creates the testimonials command group
func NewTestimonialsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "testimonials",
		Aliases: []string{"testimonial", "reviews"},
		Short:   "Read, write and moderate testimonials",
	}

	var featured, all bool
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List approved testimonials",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}

			list := app.API.PublicTestimonials
			switch {
			case featured:
				list = app.API.FeaturedTestimonials
			case all:
				list = app.API.ListTestimonials
			}
			return listTestimonials(cmd.Context(), app, list)
		},
	}
	ls.Flags().BoolVar(&featured, "featured", false, "Only featured testimonials")
	ls.Flags().BoolVar(&all, "all", false, "Every testimonial visible to you, including pending ones")
	ls.MarkFlagsMutuallyExclusive("featured", "all")
	cmd.AddCommand(ls)

	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List testimonials awaiting moderation (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			return listTestimonials(cmd.Context(), app, app.API.PendingTestimonials)
		},
	})

	cmd.AddCommand(newTestimonialCreateCmd(app))
	cmd.AddCommand(newModerateCmd(app, "approve", "Approve a pending testimonial (admin)", (*client.Client).ApproveTestimonial))
	cmd.AddCommand(newModerateCmd(app, "reject", "Reject a pending testimonial (admin)", (*client.Client).RejectTestimonial))

	return cmd
}

func listTestimonials(ctx context.Context, app *App, list func(context.Context) ([]client.Testimonial, error)) error {
	testimonials, err := list(ctx)
	if err != nil {
		return err
	}
	if testimonials == nil {
		testimonials = []client.Testimonial{}
	}

	return app.printer().Print(testimonials, func(w *tabwriter.Writer) {
		if len(testimonials) == 0 {
			fmt.Fprintln(w, "No testimonials found.")
			return
		}
		fmt.Fprintln(w, "ID\tRATING\tTITLE\tEVENT\tSTATUS")
		fmt.Fprintln(w, "──\t──────\t─────\t─────\t──────")
		for _, t := range testimonials {
			status := t.Status
			if t.IsFeatured {
				status += " ★"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				t.ID,
				stars(t.Rating),
				truncate(t.Title, 40),
				orDash(t.EventType),
				status,
			)
		}
	})
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func newTestimonialCreateCmd(app *App) *cobra.Command {
	var req client.CreateTestimonialRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a testimonial",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}

			prompter := app.prompter()
			title, err := ask(prompter, req.Title, "Title", "title")
			if err != nil {
				return err
			}
			req.Title = title
			content, err := ask(prompter, req.Content, "Your experience", "content")
			if err != nil {
				return err
			}
			req.Content = content

			testimonial, err := app.API.CreateTestimonial(cmd.Context(), req)
			if err != nil {
				return err
			}

			return app.printer().Print(testimonial, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "✓ Testimonial %d submitted, it will be visible once approved\n", testimonial.ID)
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Title")
	cmd.Flags().StringVar(&req.Content, "content", "", "Content")
	cmd.Flags().IntVar(&req.Rating, "rating", 5, "Rating from 1 to 5")
	cmd.Flags().StringVar(&req.EventType, "event-type", "", "Kind of event")
	cmd.Flags().StringVar(&req.EventDate, "event-date", "", "Event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Location, "location", "", "Event location")

	return cmd
}

func newModerateCmd(app *App, use, short string, moderate func(*client.Client, context.Context, int64) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			msg, err := moderate(app.API, cmd.Context(), id)
			if err != nil {
				return err
			}
			app.printer().Messagef("✓ %s\n", msg)
			return nil
		},
	}
}
