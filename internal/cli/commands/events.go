package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evently-dev/evently/internal/cli/client"
)

// NewEventsCmd creates the events command group
func NewEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Browse and create events",
	}

	var search, eventType string
	lsCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List events",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			events, err := app.API.ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			return printEvents(app.printer(), client.FilterEvents(events, search, eventType))
		},
	}
	lsCmd.Flags().StringVar(&search, "search", "", "Only events whose title, description or location contains this text")
	lsCmd.Flags().StringVar(&eventType, "type", "", "Only events of this type (classic, modern, vip)")
	cmd.AddCommand(lsCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			event, err := app.API.GetEvent(cmd.Context(), id)
			if err != nil {
				return err
			}
			return app.printer().Print(event, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID:\t%d\n", event.ID)
				fmt.Fprintf(w, "Title:\t%s\n", event.Title)
				fmt.Fprintf(w, "Type:\t%s\n", orDash(event.EventType))
				fmt.Fprintf(w, "Date:\t%s\n", orDash(event.Date))
				fmt.Fprintf(w, "Location:\t%s\n", orDash(event.Location))
				fmt.Fprintf(w, "Package:\t%s\n", orDash(event.PackageRef()))
				if event.Images != "" {
					fmt.Fprintf(w, "Image:\t%s\n", event.Images)
				}
				if event.Description != "" {
					fmt.Fprintf(w, "\n%s\n", event.Description)
				}
			})
		},
	})

	cmd.AddCommand(newEventCreateCmd(app))

	return cmd
}

func newEventCreateCmd(app *App) *cobra.Command {
	var (
		req       client.CreateEventRequest
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event (agency/admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}

			title, err := ask(app.prompter(), req.Title, "Title", "title")
			if err != nil {
				return err
			}
			req.Title = title

			if req.PackageID == "" && app.prompter().Interactive() {
				id, err := selectPackage(cmd, app)
				if err != nil {
					return err
				}
				req.PackageID = id
			}

			if imagePath != "" {
				f, err := os.Open(imagePath)
				if err != nil {
					return fmt.Errorf("failed to open image: %w", err)
				}
				defer f.Close()
				req.Image = &client.Upload{Name: filepath.Base(imagePath), Content: f}
			}

			event, err := app.API.CreateEvent(cmd.Context(), req)
			if err != nil {
				return err
			}

			return app.printer().Print(event, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "✓ Event '%s' created (id %d)\n", event.Title, event.ID)
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Event title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&req.Date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Location, "location", "", "Location")
	cmd.Flags().StringVar(&req.EventType, "type", "", "Event type (wedding, birthday, corporate, ...)")
	cmd.Flags().StringVar(&req.PackageID, "package", "", "Package ID (prompts on a terminal if omitted)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a cover image")

	return cmd
}

// selectPackage lets the user pick a package. Choosing none is allowed.
func selectPackage(cmd *cobra.Command, app *App) (string, error) {
	packages, err := app.API.ListPackages(cmd.Context())
	if err != nil {
		return "", err
	}
	if len(packages) == 0 {
		return "", nil
	}

	labels := make([]string, 0, len(packages)+1)
	labels = append(labels, "No package")
	for _, p := range packages {
		labels = append(labels, fmt.Sprintf("%s (%s)", p.Name, p.Price))
	}

	idx, err := app.prompter().Select("Select a package", labels)
	if err != nil {
		return "", err
	}
	if idx == 0 {
		return "", nil
	}
	return strconv.FormatInt(packages[idx-1].ID, 10), nil
}

func printEvents(p *Printer, events []client.Event) error {
	if events == nil {
		events = []client.Event{}
	}
	return p.Print(events, func(w *tabwriter.Writer) {
		if len(events) == 0 {
			fmt.Fprintln(w, "No events found.")
			return
		}
		fmt.Fprintln(w, "ID\tTITLE\tTYPE\tDATE\tLOCATION")
		fmt.Fprintln(w, "──\t─────\t────\t────\t────────")
		for _, e := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				e.ID,
				truncate(e.Title, 40),
				orDash(e.EventType),
				orDash(e.Date),
				orDash(e.Location),
			)
		}
	})
}

// NewPackagesCmd creates the packages command group
func NewPackagesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "packages",
		Aliases: []string{"package"},
		Short:   "Browse event packages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			packages, err := app.API.ListPackages(cmd.Context())
			if err != nil {
				return err
			}
			if packages == nil {
				packages = []client.Package{}
			}
			return app.printer().Print(packages, func(w *tabwriter.Writer) {
				if len(packages) == 0 {
					fmt.Fprintln(w, "No packages found.")
					return
				}
				fmt.Fprintln(w, "ID\tNAME\tPRICE\tACTIVE\tFEATURES")
				fmt.Fprintln(w, "──\t────\t─────\t──────\t────────")
				for _, p := range packages {
					fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n",
						p.ID,
						p.Name,
						p.Price,
						p.IsActive,
						truncate(strings.Join(p.Features, ", "), 50),
					)
				}
			})
		},
	})

	return cmd
}

// NewAnnouncementsCmd creates the announcements command group
func NewAnnouncementsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "announcements",
		Aliases: []string{"announcement", "news"},
		Short:   "Read platform announcements",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List announcements",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ready(); err != nil {
				return err
			}
			announcements, err := app.API.ListAnnouncements(cmd.Context())
			if err != nil {
				return err
			}
			if announcements == nil {
				announcements = []client.Announcement{}
			}
			return app.printer().Print(announcements, func(w *tabwriter.Writer) {
				if len(announcements) == 0 {
					fmt.Fprintln(w, "No announcements.")
					return
				}
				for _, a := range announcements {
					fmt.Fprintf(w, "%s\t%s\n", a.Title, orDash(a.CreatedAt))
					if a.Content != "" {
						fmt.Fprintf(w, "  %s\n", a.Content)
					}
				}
			})
		},
	})

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id " + strconv.Quote(s) + ": expected a positive number")
	}
	return id, nil
}
