package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/evently-dev/evently/internal/cli/client"
	"github.com/evently-dev/evently/internal/cli/gateway"
)

func TestEventsCommand_ListTableAndJSON(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(NewEventsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found.")

	e.backend.Seed("events", map[string]any{"title": "Summer Gala", "event_type": "wedding", "location": "Tunis"})

	out, err = e.run(NewEventsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Summer Gala")
	assert.Contains(t, out, "wedding")

	e.app.Output = OutputJSON
	out, err = e.run(NewEventsCmd(e.app), "ls")
	require.NoError(t, err)

	var events []client.Event
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Tunis", events[0].Location)
}

func TestEventsCommand_Show(t *testing.T) {
	e := newTestEnv(t)
	event := e.backend.Seed("events", map[string]any{"title": "Summer Gala", "description": "Dress code: white"})

	out, err := e.run(NewEventsCmd(e.app), "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Summer Gala")
	assert.Contains(t, out, "Dress code: white")
	assert.Equal(t, int64(1), event["id"])

	_, err = e.run(NewEventsCmd(e.app), "show", "42")
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	_, err = e.run(NewEventsCmd(e.app), "show", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestEventsCommand_CreateWithImageAndPackagePrompt(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "agency")
	e.backend.Seed("packages", map[string]any{"name": "Gold", "price": "1500.00"})
	e.prompter.interactive = true
	e.prompter.selections = map[string]int{"Select a package": 1}

	image := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(image, []byte("png"), 0644))

	out, err := e.run(NewEventsCmd(e.app), "create", "--title", "Launch", "--date", "2026-09-01", "--image", image)
	require.NoError(t, err)
	assert.Contains(t, out, "Event 'Launch' created")

	events := e.backend.Records("events")
	require.Len(t, events, 1)
	assert.Equal(t, "1", events[0]["package"])
	assert.Contains(t, events[0]["images"], "/media/events/cover.png")
}

func TestEventsCommand_CreateValidatesLocally(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "agency")

	_, err := e.run(NewEventsCmd(e.app), "create", "--title", "Launch", "--date", "next friday")
	require.ErrorIs(t, err, gateway.ErrValidation)
	assert.Empty(t, e.backend.Requests())
}

func TestPackagesAndAnnouncements(t *testing.T) {
	e := newTestEnv(t)
	e.backend.Seed("packages", map[string]any{"name": "Gold", "price": 1500, "features": []string{"DJ", "Catering"}, "is_active": true})
	e.backend.Seed("announcements", map[string]any{"title": "New venue", "content": "Now in Sousse"})

	out, err := e.run(NewPackagesCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Gold")
	assert.Contains(t, out, "1500.00")
	assert.Contains(t, out, "DJ, Catering")

	out, err = e.run(NewAnnouncementsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "New venue")
	assert.Contains(t, out, "Now in Sousse")
}

func TestBookingsCommand_CreateAndList(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("events", map[string]any{"title": "Wedding"})

	out, err := e.run(NewBookingsCmd(e.app), "create", "--event", "1", "--amount", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked 'Wedding'")
	assert.Contains(t, out, "evently payments create --booking 1")

	out, err = e.run(NewBookingsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Wedding")
	assert.Contains(t, out, "200.00")
	assert.Contains(t, out, "pending")

	out, err = e.run(NewBookingsCmd(e.app), "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Amount paid:")
}

func TestBookingsCommand_EventSelection(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("events", map[string]any{"title": "First"})
	e.backend.Seed("events", map[string]any{"title": "Second"})

	_, err := e.run(NewBookingsCmd(e.app), "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event is required")

	e.prompter.interactive = true
	e.prompter.selections = map[string]int{"Select an event": 1}

	out, err := e.run(NewBookingsCmd(e.app), "create")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked 'Second'")
}

func TestBookingsCommand_ForbiddenForAgency(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "agency")
	e.backend.Seed("events", map[string]any{"title": "Wedding"})

	_, err := e.run(NewBookingsCmd(e.app), "create", "--event", "1")
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Only clients can create bookings.")
}

func TestPaymentsCommand_CreatePrefillsFromBooking(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("events", map[string]any{"title": "Wedding"})
	_, err := e.run(NewBookingsCmd(e.app), "create", "--event", "1", "--amount", "350.5")
	require.NoError(t, err)

	out, err := e.run(NewPaymentsCmd(e.app), "create", "--booking", "1", "--name", "Client", "--email", "client@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Payment 1 created: 350.50 EUR")
	assert.Contains(t, out, "Payment processed successfully")

	payments := e.backend.Records("payments")
	require.Len(t, payments, 1)
	assert.Equal(t, "completed", payments[0]["status"])
	assert.Equal(t, "card", payments[0]["payment_method"])
	assert.Equal(t, "Payment for event: Wedding", payments[0]["description"])

	out, err = e.run(NewPaymentsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	out, err = e.run(NewPaymentsCmd(e.app), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "completed_payments:")
	assert.Contains(t, out, "total_amount:")
}

func TestPaymentsCommand_MethodSelectionAndNoProcess(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("bookings", map[string]any{"event": map[string]any{"title": "Gala"}, "amount_paid": "80.00", "status": "pending"})
	e.prompter.interactive = true
	e.prompter.selections = map[string]int{"Payment method": 1}
	e.prompter.inputs = map[string]string{"Billing name": "Client", "Billing email": "client@example.com"}

	_, err := e.run(NewPaymentsCmd(e.app), "create", "--booking", "1", "--no-process")
	require.NoError(t, err)

	payments := e.backend.Records("payments")
	require.Len(t, payments, 1)
	assert.Equal(t, "paypal", payments[0]["payment_method"])
	assert.Equal(t, "pending", payments[0]["status"])
}

func TestPaymentsCommand_ZeroAmountRejected(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("bookings", map[string]any{"event": map[string]any{"title": "Gala"}, "amount_paid": "0.00"})

	// Zero amounts never leave the CLI
	_, err := e.run(NewPaymentsCmd(e.app), "create", "--booking", "1", "--name", "C", "--email", "c@example.com")
	require.ErrorIs(t, err, gateway.ErrValidation)
}

func TestPaymentsCommand_Show(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("payments", map[string]any{
		"booking":  map[string]any{"id": 3, "status": "confirmed", "event": map[string]any{"id": 2, "title": "Gala", "date": "2026-07-01"}},
		"client":   map[string]any{"id": 9, "username": "amira", "email": "amira@example.com"},
		"amount":   "12.00",
		"currency": "EUR",
		"status":   "failed",
	})

	out, err := e.run(NewPaymentsCmd(e.app), "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "3 (confirmed)")
	assert.Contains(t, out, "Gala (2026-07-01)")
	assert.Contains(t, out, "amira")

	e.app.Output = OutputYAML
	out, err = e.run(NewPaymentsCmd(e.app), "show", "1")
	require.NoError(t, err)

	var payment map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &payment))
	assert.Equal(t, "12.00", payment["amount"])
	assert.Equal(t, "failed", payment["status"])
	assert.Equal(t, "amira", payment["client"].(map[string]any)["username"])
}

func TestEventsCommand_SearchAndTypeFilters(t *testing.T) {
	e := newTestEnv(t)
	e.backend.Seed("events", map[string]any{"title": "Summer Gala", "event_type": "vip", "location": "Tunis"})
	e.backend.Seed("events", map[string]any{"title": "Garden Wedding", "event_type": "classic", "description": "Outdoor"})
	e.backend.Seed("events", map[string]any{"title": "Product Launch", "event_type": "modern", "location": "Sousse"})

	out, err := e.run(NewEventsCmd(e.app), "ls", "--type", "classic")
	require.NoError(t, err)
	assert.Contains(t, out, "Garden Wedding")
	assert.NotContains(t, out, "Summer Gala")

	out, err = e.run(NewEventsCmd(e.app), "ls", "--search", "SOUSSE")
	require.NoError(t, err)
	assert.Contains(t, out, "Product Launch")
	assert.NotContains(t, out, "Garden Wedding")

	out, err = e.run(NewEventsCmd(e.app), "ls", "--search", "gala", "--type", "modern")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found.")

	e.app.Output = OutputJSON
	out, err = e.run(NewEventsCmd(e.app), "ls", "--type", "all")
	require.NoError(t, err)
	var events []client.Event
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	assert.Len(t, events, 3)
}

func TestBookingsCommand_ListShowsClientAndFilters(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("events", map[string]any{"title": "Wedding"})
	e.backend.Seed("events", map[string]any{"title": "Gala"})
	_, err := e.run(NewBookingsCmd(e.app), "create", "--event", "1")
	require.NoError(t, err)
	_, err = e.run(NewBookingsCmd(e.app), "create", "--event", "2")
	require.NoError(t, err)
	e.backend.Seed("bookings", map[string]any{
		"event":  map[string]any{"id": 1, "title": "Wedding"},
		"client": map[string]any{"id": 42, "username": "karim"},
		"status": "confirmed",
	})

	out, err := e.run(NewBookingsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "CLIENT")
	assert.Contains(t, out, "karim")

	out, err = e.run(NewBookingsCmd(e.app), "ls", "--status", "confirmed")
	require.NoError(t, err)
	assert.Contains(t, out, "karim")
	assert.NotContains(t, out, "Gala")

	out, err = e.run(NewBookingsCmd(e.app), "ls", "--search", "gala")
	require.NoError(t, err)
	assert.Contains(t, out, "Gala")
	assert.NotContains(t, out, "karim")
}

func TestPaymentsCommand_ListFilters(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("events", map[string]any{"title": "Wedding"})
	_, err := e.run(NewBookingsCmd(e.app), "create", "--event", "1", "--amount", "20")
	require.NoError(t, err)
	_, err = e.run(NewPaymentsCmd(e.app), "create", "--booking", "1", "--name", "C", "--email", "c@example.com")
	require.NoError(t, err)
	_, err = e.run(NewPaymentsCmd(e.app), "create", "--booking", "1", "--name", "C", "--email", "c@example.com", "--no-process")
	require.NoError(t, err)

	out, err := e.run(NewPaymentsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Wedding")
	assert.Contains(t, out, "client")

	out, err = e.run(NewPaymentsCmd(e.app), "ls", "--search", "TXN-000001")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.NotContains(t, out, "pending")

	e.app.Output = OutputJSON
	out, err = e.run(NewPaymentsCmd(e.app), "ls", "--status", "pending")
	require.NoError(t, err)
	var payments []client.Payment
	require.NoError(t, json.Unmarshal([]byte(out), &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, int64(2), payments[0].ID)
	assert.Equal(t, "Wedding", payments[0].Booking.Event.Title)
}

func TestTestimonialsCommand_Flow(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")

	out, err := e.run(NewTestimonialsCmd(e.app), "create", "--title", "Loved it", "--content", "Best party ever", "--rating", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "submitted")

	_, err = e.run(NewTestimonialsCmd(e.app), "create", "--title", "Bad", "--content", "x", "--rating", "9")
	require.ErrorIs(t, err, gateway.ErrValidation)

	_, err = e.run(NewTestimonialsCmd(e.app), "pending")
	require.ErrorIs(t, err, gateway.ErrUnauthorized)

	out, err = e.run(NewTestimonialsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No testimonials found.")

	e.loginAs(t, "admin")

	out, err = e.run(NewTestimonialsCmd(e.app), "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Loved it")
	assert.Contains(t, out, "★★★★☆")

	out, err = e.run(NewTestimonialsCmd(e.app), "approve", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Testimonial approved")

	out, err = e.run(NewTestimonialsCmd(e.app), "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Loved it")

	out, err = e.run(NewTestimonialsCmd(e.app), "ls", "--featured")
	require.NoError(t, err)
	assert.Contains(t, out, "No testimonials found.")
}

func TestProfileCommand(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")

	out, err := e.run(NewProfileCmd(e.app), "update", "--first-name", "Amel", "--last-name", "Ben")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile updated")
	assert.Contains(t, out, "Amel Ben")

	_, err = e.run(NewProfileCmd(e.app), "update")
	require.ErrorIs(t, err, gateway.ErrValidation)

	image := filepath.Join(t.TempDir(), "me.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpg"), 0644))

	out, err = e.run(NewProfileCmd(e.app), "upload-image", image)
	require.NoError(t, err)
	assert.Contains(t, out, "/media/profiles/me.jpg")
}

func TestDashCommand(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "admin")
	e.backend.Seed("events", map[string]any{"title": "Gala"})
	e.backend.Seed("testimonials", map[string]any{"title": "Waiting", "status": "pending", "rating": 5})
	e.backend.Seed("payments", map[string]any{"amount": "40.25", "status": "completed", "currency": "EUR"})
	e.backend.Seed("payments", map[string]any{"amount": "10.00", "status": "pending", "currency": "EUR"})

	out, err := e.run(NewDashCmd(e.app))
	require.NoError(t, err)
	assert.Contains(t, out, "Revenue:")
	assert.Contains(t, out, "40.25")
	assert.Contains(t, out, "Waiting")

	e.app.Output = OutputJSON
	out, err = e.run(NewDashCmd(e.app))
	require.NoError(t, err)

	var dash client.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Equal(t, 2, dash.TotalPayments)
	assert.Equal(t, "40.25", dash.TotalRevenue.String())
}

func TestDashCommand_Mine(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")
	e.backend.Seed("events", map[string]any{"title": "Gala", "date": "2999-01-01"})
	e.backend.Seed("events", map[string]any{"title": "Reunion", "date": "2001-01-01"})
	_, err := e.run(NewBookingsCmd(e.app), "create", "--event", "1")
	require.NoError(t, err)

	out, err := e.run(NewDashCmd(e.app), "--mine")
	require.NoError(t, err)
	assert.Contains(t, out, "Upcoming events:")
	assert.Contains(t, out, "Gala")

	e.app.Output = OutputJSON
	out, err = e.run(NewDashCmd(e.app), "--mine")
	require.NoError(t, err)

	var dash client.UserDashboard
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Equal(t, 2, dash.TotalEvents)
	assert.Equal(t, 1, dash.TotalBookings)
	assert.Equal(t, 1, dash.UpcomingEvents)
}

func TestDashCommand_ClientForbidden(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "client")

	_, err := e.run(NewDashCmd(e.app))
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
}

func TestCommandsRequireInitializedApp(t *testing.T) {
	app := &App{}
	cmd := NewEventsCmd(app)
	cmd.SetArgs([]string{"ls"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}
