package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evently-dev/evently/internal/cli/apitest"
	"github.com/evently-dev/evently/internal/cli/auth"
	"github.com/evently-dev/evently/internal/cli/gateway"
)

// newTestClient returns a client talking to a fresh backend, authenticated
// as an account with role (anonymous when role is empty)
func newTestClient(t *testing.T, role string) (*Client, *apitest.Backend, *apitest.Account) {
	t.Helper()

	backend := apitest.New(t)
	creds := auth.NewMemoryStore()

	var acc *apitest.Account
	if role != "" {
		acc = backend.AddAccount(apitest.Account{
			Email:    role + "@example.com",
			Username: role,
			Password: "password-1",
			Role:     role,
			Active:   true,
		})
		token, err := backend.IssueToken(acc, time.Hour)
		require.NoError(t, err)
		require.NoError(t, creds.Save(auth.Credentials{AccessToken: token, RefreshToken: "refresh"}))
	}

	gw, err := gateway.New(backend.URL(), gateway.WithInterceptors(gateway.BearerToken(creds)))
	require.NoError(t, err)

	return New(gw), backend, acc
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected Amount
		wantErr  bool
	}{
		{`"150.00"`, 150, false},
		{`"12.5"`, 12.5, false},
		{`99`, 99, false},
		{`0.1`, 0.1, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.input), &a)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, float64(tt.expected), float64(a), 1e-9)
		})
	}
}

func TestAmount_MarshalsAsTwoDecimalString(t *testing.T) {
	data, err := json.Marshal(struct {
		A Amount `json:"a"`
	}{A: 12.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"12.50"}`, string(data))
}

func TestValidation_NeverHitsNetwork(t *testing.T) {
	c, backend, _ := newTestClient(t, "client")
	ctx := context.Background()

	_, err := c.CreateEvent(ctx, CreateEventRequest{})
	require.ErrorIs(t, err, gateway.ErrValidation)
	assert.Contains(t, err.Error(), "title is required")

	_, err = c.CreatePayment(ctx, CreatePaymentRequest{
		BookingID:     1,
		Amount:        0,
		PaymentMethod: "bitcoin",
		BillingName:   "A",
		BillingEmail:  "not-an-email",
	})
	require.ErrorIs(t, err, gateway.ErrValidation)
	assert.Contains(t, err.Error(), "amount must be greater than zero")
	assert.Contains(t, err.Error(), "payment_method must be one of")
	assert.Contains(t, err.Error(), "billing_email must be a valid email address")

	_, err = c.CreateTestimonial(ctx, CreateTestimonialRequest{Title: "t", Content: "c", Rating: 6})
	require.ErrorIs(t, err, gateway.ErrValidation)

	_, err = c.UpdateProfile(ctx, ProfileUpdate{})
	require.ErrorIs(t, err, gateway.ErrValidation)

	assert.Empty(t, backend.Requests())
}

func TestEvents(t *testing.T) {
	c, backend, _ := newTestClient(t, "agency")
	ctx := context.Background()

	created, err := c.CreateEvent(ctx, CreateEventRequest{
		Title:    "Summer Gala",
		Date:     "2026-07-01",
		Location: "Tunis",
		Image:    &Upload{Name: "gala.png", Content: strings.NewReader("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Summer Gala", created.Title)
	assert.True(t, strings.HasSuffix(string(created.Images), "/media/events/gala.png"), created.Images)

	reqs := backend.Requests()
	assert.True(t, strings.HasPrefix(reqs[len(reqs)-1].ContentType, "multipart/form-data"))

	events, err := c.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got, err := c.GetEvent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tunis", got.Location)

	_, err = c.GetEvent(ctx, 999)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestEvents_ReadableAnonymously(t *testing.T) {
	c, backend, _ := newTestClient(t, "")
	backend.Seed("events", map[string]any{"title": "Open Day", "package": map[string]any{"id": 3, "name": "Gold"}})
	backend.Seed("packages", map[string]any{"name": "Gold", "price": "1500.00", "features": []string{"DJ"}, "is_active": true})
	backend.Seed("announcements", map[string]any{"title": "Welcome", "content": "Hello"})

	events, err := c.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Gold", events[0].PackageRef())

	packages, err := c.ListPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, packages, 1)
	assert.Equal(t, "1500.00", packages[0].Price.String())

	announcements, err := c.ListAnnouncements(context.Background())
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	assert.Equal(t, "Welcome", announcements[0].Title)
}

func TestBookings(t *testing.T) {
	c, backend, acc := newTestClient(t, "client")
	ctx := context.Background()
	event := backend.Seed("events", map[string]any{"title": "Wedding"})

	booking, err := c.CreateBooking(ctx, CreateBookingRequest{
		EventID:    event["id"].(int64),
		ClientID:   acc.ID,
		AmountPaid: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, "Wedding", booking.Event.Title)
	assert.Equal(t, acc.ID, booking.Client.ID)
	assert.Equal(t, "client", booking.Client.Username)
	assert.Equal(t, "pending", booking.Status)
	assert.Equal(t, "250.00", booking.AmountPaid.String())

	got, err := c.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	list, err := c.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = c.CreateBooking(ctx, CreateBookingRequest{EventID: 404})
	require.ErrorIs(t, err, gateway.ErrValidation)
	httpErr, ok := gateway.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Invalid pk - object does not exist."}, httpErr.Fields["event_id"])
}

func TestBookings_RequireClientRole(t *testing.T) {
	c, backend, _ := newTestClient(t, "agency")
	event := backend.Seed("events", map[string]any{"title": "Wedding"})

	_, err := c.CreateBooking(context.Background(), CreateBookingRequest{EventID: event["id"].(int64)})
	require.ErrorIs(t, err, gateway.ErrUnauthorized)

	httpErr, _ := gateway.AsHTTPError(err)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
}

func TestBookings_Anonymous(t *testing.T) {
	c, _, _ := newTestClient(t, "")

	_, err := c.ListBookings(context.Background())
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	httpErr, _ := gateway.AsHTTPError(err)
	assert.Equal(t, "Authentication credentials were not provided.", httpErr.Message)
}

func TestPayments_PayThenStats(t *testing.T) {
	c, backend, acc := newTestClient(t, "client")
	ctx := context.Background()
	event := backend.Seed("events", map[string]any{"title": "Wedding"})
	booking, err := c.CreateBooking(ctx, CreateBookingRequest{EventID: event["id"].(int64), ClientID: acc.ID, AmountPaid: 300})
	require.NoError(t, err)

	payment, result, err := c.Pay(ctx, CreatePaymentRequest{
		BookingID:     booking.ID,
		Amount:        300,
		PaymentMethod: "card",
		BillingName:   "Client One",
		BillingEmail:  "client@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, payment.Currency)
	assert.Equal(t, booking.ID, payment.Booking.ID)
	assert.Equal(t, "Wedding", payment.Booking.Event.Title)
	assert.Equal(t, "client@example.com", payment.Client.Email)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.TransactionID)

	got, err := c.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, got.Status)
	assert.Equal(t, result.TransactionID, got.TransactionID)

	// A payment is processed once
	_, err = c.ProcessPayment(ctx, payment.ID)
	require.ErrorIs(t, err, gateway.ErrValidation)
	httpErr, _ := gateway.AsHTTPError(err)
	assert.Equal(t, "Payment already processed", httpErr.Message)

	stats, err := c.PaymentStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), stats["completed_payments"])
	assert.Equal(t, json.Number("300"), stats["total_amount"])

	list, err := c.ListPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPayments_DeclinedIsNotAnError(t *testing.T) {
	c, backend, _ := newTestClient(t, "client")
	payment := backend.Seed("payments", map[string]any{"amount": "0.00", "status": "pending"})

	result, err := c.ProcessPayment(context.Background(), payment["id"].(int64))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestTestimonials_Moderation(t *testing.T) {
	c, backend, _ := newTestClient(t, "client")
	ctx := context.Background()

	created, err := c.CreateTestimonial(ctx, CreateTestimonialRequest{
		Title:   "Great party",
		Content: "Everything went perfectly",
		Rating:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Status)

	_, err = c.PendingTestimonials(ctx)
	require.ErrorIs(t, err, gateway.ErrUnauthorized)

	public, err := c.PublicTestimonials(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)

	// Same backend, admin credentials
	admin := backend.AddAccount(apitest.Account{Email: "admin@example.com", Password: "password-1", Role: "admin", Active: true})
	token, err := backend.IssueToken(admin, time.Hour)
	require.NoError(t, err)
	gw, err := gateway.New(backend.URL(), gateway.WithInterceptors(gateway.BearerToken(gateway.TokenFunc(func() (string, error) {
		return token, nil
	}))))
	require.NoError(t, err)
	adminClient := New(gw)

	pending, err := adminClient.PendingTestimonials(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	msg, err := adminClient.ApproveTestimonial(ctx, pending[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Testimonial approved", msg)

	public, err = c.PublicTestimonials(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)

	featured, err := c.FeaturedTestimonials(ctx)
	require.NoError(t, err)
	assert.Empty(t, featured)

	_, err = adminClient.RejectTestimonial(ctx, 999)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestProfile(t *testing.T) {
	c, _, acc := newTestClient(t, "client")
	ctx := context.Background()

	user, err := c.UpdateProfile(ctx, ProfileUpdate{Username: "renamed", City: "Sfax"})
	require.NoError(t, err)
	assert.Equal(t, acc.ID, user.ID)
	assert.Equal(t, "renamed", user.Username)
	assert.Contains(t, string(user.Raw), `"city":"Sfax"`)

	user, err = c.UploadProfileImage(ctx, Upload{Name: "me.jpg", Content: strings.NewReader("jpg")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(user.ProfileImage, "/media/profiles/me.jpg"), user.ProfileImage)
}

func TestDashboard(t *testing.T) {
	c, backend, _ := newTestClient(t, "admin")

	for i := 0; i < 7; i++ {
		backend.Seed("events", map[string]any{"title": "Event"})
	}
	backend.Seed("testimonials", map[string]any{"title": "Waiting", "status": "pending"})
	backend.Seed("testimonials", map[string]any{"title": "Done", "status": "approved"})
	backend.Seed("payments", map[string]any{"amount": "100.10", "status": "completed"})
	backend.Seed("payments", map[string]any{"amount": 50.2, "status": "completed"})
	backend.Seed("payments", map[string]any{"amount": "999.00", "status": "pending"})
	backend.Seed("payments", map[string]any{"amount": "10.00", "status": "failed"})

	dash, err := c.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, dash.TotalEvents)
	assert.Len(t, dash.RecentEvents, 5)
	assert.Equal(t, 1, dash.TotalTestimonials)
	assert.Equal(t, 4, dash.TotalPayments)
	assert.Equal(t, "150.30", dash.TotalRevenue.String())
}

func TestDashboard_FailsTogether(t *testing.T) {
	c, _, _ := newTestClient(t, "client")

	_, err := c.Dashboard(context.Background())
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
}

func TestRevenue(t *testing.T) {
	payments := []Payment{
		{Amount: 0.1, Status: PaymentCompleted},
		{Amount: 0.2, Status: PaymentCompleted},
		{Amount: 5, Status: PaymentCancelled},
	}
	assert.Equal(t, "0.30", Revenue(payments).String())
	assert.Equal(t, "0.00", Revenue(nil).String())
}
