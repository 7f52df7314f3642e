package client

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// dashboardRecent is how many entries of each list the dashboard keeps
const dashboardRecent = 5

// Dashboard is the admin overview
type Dashboard struct {
	TotalEvents         int           `json:"total_events" yaml:"total_events"`
	TotalTestimonials   int           `json:"total_testimonials" yaml:"total_testimonials"`
	TotalPayments       int           `json:"total_payments" yaml:"total_payments"`
	TotalRevenue        Amount        `json:"total_revenue" yaml:"total_revenue"`
	RecentEvents        []Event       `json:"recent_events" yaml:"recent_events"`
	PendingTestimonials []Testimonial `json:"pending_testimonials" yaml:"pending_testimonials"`
	RecentPayments      []Payment     `json:"recent_payments" yaml:"recent_payments"`
}

// Dashboard fetches events, pending testimonials and payments concurrently.
// If any fetch fails the others are cancelled and the first error returned.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		events       []Event
		testimonials []Testimonial
		payments     []Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = c.ListEvents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		testimonials, err = c.PendingTestimonials(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = c.ListPayments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	return &Dashboard{
		TotalEvents:         len(events),
		TotalTestimonials:   len(testimonials),
		TotalPayments:       len(payments),
		TotalRevenue:        Revenue(payments),
		RecentEvents:        head(events, dashboardRecent),
		PendingTestimonials: head(testimonials, dashboardRecent),
		RecentPayments:      head(payments, dashboardRecent),
	}, nil
}

// UserDashboard is the overview a signed-in user sees
type UserDashboard struct {
	TotalEvents    int     `json:"total_events" yaml:"total_events"`
	TotalBookings  int     `json:"total_bookings" yaml:"total_bookings"`
	UpcomingEvents int     `json:"upcoming_events" yaml:"upcoming_events"`
	RecentEvents   []Event `json:"recent_events" yaml:"recent_events"`
}

// UserDashboard fetches events and the caller's bookings concurrently.
// Events dated after now count as upcoming; undated events do not.
func (c *Client) UserDashboard(ctx context.Context, now time.Time) (*UserDashboard, error) {
	var (
		events   []Event
		bookings []Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = c.ListEvents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = c.ListBookings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	upcoming := 0
	for i := range events {
		if t, ok := events[i].Time(); ok && t.After(now) {
			upcoming++
		}
	}

	return &UserDashboard{
		TotalEvents:    len(events),
		TotalBookings:  len(bookings),
		UpcomingEvents: upcoming,
		RecentEvents:   head(events, dashboardRecent),
	}, nil
}

// Revenue sums the amount of completed payments, rounded to cents
func Revenue(payments []Payment) Amount {
	var cents int64
	for _, p := range payments {
		if p.Status == PaymentCompleted {
			cents += toCents(p.Amount)
		}
	}
	return Amount(float64(cents) / 100)
}

func toCents(a Amount) int64 {
	if a < 0 {
		return int64(float64(a)*100 - 0.5)
	}
	return int64(float64(a)*100 + 0.5)
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
