package client

import (
	"context"
	"fmt"
	"net/http"
)

const (
	bookingsPath = "bookings/bookings/"
	bookingPath  = "bookings/bookings/%d/"
)

// CreateBookingRequest books an event for a client
type CreateBookingRequest struct {
	EventID    int64  `json:"event_id" validate:"required,gt=0"`
	ClientID   int64  `json:"client_id,omitempty" validate:"gte=0"`
	AmountPaid Amount `json:"amount_paid" validate:"gte=0"`
}

// ListBookings returns the bookings visible to the current user
func (c *Client) ListBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.gw.Do(ctx, http.MethodGet, bookingsPath, nil, &bookings); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetBooking returns one booking
func (c *Client) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	var booking Booking
	if err := c.gw.Do(ctx, http.MethodGet, resourcePath(bookingPath, id), nil, &booking); err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	return &booking, nil
}

// CreateBooking books an event
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	if err := c.check(req); err != nil {
		return nil, err
	}

	var booking Booking
	if err := c.gw.Do(ctx, http.MethodPost, bookingsPath, req, &booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return &booking, nil
}
