package client

import (
	"context"
	"fmt"
	"net/http"
)

const (
	paymentsPath       = "payments/payments/"
	paymentPath        = "payments/payments/%d/"
	processPaymentPath = "payments/payments/%d/process_payment/"
	paymentStatsPath   = "payments/payments/payment_stats/"
)

// CreatePaymentRequest is a payment for a booking
type CreatePaymentRequest struct {
	BookingID     int64  `json:"booking_id" validate:"required,gt=0"`
	Amount        Amount `json:"amount" validate:"amount"`
	Currency      string `json:"currency" validate:"required,len=3,uppercase"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card paypal bank_transfer cash"`
	BillingName   string `json:"billing_name" validate:"required"`
	BillingEmail  string `json:"billing_email" validate:"required,email"`
	BillingPhone  string `json:"billing_phone,omitempty"`
	Description   string `json:"description,omitempty"`
}

// ListPayments returns the payments visible to the current user
func (c *Client) ListPayments(ctx context.Context) ([]Payment, error) {
	var payments []Payment
	if err := c.gw.Do(ctx, http.MethodGet, paymentsPath, nil, &payments); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// GetPayment returns one payment
func (c *Client) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	var payment Payment
	if err := c.gw.Do(ctx, http.MethodGet, resourcePath(paymentPath, id), nil, &payment); err != nil {
		return nil, fmt.Errorf("failed to get payment %d: %w", id, err)
	}
	return &payment, nil
}

// CreatePayment records a pending payment. An empty currency defaults to EUR.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	if req.Currency == "" {
		req.Currency = DefaultCurrency
	}
	if err := c.check(req); err != nil {
		return nil, err
	}

	var payment Payment
	if err := c.gw.Do(ctx, http.MethodPost, paymentsPath, req, &payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &payment, nil
}

// ProcessPayment asks the backend to settle a payment. A declined payment is
// not an error; check ProcessResult.Success.
func (c *Client) ProcessPayment(ctx context.Context, id int64) (*ProcessResult, error) {
	var result ProcessResult
	if err := c.gw.Do(ctx, http.MethodPost, resourcePath(processPaymentPath, id), nil, &result); err != nil {
		return nil, fmt.Errorf("failed to process payment %d: %w", id, err)
	}
	return &result, nil
}

// Pay creates a payment and immediately processes it
func (c *Client) Pay(ctx context.Context, req CreatePaymentRequest) (*Payment, *ProcessResult, error) {
	payment, err := c.CreatePayment(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	result, err := c.ProcessPayment(ctx, payment.ID)
	if err != nil {
		return payment, nil, err
	}
	return payment, result, nil
}

// PaymentStats returns the backend's payment counters
func (c *Client) PaymentStats(ctx context.Context) (PaymentStats, error) {
	var stats PaymentStats
	if err := c.gw.Do(ctx, http.MethodGet, paymentStatsPath, nil, &stats); err != nil {
		return nil, fmt.Errorf("failed to get payment stats: %w", err)
	}
	return stats, nil
}
