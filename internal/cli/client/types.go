package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Amount is a money value. The backend sends decimals as strings ("150.00")
// and sometimes as plain numbers; both decode. It encodes as a two-decimal
// string.
type Amount float64

// ParseAmount reads a decimal string such as "12.5"
func ParseAmount(s string) (Amount, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return Amount(f), nil
}

func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', 2, 64)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a Amount) MarshalYAML() (any, error) {
	return a.String(), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		parsed, err := ParseAmount(s)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid amount %s", data)
	}
	*a = Amount(f)
	return nil
}

// Event is a bookable event
type Event struct {
	ID          int64           `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Date        string          `json:"date" yaml:"date"`
	Location    string          `json:"location" yaml:"location"`
	EventType   string          `json:"event_type" yaml:"event_type"`
	Package     json.RawMessage `json:"package,omitempty" yaml:"-"`
	Images      ImageURL        `json:"images" yaml:"images"`
	CreatedAt   string          `json:"created_at" yaml:"created_at"`
}

// UnmarshalJSON also accepts a bare id, which is what serializers send when
// the event is not expanded
func (e *Event) UnmarshalJSON(data []byte) error {
	id, ok, err := bareID(data)
	if err != nil || ok {
		*e = Event{ID: id}
		return err
	}

	type plain Event
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = Event(v)
	return nil
}

// Time parses the event date. Both plain dates and RFC 3339 timestamps occur.
func (e *Event) Time() (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, e.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ImageURL is the address of an uploaded image. The backend stores a single
// file per event; a list is accepted and its first entry kept.
type ImageURL string

func (u *ImageURL) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*u = ""
		return nil
	case len(data) > 0 && data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*u = ""
		if len(list) > 0 {
			*u = ImageURL(list[0])
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid image url %s", data)
	}
	*u = ImageURL(s)
	return nil
}

// UserRef is the account a booking or payment belongs to
type UserRef struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
}

// UnmarshalJSON accepts the nested user object or a bare id
func (u *UserRef) UnmarshalJSON(data []byte) error {
	id, ok, err := bareID(data)
	if err != nil || ok {
		*u = UserRef{ID: id}
		return err
	}

	type plain UserRef
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*u = UserRef(v)
	return nil
}

// Name is the username, falling back to the email and then the id
func (u UserRef) Name() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	case u.ID != 0:
		return strconv.FormatInt(u.ID, 10)
	}
	return ""
}

// bareID decodes data when it is null, a number or a numeric string. ok is
// false for objects, which the caller decodes itself.
func bareID(data []byte) (id int64, ok bool, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, true, nil
	}
	if data[0] == '{' {
		return 0, false, nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, true, fmt.Errorf("invalid reference %s", data)
	}
	id, err = n.Int64()
	if err != nil {
		return 0, true, fmt.Errorf("invalid reference %s", data)
	}
	return id, true, nil
}

// PackageRef renders the package field whether the backend sent an id or a
// nested object
func (e *Event) PackageRef() string {
	raw := bytes.TrimSpace(e.Package)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var nested struct {
		ID   any    `json:"id"`
		Name string `json:"name"`
	}
	if raw[0] == '{' && json.Unmarshal(raw, &nested) == nil {
		if nested.Name != "" {
			return nested.Name
		}
		return fmt.Sprint(nested.ID)
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// Package is an event package offered by agencies
type Package struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       Amount   `json:"price" yaml:"price"`
	Features    []string `json:"features" yaml:"features"`
	IsActive    bool     `json:"is_active" yaml:"is_active"`
}

// Booking reserves an event for a client
type Booking struct {
	ID         int64  `json:"id" yaml:"id"`
	Event      Event   `json:"event" yaml:"event"`
	Client     UserRef `json:"client" yaml:"client"`
	AmountPaid Amount  `json:"amount_paid" yaml:"amount_paid"`
	Status     string  `json:"status" yaml:"status"`
	CreatedAt  string  `json:"created_at" yaml:"created_at"`
}

// BookingRef is the booking a payment settles
type BookingRef struct {
	ID     int64  `json:"id" yaml:"id"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	Event  Event  `json:"event" yaml:"event"`
}

// UnmarshalJSON accepts the nested booking object or a bare id
func (b *BookingRef) UnmarshalJSON(data []byte) error {
	id, ok, err := bareID(data)
	if err != nil || ok {
		*b = BookingRef{ID: id}
		return err
	}

	type plain BookingRef
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = BookingRef(v)
	return nil
}

// Payment status values
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentCancelled  = "cancelled"
)

// PaymentMethods lists the accepted payment methods
var PaymentMethods = []string{"card", "paypal", "bank_transfer", "cash"}

// DefaultCurrency is used when a payment names none
const DefaultCurrency = "EUR"

// Payment settles a booking
type Payment struct {
	ID            int64      `json:"id" yaml:"id"`
	Booking       BookingRef `json:"booking" yaml:"booking"`
	Client        UserRef    `json:"client" yaml:"client"`
	Amount        Amount     `json:"amount" yaml:"amount"`
	Currency      string     `json:"currency" yaml:"currency"`
	PaymentMethod string     `json:"payment_method" yaml:"payment_method"`
	Status        string     `json:"status" yaml:"status"`
	BillingName   string     `json:"billing_name" yaml:"billing_name"`
	BillingEmail  string     `json:"billing_email" yaml:"billing_email"`
	BillingPhone  string     `json:"billing_phone" yaml:"billing_phone"`
	Description   string     `json:"description" yaml:"description"`
	TransactionID string     `json:"transaction_id" yaml:"transaction_id"`
	CreatedAt     string     `json:"created_at" yaml:"created_at"`
}

// ProcessResult is the outcome of processing a payment
type ProcessResult struct {
	Success       bool   `json:"success" yaml:"success"`
	Message       string `json:"message" yaml:"message"`
	TransactionID string `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
}

// PaymentStats is whatever counters the backend reports. Values may arrive
// as numbers or decimal strings.
type PaymentStats map[string]json.Number

// Testimonial is a client review
type Testimonial struct {
	ID         int64  `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Content    string `json:"content" yaml:"content"`
	Rating     int    `json:"rating" yaml:"rating"`
	EventType  string `json:"event_type" yaml:"event_type"`
	EventDate  string `json:"event_date" yaml:"event_date"`
	Location   string `json:"location" yaml:"location"`
	Status     string `json:"status" yaml:"status"`
	IsFeatured bool   `json:"is_featured" yaml:"is_featured"`
	User       any    `json:"user" yaml:"user"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
}

// Announcement is a platform-wide notice
type Announcement struct {
	ID        int64  `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}
