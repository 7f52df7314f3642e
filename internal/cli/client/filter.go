package client

import "strings"

// AllValues disables a type or status filter
const AllValues = "all"

// FilterEvents keeps events whose title, description or location contains
// search (case-insensitive) and whose type is eventType
func FilterEvents(events []Event, search, eventType string) []Event {
	return filter(events, func(e Event) bool {
		return matches(search, e.Title, e.Description, e.Location) && is(eventType, e.EventType)
	})
}

// FilterBookings keeps bookings whose event title or client username contains
// search and whose status is status
func FilterBookings(bookings []Booking, search, status string) []Booking {
	return filter(bookings, func(b Booking) bool {
		return matches(search, b.Event.Title, b.Client.Username) && is(status, b.Status)
	})
}

// FilterPayments keeps payments whose event title, client username or
// transaction id contains search and whose status is status
func FilterPayments(payments []Payment, search, status string) []Payment {
	return filter(payments, func(p Payment) bool {
		return matches(search, p.Booking.Event.Title, p.Client.Username, p.TransactionID) && is(status, p.Status)
	})
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func matches(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func is(want, got string) bool {
	return want == "" || want == AllValues || want == got
}
