package model

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// CartItem is one configured ticket line: a ticket type, how many, and the
// unit price captured at configuration time.
type CartItem struct {
	TicketTypeID string  `json:"ticket_type_id" validate:"required"`
	Quantity     int     `json:"quantity" validate:"required,min=1,max=100"`
	UnitPrice    float64 `json:"unit_price" validate:"min=0"`
	// PromoCode is an optional per-ticket-type promo applied to this line.
	PromoCode string `json:"promo_code,omitempty"`
}

func (c CartItem) Subtotal() float64 {
	return c.UnitPrice * float64(c.Quantity)
}

// Booking is a committed ticket selection for one (activity, date, time).
// Confirmed bookings consume capacity when the availability engine computes
// remaining spots for future slot queries.
type Booking struct {
	ID             string     `json:"id,omitempty"`
	OrganizationID string     `json:"organization_id" validate:"required"`
	ActivityID     string     `json:"activity_id" validate:"required"`
	Date           string     `json:"date" validate:"required,iso_date"`
	Time           string     `json:"time" validate:"required"`
	Items          []CartItem `json:"items" validate:"required,min=1,dive"`
	Participants   int        `json:"participants" validate:"required,min=1,max=500"`
	Total          float64    `json:"total" validate:"min=0"`
	PromoCode      string     `json:"promo_code,omitempty"`
	SessionID      string     `json:"session_id,omitempty"`
	Status         string     `json:"status" validate:"required,oneof=pending confirmed cancelled"`
	Customer       Customer   `json:"customer"`
	CreatedAt      time.Time  `json:"created_at,omitempty"`
}

// PartySize is the total participant count across all ticket lines.
func PartySize(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
