package model

// Schedule is the recurrence rule for procedurally generated slots. All times
// are wall-clock "HH:MM" strings in the activity's timezone, never absolute
// instants, so slot output is stable regardless of the viewer's locale.
type Schedule struct {
	OperatingDays     []string `json:"operating_days" validate:"omitempty,max=7,dive,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime         string   `json:"start_time" validate:"omitempty,wall_clock"`
	EndTime           string   `json:"end_time" validate:"omitempty,wall_clock"`
	SlotIntervalMin   int      `json:"slot_interval_min" validate:"omitempty,min=5,max=480"`
	AdvanceBookingMin int      `json:"advance_booking_min" validate:"omitempty,min=0,max=10080"`
}

type Activity struct {
	ID                   string       `json:"id,omitempty" validate:"omitempty"`
	OrganizationID       string       `json:"organization_id" validate:"required"`
	Name                 string       `json:"name" validate:"required,min=2,max=100"`
	Capacity             int          `json:"capacity" validate:"min=0,max=500"`
	BasePrice            float64      `json:"base_price" validate:"min=0"`
	DurationMin          int          `json:"duration_min" validate:"required,min=5,max=480"`
	Difficulty           int          `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Schedule             Schedule     `json:"schedule"`
	BlockedDates         []string     `json:"blocked_dates,omitempty" validate:"omitempty,dive,iso_date"`
	CustomAvailableDates []string     `json:"custom_available_dates,omitempty" validate:"omitempty,dive,iso_date"`
	TicketTypes          []TicketType `json:"ticket_types,omitempty" validate:"omitempty,dive"`
	TimeZone             string       `json:"time_zone,omitempty" validate:"omitempty,timezone"`

	// PriceReference is the payment gateway's price identifier forwarded on
	// reservation hand-off.
	PriceReference string `json:"price_reference,omitempty"`
	Active         bool   `json:"active"`
}

type TicketType struct {
	ID    string  `json:"id" validate:"required"`
	Name  string  `json:"name" validate:"required,min=1,max=50"`
	Price float64 `json:"price" validate:"min=0"`
}

// TicketType returns the named ticket type, falling back to a synthetic
// base-price type so activities without explicit tiers remain bookable.
func (a *Activity) TicketType(id string) TicketType {
	for _, tt := range a.TicketTypes {
		if tt.ID == id {
			return tt
		}
	}
	return TicketType{ID: id, Name: "General", Price: a.BasePrice}
}
