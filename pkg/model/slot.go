package model

// Slot is a derived, ephemeral bookable opportunity for an activity on a
// specific date. Slots are never persisted; the availability engine
// recomputes them on every query.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Spots     int    `json:"spots"`
	// SessionID is set only when the slot was sourced from a live backend
	// session, in which case checkout forwards it for an atomic decrement.
	SessionID string `json:"session_id,omitempty"`
}

// Session is a backend-authoritative slot instance with live capacity
// tracking, as exposed by the remote collaborator.
type Session struct {
	ID                string `json:"id"`
	StartTime         string `json:"start_time"`
	CapacityRemaining int    `json:"capacity_remaining"`
	CapacityTotal     int    `json:"capacity_total"`
}
