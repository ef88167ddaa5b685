package model

import (
	"encoding/json"
	"time"
)

// Envelope is the unit of persistence and of cross-instance diffing: a
// versioned wrapper around one entity collection, carrying update provenance.
// A write always bumps UpdatedAt. Readers never assume monotonic version
// numbers across legacy sources.
type Envelope struct {
	Version        int               `json:"version"`
	UpdatedAt      time.Time         `json:"updated_at"`
	UpdatedBy      string            `json:"updated_by,omitempty"`
	OrganizationID string            `json:"organization_id"`
	Items          []json.RawMessage `json:"items"`
}

// EnvelopeVersion is the current canonical envelope schema version.
const EnvelopeVersion = 3
