package client

import (
	"context"
	"fmt"
	"net/http"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

type CheckoutClient struct {
	httpClient *HttpClient
}

// ReservationRequest is the payment hand-off payload. When SessionID is set
// the backend decrements that session's capacity atomically; otherwise it
// creates a reservation from scratch (template mode), accepting the race
// against concurrent bookers of the same generated slot.
type ReservationRequest struct {
	VenueID        string         `json:"venue_id"`
	ActivityID     string         `json:"activity_id"`
	SessionID      string         `json:"session_id,omitempty"`
	Date           string         `json:"date"`
	StartTime      string         `json:"start_time"` // 24h HH:MM
	EndTime        string         `json:"end_time"`   // 24h HH:MM
	PartySize      int            `json:"party_size"`
	Customer       model.Customer `json:"customer"`
	Total          float64        `json:"total"`
	PriceReference string         `json:"price_reference"`
}

type ReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	RedirectURL   string `json:"redirect_url"`
}

// CreateReservation hands the booking off for payment. The idempotency key
// shields against duplicate submissions reaching the gateway twice.
func (c *CheckoutClient) CreateReservation(ctx context.Context, req ReservationRequest, idempotencyKey string) (*ReservationResponse, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	resp, err := c.httpClient.POSTWithHeaders(ctx, "/api/v1/reservations", req, headers)
	if err != nil {
		return nil, apperrors.Network("reservation request failed", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict:
		return nil, apperrors.AvailabilityConflict("slot capacity exhausted before submission completed")
	default:
		return nil, apperrors.Network(fmt.Sprintf("reservation returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data ReservationResponse `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Network("could not decode reservation response", err)
	}
	return &wrapper.Data, nil
}
