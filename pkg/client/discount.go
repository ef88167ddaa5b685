package client

import (
	"context"
	"fmt"
	"net/http"

	apperrors "slotbook/pkg/errors"
)

type DiscountClient struct {
	httpClient *HttpClient
}

// PromoValidation is the collaborator's verdict on a promo code against the
// running amount. A valid percentage code carries Rate; a fixed code carries
// Amount.
type PromoValidation struct {
	Valid        bool    `json:"valid"`
	Code         string  `json:"code"`
	TicketTypeID string  `json:"ticket_type_id,omitempty"`
	Rate         float64 `json:"rate,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

type GiftCardValidation struct {
	Valid   bool    `json:"valid"`
	Code    string  `json:"code"`
	Balance float64 `json:"balance"`
	Reason  string  `json:"reason,omitempty"`
}

// ValidatePromo re-validates a locally applied promo code. Locally applied
// discounts are provisional; this call is the authority at submission time.
func (c *DiscountClient) ValidatePromo(ctx context.Context, code string, runningAmount float64) (*PromoValidation, error) {
	body := map[string]any{
		"code":   code,
		"amount": runningAmount,
	}
	resp, err := c.httpClient.POST(ctx, "/api/v1/promo-codes/validate", body)
	if err != nil {
		return nil, apperrors.Network("promo validation request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Network(fmt.Sprintf("promo validation returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data PromoValidation `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Network("could not decode promo validation", err)
	}
	return &wrapper.Data, nil
}

func (c *DiscountClient) ValidateGiftCard(ctx context.Context, code string) (*GiftCardValidation, error) {
	body := map[string]any{"code": code}
	resp, err := c.httpClient.POST(ctx, "/api/v1/gift-cards/validate", body)
	if err != nil {
		return nil, apperrors.Network("gift card validation request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Network(fmt.Sprintf("gift card validation returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data GiftCardValidation `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, apperrors.Network("could not decode gift card validation", err)
	}
	return &wrapper.Data, nil
}
