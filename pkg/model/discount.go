package model

import "time"

// PromoCode discounts either a single ticket type (percentage of that type's
// sub-slice) or the whole checkout (percentage or fixed amount). A code with
// an empty TicketTypeID is a checkout-level code.
type PromoCode struct {
	ID           string    `json:"id,omitempty"`
	Code         string    `json:"code" validate:"required,min=2,max=32"`
	TicketTypeID string    `json:"ticket_type_id,omitempty"`
	Rate         float64   `json:"rate,omitempty" validate:"omitempty,gt=0,max=1"`
	Amount       float64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
	ValidFrom    time.Time `json:"valid_from,omitempty"`
	ValidTo      time.Time `json:"valid_to,omitempty"`
	MaxUses      int       `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	Uses         int       `json:"uses,omitempty" validate:"omitempty,min=0"`
	Active       bool      `json:"active"`
}

// Usable reports whether the code may still be applied at the given instant.
// Remote re-validation at submission remains authoritative; this only gates
// provisional local application.
func (p *PromoCode) Usable(now time.Time) bool {
	if !p.Active {
		return false
	}
	if !p.ValidFrom.IsZero() && now.Before(p.ValidFrom) {
		return false
	}
	if !p.ValidTo.IsZero() && now.After(p.ValidTo) {
		return false
	}
	if p.MaxUses > 0 && p.Uses >= p.MaxUses {
		return false
	}
	return true
}

// GiftCard carries a spendable balance, redeemed last in the pricing
// pipeline and clamped so it can only reduce the total.
type GiftCard struct {
	ID      string  `json:"id,omitempty"`
	Code    string  `json:"code" validate:"required,min=4,max=32"`
	Balance float64 `json:"balance" validate:"min=0"`
	Active  bool    `json:"active"`
}

// GiftVoucher is a purchasable fixed-amount voucher for a specific activity,
// convertible into a gift card balance on redemption.
type GiftVoucher struct {
	ID         string    `json:"id,omitempty"`
	Code       string    `json:"code" validate:"required,min=4,max=32"`
	ActivityID string    `json:"activity_id,omitempty"`
	Amount     float64   `json:"amount" validate:"gt=0"`
	Redeemed   bool      `json:"redeemed"`
	ValidTo    time.Time `json:"valid_to,omitempty"`
}
