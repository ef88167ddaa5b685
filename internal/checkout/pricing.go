package checkout

import (
	"math"

	"slotbook/pkg/model"
)

// Quote is the priced breakdown of a cart. Stages mirror the pipeline in
// Price and are reported individually so the UI can itemize them.
type Quote struct {
	Subtotal           float64 `json:"subtotal"`
	TypePromoDiscount  float64 `json:"type_promo_discount"`
	CheckoutDiscount   float64 `json:"checkout_discount"`
	Fee                float64 `json:"fee"`
	GiftCardRedemption float64 `json:"gift_card_redemption"`
	Total              float64 `json:"total"`
}

// Discounts are the provisional, locally applied reductions. They remain
// provisional until remote re-validation at submission.
type Discounts struct {
	// TypePromos maps ticket type id to its single active percentage promo.
	// At most one promo applies per ticket type.
	TypePromos map[string]model.PromoCode
	// CheckoutPromo applies to the running subtotal: percentage via Rate, or
	// a fixed Amount clamped to not exceed it.
	CheckoutPromo *model.PromoCode
	// GiftCardBalance is redeemed last and can only reduce the total.
	GiftCardBalance float64
}

// Price runs the deterministic pricing pipeline. The stage order is
// load-bearing and must not be permuted: subtotal, per-ticket-type promos,
// checkout-level promo, fee on the discounted subtotal, gift card last.
func Price(items []model.CartItem, d Discounts, feeRate float64) Quote {
	var q Quote

	for _, item := range items {
		q.Subtotal += item.Subtotal()
	}
	q.Subtotal = roundCents(q.Subtotal)

	for typeID, promo := range d.TypePromos {
		if promo.Rate <= 0 {
			continue // per-type promos are percentage only
		}
		typeSubtotal := 0.0
		for _, item := range items {
			if item.TicketTypeID == typeID {
				typeSubtotal += item.Subtotal()
			}
		}
		q.TypePromoDiscount += typeSubtotal * promo.Rate
	}
	q.TypePromoDiscount = roundCents(q.TypePromoDiscount)

	running := q.Subtotal - q.TypePromoDiscount
	if d.CheckoutPromo != nil {
		switch {
		case d.CheckoutPromo.Rate > 0:
			q.CheckoutDiscount = roundCents(running * d.CheckoutPromo.Rate)
		case d.CheckoutPromo.Amount > 0:
			q.CheckoutDiscount = math.Min(d.CheckoutPromo.Amount, running)
		}
	}

	discounted := q.Subtotal - q.TypePromoDiscount - q.CheckoutDiscount
	q.Fee = roundCents(feeRate * discounted)

	q.GiftCardRedemption = roundCents(math.Min(d.GiftCardBalance, discounted+q.Fee))
	if q.GiftCardRedemption < 0 {
		q.GiftCardRedemption = 0
	}

	q.Total = roundCents(math.Max(0, discounted+q.Fee-q.GiftCardRedemption))
	return q
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
