// Package checkout prices carts and drives the submission gate: local
// validation, remote re-validation of provisional discounts, wall-clock time
// normalization and the payment hand-off.
package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"slotbook/internal/checkout/validator"
	"slotbook/internal/store"
	"slotbook/internal/wizard"
	"slotbook/pkg/client"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"

	"github.com/google/uuid"
)

type Service struct {
	cfg       *config.Config
	store     *store.Store
	client    *client.Client
	validator *validator.ContactValidator
	now       func() time.Time

	// processing guards against duplicate concurrent submissions from the
	// same widget instance.
	processing atomic.Bool
}

func NewService(cfg *config.Config, st *store.Store, cl *client.Client, cv *validator.ContactValidator) *Service {
	return &Service{
		cfg:       cfg,
		store:     st,
		client:    cl,
		validator: cv,
		now:       time.Now,
	}
}

// Result is what a successful submission hands back to the shell: where to
// send the user, what they will pay, and the advanced wizard state the shell
// renders next.
type Result struct {
	BookingID   string       `json:"booking_id"`
	RedirectURL string       `json:"redirect_url"`
	Quote       Quote        `json:"quote"`
	State       wizard.State `json:"state"`
}

// RevokedDiscounts reports which provisional discounts the remote
// collaborator rejected, so the wizard can retract them and notify the user.
type RevokedDiscounts struct {
	Promo    bool
	GiftCard bool
}

// QuoteFor prices the current wizard state with its provisionally applied
// discounts. Pure read; no remote calls.
func (s *Service) QuoteFor(ctx context.Context, st wizard.State) Quote {
	return Price(st.Cart, s.localDiscounts(ctx, st), s.cfg.FeeRate)
}

// Submit runs the full submission gate and, on success, persists a pending
// booking and returns the payment redirect. On discount rejection the revoked
// set is returned alongside the error so the caller can update wizard state.
func (s *Service) Submit(ctx context.Context, st wizard.State) (*Result, *RevokedDiscounts, error) {
	if !s.processing.CompareAndSwap(false, true) {
		return nil, nil, apperrors.Conflict("a checkout submission is already in progress")
	}
	defer s.processing.Store(false)

	// The machine owns step legality: a state that cannot begin payment is
	// rejected outright, whatever step label it carries.
	if wizard.Next(st, wizard.BeginPayment{DiscountsValidated: true}).Step != wizard.StepPaymentRedirect {
		return nil, nil, apperrors.InvalidInput("submission requires the checkout step")
	}
	if len(st.Cart) == 0 {
		return nil, nil, apperrors.InvalidInput("cart is empty")
	}

	activity, ok := s.store.Activity(ctx, st.ActivityID)
	if !ok {
		return nil, nil, apperrors.NotFoundWithID("activity", st.ActivityID)
	}

	customer := st.Customer
	sanitizer.SanitizeCustomer(&customer)
	if err := s.validator.Validate(&customer); err != nil {
		return nil, nil, apperrors.Validation("contact details failed validation", map[string]any{
			"error": err.Error(),
		})
	}

	// An unparseable slot string aborts with an explicit error rather than
	// defaulting silently.
	startMin, err := clock.ParseClock12(st.Time)
	if err != nil {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("cannot parse slot time %q", st.Time))
	}
	endMin := startMin + activity.DurationMin

	discounts := s.localDiscounts(ctx, st)
	quote := Price(st.Cart, discounts, s.cfg.FeeRate)

	revoked, err := s.revalidateDiscounts(ctx, st, quote)
	if err != nil {
		return nil, revoked, err
	}

	req := client.ReservationRequest{
		VenueID:        s.cfg.VenueID,
		ActivityID:     activity.ID,
		SessionID:      st.SessionID,
		Date:           st.Date,
		StartTime:      clock.FormatClock24(startMin),
		EndTime:        clock.FormatClock24(endMin),
		PartySize:      model.PartySize(st.Cart),
		Customer:       customer,
		Total:          quote.Total,
		PriceReference: activity.PriceReference,
	}

	reservation, err := s.client.Checkout.CreateReservation(ctx, req, uuid.NewString())
	if err != nil {
		s.cfg.Log.Error("reservation hand-off failed",
			"activity_id", activity.ID,
			"date", st.Date,
			"time", st.Time,
			"error", err,
		)
		return nil, nil, err
	}

	booking := model.Booking{
		ID:             reservation.ReservationID,
		OrganizationID: s.cfg.OrganizationID,
		ActivityID:     activity.ID,
		Date:           st.Date,
		Time:           st.Time,
		Items:          st.Cart,
		Participants:   model.PartySize(st.Cart),
		Total:          quote.Total,
		PromoCode:      st.PromoCode,
		SessionID:      st.SessionID,
		Status:         model.BookingStatusPending,
		Customer:       customer,
	}
	if _, err := s.store.Save(ctx, model.KindBookings, booking); err != nil {
		s.cfg.Log.Warn("could not record pending booking locally", "error", err)
	}

	s.cfg.Log.Info("checkout submitted",
		"booking_id", reservation.ReservationID,
		"activity_id", activity.ID,
		"party_size", req.PartySize,
		"total", quote.Total,
		"session_mode", st.SessionID != "",
	)

	return &Result{
		BookingID:   reservation.ReservationID,
		RedirectURL: reservation.RedirectURL,
		Quote:       quote,
		State: wizard.Next(st, wizard.BeginPayment{
			DiscountsValidated: true,
			RedirectURL:        reservation.RedirectURL,
		}),
	}, nil, nil
}

// localDiscounts resolves provisionally applied codes against cached store
// state: per-ticket-type promos from cart lines (first usable one per type
// wins), the checkout-level code, and the gift card balance. A code scoped to
// a ticket type never applies at the checkout stage and vice versa, so one
// code can only ever discount a single pipeline stage.
func (s *Service) localDiscounts(ctx context.Context, st wizard.State) Discounts {
	d := Discounts{TypePromos: map[string]model.PromoCode{}}
	now := s.now()

	for _, item := range st.Cart {
		if item.PromoCode == "" {
			continue
		}
		if _, taken := d.TypePromos[item.TicketTypeID]; taken {
			continue
		}
		promo, ok := s.store.PromoCode(ctx, item.PromoCode)
		if !ok || !promo.Usable(now) || promo.Rate <= 0 {
			continue
		}
		if promo.TicketTypeID != item.TicketTypeID {
			continue
		}
		d.TypePromos[item.TicketTypeID] = *promo
	}

	if st.PromoCode != "" {
		if promo, ok := s.store.PromoCode(ctx, st.PromoCode); ok && promo.Usable(now) && promo.TicketTypeID == "" {
			d.CheckoutPromo = promo
		}
	}

	if st.GiftCardCode != "" {
		if card, ok := s.store.GiftCard(ctx, st.GiftCardCode); ok && card.Active {
			d.GiftCardBalance = card.Balance
		}
	}

	return d
}

// revalidateDiscounts asks the collaborator to confirm every provisional
// discount. Any rejection retracts the discount and aborts submission; the
// user re-attempts from checkout with the revoked discount gone.
func (s *Service) revalidateDiscounts(ctx context.Context, st wizard.State, quote Quote) (*RevokedDiscounts, error) {
	codes := map[string]bool{}
	if st.PromoCode != "" {
		codes[st.PromoCode] = true
	}
	for _, item := range st.Cart {
		if item.PromoCode != "" {
			codes[item.PromoCode] = true
		}
	}

	running := quote.Subtotal - quote.TypePromoDiscount
	for code := range codes {
		verdict, err := s.client.Discount.ValidatePromo(ctx, code, running)
		if err != nil {
			return nil, err
		}
		if !verdict.Valid {
			s.cfg.Log.Warn("promo code rejected at submission", "code", code, "reason", verdict.Reason)
			return &RevokedDiscounts{Promo: true}, apperrors.DiscountInvalid(code, verdict.Reason)
		}
	}

	if st.GiftCardCode != "" {
		verdict, err := s.client.Discount.ValidateGiftCard(ctx, st.GiftCardCode)
		if err != nil {
			return nil, err
		}
		if !verdict.Valid {
			s.cfg.Log.Warn("gift card rejected at submission", "code", st.GiftCardCode, "reason", verdict.Reason)
			return &RevokedDiscounts{GiftCard: true}, apperrors.DiscountInvalid(st.GiftCardCode, verdict.Reason)
		}
	}

	return nil, nil
}
