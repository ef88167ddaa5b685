// Package wizard models the booking flow as an explicit finite-state
// machine: a tagged union of step events and a pure, total transition
// function. Invalid transitions return the state unchanged - no transition
// ever applies a partial update.
package wizard

import "slotbook/pkg/model"

type Step string

const (
	StepSelectingActivity  Step = "selecting-activity"
	StepSelectingDate      Step = "selecting-date"
	StepSelectingTime      Step = "selecting-time"
	StepConfiguringTickets Step = "configuring-tickets"
	StepCart               Step = "cart"
	StepCheckout           Step = "checkout"
	StepPaymentRedirect    Step = "payment-redirect"
	StepSuccess            Step = "success"
	StepFailed             Step = "failed"
)

// State is a value; Next returns a new one and never mutates its input.
type State struct {
	Step         Step             `json:"step"`
	ActivityID   string           `json:"activity_id,omitempty"`
	Date         string           `json:"date,omitempty"`
	Time         string           `json:"time,omitempty"`
	SessionID    string           `json:"session_id,omitempty"`
	Cart         []model.CartItem `json:"cart,omitempty"`
	Customer     model.Customer   `json:"customer"`
	PromoCode    string           `json:"promo_code,omitempty"`
	GiftCardCode string           `json:"gift_card_code,omitempty"`
	RedirectURL  string           `json:"redirect_url,omitempty"`
	FailReason   string           `json:"fail_reason,omitempty"`
}

func Initial() State {
	return State{Step: StepSelectingActivity}
}

// Event is the tagged union of everything that can advance the wizard.
// Guards that depend on derived data (slot availability, contact validity,
// discount re-validation) are carried as event facts computed by the caller,
// keeping the transition function pure.
type Event interface {
	isEvent()
}

type SelectActivity struct {
	ActivityID string
}

// SelectDate carries how many available slots the availability engine found
// for the date; the wizard refuses to enter time selection without at least
// one.
type SelectDate struct {
	Date           string
	AvailableSlots int
}

type SelectTime struct {
	Slot model.Slot
}

type ConfigureTickets struct {
	Items []model.CartItem
}

type ProceedToCart struct{}

type ProceedToCheckout struct {
	Customer     model.Customer
	ContactValid bool
}

type ApplyPromo struct {
	Code string
}

type ApplyGiftCard struct {
	Code string
}

// RevokeDiscounts retracts provisional discounts after the remote
// collaborator rejected them at submission time.
type RevokeDiscounts struct {
	Promo    bool
	GiftCard bool
}

// BeginPayment requires every locally applied discount to have passed remote
// re-validation.
type BeginPayment struct {
	DiscountsValidated bool
	RedirectURL        string
}

type PaymentSucceeded struct{}

type PaymentFailed struct {
	Reason string
}

type Reset struct{}

func (SelectActivity) isEvent()    {}
func (SelectDate) isEvent()        {}
func (SelectTime) isEvent()        {}
func (ConfigureTickets) isEvent()  {}
func (ProceedToCart) isEvent()     {}
func (ProceedToCheckout) isEvent() {}
func (ApplyPromo) isEvent()        {}
func (ApplyGiftCard) isEvent()     {}
func (RevokeDiscounts) isEvent()   {}
func (BeginPayment) isEvent()      {}
func (PaymentSucceeded) isEvent()  {}
func (PaymentFailed) isEvent()     {}
func (Reset) isEvent()             {}

// Next is the transition function. Backward and lateral moves cascade-clear
// downstream selections: changing activity clears date, time and cart;
// changing date clears time; changing time keeps the ticket configuration.
func Next(s State, ev Event) State {
	switch e := ev.(type) {
	case Reset:
		return Initial()

	case SelectActivity:
		if e.ActivityID == "" || terminal(s.Step) {
			return s
		}
		next := Initial()
		next.Step = StepSelectingDate
		next.ActivityID = e.ActivityID
		return next

	case SelectDate:
		if s.ActivityID == "" || e.Date == "" || terminal(s.Step) {
			return s
		}
		if e.AvailableSlots < 1 {
			return s
		}
		next := s
		next.Step = StepSelectingTime
		next.Date = e.Date
		next.Time = ""
		next.SessionID = ""
		return next

	case SelectTime:
		if s.Date == "" || !e.Slot.Available || terminal(s.Step) {
			return s
		}
		next := s
		next.Step = StepConfiguringTickets
		next.Time = e.Slot.Time
		next.SessionID = e.Slot.SessionID
		return next

	case ConfigureTickets:
		if s.Time == "" || terminal(s.Step) {
			return s
		}
		next := s
		next.Step = StepConfiguringTickets
		next.Cart = e.Items
		return next

	case ProceedToCart:
		if s.Step != StepConfiguringTickets || len(s.Cart) == 0 {
			return s
		}
		next := s
		next.Step = StepCart
		return next

	case ProceedToCheckout:
		if s.Step != StepCart || len(s.Cart) == 0 || !e.ContactValid {
			return s
		}
		next := s
		next.Step = StepCheckout
		next.Customer = e.Customer
		return next

	case ApplyPromo:
		if s.Step != StepCart && s.Step != StepCheckout {
			return s
		}
		next := s
		next.PromoCode = e.Code
		return next

	case ApplyGiftCard:
		if s.Step != StepCart && s.Step != StepCheckout {
			return s
		}
		next := s
		next.GiftCardCode = e.Code
		return next

	case RevokeDiscounts:
		if s.Step != StepCheckout && s.Step != StepCart {
			return s
		}
		next := s
		if e.Promo {
			next.PromoCode = ""
		}
		if e.GiftCard {
			next.GiftCardCode = ""
		}
		return next

	case BeginPayment:
		if s.Step != StepCheckout || !e.DiscountsValidated {
			return s
		}
		next := s
		next.Step = StepPaymentRedirect
		next.RedirectURL = e.RedirectURL
		return next

	case PaymentSucceeded:
		if s.Step != StepPaymentRedirect {
			return s
		}
		next := s
		next.Step = StepSuccess
		return next

	case PaymentFailed:
		if s.Step != StepPaymentRedirect && s.Step != StepCheckout {
			return s
		}
		next := s
		next.Step = StepFailed
		next.FailReason = e.Reason
		return next
	}

	return s
}

func terminal(step Step) bool {
	return step == StepSuccess || step == StepFailed
}
