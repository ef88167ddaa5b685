package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/checkout"
	"slotbook/internal/wizard"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// EntityReader is the store surface the widget handlers need.
type EntityReader interface {
	Activities(ctx context.Context) []*model.Activity
	Activity(ctx context.Context, id string) (*model.Activity, bool)
	PromoCode(ctx context.Context, code string) (*model.PromoCode, bool)
	GiftCard(ctx context.Context, code string) (*model.GiftCard, bool)
}

type SlotComputer interface {
	ComputeSlots(ctx context.Context, activity *model.Activity, date string) []model.Slot
}

type CheckoutService interface {
	QuoteFor(ctx context.Context, st wizard.State) checkout.Quote
	Submit(ctx context.Context, st wizard.State) (*checkout.Result, *checkout.RevokedDiscounts, error)
}

type WidgetHandler struct {
	entities EntityReader
	slots    SlotComputer
	checkout CheckoutService
	log      *logger.Logger
	now      func() time.Time
}

func NewWidgetHandler(entities EntityReader, slots SlotComputer, checkoutSvc CheckoutService, log *logger.Logger) *WidgetHandler {
	return &WidgetHandler{
		entities: entities,
		slots:    slots,
		checkout: checkoutSvc,
		log:      log,
		now:      time.Now,
	}
}

func (h *WidgetHandler) ListActivities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListActivities", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	all := h.entities.Activities(r.Context())
	active := make([]*model.Activity, 0, len(all))
	for _, a := range all {
		if a.Active {
			active = append(active, a)
		}
	}

	total := int64(len(active))
	start := int(offset)
	if start > len(active) {
		start = len(active)
	}
	end := start + limit
	if end > len(active) {
		end = len(active)
	}

	if err := httputil.WritePaginated(w, active[start:end], total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListActivities", "operation", "WritePaginated", "error", err)
	}
}

func (h *WidgetHandler) GetActivity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "GetActivity", "operation", "WriteJSON", "error", err)
		}
		return
	}

	activity, ok := h.entities.Activity(r.Context(), id)
	if !ok {
		if err := httputil.WriteError(w, apperrors.NotFoundWithID("activity", id)); err != nil {
			h.log.Error("failed to write error response", "handler", "GetActivity", "operation", "WriteError", "error", err)
		}
		return
	}

	if err := httputil.WriteSuccess(w, activity); err != nil {
		h.log.Error("failed to write success response", "handler", "GetActivity", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WidgetHandler) GetSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	date, err := httputil.ExtractDate(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	activity, ok := h.entities.Activity(r.Context(), id)
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.NotFoundWithID("activity", id)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slots := h.slots.ComputeSlots(r.Context(), activity, date)
	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSlots", "operation", "WriteSuccess", "error", err)
	}
}

type discountRequest struct {
	Code string `json:"code"`
}

type promoVerdict struct {
	Valid        bool    `json:"valid"`
	Reason       string  `json:"reason,omitempty"`
	Rate         float64 `json:"rate,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	TicketTypeID string  `json:"ticket_type_id,omitempty"`
}

// ValidatePromo checks a promo code against cached store state. This is the
// provisional-application check; the authoritative verdict happens again at
// submission via the remote collaborator.
func (h *WidgetHandler) ValidatePromo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ValidatePromo", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	verdict := promoVerdict{}
	if promo, ok := h.entities.PromoCode(r.Context(), req.Code); ok && promo.Usable(h.now()) {
		verdict = promoVerdict{
			Valid:        true,
			Rate:         promo.Rate,
			Amount:       promo.Amount,
			TicketTypeID: promo.TicketTypeID,
		}
	} else {
		verdict.Reason = "code not found or expired"
	}

	if err := httputil.WriteSuccess(w, verdict); err != nil {
		h.log.Error("failed to write success response", "handler", "ValidatePromo", "operation", "WriteSuccess", "error", err)
	}
}

type giftCardVerdict struct {
	Valid   bool    `json:"valid"`
	Reason  string  `json:"reason,omitempty"`
	Balance float64 `json:"balance,omitempty"`
}

func (h *WidgetHandler) ValidateGiftCard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ValidateGiftCard", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	verdict := giftCardVerdict{}
	if card, ok := h.entities.GiftCard(r.Context(), req.Code); ok && card.Active && card.Balance > 0 {
		verdict = giftCardVerdict{Valid: true, Balance: card.Balance}
	} else {
		verdict.Reason = "card not found, inactive or empty"
	}

	if err := httputil.WriteSuccess(w, verdict); err != nil {
		h.log.Error("failed to write success response", "handler", "ValidateGiftCard", "operation", "WriteSuccess", "error", err)
	}
}

// checkoutRequest is the shell's serialized wizard state at checkout time.
type checkoutRequest struct {
	ActivityID   string           `json:"activity_id"`
	Date         string           `json:"date"`
	Time         string           `json:"time"`
	SessionID    string           `json:"session_id,omitempty"`
	Cart         []model.CartItem `json:"cart"`
	Customer     model.Customer   `json:"customer"`
	PromoCode    string           `json:"promo_code,omitempty"`
	GiftCardCode string           `json:"gift_card_code,omitempty"`
}

func (req checkoutRequest) state() wizard.State {
	return wizard.State{
		Step:         wizard.StepCheckout,
		ActivityID:   req.ActivityID,
		Date:         req.Date,
		Time:         req.Time,
		SessionID:    req.SessionID,
		Cart:         req.Cart,
		Customer:     req.Customer,
		PromoCode:    req.PromoCode,
		GiftCardCode: req.GiftCardCode,
	}
}

// Quote prices the submitted cart with its provisionally applied discounts.
// Read-only; no remote calls.
func (h *WidgetHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Quote", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	quote := h.checkout.QuoteFor(r.Context(), req.state())
	if err := httputil.WriteSuccess(w, quote); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WidgetHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Submit", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, revoked, err := h.checkout.Submit(r.Context(), req.state())
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && revoked != nil {
			if appErr.Details == nil {
				appErr.Details = map[string]any{}
			}
			appErr.Details["revoked_promo"] = revoked.Promo
			appErr.Details["revoked_gift_card"] = revoked.GiftCard
		}
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Submit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *WidgetHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/activities", h.ListActivities)
	router.GET("/api/v1/activities/id/:id", h.GetActivity)
	router.GET("/api/v1/activities/id/:id/slots", h.GetSlots)
	router.POST("/api/v1/discounts/promo/validate", h.ValidatePromo)
	router.POST("/api/v1/discounts/giftcard/validate", h.ValidateGiftCard)
	router.POST("/api/v1/checkout/quote", h.Quote)
	router.POST("/api/v1/checkout", h.Submit)
}
