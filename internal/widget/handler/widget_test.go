package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/checkout"
	"slotbook/internal/wizard"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

type mockEntities struct {
	activitiesFunc func(ctx context.Context) []*model.Activity
	promoFunc      func(ctx context.Context, code string) (*model.PromoCode, bool)
	giftCardFunc   func(ctx context.Context, code string) (*model.GiftCard, bool)
}

func (m *mockEntities) Activities(ctx context.Context) []*model.Activity {
	if m.activitiesFunc != nil {
		return m.activitiesFunc(ctx)
	}
	return nil
}

func (m *mockEntities) Activity(ctx context.Context, id string) (*model.Activity, bool) {
	for _, a := range m.Activities(ctx) {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (m *mockEntities) PromoCode(ctx context.Context, code string) (*model.PromoCode, bool) {
	if m.promoFunc != nil {
		return m.promoFunc(ctx, code)
	}
	return nil, false
}

func (m *mockEntities) GiftCard(ctx context.Context, code string) (*model.GiftCard, bool) {
	if m.giftCardFunc != nil {
		return m.giftCardFunc(ctx, code)
	}
	return nil, false
}

type mockSlots struct {
	computeFunc func(ctx context.Context, activity *model.Activity, date string) []model.Slot
}

func (m *mockSlots) ComputeSlots(ctx context.Context, activity *model.Activity, date string) []model.Slot {
	if m.computeFunc != nil {
		return m.computeFunc(ctx, activity, date)
	}
	return []model.Slot{}
}

type mockCheckout struct {
	quoteFunc  func(ctx context.Context, st wizard.State) checkout.Quote
	submitFunc func(ctx context.Context, st wizard.State) (*checkout.Result, *checkout.RevokedDiscounts, error)
}

func (m *mockCheckout) QuoteFor(ctx context.Context, st wizard.State) checkout.Quote {
	if m.quoteFunc != nil {
		return m.quoteFunc(ctx, st)
	}
	return checkout.Quote{}
}

func (m *mockCheckout) Submit(ctx context.Context, st wizard.State) (*checkout.Result, *checkout.RevokedDiscounts, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, st)
	}
	return &checkout.Result{}, nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		Output:    io.Discard,
		Component: "test",
	})
}

func newTestRouter(entities EntityReader, slots SlotComputer, checkoutSvc CheckoutService) *httprouter.Router {
	h := NewWidgetHandler(entities, slots, checkoutSvc, testLogger())
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func threeActivities() []*model.Activity {
	return []*model.Activity{
		{ID: "a1", Name: "Vault Heist", Active: true},
		{ID: "a2", Name: "Closed Forever", Active: false},
		{ID: "a3", Name: "Submarine", Active: true},
	}
}

func TestListActivitiesFiltersInactive(t *testing.T) {
	router := newTestRouter(&mockEntities{
		activitiesFunc: func(context.Context) []*model.Activity { return threeActivities() },
	}, &mockSlots{}, &mockCheckout{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activities", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data       []model.Activity `json:"data"`
		TotalCount int64            `json:"total_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalCount != 2 || len(resp.Data) != 2 {
		t.Fatalf("total=%d len=%d", resp.TotalCount, len(resp.Data))
	}
	for _, a := range resp.Data {
		if !a.Active {
			t.Errorf("inactive activity %s leaked into the listing", a.ID)
		}
	}
}

func TestListActivitiesPagination(t *testing.T) {
	router := newTestRouter(&mockEntities{
		activitiesFunc: func(context.Context) []*model.Activity { return threeActivities() },
	}, &mockSlots{}, &mockCheckout{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activities?limit=1&offset=1", nil))

	var resp struct {
		Data   []model.Activity `json:"data"`
		Limit  int              `json:"limit"`
		Offset int64            `json:"offset"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "a3" {
		t.Fatalf("page = %+v", resp.Data)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activities?limit=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d", rec.Code)
	}
}

func TestGetActivity(t *testing.T) {
	router := newTestRouter(&mockEntities{
		activitiesFunc: func(context.Context) []*model.Activity { return threeActivities() },
	}, &mockSlots{}, &mockCheckout{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activities/id/a1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activities/id/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown activity: status = %d", rec.Code)
	}
}

func TestGetSlots(t *testing.T) {
	slots := &mockSlots{
		computeFunc: func(_ context.Context, a *model.Activity, date string) []model.Slot {
			if a.ID != "a1" || date != "2026-01-05" {
				t.Errorf("ComputeSlots(%s, %s)", a.ID, date)
			}
			return []model.Slot{{Time: "10:00 AM", Available: true, Spots: 8}}
		},
	}
	router := newTestRouter(&mockEntities{
		activitiesFunc: func(context.Context) []*model.Activity { return threeActivities() },
	}, slots, &mockCheckout{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activities/id/a1/slots?date=2026-01-05", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data []model.Slot `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Time != "10:00 AM" {
		t.Fatalf("slots = %+v", resp.Data)
	}
}

func TestGetSlotsDateValidation(t *testing.T) {
	router := newTestRouter(&mockEntities{
		activitiesFunc: func(context.Context) []*model.Activity { return threeActivities() },
	}, &mockSlots{}, &mockCheckout{})

	for _, path := range []string{
		"/api/v1/activities/id/a1/slots",
		"/api/v1/activities/id/a1/slots?date=Jan+5",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
}

func TestValidatePromoVerdicts(t *testing.T) {
	entities := &mockEntities{
		promoFunc: func(_ context.Context, code string) (*model.PromoCode, bool) {
			if code == "SAVE15" {
				return &model.PromoCode{Code: "SAVE15", Rate: 0.15, Active: true}, true
			}
			return nil, false
		},
	}
	router := newTestRouter(entities, &mockSlots{}, &mockCheckout{})

	t.Run("known code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/promo/validate", strings.NewReader(`{"code":"SAVE15"}`))
		router.ServeHTTP(rec, req)

		var resp struct {
			Data promoVerdict `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Data.Valid || resp.Data.Rate != 0.15 {
			t.Errorf("verdict = %+v", resp.Data)
		}
	})

	t.Run("unknown code is a negative verdict, not an error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/promo/validate", strings.NewReader(`{"code":"GHOST"}`))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp struct {
			Data promoVerdict `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Data.Valid || resp.Data.Reason == "" {
			t.Errorf("verdict = %+v", resp.Data)
		}
	})

	t.Run("missing body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/promo/validate", strings.NewReader(``))
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestSubmitMapsRevokedDiscounts(t *testing.T) {
	svc := &mockCheckout{
		submitFunc: func(context.Context, wizard.State) (*checkout.Result, *checkout.RevokedDiscounts, error) {
			return nil, &checkout.RevokedDiscounts{Promo: true},
				apperrors.DiscountInvalid("SAVE15", "expired")
		},
	}
	router := newTestRouter(&mockEntities{}, &mockSlots{}, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"activity_id":"a1"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != apperrors.CodeDiscountInvalid {
		t.Errorf("code = %s", resp.Code)
	}
	if resp.Details["revoked_promo"] != true || resp.Details["revoked_gift_card"] != false {
		t.Errorf("details = %v", resp.Details)
	}
}

func TestSubmitSuccess(t *testing.T) {
	var seen wizard.State
	svc := &mockCheckout{
		submitFunc: func(_ context.Context, st wizard.State) (*checkout.Result, *checkout.RevokedDiscounts, error) {
			seen = st
			return &checkout.Result{BookingID: "res-1", RedirectURL: "https://pay.example/res-1"}, nil, nil
		},
	}
	router := newTestRouter(&mockEntities{}, &mockSlots{}, svc)

	body := `{
		"activity_id": "a1",
		"date": "2026-01-05",
		"time": "10:00 AM",
		"cart": [{"ticket_type_id":"adult","quantity":2,"unit_price":30}],
		"customer": {"name":"Ada Lovelace","email":"ada@example.com","phone":"+14155552671"}
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if seen.Step != wizard.StepCheckout {
		t.Errorf("submitted state step = %s", seen.Step)
	}
	if len(seen.Cart) != 1 || seen.Cart[0].Quantity != 2 {
		t.Errorf("cart = %+v", seen.Cart)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	svc := &mockCheckout{
		quoteFunc: func(context.Context, wizard.State) checkout.Quote {
			return checkout.Quote{Subtotal: 60, Fee: 3.6, Total: 63.6}
		},
	}
	router := newTestRouter(&mockEntities{}, &mockSlots{}, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/quote", strings.NewReader(`{"cart":[]}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data checkout.Quote `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 63.6 {
		t.Errorf("quote = %+v", resp.Data)
	}
}
