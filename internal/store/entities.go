package store

import (
	"context"
	"encoding/json"

	"slotbook/pkg/model"
)

// Typed views over the raw collections. Records that fail to decode after
// normalization are dropped rather than surfaced; reads never throw.

func decodeAll[T any](items []json.RawMessage) []*T {
	out := make([]*T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err == nil {
			out = append(out, &v)
		}
	}
	return out
}

func (s *Store) Activities(ctx context.Context) []*model.Activity {
	return decodeAll[model.Activity](s.GetAll(ctx, model.KindActivities))
}

func (s *Store) Activity(ctx context.Context, id string) (*model.Activity, bool) {
	for _, a := range s.Activities(ctx) {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (s *Store) Bookings(ctx context.Context) []*model.Booking {
	return decodeAll[model.Booking](s.GetAll(ctx, model.KindBookings))
}

// ConfirmedBookingsAt returns confirmed bookings at the exact
// (activity, date, time) coordinate, the capacity-consuming set for a slot.
func (s *Store) ConfirmedBookingsAt(ctx context.Context, activityID, date, timeStr string) []*model.Booking {
	var out []*model.Booking
	for _, b := range s.Bookings(ctx) {
		if b.Status == model.BookingStatusConfirmed &&
			b.ActivityID == activityID && b.Date == date && b.Time == timeStr {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) PromoCodes(ctx context.Context) []*model.PromoCode {
	return decodeAll[model.PromoCode](s.GetAll(ctx, model.KindPromoCodes))
}

func (s *Store) PromoCode(ctx context.Context, code string) (*model.PromoCode, bool) {
	for _, p := range s.PromoCodes(ctx) {
		if p.Code == code {
			return p, true
		}
	}
	return nil, false
}

func (s *Store) GiftCards(ctx context.Context) []*model.GiftCard {
	return decodeAll[model.GiftCard](s.GetAll(ctx, model.KindGiftCards))
}

func (s *Store) GiftCard(ctx context.Context, code string) (*model.GiftCard, bool) {
	for _, g := range s.GiftCards(ctx) {
		if g.Code == code {
			return g, true
		}
	}
	return nil, false
}

func (s *Store) Vouchers(ctx context.Context) []*model.GiftVoucher {
	return decodeAll[model.GiftVoucher](s.GetAll(ctx, model.KindVouchers))
}
