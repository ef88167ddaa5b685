package store

import (
	"encoding/json"
	"strconv"
	"strings"

	"slotbook/pkg/model"
)

// Field aliases written by the legacy widget, which used camelCase keys.
// Normalization rewrites them so one decode path serves every source tier.
var fieldAliases = map[string]string{
	"basePrice":             "base_price",
	"durationMin":           "duration_min",
	"organizationId":        "organization_id",
	"blockedDates":          "blocked_dates",
	"customAvailableDates":  "custom_available_dates",
	"ticketTypes":           "ticket_types",
	"timeZone":              "time_zone",
	"activityId":            "activity_id",
	"ticketTypeId":          "ticket_type_id",
	"unitPrice":             "unit_price",
	"promoCode":             "promo_code",
	"sessionId":             "session_id",
	"operatingDays":         "operating_days",
	"startTime":             "start_time",
	"endTime":               "end_time",
	"slotInterval":          "slot_interval_min",
	"slotIntervalMin":       "slot_interval_min",
	"advanceBookingMinutes": "advance_booking_min",
	"advanceBookingMin":     "advance_booking_min",
	"giftCardBalance":       "balance",
	"validFrom":             "valid_from",
	"validTo":               "valid_to",
	"maxUses":               "max_uses",
	"ticketCount":           "participants",
}

// Legacy difficulty labels mapped to the current 1-5 scale.
var difficultyScale = map[string]int{
	"beginner": 1,
	"easy":     2,
	"medium":   3,
	"moderate": 3,
	"hard":     4,
	"expert":   5,
	"extreme":  5,
}

// Numeric fields coerced with string-to-number fallback, per kind.
var numericFields = map[model.Kind][]string{
	model.KindActivities: {"capacity", "base_price", "duration_min"},
	model.KindBookings:   {"participants", "total"},
	model.KindVouchers:   {"amount"},
	model.KindGiftCards:  {"balance"},
	model.KindPromoCodes: {"rate", "amount", "max_uses", "uses"},
}

// normalizeRecord coerces one raw record into canonical shape. It returns
// false when the record lacks a usable identifier and must be dropped.
// Malformed values never abort a read; they are fixed up or defaulted.
func normalizeRecord(kind model.Kind, raw json.RawMessage) (json.RawMessage, bool) {
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}

	for legacy, canonical := range fieldAliases {
		if v, ok := rec[legacy]; ok {
			if _, taken := rec[canonical]; !taken {
				rec[canonical] = v
			}
			delete(rec, legacy)
		}
	}
	if sched, ok := rec["schedule"].(map[string]any); ok {
		for legacy, canonical := range fieldAliases {
			if v, ok := sched[legacy]; ok {
				if _, taken := sched[canonical]; !taken {
					sched[canonical] = v
				}
				delete(sched, legacy)
			}
		}
	}

	if recordID(rec) == "" {
		return nil, false
	}

	for _, field := range numericFields[kind] {
		if v, ok := rec[field]; ok {
			if n, ok := coerceNumber(v); ok {
				rec[field] = n
			} else {
				delete(rec, field)
			}
		}
	}

	applyKindDefaults(kind, rec)

	out, err := json.Marshal(rec)
	if err != nil {
		return nil, false
	}
	return out, true
}

// recordID digs out a usable identifier under any of the historical key
// names. Records without one are discarded.
func recordID(rec map[string]any) string {
	for _, key := range []string{"id", "_id", "uuid"} {
		if v, ok := rec[key].(string); ok && v != "" {
			if key != "id" {
				rec["id"] = v
				delete(rec, key)
			}
			return v
		}
	}
	return ""
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(n, "$"))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func applyKindDefaults(kind model.Kind, rec map[string]any) {
	switch kind {
	case model.KindActivities:
		if _, ok := rec["active"]; !ok {
			rec["active"] = true
		}
		if v, ok := rec["difficulty"]; ok {
			rec["difficulty"] = normalizeDifficulty(v)
		}
		if n, ok := rec["capacity"].(float64); ok && n < 0 {
			rec["capacity"] = float64(0)
		}
	case model.KindBookings:
		// Legacy bookings predate the status field; they were all live.
		if _, ok := rec["status"]; !ok {
			rec["status"] = model.BookingStatusConfirmed
		}
		if _, ok := rec["participants"]; !ok {
			rec["participants"] = float64(1)
		}
	case model.KindPromoCodes, model.KindGiftCards:
		if _, ok := rec["active"]; !ok {
			rec["active"] = true
		}
	}
}

// normalizeDifficulty maps legacy encodings to the current 1-5 scale: label
// strings via the lookup table, numbers clamped into range.
func normalizeDifficulty(v any) int {
	switch d := v.(type) {
	case string:
		if n, ok := difficultyScale[strings.ToLower(strings.TrimSpace(d))]; ok {
			return n
		}
		if n, err := strconv.Atoi(strings.TrimSpace(d)); err == nil {
			return clampDifficulty(n)
		}
		return 3
	case float64:
		return clampDifficulty(int(d))
	}
	return 3
}

func clampDifficulty(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}
