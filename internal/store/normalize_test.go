package store

import (
	"encoding/json"
	"testing"

	"slotbook/pkg/model"
)

func normalize(t *testing.T, kind model.Kind, raw string) map[string]any {
	t.Helper()
	out, ok := normalizeRecord(kind, json.RawMessage(raw))
	if !ok {
		t.Fatalf("record unexpectedly dropped: %s", raw)
	}
	var rec map[string]any
	if err := json.Unmarshal(out, &rec); err != nil {
		t.Fatalf("normalized output unparseable: %v", err)
	}
	return rec
}

func TestNormalizeRecordAliases(t *testing.T) {
	rec := normalize(t, model.KindActivities, `{
		"id": "a1",
		"basePrice": 30,
		"durationMin": 60,
		"organizationId": "org-1",
		"blockedDates": ["2026-01-01"],
		"schedule": {"startTime": "10:00", "endTime": "18:00", "slotInterval": 30, "advanceBookingMinutes": 120}
	}`)

	if rec["base_price"] != 30.0 {
		t.Errorf("base_price = %v", rec["base_price"])
	}
	if _, ok := rec["basePrice"]; ok {
		t.Error("camelCase alias survived normalization")
	}
	if rec["organization_id"] != "org-1" {
		t.Errorf("organization_id = %v", rec["organization_id"])
	}

	sched, ok := rec["schedule"].(map[string]any)
	if !ok {
		t.Fatal("schedule lost")
	}
	if sched["start_time"] != "10:00" || sched["slot_interval_min"] != 30.0 || sched["advance_booking_min"] != 120.0 {
		t.Errorf("schedule = %v", sched)
	}
}

func TestNormalizeRecordSnakeCaseWinsOverAlias(t *testing.T) {
	rec := normalize(t, model.KindActivities, `{"id":"a1","base_price": 25, "basePrice": 30}`)
	if rec["base_price"] != 25.0 {
		t.Errorf("canonical field overwritten by alias: %v", rec["base_price"])
	}
}

func TestNormalizeRecordNumericCoercion(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
		want  any
	}{
		{name: "string number", raw: `{"id":"a","capacity":"12"}`, field: "capacity", want: 12.0},
		{name: "dollar prefix", raw: `{"id":"a","base_price":"$49.50"}`, field: "base_price", want: 49.5},
		{name: "plain number passes through", raw: `{"id":"a","capacity":7}`, field: "capacity", want: 7.0},
		{name: "garbage dropped", raw: `{"id":"a","capacity":"lots"}`, field: "capacity", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := normalize(t, model.KindActivities, tt.raw)
			if got := rec[tt.field]; got != tt.want {
				t.Errorf("%s = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestNormalizeRecordDifficulty(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{`{"id":"a","difficulty":"beginner"}`, 1},
		{`{"id":"a","difficulty":"Hard"}`, 4},
		{`{"id":"a","difficulty":"extreme"}`, 5},
		{`{"id":"a","difficulty":"3"}`, 3},
		{`{"id":"a","difficulty":9}`, 5},
		{`{"id":"a","difficulty":0}`, 1},
		{`{"id":"a","difficulty":"unheard-of"}`, 3},
	}

	for _, tt := range tests {
		rec := normalize(t, model.KindActivities, tt.input)
		if rec["difficulty"] != tt.want {
			t.Errorf("difficulty for %s = %v, want %v", tt.input, rec["difficulty"], tt.want)
		}
	}
}

func TestNormalizeRecordIDRecovery(t *testing.T) {
	t.Run("_id adopted", func(t *testing.T) {
		rec := normalize(t, model.KindBookings, `{"_id":"b1"}`)
		if rec["id"] != "b1" {
			t.Errorf("id = %v", rec["id"])
		}
		if _, ok := rec["_id"]; ok {
			t.Error("_id key survived")
		}
	})

	t.Run("uuid adopted", func(t *testing.T) {
		rec := normalize(t, model.KindBookings, `{"uuid":"b2"}`)
		if rec["id"] != "b2" {
			t.Errorf("id = %v", rec["id"])
		}
	})

	t.Run("no id drops record", func(t *testing.T) {
		if _, ok := normalizeRecord(model.KindBookings, json.RawMessage(`{"name":"orphan"}`)); ok {
			t.Error("record without id should be dropped")
		}
	})

	t.Run("non-json drops record", func(t *testing.T) {
		if _, ok := normalizeRecord(model.KindBookings, json.RawMessage(`"just a string"`)); ok {
			t.Error("non-object record should be dropped")
		}
	})
}

func TestNormalizeRecordKindDefaults(t *testing.T) {
	t.Run("legacy booking gets status and participants", func(t *testing.T) {
		rec := normalize(t, model.KindBookings, `{"id":"b1","ticketCount":4}`)
		if rec["status"] != model.BookingStatusConfirmed {
			t.Errorf("status = %v", rec["status"])
		}
		if rec["participants"] != 4.0 {
			t.Errorf("participants = %v, ticketCount alias lost", rec["participants"])
		}
	})

	t.Run("booking without count defaults to one participant", func(t *testing.T) {
		rec := normalize(t, model.KindBookings, `{"id":"b1"}`)
		if rec["participants"] != 1.0 {
			t.Errorf("participants = %v", rec["participants"])
		}
	})

	t.Run("explicit status preserved", func(t *testing.T) {
		rec := normalize(t, model.KindBookings, `{"id":"b1","status":"cancelled"}`)
		if rec["status"] != "cancelled" {
			t.Errorf("status = %v", rec["status"])
		}
	})

	t.Run("negative capacity clamped", func(t *testing.T) {
		rec := normalize(t, model.KindActivities, `{"id":"a1","capacity":-3}`)
		if rec["capacity"] != 0.0 {
			t.Errorf("capacity = %v", rec["capacity"])
		}
	})

	t.Run("activity defaults to active", func(t *testing.T) {
		rec := normalize(t, model.KindActivities, `{"id":"a1"}`)
		if rec["active"] != true {
			t.Errorf("active = %v", rec["active"])
		}
	})
}
