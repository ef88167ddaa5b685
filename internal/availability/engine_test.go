package availability

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"slotbook/internal/store"
	"slotbook/pkg/bus"
	"slotbook/pkg/config"
	"slotbook/pkg/kv"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		OrganizationID:           "org-1",
		VenueTimeZone:            "UTC",
		DefaultOperatingDays:     []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
		DefaultStartOfDay:        "09:00",
		DefaultEndOfDay:          "18:00",
		DefaultSlotIntervalMin:   60,
		DefaultAdvanceBookingMin: 60,
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			Output:    io.Discard,
			Component: "test",
		}),
	}
}

type sessionStub struct {
	listFunc func(ctx context.Context, activityID, date string) ([]model.Session, error)
	calls    int
}

func (s *sessionStub) List(ctx context.Context, activityID, date string) ([]model.Session, error) {
	s.calls++
	if s.listFunc != nil {
		return s.listFunc(ctx, activityID, date)
	}
	return nil, nil
}

// 2026-01-05 is a Monday; the fixed "now" sits a few days before it.
const (
	testDate = "2026-01-05"
)

func fixedNow() time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, sessions SessionSource) (*Engine, *store.Store) {
	t.Helper()
	cfg := testConfig()
	st := store.New(cfg, kv.NewMemory(), store.DefaultSources(kv.NewMemory(), nil), bus.New(), nil)
	e := New(cfg, st, sessions)
	e.now = fixedNow
	return e, st
}

func testActivity() *model.Activity {
	return &model.Activity{
		ID:             "a1",
		OrganizationID: "org-1",
		Name:           "Vault Heist",
		Capacity:       8,
		DurationMin:    60,
		Active:         true,
		Schedule: model.Schedule{
			StartTime:       "10:00",
			EndTime:         "16:00",
			SlotIntervalMin: 60,
		},
	}
}

func seedBooking(t *testing.T, st *store.Store, id, timeStr string, participants int, status string) {
	t.Helper()
	_, err := st.Save(context.Background(), model.KindBookings, model.Booking{
		ID:             id,
		OrganizationID: "org-1",
		ActivityID:     "a1",
		Date:           testDate,
		Time:           timeStr,
		Participants:   participants,
		Status:         status,
	})
	if err != nil {
		t.Fatalf("seed booking %s: %v", id, err)
	}
}

func slotAt(t *testing.T, slots []model.Slot, timeStr string) model.Slot {
	t.Helper()
	for _, s := range slots {
		if s.Time == timeStr {
			return s
		}
	}
	t.Fatalf("no slot at %s in %+v", timeStr, slots)
	return model.Slot{}
}

func TestComputeSlotsProcedural(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	slots := e.ComputeSlots(context.Background(), testActivity(), testDate)

	// 10:00 through 15:00: the 16:00 candidate would end past closing.
	if len(slots) != 6 {
		t.Fatalf("got %d slots: %+v", len(slots), slots)
	}
	if slots[0].Time != "10:00 AM" || slots[len(slots)-1].Time != "3:00 PM" {
		t.Errorf("slot range %s .. %s", slots[0].Time, slots[len(slots)-1].Time)
	}
	for _, s := range slots {
		if !s.Available || s.Spots != 8 {
			t.Errorf("slot %s: available=%v spots=%d", s.Time, s.Available, s.Spots)
		}
		if s.SessionID != "" {
			t.Errorf("procedural slot %s carries a session id", s.Time)
		}
	}
}

func TestComputeSlotsSubtractsConfirmedBookings(t *testing.T) {
	e, st := newTestEngine(t, nil)
	ctx := context.Background()

	seedBooking(t, st, "b1", "10:00 AM", 5, model.BookingStatusConfirmed)

	slots := e.ComputeSlots(ctx, testActivity(), testDate)
	ten := slotAt(t, slots, "10:00 AM")
	if ten.Spots != 3 || !ten.Available {
		t.Fatalf("after 5 of 8 booked: spots=%d available=%v", ten.Spots, ten.Available)
	}

	seedBooking(t, st, "b2", "10:00 AM", 3, model.BookingStatusConfirmed)

	slots = e.ComputeSlots(ctx, testActivity(), testDate)
	ten = slotAt(t, slots, "10:00 AM")
	if ten.Spots != 0 || ten.Available {
		t.Fatalf("after full consumption: spots=%d available=%v", ten.Spots, ten.Available)
	}

	// Other slots keep full capacity.
	if eleven := slotAt(t, slots, "11:00 AM"); eleven.Spots != 8 {
		t.Errorf("11:00 AM spots = %d", eleven.Spots)
	}
}

func TestComputeSlotsIgnoresNonConsumingBookings(t *testing.T) {
	e, st := newTestEngine(t, nil)

	seedBooking(t, st, "b1", "10:00 AM", 4, model.BookingStatusCancelled)
	seedBooking(t, st, "b2", "10:00 AM", 4, model.BookingStatusPending)

	slots := e.ComputeSlots(context.Background(), testActivity(), testDate)
	if ten := slotAt(t, slots, "10:00 AM"); ten.Spots != 8 {
		t.Errorf("non-confirmed bookings consumed capacity: spots=%d", ten.Spots)
	}
}

func TestComputeSlotsOverbookedClampsToZero(t *testing.T) {
	e, st := newTestEngine(t, nil)

	seedBooking(t, st, "b1", "10:00 AM", 12, model.BookingStatusConfirmed)

	slots := e.ComputeSlots(context.Background(), testActivity(), testDate)
	if ten := slotAt(t, slots, "10:00 AM"); ten.Spots != 0 {
		t.Errorf("spots = %d, want clamp at zero", ten.Spots)
	}
}

func TestComputeSlotsZeroCapacity(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	activity := testActivity()
	activity.Capacity = 0

	slots := e.ComputeSlots(context.Background(), activity, testDate)
	if len(slots) == 0 {
		t.Fatal("zero-capacity activity still generates its slot grid")
	}
	for _, s := range slots {
		if s.Available || s.Spots != 0 {
			t.Errorf("slot %s: available=%v spots=%d", s.Time, s.Available, s.Spots)
		}
	}
}

func TestComputeSlotsBlockedDateWins(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	activity := testActivity()
	activity.BlockedDates = []string{testDate}
	// Blocked beats even the explicit allow-list.
	activity.CustomAvailableDates = []string{testDate}

	if slots := e.ComputeSlots(context.Background(), activity, testDate); len(slots) != 0 {
		t.Fatalf("blocked date produced %d slots", len(slots))
	}
}

func TestComputeSlotsOperatingDays(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	activity := testActivity()
	activity.Schedule.OperatingDays = []string{"Tuesday"}

	// 2026-01-05 is a Monday.
	if slots := e.ComputeSlots(ctx, activity, testDate); len(slots) != 0 {
		t.Fatalf("off-day produced %d slots", len(slots))
	}

	// The allow-list admits an off-day.
	activity.CustomAvailableDates = []string{testDate}
	if slots := e.ComputeSlots(ctx, activity, testDate); len(slots) == 0 {
		t.Fatal("custom available date not admitted")
	}
}

func TestComputeSlotsAdvanceCutoffToday(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	activity := testActivity()
	activity.Schedule.StartTime = "09:00"
	activity.Schedule.EndTime = "18:00"
	activity.Schedule.AdvanceBookingMin = 60

	// now = 12:00 on 2026-01-01, so today's slots before 13:00 are gone.
	slots := e.ComputeSlots(context.Background(), activity, "2026-01-01")
	if len(slots) != 5 {
		t.Fatalf("got %d slots: %+v", len(slots), slots)
	}
	if slots[0].Time != "1:00 PM" {
		t.Errorf("first bookable slot = %s", slots[0].Time)
	}
}

func TestComputeSlotsNoCutoffOnFutureDates(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	activity := testActivity()
	activity.Schedule.AdvanceBookingMin = 60

	slots := e.ComputeSlots(context.Background(), activity, testDate)
	if slots[0].Time != "10:00 AM" {
		t.Errorf("future date lost its morning slots: first = %s", slots[0].Time)
	}
}

func TestComputeSlotsInvalidInput(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	if slots := e.ComputeSlots(ctx, nil, testDate); len(slots) != 0 {
		t.Error("nil activity produced slots")
	}
	if slots := e.ComputeSlots(ctx, testActivity(), "tomorrow"); len(slots) != 0 {
		t.Error("malformed date produced slots")
	}
}

func TestComputeSlotsLiveSessionsTakePrecedence(t *testing.T) {
	stub := &sessionStub{
		listFunc: func(context.Context, string, string) ([]model.Session, error) {
			return []model.Session{
				{ID: "s2", StartTime: "14:00", CapacityRemaining: 0, CapacityTotal: 8},
				{ID: "s1", StartTime: "10:00", CapacityRemaining: 4, CapacityTotal: 8},
			}, nil
		},
	}
	e, st := newTestEngine(t, stub)

	// A confirmed booking that would matter procedurally must be ignored in
	// session mode: the collaborator's remaining capacity is authoritative.
	seedBooking(t, st, "b1", "10:00 AM", 3, model.BookingStatusConfirmed)

	slots := e.ComputeSlots(context.Background(), testActivity(), testDate)
	if len(slots) != 2 {
		t.Fatalf("got %d slots: %+v", len(slots), slots)
	}

	// Sorted by start time despite arrival order.
	if slots[0].Time != "10:00 AM" || slots[1].Time != "2:00 PM" {
		t.Errorf("order = %s, %s", slots[0].Time, slots[1].Time)
	}
	if slots[0].SessionID != "s1" || slots[0].Spots != 4 || !slots[0].Available {
		t.Errorf("session slot = %+v", slots[0])
	}
	if slots[1].Spots != 0 || slots[1].Available {
		t.Errorf("drained session slot = %+v", slots[1])
	}
}

func TestComputeSlotsSessionStartFormats(t *testing.T) {
	stub := &sessionStub{
		listFunc: func(context.Context, string, string) ([]model.Session, error) {
			return []model.Session{
				{ID: "s1", StartTime: "2026-01-05T10:00:00Z", CapacityRemaining: 2},
				{ID: "s2", StartTime: "11:30", CapacityRemaining: 2},
				{ID: "s3", StartTime: "whenever", CapacityRemaining: 2},
			}, nil
		},
	}
	e, _ := newTestEngine(t, stub)

	slots := e.ComputeSlots(context.Background(), testActivity(), testDate)
	if len(slots) != 2 {
		t.Fatalf("got %d slots, malformed session should be skipped: %+v", len(slots), slots)
	}
	if slots[0].Time != "10:00 AM" || slots[1].Time != "11:30 AM" {
		t.Errorf("times = %s, %s", slots[0].Time, slots[1].Time)
	}
}

func TestComputeSlotsFallsBackOnSessionError(t *testing.T) {
	stub := &sessionStub{
		listFunc: func(context.Context, string, string) ([]model.Session, error) {
			return nil, errors.New("collaborator down")
		},
	}
	e, _ := newTestEngine(t, stub)

	slots := e.ComputeSlots(context.Background(), testActivity(), testDate)
	if len(slots) != 6 {
		t.Fatalf("procedural fallback yielded %d slots", len(slots))
	}
}

func TestComputeSlotsFallsBackOnEmptySessions(t *testing.T) {
	stub := &sessionStub{}
	e, _ := newTestEngine(t, stub)

	slots := e.ComputeSlots(context.Background(), testActivity(), testDate)
	if len(slots) != 6 {
		t.Fatalf("empty session list should fall through to procedural, got %d", len(slots))
	}
}

func TestComputeSlotsActivityTimeZoneCutoff(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	activity := testActivity()
	activity.TimeZone = "Pacific/Auckland" // UTC+13 in January

	// 12:00 UTC on 2026-01-01 is 01:00 on 2026-01-02 in Auckland, so the
	// queried date is "today" there and everything before 02:00 is cut off;
	// the whole 10:00-16:00 grid survives.
	slots := e.ComputeSlots(context.Background(), activity, "2026-01-02")
	if len(slots) != 6 {
		t.Fatalf("got %d slots: %+v", len(slots), slots)
	}
}
