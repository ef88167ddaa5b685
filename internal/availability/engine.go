// Package availability produces ranked bookable slots for an (activity, date)
// pair. Authoritative live sessions from the remote collaborator take
// precedence; otherwise slots are generated procedurally from the activity's
// recurrence rule, subtracting capacity already consumed by confirmed
// bookings. The engine only reads store state and returns ephemeral values -
// it never mutates activities or bookings.
package availability

import (
	"context"
	"sort"
	"time"

	"slotbook/internal/store"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	"slotbook/pkg/model"
)

// SessionSource is the live-session feed boundary. Implementations include
// the HTTP collaborator client; tests inject function stubs.
type SessionSource interface {
	List(ctx context.Context, activityID, date string) ([]model.Session, error)
}

type Engine struct {
	cfg      *config.Config
	store    *store.Store
	sessions SessionSource
	cache    *sessionCache
	now      func() time.Time
}

func New(cfg *config.Config, st *store.Store, sessions SessionSource) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		cache:    newSessionCache(sessionCacheTTL),
		now:      time.Now,
	}
}

const dateLayout = "2006-01-02"

// ComputeSlots returns the bookable slots for the activity on the given ISO
// date, sorted by start time. Any error fetching live sessions triggers the
// procedural fallback rather than surfacing.
func (e *Engine) ComputeSlots(ctx context.Context, activity *model.Activity, date string) []model.Slot {
	if activity == nil {
		return []model.Slot{}
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return []model.Slot{}
	}

	if e.sessions != nil {
		sessions, err := e.fetchSessions(ctx, activity.ID, date)
		if err != nil {
			e.cfg.Log.Warn("live session fetch failed, using procedural slots",
				"activity_id", activity.ID,
				"date", date,
				"error", err,
			)
		} else if len(sessions) > 0 {
			return e.sessionSlots(sessions)
		}
	}

	return e.proceduralSlots(ctx, activity, date)
}

// sessionSlots maps live sessions 1:1 onto slots, carrying the session id
// through so checkout can request an atomic capacity decrement.
func (e *Engine) sessionSlots(sessions []model.Session) []model.Slot {
	slots := make([]model.Slot, 0, len(sessions))
	for _, s := range sessions {
		minutes, err := parseSessionStart(s.StartTime)
		if err != nil {
			continue
		}
		spots := s.CapacityRemaining
		if spots < 0 {
			spots = 0
		}
		slots = append(slots, model.Slot{
			Time:      clock.FormatClock12(minutes),
			Available: spots > 0,
			Spots:     spots,
			SessionID: s.ID,
		})
	}
	sortSlots(slots)
	return slots
}

func (e *Engine) proceduralSlots(ctx context.Context, activity *model.Activity, date string) []model.Slot {
	// Blocked always wins, even over the explicit allow-list.
	if containsDate(activity.BlockedDates, date) {
		return []model.Slot{}
	}

	sched := e.cfg.EffectiveSchedule(activity.Schedule)

	if !e.admissible(activity, sched, date) {
		return []model.Slot{}
	}

	startMin, err := clock.ParseClock24(sched.StartTime)
	if err != nil {
		return []model.Slot{}
	}
	endMin, err := clock.ParseClock24(sched.EndTime)
	if err != nil {
		return []model.Slot{}
	}

	loc := e.cfg.EffectiveTimeZone(activity)
	now := e.now().In(loc)
	isToday := now.Format(dateLayout) == date
	cutoff := now.Hour()*60 + now.Minute() + sched.AdvanceBookingMin

	var slots []model.Slot
	for candidate := startMin; candidate <= endMin; candidate += sched.SlotIntervalMin {
		if candidate+activity.DurationMin > endMin {
			break
		}
		if isToday && candidate < cutoff {
			continue
		}

		timeStr := clock.FormatClock12(candidate)
		consumed := 0
		for _, b := range e.store.ConfirmedBookingsAt(ctx, activity.ID, date, timeStr) {
			consumed += b.Participants
		}
		spots := activity.Capacity - consumed
		if spots < 0 {
			spots = 0
		}

		slots = append(slots, model.Slot{
			Time:      timeStr,
			Available: spots > 0,
			Spots:     spots,
		})
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	return slots
}

// admissible applies the admission test: the explicit allow-list wins, then
// the weekday must be an operating day.
func (e *Engine) admissible(activity *model.Activity, sched model.Schedule, date string) bool {
	if containsDate(activity.CustomAvailableDates, date) {
		return true
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	weekday := day.Weekday().String()
	for _, d := range sched.OperatingDays {
		if d == weekday {
			return true
		}
	}
	return false
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}

// parseSessionStart accepts the collaborator's session start formats: an
// RFC 3339 instant or a bare 24h wall-clock string.
func parseSessionStart(s string) (int, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Hour()*60 + t.Minute(), nil
	}
	return clock.ParseClock24(s)
}

func sortSlots(slots []model.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, errA := clock.ParseClock12(slots[i].Time)
		b, errB := clock.ParseClock12(slots[j].Time)
		if errA != nil || errB != nil {
			return false
		}
		return a < b
	})
}
