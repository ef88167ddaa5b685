// Package store owns the canonical envelope for every entity kind: a
// versioned, normalized local cache of activities, bookings, vouchers, gift
// cards and promo codes. All writes in the widget core go through its mutator
// methods, which are the only code permitted to bump envelope version and
// updatedAt. Reads never fail: malformed or legacy records are normalized or
// silently dropped.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"slotbook/pkg/bus"
	"slotbook/pkg/config"
	"slotbook/pkg/kv"
	"slotbook/pkg/model"

	"github.com/google/uuid"
)

type Store struct {
	cfg      *config.Config
	backend  kv.Backend
	sources  []Source
	bus      *bus.Bus
	notifier bus.Notifier
	orgID    string
	// instanceID stamps envelope provenance (updatedBy).
	instanceID string
	now        func() time.Time

	mu sync.Mutex
}

func New(cfg *config.Config, backend kv.Backend, sources []Source, b *bus.Bus, notifier bus.Notifier) *Store {
	if notifier == nil {
		notifier = bus.NopNotifier{}
	}
	return &Store{
		cfg:        cfg,
		backend:    backend,
		sources:    sources,
		bus:        b,
		notifier:   notifier,
		orgID:      cfg.OrganizationID,
		instanceID: "widget-" + uuid.NewString(),
		now:        time.Now,
	}
}

// GetAll returns every valid record of a kind. It never fails: backend errors
// and malformed payloads degrade to the legacy scan, and an empty result when
// nothing yields valid data.
func (s *Store) GetAll(ctx context.Context, kind model.Kind) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, items := s.load(ctx, kind)
	return items
}

// Save inserts the entity, or replaces the record sharing its id. An entity
// without an id gets one assigned. The normalized record is returned even
// when the backend write fails; persistence is best-effort by design of the
// widget (UI responsiveness over durability).
func (s *Store) Save(ctx context.Context, kind model.Kind, entity any) (json.RawMessage, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}

	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if id, _ := rec["id"].(string); id == "" {
		rec["id"] = uuid.NewString()
	}
	raw, _ = json.Marshal(rec)

	normalized, ok := normalizeRecord(kind, raw)
	if !ok {
		return nil, errInvalidRecord(kind)
	}
	id := mustID(normalized)

	s.mu.Lock()
	env, items := s.load(ctx, kind)
	replaced := false
	for i, item := range items {
		if mustID(item) == id {
			items[i] = normalized
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, normalized)
	}
	persisted := s.persistQuiet(ctx, kind, env, items)
	s.mu.Unlock()

	if persisted {
		s.announce(ctx, kind)
	}
	return normalized, nil
}

// Update merges a partial field set into the record with the given id.
func (s *Store) Update(ctx context.Context, kind model.Kind, id string, partial map[string]any) (json.RawMessage, error) {
	s.mu.Lock()
	normalized, persisted, err := s.updateLocked(ctx, kind, id, partial)
	s.mu.Unlock()

	if persisted {
		s.announce(ctx, kind)
	}
	return normalized, err
}

func (s *Store) updateLocked(ctx context.Context, kind model.Kind, id string, partial map[string]any) (json.RawMessage, bool, error) {
	env, items := s.load(ctx, kind)
	for i, item := range items {
		if mustID(item) != id {
			continue
		}

		var rec map[string]any
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		for k, v := range partial {
			if k == "id" {
				continue // identity is immutable
			}
			rec[k] = v
		}
		merged, _ := json.Marshal(rec)
		normalized, ok := normalizeRecord(kind, merged)
		if !ok {
			return nil, false, errInvalidRecord(kind)
		}

		items[i] = normalized
		return normalized, s.persistQuiet(ctx, kind, env, items), nil
	}

	return nil, false, errNotFound(kind, id)
}

func (s *Store) Delete(ctx context.Context, kind model.Kind, id string) error {
	s.mu.Lock()
	env, items := s.load(ctx, kind)
	for i, item := range items {
		if mustID(item) == id {
			items = append(items[:i], items[i+1:]...)
			persisted := s.persistQuiet(ctx, kind, env, items)
			s.mu.Unlock()
			if persisted {
				s.announce(ctx, kind)
			}
			return nil
		}
	}
	s.mu.Unlock()
	return errNotFound(kind, id)
}

// ReplaceAll swaps the entire collection, normalizing each entry. Used when a
// remote refetch supersedes local state wholesale.
func (s *Store) ReplaceAll(ctx context.Context, kind model.Kind, entities any) error {
	raw, err := json.Marshal(entities)
	if err != nil {
		return err
	}
	incoming, err := decodeFlatArray(raw)
	if err != nil {
		return err
	}

	items := make([]json.RawMessage, 0, len(incoming))
	for _, item := range incoming {
		if normalized, ok := normalizeRecord(kind, item); ok {
			items = append(items, normalized)
		}
	}

	s.mu.Lock()
	env, _ := s.load(ctx, kind)
	persisted := s.persistQuiet(ctx, kind, env, items)
	s.mu.Unlock()

	if persisted {
		s.announce(ctx, kind)
	}
	return nil
}

// HandleNotification maps an external storage-change notification back to its
// entity kind and re-emits the logical event, so subscribers cannot tell a
// remote write from a local one. Unrecognized keys are ignored.
func (s *Store) HandleNotification(n bus.Notification) {
	if kind, ok := s.kindForKey(n.Key); ok {
		s.bus.Emit(kind.EventName())
	}
}

func (s *Store) kindForKey(key string) (model.Kind, bool) {
	for _, kind := range []model.Kind{
		model.KindActivities, model.KindBookings, model.KindVouchers,
		model.KindGiftCards, model.KindPromoCodes,
	} {
		if key == CanonicalKey(s.orgID, kind) {
			return kind, true
		}
		// Legacy keys stay recognized for notifications from old widgets.
		for _, src := range s.sources {
			if key == src.Key(s.orgID, kind) {
				return kind, true
			}
		}
	}
	return "", false
}

// load implements the read path: canonical key first, then the ordered legacy
// sources, adopting and persisting the first source that yields at least one
// valid record so subsequent reads skip the scan.
func (s *Store) load(ctx context.Context, kind model.Kind) (model.Envelope, []json.RawMessage) {
	key := CanonicalKey(s.orgID, kind)

	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.cfg.Log.Warn("canonical read failed, falling back to legacy scan",
			"kind", kind,
			"error", err,
		)
	}
	if found && err == nil {
		if items, err := decodeEnvelope(raw); err == nil {
			var env model.Envelope
			_ = json.Unmarshal(raw, &env)
			return env, normalizeAll(kind, items)
		}
		s.cfg.Log.Warn("canonical envelope unparseable, falling back to legacy scan", "kind", kind)
	}

	for _, src := range s.sources {
		raw, found, err := src.Backend.Get(ctx, src.Key(s.orgID, kind))
		if err != nil || !found {
			continue
		}
		decoded, err := src.Decode(raw)
		if err != nil {
			continue
		}
		items := normalizeAll(kind, decoded)
		if len(items) == 0 {
			continue
		}

		s.cfg.Log.Info("recovered entities from legacy source",
			"kind", kind,
			"source", src.Name,
			"count", len(items),
		)
		// Self-healing warm-up: rewrite the canonical envelope so the next
		// read never touches legacy keys again.
		env := model.Envelope{OrganizationID: s.orgID}
		s.persistQuiet(ctx, kind, env, items)
		return env, items
	}

	return model.Envelope{OrganizationID: s.orgID}, nil
}

func normalizeAll(kind model.Kind, raw []json.RawMessage) []json.RawMessage {
	items := make([]json.RawMessage, 0, len(raw))
	for _, item := range raw {
		if normalized, ok := normalizeRecord(kind, item); ok {
			items = append(items, normalized)
		}
	}
	return items
}

// announce fans a successful persist out: a synchronous bus emit for
// in-process subscribers, then a best-effort cross-instance notification.
// Callers must have released the store mutex first, since subscribers
// typically re-read the store from inside their handler.
func (s *Store) announce(ctx context.Context, kind model.Kind) {
	s.bus.Emit(kind.EventName())

	if err := s.notifier.NotifyChange(ctx, CanonicalKey(s.orgID, kind)); err != nil {
		s.cfg.Log.Warn("cross-instance notification failed",
			"kind", kind,
			"error", err,
		)
	}
}

func (s *Store) persistQuiet(ctx context.Context, kind model.Kind, prev model.Envelope, items []json.RawMessage) bool {
	env := model.Envelope{
		Version:        prev.Version + 1,
		UpdatedAt:      s.now(),
		UpdatedBy:      s.instanceID,
		OrganizationID: s.orgID,
		Items:          items,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		s.cfg.Log.Error("envelope marshal failed", "kind", kind, "error", err)
		return false
	}

	if err := s.backend.Set(ctx, CanonicalKey(s.orgID, kind), raw); err != nil {
		s.cfg.Log.Error("store write failed, returning in-memory result",
			"kind", kind,
			"version", env.Version,
			"error", err,
		)
		return false
	}
	return true
}

func mustID(raw json.RawMessage) string {
	var rec struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &rec)
	return rec.ID
}
