package availability

import (
	"context"
	"sync"
	"time"

	"slotbook/pkg/model"
)

type sessionKey struct {
	activityID string
	date       string
}

// sessionCacheTTL bounds how stale a live capacity view can get when no push
// transport feeds ApplySessionUpdate. Entries past it are refetched on read.
const sessionCacheTTL = 30 * time.Second

type sessionEntry struct {
	sessions  []model.Session
	fetchedAt time.Time
}

// sessionCache holds the last fetched live sessions per (activity, date).
// Push updates for known session ids are merged in place so a concurrent
// local read in the same cycle is not silently discarded; inserts and deletes
// invalidate the entry, forcing a full refetch on the next compute.
type sessionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[sessionKey]sessionEntry
}

func newSessionCache(ttl time.Duration) *sessionCache {
	return &sessionCache{ttl: ttl, entries: make(map[sessionKey]sessionEntry)}
}

func (c *sessionCache) get(key sessionKey, now time.Time) ([]model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(entry.fetchedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	out := make([]model.Session, len(entry.sessions))
	copy(out, entry.sessions)
	return out, true
}

func (c *sessionCache) put(key sessionKey, sessions []model.Session, now time.Time) {
	c.mu.Lock()
	c.entries[key] = sessionEntry{sessions: sessions, fetchedAt: now}
	c.mu.Unlock()
}

// merge replaces the matching record and reports whether it was found. The
// entry keeps its fetch timestamp; a push proves one record fresh, not the
// whole set.
func (c *sessionCache) merge(key sessionKey, s model.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	for i := range entry.sessions {
		if entry.sessions[i].ID == s.ID {
			entry.sessions[i] = s
			return true
		}
	}
	return false
}

func (c *sessionCache) invalidate(key sessionKey) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (e *Engine) fetchSessions(ctx context.Context, activityID, date string) ([]model.Session, error) {
	key := sessionKey{activityID: activityID, date: date}
	if sessions, ok := e.cache.get(key, e.now()); ok {
		return sessions, nil
	}

	sessions, err := e.sessions.List(ctx, activityID, date)
	if err != nil {
		return nil, err
	}
	e.cache.put(key, sessions, e.now())
	return sessions, nil
}

// ApplySessionUpdate handles a live push for a single session. Updates to a
// known record are merged by id; an unknown id means an insert happened
// remotely, so the cache entry is dropped and the next compute refetches.
func (e *Engine) ApplySessionUpdate(activityID, date string, s model.Session) {
	key := sessionKey{activityID: activityID, date: date}
	if !e.cache.merge(key, s) {
		e.cache.invalidate(key)
	}
}

// InvalidateSessions drops cached sessions after a remote insert or delete.
func (e *Engine) InvalidateSessions(activityID, date string) {
	e.cache.invalidate(sessionKey{activityID: activityID, date: date})
}
