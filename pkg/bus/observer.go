package bus

import "context"

// Notification reports that some widget instance changed the value under a
// storage key. The payload is advisory only: receivers must re-derive state
// from the canonical store rather than trust it, because cross-instance
// delivery carries no ordering guarantee relative to local writes.
type Notification struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// Notifier publishes a local store write to other widget instances.
type Notifier interface {
	NotifyChange(ctx context.Context, key string) error
}

// Observer delivers change notifications made by other instances. The
// underlying transport (Kafka, polling, IPC) is swappable without touching
// store logic.
type Observer interface {
	// Start blocks until ctx is cancelled, invoking notify for every foreign
	// change notification received.
	Start(ctx context.Context, notify func(Notification)) error
	Close() error
}

// NopNotifier is used when no cross-instance transport is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyChange(context.Context, string) error { return nil }
