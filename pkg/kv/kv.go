// Package kv abstracts the byte-level storage the entity store persists
// envelopes to. Backends are interchangeable: an in-memory map for tests and
// single-instance use, Redis as the shared canonical store across widget
// instances, and a read-mostly Mongo adapter over the legacy document tier.
package kv

import "context"

type Backend interface {
	// Get returns the stored value and whether the key exists. A missing key
	// is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
