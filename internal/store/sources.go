package store

import (
	"encoding/json"
	"fmt"

	"slotbook/pkg/kv"
	"slotbook/pkg/model"
)

// CanonicalKey is the storage key the store reads and writes for a kind.
func CanonicalKey(orgID string, kind model.Kind) string {
	return fmt.Sprintf("slotbook:v%d:%s:%s", model.EnvelopeVersion, orgID, kind)
}

// Legacy key layouts, oldest format last. The v1 widget wrote bare flat
// arrays under the kind name; v2 scoped them per organization but still
// without an envelope.
func legacyFlatKey(_ string, kind model.Kind) string {
	return string(kind)
}

func legacyScopedKey(orgID string, kind model.Kind) string {
	return fmt.Sprintf("widget:%s:%s", orgID, kind)
}

// Source is one candidate location for legacy data, queried in priority
// order until a source yields at least one valid record. Sources are injected
// at store construction; there is no ambient key enumeration.
type Source struct {
	Name    string
	Backend kv.Backend
	Key     func(orgID string, kind model.Kind) string
	// Decode turns the raw stored bytes into individual records. Legacy tiers
	// stored flat arrays; newer tiers store envelopes.
	Decode func(raw []byte) ([]json.RawMessage, error)
}

func decodeFlatArray(raw []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeEnvelope(raw []byte) ([]json.RawMessage, error) {
	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return env.Items, nil
}

// DefaultSources builds the ordered fallback chain: the scoped v2 key on the
// primary backend, the bare v1 key on the primary backend, then the legacy
// document tier when one is configured.
func DefaultSources(primary kv.Backend, legacyDocs kv.Backend) []Source {
	sources := []Source{
		{
			Name:    "v2-scoped",
			Backend: primary,
			Key:     legacyScopedKey,
			Decode:  decodeFlatArray,
		},
		{
			Name:    "v1-flat",
			Backend: primary,
			Key:     legacyFlatKey,
			Decode:  decodeFlatArray,
		},
	}
	if legacyDocs != nil {
		sources = append(sources, Source{
			Name:    "legacy-docs",
			Backend: legacyDocs,
			Key:     legacyScopedKey,
			Decode:  decodeFlatArray,
		})
	}
	return sources
}
