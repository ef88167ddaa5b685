package config

import "time"

const (
	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotbook_legacy"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultKafkaChangeTopic = "slotbook.store-changes"

	DefaultRemoteTimeout = 10 * time.Second

	DefaultVenueTimeZone = "UTC"

	// DefaultFeeRate is the booking fee applied to the discounted subtotal.
	DefaultFeeRate = 0.06

	DefaultPort = "8080"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// Built-in schedule defaults, the lowest tier of the three-tier merge:
// built-in < organization (env) < per-activity override.
const (
	DefaultStartOfDay        = "09:00"
	DefaultEndOfDay          = "18:00"
	DefaultSlotIntervalMin   = 60
	DefaultAdvanceBookingMin = 60
)

var DefaultOperatingDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const (
	DefaultLogLevel = "info"

	DefaultPaginationLimit = 20
	MaxPaginationLimit     = 100
)

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	if limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	if offset < 0 {
		return 0
	}
	return offset
}
