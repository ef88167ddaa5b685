package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvKafkaBrokers     = "KAFKA_BROKERS"
	EnvKafkaChangeTopic = "KAFKA_CHANGE_TOPIC"
	EnvKafkaGroupID     = "KAFKA_GROUP_ID"

	EnvRemoteBaseURL = "REMOTE_BASE_URL"
	EnvRemoteTimeout = "REMOTE_TIMEOUT"

	EnvOrganizationID = "ORGANIZATION_ID"
	EnvVenueID        = "VENUE_ID"
	EnvVenueTimeZone  = "VENUE_TIME_ZONE"

	EnvFeeRate = "FEE_RATE"

	EnvDefaultOperatingDays     = "DEFAULT_OPERATING_DAYS"
	EnvDefaultStartOfDay        = "DEFAULT_START_OF_DAY"
	EnvDefaultEndOfDay          = "DEFAULT_END_OF_DAY"
	EnvDefaultSlotIntervalMin   = "DEFAULT_SLOT_INTERVAL_MIN"
	EnvDefaultAdvanceBookingMin = "DEFAULT_ADVANCE_BOOKING_MIN"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

func getEnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
