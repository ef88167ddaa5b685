package config

import (
	"fmt"
	"regexp"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"strconv"
	"time"
)

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	KafkaBrokers     []string
	KafkaChangeTopic string
	KafkaGroupID     string

	RemoteBaseURL string
	RemoteTimeout time.Duration

	OrganizationID string
	VenueID        string
	VenueTimeZone  string

	FeeRate float64

	// Organization-level schedule defaults, the middle tier of the merge
	// order built-in < organization < per-activity override.
	DefaultOperatingDays     []string
	DefaultStartOfDay        string
	DefaultEndOfDay          string
	DefaultSlotIntervalMin   int
	DefaultAdvanceBookingMin int

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(component string) *Config {
	cfg := &Config{
		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		KafkaBrokers:     getEnvList(EnvKafkaBrokers, nil),
		KafkaChangeTopic: getEnvStr(EnvKafkaChangeTopic, DefaultKafkaChangeTopic),
		KafkaGroupID:     getEnvStr(EnvKafkaGroupID, ""),

		RemoteBaseURL: getEnvStr(EnvRemoteBaseURL, ""),
		RemoteTimeout: getEnvDuration(EnvRemoteTimeout, DefaultRemoteTimeout),

		OrganizationID: getEnvStr(EnvOrganizationID, ""),
		VenueID:        getEnvStr(EnvVenueID, ""),
		VenueTimeZone:  getEnvStr(EnvVenueTimeZone, DefaultVenueTimeZone),

		FeeRate: getEnvFloat(EnvFeeRate, DefaultFeeRate),

		DefaultOperatingDays:     getEnvList(EnvDefaultOperatingDays, DefaultOperatingDays),
		DefaultStartOfDay:        getEnvStr(EnvDefaultStartOfDay, DefaultStartOfDay),
		DefaultEndOfDay:          getEnvStr(EnvDefaultEndOfDay, DefaultEndOfDay),
		DefaultSlotIntervalMin:   getEnvNum(EnvDefaultSlotIntervalMin, DefaultSlotIntervalMin),
		DefaultAdvanceBookingMin: getEnvNum(EnvDefaultAdvanceBookingMin, DefaultAdvanceBookingMin),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Component: component,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

var wallClockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if !wallClockRegex.MatchString(cfg.DefaultStartOfDay) {
		errs = append(errs, fmt.Sprintf("DefaultStartOfDay must be in HH:MM format, got: %s", cfg.DefaultStartOfDay))
	}
	if !wallClockRegex.MatchString(cfg.DefaultEndOfDay) {
		errs = append(errs, fmt.Sprintf("DefaultEndOfDay must be in HH:MM format, got: %s", cfg.DefaultEndOfDay))
	}
	if cfg.DefaultStartOfDay >= cfg.DefaultEndOfDay {
		errs = append(errs, fmt.Sprintf("DefaultStartOfDay (%s) must precede DefaultEndOfDay (%s)", cfg.DefaultStartOfDay, cfg.DefaultEndOfDay))
	}

	if cfg.DefaultSlotIntervalMin <= 0 {
		errs = append(errs, fmt.Sprintf("DefaultSlotIntervalMin must be positive, got: %d", cfg.DefaultSlotIntervalMin))
	}
	if cfg.DefaultAdvanceBookingMin < 0 {
		errs = append(errs, fmt.Sprintf("DefaultAdvanceBookingMin cannot be negative, got: %d", cfg.DefaultAdvanceBookingMin))
	}

	if cfg.FeeRate < 0 || cfg.FeeRate >= 1 {
		errs = append(errs, fmt.Sprintf("FeeRate must be in [0, 1), got: %g", cfg.FeeRate))
	}

	if cfg.MongoURI != "" && !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if _, err := time.LoadLocation(cfg.VenueTimeZone); err != nil {
		errs = append(errs, fmt.Sprintf("VenueTimeZone is not a valid IANA zone: %s", cfg.VenueTimeZone))
	}

	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errs = append(errs, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}

	if len(errs) > 0 {
		msg := "Configuration validation failed:\n"
		for i, e := range errs {
			msg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", msg)
	}

	return nil
}

// EffectiveSchedule resolves the three-tier schedule merge for one activity:
// built-in defaults < organization defaults < explicit per-activity override.
// Zero-valued fields on the activity's schedule mean "no override".
func (cfg *Config) EffectiveSchedule(s model.Schedule) model.Schedule {
	out := s
	if len(out.OperatingDays) == 0 {
		out.OperatingDays = cfg.DefaultOperatingDays
	}
	if out.StartTime == "" {
		out.StartTime = cfg.DefaultStartOfDay
	}
	if out.EndTime == "" {
		out.EndTime = cfg.DefaultEndOfDay
	}
	if out.SlotIntervalMin <= 0 {
		out.SlotIntervalMin = cfg.DefaultSlotIntervalMin
	}
	if out.AdvanceBookingMin <= 0 {
		out.AdvanceBookingMin = cfg.DefaultAdvanceBookingMin
	}
	return out
}

// EffectiveTimeZone resolves the slot-rendering timezone: the activity's own
// zone when configured, otherwise the venue zone.
func (cfg *Config) EffectiveTimeZone(a *model.Activity) *time.Location {
	if a != nil && a.TimeZone != "" {
		if loc, err := time.LoadLocation(a.TimeZone); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(cfg.VenueTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"redis_addr", cfg.RedisAddr,
		"mongo_database", cfg.MongoDatabaseName,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_change_topic", cfg.KafkaChangeTopic,
		"remote_base_url", cfg.RemoteBaseURL,
		"organization_id", cfg.OrganizationID,
		"venue_id", cfg.VenueID,
		"venue_time_zone", cfg.VenueTimeZone,
		"fee_rate", cfg.FeeRate,
		"default_operating_days", cfg.DefaultOperatingDays,
		"default_start_of_day", cfg.DefaultStartOfDay,
		"default_end_of_day", cfg.DefaultEndOfDay,
		"default_slot_interval_min", cfg.DefaultSlotIntervalMin,
		"default_advance_booking_min", cfg.DefaultAdvanceBookingMin,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
	)
}
