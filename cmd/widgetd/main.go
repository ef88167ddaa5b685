package main

import (
	"context"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"slotbook/internal/availability"
	"slotbook/internal/checkout"
	"slotbook/internal/checkout/validator"
	"slotbook/internal/store"
	"slotbook/internal/widget/handler"
	"slotbook/pkg/app"
	"slotbook/pkg/bus"
	"slotbook/pkg/client"
	"slotbook/pkg/config"
	"slotbook/pkg/kv"
	"slotbook/pkg/model"
)

const ServiceName = "widgetd"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting widget core")

	backend := initBackend(cfg)
	legacyDocs := initLegacyDocs(cfg)

	eventBus := bus.New()
	notifier, feed := initChangeFeed(cfg)

	entityStore := store.New(cfg, backend, store.DefaultSources(backend, legacyDocs), eventBus, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if feed != nil {
		go func() {
			if err := feed.Start(ctx, entityStore.HandleNotification); err != nil && ctx.Err() == nil {
				cfg.Log.Error("change feed stopped", "error", err)
			}
		}()
		defer func() {
			if err := feed.Close(); err != nil {
				cfg.Log.Warn("change feed close failed", "error", err)
			}
		}()
	}

	remote := client.NewClient(cfg.RemoteBaseURL, cfg.RemoteTimeout)

	var sessions availability.SessionSource
	if cfg.RemoteBaseURL != "" {
		sessions = remote.Sessions
		seedCatalog(ctx, cfg, entityStore, remote)
	}
	engine := availability.New(cfg, entityStore, sessions)

	contactValidator := validator.NewContactValidator(cfg.Log)
	checkoutService := checkout.NewService(cfg, entityStore, remote, contactValidator)

	widgetHandler := handler.NewWidgetHandler(entityStore, engine, checkoutService, cfg.Log)

	storageCheck := func(ctx context.Context) error {
		_, _, err := backend.Get(ctx, store.CanonicalKey(cfg.OrganizationID, model.KindActivities))
		return err
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, widgetHandler, storageCheck)

	cfg.Log.Info("Widget core initialized",
		"organization_id", cfg.OrganizationID,
		"venue_id", cfg.VenueID,
		"live_sessions", sessions != nil,
		"change_feed", feed != nil,
	)
	serverApp.Run()
}

// initBackend picks the canonical envelope backend: shared Redis when
// reachable, otherwise an in-process map. The in-process fallback keeps a
// single instance fully functional; it just cannot share state.
func initBackend(cfg *config.Config) kv.Backend {
	redisBackend, err := kv.NewRedis(kv.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		cfg.Log.Warn("Redis unreachable, using in-process storage",
			"addr", cfg.RedisAddr,
			"error", err,
		)
		return kv.NewMemory()
	}

	cfg.Log.Info("Connected to Redis", "addr", cfg.RedisAddr)
	return redisBackend
}

// initLegacyDocs connects the legacy document tier used only as a migration
// source. Absence is not an error.
func initLegacyDocs(cfg *config.Config) kv.Backend {
	if cfg.MongoURI == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err == nil {
		err = mongoClient.Ping(ctx, nil)
	}
	if err != nil {
		cfg.Log.Warn("legacy document tier unreachable, skipping migration source",
			"error", err,
		)
		return nil
	}

	cfg.Log.Info("Connected to legacy document tier", "database", cfg.MongoDatabaseName)
	return kv.NewMongo(mongoClient, cfg.MongoDatabaseName)
}

// seedCatalog bootstraps an empty activity store from the collaborator's
// venue catalog. Existing local state always wins; this only fills a cold
// start so the widget is usable before any admin-side sync has run.
func seedCatalog(ctx context.Context, cfg *config.Config, entityStore *store.Store, remote *client.Client) {
	if len(entityStore.Activities(ctx)) > 0 {
		return
	}

	activities, err := remote.Venue.ListActivities(ctx, cfg.VenueID, true)
	if err != nil {
		cfg.Log.Warn("catalog seed skipped, venue fetch failed",
			"venue_id", cfg.VenueID,
			"error", err,
		)
		return
	}
	if len(activities) == 0 {
		return
	}

	if err := entityStore.ReplaceAll(ctx, model.KindActivities, activities); err != nil {
		cfg.Log.Warn("catalog seed failed", "error", err)
		return
	}
	cfg.Log.Info("Seeded activity catalog from venue", "count", len(activities))
}

// initChangeFeed wires the cross-instance change transport. Without brokers
// the store falls back to a no-op notifier and stays purely local.
func initChangeFeed(cfg *config.Config) (bus.Notifier, *bus.KafkaFeed) {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("No brokers configured, cross-instance propagation disabled")
		return bus.NopNotifier{}, nil
	}

	feed, err := bus.NewKafkaFeed(bus.KafkaFeedConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaChangeTopic,
		GroupID: cfg.KafkaGroupID,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Warn("change feed unavailable, cross-instance propagation disabled",
			"error", err,
		)
		return bus.NopNotifier{}, nil
	}

	cfg.Log.Info("Change feed connected",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaChangeTopic,
		"origin", feed.Origin(),
	)
	return feed, feed
}
