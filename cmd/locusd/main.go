// Locus Core - home robot tracking telemetry service
//
// This is the main entry point for the Locus telemetry core. It ingests
// robot and mobile positions over MQTT and HTTP, buffers and batch-persists
// them to SQLite, derives semantic zone locations, and fans events out to
// websocket viewers in realtime.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/locus-home/locus-core/migrations"

	"github.com/locus-home/locus-core/internal/api"
	"github.com/locus-home/locus-core/internal/event"
	"github.com/locus-home/locus-core/internal/eventbus"
	"github.com/locus-home/locus-core/internal/geo"
	"github.com/locus-home/locus-core/internal/home"
	"github.com/locus-home/locus-core/internal/infrastructure/config"
	"github.com/locus-home/locus-core/internal/infrastructure/database"
	"github.com/locus-home/locus-core/internal/infrastructure/influxdb"
	"github.com/locus-home/locus-core/internal/infrastructure/logging"
	"github.com/locus-home/locus-core/internal/infrastructure/mqtt"
	"github.com/locus-home/locus-core/internal/ingest"
	"github.com/locus-home/locus-core/internal/prediction"
	"github.com/locus-home/locus-core/internal/telemetry"
	"github.com/locus-home/locus-core/internal/zone"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// defaultHomeID is the home bootstrapped on first start. Locus runs as
// a single-home deployment; multi-home rows exist for shared brokers.
const defaultHomeID = 1

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Locus Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	homeRepo := home.NewRepository(db, log)
	zoneRepo := zone.NewRepository(db, log)
	positionRepo := telemetry.NewRepository(db, log)
	predictionRepo := prediction.NewRepository(db, log)
	eventRepo := event.NewRepository(db, log)

	if err := bootstrapHome(ctx, homeRepo, cfg.Home.Name, log); err != nil {
		return fmt.Errorf("bootstrapping home: %w", err)
	}

	// Coordinate transformer
	transformer := geo.NewTransformer(
		cfg.Tracking.ProcessNoise,
		cfg.Tracking.MeasurementNoise,
		cfg.Tracking.SmoothingWindow,
	)
	if cfg.Tracking.Reference.Latitude != 0 || cfg.Tracking.Reference.Longitude != 0 {
		transformer.SetReferencePoint(geo.Coordinate{
			Latitude:  cfg.Tracking.Reference.Latitude,
			Longitude: cfg.Tracking.Reference.Longitude,
		})
		log.Info("reference point configured",
			"lat", cfg.Tracking.Reference.Latitude,
			"lng", cfg.Tracking.Reference.Longitude,
		)
	}

	// Zone resolver over the bootstrapped home's geometry
	zones, err := zoneRepo.ListByHome(ctx, defaultHomeID)
	if err != nil {
		return fmt.Errorf("loading zones: %w", err)
	}
	resolver := zone.NewResolver(zones, cfg.Tracking.MaxZoneDistance)
	log.Info("zone resolver initialised", "zones", len(zones))

	// Event bus
	bus := eventbus.New(log)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional position mirror)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Location buffer
	var buffer *telemetry.Buffer
	if influxClient != nil {
		buffer = telemetry.NewBuffer(cfg.Buffer.BatchSize, cfg.GetFlushInterval(),
			positionRepo, resolver, bus, influxClient, log)
	} else {
		buffer = telemetry.NewBuffer(cfg.Buffer.BatchSize, cfg.GetFlushInterval(),
			positionRepo, resolver, bus, nil, log)
	}
	buffer.Start()
	defer buffer.Stop(context.Background())
	log.Info("location buffer started",
		"batch_size", cfg.Buffer.BatchSize,
		"flush_interval", cfg.GetFlushInterval(),
	)

	// MQTT ingestion
	router := ingest.NewRouter(homeRepo, zoneRepo, predictionRepo, eventRepo, bus, mqttClient, log)
	router.SetZoneReloader(defaultHomeID, resolver)

	topics := mqtt.Topics{}
	qos := byte(cfg.MQTT.QoS)
	for _, pattern := range []string{
		topics.AllPollutionPredictions(),
		topics.AllCleaning(),
		topics.AllEdgeStatus(),
	} {
		if err := mqttClient.Subscribe(pattern, qos, router.HandleMessage); err != nil {
			return fmt.Errorf("subscribing to %s: %w", pattern, err)
		}
		log.Info("subscribed", "topic", pattern)
	}

	// API server
	health := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}
	if influxClient != nil {
		health["influxdb"] = influxClient
	}

	server, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Buffer:      buffer,
		Positions:   positionRepo,
		Predictions: predictionRepo,
		Events:      eventRepo,
		Transformer: transformer,
		Health:      health,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	api.RegisterFanout(bus, server.Hub())

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Location buffer (final flush)
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("Locus Core stopped")
	return nil
}

// bootstrapHome creates the default home on first start so zones and
// devices have a parent row to attach to.
func bootstrapHome(ctx context.Context, repo *home.Repository, name string, log *logging.Logger) error {
	_, err := repo.GetHome(ctx, defaultHomeID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, home.ErrHomeNotFound) {
		return err
	}

	if name == "" {
		name = "Home"
	}
	h := &home.Home{Name: name}
	if err := repo.CreateHome(ctx, h); err != nil {
		return err
	}
	log.Info("created default home", "id", h.ID, "name", h.Name)
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LOCUS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LOCUS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
