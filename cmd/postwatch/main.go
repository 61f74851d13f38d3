// Postwatch Core - Mailbox Fleet Registry
//
// This is the main entry point for the Postwatch Core service. Postwatch
// tracks a fleet of mailbox-mounted sensor devices: device registration,
// motion reports, health telemetry, and fleet presence.
//
// Devices report over HTTP (see internal/api) or via an MQTT broker
// (see internal/ingest). Accepted reports are persisted in SQLite and
// optionally forwarded to InfluxDB for dashboards.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/postwatch/postwatch-core/migrations"

	"github.com/postwatch/postwatch-core/internal/api"
	"github.com/postwatch/postwatch-core/internal/device"
	"github.com/postwatch/postwatch-core/internal/infrastructure/config"
	"github.com/postwatch/postwatch-core/internal/infrastructure/database"
	"github.com/postwatch/postwatch-core/internal/infrastructure/influxdb"
	"github.com/postwatch/postwatch-core/internal/infrastructure/logging"
	"github.com/postwatch/postwatch-core/internal/infrastructure/mqtt"
	"github.com/postwatch/postwatch-core/internal/ingest"
	"github.com/postwatch/postwatch-core/internal/location"
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
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Postwatch Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
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
	db, err := database.Open(database.Config{
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

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	deviceRepo := device.NewSQLiteRepository(db.DB)
	locationRepo := location.NewSQLiteRepository(db.DB)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Connect to MQTT broker and start the ingestion bridge (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
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

		bridge, bridgeErr := startIngestBridge(cfg, mqttClient, deviceRepo, influxClient, log)
		if bridgeErr != nil {
			return fmt.Errorf("starting ingest bridge: %w", bridgeErr)
		}
		defer func() {
			log.Info("stopping ingest bridge")
			bridge.Stop()
		}()
	} else {
		log.Info("MQTT ingest disabled")
	}

	// Start the HTTP API server
	apiServer, err := startAPIServer(ctx, cfg, deviceRepo, locationRepo, db, influxClient, log)
	if err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Ingest bridge + MQTT (if enabled)
	// 3. InfluxDB (if enabled)
	// 4. Database

	log.Info("Postwatch Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses POSTWATCH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("POSTWATCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startIngestBridge wires the MQTT ingestion bridge to the device
// repository and optional telemetry sink, then starts it.
//
// Parameters:
//   - cfg: Application configuration
//   - mqttClient: Connected MQTT client
//   - deviceRepo: Device persistence layer
//   - influxClient: Telemetry sink (may be nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *ingest.Bridge: Running bridge
//   - error: If the bridge fails to start
func startIngestBridge(cfg *config.Config, mqttClient *mqtt.Client, deviceRepo device.Repository, influxClient *influxdb.Client, log *logging.Logger) (*ingest.Bridge, error) {
	opts := ingest.BridgeOptions{
		Subscriber: mqttClient,
		Repository: deviceRepo,
		Logger:     log,
		QoS:        byte(cfg.MQTT.QoS),
	}
	// A typed nil *influxdb.Client must not become a non-nil interface.
	if influxClient != nil {
		opts.Telemetry = influxClient
	}

	bridge, err := ingest.NewBridge(opts)
	if err != nil {
		return nil, fmt.Errorf("creating ingest bridge: %w", err)
	}

	if err := bridge.Start(); err != nil {
		return nil, err
	}
	log.Info("ingest bridge started")

	return bridge, nil
}

// startAPIServer builds and starts the HTTP API server.
//
// Parameters:
//   - ctx: Context for startup
//   - cfg: Application configuration
//   - deviceRepo: Device persistence layer
//   - locationRepo: Location/mailbox persistence layer
//   - db: Database handle for the health endpoint
//   - influxClient: Telemetry sink (may be nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *api.Server: Running server
//   - error: If the server fails to start
func startAPIServer(ctx context.Context, cfg *config.Config, deviceRepo device.Repository, locationRepo location.Repository, db *database.DB, influxClient *influxdb.Client, log *logging.Logger) (*api.Server, error) {
	deps := api.Deps{
		Config:       cfg.API,
		Security:     cfg.Security,
		Fleet:        cfg.Fleet,
		Logger:       log,
		DeviceRepo:   deviceRepo,
		LocationRepo: locationRepo,
		DB:           db,
		Version:      version,
	}
	if influxClient != nil {
		deps.Telemetry = influxClient
	}

	server, err := api.New(deps)
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting API server: %w", err)
	}
	log.Info("API server started",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"tls", cfg.API.TLS.Enabled,
	)

	return server, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
