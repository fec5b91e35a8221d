// Hunter RF Core - 433MHz remote decoder daemon
//
// This is the main entry point for the Hunter RF Core application.
// It receives raw pulse trains from an external 433MHz demodulator via
// MQTT, decodes Hunter ceiling-fan remote frames, and fans decoded
// events out to MQTT, SQLite history, and optionally InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/hunter-rf-core/migrations"

	"github.com/nerrad567/hunter-rf-core/internal/bridges/rf433"
	"github.com/nerrad567/hunter-rf-core/internal/decoder"
	"github.com/nerrad567/hunter-rf-core/internal/history"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/config"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/database"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/logging"
	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/hunter-rf-core/internal/pulse"
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

// healthInterval is the bridge health reporting cadence.
const healthInterval = 30 * time.Second

// retentionInterval is how often old history events are pruned.
const retentionInterval = 6 * time.Hour

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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hunter RF Core",
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

	// Event history repository
	repo := history.NewSQLiteRepository(db.DB)
	logHistorySummary(ctx, repo, log)

	// Prune old events in the background
	if cfg.Database.RetentionDays > 0 {
		go retentionLoop(ctx, repo, cfg.Database.RetentionDays, log)
	} else {
		log.Info("history retention disabled, keeping all events")
	}

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
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	mqttClient.SetLogger(log)

	// Set up MQTT logging callbacks
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

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

	// Start the RF bridge
	bridge, err := startRFBridge(ctx, cfg, mqttClient, repo, influxClient, log)
	if err != nil {
		return fmt.Errorf("starting RF bridge: %w", err)
	}
	defer func() {
		log.Info("stopping RF bridge")
		bridge.Stop()
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
	// 1. RF bridge
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("Hunter RF Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HUNTERRF_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HUNTERRF_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startRFBridge wires the pulse slicer, decoder, and output sinks into a
// running bridge.
func startRFBridge(ctx context.Context, cfg *config.Config, mqttClient *mqtt.Client, repo history.Repository, influxClient *influxdb.Client, log *logging.Logger) (*rf433.Bridge, error) {
	profile, err := decoder.ProfileFor(cfg.Decoder.Revision)
	if err != nil {
		return nil, fmt.Errorf("selecting decoder profile: %w", err)
	}
	profile.Inverted = cfg.Decoder.Inverted

	slicer := pulse.NewSlicer(pulse.Timing{
		ShortUS:     cfg.Radio.ShortPulseUS,
		LongUS:      cfg.Radio.LongPulseUS,
		ResetGapUS:  cfg.Radio.ResetGapUS,
		ToleranceUS: cfg.Radio.ToleranceUS,
	})

	opts := rf433.BridgeOptions{
		Config: rf433.BridgeConfig{
			ReceiverID:     cfg.Receiver.ID,
			QoS:            byte(cfg.MQTT.QoS), //nolint:gosec // QoS validated to 0-2
			Version:        version,
			HealthInterval: healthInterval,
		},
		MQTTClient: mqttClient,
		Slicer:     slicer,
		Decoder:    decoder.New(profile, log),
		Repository: repo,
		Logger:     log,
	}
	if influxClient != nil {
		opts.Metrics = influxClient
	}

	bridge, err := rf433.NewBridge(opts)
	if err != nil {
		return nil, fmt.Errorf("creating RF bridge: %w", err)
	}

	if err := bridge.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting RF bridge: %w", err)
	}
	log.Info("RF bridge started",
		"receiver_id", cfg.Receiver.ID,
		"revision", cfg.Decoder.Revision,
	)

	return bridge, nil
}

// logHistorySummary reports how many events are stored per remote. A
// summary failure is not fatal; the daemon can run without it.
func logHistorySummary(ctx context.Context, repo history.Repository, log *logging.Logger) {
	counts, err := repo.CountByRemote(ctx)
	if err != nil {
		log.Warn("could not summarise event history", "error", err)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	log.Info("event history loaded",
		"remotes", len(counts),
		"events", total,
	)
}

// retentionLoop prunes old history events on a fixed cadence until the
// context is cancelled. One sweep runs immediately at startup.
func retentionLoop(ctx context.Context, repo history.Repository, days int, log *logging.Logger) {
	pruneHistory(ctx, repo, days, log)

	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneHistory(ctx, repo, days, log)
		}
	}
}

// pruneHistory removes events older than the retention window.
func pruneHistory(ctx context.Context, repo history.Repository, days int, log *logging.Logger) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	removed, err := repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		log.Error("pruning event history failed", "error", err)
		return
	}
	if removed > 0 {
		log.Info("pruned event history",
			"removed", removed,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Bridge health is verified during Start() - it sets up its MQTT
	// subscription before returning successfully.

	return nil
}
