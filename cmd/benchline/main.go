// Benchline Core - Lab Station Orchestrator
//
// This is the main entry point for the Benchline Core application.
// Benchline resolves the device inventory of a hardware test station:
//   - Capability catalog discovered from extension packages
//   - Device composition from model names and profiles
//   - Environment containment checks for incoming test requests
//   - HTTP/WebSocket API plus MQTT event stream for dashboards and CI
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/benchline/benchline-core/internal/caps"

	"github.com/benchline/benchline-core/internal/api"
	"github.com/benchline/benchline-core/internal/device"
	"github.com/benchline/benchline-core/internal/env"
	"github.com/benchline/benchline-core/internal/infrastructure/config"
	"github.com/benchline/benchline-core/internal/infrastructure/logging"
	"github.com/benchline/benchline-core/internal/infrastructure/mqtt"
	"github.com/benchline/benchline-core/internal/infrastructure/telemetry"
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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Benchline Core",
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

	// Build the capability catalog from every registered extension source.
	// Extension packages register themselves at init time via their blank
	// imports above.
	catalog := device.NewCatalog()
	catalog.Discover(device.DefaultSources())
	if catalog.Len() == 0 {
		return fmt.Errorf("capability catalog is empty: no extension sources registered")
	}
	log.Info("capability catalog built",
		"sources", catalog.Sources(),
		"descriptors", catalog.Len(),
		"models", len(catalog.Models()),
	)

	// Load the station's declared environment document
	envDoc, err := os.ReadFile(cfg.Environment.Path)
	if err != nil {
		return fmt.Errorf("reading environment document: %w", err)
	}
	tree, err := env.FromJSON(envDoc)
	if err != nil {
		return fmt.Errorf("parsing environment document: %w", err)
	}
	helper, err := env.NewHelper(tree, cfg.Station.Mirror)
	if err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}
	log.Info("environment loaded", "path", cfg.Environment.Path)

	// Connect to the MQTT event bus (optional)
	var events *mqtt.Client
	if cfg.Events.Enabled {
		events, err = mqtt.Connect(cfg.Events)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := events.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.Events.Broker.Host, cfg.Events.Broker.Port),
			"client_id", cfg.Events.Broker.ClientID,
		)

		events.SetLogger(log)
		events.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		events.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT event bus disabled")
	}

	// Connect to InfluxDB telemetry (optional)
	var telem *telemetry.Client
	if cfg.Telemetry.Enabled {
		telem, err = telemetry.Connect(cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := telem.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)

		telem.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("telemetry disabled")
	}

	// Compose and register the devices declared in the configuration
	manager := device.NewManager()
	if err := composeDevices(ctx, cfg, catalog, manager, events, telem, log); err != nil {
		return err
	}
	log.Info("device inventory composed", "devices", manager.Len())

	// Start the API server
	srv, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Station:   cfg.Station,
		Logger:    log,
		Catalog:   catalog,
		Manager:   manager,
		Env:       helper,
		MQTT:      events,
		Telemetry: telem,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, srv, events, telem); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Announce readiness on the bus
	if events != nil {
		ready := map[string]any{
			"station":   cfg.Station.ID,
			"devices":   manager.Len(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if pubErr := events.PublishJSON(mqtt.Topics{}.StationReady(), ready, true); pubErr != nil {
			log.Warn("failed to publish station ready", "error", pubErr)
		}
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)

	log.Info("Benchline Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BENCHLINE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BENCHLINE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// composeDevices builds every device declared in the configuration and
// registers it with the manager. A composition failure aborts startup:
// a station with a partial inventory would accept test requests it cannot
// serve.
func composeDevices(ctx context.Context, cfg *config.Config, catalog *device.Catalog, manager *device.Manager, events *mqtt.Client, telem *telemetry.Client, log *logging.Logger) error {
	composer := device.NewComposer(catalog)
	composer.SetLogger(log)

	for _, d := range cfg.Devices {
		devCfg := make(device.Config, len(d.Options)+2)
		for k, v := range d.Options {
			devCfg[k] = v
		}
		if d.Name != "" {
			devCfg["name"] = d.Name
		}
		if len(d.Profile) > 0 {
			profile := make(map[string]any, len(d.Profile))
			for alias, overrides := range d.Profile {
				profile[alias] = overrides
			}
			devCfg["profile"] = profile
		}

		start := time.Now()
		dev, err := composer.Build(ctx, d.Model, manager, devCfg)
		if telem != nil {
			var descriptors []string
			if dev != nil {
				descriptors = dev.Descriptors()
			}
			telem.WriteComposition(d.Model, descriptors, time.Since(start), err)
		}
		if err != nil {
			if events != nil {
				name := d.Name
				if name == "" {
					name = d.Model
				}
				failure := map[string]any{
					"model":     d.Model,
					"error":     err.Error(),
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				}
				if pubErr := events.PublishJSON(mqtt.Topics{}.DeviceSetupFailed(name), failure, false); pubErr != nil {
					log.Warn("failed to publish setup failure", "error", pubErr)
				}
			}
			return fmt.Errorf("composing device %q (model %q): %w", d.Name, d.Model, err)
		}

		if events != nil {
			evt := mqtt.DeviceRegisteredEvent{
				Name:         dev.Name(),
				Model:        dev.Model(),
				Capabilities: dev.Descriptors(),
				Plugin:       manager.IsPlugin(dev.Name()),
			}
			if pubErr := events.PublishDeviceRegistered(evt); pubErr != nil {
				log.Warn("failed to publish device registration", "error", pubErr)
			}
		}
	}

	if telem != nil {
		telem.WriteDeviceCount(manager.Len())
	}
	return nil
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, srv *api.Server, events *mqtt.Client, telem *telemetry.Client) error {
	if err := srv.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if events != nil {
		if err := events.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if telem != nil {
		if err := telem.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
