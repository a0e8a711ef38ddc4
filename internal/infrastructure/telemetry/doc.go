// Package telemetry provides InfluxDB connectivity for Benchline Core.
//
// It wraps the official influxdb-client-go v2 library with Benchline-specific
// patterns for connection management, measurement writing, and health
// monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Device composition outcomes and durations
//   - Environment containment check verdicts
//   - Station device population over time
//
// # Usage
//
//	cfg := config.TelemetryConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "benchline",
//	    Bucket: "station",
//	}
//
//	client, err := telemetry.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteEnvCheck(true, 2*time.Millisecond)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size,
// flush_interval). This reduces network overhead on busy stations.
package telemetry
