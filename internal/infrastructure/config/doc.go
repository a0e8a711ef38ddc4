// Package config loads and validates the station configuration.
//
// Values are resolved in three layers: hardcoded defaults, the YAML file,
// then BENCHLINE_* environment variables, each overriding the last. The
// result is validated once at startup; nothing in this package is consulted
// again at runtime.
//
// Secrets (the JWT secret, broker credentials, the InfluxDB token) belong
// in environment variables, not in the file checked into a bench's
// provisioning repo.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
