// Package logging wraps log/slog with the station's defaults.
//
// Every entry carries service and version fields. Three formats are
// supported, selected by configuration: json for machine collection, text
// for plain files, and console (tint) for colourised interactive bench
// runs.
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//
// Never log secrets or tokens.
package logging
