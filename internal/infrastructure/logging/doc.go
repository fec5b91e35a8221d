// Package logging is a thin slog wrapper shared by the daemon.
//
// It adds a trace tier below debug for the decoder's raw bit dumps;
// decode failure reasons ("bad message", "no preamble", "short
// message") log at debug. Both tiers are advisory and never affect
// decode control flow. Every record carries service and version
// fields, and the format, level and destination come from the logging
// section of config.yaml:
//
//	logging:
//	  level: info    # trace, debug, info, warn, error
//	  format: json   # json, text
//	  output: stdout # stdout, stderr
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting receiver", "revision", "B")
//	logger.With("component", "rf433").Debug("no preamble", "row", 3)
//
// Never log broker passwords or InfluxDB tokens.
package logging
