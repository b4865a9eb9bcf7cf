// Package logging provides structured logging for the mesoscaler daemon.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent attributes for post-hoc analysis. The control loop runs
// unattended; when an application scales at 3am the log must answer which
// dimension crossed its band, what the hysteresis counters were, and what
// instance count was requested.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Persistent attributes (app ID, trigger mode, dimension, cycle)
//   - Log rotation with configurable size limits
//   - Optional gzip compression for rotated logs
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger] type
// uses Go's slog internally which is designed for concurrent access. The
// [RotatingWriter] type uses a mutex to protect file operations during
// rotation. Child loggers created via With* methods share the underlying
// writer safely.
//
// # Basic Usage
//
// Create a logger writing to a log directory:
//
//	logger, err := logging.NewLogger("/var/log/mesoscaler", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Debug("sampled task statistics", "tasks", 4)
//	logger.Info("scale request submitted", "instances", 8)
//	logger.Warn("cycle skipped", "error", err.Error())
//
// # Persistent Attributes
//
// Create child loggers with attributes that appear on every entry:
//
//	appLogger := logger.WithApp("/billing/worker")
//	modeLogger := appLogger.WithMode("and")
//	cpuLogger := modeLogger.WithDimension("cpu")
//
//	cpuLogger.Debug("fetched value", "value", 72.4)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"fetched value","app":"/billing/worker","mode":"and","dimension":"cpu","value":72.4}
package logging
