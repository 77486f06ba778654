// Package logging provides structured logging for docon.
//
// This package wraps a zap logger with convenience functions for the events
// that matter when driving a field device: connection changes, coil reads and
// writes, and retries after transport faults.
//
// # Log Levels
//
//   - Debug: Coil reads and writes with unit id and address
//   - Info: Connection events, settings changes
//   - Warn: Retries, reconnects, settings that could not be saved
//   - Error: Failures surfaced to the operator
//
// # Configuration
//
// Logging is silent by default so the console output stays readable. Enable
// it with the --log-level flag or the DOCON_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Log lines are written to stderr in console format.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and SetLogger
// are meant to be called once during start-up.
package logging
