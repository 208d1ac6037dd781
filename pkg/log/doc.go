/*
Package log provides structured logging for IMSErious using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support filtering
by severity level.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all IMSErious packages
  - Thread-safe concurrent writes

Log Levels:
  - Trace: Per-iteration scheduler decisions
  - Debug: Detailed debugging information
  - Info: General informational messages (execution completions)
  - Warn: Warning messages (spawn failures)
  - Error: Error messages (operation failed)

Context Loggers:
  - WithComponent: Add component name to all logs
  - WithHandler: Add a handler's event/user routing key

# Usage

Initializing the Logger:

	import "github.com/Freaky/IMSErious/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
	})

Structured Logging:

	log.Logger.Info().
		Str("program", "fdm").
		Int("rc", 0).
		Msg("Execution complete")

Component Loggers:

	serverLog := log.WithComponent("server")
	serverLog.Info().Msg("Listening")

	handlerLog := log.WithHandler("MessageNew", "freaky")
	handlerLog.Info().Msg("Notification received")

# Integration Points

This package integrates with:

  - pkg/handler: Logs scheduling decisions and child executions
  - pkg/server: Logs HTTP requests and dispatch results
  - pkg/supervisor: Logs handler lifecycle
  - cmd/imserious: Initializes logging from CLI flags

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - 12-Factor App Logs: https://12factor.net/logs
*/
package log
