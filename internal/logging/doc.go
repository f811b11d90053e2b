// Package logging provides structured logging for the gateway client.
//
// This package wraps zap with convenience functions for the logging
// patterns used throughout the client: general leveled logging plus
// specialized helpers for connection and frame traffic.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (dropped lines, ignored frames)
//   - Info: Normal operations (connections, state changes)
//   - Warn: Non-fatal issues (unanswered commands, retries)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Gateway connected",
//	    zap.String("url", "ws://192.168.1.40:7161/ws"),
//	)
//
// # Specialized Logging
//
// Connection Logging:
//
//	logging.LogConnection(remoteAddr, "websocket_connected")
//	logging.LogConnection(remoteAddr, "websocket_closed")
//
// Frame Logging:
//
//	logging.LogFrame("rx", verb, code, src, dst, payload)
//	logging.LogFrame("tx", verb, code, src, dst, payload)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// InitializeFromEnv reads the level from RAMSES_LOG_LEVEL instead.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
