// Package logging provides a simple leveled logging interface for the
// subtitle burner service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information, including job state transitions
//   - INFO: General operational messages
//   - WARN: Warning conditions such as failed best-effort cleanup
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// DEBUG=true, and may be overridden at runtime with SetLevel.
package logging
