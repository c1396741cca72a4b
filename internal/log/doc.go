// Package log builds slog loggers that mask personal data.
//
// Company and people tables can carry contact columns next to the ones the
// reports read, and debug logs include row samples. SecureHandler masks:
//   - attributes whose key names personal data (email, phone, first_name,
//     street_address, ...), compared case-insensitively
//   - e-mail addresses, phone numbers and social security numbers found
//     inside any string value, error or Stringer
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("first row", "contact", "jane@example.com") // contact=***REDACTED***
package log
