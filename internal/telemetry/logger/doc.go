// Package logger provides structured logging for extratls.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, configuration and the process default
//   - redact.go: Sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - Attributes with sensitive key names (password, secret, ...) are redacted
package logger
