// Package config provides the host's own configuration.
//
// This package defines the host configuration structure and validation:
//
//   - spec.go: HostConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of the host sections
//
// Integration sections (such as extra_tls_certificates) live in the same
// file but are decoded and validated by the integrations themselves.
// Configuration is loaded via internal/infra/confloader.
package config
