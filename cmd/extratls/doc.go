// Package main provides the entry point for extratls.
//
// extratls loads extra trusted CA bundles and client certificates into
// the host's cached TLS client contexts, as configured in the
// extra_tls_certificates section.
//
// Usage:
//
//	extratls --config /path/to/config.yaml run [--metrics-addr :9464]
//	extratls --config /path/to/config.yaml check
//	extratls --config /path/to/config.yaml probe [--context NAME] HOST:PORT
//	extratls version
package main
