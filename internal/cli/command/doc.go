// Package command provides the extratls command-line interface.
//
// Commands are built with urfave/cli/v2:
//
//   - root.go: App, global flags and shared output helpers
//   - bootstrap.go: configuration, logger and host construction
//   - run.go: set up integrations and optionally serve metrics
//   - check.go: validate the extra_tls_certificates section
//   - probe.go: handshake with a server through a cached context
//   - version.go: build information
package command
