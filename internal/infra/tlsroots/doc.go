// Package tlsroots provides TLS certificate management for the host.
//
// This package handles trust material and the client contexts it is loaded into:
//
//   - roots.go: System certificates + extra CA bundle loading
//   - keypair.go: Client certificate chains with optionally encrypted keys
//   - context.go: Mutable client contexts handed out as tls.Config snapshots
//   - registry.go: Host-owned cache of default and per-cipher-list contexts
//
// The registry caches the argument-less defaults apart from contexts built
// with an explicit cipher list, even when both resolve to the same suites.
// Code that adds trust material to "the default context" must therefore
// load into both.
package tlsroots
