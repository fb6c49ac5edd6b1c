// Package metric provides Prometheus metrics for extratls.
//
// Metrics include:
//
//   - CA bundles loaded, per TLS context
//   - Client certificates loaded, per TLS context
//   - Integration setups, per integration and result
//
// Each Registry owns its own prometheus.Registry, so tests and embedded
// hosts never collide on the global default registerer.
package metric
