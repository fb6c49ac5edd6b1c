package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "extratls"

// Setup results used for the "result" label.
const (
	ResultOK            = "ok"
	ResultInvalidConfig = "invalid_config"
	ResultFailed        = "failed"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	CALoaded          *prometheus.CounterVec
	ClientCertsLoaded *prometheus.CounterVec
	IntegrationSetups *prometheus.CounterVec
}

// NewRegistry creates a metrics registry with process and Go collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		CALoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ca_loaded_total",
			Help:      "CA bundles loaded into a TLS context.",
		}, []string{"context"}),
		ClientCertsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_certs_loaded_total",
			Help:      "Client certificate chains loaded into a TLS context.",
		}, []string{"context"}),
		IntegrationSetups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integration_setups_total",
			Help:      "Integration setup attempts by result.",
		}, []string{"integration", "result"}),
	}

	reg.MustRegister(
		r.CALoaded,
		r.ClientCertsLoaded,
		r.IntegrationSetups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
