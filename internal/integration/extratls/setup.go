package extratls

import (
	"context"
	"fmt"

	"github.com/yndnr/extratls-go/internal/host"
	"github.com/yndnr/extratls-go/internal/infra/tlsroots"
	"github.com/yndnr/extratls-go/internal/telemetry/logger"
	"github.com/yndnr/extratls-go/internal/telemetry/metric"
)

// Target is a TLS context trust material can be loaded into.
type Target interface {
	Name() string
	LoadVerifyLocations(caFile string) error
	LoadCertChain(certFile, keyFile string, password []byte) error
}

// Targets groups the contexts that receive CA bundles and client
// certificates.
type Targets struct {
	CA   []Target
	Cert []Target
}

// DefaultTargets resolves the host's cached default contexts.
//
// The host caches a context built with an explicit python_default cipher
// list apart from the argument-less default, and some clients ask for the
// explicit one, so both receive the material.
func DefaultTargets(r *tlsroots.Registry) Targets {
	ca := []Target{
		r.DefaultContext(),
		r.ClientContext(tlsroots.CipherPythonDefault),
	}

	cert := append([]Target{}, ca...)
	cert = append(cert,
		r.DefaultNoVerifyContext(),
		r.NoVerifyContext(tlsroots.CipherPythonDefault),
	)

	return Targets{CA: ca, Cert: cert}
}

// Apply loads every CA bundle into every CA target, then every client
// certificate into every certificate target, in configuration order.
// The first load error is returned; material loaded before it stays.
// m may be nil.
func Apply(cfg *Config, targets Targets, log logger.Logger, m *metric.Registry) error {
	for _, caFile := range cfg.CA {
		log.Info("adding trusted CA", "path", caFile)
		for _, t := range targets.CA {
			if err := t.LoadVerifyLocations(caFile); err != nil {
				return fmt.Errorf("load CA %s into %s: %w", caFile, t.Name(), err)
			}
			if m != nil {
				m.CALoaded.WithLabelValues(t.Name()).Inc()
			}
		}
	}

	for _, c := range cfg.Client {
		log.Info("adding client certificate",
			"cert", c.Cert,
			"key", c.Key,
			"encrypted", c.Encrypted(),
		)
		for _, t := range targets.Cert {
			if err := t.LoadCertChain(c.Cert, c.Key, c.passwordBytes()); err != nil {
				return fmt.Errorf("load client certificate %s into %s: %w", c.Cert, t.Name(), err)
			}
			if m != nil {
				m.ClientCertsLoaded.WithLabelValues(t.Name()).Inc()
			}
		}
	}

	return nil
}

// Integration is the extra_tls_certificates host integration.
type Integration struct{}

// New creates the integration.
func New() *Integration {
	return &Integration{}
}

// Domain implements host.Integration.
func (*Integration) Domain() string {
	return Domain
}

// Setup implements host.Integration. Configuration is decoded and
// validated in full before any trust material is loaded.
func (*Integration) Setup(ctx context.Context, h *host.Host) error {
	cfg, err := Decode(h.Config())
	if err != nil {
		return err
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	log := h.Logger().WithContext(ctx).With("integration", Domain)
	return Apply(cfg, DefaultTargets(h.TLS()), log, h.Metrics())
}

var _ host.Integration = (*Integration)(nil)
