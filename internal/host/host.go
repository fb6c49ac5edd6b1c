// Package host runs integrations against the host's shared state.
//
// The host owns the configuration, the cached TLS contexts, logging and
// metrics. Integrations are set up once, synchronously, in registration
// order. A failing integration does not stop the others.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yndnr/extratls-go/internal/infra/confloader"
	"github.com/yndnr/extratls-go/internal/infra/tlsroots"
	"github.com/yndnr/extratls-go/internal/telemetry/logger"
	"github.com/yndnr/extratls-go/internal/telemetry/metric"
)

var (
	// ErrInvalidConfig marks an integration whose configuration section was rejected.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrDuplicateDomain is returned when two integrations share a domain.
	ErrDuplicateDomain = errors.New("host: duplicate integration domain")

	// ErrAlreadySetup is returned by a second call to Setup.
	ErrAlreadySetup = errors.New("host: setup already ran")
)

// Integration is a unit of startup work that reads its own configuration
// section and acts on the host's shared state.
type Integration interface {
	// Domain is the integration's configuration key.
	Domain() string
	Setup(ctx context.Context, h *Host) error
}

// Host holds the state integrations are set up against.
type Host struct {
	conf    *confloader.Loader
	tls     *tlsroots.Registry
	log     logger.Logger
	metrics *metric.Registry

	mu           sync.Mutex
	integrations []Integration
	domains      map[string]struct{}
	setupDone    bool
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Host) {
		h.log = l
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// WithTLSRegistry sets the TLS context registry.
func WithTLSRegistry(r *tlsroots.Registry) Option {
	return func(h *Host) {
		h.tls = r
	}
}

// New creates a host over an already loaded configuration.
func New(conf *confloader.Loader, opts ...Option) *Host {
	h := &Host{
		conf:    conf,
		domains: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.log == nil {
		h.log = logger.Default()
	}
	if h.metrics == nil {
		h.metrics = metric.NewRegistry()
	}
	if h.tls == nil {
		h.tls = tlsroots.NewRegistry()
	}
	return h
}

// Config returns the loaded configuration.
func (h *Host) Config() *confloader.Loader { return h.conf }

// TLS returns the host's cached TLS contexts.
func (h *Host) TLS() *tlsroots.Registry { return h.tls }

// Logger returns the host logger.
func (h *Host) Logger() logger.Logger { return h.log }

// Metrics returns the metrics registry.
func (h *Host) Metrics() *metric.Registry { return h.metrics }

// Register adds integrations in order.
func (h *Host) Register(integrations ...Integration) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, in := range integrations {
		domain := in.Domain()
		if _, ok := h.domains[domain]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDomain, domain)
		}
		h.domains[domain] = struct{}{}
		h.integrations = append(h.integrations, in)
	}
	return nil
}

// Setup runs every registered integration once. Errors are logged,
// collected and returned joined; the remaining integrations still run
// unless ctx is done.
func (h *Host) Setup(ctx context.Context) error {
	h.mu.Lock()
	if h.setupDone {
		h.mu.Unlock()
		return ErrAlreadySetup
	}
	h.setupDone = true
	integrations := make([]Integration, len(h.integrations))
	copy(integrations, h.integrations)
	h.mu.Unlock()

	var errs []error
	for _, in := range integrations {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		domain := in.Domain()
		log := h.log.WithContext(ctx).With("integration", domain)
		log.Debug("setting up integration")

		err := in.Setup(ctx, h)
		switch {
		case err == nil:
			h.metrics.IntegrationSetups.WithLabelValues(domain, metric.ResultOK).Inc()
			log.Info("integration set up")
		case errors.Is(err, ErrInvalidConfig):
			h.metrics.IntegrationSetups.WithLabelValues(domain, metric.ResultInvalidConfig).Inc()
			log.Error("invalid config for integration", "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", domain, err))
		default:
			h.metrics.IntegrationSetups.WithLabelValues(domain, metric.ResultFailed).Inc()
			log.Error("error during integration setup", "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", domain, err))
		}
	}

	return errors.Join(errs...)
}
