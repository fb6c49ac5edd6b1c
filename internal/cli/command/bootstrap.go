package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/extratls-go/internal/host"
	"github.com/yndnr/extratls-go/internal/host/config"
	"github.com/yndnr/extratls-go/internal/infra/confloader"
	"github.com/yndnr/extratls-go/internal/infra/tlsroots"
	"github.com/yndnr/extratls-go/internal/integration/extratls"
	"github.com/yndnr/extratls-go/internal/telemetry/logger"
	"github.com/yndnr/extratls-go/internal/telemetry/metric"
)

// integrations returns every integration the host sets up, in order.
func integrations() []host.Integration {
	return []host.Integration{
		extratls.New(),
	}
}

// state holds what the commands that start a host share.
type state struct {
	cfg    *config.HostConfig
	loader *confloader.Loader
	log    logger.Logger
	host   *host.Host
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.HostConfig, *confloader.Loader, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, loader, nil
}

// initLogger creates the process logger writing to the app's error stream.
func initLogger(c *cli.Context, cfg *config.HostConfig) (logger.Logger, error) {
	level := cfg.Log.Level
	if override := ParseGlobalFlags(c).LogLevel; override != "" {
		if !logger.ValidLevel(override) {
			return nil, fmt.Errorf("invalid --log-level %q", override)
		}
		level = override
	}

	log, err := logger.New(logger.Config{
		Level:  level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	logger.SetDefault(log)
	return log, nil
}

// newHost builds the host and registers every integration.
func newHost(cfg *config.HostConfig, loader *confloader.Loader, log logger.Logger) (*host.Host, error) {
	roots := tlsroots.NewPool
	if !cfg.TLS.SystemRoots {
		roots = tlsroots.NewEmptyPool
	}

	h := host.New(loader,
		host.WithLogger(log),
		host.WithMetrics(metric.NewRegistry()),
		host.WithTLSRegistry(tlsroots.NewRegistry(tlsroots.WithRootsFunc(roots))),
	)
	if err := h.Register(integrations()...); err != nil {
		return nil, err
	}
	return h, nil
}

// bootstrap loads configuration and builds a host ready for Setup.
func bootstrap(c *cli.Context) (*state, error) {
	cfg, loader, err := loadConfig(ParseGlobalFlags(c).Config)
	if err != nil {
		return nil, err
	}

	log, err := initLogger(c, cfg)
	if err != nil {
		return nil, err
	}

	h, err := newHost(cfg, loader, log)
	if err != nil {
		return nil, err
	}

	return &state{cfg: cfg, loader: loader, log: log, host: h}, nil
}
