package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/extratls-go/internal/infra/buildinfo"
	"github.com/yndnr/extratls-go/internal/infra/shutdown"
)

const shutdownTimeout = 10 * time.Second

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Set up all integrations, then serve metrics until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve Prometheus metrics on this address (overrides metrics.addr)",
				EnvVars: []string{"EXTRATLS_METRICS_ADDR"},
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	st, err := bootstrap(c)
	if err != nil {
		return err
	}
	if addr := c.String("metrics-addr"); addr != "" {
		st.cfg.Metrics.Addr = addr
	}

	st.log.Info("starting extratls",
		"version", buildinfo.Version,
		"config", ParseGlobalFlags(c).Config)

	if err := st.host.Setup(c.Context); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	st.log.Info("setup complete", "contexts", len(st.host.TLS().Contexts()))

	if st.cfg.Metrics.Addr == "" {
		return nil
	}
	return serveMetrics(c.Context, st)
}

// serveMetrics serves the metrics endpoint until ctx ends or a shutdown
// signal arrives.
func serveMetrics(ctx context.Context, st *state) error {
	ln, err := net.Listen("tcp", st.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("listen metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(st.cfg.Metrics.Path, st.host.Metrics().Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sh := shutdown.NewHandler(shutdownTimeout)
	sh.OnShutdown(func(ctx context.Context) error {
		st.log.Info("shutting down metrics server")
		return srv.Shutdown(ctx)
	})

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		st.log.Info("metrics server listening",
			"addr", ln.Addr().String(),
			"path", st.cfg.Metrics.Path)

		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			cancel()
		}
		serveErr <- err
	}()

	err = sh.Wait(waitCtx)
	if serr := <-serveErr; serr != nil {
		return errors.Join(fmt.Errorf("metrics server: %w", serr), err)
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	st.log.Info("stopped")
	return nil
}
