package command

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/extratls-go/internal/infra/tlsroots"
)

// ProbeCommand returns the probe command.
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Set up integrations, then handshake with ADDRESS through a cached TLS context",
		ArgsUsage: "ADDRESS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "context",
				Usage: "Context name: default, default_no_verify, client_<list> or no_verify_<list>",
				Value: tlsroots.DefaultContextName,
			},
			&cli.StringFlag{
				Name:  "server-name",
				Usage: "Name to verify the server certificate against (defaults to the address host)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Dial and handshake timeout",
				Value: 10 * time.Second,
			},
		},
		Action: probeAction,
	}
}

type probeResult struct {
	Address     string    `json:"address"`
	Context     string    `json:"context"`
	Version     string    `json:"version"`
	CipherSuite string    `json:"cipher_suite"`
	Subject     string    `json:"subject"`
	Issuer      string    `json:"issuer"`
	NotAfter    time.Time `json:"not_after"`
}

func probeAction(c *cli.Context) error {
	addr := c.Args().First()
	if addr == "" {
		return errors.New("probe: ADDRESS is required")
	}
	hostname, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}

	st, err := bootstrap(c)
	if err != nil {
		return err
	}
	if err := st.host.Setup(c.Context); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	tlsCtx, err := st.host.TLS().Resolve(c.String("context"))
	if err != nil {
		return err
	}

	cfg := tlsCtx.TLSConfig()
	cfg.ServerName = hostname
	if sn := c.String("server-name"); sn != "" {
		cfg.ServerName = sn
	}

	timeout := c.Duration("timeout")
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config:    cfg,
	}

	st.log.Debug("probing", "addr", addr, "context", tlsCtx.Name())
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("probe %s via %s: %w", addr, tlsCtx.Name(), err)
	}
	defer conn.Close()

	cs := conn.(*tls.Conn).ConnectionState()
	res := probeResult{
		Address:     addr,
		Context:     tlsCtx.Name(),
		Version:     tls.VersionName(cs.Version),
		CipherSuite: tls.CipherSuiteName(cs.CipherSuite),
	}
	if len(cs.PeerCertificates) > 0 {
		leaf := cs.PeerCertificates[0]
		res.Subject = leaf.Subject.String()
		res.Issuer = leaf.Issuer.String()
		res.NotAfter = leaf.NotAfter
	}

	return render(c, res)
}
