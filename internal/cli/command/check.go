package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/extratls-go/internal/integration/extratls"
)

// CheckCommand returns the check command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Validate the extra_tls_certificates section without loading anything",
		Action: checkAction,
	}
}

type checkEntry struct {
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Key       string `json:"key,omitempty"`
	Encrypted bool   `json:"encrypted"`
}

func checkAction(c *cli.Context) error {
	_, loader, err := loadConfig(ParseGlobalFlags(c).Config)
	if err != nil {
		return err
	}

	cfg, err := extratls.Decode(loader)
	if err != nil {
		return err
	}
	if err := extratls.Validate(cfg); err != nil {
		return err
	}

	entries := make([]checkEntry, 0, len(cfg.CA)+len(cfg.Client))
	for _, ca := range cfg.CA {
		entries = append(entries, checkEntry{Kind: extratls.ConfCA, Path: ca})
	}
	for _, cl := range cfg.Client {
		entries = append(entries, checkEntry{
			Kind:      extratls.ConfClient,
			Path:      cl.Cert,
			Key:       cl.Key,
			Encrypted: cl.Encrypted(),
		})
	}

	return render(c, entries)
}
