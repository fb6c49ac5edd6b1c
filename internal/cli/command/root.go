package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/extratls-go/internal/cli/output"
	"github.com/yndnr/extratls-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "extratls",
		Usage:   "Load extra trusted CAs and client certificates into the host's TLS contexts",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RunCommand(),
			CheckCommand(),
			ProbeCommand(),
			VersionCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			EnvVars: []string{"EXTRATLS_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Override log.level from the configuration",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config   string
	Output   string
	LogLevel string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:   c.String("config"),
		Output:   c.String("output"),
		LogLevel: c.String("log-level"),
	}
}

// render writes data to the app's writer in the selected output format.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	if err := output.NewFormatter(format).Format(c.App.Writer, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
