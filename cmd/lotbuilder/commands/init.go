package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
	"git.home.luguber.info/inful/lotbuilder/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g.Out, root.Config, i.Force)
}

// RunInit writes the example configuration to configPath.
func RunInit(out io.Writer, configPath string, force bool) error {
	_, _ = fmt.Fprintln(out, "Initializing lotbuilder project")
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", configPath)

	if err := config.Init(configPath, force); err != nil {
		return errors.ConfigError("initialize configuration").
			WithCause(err).WithContext("path", configPath).Build()
	}

	_, _ = fmt.Fprintln(out, "lotbuilder project initialized successfully")
	_, _ = fmt.Fprintln(out, "Next: edit the configuration, then run 'lotbuilder build'")
	return nil
}
