package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/lotbuilder/cmd/lotbuilder/commands"
	"git.home.luguber.info/inful/lotbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/lotbuilder/internal/version"
)

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("lotbuilder"),
		kong.Description("Generate vehicle listing pages from a folder-per-vehicle inventory."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := kctx.Run(commands.NewGlobal(), &cli)
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	os.Exit(adapter.Report(err))
}
