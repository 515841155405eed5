package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
	"git.home.luguber.info/inful/lotbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output    string `short:"o" help:"Output directory (overrides output.directory)"`
	Inventory string `help:"Inventory directory (overrides inventory.dir)"`
	NoDetail  bool   `name:"no-detail" help:"Skip detail page generation"`
	Report    bool   `help:"Write the build report after every rebuild"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	load := func() (*config.Config, error) {
		cfg, err := LoadConfig(root.Config)
		if err != nil {
			return nil, err
		}
		(&BuildCmd{Output: w.Output, Inventory: w.Inventory, NoDetail: w.NoDetail}).apply(cfg)
		return cfg, nil
	}

	cfg, err := load()
	if err != nil {
		return err
	}
	configureLogging(cfg, root.Verbose)

	ctx, stop := signalContext()
	defer stop()
	return RunWatch(ctx, g.Out, cfg, root.Config, load, BuildOptions{Report: w.Report})
}

// RunWatch builds once, then rebuilds on every relevant change until ctx is
// canceled. The configuration is reloaded before each rebuild; the set of
// watched paths is fixed at start.
func RunWatch(ctx context.Context, out io.Writer, cfg *config.Config, configPath string,
	load func() (*config.Config, error), opts BuildOptions,
) error {
	build := func(ctx context.Context) error {
		current, err := load()
		if err != nil {
			slog.Error("Configuration reload failed, keeping previous settings", logfields.Error(err))
			current = cfg
		}
		if err := RunBuild(ctx, out, current, opts); err != nil {
			slog.Error("Rebuild failed", logfields.Error(err))
			return err
		}
		return nil
	}

	// A failing first build leaves the watcher running so the author can fix
	// the template or inventory in place.
	_ = build(ctx)

	w := watch.New(watchOptions(cfg, configPath), build)
	_, _ = fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", cfg.Inventory.Dir)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func watchOptions(cfg *config.Config, configPath string) watch.Options {
	files := []string{}
	addFile := func(p string) {
		if p == "" {
			return
		}
		for _, f := range files {
			if f == p {
				return
			}
		}
		files = append(files, p)
	}
	if cfg.Listing.IsEnabled() {
		addFile(filepath.Join(cfg.Site.TemplateDir, cfg.Listing.Page))
	}
	if cfg.Home.IsEnabled() {
		addFile(filepath.Join(cfg.Site.TemplateDir, cfg.Home.Page))
	}
	if cfg.Detail.Enabled {
		addFile(filepath.Join(cfg.Site.TemplateDir, cfg.Detail.Template))
	}
	if _, err := os.Stat(configPath); err == nil {
		addFile(configPath)
	}

	opts := watch.Options{
		Dirs:           []string{cfg.Inventory.Dir},
		Files:          files,
		Debounce:       cfg.Watch.Debounce.Std(),
		RescanInterval: config.DefaultRescanInterval,
	}
	if cfg.Watch.RescanInterval != nil {
		opts.RescanInterval = cfg.Watch.RescanInterval.Std()
	}
	return opts
}
