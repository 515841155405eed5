package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
	"git.home.luguber.info/inful/lotbuilder/internal/metrics"
	"git.home.luguber.info/inful/lotbuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (overrides output.directory)"`
	Inventory   string `help:"Inventory directory (overrides inventory.dir)"`
	NoDetail    bool   `name:"no-detail" help:"Skip detail page generation"`
	Report      bool   `help:"Write build-report.json and build-report.txt into the output directory"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the build"`
}

// BuildOptions are the per-run switches that do not live in the configuration.
type BuildOptions struct {
	Report      bool
	MetricsFile string
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return err
	}
	b.apply(cfg)
	configureLogging(cfg, root.Verbose)

	ctx, stop := signalContext()
	defer stop()
	return RunBuild(ctx, g.Out, cfg, BuildOptions{Report: b.Report, MetricsFile: b.MetricsFile})
}

func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	overrideInventory(cfg, b.Inventory)
	if b.NoDetail {
		cfg.Detail.Enabled = false
	}
}

// RunBuild runs one full build and prints the outcome.
func RunBuild(ctx context.Context, out io.Writer, cfg *config.Config, opts BuildOptions) error {
	_, _ = fmt.Fprintln(out, "Starting lotbuilder build")

	gen := site.NewGenerator(cfg)
	metricsFile := opts.MetricsFile
	if metricsFile == "" {
		metricsFile = cfg.Metrics.TextFile
	}
	var recorder *metrics.PrometheusRecorder
	if metricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		gen.WithRecorder(recorder)
	}

	report, err := gen.Run(ctx)

	if opts.Report && report != nil {
		if perr := report.Persist(cfg.Output.Directory); perr != nil {
			slog.Warn("Failed to write build report", logfields.Path(cfg.Output.Directory), logfields.Error(perr))
		}
	}
	if recorder != nil {
		if merr := recorder.WriteTextfile(metricsFile); merr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(metricsFile), logfields.Error(merr))
		}
	}

	if err != nil {
		_, _ = fmt.Fprintln(out, "Build failed")
		return err
	}
	printOutcome(out, report)
	return nil
}

func printOutcome(out io.Writer, report *site.BuildReport) {
	if report.Outcome == site.OutcomeWarning {
		_, _ = fmt.Fprintf(out, "Build completed with %d warning(s)\n", len(report.Warnings))
	} else {
		_, _ = fmt.Fprintln(out, "Build completed successfully")
	}
	_, _ = fmt.Fprintf(out, "  vehicles: %d (sold %d)\n", report.Vehicles, report.Sold)
	_, _ = fmt.Fprintf(out, "  pages injected: %d, unchanged: %d, skipped: %d\n",
		report.InjectedPages, report.UnchangedPages, report.SkippedPages)
	if report.DetailWritten+report.DetailUnchanged+report.DetailPruned > 0 {
		_, _ = fmt.Fprintf(out, "  detail pages written: %d, unchanged: %d, pruned: %d\n",
			report.DetailWritten, report.DetailUnchanged, report.DetailPruned)
	}
	if report.SitemapURLs > 0 {
		_, _ = fmt.Fprintf(out, "  sitemap urls: %d\n", report.SitemapURLs)
	}
	for _, w := range report.Warnings {
		_, _ = fmt.Fprintf(out, "  warning: %v\n", w)
	}
}
