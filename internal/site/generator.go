// Package site runs the lotbuilder build: a fixed sequence of stages that
// scan the inventory, render cards, inject them into template pages and
// write detail pages and a sitemap. Every run records a BuildReport.
package site

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
	"git.home.luguber.info/inful/lotbuilder/internal/inject"
	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
	"git.home.luguber.info/inful/lotbuilder/internal/metrics"
	"git.home.luguber.info/inful/lotbuilder/internal/render"
	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// Slot names used in reports, logs and metrics.
const (
	SlotListing = "listing"
	SlotHome    = "home"
)

// Generator builds the site described by a configuration.
type Generator struct {
	cfg      *config.Config
	recorder metrics.Recorder
	observer BuildObserver
	now      func() time.Time
}

// NewGenerator creates a generator with no metrics.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		observer: NoopObserver{},
		now:      time.Now,
	}
}

// WithRecorder attaches a metrics recorder. Stage and build metrics are
// routed through a RecorderObserver alongside any existing observer.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		return g
	}
	g.recorder = r
	if _, noop := g.observer.(NoopObserver); noop {
		g.observer = RecorderObserver{Recorder: r}
	} else {
		g.observer = MultiObserver{g.observer, RecorderObserver{Recorder: r}}
	}
	return g
}

// WithObserver adds a build observer.
func (g *Generator) WithObserver(o BuildObserver) *Generator {
	if o == nil {
		return g
	}
	if _, noop := g.observer.(NoopObserver); noop {
		g.observer = o
	} else {
		g.observer = MultiObserver{g.observer, o}
	}
	return g
}

// WithClock overrides the time source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	if now != nil {
		g.now = now
	}
	return g
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() *config.Config { return g.cfg }

// Recorder returns the metrics recorder; NoopRecorder unless WithRecorder was used.
func (g *Generator) Recorder() metrics.Recorder { return g.recorder }

// Observer returns the observer notified of stage and build completion.
func (g *Generator) Observer() BuildObserver { return g.observer }

// OutputDir returns the directory generated pages are written to.
func (g *Generator) OutputDir() string { return g.cfg.Output.Directory }

func (g *Generator) templatePath(p string) string { return filepath.Join(g.cfg.Site.TemplateDir, p) }

// Pipeline returns the stages of a full build.
func (g *Generator) Pipeline() *Pipeline {
	return NewPipeline().
		Add(StageValidateInputs, stageValidateInputs).
		Add(StageScanInventory, stageScanInventory).
		Add(StageInferAttributes, stageInferAttributes).
		Add(StageResolveImages, stageResolveImages).
		Add(StageRenderCards, stageRenderCards).
		Add(StageInjectPages, stageInjectPages).
		AddIf(g.cfg.Detail.Enabled, StageDetailPages, stageDetailPages).
		AddIf(g.cfg.Sitemap.IsEnabled(), StageWriteSitemap, stageWriteSitemap)
}

// Run executes a full build. The report is returned even when the build
// fails; the error is the StageError that aborted it.
func (g *Generator) Run(ctx context.Context) (*BuildReport, error) {
	start := g.now()
	report := NewBuildReport(start)
	bs := newBuildState(g, report, start.UTC())

	slog.Info("Build started",
		logfields.BuildID(report.BuildID),
		logfields.Path(g.cfg.Inventory.Dir))

	err := RunStages(ctx, bs, g.Pipeline().Build())
	report.Finish(g.now())
	report.DeriveOutcome()
	g.observer.OnBuildComplete(report)

	slog.Info("Build finished",
		logfields.BuildID(report.BuildID),
		logfields.Outcome(string(report.Outcome)),
		logfields.Count(report.Vehicles),
		logfields.Duration(report.End.Sub(report.Start)))
	return report, err
}

// Inspect scans the inventory and applies inference and image resolution
// without writing anything.
func (g *Generator) Inspect(ctx context.Context) ([]vehicle.Record, error) {
	start := g.now()
	bs := newBuildState(g, NewBuildReport(start), start.UTC())
	stages := NewPipeline().
		Add(StageScanInventory, stageScanInventory).
		Add(StageInferAttributes, stageInferAttributes).
		Add(StageResolveImages, stageResolveImages).
		Build()
	if err := RunStages(ctx, bs, stages); err != nil {
		return nil, err
	}
	return bs.Records, nil
}

// slotTarget is one enabled injection with its card selection.
type slotTarget struct {
	slot          inject.Slot
	page          string
	placement     render.Placement
	limit         int
	availableOnly bool
}

func (g *Generator) slotTargets() []slotTarget {
	var out []slotTarget
	if l := g.cfg.Listing; l.IsEnabled() {
		out = append(out, slotTarget{
			slot:      inject.Slot{Name: SlotListing, Marker: l.Marker, Occurrence: l.Occurrence, EndLandmark: l.EndLandmark},
			page:      l.Page,
			placement: render.PlacementListing,
		})
	}
	if h := g.cfg.Home; h.IsEnabled() {
		out = append(out, slotTarget{
			slot:          inject.Slot{Name: SlotHome, Marker: h.Marker, Occurrence: h.Occurrence, EndLandmark: h.EndLandmark},
			page:          h.Page,
			placement:     render.PlacementHome,
			limit:         h.Limit,
			availableOnly: true,
		})
	}
	return out
}

func (g *Generator) contact() render.Contact {
	return render.Contact{
		Phone:         g.cfg.Site.WhatsAppPhone,
		DealerName:    g.cfg.Site.Name,
		MessageFormat: g.cfg.Site.WhatsAppMessage,
	}
}

func (g *Generator) cardOptions() render.CardOptions {
	opts := render.CardOptions{
		Placeholder: g.cfg.Inventory.Placeholder,
		ThumbLimit:  g.cfg.Render.ThumbLimit,
		NoteLimit:   g.cfg.Render.NoteLimit,
		Contact:     g.contact(),
	}
	if g.cfg.Detail.Enabled {
		opts.DetailDir = g.cfg.Detail.Dir
	}
	return opts
}

func (g *Generator) detailOptions() render.DetailOptions {
	return render.DetailOptions{
		TemplatePath: g.templatePath(g.cfg.Detail.Template),
		Dir:          g.cfg.Detail.Dir,
		ThumbLimit:   g.cfg.Detail.ThumbLimit,
		BaseURL:      strings.TrimRight(g.cfg.Site.BaseURL, "/"),
		Currency:     g.cfg.Site.Currency,
		Placeholder:  g.cfg.Inventory.Placeholder,
		Contact:      g.contact(),
	}
}
