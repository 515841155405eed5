package site

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/lotbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/lotbuilder/internal/images"
	"git.home.luguber.info/inful/lotbuilder/internal/infer"
	"git.home.luguber.info/inful/lotbuilder/internal/inject"
	"git.home.luguber.info/inful/lotbuilder/internal/inventory"
	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
	"git.home.luguber.info/inful/lotbuilder/internal/metrics"
	"git.home.luguber.info/inful/lotbuilder/internal/render"
	"git.home.luguber.info/inful/lotbuilder/internal/sitemap"
)

// stageValidateInputs fails the build before anything is written when the
// inventory root or a required template is missing.
func stageValidateInputs(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	cfg := g.Config()

	if info, err := os.Stat(cfg.Inventory.Dir); err != nil || !info.IsDir() {
		cause := fmt.Errorf("%w: %s", inventory.ErrInventoryRootNotFound, cfg.Inventory.Dir)
		return NewFatalStageError(StageValidateInputs,
			errors.InventoryError("inventory directory missing").
				WithCause(cause).
				WithContext("path", cfg.Inventory.Dir).
				Build())
	}

	for _, t := range g.slotTargets() {
		if _, err := inject.ParseMarker(t.slot.Marker); err != nil {
			return NewFatalStageError(StageValidateInputs,
				errors.ConfigError("invalid slot marker").
					WithCause(err).
					WithContext("slot", t.slot.Name).
					Build())
		}
		page := g.templatePath(t.page)
		if _, err := os.Stat(page); err != nil {
			cause := fmt.Errorf("%w: %s", inject.ErrPageNotFound, page)
			if !stdErrors.Is(err, fs.ErrNotExist) {
				cause = fmt.Errorf("%w: %s: %w", inject.ErrPageNotFound, page, err)
			}
			return NewFatalStageError(StageValidateInputs,
				errors.TemplateError("template page missing").
					WithCause(cause).
					WithContext("slot", t.slot.Name).
					WithContext("path", page).
					Build())
		}
	}

	cards, err := render.NewCardRenderer(g.cardOptions())
	if err != nil {
		return NewFatalStageError(StageValidateInputs, errors.InternalError("card template").WithCause(err).Build())
	}
	bs.cards = cards

	if cfg.Detail.Enabled {
		opts := g.detailOptions()
		details, err := render.NewDetailRenderer(opts)
		if err != nil {
			return NewFatalStageError(StageValidateInputs,
				errors.TemplateError("detail template unusable").
					WithCause(err).
					WithContext("path", opts.TemplatePath).
					Build())
		}
		bs.details = details
	}
	return nil
}

func stageScanInventory(ctx context.Context, bs *BuildState) error {
	cfg := bs.Generator.Config()
	scanner := inventory.NewScanner(inventory.Options{
		TextExtensions:        cfg.Inventory.TextExtensions,
		DefaultLocation:       cfg.Inventory.DefaultLocation,
		TruncateAtSecondColon: cfg.Inventory.TruncateAtSecondColon,
	})

	records, err := scanner.Scan(ctx, cfg.Inventory.Dir)
	if err != nil {
		if ctx.Err() != nil {
			return NewCanceledStageError(StageScanInventory, ctx.Err())
		}
		return NewFatalStageError(StageScanInventory,
			errors.InventoryError("inventory scan failed").
				WithCause(err).
				WithContext("path", cfg.Inventory.Dir).
				Build())
	}

	bs.Records = records
	bs.Report.Vehicles = len(records)
	bs.Report.Sold = 0
	for i := range records {
		if records[i].Sold {
			bs.Report.Sold++
		}
	}
	slog.Info("Scanned inventory",
		logfields.BuildID(bs.Report.BuildID),
		logfields.Path(cfg.Inventory.Dir),
		logfields.Count(len(records)),
		slog.Int("sold", bs.Report.Sold))
	return nil
}

func stageInferAttributes(ctx context.Context, bs *BuildState) error {
	for i := range bs.Records {
		if err := ctx.Err(); err != nil {
			return NewCanceledStageError(StageInferAttributes, err)
		}
		infer.Apply(&bs.Records[i])
	}
	return nil
}

func stageResolveImages(ctx context.Context, bs *BuildState) error {
	cfg := bs.Generator.Config()
	opts := images.Options{
		Extensions:  cfg.Inventory.ImageExtensions,
		MainMarker:  cfg.Inventory.MainImageMarker,
		Placeholder: cfg.Inventory.Placeholder,
		ThumbLimit:  cfg.Render.ThumbLimit,
	}
	for i := range bs.Records {
		if err := ctx.Err(); err != nil {
			return NewCanceledStageError(StageResolveImages, err)
		}
		rec := &bs.Records[i]
		set := images.Resolve(path.Join(cfg.Inventory.PublicPath, rec.Folder), rec.Files, opts)
		rec.MainImage = set.Main
		rec.Images = set.All
		rec.Thumbs = set.Thumbs
		if !set.HasImages() {
			slog.Debug("No images found, using placeholder", logfields.Vehicle(rec.Name), logfields.Folder(rec.Folder))
		}
	}
	return nil
}

func stageRenderCards(_ context.Context, bs *BuildState) error {
	for _, t := range bs.Generator.slotTargets() {
		fragment, err := bs.cards.Cards(bs.Records, t.placement, t.limit, t.availableOnly)
		if err != nil {
			return NewFatalStageError(StageRenderCards,
				errors.RenderError("card rendering failed").WithCause(err).WithContext("slot", t.slot.Name).Build())
		}
		bs.Fragments[t.slot.Name] = fragment

		n := len(render.Select(bs.Records, t.limit, t.availableOnly))
		switch t.slot.Name {
		case SlotListing:
			bs.Report.ListingCards = n
		case SlotHome:
			bs.Report.HomeCards = n
		}
	}
	return nil
}

// stageInjectPages writes each slot's cards into its page. A page whose
// marker cannot be located is skipped with a warning and left untouched.
func stageInjectPages(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	outDir := g.OutputDir()
	written := map[string]bool{}

	var failures []error
	for _, t := range g.slotTargets() {
		src := g.templatePath(t.page)
		dst := filepath.Join(outDir, t.page)
		if written[dst] {
			// Two slots on one page: build on the first injection.
			src = dst
		}

		res, err := inject.InjectFile(src, dst, t.slot, string(bs.Fragments[t.slot.Name]))
		if err != nil {
			if stdErrors.Is(err, inject.ErrPageNotFound) {
				return NewFatalStageError(StageInjectPages,
					errors.TemplateError("template page missing").WithCause(err).WithContext("path", src).Build())
			}
			slog.Warn("Skipping page injection",
				logfields.BuildID(bs.Report.BuildID),
				logfields.Slot(t.slot.Name),
				logfields.Page(src),
				logfields.Error(err))
			g.Recorder().IncPageInjection(t.slot.Name, false)
			bs.Report.SkippedPages++
			failures = append(failures, err)
			continue
		}

		written[dst] = true
		g.Recorder().IncPageInjection(t.slot.Name, true)
		if res.Changed {
			bs.Report.InjectedPages++
		} else {
			bs.Report.UnchangedPages++
		}
		slog.Info("Injected cards",
			logfields.Slot(t.slot.Name),
			logfields.Page(dst),
			slog.Bool("changed", res.Changed))
	}

	if len(failures) > 0 {
		return NewWarnStageError(StageInjectPages,
			errors.InjectError("page injection skipped").WithCause(stdErrors.Join(failures...)).Build())
	}
	return nil
}

func stageDetailPages(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	cfg := g.Config()
	outDir := g.OutputDir()

	keep := make(map[string]bool, len(bs.Records))
	bs.Details = make([]render.DetailResult, 0, len(bs.Records))
	for i := range bs.Records {
		if err := ctx.Err(); err != nil {
			return NewCanceledStageError(StageDetailPages, err)
		}
		rec := &bs.Records[i]
		res, err := bs.details.Write(outDir, rec, bs.BuildDate)
		if err != nil {
			return NewFatalStageError(StageDetailPages,
				errors.RenderError("detail page failed").
					WithCause(err).
					WithContext("slug", rec.Slug).
					Build())
		}
		keep[rec.Slug] = true
		bs.Details = append(bs.Details, res)
		if res.Changed {
			bs.Report.DetailWritten++
			g.Recorder().IncDetailPage(metrics.DetailWritten)
		} else {
			bs.Report.DetailUnchanged++
			g.Recorder().IncDetailPage(metrics.DetailUnchanged)
		}
	}

	if cfg.Detail.Prune {
		removed, err := bs.details.Prune(outDir, keep)
		for _, p := range removed {
			slog.Info("Removed stale detail page", logfields.Path(p))
			g.Recorder().IncDetailPage(metrics.DetailPruned)
		}
		bs.Report.DetailPruned = len(removed)
		if err != nil {
			return NewWarnStageError(StageDetailPages,
				errors.FileSystemError("pruning detail pages failed").WithCause(err).Warning().Build())
		}
	}

	slog.Info("Detail pages done",
		logfields.Count(len(bs.Details)),
		slog.Int("written", bs.Report.DetailWritten),
		slog.Int("unchanged", bs.Report.DetailUnchanged))
	return nil
}

// stageWriteSitemap lists the homepage, the listing page and every detail
// page. Without a usable base URL the sitemap is skipped with a warning.
func stageWriteSitemap(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	cfg := g.Config()

	b, err := sitemap.NewBuilder(cfg.Site.BaseURL)
	if err != nil {
		return NewWarnStageError(StageWriteSitemap, err)
	}
	dates := sitemap.NewDates(cfg.Sitemap.Lastmod, bs.BuildDate, cfg.Inventory.Dir)

	// Only pages this build injects into are listed, each once.
	listed := map[string]bool{}
	for _, target := range g.slotTargets() {
		if listed[target.page] {
			continue
		}
		listed[target.page] = true
		b.Add(target.page, dates.Page(g.templatePath(target.page)))
	}
	for i, d := range bs.Details {
		b.Add(d.RelPath, dates.Detail(bs.Records[i].Dir, d.Lastmod))
	}

	p, err := b.Write(g.OutputDir(), cfg.Sitemap.Path)
	if err != nil {
		return NewFatalStageError(StageWriteSitemap,
			errors.FileSystemError("sitemap write failed").WithCause(err).Build())
	}
	bs.Report.SitemapURLs = b.Len()
	slog.Info("Wrote sitemap", logfields.Path(p), logfields.Count(b.Len()))
	return nil
}
