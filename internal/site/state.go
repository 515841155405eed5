package site

import (
	"html/template"
	"time"

	"git.home.luguber.info/inful/lotbuilder/internal/render"
	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// BuildState is the data shared by the stages of one run. Stages only read
// what earlier stages wrote.
type BuildState struct {
	Generator *Generator
	Report    *BuildReport
	// BuildDate is the run day in UTC, used for new lastmod dates.
	BuildDate time.Time

	Records []vehicle.Record
	// Fragments holds the rendered card markup per slot name.
	Fragments map[string]template.HTML
	// Details is aligned with Records when detail pages are enabled.
	Details []render.DetailResult

	cards   *render.CardRenderer
	details *render.DetailRenderer
}

func newBuildState(g *Generator, report *BuildReport, now time.Time) *BuildState {
	return &BuildState{
		Generator: g,
		Report:    report,
		BuildDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Fragments: map[string]template.HTML{},
	}
}
