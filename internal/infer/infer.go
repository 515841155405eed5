// Package infer fills in body type and fuel from keywords in a vehicle's
// name and note.
//
// Matching is plain substring search over the lowercased text, so "fit"
// also matches "fitted". Conflicts resolve by rule order: the first body
// rule that matches wins, while every matching fuel rule applies and the
// last one wins.
package infer

import (
	"strings"

	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// Rule assigns Category when any keyword occurs in the searched text.
type Rule struct {
	Category string
	Keywords []string
}

// Matches reports whether any keyword occurs in lowered.
func (r Rule) Matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Rules is an ordered rule set.
type Rules struct {
	Body []Rule
	Fuel []Rule
}

// DefaultRules returns the built-in keyword tables.
func DefaultRules() Rules {
	return Rules{
		Body: []Rule{
			{vehicle.BodySUV, []string{"suv"}},
			{vehicle.BodySedan, []string{"sedan"}},
			{vehicle.BodyTruck, []string{"truck", "bakkie", "canter", "atlas"}},
			{vehicle.BodyHatchback, []string{"hatchback", "vitz", "vits", "fit", "demio"}},
			{vehicle.BodyVanBus, []string{"bus", "van", "hiace", "quantum", "noah", "voxy"}},
		},
		Fuel: []Rule{
			{vehicle.FuelDiesel, []string{"diesel"}},
			{vehicle.FuelHybrid, []string{"hybrid"}},
		},
	}
}

// Classifier evaluates a rule set against free text.
type Classifier struct {
	rules Rules
}

// NewClassifier builds a classifier. Keywords are lowercased so rule tables
// may be written in any case.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: Rules{Body: lowerRules(rules.Body), Fuel: lowerRules(rules.Fuel)}}
}

// BodyType returns the category of the first matching body rule, or
// vehicle.BodyOther.
func (c *Classifier) BodyType(text string) string {
	lowered := strings.ToLower(text)
	for _, r := range c.rules.Body {
		if r.Matches(lowered) {
			return r.Category
		}
	}
	return vehicle.BodyOther
}

// Fuel returns the category of the last matching fuel rule. Without a match
// current is kept, or vehicle.FuelPetrol when current is empty.
func (c *Classifier) Fuel(text, current string) string {
	lowered := strings.ToLower(text)
	fuel := current
	if strings.TrimSpace(fuel) == "" {
		fuel = vehicle.FuelPetrol
	}
	for _, r := range c.rules.Fuel {
		if r.Matches(lowered) {
			fuel = r.Category
		}
	}
	return fuel
}

// Apply updates rec in place. The body type is only inferred while it is
// still open; fuel keywords always apply.
func (c *Classifier) Apply(rec *vehicle.Record) {
	text := rec.Name + " " + rec.Note
	if rec.HasOpenBodyType() {
		rec.BodyType = c.BodyType(text)
	}
	rec.Fuel = c.Fuel(text, rec.Fuel)
}

var defaultClassifier = NewClassifier(DefaultRules())

// Apply infers attributes for rec using DefaultRules.
func Apply(rec *vehicle.Record) {
	defaultClassifier.Apply(rec)
}

func lowerRules(in []Rule) []Rule {
	out := make([]Rule, len(in))
	for i, r := range in {
		kws := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			kws[j] = strings.ToLower(kw)
		}
		out[i] = Rule{Category: r.Category, Keywords: kws}
	}
	return out
}
