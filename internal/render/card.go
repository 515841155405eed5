// Package render turns vehicle records into HTML: cards for the listing and
// homepage slots, and standalone detail pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path"
	"strings"

	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// Placement distinguishes where a card is shown. It decides the element ids.
type Placement int

const (
	PlacementListing Placement = iota
	PlacementHome
)

func (p Placement) String() string {
	if p == PlacementHome {
		return "home"
	}
	return "listing"
}

// CardID returns the element id of the card at index.
func (p Placement) CardID(index int) string {
	if p == PlacementHome {
		return fmt.Sprintf("home-car-%d", index)
	}
	return fmt.Sprintf("car-%d", index)
}

// CardOptions configures a CardRenderer.
type CardOptions struct {
	Placeholder string
	// ThumbLimit caps the thumbnail strip, primary image included.
	ThumbLimit int
	// NoteLimit truncates the note to this many runes; 0 keeps it whole.
	NoteLimit int
	// DetailDir, when set, links unsold cards to <DetailDir>/<slug>.html
	// instead of the WhatsApp action.
	DetailDir string
	Contact   Contact
}

// CardRenderer renders vehicle cards.
type CardRenderer struct {
	opts CardOptions
	tpl  *template.Template
}

type callToAction struct {
	Text     string
	Href     string
	Disabled bool
	External bool
}

type cardData struct {
	ID          string
	MainID      string
	Rec         *vehicle.Record
	Thumbs      []string
	Note        string
	Placeholder string
	CTA         callToAction
}

const cardTemplate = `<div class="service-card" id="{{.ID}}" style="padding: 0; overflow: hidden; background: white;" data-type="{{.Rec.BodyType}}" data-fuel="{{.Rec.Fuel}}" data-trans="{{.Rec.Transmission}}" data-price="{{.Rec.PriceValue}}" data-slug="{{.Rec.Slug}}">
{{- if .Rec.Sold}}
    <span class="sold-badge">Sold</span>
{{- end}}
    <div style="padding: 1rem 1rem 0;">
        <div style="height: 250px; overflow: hidden; border-radius: 12px;">
            <img id="{{.MainID}}" src="{{.Rec.MainImage}}" alt="{{.Rec.Name}}" loading="lazy" onerror="this.onerror=null;this.src='{{.Placeholder}}';" style="width: 100%; height: 100%; object-fit: cover; transition: opacity 0.3s;{{if .Rec.Sold}} filter: grayscale(100%);{{end}}">
        </div>
        <div class="thumb-grid">
{{- range .Thumbs}}
            <div class="thumb-img" onclick="changeImage('{{$.MainID}}', '{{.}}')"><img src="{{.}}" alt="" loading="lazy"></div>
{{- end}}
        </div>
    </div>
    <div style="padding: 1.5rem;">
        <h4 style="font-size: 1.25rem; margin-bottom: 1rem;">{{.Rec.Name}}</h4>
        <div class="car-details-grid">
            <div class="detail-item"><span class="detail-label">Price</span><span class="detail-value">{{.Rec.Price}}</span></div>
            <div class="detail-item"><span class="detail-label">Mileage</span><span class="detail-value">{{.Rec.Mileage}}</span></div>
            <div class="detail-item"><span class="detail-label">Year</span><span class="detail-value">{{.Rec.Year}}</span></div>
            <div class="detail-item"><span class="detail-label">Trans</span><span class="detail-value">{{.Rec.Transmission}}</span></div>
            <div class="detail-item"><span class="detail-label">Type</span><span class="detail-value">{{.Rec.BodyType}}</span></div>
            <div class="detail-item"><span class="detail-label">Location</span><span class="detail-value">{{.Rec.Location}}</span></div>
        </div>
        <div class="car-note">
            <span>Note</span>
            {{.Note}}
        </div>
{{- with .CTA}}
{{- if .Disabled}}
        <button class="btn btn-outline disabled" style="width: 100%;" disabled>{{.Text}}</button>
{{- else}}
        <a class="btn btn-outline" style="width: 100%; display: block; text-align: center;" href="{{.Href}}"{{if .External}} target="_blank" rel="noopener"{{end}}>{{.Text}}</a>
{{- end}}
{{- end}}
    </div>
</div>`

// NewCardRenderer parses the card template.
func NewCardRenderer(opts CardOptions) (*CardRenderer, error) {
	if opts.Placeholder == "" {
		opts.Placeholder = "assets/placeholder.jpg"
	}
	if opts.ThumbLimit <= 0 {
		opts.ThumbLimit = 4
	}
	tpl, err := template.New("card").Option("missingkey=error").Parse(cardTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse card template: %w", err)
	}
	return &CardRenderer{opts: opts, tpl: tpl}, nil
}

// Card renders one vehicle. index is the card's position within its placement.
func (r *CardRenderer) Card(rec *vehicle.Record, index int, placement Placement) (template.HTML, error) {
	id := placement.CardID(index)
	data := cardData{
		ID:          id,
		MainID:      id + "-main",
		Rec:         rec,
		Thumbs:      r.thumbStrip(rec),
		Note:        TruncateRunes(rec.Note, r.opts.NoteLimit),
		Placeholder: r.opts.Placeholder,
		CTA:         r.callToAction(rec),
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render card %s: %w", rec.Slug, err)
	}
	// #nosec G203 -- output of html/template with contextual escaping
	return template.HTML(buf.String()), nil
}

// Cards renders the selected records joined by newlines.
func (r *CardRenderer) Cards(records []vehicle.Record, placement Placement, limit int, availableOnly bool) (template.HTML, error) {
	selected := Select(records, limit, availableOnly)
	parts := make([]string, 0, len(selected))
	for i := range selected {
		card, err := r.Card(&selected[i], i, placement)
		if err != nil {
			return "", err
		}
		parts = append(parts, string(card))
	}
	// #nosec G203 -- joined html/template output
	return template.HTML(strings.Join(parts, "\n")), nil
}

// Select filters records for a placement. limit <= 0 means no limit.
func Select(records []vehicle.Record, limit int, availableOnly bool) []vehicle.Record {
	out := make([]vehicle.Record, 0, len(records))
	for _, rec := range records {
		if availableOnly && rec.Sold {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, rec)
	}
	return out
}

// DetailHref is the root-relative link to a vehicle's detail page.
func DetailHref(dir, slug string) string {
	return path.Join(dir, slug+".html")
}

func (r *CardRenderer) thumbStrip(rec *vehicle.Record) []string {
	strip := make([]string, 0, r.opts.ThumbLimit)
	strip = append(strip, rec.MainImage)
	for _, t := range rec.Thumbs {
		if len(strip) == r.opts.ThumbLimit {
			break
		}
		strip = append(strip, t)
	}
	return strip
}

func (r *CardRenderer) callToAction(rec *vehicle.Record) callToAction {
	switch {
	case rec.Sold:
		return callToAction{Text: "Sold Out", Disabled: true}
	case r.opts.DetailDir != "":
		return callToAction{Text: "View Details", Href: DetailHref(r.opts.DetailDir, rec.Slug)}
	default:
		return callToAction{Text: "Schedule Test Drive", Href: r.opts.Contact.Link(rec), External: true}
	}
}

// TruncateRunes shortens s to limit runes, appending an ellipsis when cut.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "…"
}
