package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
	"git.home.luguber.info/inful/lotbuilder/internal/output"
	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// Detail page template errors.
var (
	ErrTemplateNotFound = errors.New("detail template not found")
	ErrTemplateInvalid  = errors.New("detail template invalid")
)

// vehicleNamespace scopes the UUIDv5 product ids derived from slugs.
var vehicleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:lotbuilder:vehicle"))

// ProductID returns the stable product identifier for a slug.
func ProductID(slug string) string {
	return uuid.NewSHA1(vehicleNamespace, []byte(slug)).String()
}

// DetailOptions configures a DetailRenderer.
type DetailOptions struct {
	// TemplatePath is the html/template document used for every page.
	TemplatePath string
	// Dir is the output subdirectory, relative to the site root.
	Dir         string
	ThumbLimit  int
	BaseURL     string
	Currency    string
	Placeholder string
	Contact     Contact
}

// DetailPage is the data available to the detail template.
type DetailPage struct {
	Title          string
	Description    string
	Image          string
	Price          string
	Year           string
	Mileage        string
	Transmission   string
	Type           string
	Fuel           string
	Location       string
	Gallery        template.HTML
	CTA            template.HTML
	CTAText        string
	CTAHref        string
	Sold           bool
	StructuredData template.JS
	CanonicalURL   string
	Slug           string
	BodyHTML       template.HTML
}

// DetailResult describes one written (or skipped) detail page.
type DetailResult struct {
	Slug    string
	Path    string
	RelPath string
	Lastmod time.Time
	Changed bool
}

// DetailRenderer renders standalone pages for each vehicle.
type DetailRenderer struct {
	opts     DetailOptions
	page     *template.Template
	partials *template.Template
	md       goldmark.Markdown
	rootRel  string
}

const detailPartials = `
{{- define "gallery" -}}
<div class="thumb-grid">
{{- range .Images}}
    <div class="thumb-img" onclick="changeImage('detail-main', '{{.}}')"><img src="{{.}}" alt="{{$.Name}}" loading="lazy"></div>
{{- end}}
</div>
{{- end -}}
{{- define "cta" -}}
{{- if .Disabled -}}
<button class="btn btn-outline disabled" disabled>{{.Text}}</button>
{{- else -}}
<a class="btn btn-primary" href="{{.Href}}" target="_blank" rel="noopener">{{.Text}}</a>
{{- end -}}
{{- end -}}`

// NewDetailRenderer loads and parses the detail template. A missing or
// unparseable template is reported with ErrTemplateNotFound or
// ErrTemplateInvalid.
func NewDetailRenderer(opts DetailOptions) (*DetailRenderer, error) {
	if opts.Dir == "" {
		opts.Dir = "cars"
	}
	if opts.ThumbLimit < 0 {
		opts.ThumbLimit = 0
	}
	if opts.Placeholder == "" {
		opts.Placeholder = "assets/placeholder.jpg"
	}

	// #nosec G304 -- template path comes from configuration
	src, err := os.ReadFile(opts.TemplatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, opts.TemplatePath)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplateInvalid, opts.TemplatePath, err)
	}
	page, err := template.New(filepath.Base(opts.TemplatePath)).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateInvalid, err)
	}
	partials := template.Must(template.New("partials").Parse(detailPartials))

	depth := strings.Count(strings.Trim(opts.Dir, "/"), "/") + 1
	return &DetailRenderer{
		opts:     opts,
		page:     page,
		partials: partials,
		md:       goldmark.New(),
		rootRel:  strings.Repeat("../", depth),
	}, nil
}

// RelPath is the page location relative to the output directory.
func (d *DetailRenderer) RelPath(slug string) string {
	return DetailHref(d.opts.Dir, slug)
}

// Dir is the output subdirectory holding detail pages.
func (d *DetailRenderer) Dir() string {
	return d.opts.Dir
}

// PageURL is the absolute page URL, or empty without a base URL.
func (d *DetailRenderer) PageURL(slug string) string {
	if d.opts.BaseURL == "" {
		return ""
	}
	return d.opts.BaseURL + "/" + d.RelPath(slug)
}

// Render renders the page for rec without generator meta tags.
func (d *DetailRenderer) Render(rec *vehicle.Record) ([]byte, error) {
	data, err := d.pageData(rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := d.page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render detail page %s: %w", rec.Slug, err)
	}
	return buf.Bytes(), nil
}

// Write renders rec into outDir. When an existing page carries the same
// fingerprint, its lastmod is kept and the file is not rewritten.
func (d *DetailRenderer) Write(outDir string, rec *vehicle.Record, now time.Time) (DetailResult, error) {
	res := DetailResult{Slug: rec.Slug, RelPath: d.RelPath(rec.Slug)}
	full, err := output.Resolve(outDir, res.RelPath)
	if err != nil {
		return res, err
	}
	res.Path = full

	page, err := d.Render(rec)
	if err != nil {
		return res, err
	}
	fp := Fingerprint(rec.Slug, page)

	// #nosec G304 -- path resolved under the output directory
	if prev, err := os.ReadFile(full); err == nil {
		meta := ReadPageMeta(prev)
		if meta.Fingerprint == fp && !meta.Lastmod.IsZero() {
			res.Lastmod = meta.Lastmod
			slog.Debug("Detail page unchanged", logfields.Slug(rec.Slug), logfields.Path(full))
			return res, nil
		}
	}

	res.Lastmod = today(now)
	res.Changed = true
	if err := output.WriteFileAtomic(full, WithPageMeta(page, PageMeta{Fingerprint: fp, Lastmod: res.Lastmod})); err != nil {
		return res, err
	}
	return res, nil
}

// Prune removes generated pages in the detail directory whose slug is not
// in keep. Files without the generator fingerprint meta are left alone.
func (d *DetailRenderer) Prune(outDir string, keep map[string]bool) ([]string, error) {
	dir, err := output.Resolve(outDir, d.opts.Dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var removed []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".html") || keep[strings.TrimSuffix(name, ".html")] {
			continue
		}
		full := filepath.Join(dir, name)
		// #nosec G304 -- listing of the detail directory
		content, err := os.ReadFile(full)
		if err != nil || ReadPageMeta(content).Fingerprint == "" {
			continue
		}
		if err := os.Remove(full); err != nil {
			return removed, err
		}
		removed = append(removed, full)
	}
	return removed, nil
}

func (d *DetailRenderer) pageData(rec *vehicle.Record) (DetailPage, error) {
	images := d.galleryImages(rec)
	cta := d.callToAction(rec)

	var gallery, ctaHTML bytes.Buffer
	if err := d.partials.ExecuteTemplate(&gallery, "gallery", map[string]any{"Images": d.relative(images), "Name": rec.Name}); err != nil {
		return DetailPage{}, fmt.Errorf("render gallery %s: %w", rec.Slug, err)
	}
	if err := d.partials.ExecuteTemplate(&ctaHTML, "cta", cta); err != nil {
		return DetailPage{}, fmt.Errorf("render call to action %s: %w", rec.Slug, err)
	}

	body, err := d.markdown(rec)
	if err != nil {
		return DetailPage{}, err
	}
	ld, err := d.structuredData(rec, images)
	if err != nil {
		return DetailPage{}, err
	}

	// #nosec G203 -- partials and goldmark output are escaped HTML
	return DetailPage{
		Title:          rec.Name,
		Description:    TruncateRunes(rec.Note, 160),
		Image:          d.rootRel + rec.MainImage,
		Price:          rec.Price,
		Year:           rec.Year,
		Mileage:        rec.Mileage,
		Transmission:   rec.Transmission,
		Type:           rec.BodyType,
		Fuel:           rec.Fuel,
		Location:       rec.Location,
		Gallery:        template.HTML(gallery.String()),
		CTA:            template.HTML(ctaHTML.String()),
		CTAText:        cta.Text,
		CTAHref:        cta.Href,
		Sold:           rec.Sold,
		StructuredData: template.JS(ld),
		CanonicalURL:   d.PageURL(rec.Slug),
		Slug:           rec.Slug,
		BodyHTML:       template.HTML(body),
	}, nil
}

// galleryImages is the primary image followed by up to ThumbLimit others.
func (d *DetailRenderer) galleryImages(rec *vehicle.Record) []string {
	out := []string{rec.MainImage}
	for _, img := range rec.Images {
		if len(out) > d.opts.ThumbLimit {
			break
		}
		if img != rec.MainImage {
			out = append(out, img)
		}
	}
	return out
}

func (d *DetailRenderer) relative(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = d.rootRel + p
	}
	return out
}

func (d *DetailRenderer) callToAction(rec *vehicle.Record) callToAction {
	if rec.Sold {
		return callToAction{Text: "Sold Out", Disabled: true}
	}
	return callToAction{Text: "Schedule Test Drive", Href: d.opts.Contact.Link(rec), External: true}
}

func (d *DetailRenderer) markdown(rec *vehicle.Record) (string, error) {
	src := rec.Note
	if rec.Body != "" {
		src += "\n\n" + rec.Body
	}
	var buf bytes.Buffer
	if err := d.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render description %s: %w", rec.Slug, err)
	}
	return buf.String(), nil
}

type quantitativeValue struct {
	Type     string `json:"@type"`
	Value    int64  `json:"value"`
	UnitCode string `json:"unitCode"`
}

type offer struct {
	Type          string `json:"@type"`
	Price         int64  `json:"price,omitempty"`
	PriceCurrency string `json:"priceCurrency,omitempty"`
	Availability  string `json:"availability"`
	URL           string `json:"url,omitempty"`
}

type carData struct {
	Context             string             `json:"@context"`
	Type                string             `json:"@type"`
	Name                string             `json:"name"`
	Description         string             `json:"description,omitempty"`
	Image               []string           `json:"image,omitempty"`
	URL                 string             `json:"url,omitempty"`
	ProductID           string             `json:"productID"`
	VehicleModelDate    string             `json:"vehicleModelDate,omitempty"`
	MileageFromOdometer *quantitativeValue `json:"mileageFromOdometer,omitempty"`
	VehicleTransmission string             `json:"vehicleTransmission,omitempty"`
	BodyType            string             `json:"bodyType,omitempty"`
	FuelType            string             `json:"fuelType,omitempty"`
	Offers              offer              `json:"offers"`
}

func (d *DetailRenderer) structuredData(rec *vehicle.Record, images []string) (string, error) {
	car := carData{
		Context:             "https://schema.org",
		Type:                "Car",
		Name:                rec.Name,
		Description:         rec.Note,
		URL:                 d.PageURL(rec.Slug),
		ProductID:           ProductID(rec.Slug),
		VehicleModelDate:    known(rec.Year),
		VehicleTransmission: known(rec.Transmission),
		BodyType:            known(rec.BodyType),
		FuelType:            known(rec.Fuel),
		Offers: offer{
			Type:          "Offer",
			PriceCurrency: d.opts.Currency,
			Availability:  "https://schema.org/InStock",
			URL:           d.PageURL(rec.Slug),
		},
	}
	for _, img := range images {
		if img == d.opts.Placeholder {
			continue
		}
		car.Image = append(car.Image, d.absolute(img))
	}
	if km := vehicle.ParsePriceValue(rec.Mileage); km > 0 {
		car.MileageFromOdometer = &quantitativeValue{Type: "QuantitativeValue", Value: km, UnitCode: "KMT"}
	}
	if rec.PriceValue > 0 {
		car.Offers.Price = rec.PriceValue
	} else {
		car.Offers.PriceCurrency = ""
	}
	if rec.Sold {
		car.Offers.Availability = "https://schema.org/SoldOut"
	}

	data, err := json.Marshal(car)
	if err != nil {
		return "", fmt.Errorf("encode structured data %s: %w", rec.Slug, err)
	}
	return string(data), nil
}

// absolute turns a site-relative image path into a URL. Without a base URL
// the path is made root-relative.
func (d *DetailRenderer) absolute(p string) string {
	escaped := (&url.URL{Path: path.Clean("/" + p)}).EscapedPath()
	return d.opts.BaseURL + escaped
}

func known(v string) string {
	if v == vehicle.NotAvailable || v == vehicle.BodyOther {
		return ""
	}
	return v
}

func today(now time.Time) time.Time {
	y, m, dd := now.UTC().Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
