package config

import (
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Defaults mirror the behaviour of a run without any configuration file.
const (
	DefaultInventoryDir    = "Cars"
	DefaultPlaceholder     = "assets/placeholder.jpg"
	DefaultMainImageMarker = "main image"
	DefaultLocation        = "Bulawayo"
	DefaultDealerName      = "Zyamutala"
	DefaultWhatsAppPhone   = "263784624431"
	DefaultWhatsAppMessage = "Hi %s, I am interested in scheduling a test drive for the %s. Is it still available?"
	DefaultCurrency        = "USD"
	DefaultListingPage     = "market.html"
	DefaultListingMarker   = `<div class="cars-grid">`
	DefaultHomePage        = "index.html"
	DefaultHomeMarker      = `<div class="services-grid">`
	DefaultHomeOccurrence  = 2
	DefaultHomeLimit       = 6
	DefaultDetailTemplate  = "car-template.html"
	DefaultDetailDir       = "cars"
	DefaultDetailThumbs    = 12
	DefaultCardThumbs      = 4
	DefaultNoteLimit       = 160
	DefaultSitemapPath     = "sitemap.xml"
	DefaultDebounce        = 300 * time.Millisecond
	DefaultRescanInterval  = 10 * time.Minute
)

var (
	defaultTextExtensions  = []string{".txt", ".md"}
	defaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}
)

// defaultApplier applies defaults for one configuration section.
type defaultApplier struct {
	domain string
	apply  func(cfg *Config)
}

var defaultAppliers = []defaultApplier{
	{"inventory", applyInventoryDefaults},
	{"site", applySiteDefaults},
	{"slots", applySlotDefaults},
	{"detail", applyDetailDefaults},
	{"sitemap", applySitemapDefaults},
	{"render", applyRenderDefaults},
	{"output", applyOutputDefaults},
	{"logging", applyLoggingDefaults},
	{"watch", applyWatchDefaults},
}

func applyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.apply(cfg)
	}
}

func applyInventoryDefaults(cfg *Config) {
	inv := &cfg.Inventory
	if inv.Dir == "" {
		inv.Dir = DefaultInventoryDir
	}
	if inv.PublicPath == "" {
		if filepath.IsAbs(inv.Dir) {
			inv.PublicPath = filepath.Base(inv.Dir)
		} else {
			inv.PublicPath = path.Clean(filepath.ToSlash(inv.Dir))
		}
	}
	if len(inv.TextExtensions) == 0 {
		inv.TextExtensions = append([]string(nil), defaultTextExtensions...)
	}
	if len(inv.ImageExtensions) == 0 {
		inv.ImageExtensions = append([]string(nil), defaultImageExtensions...)
	}
	inv.TextExtensions = normalizeExtensions(inv.TextExtensions)
	inv.ImageExtensions = normalizeExtensions(inv.ImageExtensions)
	if inv.MainImageMarker == "" {
		inv.MainImageMarker = DefaultMainImageMarker
	}
	if inv.Placeholder == "" {
		inv.Placeholder = DefaultPlaceholder
	}
	if inv.DefaultLocation == "" {
		inv.DefaultLocation = DefaultLocation
	}
}

func applySiteDefaults(cfg *Config) {
	s := &cfg.Site
	if s.Name == "" {
		s.Name = DefaultDealerName
	}
	if s.TemplateDir == "" {
		s.TemplateDir = "."
	}
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	if s.WhatsAppPhone == "" {
		s.WhatsAppPhone = DefaultWhatsAppPhone
	}
	if s.WhatsAppMessage == "" {
		s.WhatsAppMessage = DefaultWhatsAppMessage
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
}

func applySlotDefaults(cfg *Config) {
	if cfg.Listing.Page == "" {
		cfg.Listing.Page = DefaultListingPage
	}
	if cfg.Listing.Marker == "" {
		cfg.Listing.Marker = DefaultListingMarker
	}
	if cfg.Listing.Occurrence == 0 {
		cfg.Listing.Occurrence = 1
	}
	if cfg.Home.Page == "" {
		cfg.Home.Page = DefaultHomePage
	}
	if cfg.Home.Marker == "" {
		cfg.Home.Marker = DefaultHomeMarker
		if cfg.Home.Occurrence == 0 {
			cfg.Home.Occurrence = DefaultHomeOccurrence
		}
	}
	if cfg.Home.Occurrence == 0 {
		cfg.Home.Occurrence = 1
	}
	if cfg.Home.Limit == 0 {
		cfg.Home.Limit = DefaultHomeLimit
	}
}

func applyDetailDefaults(cfg *Config) {
	d := &cfg.Detail
	if d.Template == "" {
		d.Template = DefaultDetailTemplate
	}
	if d.Dir == "" {
		d.Dir = DefaultDetailDir
	}
	d.Dir = strings.Trim(filepath.ToSlash(d.Dir), "/")
	if d.ThumbLimit == 0 {
		d.ThumbLimit = DefaultDetailThumbs
	}
}

func applySitemapDefaults(cfg *Config) {
	if cfg.Sitemap.Path == "" {
		cfg.Sitemap.Path = DefaultSitemapPath
	}
	if cfg.Sitemap.Lastmod == "" {
		cfg.Sitemap.Lastmod = LastmodAuto
	}
}

func applyRenderDefaults(cfg *Config) {
	if cfg.Render.NoteLimit == 0 {
		cfg.Render.NoteLimit = DefaultNoteLimit
	}
	if cfg.Render.ThumbLimit == 0 {
		cfg.Render.ThumbLimit = DefaultCardThumbs
	}
}

func applyOutputDefaults(cfg *Config) {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "."
	}
}

func applyLoggingDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}

func applyWatchDefaults(cfg *Config) {
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = Duration(DefaultDebounce)
	}
	if cfg.Watch.RescanInterval == nil {
		d := Duration(DefaultRescanInterval)
		cfg.Watch.RescanInterval = &d
	}
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
