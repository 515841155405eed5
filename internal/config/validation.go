package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig wraps every validation failure returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks the configuration after defaults are applied. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.Inventory.Dir) == "" {
		add("inventory.dir must not be empty")
	}
	for _, ext := range c.Inventory.TextExtensions {
		if strings.ContainsAny(ext, `/\`) {
			add("inventory.text_extensions: invalid extension %q", ext)
		}
	}

	validateSlot := func(name string, s SlotConfig) {
		if !s.IsEnabled() {
			return
		}
		if strings.TrimSpace(s.Page) == "" {
			add("%s.page must not be empty", name)
		}
		if strings.TrimSpace(s.Marker) == "" {
			add("%s.marker must not be empty", name)
		}
		if s.Occurrence < 1 {
			add("%s.occurrence must be >= 1, got %d", name, s.Occurrence)
		}
	}
	validateSlot("listing", c.Listing)
	validateSlot("home", c.Home.SlotConfig)
	if c.Home.Limit < 0 {
		add("home.limit must be >= 0, got %d", c.Home.Limit)
	}

	if c.Render.ThumbLimit < 0 {
		add("render.thumb_limit must be >= 0, got %d", c.Render.ThumbLimit)
	}
	if c.Render.NoteLimit < 0 {
		add("render.note_limit must be >= 0, got %d", c.Render.NoteLimit)
	}
	if c.Detail.ThumbLimit < 0 {
		add("detail.thumb_limit must be >= 0, got %d", c.Detail.ThumbLimit)
	}
	if filepath.IsAbs(c.Detail.Dir) || strings.HasPrefix(c.Detail.Dir, "..") {
		add("detail.dir must be relative to the output directory, got %q", c.Detail.Dir)
	}

	if src, err := NormalizeLastmodSource(string(c.Sitemap.Lastmod)); err != nil {
		errs = append(errs, err)
	} else {
		c.Sitemap.Lastmod = src
	}
	if filepath.IsAbs(c.Sitemap.Path) {
		add("sitemap.path must be relative to the output directory, got %q", c.Sitemap.Path)
	}

	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			add("site.base_url must be an absolute URL, got %q", c.Site.BaseURL)
		}
	}
	if strings.Count(c.Site.WhatsAppMessage, "%s") != 2 {
		add("site.whatsapp_message must contain exactly two %%s verbs (dealer name, vehicle)")
	}

	if c.Watch.Debounce < 0 {
		add("watch.debounce must not be negative")
	}
	if c.Watch.RescanInterval != nil && *c.Watch.RescanInterval < 0 {
		add("watch.rescan_interval must not be negative")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
