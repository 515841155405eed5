// Package images picks the primary photo and thumbnails for a vehicle.
package images

import (
	"path"
	"strings"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultMainMarker  = "main image"
	DefaultPlaceholder = "assets/placeholder.jpg"
	DefaultThumbLimit  = 4
)

var defaultExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Options configures Resolve.
type Options struct {
	Extensions  []string
	MainMarker  string
	Placeholder string
	ThumbLimit  int
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = defaultExtensions
	}
	if o.MainMarker == "" {
		o.MainMarker = DefaultMainMarker
	}
	if o.Placeholder == "" {
		o.Placeholder = DefaultPlaceholder
	}
	if o.ThumbLimit < 0 {
		o.ThumbLimit = 0
	}
	return o
}

// Set is the resolved image selection for one vehicle.
type Set struct {
	Main string
	// All holds every image path in enumeration order.
	All []string
	// Others holds every image except Main, uncapped.
	Others []string
	// Thumbs is Others capped at the configured limit.
	Thumbs []string
}

// Resolve filters fileNames down to images and selects the primary image
// and thumbnails. Paths are relDir joined with the file name using forward
// slashes. Main is never empty: the first image whose path contains the
// main marker, else the first image, else the placeholder.
func Resolve(relDir string, fileNames []string, opts Options) Set {
	opts = opts.withDefaults()
	base := strings.ReplaceAll(relDir, `\`, "/")
	marker := strings.ToLower(opts.MainMarker)

	var set Set
	for _, name := range fileNames {
		if !hasExtension(name, opts.Extensions) {
			continue
		}
		p := path.Join(base, strings.ReplaceAll(name, `\`, "/"))
		set.All = append(set.All, p)
		if set.Main == "" && strings.Contains(strings.ToLower(p), marker) {
			set.Main = p
		}
	}

	switch {
	case set.Main != "":
	case len(set.All) > 0:
		set.Main = set.All[0]
	default:
		set.Main = opts.Placeholder
	}

	for _, p := range set.All {
		if p != set.Main {
			set.Others = append(set.Others, p)
		}
	}
	set.Thumbs = set.Limit(opts.ThumbLimit)
	return set
}

// Limit returns at most n non-primary images, for callers that need a
// different cap than the one Resolve applied.
func (s Set) Limit(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(s.Others) {
		n = len(s.Others)
	}
	return append([]string(nil), s.Others[:n]...)
}

// HasImages reports whether any real image was found.
func (s Set) HasImages() bool {
	return len(s.All) > 0
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
