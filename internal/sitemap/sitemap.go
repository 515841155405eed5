// Package sitemap writes a sitemaps.org 0.9 document for the generated site.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/lotbuilder/internal/output"
)

// Namespace is the sitemaps.org schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// DateLayout is the W3C date form used for lastmod.
const DateLayout = "2006-01-02"

var (
	ErrBaseURLMissing = errors.New("site base URL is required for a sitemap")
	ErrBaseURLInvalid = errors.New("site base URL must be an absolute http(s) URL")
)

// URL is one <url> entry.
type URL struct {
	Loc     string `xml:"loc"`
	Lastmod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Builder collects entries in insertion order.
type Builder struct {
	base string
	urls []URL
}

// NewBuilder validates baseURL and returns an empty builder.
func NewBuilder(baseURL string) (*Builder, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrBaseURLMissing
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURLInvalid, baseURL)
	}
	return &Builder{base: strings.TrimRight(baseURL, "/")}, nil
}

// Add appends the page at the site-relative path rel. An empty rel is the
// homepage. A zero lastmod omits the element.
func (b *Builder) Add(rel string, lastmod time.Time) {
	entry := URL{Loc: b.Absolute(rel)}
	if !lastmod.IsZero() {
		entry.Lastmod = lastmod.UTC().Format(DateLayout)
	}
	b.urls = append(b.urls, entry)
}

// Absolute joins rel onto the base URL.
func (b *Builder) Absolute(rel string) string {
	rel = strings.TrimLeft(strings.ReplaceAll(rel, "\\", "/"), "/")
	if rel == "" || rel == "index.html" {
		return b.base + "/"
	}
	return b.base + "/" + rel
}

// URLs returns a copy of the collected entries.
func (b *Builder) URLs() []URL {
	return append([]URL(nil), b.urls...)
}

// Len is the number of entries.
func (b *Builder) Len() int { return len(b.urls) }

// Bytes encodes the sitemap document.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{Xmlns: Namespace, URLs: b.urls}); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Write encodes the sitemap to outDir/rel atomically and returns the path.
func (b *Builder) Write(outDir, rel string) (string, error) {
	data, err := b.Bytes()
	if err != nil {
		return "", err
	}
	return output.WriteFile(outDir, rel, data)
}
