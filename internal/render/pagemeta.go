package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/inful/mdfp"
	xhtml "golang.org/x/net/html"
)

// Meta names carried by generated detail pages.
const (
	MetaFingerprint = "lotbuilder:fingerprint"
	MetaLastmod     = "lotbuilder:lastmod"
)

// LastmodLayout is the date format used for lastmod values.
const LastmodLayout = "2006-01-02"

// PageMeta is the generator bookkeeping stored in a detail page head.
type PageMeta struct {
	Fingerprint string
	Lastmod     time.Time
}

// Fingerprint hashes a rendered page body for slug.
func Fingerprint(slug string, page []byte) string {
	return mdfp.CalculateFingerprintFromParts("slug: "+slug, string(page))
}

// ReadPageMeta extracts the fingerprint and lastmod meta tags from doc.
// Missing tags leave the corresponding field zero.
func ReadPageMeta(doc []byte) PageMeta {
	var meta PageMeta
	z := xhtml.NewTokenizer(bytes.NewReader(doc))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return meta
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "body" {
				return meta
			}
			if tok.Data != "meta" {
				continue
			}
			name, content := attr(tok, "name"), attr(tok, "content")
			switch name {
			case MetaFingerprint:
				meta.Fingerprint = content
			case MetaLastmod:
				if t, err := time.Parse(LastmodLayout, content); err == nil {
					meta.Lastmod = t
				}
			}
		}
	}
}

// WithPageMeta inserts the meta tags before the first </head>, or at the
// start of the document when it has no head end tag.
func WithPageMeta(page []byte, meta PageMeta) []byte {
	tags := fmt.Sprintf("<meta name=\"%s\" content=\"%s\">\n<meta name=\"%s\" content=\"%s\">\n",
		MetaFingerprint, html.EscapeString(meta.Fingerprint),
		MetaLastmod, meta.Lastmod.UTC().Format(LastmodLayout))

	at := headEndOffset(page)
	out := make([]byte, 0, len(page)+len(tags))
	out = append(out, page[:at]...)
	out = append(out, tags...)
	out = append(out, page[at:]...)
	return out
}

func headEndOffset(page []byte) int {
	z := xhtml.NewTokenizer(bytes.NewReader(page))
	offset := 0
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			return 0
		}
		raw := z.Raw()
		if tt == xhtml.EndTagToken {
			name, _ := z.TagName()
			if string(name) == "head" {
				return offset
			}
		}
		offset += len(raw)
	}
}

func attr(tok xhtml.Token, key string) string {
	for _, a := range tok.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
