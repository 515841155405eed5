package inventory

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackSlug = "vehicle"

// Slugify converts a display name into a URL-safe slug: accents are
// stripped, letters lowercased and every run of other characters collapsed
// into a single hyphen.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}

// SlugAllocator hands out slugs that are unique within one run. Collisions
// receive a numeric suffix starting at 2, in allocation order.
type SlugAllocator struct {
	used map[string]struct{}
}

// NewSlugAllocator returns an empty allocator.
func NewSlugAllocator() *SlugAllocator {
	return &SlugAllocator{used: make(map[string]struct{})}
}

// Allocate returns a unique slug for name.
func (a *SlugAllocator) Allocate(name string) string {
	base := Slugify(name)
	slug := base
	for n := 2; a.taken(slug); n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	a.used[slug] = struct{}{}
	return slug
}

func (a *SlugAllocator) taken(slug string) bool {
	_, ok := a.used[slug]
	return ok
}
