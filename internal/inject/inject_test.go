package inject

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketPage = `<!DOCTYPE html>
<html>
<head><title>Market</title></head>
<body>
<main>
  <h1>Our Cars</h1>
  <div class="cars-grid">
    <div class="service-card">old</div>
  </div>
  <p>after</p>
</main>
</body>
</html>
`

var marketSlot = Slot{Name: "listing", Marker: `<div class="cars-grid">`}

func TestParseMarker(t *testing.T) {
	m, err := ParseMarker(`<div class="cars-grid" id="grid">`)
	require.NoError(t, err)
	assert.Equal(t, "div", m.Tag)
	require.Len(t, m.Attrs, 2)
	assert.Equal(t, "class", m.Attrs[0].Key)
	assert.Equal(t, "cars-grid", m.Attrs[0].Val)

	for _, bad := range []string{"", "cars-grid", "</div>", "<img src=x>", "text <div>"} {
		_, err := ParseMarker(bad)
		assert.ErrorIs(t, err, ErrInvalidMarker, bad)
	}
}

func TestInjectReplacesRegion(t *testing.T) {
	out, err := Inject([]byte(marketPage), marketSlot, `<div class="service-card">new</div>`)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "<div class=\"cars-grid\">\n<div class=\"service-card\">new</div>\n</div>\n  <p>after</p>")
	assert.NotContains(t, s, ">old<")
	assert.Contains(t, s, "<h1>Our Cars</h1>")
}

func TestInjectIsIdempotent(t *testing.T) {
	fragment := `<div class="service-card"><div class="inner">a</div></div>
<div class="service-card">b</div>`
	once, err := Inject([]byte(marketPage), marketSlot, fragment)
	require.NoError(t, err)
	twice, err := Inject(once, marketSlot, fragment)
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
}

func TestInjectPreservesBytesOutsideRegion(t *testing.T) {
	doc := []byte(marketPage)
	region, err := Find(doc, marketSlot)
	require.NoError(t, err)

	out, err := Inject(doc, marketSlot, "X")
	require.NoError(t, err)
	assert.Equal(t, string(doc[:region.Start]), string(out[:region.Start]))
	assert.Equal(t, string(doc[region.End:]), string(out[region.Start+3:]))
}

func TestFindMatchesAttributeOrderAndExtraClasses(t *testing.T) {
	doc := []byte(`<section id="x" class="wide cars-grid dark"><p>a</p></section><div class="cars-grid">z</div>`)
	region, err := Find(doc, Slot{Name: "s", Marker: `<section class="cars-grid" id="x">`})
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", string(doc[region.Start:region.End]))
}

func TestFindSecondOccurrence(t *testing.T) {
	doc := []byte(`<div class="services-grid">services</div>
<div class="services-grid"><p>featured</p></div>
<!-- Testimonials Section -->`)
	slot := Slot{Name: "home", Marker: `<div class="services-grid">`, Occurrence: 2}
	region, err := Find(doc, slot)
	require.NoError(t, err)
	assert.Equal(t, "<p>featured</p>", string(doc[region.Start:region.End]))

	out, err := Inject(doc, slot, "cards")
	require.NoError(t, err)
	assert.Contains(t, string(out), `<div class="services-grid">services</div>`)
	assert.Contains(t, string(out), "<div class=\"services-grid\">\ncards\n</div>")
}

func TestFindIgnoresMarkupInCommentsAndScripts(t *testing.T) {
	doc := []byte(`<!-- <div class="cars-grid"> --><script>var s = '<div class="cars-grid">';</script><div class="cars-grid">real</div>`)
	region, err := Find(doc, marketSlot)
	require.NoError(t, err)
	assert.Equal(t, "real", string(doc[region.Start:region.End]))
}

func TestFindLandmarkMode(t *testing.T) {
	doc := []byte(`<main><div class="cars-grid"><div>a</div></div>
  <div class="footer-note">n</div>
</main>`)
	slot := Slot{Name: "listing", Marker: `<div class="cars-grid">`, EndLandmark: "</main>"}
	region, err := Find(doc, slot)
	require.NoError(t, err)
	assert.Equal(t, `<div>a</div></div>
  <div class="footer-note">n`, string(doc[region.Start:region.End]))

	_, err = Find(doc, Slot{Name: "listing", Marker: slot.Marker, EndLandmark: "<!-- nope -->"})
	assert.ErrorIs(t, err, ErrRegionUnterminated)
}

func TestFindErrors(t *testing.T) {
	_, err := Find([]byte(`<div class="other"></div>`), marketSlot)
	assert.ErrorIs(t, err, ErrMarkerNotFound)

	_, err = Find([]byte(`<div class="cars-grid"></div>`), Slot{Name: "s", Marker: marketSlot.Marker, Occurrence: 2})
	assert.ErrorIs(t, err, ErrMarkerNotFound)

	_, err = Find([]byte(`<div class="cars-grid"><div>open`), marketSlot)
	assert.ErrorIs(t, err, ErrRegionUnterminated)

	_, err = Find([]byte(marketPage), Slot{Name: "s", Marker: "cars-grid"})
	assert.ErrorIs(t, err, ErrInvalidMarker)
}

func TestInjectFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "market.html")
	dst := filepath.Join(dir, "out", "market.html")
	require.NoError(t, os.WriteFile(src, []byte(marketPage), 0o600))

	res, err := InjectFile(src, dst, marketSlot, "cards")
	require.NoError(t, err)
	assert.True(t, res.Changed)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(got), "\ncards\n")

	res, err = InjectFile(src, dst, marketSlot, "cards")
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestInjectFileInPlaceIsStable(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "market.html")
	require.NoError(t, os.WriteFile(page, []byte(marketPage), 0o600))

	_, err := InjectFile(page, page, marketSlot, "cards")
	require.NoError(t, err)
	first, err := os.ReadFile(page)
	require.NoError(t, err)

	res, err := InjectFile(page, page, marketSlot, "cards")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	second, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestInjectFileLeavesPageOnFailure(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "market.html")
	require.NoError(t, os.WriteFile(page, []byte("<html></html>"), 0o600))

	_, err := InjectFile(page, page, marketSlot, "cards")
	require.ErrorIs(t, err, ErrMarkerNotFound)
	got, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(got))

	_, err = InjectFile(filepath.Join(dir, "missing.html"), page, marketSlot, "cards")
	assert.ErrorIs(t, err, ErrPageNotFound)
}
