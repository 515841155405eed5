package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithPageMeta(t *testing.T) {
	meta := PageMeta{Fingerprint: "abc123", Lastmod: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}

	page := []byte("<html><HEAD><title>x</title></HEAD><body></body></html>")
	got := string(WithPageMeta(page, meta))
	require.Equal(t, "<html><HEAD><title>x</title>"+
		"<meta name=\"lotbuilder:fingerprint\" content=\"abc123\">\n"+
		"<meta name=\"lotbuilder:lastmod\" content=\"2026-01-02\">\n"+
		"</HEAD><body></body></html>", got)

	require.Equal(t, meta, ReadPageMeta([]byte(got)))

	headless := string(WithPageMeta([]byte("<p>hi</p>"), meta))
	require.True(t, len(headless) > 0 && headless[:5] == "<meta")
}

func TestReadPageMeta_IgnoresBody(t *testing.T) {
	doc := []byte(`<html><head></head><body><meta name="lotbuilder:fingerprint" content="nope"></body></html>`)
	require.Equal(t, PageMeta{}, ReadPageMeta(doc))

	bad := []byte(`<head><meta name="lotbuilder:lastmod" content="yesterday"></head>`)
	require.True(t, ReadPageMeta(bad).Lastmod.IsZero())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("honda-fit", []byte("<html>a</html>"))
	require.NotEmpty(t, a)
	require.Equal(t, a, Fingerprint("honda-fit", []byte("<html>a</html>")))
	require.NotEqual(t, a, Fingerprint("honda-fit", []byte("<html>b</html>")))
	require.NotEqual(t, a, Fingerprint("honda-fit-2", []byte("<html>a</html>")))
}
