package sitemap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
)

func TestNewBuilderRequiresAbsoluteBase(t *testing.T) {
	_, err := NewBuilder("")
	require.ErrorIs(t, err, ErrBaseURLMissing)

	_, err = NewBuilder("www.example.com")
	require.ErrorIs(t, err, ErrBaseURLInvalid)

	b, err := NewBuilder("https://cars.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://cars.example.com/", b.Absolute(""))
	assert.Equal(t, "https://cars.example.com/", b.Absolute("index.html"))
	assert.Equal(t, "https://cars.example.com/cars/demio.html", b.Absolute("/cars/demio.html"))
}

func TestBuilderWrite(t *testing.T) {
	b, err := NewBuilder("https://cars.example.com")
	require.NoError(t, err)

	day := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	b.Add("index.html", day)
	b.Add("market.html", day)
	b.Add("cars/mazda-demio.html", time.Time{})
	assert.Equal(t, 3, b.Len())

	dir := t.TempDir()
	path, err := b.Write(dir, "sitemap.xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sitemap.xml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, doc, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, doc, "<loc>https://cars.example.com/</loc>\n    <lastmod>2026-03-01</lastmod>")
	assert.Contains(t, doc, "<loc>https://cars.example.com/market.html</loc>")
	assert.Contains(t, doc, "<loc>https://cars.example.com/cars/mazda-demio.html</loc>\n  </url>")
}

func TestDatesWithoutGit(t *testing.T) {
	build := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	meta := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	auto := NewDates(config.LastmodAuto, build, t.TempDir())
	assert.Equal(t, build, auto.Page("index.html"))
	assert.Equal(t, meta, auto.Detail("Cars/demio", meta))
	assert.Equal(t, build, auto.Detail("Cars/demio", time.Time{}))

	fixed := NewDates(config.LastmodBuild, build, t.TempDir())
	assert.Equal(t, build, fixed.Detail("Cars/demio", meta))

	noRepo := NewDates(config.LastmodGit, build, t.TempDir())
	assert.Equal(t, build, noRepo.Page("index.html"))
	assert.Equal(t, build, noRepo.Detail("Cars/demio", meta))
}

func TestDatesFromGit(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	first := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	second := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)

	commit := func(rel, content string, when time.Time) {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
		_, err := wt.Add(rel)
		require.NoError(t, err)
		_, err = wt.Commit("update "+rel, &git.CommitOptions{
			Author: &object.Signature{Name: "Lot", Email: "lot@example.com", When: when},
		})
		require.NoError(t, err)
	}
	commit("Cars/Mazda Demio/desc.txt", "Price: $5,000", first)
	commit("Cars/Honda Fit/desc.txt", "Price: $4,000", second)

	build := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	dates := NewDates(config.LastmodGit, build, filepath.Join(dir, "Cars"))

	assert.True(t, dates.Detail(filepath.Join(dir, "Cars", "Mazda Demio"), time.Time{}).Equal(first))
	assert.True(t, dates.Detail(filepath.Join(dir, "Cars", "Honda Fit"), time.Time{}).Equal(second))
	assert.Equal(t, build, dates.Detail(filepath.Join(dir, "Cars", "Untracked"), time.Time{}))
	assert.Equal(t, build, dates.Page(filepath.Join(t.TempDir(), "index.html")))
}
