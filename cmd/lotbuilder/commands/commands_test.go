package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/lotbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title>Cars</title></head>
<body>
<div class="services-grid">Import</div>
<div class="services-grid">
    <p>old featured</p>
</div>
<div class="cars-grid">
    <p>old listing</p>
</div>
</body>
</html>
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// newSite lays out an inventory with two vehicles plus both template pages.
func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cars", "Mazda Demio", "details.txt"),
		"Price: $5,500\nYear: 2015\n")
	writeFile(t, filepath.Join(root, "Cars", "Mazda Demio", "main image.jpg"), "jpg")
	writeFile(t, filepath.Join(root, "Cars", "Honda Fit - SOLD", "info.txt"), "Price: $4,000\n")
	writeFile(t, filepath.Join(root, "market.html"), testPage)
	writeFile(t, filepath.Join(root, "index.html"), testPage)
	return root
}

func writeConfig(t *testing.T, root, extra string) string {
	t.Helper()
	path := filepath.Join(root, "lotbuilder.yaml")
	content := "inventory:\n  dir: " + filepath.Join(root, "Cars") + "\n" +
		"site:\n  name: Test Motors\n  template_dir: " + root + "\n" +
		"output:\n  directory: " + filepath.Join(root, "public") + "\n" + extra
	writeFile(t, path, content)
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("lotbuilder"),
		kong.Vars{"version": "test"},
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = kctx.Run(&Global{Out: &out}, &cli)
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	root := newSite(t)
	cfgPath := writeConfig(t, root, "sitemap:\n  enabled: false\n")

	out, err := run(t, "-c", cfgPath, "build", "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "Starting lotbuilder build")
	assert.Contains(t, out, "Build completed successfully")
	assert.Contains(t, out, "vehicles: 2 (sold 1)")

	market := readFile(t, filepath.Join(root, "public", "market.html"))
	assert.Contains(t, market, "Mazda Demio")
	assert.NotContains(t, market, "old listing")
	assert.FileExists(t, filepath.Join(root, "public", "build-report.json"))
	assert.FileExists(t, filepath.Join(root, "public", "build-report.txt"))
	assert.Equal(t, testPage, readFile(t, filepath.Join(root, "market.html")), "template page must stay untouched")
}

func TestBuildCommandFlagsOverrideConfig(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	root := newSite(t)
	cfgPath := writeConfig(t, root, "detail:\n  enabled: true\n")
	other := filepath.Join(root, "elsewhere")
	metricsFile := filepath.Join(root, "lotbuilder.prom")

	out, err := run(t, "-c", cfgPath, "build", "-o", other, "--no-detail", "--metrics-file", metricsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Build completed with")

	assert.FileExists(t, filepath.Join(other, "market.html"))
	assert.NoDirExists(t, filepath.Join(other, config.DefaultDetailDir))
	assert.NoFileExists(t, filepath.Join(root, "public", "market.html"))

	prom := readFile(t, metricsFile)
	assert.Contains(t, prom, "lotbuilder_build_outcomes_total")
	assert.Contains(t, prom, "lotbuilder_vehicles")
}

func TestBuildCommandWithoutConfigUsesDefaults(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvOutputDir, "")
	root := newSite(t)
	t.Chdir(root)

	out, err := run(t, "build")
	require.NoError(t, err)
	// Without a base URL the sitemap is skipped with a warning.
	assert.Contains(t, out, "Build completed with 1 warning(s)")

	market := readFile(t, filepath.Join(root, "market.html"))
	assert.Contains(t, market, `src="Cars/Mazda%20Demio/main%20image.jpg"`)
	assert.Contains(t, readFile(t, filepath.Join(root, "index.html")), "Mazda Demio")
}

func TestBuildCommandMissingTemplateFails(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	root := newSite(t)
	require.NoError(t, os.Remove(filepath.Join(root, "index.html")))
	cfgPath := writeConfig(t, root, "")

	out, err := run(t, "-c", cfgPath, "build")
	require.Error(t, err)
	assert.Contains(t, out, "Build failed")
	assert.NoFileExists(t, filepath.Join(root, "public", "market.html"))
}

func TestInspectCommandJSON(t *testing.T) {
	root := newSite(t)
	cfgPath := writeConfig(t, root, "")

	out, err := run(t, "-c", cfgPath, "inspect", "--format", "json")
	require.NoError(t, err)

	var records []vehicle.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)

	byName := map[string]vehicle.Record{}
	for _, r := range records {
		byName[r.Name] = r
	}
	require.Contains(t, byName, "Honda Fit")
	assert.True(t, byName["Honda Fit"].Sold)
	assert.Equal(t, "$5,500", byName["Mazda Demio"].Price)
	assert.Equal(t, "Cars/Mazda Demio/main image.jpg", byName["Mazda Demio"].MainImage)
	assert.NoDirExists(t, filepath.Join(root, "public"))
}

func TestInspectCommandText(t *testing.T) {
	root := newSite(t)
	cfgPath := writeConfig(t, root, "")

	out, err := run(t, "-c", cfgPath, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Mazda Demio")
	assert.Contains(t, out, "sold")
	assert.Contains(t, out, "2 vehicle(s)")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lotbuilder.yaml")

	out, err := run(t, "-c", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized successfully")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Detail.Enabled)

	_, err = run(t, "-c", path, "init")
	require.Error(t, err)
	assert.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err))

	_, err = run(t, "-c", path, "init", "--force")
	require.NoError(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.DefaultInventoryDir, cfg.Inventory.Dir)
	})

	t.Run("invalid values are validation errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lotbuilder.yaml")
		writeFile(t, path, "home:\n  limit: -1\n")
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Equal(t, ferrors.CategoryValidation, ferrors.GetCategory(err))
		assert.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	})

	t.Run("malformed yaml is a config error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lotbuilder.yaml")
		writeFile(t, path, "inventory: [\n")
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	})
}

func TestOverrideInventory(t *testing.T) {
	cfg := config.Default()
	overrideInventory(cfg, "stock/cars")
	assert.Equal(t, "stock/cars", cfg.Inventory.Dir)
	assert.Equal(t, "stock/cars", cfg.Inventory.PublicPath)

	cfg = config.Default()
	cfg.Inventory.PublicPath = "media/cars"
	overrideInventory(cfg, "/srv/stock")
	assert.Equal(t, "/srv/stock", cfg.Inventory.Dir)
	assert.Equal(t, "media/cars", cfg.Inventory.PublicPath, "explicit public path is kept")
}

func TestWatchOptions(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "lotbuilder.yaml")
	writeFile(t, cfgPath, "")

	cfg := config.Default()
	cfg.Site.TemplateDir = root
	cfg.Detail.Enabled = true
	cfg.Home.Page = cfg.Listing.Page
	rescan := config.Duration(time.Minute)
	cfg.Watch.RescanInterval = &rescan

	opts := watchOptions(cfg, cfgPath)
	assert.Equal(t, []string{cfg.Inventory.Dir}, opts.Dirs)
	assert.Equal(t, []string{
		filepath.Join(root, config.DefaultListingPage),
		filepath.Join(root, config.DefaultDetailTemplate),
		cfgPath,
	}, opts.Files)
	assert.Equal(t, config.DefaultDebounce, opts.Debounce)
	assert.Equal(t, time.Minute, opts.RescanInterval)

	opts = watchOptions(cfg, filepath.Join(root, "absent.yaml"))
	assert.Len(t, opts.Files, 2)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
