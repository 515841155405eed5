package commands

import (
	"context"
	stdErrors "errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
	"git.home.luguber.info/inful/lotbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/lotbuilder/internal/logfields"
)

// Global is shared state passed to every command.
type Global struct {
	// Out receives user-facing progress lines.
	Out io.Writer
}

// NewGlobal returns the process-wide defaults.
func NewGlobal() *Global {
	return &Global{Out: os.Stdout}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"lotbuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Scan the inventory and generate cards, detail pages and sitemap"`
	Inspect InspectCmd `cmd:"" help:"Print the vehicle records without writing anything"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever the inventory or template pages change"`
}

// AfterApply runs after flag parsing; sets up logging until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// LoadConfig reads the configuration file. A missing file falls back to
// the built-in defaults so a bare inventory folder works without setup.
func LoadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if stdErrors.Is(err, config.ErrConfigNotFound) {
		slog.Warn("Configuration file not found, using defaults", logfields.Path(configPath))
		return config.Default(), nil
	}
	if stdErrors.Is(err, config.ErrInvalidConfig) {
		return nil, errors.ValidationError("invalid configuration").
			WithCause(err).WithContext("path", configPath).Build()
	}
	return nil, errors.ConfigError("load configuration").
		WithCause(err).WithContext("path", configPath).Build()
}

// configureLogging applies the configured level and format. --verbose
// always wins.
func configureLogging(cfg *config.Config, verbose bool) {
	level := cfg.Logging.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if config.NormalizeLogFormat(string(cfg.Logging.Format)) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// overrideInventory points the build at another inventory folder. A public
// path that was derived from the old folder follows the new one.
func overrideInventory(cfg *config.Config, dir string) {
	if dir == "" {
		return
	}
	derived := path.Clean(filepath.ToSlash(cfg.Inventory.Dir))
	if filepath.IsAbs(cfg.Inventory.Dir) {
		derived = filepath.Base(cfg.Inventory.Dir)
	}
	if cfg.Inventory.PublicPath == derived {
		if filepath.IsAbs(dir) {
			cfg.Inventory.PublicPath = filepath.Base(dir)
		} else {
			cfg.Inventory.PublicPath = path.Clean(filepath.ToSlash(dir))
		}
	}
	cfg.Inventory.Dir = dir
}

// signalContext is canceled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
