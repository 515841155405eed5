package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration path used when --config is not given.
const DefaultConfigFile = "lotbuilder.yaml"

// ErrConfigNotFound is returned by Load when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config represents the application configuration.
type Config struct {
	Inventory InventoryConfig `yaml:"inventory"`
	Site      SiteConfig      `yaml:"site"`
	Listing   SlotConfig      `yaml:"listing"`
	Home      HomeConfig      `yaml:"home"`
	Detail    DetailConfig    `yaml:"detail"`
	Sitemap   SitemapConfig   `yaml:"sitemap"`
	Render    RenderConfig    `yaml:"render"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Watch     WatchConfig     `yaml:"watch"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// InventoryConfig describes where vehicle folders live and how they are read.
type InventoryConfig struct {
	Dir                   string   `yaml:"dir"`
	PublicPath            string   `yaml:"public_path,omitempty"` // URL prefix for image paths, defaults to dir
	TextExtensions        []string `yaml:"text_extensions,omitempty"`
	ImageExtensions       []string `yaml:"image_extensions,omitempty"`
	MainImageMarker       string   `yaml:"main_image_marker,omitempty"`
	Placeholder           string   `yaml:"placeholder,omitempty"`
	DefaultLocation       string   `yaml:"default_location,omitempty"`
	TruncateAtSecondColon bool     `yaml:"truncate_at_second_colon,omitempty"`
}

// SiteConfig holds dealer-level settings shared by every page.
type SiteConfig struct {
	Name          string `yaml:"name"`
	BaseURL       string `yaml:"base_url,omitempty"`
	TemplateDir   string `yaml:"template_dir,omitempty"`
	Currency      string `yaml:"currency,omitempty"`
	WhatsAppPhone string `yaml:"whatsapp_phone,omitempty"`
	// WhatsAppMessage is a fmt pattern receiving the dealer name and the vehicle label.
	WhatsAppMessage string `yaml:"whatsapp_message,omitempty"`
}

// SlotConfig identifies a template page and the region cards are injected into.
type SlotConfig struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	Page        string `yaml:"page"`
	Marker      string `yaml:"marker"`
	Occurrence  int    `yaml:"occurrence,omitempty"`
	EndLandmark string `yaml:"end_landmark,omitempty"`
}

// IsEnabled reports whether the slot should be injected. Slots are on unless disabled explicitly.
func (s SlotConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// HomeConfig is the homepage featured slot plus its card limit.
type HomeConfig struct {
	SlotConfig `yaml:",inline"`
	Limit      int `yaml:"limit,omitempty"`
}

// DetailConfig controls per-vehicle detail page generation.
type DetailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Template   string `yaml:"template,omitempty"`
	Dir        string `yaml:"dir,omitempty"`
	ThumbLimit int    `yaml:"thumb_limit,omitempty"`
	Prune      bool   `yaml:"prune,omitempty"`
}

// SitemapConfig controls sitemap generation.
type SitemapConfig struct {
	Enabled *bool         `yaml:"enabled,omitempty"`
	Path    string        `yaml:"path,omitempty"`
	Lastmod LastmodSource `yaml:"lastmod,omitempty"`
}

// IsEnabled reports whether the sitemap should be written. Enabled unless disabled explicitly.
func (s SitemapConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// RenderConfig tunes card markup.
type RenderConfig struct {
	NoteLimit  int `yaml:"note_limit,omitempty"`
	ThumbLimit int `yaml:"thumb_limit,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce       Duration  `yaml:"debounce,omitempty"`
	RescanInterval *Duration `yaml:"rescan_interval,omitempty"` // nil means default, zero disables
}

// MetricsConfig configures the Prometheus textfile output.
type MetricsConfig struct {
	TextFile string `yaml:"textfile,omitempty"`
}

// Default returns a configuration with every default applied, matching a
// run without any configuration file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	// #nosec G304 -- config path is provided by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration content, expanding ${ENV} references,
// then applies defaults, environment overrides and validation.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Site.BaseURL = "https://www.example.co.zw"
	example.Detail.Enabled = true

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G306 -- config file is meant to be readable
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
