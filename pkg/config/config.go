// Package config loads the optional YAML configuration file shared by the
// CLI and the bridge server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kataras/design-tagger/pkg/codegen"
	"github.com/kataras/design-tagger/pkg/export"
	"github.com/kataras/design-tagger/pkg/layout"

	"gopkg.in/yaml.v3"
)

// Version is the exporter version written into export metadata by default.
const Version = "1.0.0"

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".design-tagger.yaml"

// TokenEnv names the environment variable holding the access token used to
// fetch remote documents. The token is never read from or written to disk.
const TokenEnv = "DESIGN_TAGGER_TOKEN"

// Config holds all configuration.
type Config struct {
	Plugin PluginConfig      `yaml:"plugin"`
	Layout layout.Thresholds `yaml:"layout"`
	Order  export.Order      `yaml:"order"`
	CSS    CSSConfig         `yaml:"css"`
	Output OutputConfig      `yaml:"output"`
	Images ImagesConfig      `yaml:"images"`
	Server ServerConfig      `yaml:"server"`

	Token string `yaml:"-"`
}

// PluginConfig identifies the exporter in the export metadata.
type PluginConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// CSSConfig controls stylesheet generation.
type CSSConfig struct {
	Dedup codegen.Dedup `yaml:"dedup"`
}

// OutputConfig names the generated files. Empty names skip that file.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	HTML     string `yaml:"html"`
	CSS      string `yaml:"css"`
	JSON     string `yaml:"json"`
	Msgpack  string `yaml:"msgpack"`
	Markdown string `yaml:"markdown"`
}

// ImagesConfig controls image downloads.
type ImagesConfig struct {
	Download    bool   `yaml:"download"`
	Dir         string `yaml:"dir"`
	Concurrency int    `yaml:"concurrency"`
}

// ServerConfig contains bridge server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BodyLimit string `yaml:"bodyLimit"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Plugin: PluginConfig{
			Name:    "Design Tagger",
			Version: Version,
		},
		Layout: layout.DefaultThresholds,
		Order:  export.OrderNative,
		CSS:    CSSConfig{Dedup: codegen.DedupExact},
		Output: OutputConfig{
			Dir:  "output",
			HTML: "index.html",
			CSS:  "styles.css",
			JSON: "export.json",
		},
		Images: ImagesConfig{
			Dir:         "assets",
			Concurrency: 5,
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8089",
			BodyLimit: "10M",
		},
	}
}

// Load reads the configuration file at path on top of the defaults.
// If the file doesn't exist, it returns Default() (not an error).
// The access token is always resolved from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Token = os.Getenv(TokenEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Order {
	case export.OrderNative, export.OrderVisual:
	default:
		return fmt.Errorf("order must be %q or %q, got %q", export.OrderNative, export.OrderVisual, c.Order)
	}

	switch c.CSS.Dedup {
	case codegen.DedupExact, codegen.DedupSelector:
	default:
		return fmt.Errorf("css.dedup must be %q or %q, got %q", codegen.DedupExact, codegen.DedupSelector, c.CSS.Dedup)
	}

	if c.Layout.Alignment < 0 || c.Layout.Spacing < 0 {
		return fmt.Errorf("layout thresholds must not be negative")
	}
	if c.Images.Concurrency < 0 {
		return fmt.Errorf("images.concurrency must not be negative, got %d", c.Images.Concurrency)
	}
	return nil
}

// OutputPath joins name to the output directory. An empty name stays empty.
func (c *Config) OutputPath(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
