// Package config loads the program configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"vulkan-bootstrap/devices"
	"vulkan-bootstrap/layers"

	"gopkg.in/yaml.v3"
)

// Config is the configuration of the program.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Validation ValidationConfig `yaml:"validation"`
	Device     DeviceConfig     `yaml:"device"`
	Log        LogConfig        `yaml:"log"`
}

// WindowConfig describes the native window.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// ValidationConfig lists the instance layers enabled for debugging.
type ValidationConfig struct {
	Enabled bool     `yaml:"enabled"`
	Layers  []string `yaml:"layers"`
}

// DeviceConfig controls physical device selection.
type DeviceConfig struct {
	// Policy decides whether a present queue family is required.
	Policy devices.Policy `yaml:"policy"`

	// Extensions are device extensions enabled on the logical device.
	Extensions []string `yaml:"extensions"`
}

// LogConfig sets up the slog default logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1024,
			Height: 768,
			Title:  "Vulkan Bootstrap",
		},
		Validation: ValidationConfig{
			Layers: []string{layers.Validation},
		},
		Device: DeviceConfig{
			Policy: devices.PolicyGraphicsAndPresent,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file at path on top of the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values which cannot be caught while decoding.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d",
			c.Window.Width, c.Window.Height)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}

	for _, name := range c.Validation.Layers {
		if name == "" {
			return fmt.Errorf("validation layer names must not be empty")
		}
	}

	return nil
}

// EnableDebug turns on validation layers and debug logging.
func (c *Config) EnableDebug() {
	c.Validation.Enabled = true
	c.Log.Level = "debug"
}

// RequestedLayers returns the instance layers to enable, which is empty when
// validation is off.
func (c *Config) RequestedLayers() []string {
	if !c.Validation.Enabled {
		return nil
	}
	return c.Validation.Layers
}
