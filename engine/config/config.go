// package config loads engine configuration from TOML files.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/flint2d/flint/common"
)

// WindowConfig configures the platform window.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

// RendererConfig configures the GPU renderer.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`

	// MSAA is the multisample count: 1, 4, 8, or 16.
	MSAA int `toml:"msaa"`

	// ClearColor is the per-frame clear color as RGBA in [0, 1].
	ClearColor [4]float32 `toml:"clear_color"`

	// ForceSoftware forces the CPU fallback adapter.
	ForceSoftware bool `toml:"force_software"`
}

// EngineConfig configures the frame loop.
type EngineConfig struct {
	// FrameLimit caps frames per second; 0 means uncapped.
	FrameLimit int `toml:"frame_limit"`

	// Workers sets the batcher worker pool size; 0 uses the CPU count.
	Workers int `toml:"workers"`
}

// Config is the root engine configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Engine   EngineConfig   `toml:"engine"`
}

// Default returns the configuration used when no file is provided: an
// 800x600 resizable window, vsync, 4x MSAA, opaque black clear color.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     "flint",
			Width:     800,
			Height:    600,
			Resizable: true,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			MSAA:        4,
			ClearColor:  [4]float32{0, 0, 0, 1},
		},
	}
}

// Load reads a TOML configuration file, layered over Default so omitted
// keys keep their default values.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - Config: the parsed configuration
//   - error: an error if the file cannot be read or parsed, or a value is invalid
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		return fmt.Errorf("config: unknown present_mode %q", c.Renderer.PresentMode)
	}
	switch c.Renderer.MSAA {
	case 1, 4, 8, 16:
	default:
		return fmt.Errorf("config: msaa must be 1, 4, 8, or 16, got %d", c.Renderer.MSAA)
	}
	if c.Engine.FrameLimit < 0 {
		return fmt.Errorf("config: frame_limit must be non-negative, got %d", c.Engine.FrameLimit)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Engine.Workers)
	}
	return nil
}

// Color returns the renderer clear color as a common.Color.
//
// Returns:
//   - common.Color: the clear color
func (c RendererConfig) Color() common.Color {
	return common.Color{
		R: c.ClearColor[0],
		G: c.ClearColor[1],
		B: c.ClearColor[2],
		A: c.ClearColor[3],
	}
}
