package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flint2d/flint/common"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flint.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "asteroids"
width = 1280
height = 720
resizable = false

[renderer]
present_mode = "uncapped"
msaa = 8
clear_color = [0.1, 0.2, 0.3, 1.0]

[engine]
frame_limit = 144
workers = 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "asteroids", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.False(t, cfg.Window.Resizable)
	assert.Equal(t, "uncapped", cfg.Renderer.PresentMode)
	assert.Equal(t, 8, cfg.Renderer.MSAA)
	assert.Equal(t, common.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, cfg.Renderer.Color())
	assert.Equal(t, 144, cfg.Engine.FrameLimit)
	assert.Equal(t, 4, cfg.Engine.Workers)
}

func TestLoadOmittedKeysKeepDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "minimal"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "minimal", cfg.Window.Title)
	assert.Equal(t, def.Window.Width, cfg.Window.Width)
	assert.Equal(t, def.Renderer.PresentMode, cfg.Renderer.PresentMode)
	assert.Equal(t, def.Renderer.MSAA, cfg.Renderer.MSAA)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name: "bad present mode",
			contents: `
[renderer]
present_mode = "mailbox"
`,
		},
		{
			name: "bad msaa",
			contents: `
[renderer]
msaa = 3
`,
		},
		{
			name: "bad window size",
			contents: `
[window]
width = -1
`,
		},
		{
			name: "negative frame limit",
			contents: `
[engine]
frame_limit = -10
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	assert.Equal(t, common.Color{A: 1}, cfg.Renderer.Color())
}
