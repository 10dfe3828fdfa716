package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flint2d/flint/engine/renderer"
	"github.com/flint2d/flint/engine/texture"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: byte(x), G: byte(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodePNG(t, width, height), 0o644))
	return path
}

func newTestLoader(t *testing.T, options ...LoaderBuilderOption) (Loader, *renderer.RecordingBackend) {
	t.Helper()
	backend := renderer.NewRecordingBackend()
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, nil, renderer.WithBackend(backend))
	options = append([]LoaderBuilderOption{WithRenderer(r), WithLoadWorkers(2)}, options...)
	return NewLoader(BackendTypeImage, options...), backend
}

func TestLoad(t *testing.T) {
	l, backend := newTestLoader(t)
	path := writePNG(t, t.TempDir(), "sprite.png", 4, 2)

	handle, err := l.Load(path)
	require.NoError(t, err)
	assert.NotEqual(t, texture.None, handle)
	assert.Equal(t, 1, backend.TextureCount())
	assert.Equal(t, handle, l.Get(path))
}

func TestLoadIsCached(t *testing.T) {
	l, backend := newTestLoader(t)
	path := writePNG(t, t.TempDir(), "sprite.png", 4, 4)

	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.TextureCount())
}

func TestLoadScaled(t *testing.T) {
	l, _ := newTestLoader(t)
	path := writePNG(t, t.TempDir(), "big.png", 64, 64)

	handle, err := l.LoadScaled(path, 16, 16)
	require.NoError(t, err)
	assert.NotEqual(t, texture.None, handle)
}

func TestLoadMissingFile(t *testing.T) {
	l, _ := newTestLoader(t)

	_, err := l.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLoadWithoutRenderer(t *testing.T) {
	l := NewLoader(BackendTypeImage)
	path := writePNG(t, t.TempDir(), "sprite.png", 2, 2)

	_, err := l.Load(path)
	assert.Error(t, err)
}

func TestLoadReader(t *testing.T) {
	l, _ := newTestLoader(t)

	handle, err := l.LoadReader("embedded", bytes.NewReader(encodePNG(t, 8, 8)))
	require.NoError(t, err)
	assert.Equal(t, handle, l.Get("embedded"))
}

func TestLoadAll(t *testing.T) {
	l, backend := newTestLoader(t)
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "a.png", 2, 2),
		writePNG(t, dir, "b.png", 4, 4),
		writePNG(t, dir, "c.png", 8, 8),
	}

	handles, err := l.LoadAll(paths...)
	require.NoError(t, err)
	assert.Len(t, handles, 3)
	assert.Equal(t, 3, backend.TextureCount())
	assert.Len(t, l.Textures(), 3)
}

func TestLoadAllReportsFirstError(t *testing.T) {
	l, _ := newTestLoader(t)
	dir := t.TempDir()
	good := writePNG(t, dir, "good.png", 2, 2)
	bad := filepath.Join(dir, "missing.png")

	handles, err := l.LoadAll(good, bad)
	assert.Error(t, err)
	assert.Contains(t, handles, good)
	assert.NotContains(t, handles, bad)
}

func TestLoadAtlas(t *testing.T) {
	l, _ := newTestLoader(t)
	dir := t.TempDir()
	writePNG(t, dir, "sheet.png", 32, 16)

	manifest := filepath.Join(dir, "sheet.toml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
image = "sheet.png"
tile_width = 16
tile_height = 16
`), 0o644))

	atlas, err := l.LoadAtlas(manifest)
	require.NoError(t, err)
	assert.Equal(t, 2, atlas.Tiles())
	assert.NotEqual(t, texture.None, atlas.Texture())

	// A second load returns the cached atlas.
	again, err := l.LoadAtlas(manifest)
	require.NoError(t, err)
	assert.Same(t, atlas, again)
}

func TestLoadAtlasWithoutImage(t *testing.T) {
	l, _ := newTestLoader(t)
	manifest := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(manifest, []byte(`tile_width = 16`), 0o644))

	_, err := l.LoadAtlas(manifest)
	assert.Error(t, err)
}

func TestWithTexture(t *testing.T) {
	l, _ := newTestLoader(t, WithTexture("builtin", texture.Handle(7)))

	assert.Equal(t, texture.Handle(7), l.Get("builtin"))
}
