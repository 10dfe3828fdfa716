// package loader loads image assets from disk into renderer textures, with
// caching, batch loading through a worker pool, and TOML atlas manifests.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/renderer"
	"github.com/flint2d/flint/engine/texture"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeImage selects the image decoding backend (PNG, JPEG, BMP,
	// TIFF, WebP).
	BackendTypeImage LoaderBackendType = iota
)

// atlasManifest is the TOML shape of an atlas description file. The image
// path is resolved relative to the manifest's directory.
type atlasManifest struct {
	Image      string  `toml:"image"`
	TileWidth  float32 `toml:"tile_width"`
	TileHeight float32 `toml:"tile_height"`
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	renderer renderer.Renderer

	textureCache map[string]texture.Handle
	atlasCache   map[string]*texture.Atlas

	backend loaderBackend

	// loadPool runs batch loads concurrently. Decoding dominates load time,
	// so the pool is sized to the CPU count by default.
	loadPool    worker.DynamicWorkerPool
	loadWorkers int
}

// Loader defines the public-facing interface for loading and caching
// textures. It abstracts the file format behind a generic backend, uploads
// decoded pixels through the attached Renderer, and caches handles so
// repeated loads of the same path are free.
type Loader interface {
	// Load decodes an image file, uploads it as a texture, and caches the
	// handle. If the path is already cached the cached handle is returned.
	//
	// Parameters:
	//   - path: the file path to the image file
	//
	// Returns:
	//   - texture.Handle: the texture handle
	//   - error: error if decoding or upload fails
	Load(path string) (texture.Handle, error)

	// LoadScaled decodes an image file, resamples it to the given dimensions,
	// uploads it as a texture, and caches the handle under the path.
	//
	// Parameters:
	//   - path: the file path to the image file
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - texture.Handle: the texture handle
	//   - error: error if decoding, resampling, or upload fails
	LoadScaled(path string, width, height int) (texture.Handle, error)

	// LoadReader decodes an image from a reader stream and caches the handle
	// by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded texture
	//   - r: the reader providing image data
	//
	// Returns:
	//   - texture.Handle: the texture handle
	//   - error: error if decoding or upload fails
	LoadReader(name string, r io.Reader) (texture.Handle, error)

	// LoadAll loads multiple image files concurrently through the loader's
	// worker pool. All paths are attempted; the first error encountered is
	// returned alongside the handles that did load.
	//
	// Parameters:
	//   - paths: the file paths to load
	//
	// Returns:
	//   - map[string]texture.Handle: successfully loaded handles keyed by path
	//   - error: the first load error, or nil
	LoadAll(paths ...string) (map[string]texture.Handle, error)

	// LoadAtlas reads a TOML atlas manifest, loads the atlas image it names,
	// and returns an Atlas addressing its tiles. The result is cached by the
	// manifest path.
	//
	// The manifest names the image file (relative to the manifest) and the
	// tile dimensions:
	//
	//	image = "sheet.png"
	//	tile_width = 16
	//	tile_height = 16
	//
	// Parameters:
	//   - path: the file path to the TOML manifest
	//
	// Returns:
	//   - *texture.Atlas: the atlas over the loaded texture
	//   - error: error if the manifest, image, or tile layout is invalid
	LoadAtlas(path string) (*texture.Atlas, error)

	// Get retrieves a cached texture handle by name. Returns texture.None if
	// not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - texture.Handle: the cached handle or texture.None
	Get(name string) texture.Handle

	// Textures returns a copy of the full texture cache.
	//
	// Returns:
	//   - map[string]texture.Handle: all cached handles keyed by name
	Textures() map[string]texture.Handle
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeImage)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:           sync.RWMutex{},
		textureCache: make(map[string]texture.Handle),
		atlasCache:   make(map[string]*texture.Atlas),
		loadWorkers:  max(runtime.NumCPU()-1, 1),
	}

	switch backendType {
	case BackendTypeImage:
		l.backend = newImageLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}

	// Initialize the pool after options so WithLoadWorkers can override the default.
	l.loadPool = worker.NewDynamicWorkerPool(l.loadWorkers, 256, 1*time.Second)

	return l
}

func (l *loader) Load(path string) (texture.Handle, error) {
	if cached, ok := l.cached(path); ok {
		return cached, nil
	}

	staging, err := l.backend.Load(path)
	if err != nil {
		return texture.None, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return l.upload(path, staging)
}

func (l *loader) LoadScaled(path string, width, height int) (texture.Handle, error) {
	if cached, ok := l.cached(path); ok {
		return cached, nil
	}

	staging, err := l.backend.LoadScaled(path, width, height)
	if err != nil {
		return texture.None, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return l.upload(path, staging)
}

func (l *loader) LoadReader(name string, r io.Reader) (texture.Handle, error) {
	if cached, ok := l.cached(name); ok {
		return cached, nil
	}

	staging, err := l.backend.LoadReader(r)
	if err != nil {
		return texture.None, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	return l.upload(name, staging)
}

func (l *loader) LoadAll(paths ...string) (map[string]texture.Handle, error) {
	handles := make(map[string]texture.Handle, len(paths))
	var firstErr error
	var resultMu sync.Mutex

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		pCap := path // capture for closure
		l.loadPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				handle, err := l.Load(pCap)

				resultMu.Lock()
				defer resultMu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return nil, err
				}
				handles[pCap] = handle
				return nil, nil
			},
		})
	}
	wg.Wait()

	return handles, firstErr
}

func (l *loader) LoadAtlas(path string) (*texture.Atlas, error) {
	l.mu.RLock()
	if cached, ok := l.atlasCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	var manifest atlasManifest
	if _, err := toml.DecodeFile(path, &manifest); err != nil {
		return nil, fmt.Errorf("failed to read atlas manifest %s: %w", path, err)
	}
	if manifest.Image == "" {
		return nil, fmt.Errorf("atlas manifest %s names no image", path)
	}

	imagePath := manifest.Image
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(path), imagePath)
	}

	staging, err := l.backend.Load(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load atlas image %s: %w", imagePath, err)
	}

	handle, err := l.upload(imagePath, staging)
	if err != nil {
		return nil, err
	}

	atlas, err := texture.NewAtlas(handle,
		common.Size{Width: float32(staging.Width), Height: float32(staging.Height)},
		common.Size{Width: manifest.TileWidth, Height: manifest.TileHeight},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid atlas manifest %s: %w", path, err)
	}

	l.mu.Lock()
	l.atlasCache[path] = atlas
	l.mu.Unlock()

	return atlas, nil
}

func (l *loader) Get(name string) texture.Handle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textureCache[name]
}

func (l *loader) Textures() map[string]texture.Handle {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]texture.Handle, len(l.textureCache))
	for k, v := range l.textureCache {
		result[k] = v
	}
	return result
}

// cached looks up a texture handle without taking the write lock.
func (l *loader) cached(name string) (texture.Handle, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	handle, ok := l.textureCache[name]
	return handle, ok
}

// upload creates the GPU texture and caches the handle. Concurrent loads of
// the same name race to upload but the first cached handle wins.
func (l *loader) upload(name string, staging common.TextureStagingData) (texture.Handle, error) {
	if l.renderer == nil {
		return texture.None, fmt.Errorf("loader: cannot upload %q without a Renderer", name)
	}

	handle, err := l.renderer.CreateTexture(staging)
	if err != nil {
		return texture.None, fmt.Errorf("failed to create texture for %q: %w", name, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.textureCache[name]; ok {
		return existing, nil
	}
	l.textureCache[name] = handle
	return handle, nil
}
