package loader

import (
	"github.com/flint2d/flint/engine/renderer"
	"github.com/flint2d/flint/engine/texture"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRenderer is an option builder that sets the Renderer used by the Loader.
//
// Parameters:
//   - r: the renderer instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer option to a loader
func WithRenderer(r renderer.Renderer) LoaderBuilderOption {
	return func(l *loader) {
		l.renderer = r
	}
}

// WithTexture is an option builder that pre-populates the texture cache with a handle.
//
// Parameters:
//   - key: the cache key for the texture
//   - handle: the texture handle to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture option to a loader
func WithTexture(key string, handle texture.Handle) LoaderBuilderOption {
	return func(l *loader) {
		l.textureCache[key] = handle
	}
}

// WithLoadWorkers sets the number of worker goroutines used by LoadAll.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of load workers (minimum 1)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithLoadWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n < 1 {
			n = 1
		}
		l.loadWorkers = n
	}
}
