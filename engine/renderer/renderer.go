// package renderer provides the GPU rendering system: a narrow Renderer
// interface over a swappable backend that draws sorted, batched 2D
// primitives with one instanced draw call per batch.
package renderer

import (
	"sync"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/batch"
	"github.com/flint2d/flint/engine/texture"
	"github.com/flint2d/flint/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *common.Color
	pendingSampler       *common.SamplerStagingData
	injectedBackend      RendererBackend
}

// Renderer defines the interface for the rendering system.
//
// The surface is deliberately narrow: upload textures, then per frame
// begin, submit batches, and end. Frame pacing, sorting, and batching
// live above this interface; everything GPU-specific lives below it in
// the backend.
type Renderer interface {
	// CreateTexture uploads pixel data to the GPU and returns an opaque handle.
	// The handle is stable for the lifetime of the renderer and is used as a
	// batch key component.
	//
	// Parameters:
	//   - stagingData: RGBA8 pixel data and dimensions
	//
	// Returns:
	//   - texture.Handle: handle identifying the uploaded texture
	//   - error: a *ResourceCreationError if validation or GPU creation fails
	CreateTexture(stagingData common.TextureStagingData) (texture.Handle, error)

	// BeginFrame acquires the swapchain texture and begins the frame's render pass.
	// Must be paired with EndFrame.
	//
	// Returns:
	//   - error: a *SurfaceError if the surface texture could not be acquired
	BeginFrame() error

	// Submit uploads packed instance data and encodes one instanced draw per
	// batch into the current render pass. May be called multiple times between
	// BeginFrame and EndFrame.
	//
	// Parameters:
	//   - view: the combined view-projection matrix for the frame
	//   - batches: the batches to draw, in order
	//   - pool: the instance pool holding the packed per-instance records
	//
	// Returns:
	//   - error: an error if a batch references an unknown texture
	Submit(view common.Mat4, batches []batch.Batch, pool *batch.InstancePool) error

	// EndFrame ends the render pass, submits the command buffer to the GPU
	// queue, and presents the surface.
	//
	// Returns:
	//   - error: a *SurfaceError if presentation fails
	EndFrame() error

	// Resize configures the underlying backend to handle a new surface size.
	// Also used to reconfigure the surface after a lost or outdated fault.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames
	// are delivered to the display. A call to Resize is required after changing
	// this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Close releases all GPU resources held by the renderer.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type.
// The window provides the platform surface descriptor and initial dimensions.
// When a backend is injected via WithBackend the window may be nil; the
// injected backend is used as-is and no GPU adapter is requested.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window whose surface the renderer presents to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	if r.injectedBackend != nil {
		r.backend = r.injectedBackend
	} else {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.pendingSampler)
		}
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if win != nil {
		r.backend.ConfigureSurface(win.Width(), win.Height())
	}
	return r
}

func (r *renderer) CreateTexture(stagingData common.TextureStagingData) (texture.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.CreateTexture(stagingData)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Submit(view common.Mat4, batches []batch.Batch, pool *batch.InstancePool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Submit(view, batches, pool)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Close() {
	r.backend.Close()
}
