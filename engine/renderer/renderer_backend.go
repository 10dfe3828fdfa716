package renderer

import (
	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/batch"
	"github.com/flint2d/flint/engine/texture"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the backend contract the Renderer delegates to. The
// concrete WebGPU backend implements it against real GPU resources; tests
// inject a recording implementation via WithBackend.
type RendererBackend interface {
	// ConfigureSurface (re)configures the presentation surface for the given
	// pixel dimensions. Also called to recover from lost or outdated surfaces.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode. Takes effect on the next
	// ConfigureSurface call.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the surface is cleared to at the start of each frame.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// CreateTexture uploads pixel data to the GPU and returns an opaque handle
	// for use in batch keys.
	//
	// Parameters:
	//   - stagingData: RGBA8 pixel data and dimensions
	//
	// Returns:
	//   - texture.Handle: handle identifying the uploaded texture
	//   - error: a *ResourceCreationError if validation or GPU creation fails
	CreateTexture(stagingData common.TextureStagingData) (texture.Handle, error)

	// BeginFrame acquires the swapchain texture and begins the frame's render pass.
	//
	// Returns:
	//   - error: a *SurfaceError if the surface texture could not be acquired
	BeginFrame() error

	// Submit uploads the packed instance data and encodes one instanced draw
	// per batch into the current render pass.
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

	// Close releases all GPU resources held by the backend.
	Close()
}
