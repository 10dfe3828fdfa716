package renderer

import (
	"fmt"
	"sync"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/batch"
	"github.com/flint2d/flint/engine/queue"
	"github.com/flint2d/flint/engine/texture"
)

// RecordedFrame captures everything submitted between one BeginFrame/EndFrame
// pair on a RecordingBackend.
type RecordedFrame struct {
	// View is the view-projection matrix of the last Submit in the frame.
	View common.Mat4

	// Batches is the concatenation of all batches submitted during the frame.
	Batches []batch.Batch

	// InstanceBytes is the per-kind packed instance data size at Submit time.
	InstanceBytes [queue.KindCount]int

	// Presented is true once EndFrame completed without error.
	Presented bool
}

// RecordingBackend is an in-memory RendererBackend that records every call
// instead of touching a GPU. It validates the same contracts as the WebGPU
// backend (texture staging data, frame pairing, known texture handles) and
// supports fault injection, which makes it suitable for tests and headless
// runs alike.
type RecordingBackend struct {
	mu sync.Mutex

	textures   map[texture.Handle]common.TextureStagingData
	nextHandle texture.Handle

	frameOpen bool
	current   RecordedFrame
	frames    []RecordedFrame

	reconfigures [][2]int
	presentMode  PresentMode
	clearColor   common.Color

	beginErr error
	endErr   error
	closed   bool
}

var _ RendererBackend = &RecordingBackend{}

// NewRecordingBackend creates a RecordingBackend. As with the WebGPU backend,
// handle 0 is pre-registered as the built-in white texture.
//
// Returns:
//   - *RecordingBackend: the backend, ready to inject via WithBackend
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{
		textures: map[texture.Handle]common.TextureStagingData{
			texture.None: texture.Solid(common.White),
		},
		nextHandle: 1,
	}
}

// FailNextBeginFrame arranges for the next BeginFrame call to return err.
// The fault is consumed by that call.
//
// Parameters:
//   - err: the error to return
func (b *RecordingBackend) FailNextBeginFrame(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.beginErr = err
}

// FailNextEndFrame arranges for the next EndFrame call to return err.
// The fault is consumed by that call.
//
// Parameters:
//   - err: the error to return
func (b *RecordingBackend) FailNextEndFrame(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endErr = err
}

// Frames returns a copy of all completed frames recorded so far.
//
// Returns:
//   - []RecordedFrame: the recorded frames in order
func (b *RecordingBackend) Frames() []RecordedFrame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedFrame, len(b.frames))
	copy(out, b.frames)
	return out
}

// Reconfigures returns every (width, height) pair passed to ConfigureSurface,
// in call order.
//
// Returns:
//   - [][2]int: the recorded surface configurations
func (b *RecordingBackend) Reconfigures() [][2]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][2]int, len(b.reconfigures))
	copy(out, b.reconfigures)
	return out
}

// TextureCount returns the number of registered textures, including the
// built-in white texture.
//
// Returns:
//   - int: the texture count
func (b *RecordingBackend) TextureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

// Closed reports whether Close has been called.
//
// Returns:
//   - bool: true once closed
func (b *RecordingBackend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *RecordingBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reconfigures = append(b.reconfigures, [2]int{width, height})
}

func (b *RecordingBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *RecordingBackend) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = c
}

func (b *RecordingBackend) CreateTexture(stagingData common.TextureStagingData) (texture.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if stagingData.Width == 0 || stagingData.Height == 0 {
		return texture.None, &ResourceCreationError{
			Resource: "texture",
			Err:      fmt.Errorf("dimensions must be non-zero, got %dx%d", stagingData.Width, stagingData.Height),
		}
	}
	if expected := int(stagingData.Width) * int(stagingData.Height) * 4; len(stagingData.Pixels) != expected {
		return texture.None, &ResourceCreationError{
			Resource: "texture",
			Err:      fmt.Errorf("pixel data is %d bytes, want %d for %dx%d RGBA8", len(stagingData.Pixels), expected, stagingData.Width, stagingData.Height),
		}
	}

	handle := b.nextHandle
	b.nextHandle++
	b.textures[handle] = stagingData
	return handle, nil
}

func (b *RecordingBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.beginErr; err != nil {
		b.beginErr = nil
		return err
	}
	if b.frameOpen {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	b.frameOpen = true
	b.current = RecordedFrame{}
	return nil
}

func (b *RecordingBackend) Submit(view common.Mat4, batches []batch.Batch, pool *batch.InstancePool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frameOpen {
		return fmt.Errorf("no frame in progress")
	}

	for _, bt := range batches {
		if _, ok := b.textures[bt.Texture]; !ok {
			return fmt.Errorf("batch references texture %d: %w", bt.Texture, ErrTextureNotFound)
		}
	}

	b.current.View = view
	b.current.Batches = append(b.current.Batches, batches...)
	for kind := range queue.KindCount {
		b.current.InstanceBytes[kind] = len(pool.Bytes(queue.PrimitiveKind(kind)))
	}
	return nil
}

func (b *RecordingBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frameOpen {
		return fmt.Errorf("no frame in progress")
	}
	b.frameOpen = false

	if err := b.endErr; err != nil {
		b.endErr = nil
		return err
	}

	b.current.Presented = true
	b.frames = append(b.frames, b.current)
	return nil
}

func (b *RecordingBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
