// package engine coordinates the frame lifecycle: the tick and render
// loops, the per-frame draw queue, batching, and submission to the
// renderer, including recovery from presentation surface faults.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/batch"
	"github.com/flint2d/flint/engine/camera"
	"github.com/flint2d/flint/engine/profiler"
	"github.com/flint2d/flint/engine/queue"
	"github.com/flint2d/flint/engine/renderer"
	"github.com/flint2d/flint/engine/texture"
	"github.com/flint2d/flint/engine/window"
)

// FrameState tracks where the engine is in the frame lifecycle.
type FrameState int

const (
	// FrameClosed means no frame is in progress. BeginFrame is the only
	// legal frame operation.
	FrameClosed FrameState = iota

	// FrameOpen means a frame is accepting draws. QueueDraw and EndFrame
	// are legal.
	FrameOpen

	// FrameSubmitting means EndFrame is sorting, batching, and submitting.
	// No frame operation is legal until it completes.
	FrameSubmitting
)

// String returns the name of the frame state.
func (s FrameState) String() string {
	switch s {
	case FrameClosed:
		return "closed"
	case FrameOpen:
		return "open"
	case FrameSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	renderer renderer.Renderer
	camera   camera.Camera

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	// Frame lifecycle state, guarded by frameMu. The queue, batcher, and
	// pool are only touched between BeginFrame and EndFrame.
	frameMu         sync.Mutex
	frameState      FrameState
	surfaceAcquired bool
	queue           *queue.RenderQueue
	batcher         batch.Batcher
	pool            *batch.InstancePool

	// Last known surface size, used to reconfigure after surface faults.
	width  int
	height int
}

// Engine is the main entry point for the engine.
// It orchestrates the frame lifecycle, render loop, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil when running headless
	Window() window.Window

	// Renderer returns the renderer driving the engine's frames.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Camera returns the engine's camera.
	//
	// Returns:
	//   - camera.Camera: the camera instance
	Camera() camera.Camera

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, physics, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame,
	// between BeginFrame and EndFrame. Use this to queue the frame's draws.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// FrameState returns the current frame lifecycle state.
	//
	// Returns:
	//   - FrameState: FrameClosed, FrameOpen, or FrameSubmitting
	FrameState() FrameState

	// BeginFrame opens a frame: resets the instance pool and acquires the
	// surface. When the surface reports a recoverable fault (lost or
	// outdated), the surface is reconfigured and the frame opens anyway;
	// its draws are accepted and dropped at EndFrame. Fatal faults leave
	// the frame closed.
	//
	// Returns:
	//   - error: a *renderer.FrameStateError if a frame is already open, or
	//     a fatal surface error
	BeginFrame() error

	// QueueDraw adds a draw item to the open frame's render queue.
	//
	// Parameters:
	//   - item: the draw item
	//
	// Returns:
	//   - error: a *renderer.FrameStateError if no frame is open
	QueueDraw(item queue.DrawItem) error

	// QueueDrawWithLayer adds a draw item to the open frame's render queue,
	// overriding the item's layer and z sort keys.
	//
	// Parameters:
	//   - item: the draw item
	//   - layer: the draw layer (higher draws later)
	//   - z: the order within the layer (higher draws later)
	//
	// Returns:
	//   - error: a *renderer.FrameStateError if no frame is open
	QueueDrawWithLayer(item queue.DrawItem, layer, z int32) error

	// QueueSprite queues a textured quad covering dst, sampling the texture
	// region described by uvOffset and uvScale.
	//
	// Parameters:
	//   - tex: the texture handle
	//   - dst: the destination rectangle in world pixels
	//   - uvOffset: the top-left of the sampled region in normalized UV
	//   - uvScale: the size of the sampled region in normalized UV (zero means the full texture)
	//   - layer: the draw layer (higher draws later)
	//   - z: the order within the layer (higher draws later)
	//
	// Returns:
	//   - error: a *renderer.FrameStateError if no frame is open
	QueueSprite(tex texture.Handle, dst common.Rect, uvOffset, uvScale common.Vec2, layer, z int32) error

	// QueueRect queues a rounded rectangle covering dst.
	//
	// Parameters:
	//   - dst: the destination rectangle in world pixels
	//   - fill: the fill color
	//   - cornerRadius: the corner radius in pixels
	//   - borderThickness: the border thickness in pixels; 0 disables the border
	//   - borderColor: the border color
	//   - layer: the draw layer (higher draws later)
	//   - z: the order within the layer (higher draws later)
	//
	// Returns:
	//   - error: a *renderer.FrameStateError if no frame is open
	QueueRect(dst common.Rect, fill common.Color, cornerRadius, borderThickness float32, borderColor common.Color, layer, z int32) error

	// QueueTile queues a sprite covering dst, sampling one tile of a texture
	// atlas.
	//
	// Parameters:
	//   - atlas: the texture atlas
	//   - tile: the row-major tile index
	//   - dst: the destination rectangle in world pixels
	//   - layer: the draw layer (higher draws later)
	//   - z: the order within the layer (higher draws later)
	//
	// Returns:
	//   - error: a *renderer.FrameStateError if no frame is open, or an error
	//     if the tile index is out of range
	QueueTile(atlas *texture.Atlas, tile int, dst common.Rect, layer, z int32) error

	// QueueGlyph queues a glyph quad covering dst, sampling coverage from
	// the glyph atlas region described by uvOffset and uvScale.
	//
	// Parameters:
	//   - tex: the glyph atlas texture handle
	//   - dst: the destination rectangle in world pixels
	//   - uvOffset: the top-left of the glyph region in normalized UV
	//   - uvScale: the size of the glyph region in normalized UV
	//   - layer: the draw layer (higher draws later)
	//   - z: the order within the layer (higher draws later)
	//
	// Returns:
	//   - error: a *renderer.FrameStateError if no frame is open
	QueueGlyph(tex texture.Handle, dst common.Rect, uvOffset, uvScale common.Vec2, layer, z int32) error

	// EndFrame closes the frame: sorts the queue, builds batches, submits
	// them, and presents. The queue is cleared and the frame returns to
	// FrameClosed regardless of outcome. Recoverable surface faults are
	// absorbed (the frame is dropped or its present skipped); out-of-memory
	// and batching failures are returned.
	//
	// Returns:
	//   - error: a *renderer.FrameStateError if no frame is open, or a fatal error
	EndFrame() error

	// Run starts the main engine loop (blocks until window closes).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// The render queue, batcher, and instance pool are created with defaults
// unless overridden by options.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, camera, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		frameState:       FrameClosed,
		queue:            queue.NewRenderQueue(),
		pool:             batch.NewInstancePool(),
		width:            800,
		height:           600,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.batcher == nil {
		e.batcher = batch.NewBatcher()
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}

	if e.window != nil {
		e.width = e.window.Width()
		e.height = e.window.Height()
		e.window.SetResizeCallback(func(width, height int) {
			e.frameMu.Lock()
			e.width = width
			e.height = height
			e.frameMu.Unlock()
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) FrameState() FrameState {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	return e.frameState
}

func (e *engine) BeginFrame() error {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if e.frameState != FrameClosed {
		return &renderer.FrameStateError{Op: "BeginFrame", State: e.frameState.String()}
	}

	e.pool.Reset()
	e.surfaceAcquired = false

	if err := e.renderer.BeginFrame(); err != nil {
		var se *renderer.SurfaceError
		if errors.As(err, &se) && se.Recoverable() {
			// Reconfigure and open the frame without a surface: draws are
			// accepted so producers stay oblivious, and EndFrame drops them.
			log.Printf("engine: surface %s at frame start, reconfiguring %dx%d", se.Kind, e.width, e.height)
			e.renderer.Resize(e.width, e.height)
			e.frameState = FrameOpen
			return nil
		}
		return err
	}

	e.surfaceAcquired = true
	e.frameState = FrameOpen
	return nil
}

func (e *engine) QueueDraw(item queue.DrawItem) error {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if e.frameState != FrameOpen {
		return &renderer.FrameStateError{Op: "QueueDraw", State: e.frameState.String()}
	}
	e.queue.Push(item)
	return nil
}

func (e *engine) QueueDrawWithLayer(item queue.DrawItem, layer, z int32) error {
	item.Layer = layer
	item.Z = z
	return e.QueueDraw(item)
}

func (e *engine) QueueSprite(tex texture.Handle, dst common.Rect, uvOffset, uvScale common.Vec2, layer, z int32) error {
	return e.QueueDraw(queue.DrawItem{
		Kind:      queue.KindSprite,
		Texture:   tex,
		Transform: common.Compose2D(dst.X, dst.Y, dst.Width, dst.Height, 1, 1, 0),
		Layer:     layer,
		Z:         z,
		UVOffset:  uvOffset,
		UVScale:   uvScale,
	})
}

func (e *engine) QueueRect(dst common.Rect, fill common.Color, cornerRadius, borderThickness float32, borderColor common.Color, layer, z int32) error {
	// The rect quad is centered, so the transform places the rect's center
	// and scales by the half extent.
	return e.QueueDraw(queue.DrawItem{
		Kind:            queue.KindRect,
		Transform:       common.Compose2D(dst.X+dst.Width/2, dst.Y+dst.Height/2, dst.Width/2, dst.Height/2, 1, 1, 0),
		Layer:           layer,
		Z:               z,
		Tint:            fill,
		Size:            common.Size{Width: dst.Width, Height: dst.Height},
		CornerRadius:    cornerRadius,
		BorderThickness: borderThickness,
		BorderColor:     borderColor,
	})
}

func (e *engine) QueueTile(atlas *texture.Atlas, tile int, dst common.Rect, layer, z int32) error {
	uvOffset, uvScale, err := atlas.TileUV(tile)
	if err != nil {
		return err
	}
	return e.QueueSprite(atlas.Texture(), dst, uvOffset, uvScale, layer, z)
}

func (e *engine) QueueGlyph(tex texture.Handle, dst common.Rect, uvOffset, uvScale common.Vec2, layer, z int32) error {
	return e.QueueDraw(queue.DrawItem{
		Kind:      queue.KindGlyph,
		Texture:   tex,
		Transform: common.Compose2D(dst.X, dst.Y, dst.Width, dst.Height, 1, 1, 0),
		Layer:     layer,
		Z:         z,
		UVOffset:  uvOffset,
		UVScale:   uvScale,
	})
}

func (e *engine) EndFrame() error {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if e.frameState != FrameOpen {
		return &renderer.FrameStateError{Op: "EndFrame", State: e.frameState.String()}
	}
	e.frameState = FrameSubmitting

	// The queue is cleared and the frame closes no matter how submission
	// ends, so a faulted frame never leaks draws into the next one.
	defer func() {
		e.queue.Clear()
		e.frameState = FrameClosed
	}()

	if !e.surfaceAcquired {
		// Frame opened after a recoverable fault; drop it.
		return nil
	}

	items := e.queue.Sorted()
	batches, buildErr := e.batcher.Build(items, e.pool)

	var submitErr error
	if buildErr == nil && len(batches) > 0 {
		view := e.camera.ViewMatrix(float32(e.width), float32(e.height))
		submitErr = e.renderer.Submit(view, batches, e.pool)
	}

	// The backend frame must be closed even when batching or submission
	// failed, or the next BeginFrame would find the surface still held.
	endErr := e.renderer.EndFrame()

	if buildErr != nil {
		return fmt.Errorf("engine: batching frame: %w", buildErr)
	}
	if submitErr != nil {
		return fmt.Errorf("engine: submitting frame: %w", submitErr)
	}
	if endErr != nil {
		return e.handleSurfaceFault(endErr)
	}
	return nil
}

// handleSurfaceFault applies the surface fault policy to an EndFrame error:
// lost and outdated surfaces are reconfigured and the frame dropped, a
// timeout only skips the present, and out-of-memory is fatal.
func (e *engine) handleSurfaceFault(err error) error {
	var se *renderer.SurfaceError
	if !errors.As(err, &se) {
		return err
	}

	switch se.Kind {
	case renderer.SurfaceLost, renderer.SurfaceOutdated:
		log.Printf("engine: surface %s at present, reconfiguring %dx%d", se.Kind, e.width, e.height)
		e.renderer.Resize(e.width, e.height)
		return nil
	case renderer.SurfaceTimeout:
		log.Printf("engine: surface acquire timed out, skipping present")
		return nil
	default:
		return se
	}
}

func (e *engine) Run() {
	e.handle()
	e.window.ProcessMessages()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own
// goroutine. Each iteration runs one full frame lifecycle: BeginFrame, the
// render callback (which queues draws), then EndFrame. Recovers from panics
// to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if e.renderer != nil {
				if err := e.BeginFrame(); err != nil {
					log.Printf("engine: fatal frame error: %v", err)
					e.signalQuit()
					return
				}

				if e.renderCallback != nil {
					e.renderCallback(dt)
				}

				if err := e.EndFrame(); err != nil {
					log.Printf("engine: fatal frame error: %v", err)
					e.signalQuit()
					return
				}
			} else if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Send to channel for immediate update in running engine loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}
