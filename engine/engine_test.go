package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/queue"
	"github.com/flint2d/flint/engine/renderer"
	"github.com/flint2d/flint/engine/texture"
)

func newTestEngine(t *testing.T) (Engine, *renderer.RecordingBackend) {
	t.Helper()
	backend := renderer.NewRecordingBackend()
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, nil, renderer.WithBackend(backend))
	e := NewEngine(WithRenderer(r))
	return e, backend
}

func queueTestSprite(t *testing.T, e Engine, tex texture.Handle) {
	t.Helper()
	require.NoError(t, e.QueueSprite(tex, common.Rect{X: 0, Y: 0, Width: 32, Height: 32}, common.Vec2{}, common.Vec2{}, 0, 0))
}

func TestFrameStateTransitions(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Equal(t, FrameClosed, e.FrameState())

	require.NoError(t, e.BeginFrame())
	assert.Equal(t, FrameOpen, e.FrameState())

	require.NoError(t, e.EndFrame())
	assert.Equal(t, FrameClosed, e.FrameState())
}

func TestBeginFrameWhileOpen(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.BeginFrame())

	err := e.BeginFrame()
	var fsErr *renderer.FrameStateError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "BeginFrame", fsErr.Op)
	assert.Equal(t, "open", fsErr.State)
}

func TestQueueDrawWhileClosed(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.QueueDraw(queue.DrawItem{Kind: queue.KindSprite})
	var fsErr *renderer.FrameStateError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "QueueDraw", fsErr.Op)
}

func TestQueueDrawWithLayerWhileClosed(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.QueueDrawWithLayer(queue.DrawItem{Kind: queue.KindSprite}, 2, 1)
	var fsErr *renderer.FrameStateError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "QueueDraw", fsErr.Op)
}

func TestQueueDrawWithLayerOverridesSortKeys(t *testing.T) {
	e, backend := newTestEngine(t)

	tex, err := e.Renderer().CreateTexture(texture.Solid(common.White))
	require.NoError(t, err)

	require.NoError(t, e.BeginFrame())
	// The sprite's own keys would draw it last; the override puts it first.
	sprite := queue.DrawItem{Kind: queue.KindSprite, Texture: tex, Layer: 5, Z: 5}
	require.NoError(t, e.QueueDrawWithLayer(sprite, 0, 0))
	require.NoError(t, e.QueueRect(common.Rect{Width: 64, Height: 64}, common.Color{R: 1, A: 1}, 4, 0, common.Color{}, 1, 0))
	require.NoError(t, e.EndFrame())

	frames := backend.Frames()
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Batches, 2)
	assert.Equal(t, queue.KindSprite, frames[0].Batches[0].Kind)
	assert.Equal(t, queue.KindRect, frames[0].Batches[1].Kind)
}

func TestEndFrameWhileClosed(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.EndFrame()
	var fsErr *renderer.FrameStateError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "EndFrame", fsErr.Op)
}

func TestSameTextureSpritesFormOneBatch(t *testing.T) {
	e, backend := newTestEngine(t)

	tex, err := e.Renderer().CreateTexture(texture.Solid(common.White))
	require.NoError(t, err)

	require.NoError(t, e.BeginFrame())
	for range 100 {
		queueTestSprite(t, e, tex)
	}
	require.NoError(t, e.EndFrame())

	frames := backend.Frames()
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Batches, 1)
	assert.Equal(t, uint32(100), frames[0].Batches[0].Count)
	assert.Equal(t, tex, frames[0].Batches[0].Texture)
}

func TestLayersOrderBatches(t *testing.T) {
	e, backend := newTestEngine(t)

	tex, err := e.Renderer().CreateTexture(texture.Solid(common.White))
	require.NoError(t, err)

	require.NoError(t, e.BeginFrame())
	// The sprite is queued first but sits on a higher layer, so the rect
	// must come out first after sorting.
	require.NoError(t, e.QueueSprite(tex, common.Rect{Width: 32, Height: 32}, common.Vec2{}, common.Vec2{}, 1, 0))
	require.NoError(t, e.QueueRect(common.Rect{Width: 64, Height: 64}, common.Color{R: 1, A: 1}, 4, 0, common.Color{}, 0, 0))
	require.NoError(t, e.EndFrame())

	frames := backend.Frames()
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Batches, 2)
	assert.Equal(t, queue.KindRect, frames[0].Batches[0].Kind)
	assert.Equal(t, queue.KindSprite, frames[0].Batches[1].Kind)
}

func TestQueueTile(t *testing.T) {
	e, backend := newTestEngine(t)

	tex, err := e.Renderer().CreateTexture(texture.Solid(common.White))
	require.NoError(t, err)
	atlas, err := texture.NewAtlas(tex, common.Size{Width: 32, Height: 32}, common.Size{Width: 16, Height: 16})
	require.NoError(t, err)

	require.NoError(t, e.BeginFrame())
	require.NoError(t, e.QueueTile(atlas, 3, common.Rect{Width: 16, Height: 16}, 0, 0))
	assert.Error(t, e.QueueTile(atlas, 4, common.Rect{Width: 16, Height: 16}, 0, 0))
	require.NoError(t, e.EndFrame())

	frames := backend.Frames()
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Batches, 1)
	assert.Equal(t, tex, frames[0].Batches[0].Texture)
}

func TestRecoverableFaultAtBeginDropsFrame(t *testing.T) {
	e, backend := newTestEngine(t)

	tex, err := e.Renderer().CreateTexture(texture.Solid(common.White))
	require.NoError(t, err)

	backend.FailNextBeginFrame(&renderer.SurfaceError{Kind: renderer.SurfaceLost})

	// The frame still opens and accepts draws.
	require.NoError(t, e.BeginFrame())
	assert.Equal(t, FrameOpen, e.FrameState())
	queueTestSprite(t, e, tex)
	require.NoError(t, e.EndFrame())

	// The surface was reconfigured and nothing was presented.
	assert.Len(t, backend.Reconfigures(), 1)
	assert.Empty(t, backend.Frames())
}

func TestTimeoutAtPresentSkipsFrame(t *testing.T) {
	e, backend := newTestEngine(t)

	tex, err := e.Renderer().CreateTexture(texture.Solid(common.White))
	require.NoError(t, err)

	backend.FailNextEndFrame(&renderer.SurfaceError{Kind: renderer.SurfaceTimeout})

	require.NoError(t, e.BeginFrame())
	queueTestSprite(t, e, tex)
	require.NoError(t, e.EndFrame())

	// A timeout only skips the present; no reconfiguration happens.
	assert.Empty(t, backend.Reconfigures())
	assert.Equal(t, FrameClosed, e.FrameState())
}

func TestOutdatedAtPresentReconfigures(t *testing.T) {
	e, backend := newTestEngine(t)

	backend.FailNextEndFrame(&renderer.SurfaceError{Kind: renderer.SurfaceOutdated})

	require.NoError(t, e.BeginFrame())
	require.NoError(t, e.EndFrame())

	assert.Len(t, backend.Reconfigures(), 1)
}

func TestOutOfMemoryIsFatal(t *testing.T) {
	e, backend := newTestEngine(t)

	backend.FailNextEndFrame(&renderer.SurfaceError{Kind: renderer.SurfaceOutOfMemory})

	require.NoError(t, e.BeginFrame())
	err := e.EndFrame()
	var se *renderer.SurfaceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, renderer.SurfaceOutOfMemory, se.Kind)
	assert.False(t, se.Recoverable())

	// The frame still closed; the caller decides whether to shut down.
	assert.Equal(t, FrameClosed, e.FrameState())
}

func TestQueueClearedAfterDroppedFrame(t *testing.T) {
	e, backend := newTestEngine(t)

	tex, err := e.Renderer().CreateTexture(texture.Solid(common.White))
	require.NoError(t, err)

	backend.FailNextBeginFrame(&renderer.SurfaceError{Kind: renderer.SurfaceOutdated})
	require.NoError(t, e.BeginFrame())
	for range 5 {
		queueTestSprite(t, e, tex)
	}
	require.NoError(t, e.EndFrame())

	// Draws from the dropped frame must not leak into this one.
	require.NoError(t, e.BeginFrame())
	queueTestSprite(t, e, tex)
	require.NoError(t, e.EndFrame())

	frames := backend.Frames()
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Batches, 1)
	assert.Equal(t, uint32(1), frames[0].Batches[0].Count)
}

func TestSubmitErrorStillClosesFrame(t *testing.T) {
	e, _ := newTestEngine(t)

	require.NoError(t, e.BeginFrame())
	// Unknown texture handle makes Submit fail.
	require.NoError(t, e.QueueSprite(texture.Handle(42), common.Rect{Width: 8, Height: 8}, common.Vec2{}, common.Vec2{}, 0, 0))

	err := e.EndFrame()
	assert.True(t, errors.Is(err, renderer.ErrTextureNotFound))
	assert.Equal(t, FrameClosed, e.FrameState())

	// The next frame works normally.
	require.NoError(t, e.BeginFrame())
	require.NoError(t, e.EndFrame())
}

func TestEmptyFramePresents(t *testing.T) {
	e, backend := newTestEngine(t)

	require.NoError(t, e.BeginFrame())
	require.NoError(t, e.EndFrame())

	frames := backend.Frames()
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Presented)
	assert.Empty(t, frames[0].Batches)
}
