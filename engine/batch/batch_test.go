package batch

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/queue"
	"github.com/flint2d/flint/engine/texture"
)

func TestInstanceRecordLayouts(t *testing.T) {
	var sprite SpriteInstance
	require.Equal(t, uintptr(SpriteInstanceSize), unsafe.Sizeof(sprite))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(sprite.Model))
	assert.Equal(t, uintptr(64), unsafe.Offsetof(sprite.UVOffset))
	assert.Equal(t, uintptr(72), unsafe.Offsetof(sprite.UVScale))

	var rect RectInstance
	require.Equal(t, uintptr(RectInstanceSize), unsafe.Sizeof(rect))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(rect.Model))
	assert.Equal(t, uintptr(64), unsafe.Offsetof(rect.Color))
	assert.Equal(t, uintptr(80), unsafe.Offsetof(rect.CornerRadius))
	assert.Equal(t, uintptr(84), unsafe.Offsetof(rect.BorderThickness))
	assert.Equal(t, uintptr(96), unsafe.Offsetof(rect.BorderColor))
	assert.Equal(t, uintptr(112), unsafe.Offsetof(rect.SizePx))
}

func TestPackSpriteDefaultsUVScale(t *testing.T) {
	item := queue.DrawItem{
		Kind:      queue.KindSprite,
		Transform: common.Mat4Identity(),
		UVOffset:  common.Vec2{X: 0.25, Y: 0.5},
	}
	dst := make([]byte, SpriteInstanceSize)
	PackSprite(dst, &item)

	unpacked := *(*SpriteInstance)(unsafe.Pointer(&dst[0]))
	assert.Equal(t, common.Mat4Identity(), unpacked.Model)
	assert.Equal(t, common.Vec2{X: 0.25, Y: 0.5}, unpacked.UVOffset)
	assert.Equal(t, common.Vec2{X: 1, Y: 1}, unpacked.UVScale)
}

func TestPackRectFields(t *testing.T) {
	item := queue.DrawItem{
		Kind:            queue.KindRect,
		Transform:       common.Compose2D(5, 6, 50, 25, 1, 1, 0),
		Tint:            common.Color{R: 0.1, G: 0.2, B: 0.3, A: 1},
		CornerRadius:    8,
		BorderThickness: 2,
		BorderColor:     common.Color{R: 1, A: 1},
		Size:            common.Size{Width: 100, Height: 50},
	}
	dst := make([]byte, RectInstanceSize)
	PackRect(dst, &item)

	unpacked := *(*RectInstance)(unsafe.Pointer(&dst[0]))
	assert.Equal(t, item.Transform, unpacked.Model)
	assert.Equal(t, item.Tint, unpacked.Color)
	assert.Equal(t, float32(8), unpacked.CornerRadius)
	assert.Equal(t, float32(2), unpacked.BorderThickness)
	assert.Equal(t, item.BorderColor, unpacked.BorderColor)
	assert.Equal(t, common.Vec2{X: 100, Y: 50}, unpacked.SizePx)
}

func TestBuildMergesConsecutiveRunsOnly(t *testing.T) {
	b := NewBatcher()
	pool := NewInstancePool()

	texA, texB := texture.Handle(1), texture.Handle(2)
	items := []queue.DrawItem{
		{Kind: queue.KindSprite, Texture: texA},
		{Kind: queue.KindSprite, Texture: texA},
		{Kind: queue.KindSprite, Texture: texB},
		{Kind: queue.KindSprite, Texture: texA}, // same key as first run but not adjacent
		{Kind: queue.KindRect},
		{Kind: queue.KindRect},
	}

	batches, err := b.Build(items, pool)
	require.NoError(t, err)
	require.Len(t, batches, 4)

	assert.Equal(t, Batch{Key: Key{Kind: queue.KindSprite, Texture: texA}, First: 0, Count: 2}, batches[0])
	assert.Equal(t, Batch{Key: Key{Kind: queue.KindSprite, Texture: texB}, First: 2, Count: 1}, batches[1])
	assert.Equal(t, Batch{Key: Key{Kind: queue.KindSprite, Texture: texA}, First: 3, Count: 1}, batches[2])
	assert.Equal(t, Batch{Key: Key{Kind: queue.KindRect}, First: 0, Count: 2}, batches[3])

	assert.Equal(t, 4, pool.Count(queue.KindSprite))
	assert.Equal(t, 2, pool.Count(queue.KindRect))
}

func TestBatchExposesKindAndTexture(t *testing.T) {
	// Key is embedded in Batch, so backends read bt.Kind and bt.Texture
	// directly off the batch.
	b := NewBatcher()
	pool := NewInstancePool()

	batches, err := b.Build([]queue.DrawItem{{Kind: queue.KindSprite, Texture: 9}}, pool)
	require.NoError(t, err)
	require.Len(t, batches, 1)

	bt := batches[0]
	assert.Equal(t, queue.KindSprite, bt.Kind)
	assert.Equal(t, texture.Handle(9), bt.Texture)
}

func TestBuildSingleBatchForUniformStream(t *testing.T) {
	// 100 sprites sharing one texture collapse into exactly one batch.
	b := NewBatcher()
	pool := NewInstancePool()

	items := make([]queue.DrawItem, 100)
	for i := range items {
		items[i] = queue.DrawItem{Kind: queue.KindSprite, Texture: 7, Transform: common.Mat4Identity()}
	}

	batches, err := b.Build(items, pool)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, uint32(100), batches[0].Count)
	assert.Equal(t, uint32(0), batches[0].First)
	assert.Len(t, pool.Bytes(queue.KindSprite), 100*SpriteInstanceSize)
}

func TestBuildParallelPackingMatchesInline(t *testing.T) {
	items := make([]queue.DrawItem, 500)
	for i := range items {
		items[i] = queue.DrawItem{
			Kind:      queue.KindSprite,
			Texture:   3,
			Transform: common.Compose2D(float32(i), float32(i*2), 16, 16, 1, 1, 0),
			UVOffset:  common.Vec2{X: float32(i) / 500},
		}
	}

	inline := NewBatcher(WithParallelThreshold(1 << 30))
	parallel := NewBatcher(WithWorkers(4), WithParallelThreshold(8))

	poolA, poolB := NewInstancePool(), NewInstancePool()
	batchesA, err := inline.Build(items, poolA)
	require.NoError(t, err)
	batchesB, err := parallel.Build(items, poolB)
	require.NoError(t, err)

	assert.Equal(t, batchesA, batchesB)
	assert.Equal(t, poolA.Bytes(queue.KindSprite), poolB.Bytes(queue.KindSprite))
}

func TestBuildEmpty(t *testing.T) {
	b := NewBatcher()
	batches, err := b.Build(nil, NewInstancePool())
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestInstancePoolHighWaterReuse(t *testing.T) {
	pool := NewInstancePool()

	first, err := pool.Reserve(queue.KindSprite, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	capAfterGrow := pool.Capacity(queue.KindSprite)
	require.GreaterOrEqual(t, capAfterGrow, 100*SpriteInstanceSize)

	pool.Reset()
	assert.Equal(t, 0, pool.Count(queue.KindSprite))
	// Capacity never shrinks across frames.
	assert.Equal(t, capAfterGrow, pool.Capacity(queue.KindSprite))

	first, err = pool.Reserve(queue.KindSprite, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	assert.Equal(t, capAfterGrow, pool.Capacity(queue.KindSprite))
}

func TestInstancePoolReserveWithinCapacityDoesNotAllocate(t *testing.T) {
	pool := NewInstancePool()

	// Warm the pool to its high-water mark.
	_, err := pool.Reserve(queue.KindSprite, 256)
	require.NoError(t, err)
	base := &pool.Bytes(queue.KindSprite)[0]

	allocs := testing.AllocsPerRun(100, func() {
		pool.Reset()
		for range 4 {
			if _, err := pool.Reserve(queue.KindSprite, 64); err != nil {
				t.Fatal(err)
			}
		}
	})
	assert.Zero(t, allocs)
	// Steady-state frames reuse the same backing array.
	assert.Same(t, base, &pool.Bytes(queue.KindSprite)[0])
}

func TestInstancePoolOverflowIsAnError(t *testing.T) {
	pool := NewInstancePool()
	_, err := pool.Reserve(queue.KindRect, MaxInstancesPerKind+1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflow")
	// Nothing was reserved.
	assert.Equal(t, 0, pool.Count(queue.KindRect))
}
