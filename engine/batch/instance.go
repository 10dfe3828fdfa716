package batch

import (
	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/queue"
)

// SpriteInstance is the packed per-instance record for sprite and glyph
// draws. The layout is a wire contract shared with the WGSL shaders:
// 64 bytes of row-major model matrix, 8 bytes of UV offset, 8 bytes of UV
// scale. 80 bytes total, a multiple of the 16-byte storage buffer stride
// alignment.
type SpriteInstance struct {
	Model    common.Mat4
	UVOffset common.Vec2
	UVScale  common.Vec2
}

// RectInstance is the packed per-instance record for rounded-rect draws.
// Wire contract with the rect WGSL shader: model matrix (64), fill color
// (16), corner radius (4), border thickness (4), 8 bytes padding, border
// color (16), rect pixel size (8), 24 bytes tail padding. 144 bytes total.
type RectInstance struct {
	Model           common.Mat4
	Color           common.Color
	CornerRadius    float32
	BorderThickness float32
	_               [2]float32
	BorderColor     common.Color
	SizePx          common.Vec2
	_               [6]float32
}

const (
	// SpriteInstanceSize is the packed size of one SpriteInstance in bytes.
	SpriteInstanceSize = 80

	// RectInstanceSize is the packed size of one RectInstance in bytes.
	RectInstanceSize = 144
)

// InstanceSize returns the packed record size in bytes for a primitive kind.
func InstanceSize(kind queue.PrimitiveKind) int {
	if kind == queue.KindRect {
		return RectInstanceSize
	}
	return SpriteInstanceSize
}

// PackSprite writes the 80-byte sprite/glyph record for item into dst.
// dst must be at least SpriteInstanceSize bytes. A zero UVScale on the item
// is widened to (1, 1), meaning the full texture.
func PackSprite(dst []byte, item *queue.DrawItem) {
	inst := SpriteInstance{
		Model:    item.Transform,
		UVOffset: item.UVOffset,
		UVScale:  item.UVScale,
	}
	if inst.UVScale == (common.Vec2{}) {
		inst.UVScale = common.Vec2{X: 1, Y: 1}
	}
	copy(dst, common.StructToBytes(&inst))
}

// PackRect writes the 144-byte rect record for item into dst.
// dst must be at least RectInstanceSize bytes.
func PackRect(dst []byte, item *queue.DrawItem) {
	inst := RectInstance{
		Model:           item.Transform,
		Color:           item.Tint,
		CornerRadius:    item.CornerRadius,
		BorderThickness: item.BorderThickness,
		BorderColor:     item.BorderColor,
		SizePx:          common.Vec2{X: item.Size.Width, Y: item.Size.Height},
	}
	copy(dst, common.StructToBytes(&inst))
}
