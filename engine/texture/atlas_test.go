package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flint2d/flint/common"
)

func TestNewAtlasRejectsBadSizes(t *testing.T) {
	_, err := NewAtlas(1, common.Size{Width: 64, Height: 64}, common.Size{})
	assert.Error(t, err)

	_, err = NewAtlas(1, common.Size{Width: 16, Height: 16}, common.Size{Width: 32, Height: 32})
	assert.Error(t, err)
}

func TestAtlasTileUV(t *testing.T) {
	// 4x2 grid of 16px tiles in a 64x32 atlas.
	a, err := NewAtlas(3, common.Size{Width: 64, Height: 32}, common.Size{Width: 16, Height: 16})
	require.NoError(t, err)
	require.Equal(t, 8, a.Tiles())
	assert.Equal(t, Handle(3), a.Texture())

	tests := []struct {
		index  int
		offset common.Vec2
	}{
		{0, common.Vec2{X: 0, Y: 0}},
		{1, common.Vec2{X: 0.25, Y: 0}},
		{3, common.Vec2{X: 0.75, Y: 0}},
		{4, common.Vec2{X: 0, Y: 0.5}},
		{7, common.Vec2{X: 0.75, Y: 0.5}},
	}
	for _, tt := range tests {
		offset, scale, err := a.TileUV(tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.offset, offset, "tile %d", tt.index)
		assert.Equal(t, common.Vec2{X: 0.25, Y: 0.5}, scale)
	}

	_, _, err = a.TileUV(8)
	assert.Error(t, err)
	_, _, err = a.TileUV(-1)
	assert.Error(t, err)
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})

	data, err := FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	require.Len(t, data.Pixels, 16)
	assert.Equal(t, byte(255), data.Pixels[0])
	assert.Equal(t, byte(255), data.Pixels[3])
}

func TestFromImageScaled(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	data, err := FromImageScaled(img, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	assert.Len(t, data.Pixels, 32)

	_, err = FromImageScaled(img, 0, 2)
	assert.Error(t, err)
	_, err = FromImageScaled(nil, 2, 2)
	assert.Error(t, err)
}

func TestSolid(t *testing.T) {
	data := Solid(common.Color{R: 1, G: 0, B: 0.5, A: 1})
	assert.Equal(t, uint32(1), data.Width)
	assert.Equal(t, uint32(1), data.Height)
	assert.Equal(t, []byte{255, 0, 128, 255}, data.Pixels)
}
