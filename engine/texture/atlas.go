package texture

import (
	"fmt"

	"github.com/flint2d/flint/common"
)

// Atlas addresses fixed-size tiles within a single texture. Tiles are
// numbered row-major from the top-left corner, and each tile maps to a UV
// offset/scale pair that producers copy into sprite instance records.
type Atlas struct {
	texture   Handle
	atlasSize common.Size
	tileSize  common.Size
	cols      int
	rows      int
}

// NewAtlas creates an Atlas over the given texture.
//
// Parameters:
//   - texture: the Handle of the atlas texture
//   - atlasSize: the full texture dimensions in pixels
//   - tileSize: the dimensions of one tile in pixels
//
// Returns:
//   - *Atlas: the atlas
//   - error: an error if the tile size is zero or larger than the atlas
func NewAtlas(texture Handle, atlasSize, tileSize common.Size) (*Atlas, error) {
	if tileSize.Width <= 0 || tileSize.Height <= 0 {
		return nil, fmt.Errorf("texture: atlas tile size must be positive, got %+v", tileSize)
	}
	cols := int(atlasSize.Width / tileSize.Width)
	rows := int(atlasSize.Height / tileSize.Height)
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("texture: tile %+v does not fit in atlas %+v", tileSize, atlasSize)
	}
	return &Atlas{
		texture:   texture,
		atlasSize: atlasSize,
		tileSize:  tileSize,
		cols:      cols,
		rows:      rows,
	}, nil
}

// Texture returns the Handle of the underlying atlas texture.
func (a *Atlas) Texture() Handle {
	return a.texture
}

// TileSize returns the dimensions of one tile in pixels.
func (a *Atlas) TileSize() common.Size {
	return a.tileSize
}

// Tiles returns the total number of tiles in the atlas.
func (a *Atlas) Tiles() int {
	return a.cols * a.rows
}

// TileUV computes the UV offset and scale of the given tile index.
//
// Parameters:
//   - index: row-major tile index in [0, Tiles())
//
// Returns:
//   - common.Vec2: UV offset of the tile's top-left corner
//   - common.Vec2: UV scale of one tile
//   - error: an error if the index is out of range
func (a *Atlas) TileUV(index int) (common.Vec2, common.Vec2, error) {
	if index < 0 || index >= a.Tiles() {
		return common.Vec2{}, common.Vec2{}, fmt.Errorf("texture: tile index %d out of range [0, %d)", index, a.Tiles())
	}
	col := index % a.cols
	row := index / a.cols
	offset := common.Vec2{
		X: float32(col) * a.tileSize.Width / a.atlasSize.Width,
		Y: float32(row) * a.tileSize.Height / a.atlasSize.Height,
	}
	scale := common.Vec2{
		X: a.tileSize.Width / a.atlasSize.Width,
		Y: a.tileSize.Height / a.atlasSize.Height,
	}
	return offset, scale, nil
}
