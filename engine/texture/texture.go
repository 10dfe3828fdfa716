// package texture provides CPU-side texture identity and staging helpers.
// GPU texture objects are owned by the renderer backend; producers refer to
// them only through opaque Handles.
package texture

import (
	"fmt"
	"image"
	stddraw "image/draw"

	"golang.org/x/image/draw"

	"github.com/flint2d/flint/common"
)

// Handle is an opaque identifier for a texture owned by the renderer.
// The zero Handle means "no texture" and selects the renderer's built-in
// 1x1 white texture, which untextured primitives bind.
type Handle uint32

// None is the zero Handle.
const None Handle = 0

// FromImage converts any image.Image into RGBA staging data suitable for
// Renderer.CreateTexture.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - common.TextureStagingData: tightly packed RGBA pixels with dimensions
//   - error: an error if the image is nil or empty
func FromImage(img image.Image) (common.TextureStagingData, error) {
	if img == nil {
		return common.TextureStagingData{}, fmt.Errorf("texture: image is nil")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return common.TextureStagingData{}, fmt.Errorf("texture: image has empty bounds %v", bounds)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	stddraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, stddraw.Src)

	return common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// FromImageScaled converts an image to RGBA staging data, resampling it to
// the given dimensions with bilinear filtering.
//
// Parameters:
//   - img: the source image
//   - width: target width in pixels (must be > 0)
//   - height: target height in pixels (must be > 0)
//
// Returns:
//   - common.TextureStagingData: resampled RGBA pixels
//   - error: an error if the image is nil or the target size is invalid
func FromImageScaled(img image.Image, width, height int) (common.TextureStagingData, error) {
	if img == nil {
		return common.TextureStagingData{}, fmt.Errorf("texture: image is nil")
	}
	if width <= 0 || height <= 0 {
		return common.TextureStagingData{}, fmt.Errorf("texture: invalid target size %dx%d", width, height)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)

	return common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(width),
		Height: uint32(height),
	}, nil
}

// Solid returns 1x1 staging data of the given color. Useful for placeholder
// textures and tests.
func Solid(c common.Color) common.TextureStagingData {
	to8 := func(v float32) byte {
		return byte(common.Clamp(v, 0, 1)*255 + 0.5)
	}
	return common.TextureStagingData{
		Pixels: []byte{to8(c.R), to8(c.G), to8(c.B), to8(c.A)},
		Width:  1,
		Height: 1,
	}
}
