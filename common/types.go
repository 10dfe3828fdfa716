// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Vec2 is a 2D vector in logical pixel space.
type Vec2 struct {
	X, Y float32
}

// Size is a width/height pair in logical pixels.
type Size struct {
	Width, Height float32
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, Width, Height float32
}

// Right returns the x coordinate of the rectangle's right edge.
func (r Rect) Right() float32 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the rectangle's bottom edge.
func (r Rect) Bottom() float32 {
	return r.Y + r.Height
}

// Color is a linear RGBA color with components in [0, 1].
// The struct layout is four contiguous float32 so it can be packed
// directly into GPU instance records.
type Color struct {
	R, G, B, A float32
}

// White is the default tint color for textured draws.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
// Pixels must be tightly packed row-major RGBA, 4 bytes per pixel.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero values fall back to linear filtering with repeat addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// Descriptor converts the staging configuration into a wgpu sampler
// descriptor, applying the zero-value fallbacks: repeat addressing, linear
// filtering, and an LOD max clamp of 32.
//
// Parameters:
//   - label: the debug label for the GPU sampler
//
// Returns:
//   - *wgpu.SamplerDescriptor: the descriptor ready for device.CreateSampler
func (s SamplerStagingData) Descriptor(label string) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  Coalesce(s.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  Coalesce(s.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  Coalesce(s.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     Coalesce(s.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     Coalesce(s.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  Coalesce(s.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   Coalesce(s.LodMaxClamp, 32.0),
		Compare:       s.Compare,
		MaxAnisotropy: Coalesce(s.MaxAnisotropy, 1),
	}
}
