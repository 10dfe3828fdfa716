package common

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestRectEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	assert.Equal(t, float32(40), r.Right())
	assert.Equal(t, float32(60), r.Bottom())
}

func TestSamplerDescriptorZeroValueFallbacks(t *testing.T) {
	d := SamplerStagingData{}.Descriptor("Test Sampler")

	assert.Equal(t, "Test Sampler", d.Label)
	assert.Equal(t, wgpu.AddressModeRepeat, d.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, d.AddressModeV)
	assert.Equal(t, wgpu.AddressModeRepeat, d.AddressModeW)
	assert.Equal(t, wgpu.FilterModeLinear, d.MagFilter)
	assert.Equal(t, wgpu.FilterModeLinear, d.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, d.MipmapFilter)
	assert.Equal(t, float32(32), d.LodMaxClamp)
	assert.Equal(t, uint16(1), d.MaxAnisotropy)
}

func TestSamplerDescriptorKeepsExplicitValues(t *testing.T) {
	s := SamplerStagingData{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		LodMaxClamp:   8,
		MaxAnisotropy: 4,
	}
	d := s.Descriptor("Atlas Sampler")

	assert.Equal(t, wgpu.AddressModeClampToEdge, d.AddressModeU)
	assert.Equal(t, wgpu.AddressModeClampToEdge, d.AddressModeV)
	assert.Equal(t, wgpu.AddressModeClampToEdge, d.AddressModeW)
	assert.Equal(t, float32(8), d.LodMaxClamp)
	assert.Equal(t, uint16(4), d.MaxAnisotropy)
}
