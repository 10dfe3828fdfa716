package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMat4IdentityMul(t *testing.T) {
	id := Mat4Identity()
	m := Compose2D(3, 4, 10, 20, 1, 1, 0.5)

	assert.Equal(t, m, id.Mul(m))
	assert.Equal(t, m, m.Mul(id))
}

func TestTranslation2D(t *testing.T) {
	m := Translation2D(5, -7)
	out := m.MulVec4([4]float32{1, 2, 0, 1})
	assert.Equal(t, [4]float32{6, -5, 0, 1}, out)
}

func TestOrtho2DCorners(t *testing.T) {
	// 800x600 viewport: top-left pixel maps to (-1, 1), bottom-right to (1, -1).
	p := Ortho2D(800, 600)

	tl := p.MulVec4([4]float32{0, 0, 0, 1})
	assert.InDelta(t, -1, tl[0], 1e-6)
	assert.InDelta(t, 1, tl[1], 1e-6)

	br := p.MulVec4([4]float32{800, 600, 0, 1})
	assert.InDelta(t, 1, br[0], 1e-6)
	assert.InDelta(t, -1, br[1], 1e-6)

	center := p.MulVec4([4]float32{400, 300, 0, 1})
	assert.InDelta(t, 0, center[0], 1e-6)
	assert.InDelta(t, 0, center[1], 1e-6)
}

func TestCompose2D(t *testing.T) {
	tests := []struct {
		name     string
		rotation float32
		in       [4]float32
		want     [4]float32
	}{
		{
			name:     "unit quad corner scales to size and translates",
			rotation: 0,
			in:       [4]float32{1, 1, 0, 1},
			want:     [4]float32{10 + 32, 20 + 64, 0, 1},
		},
		{
			name:     "origin corner only translates",
			rotation: 0,
			in:       [4]float32{0, 0, 0, 1},
			want:     [4]float32{10, 20, 0, 1},
		},
		{
			name:     "quarter turn maps +x onto +y",
			rotation: float32(math.Pi / 2),
			in:       [4]float32{1, 0, 0, 1},
			want:     [4]float32{10, 20 + 32, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compose2D(10, 20, 32, 64, 1, 1, tt.rotation)
			out := m.MulVec4(tt.in)
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], out[i], 1e-4)
			}
		})
	}
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1, 2}
	b := SliceToBytes(data)
	require.Len(t, b, 8)
	assert.Nil(t, SliceToBytes([]float32(nil)))
}

func TestStructToBytesMat4(t *testing.T) {
	m := Mat4Identity()
	b := StructToBytes(&m)
	require.Len(t, b, 64)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(0.5, 1, 2))
	assert.Equal(t, float32(2), Clamp(3, 1, 2))
	assert.Equal(t, float32(1.5), Clamp(1.5, 1, 2))
}
