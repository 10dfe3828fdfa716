package common

import (
	"math"
	"unsafe"
)

// Mat4 is a 4x4 matrix stored as 16 contiguous float32 in row-major order.
// Row-major is the wire convention for every GPU-visible matrix in this
// engine; shaders transpose on read.
type Mat4 [16]float32

// Mat4Identity returns the identity matrix.
func Mat4Identity() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Mul multiplies two 4x4 row-major matrices.
// Result: out = m * n, so applying out is equivalent to applying n first and m second.
//
// Parameters:
//   - n: right-hand matrix
//
// Returns:
//   - Mat4: the product m * n
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += m[r*4+k] * n[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// MulVec4 transforms a 4-component vector by the matrix.
//
// Parameters:
//   - v: the vector as [x, y, z, w]
//
// Returns:
//   - [4]float32: the transformed vector
func (m Mat4) MulVec4(v [4]float32) [4]float32 {
	var out [4]float32
	for r := 0; r < 4; r++ {
		out[r] = m[r*4+0]*v[0] + m[r*4+1]*v[1] + m[r*4+2]*v[2] + m[r*4+3]*v[3]
	}
	return out
}

// Translation2D returns a matrix translating by (x, y) in the XY plane.
func Translation2D(x, y float32) Mat4 {
	m := Mat4Identity()
	m[3] = x
	m[7] = y
	return m
}

// Ortho2D returns the projection matrix mapping logical pixel space to
// WebGPU clip space for a viewport of the given size. The pixel origin is
// the top-left corner with y increasing downward.
//
// Parameters:
//   - width: viewport width in logical pixels (must be > 0)
//   - height: viewport height in logical pixels (must be > 0)
//
// Returns:
//   - Mat4: the orthographic projection matrix
func Ortho2D(width, height float32) Mat4 {
	var m Mat4
	m[0] = 2 / width
	m[3] = -1
	m[5] = -2 / height
	m[7] = 1
	m[10] = 1
	m[15] = 1
	return m
}

// Compose2D builds a model matrix for a quad: scale to (width*scaleX,
// height*scaleY), rotate by rotation radians, then translate to (x, y).
// For the unit quad this places the quad's top-left corner at (x, y);
// for the centered quad it places the quad's center there.
//
// Parameters:
//   - x, y: translation in logical pixels
//   - width, height: quad size in logical pixels before scaling
//   - scaleX, scaleY: additional scale factors
//   - rotation: rotation in radians, clockwise in y-down pixel space
//
// Returns:
//   - Mat4: the composed model matrix
func Compose2D(x, y, width, height, scaleX, scaleY, rotation float32) Mat4 {
	sx := width * scaleX
	sy := height * scaleY
	c := float32(math.Cos(float64(rotation)))
	s := float32(math.Sin(float64(rotation)))

	var m Mat4
	m[0] = c * sx
	m[1] = -s * sy
	m[3] = x
	m[4] = s * sx
	m[5] = c * sy
	m[7] = y
	m[10] = 1
	m[15] = 1
	return m
}

// Clamp constrains v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
