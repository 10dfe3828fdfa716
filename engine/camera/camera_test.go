package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flint2d/flint/common"
)

func TestCameraFollowsWithoutBoundary(t *testing.T) {
	c := NewCamera(WithActivated(true))

	c.SetPosition(common.Vec2{X: 150, Y: -40})
	assert.Equal(t, common.Vec2{X: 150, Y: -40}, c.Position())
}

func TestCameraDeactivatedReportsOrigin(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec2{X: 30, Y: 40}), WithActivated(true))

	c.Deactivate()
	assert.Equal(t, common.Vec2{}, c.Position())

	// The tracked position survives deactivation.
	c.Activate()
	assert.Equal(t, common.Vec2{X: 30, Y: 40}, c.Position())
}

func TestCameraStaysWithinBoundary(t *testing.T) {
	c := NewCamera(WithActivated(true))
	c.SetBoundary(common.Rect{X: 0, Y: 0, Width: 100, Height: 100})

	c.SetPosition(common.Vec2{X: 150, Y: 150})
	assert.Equal(t, common.Vec2{X: 50, Y: 50}, c.Position())
}

func TestCameraIgnoresTargetInsideBoundary(t *testing.T) {
	c := NewCamera(WithActivated(true))
	c.SetBoundary(common.Rect{X: 0, Y: 0, Width: 100, Height: 100})

	c.SetPosition(common.Vec2{X: 40, Y: 60})
	assert.Equal(t, common.Vec2{}, c.Position())
}

func TestCameraScrollsWhenTargetEscapesLeftAndTop(t *testing.T) {
	c := NewCamera(WithActivated(true))
	c.SetBoundary(common.Rect{X: 0, Y: 0, Width: 100, Height: 100})

	c.SetPosition(common.Vec2{X: -30, Y: -10})
	assert.Equal(t, common.Vec2{X: -30, Y: -10}, c.Position())
}

func TestCameraBoundaryScrollsWithCamera(t *testing.T) {
	c := NewCamera(WithActivated(true))
	c.SetBoundary(common.Rect{X: 0, Y: 0, Width: 100, Height: 100})

	c.SetPosition(common.Vec2{X: 150, Y: 150})
	assert.Equal(t, common.Vec2{X: 50, Y: 50}, c.Position())

	// Boundary now spans (50,50)-(150,150); the same target sits on its edge.
	c.SetPosition(common.Vec2{X: 150, Y: 150})
	assert.Equal(t, common.Vec2{X: 50, Y: 50}, c.Position())
}

func TestCameraTetherSizeExtendsTarget(t *testing.T) {
	c := NewCamera(WithActivated(true), WithTetherSize(common.Size{Width: 20, Height: 20}))
	c.SetBoundary(common.Rect{X: 0, Y: 0, Width: 100, Height: 100})

	c.SetPosition(common.Vec2{X: 90, Y: 90})
	assert.Equal(t, common.Vec2{X: 10, Y: 10}, c.Position())
}

func TestCameraTetherTarget(t *testing.T) {
	c := NewCamera(WithTetherTarget("player"))
	assert.Equal(t, "player", c.TetherTarget())

	c.SetTetherTarget("")
	assert.Equal(t, "", c.TetherTarget())
}

func TestCameraViewMatrixOffsetsWorld(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec2{X: 10, Y: 20}), WithActivated(true))

	vm := c.ViewMatrix(800, 600)

	// The camera position maps to the top-left clip corner.
	clip := vm.MulVec4([4]float32{10, 20, 0, 1})
	assert.InDelta(t, -1.0, clip[0], 1e-6)
	assert.InDelta(t, 1.0, clip[1], 1e-6)

	// The opposite viewport corner maps to bottom-right.
	clip = vm.MulVec4([4]float32{810, 620, 0, 1})
	assert.InDelta(t, 1.0, clip[0], 1e-6)
	assert.InDelta(t, -1.0, clip[1], 1e-6)
}

func TestCameraViewMatrixDeactivated(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec2{X: 10, Y: 20}))

	vm := c.ViewMatrix(800, 600)
	clip := vm.MulVec4([4]float32{0, 0, 0, 1})
	assert.InDelta(t, -1.0, clip[0], 1e-6)
	assert.InDelta(t, 1.0, clip[1], 1e-6)
}
