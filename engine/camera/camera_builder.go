package camera

import (
	"github.com/flint2d/flint/common"
)

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's initial position.
//
// Parameters:
//   - position: the starting position in world pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(position common.Vec2) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithBoundary sets the camera's scroll dead zone.
//
// Parameters:
//   - boundary: the dead zone rectangle in world pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's boundary
func WithBoundary(boundary common.Rect) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.boundary = &boundary
	}
}

// WithTetherSize sets the size of the followed target.
//
// Parameters:
//   - size: the target size in world pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's tether size
func WithTetherSize(size common.Size) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.tetherSize = &size
	}
}

// WithTetherTarget sets the identifier of the object the camera follows.
//
// Parameters:
//   - target: the tether target identifier
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's tether target
func WithTetherTarget(target string) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.tetherTarget = target
	}
}

// WithActivated sets whether the camera starts active.
//
// Parameters:
//   - activated: true to start active
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's activation state
func WithActivated(activated bool) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.activated = activated
	}
}
