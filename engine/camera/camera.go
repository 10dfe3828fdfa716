// package camera provides the 2D scroll camera: a position in world pixels,
// an optional movement boundary, and the per-frame view-projection matrix.
package camera

import (
	"sync"

	"github.com/flint2d/flint/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	position  common.Vec2
	activated bool

	boundary     *common.Rect
	tetherSize   *common.Size
	tetherTarget string
}

// Camera defines the interface for the 2D camera system.
//
// The camera tracks a position in world pixels. When a boundary is set,
// SetPosition only moves the camera once the target leaves the boundary
// rectangle, which itself scrolls with the camera. A deactivated camera
// reports the origin, freezing the view without losing its state.
type Camera interface {
	// Position returns the camera's effective position. Returns the origin
	// while the camera is deactivated.
	//
	// Returns:
	//   - common.Vec2: the camera position in world pixels
	Position() common.Vec2

	// SetPosition moves the camera toward the target position. Without a
	// boundary the camera jumps directly to the target. With a boundary the
	// camera only scrolls by however far the target (expanded by the tether
	// size, when set) escapes the boundary rectangle, keeping the target
	// inside the dead zone.
	//
	// Parameters:
	//   - target: the position being followed, in world pixels
	SetPosition(target common.Vec2)

	// Activate enables the camera. Position reports the tracked position.
	Activate()

	// Deactivate disables the camera. Position reports the origin until the
	// camera is activated again; the tracked position is retained.
	Deactivate()

	// Activated reports whether the camera is active.
	//
	// Returns:
	//   - bool: true if active
	Activated() bool

	// SetBoundary sets the scroll dead zone. The rectangle is relative to
	// the camera and moves with it.
	//
	// Parameters:
	//   - boundary: the dead zone rectangle in world pixels
	SetBoundary(boundary common.Rect)

	// ClearBoundary removes the scroll dead zone; SetPosition jumps directly
	// to the target afterwards.
	ClearBoundary()

	// SetTetherSize sets the size of the followed target. The target's full
	// extent, not just its origin, is kept inside the boundary.
	//
	// Parameters:
	//   - size: the target size in world pixels
	SetTetherSize(size common.Size)

	// ClearTetherSize removes the tether size; only the target's origin is
	// kept inside the boundary.
	ClearTetherSize()

	// TetherTarget returns the identifier of the object the camera follows,
	// or the empty string when unset.
	//
	// Returns:
	//   - string: the tether target identifier
	TetherTarget() string

	// SetTetherTarget sets the identifier of the object the camera follows.
	// The engine looks the target up each tick and feeds its position to
	// SetPosition.
	//
	// Parameters:
	//   - target: the tether target identifier, or "" to unset
	SetTetherTarget(target string)

	// ViewMatrix builds the frame's view-projection matrix for a viewport of
	// the given pixel size: world pixels offset by the camera position,
	// mapped to clip space with a y-down orthographic projection.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	//
	// Returns:
	//   - common.Mat4: the row-major view-projection matrix
	ViewMatrix(width, height float32) common.Mat4
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the specified options.
// The camera starts deactivated at the origin with no boundary.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu: &sync.Mutex{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cameraImpl) Position() common.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.activated {
		return common.Vec2{}
	}
	return c.position
}

func (c *cameraImpl) SetPosition(target common.Vec2) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.boundary == nil {
		c.position = target
		return
	}

	// The boundary rectangle scrolls with the camera.
	logical := common.Rect{
		X:      c.boundary.X + c.position.X,
		Y:      c.boundary.Y + c.position.Y,
		Width:  c.boundary.Width,
		Height: c.boundary.Height,
	}

	right := target.X
	bottom := target.Y
	if c.tetherSize != nil {
		right += c.tetherSize.Width
		bottom += c.tetherSize.Height
	}

	if dx := right - logical.Right(); dx > 0 {
		c.position.X += dx
	}
	if dx := target.X - logical.X; dx < 0 {
		c.position.X += dx
	}

	if dy := bottom - logical.Bottom(); dy > 0 {
		c.position.Y += dy
	}
	if dy := target.Y - logical.Y; dy < 0 {
		c.position.Y += dy
	}
}

func (c *cameraImpl) Activate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activated = true
}

func (c *cameraImpl) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activated = false
}

func (c *cameraImpl) Activated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activated
}

func (c *cameraImpl) SetBoundary(boundary common.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boundary = &boundary
}

func (c *cameraImpl) ClearBoundary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boundary = nil
}

func (c *cameraImpl) SetTetherSize(size common.Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tetherSize = &size
}

func (c *cameraImpl) ClearTetherSize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tetherSize = nil
}

func (c *cameraImpl) TetherTarget() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tetherTarget
}

func (c *cameraImpl) SetTetherTarget(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tetherTarget = target
}

func (c *cameraImpl) ViewMatrix(width, height float32) common.Mat4 {
	pos := c.Position()
	return common.Ortho2D(width, height).Mul(common.Translation2D(-pos.X, -pos.Y))
}
