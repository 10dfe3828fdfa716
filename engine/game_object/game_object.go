// package game_object provides 2D scene entities: named sprites with a
// transform, velocity, and an atlas region, convertible to draw items.
package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/queue"
	"github.com/flint2d/flint/engine/texture"
)

type gameObject struct {
	mu sync.Mutex

	id        uint64
	name      string
	enabled   atomic.Bool
	ephemeral bool

	position common.Vec2
	size     common.Size
	velocity common.Vec2
	rotation float32

	tex      texture.Handle
	uvOffset common.Vec2
	uvScale  common.Vec2

	layer int32
	z     int32
}

// GameObject defines the interface for a 2D scene entity: a textured quad
// with a position, size, velocity, and draw ordering. Objects advance by
// their velocity each scene update and emit one draw item per frame.
type GameObject interface {
	// ID returns the object's unique identifier, assigned when the object
	// is added to a scene.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Name returns the object's name, used for camera tethering and lookup.
	//
	// Returns:
	//   - string: the object name
	Name() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Ephemeral returns whether this object is ephemeral.
	// Ephemeral objects are not persisted in the scene's registry when added.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// Position returns the object's top-left position in world pixels.
	//
	// Returns:
	//   - common.Vec2: the position
	Position() common.Vec2

	// SetPosition moves the object.
	//
	// Parameters:
	//   - position: the new top-left position in world pixels
	SetPosition(position common.Vec2)

	// Size returns the object's size in world pixels.
	//
	// Returns:
	//   - common.Size: the size
	Size() common.Size

	// Velocity returns the object's velocity in pixels per second.
	//
	// Returns:
	//   - common.Vec2: the velocity
	Velocity() common.Vec2

	// SetVelocity sets the object's velocity in pixels per second.
	//
	// Parameters:
	//   - velocity: the new velocity
	SetVelocity(velocity common.Vec2)

	// Rotation returns the object's rotation in radians.
	//
	// Returns:
	//   - float32: the rotation
	Rotation() float32

	// SetRotation sets the object's rotation in radians.
	//
	// Parameters:
	//   - rotation: the new rotation
	SetRotation(rotation float32)

	// SetUVRegion sets the texture region the object samples, typically
	// from texture.Atlas.TileUV.
	//
	// Parameters:
	//   - offset: the top-left of the region in normalized UV
	//   - scale: the size of the region in normalized UV
	SetUVRegion(offset, scale common.Vec2)

	// Advance moves the object by its velocity over the given time step.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Advance(deltaTime float32)

	// DrawItem builds the object's draw item for the current frame.
	//
	// Returns:
	//   - queue.DrawItem: the draw item reflecting the object's current state
	DrawItem() queue.DrawItem
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject with the specified options.
// Objects start enabled with no velocity, sampling the full texture.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the configured object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{}
	obj.enabled.Store(true)
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (o *gameObject) ID() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.id
}

func (o *gameObject) SetID(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.id = id
}

func (o *gameObject) Name() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.name
}

func (o *gameObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *gameObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *gameObject) Ephemeral() bool {
	return o.ephemeral
}

func (o *gameObject) Position() common.Vec2 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

func (o *gameObject) SetPosition(position common.Vec2) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position = position
}

func (o *gameObject) Size() common.Size {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.size
}

func (o *gameObject) Velocity() common.Vec2 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.velocity
}

func (o *gameObject) SetVelocity(velocity common.Vec2) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.velocity = velocity
}

func (o *gameObject) Rotation() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rotation
}

func (o *gameObject) SetRotation(rotation float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotation = rotation
}

func (o *gameObject) SetUVRegion(offset, scale common.Vec2) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uvOffset = offset
	o.uvScale = scale
}

func (o *gameObject) Advance(deltaTime float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position.X += o.velocity.X * deltaTime
	o.position.Y += o.velocity.Y * deltaTime
}

func (o *gameObject) DrawItem() queue.DrawItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	return queue.DrawItem{
		Kind:      queue.KindSprite,
		Texture:   o.tex,
		Transform: common.Compose2D(o.position.X, o.position.Y, o.size.Width, o.size.Height, 1, 1, o.rotation),
		Layer:     o.layer,
		Z:         o.z,
		UVOffset:  o.uvOffset,
		UVScale:   o.uvScale,
	}
}
