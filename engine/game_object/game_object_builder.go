package game_object

import (
	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/texture"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithName sets the name of the GameObject, used for camera tethering and
// scene lookup.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithEphemeral marks the GameObject as ephemeral. Ephemeral objects are not
// persisted in the scene's registry when added via Scene.Add; they draw for
// the frames they are explicitly handed to the scene and are otherwise
// forgotten.
//
// Parameters:
//   - ephemeral: true to mark as ephemeral
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Ephemeral flag
func WithEphemeral(ephemeral bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.ephemeral = ephemeral
	}
}

// WithTexture sets the texture the GameObject samples.
//
// Parameters:
//   - tex: the texture handle
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the texture
func WithTexture(tex texture.Handle) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.tex = tex
	}
}

// WithPosition sets the initial top-left position of the GameObject in world
// pixels.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(x, y float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = common.Vec2{X: x, Y: y}
	}
}

// WithSize sets the size of the GameObject in world pixels.
//
// Parameters:
//   - width: the width
//   - height: the height
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the size
func WithSize(width, height float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.size = common.Size{Width: width, Height: height}
	}
}

// WithVelocity sets the initial velocity of the GameObject in pixels per
// second.
//
// Parameters:
//   - vx: the x velocity
//   - vy: the y velocity
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial velocity
func WithVelocity(vx, vy float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.velocity = common.Vec2{X: vx, Y: vy}
	}
}

// WithRotation sets the initial rotation of the GameObject in radians.
//
// Parameters:
//   - rotation: the rotation angle
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial rotation
func WithRotation(rotation float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = rotation
	}
}

// WithUVRegion sets the texture region the GameObject samples, typically a
// tile from texture.Atlas.TileUV. When omitted the object samples the full
// texture.
//
// Parameters:
//   - offset: the top-left of the region in normalized UV
//   - scale: the size of the region in normalized UV
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the UV region
func WithUVRegion(offset, scale common.Vec2) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.uvOffset = offset
		obj.uvScale = scale
	}
}

// WithLayer sets the draw layer and the order within it.
//
// Parameters:
//   - layer: the draw layer (higher draws later)
//   - z: the order within the layer (higher draws later)
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the draw ordering
func WithLayer(layer, z int32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.layer = layer
		obj.z = z
	}
}
