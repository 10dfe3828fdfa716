package game_object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/queue"
	"github.com/flint2d/flint/engine/texture"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject()

	assert.True(t, obj.Enabled())
	assert.False(t, obj.Ephemeral())
	assert.Equal(t, common.Vec2{}, obj.Position())
	assert.Equal(t, common.Vec2{}, obj.Velocity())
}

func TestNewGameObjectOptions(t *testing.T) {
	obj := NewGameObject(
		WithName("player"),
		WithTexture(texture.Handle(3)),
		WithPosition(10, 20),
		WithSize(32, 48),
		WithVelocity(100, -50),
		WithUVRegion(common.Vec2{X: 0.25, Y: 0}, common.Vec2{X: 0.25, Y: 0.5}),
		WithLayer(2, 7),
		WithEphemeral(true),
		WithEnabled(false),
	)

	assert.Equal(t, "player", obj.Name())
	assert.Equal(t, common.Vec2{X: 10, Y: 20}, obj.Position())
	assert.Equal(t, common.Size{Width: 32, Height: 48}, obj.Size())
	assert.Equal(t, common.Vec2{X: 100, Y: -50}, obj.Velocity())
	assert.True(t, obj.Ephemeral())
	assert.False(t, obj.Enabled())
}

func TestAdvance(t *testing.T) {
	obj := NewGameObject(WithPosition(10, 10), WithVelocity(100, -40))

	obj.Advance(0.5)

	assert.Equal(t, common.Vec2{X: 60, Y: -10}, obj.Position())
}

func TestDrawItem(t *testing.T) {
	obj := NewGameObject(
		WithTexture(texture.Handle(5)),
		WithPosition(100, 200),
		WithSize(64, 64),
		WithUVRegion(common.Vec2{X: 0.5, Y: 0.5}, common.Vec2{X: 0.5, Y: 0.5}),
		WithLayer(1, 3),
	)

	item := obj.DrawItem()

	assert.Equal(t, queue.KindSprite, item.Kind)
	assert.Equal(t, texture.Handle(5), item.Texture)
	assert.Equal(t, int32(1), item.Layer)
	assert.Equal(t, int32(3), item.Z)
	assert.Equal(t, common.Vec2{X: 0.5, Y: 0.5}, item.UVOffset)
	assert.Equal(t, common.Compose2D(100, 200, 64, 64, 1, 1, 0), item.Transform)
}
