package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/camera"
	"github.com/flint2d/flint/engine/game_object"
	"github.com/flint2d/flint/engine/queue"
)

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	options = append([]SceneBuilderOption{WithActive(true), WithUpdateWorkers(1)}, options...)
	return NewScene("test", camera.NewCamera(), options...)
}

func TestNewSceneRequiresCamera(t *testing.T) {
	assert.Panics(t, func() {
		NewScene("broken", nil)
	})
}

func TestAddAssignsIDs(t *testing.T) {
	s := newTestScene(t)

	a := game_object.NewGameObject(game_object.WithName("a"))
	b := game_object.NewGameObject(game_object.WithName("b"))

	idA := s.Add(a)
	idB := s.Add(b)

	assert.NotZero(t, idA)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, s.Count())
	assert.Same(t, a, s.Get(idA))
	assert.Same(t, b, s.Find("b"))
}

func TestEphemeralObjectsAreNotPersisted(t *testing.T) {
	s := newTestScene(t)

	s.Add(game_object.NewGameObject(game_object.WithEphemeral(true)))

	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 1, s.CountEphemeral())
}

func TestDisabledEphemeralsAreDropped(t *testing.T) {
	s := newTestScene(t)

	obj := game_object.NewGameObject(game_object.WithEphemeral(true))
	s.Add(obj)
	require.Equal(t, 1, s.CountEphemeral())

	obj.SetEnabled(false)
	s.Update(0.016)

	assert.Equal(t, 0, s.CountEphemeral())
}

func TestRemove(t *testing.T) {
	s := newTestScene(t)

	id := s.Add(game_object.NewGameObject())
	s.Remove(id)

	assert.Nil(t, s.Get(id))
	assert.Equal(t, 0, s.Count())
}

func TestUpdateAdvancesObjects(t *testing.T) {
	s := newTestScene(t)

	obj := game_object.NewGameObject(
		game_object.WithPosition(0, 0),
		game_object.WithVelocity(100, 50),
	)
	s.Add(obj)

	s.Update(0.5)

	assert.Equal(t, common.Vec2{X: 50, Y: 25}, obj.Position())
}

func TestUpdateSkipsDisabledObjects(t *testing.T) {
	s := newTestScene(t)

	obj := game_object.NewGameObject(game_object.WithVelocity(100, 0))
	obj.SetEnabled(false)
	s.Add(obj)

	s.Update(1)

	assert.Equal(t, common.Vec2{}, obj.Position())
}

func TestInactiveSceneDoesNothing(t *testing.T) {
	s := NewScene("idle", camera.NewCamera(), WithUpdateWorkers(1))

	obj := game_object.NewGameObject(game_object.WithVelocity(100, 0))
	s.Add(obj)

	s.Update(1)
	assert.Equal(t, common.Vec2{}, obj.Position())

	var drawn int
	require.NoError(t, s.Draw(func(queue.DrawItem) error {
		drawn++
		return nil
	}))
	assert.Zero(t, drawn)
}

func TestUpdateFollowsTetherTarget(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithActivated(true),
		camera.WithTetherTarget("player"),
	)
	s := NewScene("world", cam, WithActive(true), WithUpdateWorkers(1))

	s.Add(game_object.NewGameObject(
		game_object.WithName("player"),
		game_object.WithPosition(40, 60),
		game_object.WithSize(16, 16),
	))

	s.Update(0)

	assert.Equal(t, common.Vec2{X: 40, Y: 60}, cam.Position())
}

func TestDrawEmitsEnabledObjects(t *testing.T) {
	s := newTestScene(t)

	s.Add(game_object.NewGameObject(game_object.WithName("first")))
	s.Add(game_object.NewGameObject(game_object.WithName("hidden"), game_object.WithEnabled(false)))
	s.Add(game_object.NewGameObject(game_object.WithEphemeral(true)))

	var items []queue.DrawItem
	require.NoError(t, s.Draw(func(item queue.DrawItem) error {
		items = append(items, item)
		return nil
	}))

	// One registry object and one ephemeral; the disabled object is skipped.
	assert.Len(t, items, 2)
}

func TestDrawStopsOnEnqueueError(t *testing.T) {
	s := newTestScene(t)

	s.Add(game_object.NewGameObject())
	s.Add(game_object.NewGameObject())

	calls := 0
	err := s.Draw(func(queue.DrawItem) error {
		calls++
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}
