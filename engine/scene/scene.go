package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/flint2d/flint/engine/camera"
	"github.com/flint2d/flint/engine/game_object"
	"github.com/flint2d/flint/engine/queue"
)

// Scene manages a registry of GameObjects with a Camera, advancing objects by
// their velocity each update and emitting their draw items each frame.
// Scenes can be hot-swapped via the Active flag to switch between different views or levels.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Count returns the number of persisted GameObjects in the scene's registry. Does not include ephemeral objects.
	//
	// Returns:
	//   - int: count of non-ephemeral GameObjects in the registry
	Count() int

	// CountEphemeral returns the number of ephemeral GameObjects currently
	// tracked by the scene.
	//
	// Returns:
	//   - int: count of ephemeral GameObjects
	CountEphemeral() int

	// Add adds a GameObject to the scene and assigns it an ID if it has none.
	// Non-ephemeral objects are persisted in the registry for later lookup or
	// removal by ID. Ephemeral objects are tracked separately and dropped as
	// soon as they are disabled.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a non-ephemeral GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Find retrieves a non-ephemeral GameObject by its name. Returns the
	// first match in insertion order or nil.
	//
	// Parameters:
	//   - name: the object name
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Find(name string) game_object.GameObject

	// Remove removes a non-ephemeral GameObject from the registry by ID.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Clear removes all objects from the scene.
	Clear()

	// Update advances every enabled object by its velocity over the given
	// time step, drops disabled ephemeral objects, and moves the camera to
	// follow its tether target when one is set. No-ops when the scene is
	// inactive.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last update in seconds
	Update(deltaTime float32)

	// Draw hands every enabled object's draw item to enqueue, registry
	// objects in insertion order followed by ephemeral objects in insertion
	// order. Stops at the first enqueue failure. No-ops when the scene is
	// inactive.
	//
	// Parameters:
	//   - enqueue: the sink for draw items, typically Engine.QueueDraw
	//
	// Returns:
	//   - error: the first error returned by enqueue
	Draw(enqueue func(item queue.DrawItem) error) error
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	registry   map[uint64]game_object.GameObject // non-ephemeral objects by ID
	drawOrder  []uint64                          // registry IDs in insertion order
	ephemerals []game_object.GameObject
	nextID     uint64

	cam camera.Camera

	// updatePool manages a bounded set of reusable goroutines for advancing
	// objects in parallel during Update. Workers persist across frames,
	// avoiding per-frame goroutine spawn/teardown overhead.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int // stored so we can log/inspect the configured count
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera. The camera is required
// and NewScene panics when it is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		active:        false,
		cam:           cam,
		registry:      make(map[uint64]game_object.GameObject),
		nextID:        1,
		updateWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the update pool after options so WithUpdateWorkers can override the default.
	// Queue size of 256 accommodates typical object counts with headroom.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) CountEphemeral() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ephemerals)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add assigns an ID and registers the object. Caller must hold s.mu write lock.
func (s *scene) add(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}

	if obj.Ephemeral() {
		s.ephemerals = append(s.ephemerals, obj)
	} else {
		s.registry[obj.ID()] = obj
		s.drawOrder = append(s.drawOrder, obj.ID())
	}

	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Find(name string) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.drawOrder {
		if obj := s.registry[id]; obj != nil && obj.Name() == name {
			return obj
		}
	}
	return nil
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry[id]; !exists {
		return
	}

	delete(s.registry, id)
	for i, existing := range s.drawOrder {
		if existing == id {
			s.drawOrder = append(s.drawOrder[:i], s.drawOrder[i+1:]...)
			break
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(map[uint64]game_object.GameObject)
	s.drawOrder = nil
	s.ephemerals = nil
}

func (s *scene) Update(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	// Drop ephemeral objects that have been disabled since the last update.
	kept := s.ephemerals[:0]
	for _, obj := range s.ephemerals {
		if obj.Enabled() {
			kept = append(kept, obj)
		}
	}
	s.ephemerals = kept

	objects := make([]game_object.GameObject, 0, len(s.drawOrder)+len(s.ephemerals))
	for _, id := range s.drawOrder {
		objects = append(objects, s.registry[id])
	}
	objects = append(objects, s.ephemerals...)

	var wg sync.WaitGroup
	taskID := 0
	for _, obj := range objects {
		if !obj.Enabled() {
			continue
		}

		wg.Add(1)
		oCap := obj // capture for closure
		id := taskID
		taskID++
		s.updatePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				oCap.Advance(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()

	s.followTetherTarget()
}

// followTetherTarget moves the camera to its tether target's position when
// the camera names one and a registry object matches. Caller must hold s.mu.
func (s *scene) followTetherTarget() {
	if s.cam == nil || !s.cam.Activated() {
		return
	}
	target := s.cam.TetherTarget()
	if target == "" {
		return
	}

	for _, id := range s.drawOrder {
		obj := s.registry[id]
		if obj == nil || obj.Name() != target {
			continue
		}
		s.cam.SetTetherSize(obj.Size())
		s.cam.SetPosition(obj.Position())
		return
	}
}

func (s *scene) Draw(enqueue func(item queue.DrawItem) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.active {
		return nil
	}

	for _, id := range s.drawOrder {
		obj := s.registry[id]
		if obj == nil || !obj.Enabled() {
			continue
		}
		if err := enqueue(obj.DrawItem()); err != nil {
			return err
		}
	}
	for _, obj := range s.ephemerals {
		if !obj.Enabled() {
			continue
		}
		if err := enqueue(obj.DrawItem()); err != nil {
			return err
		}
	}
	return nil
}
