// package batch turns a sorted stream of draw items into instanced GPU
// batches. Maximal consecutive runs sharing a batch key collapse into one
// batch each; instance records are packed into a reusable InstancePool.
package batch

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/flint2d/flint/engine/queue"
	"github.com/flint2d/flint/engine/texture"
)

// Key identifies which draws can share one instanced draw call. Items merge
// only when both the primitive kind (which fixes the pipeline) and the
// bound texture match.
type Key struct {
	Kind    queue.PrimitiveKind
	Texture texture.Handle
}

// Batch is one instanced draw: Count records of the key's Kind starting at
// instance index First in the pool's per-kind buffer. The Key is embedded so
// consumers read bt.Kind and bt.Texture directly. Batches are emitted in the
// sort position of their first member, so issuing them in slice order
// preserves painter order.
type Batch struct {
	Key
	First uint32
	Count uint32
}

// Batcher builds batches from sorted draw items.
type Batcher interface {
	// Build walks items in order, merges maximal consecutive same-key runs
	// into batches, and packs each run's instance records into pool.
	// The pool is not reset here; the frame controller resets it at frame
	// begin so capacity carries across frames.
	//
	// Parameters:
	//   - items: draw items already sorted by (layer, z, seq)
	//   - pool: the frame's InstancePool to pack records into
	//
	// Returns:
	//   - []Batch: batches in draw order
	//   - error: an error if an instance pool limit is exceeded
	Build(items []queue.DrawItem, pool *InstancePool) ([]Batch, error)
}

// batcher is the implementation of the Batcher interface.
type batcher struct {
	// workerPool manages a bounded set of reusable goroutines for packing
	// large runs in parallel. Workers persist across frames, avoiding
	// per-frame goroutine spawn/teardown overhead.
	workerPool worker.DynamicWorkerPool
	workers    int

	// parallelThreshold is the minimum run length packed on the worker
	// pool; shorter runs pack inline on the calling goroutine.
	parallelThreshold int
}

var _ Batcher = &batcher{}

// NewBatcher creates a Batcher with the given options applied.
//
// Parameters:
//   - options: functional options to configure the batcher
//
// Returns:
//   - Batcher: the configured batcher
func NewBatcher(options ...BatcherOption) Batcher {
	b := &batcher{
		workers:           max(runtime.NumCPU()-1, 1),
		parallelThreshold: 64,
	}
	for _, opt := range options {
		opt(b)
	}
	// Queue size of 256 accommodates typical run counts with headroom.
	b.workerPool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	return b
}

func (b *batcher) Build(items []queue.DrawItem, pool *InstancePool) ([]Batch, error) {
	if len(items) == 0 {
		return nil, nil
	}

	// Pass 1: find run boundaries and reserve every pool range up front.
	// Reservations can reallocate the pool's backing arrays, so no packing
	// happens until all ranges exist.
	type run struct {
		key          Key
		start, count int
		first        int
	}
	runs := make([]run, 0, 16)

	i := 0
	for i < len(items) {
		key := Key{Kind: items[i].Kind, Texture: items[i].Texture}
		j := i + 1
		for j < len(items) && items[j].Kind == key.Kind && items[j].Texture == key.Texture {
			j++
		}
		first, err := pool.Reserve(key.Kind, j-i)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run{key: key, start: i, count: j - i, first: first})
		i = j
	}

	// Pass 2: pack records. Long runs go to the worker pool; each task
	// writes a disjoint pre-reserved range, so no locking is needed. A
	// WaitGroup provides the per-frame barrier since pool.Wait() blocks
	// until workers idle-exit, which is unsuitable for frame-rate work.
	batches := make([]Batch, len(runs))
	var wg sync.WaitGroup
	taskID := 0
	for ri, r := range runs {
		batches[ri] = Batch{Key: r.key, First: uint32(r.first), Count: uint32(r.count)}

		dst := pool.Slice(r.key.Kind, r.first, r.count)
		src := items[r.start : r.start+r.count]
		if r.count >= b.parallelThreshold {
			wg.Add(1)
			kind := r.key.Kind
			id := taskID
			taskID++
			b.workerPool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					packRun(kind, dst, src)
					return nil, nil
				},
			})
		} else {
			packRun(r.key.Kind, dst, src)
		}
	}
	wg.Wait()

	return batches, nil
}

// packRun packs one run's records into its reserved byte range.
func packRun(kind queue.PrimitiveKind, dst []byte, items []queue.DrawItem) {
	size := InstanceSize(kind)
	if kind == queue.KindRect {
		for i := range items {
			PackRect(dst[i*size:(i+1)*size], &items[i])
		}
		return
	}
	for i := range items {
		PackSprite(dst[i*size:(i+1)*size], &items[i])
	}
}
