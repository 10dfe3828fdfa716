package batch

import (
	"fmt"

	"github.com/flint2d/flint/engine/queue"
)

// MaxInstancesPerKind caps how many instances of one primitive kind a
// single frame may hold. Reserving past it is an error the frame controller
// treats as fatal; records are never silently truncated.
const MaxInstancesPerKind = 1 << 22

// InstancePool owns one packed byte buffer per primitive kind, reused
// across frames. Reset drops lengths to zero but keeps capacity, so each
// buffer grows to its high-water mark and stays there.
//
// The pool is not safe for concurrent Reserve calls. The batcher reserves
// all ranges up front, then packs into the stable buffers, possibly from
// several workers writing disjoint ranges.
type InstancePool struct {
	buffers [queue.KindCount][]byte
}

// NewInstancePool creates an empty InstancePool.
func NewInstancePool() *InstancePool {
	return &InstancePool{}
}

// Reset empties every per-kind buffer while retaining capacity.
// Called once per frame at frame begin.
func (p *InstancePool) Reset() {
	for k := range p.buffers {
		p.buffers[k] = p.buffers[k][:0]
	}
}

// Reserve extends the kind's buffer by count instance records and returns
// the instance index of the first reserved record.
//
// Parameters:
//   - kind: the primitive kind whose buffer to extend
//   - count: the number of instance records to reserve
//
// Returns:
//   - int: the index of the first reserved instance within the kind's buffer
//   - error: an error if the reservation would exceed MaxInstancesPerKind
func (p *InstancePool) Reserve(kind queue.PrimitiveKind, count int) (int, error) {
	size := InstanceSize(kind)
	buf := p.buffers[kind]
	first := len(buf) / size
	if first+count > MaxInstancesPerKind {
		return 0, fmt.Errorf("batch: %s instance pool overflow: %d instances exceeds limit %d", kind, first+count, MaxInstancesPerKind)
	}

	need := len(buf) + count*size
	if need <= cap(buf) {
		// Within the high-water mark: reslice, no allocation. Packers
		// overwrite the full reserved range, so stale bytes are harmless.
		p.buffers[kind] = buf[:need]
		return first, nil
	}

	// New high-water mark: grow geometrically so a frame that keeps
	// reserving does not reallocate per run.
	grown := make([]byte, need, max(cap(buf)*2, need))
	copy(grown, buf)
	p.buffers[kind] = grown
	return first, nil
}

// Slice returns the writable byte range covering count records starting at
// instance index first. Only valid until the next Reserve or Reset.
func (p *InstancePool) Slice(kind queue.PrimitiveKind, first, count int) []byte {
	size := InstanceSize(kind)
	return p.buffers[kind][first*size : (first+count)*size]
}

// Bytes returns the packed records for a kind, ready for GPU upload.
func (p *InstancePool) Bytes(kind queue.PrimitiveKind) []byte {
	return p.buffers[kind]
}

// Count returns the number of packed records for a kind.
func (p *InstancePool) Count(kind queue.PrimitiveKind) int {
	return len(p.buffers[kind]) / InstanceSize(kind)
}

// Capacity returns the high-water byte capacity of a kind's buffer.
func (p *InstancePool) Capacity(kind queue.PrimitiveKind) int {
	return cap(p.buffers[kind])
}
