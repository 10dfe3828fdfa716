// package queue collects draw requests over the course of a frame and
// orders them for batching. Producers push DrawItems in any order; at frame
// end the queue yields them sorted by (layer, z, submission sequence) so
// later submissions win ties and painter order is deterministic.
package queue

import (
	"sort"

	"github.com/flint2d/flint/common"
	"github.com/flint2d/flint/engine/texture"
)

// PrimitiveKind selects which render pipeline a DrawItem is drawn with.
type PrimitiveKind uint8

const (
	// KindSprite draws a textured unit quad.
	KindSprite PrimitiveKind = iota

	// KindRect draws an untextured rounded rectangle shaded in the fragment
	// stage with a signed-distance function.
	KindRect

	// KindGlyph draws a unit quad sampling a glyph atlas, tinted by the
	// item's color.
	KindGlyph

	// kindCount is the number of primitive kinds. Internal sizing constant.
	kindCount
)

// KindCount is the number of distinct primitive kinds.
const KindCount = int(kindCount)

// String returns the lowercase name of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case KindSprite:
		return "sprite"
	case KindRect:
		return "rect"
	case KindGlyph:
		return "glyph"
	default:
		return "unknown"
	}
}

// DrawItem is a single draw request. Fields that do not apply to the item's
// kind are ignored: UV fields apply to sprites and glyphs, the rect shading
// fields (corner radius, border) apply to rects only.
type DrawItem struct {
	// Kind selects the pipeline.
	Kind PrimitiveKind

	// Texture is the texture sampled at bind slot 0. texture.None selects
	// the built-in white texture; rects normally leave this zero.
	Texture texture.Handle

	// Transform is the row-major model matrix placing the quad in logical
	// pixel space.
	Transform common.Mat4

	// Layer is the primary sort key. Lower layers draw first.
	Layer int32

	// Z is the secondary sort key within a layer.
	Z int32

	// Tint is the rect fill color. Sprite and glyph records carry no color;
	// their tint comes from the per-kind params uniform instead.
	Tint common.Color

	// Size is the quad's pixel dimensions. Rects need it for SDF shading.
	Size common.Size

	// UVOffset and UVScale select a sub-region of the texture.
	// A zero UVScale is treated as the full texture by producers.
	UVOffset common.Vec2
	UVScale  common.Vec2

	// CornerRadius is the rect corner radius in pixels.
	CornerRadius float32

	// BorderThickness is the rect border width in pixels. Zero disables the
	// border entirely.
	BorderThickness float32

	// BorderColor is the rect border color, composited under the fill.
	BorderColor common.Color

	// seq is the submission sequence number assigned by the queue. It is
	// the final sort key, so equal (layer, z) items keep submission order.
	seq uint64
}

// Seq returns the submission sequence number the queue assigned to the item.
func (d DrawItem) Seq() uint64 {
	return d.seq
}

// RenderQueue accumulates DrawItems for one frame. It is not safe for
// concurrent use; the frame controller serializes access.
type RenderQueue struct {
	items   []DrawItem
	nextSeq uint64
}

// NewRenderQueue creates an empty RenderQueue.
func NewRenderQueue() *RenderQueue {
	return &RenderQueue{
		items: make([]DrawItem, 0, 256),
	}
}

// Push appends an item and stamps it with the next sequence number.
// Sequence numbers are monotonic across the queue's lifetime, not per frame,
// so ordering stays stable even if items survive a Clear by reference.
func (q *RenderQueue) Push(item DrawItem) {
	item.seq = q.nextSeq
	q.nextSeq++
	q.items = append(q.items, item)
}

// Len returns the number of queued items.
func (q *RenderQueue) Len() int {
	return len(q.items)
}

// Sorted stable-sorts the queued items by (layer asc, z asc, seq asc) and
// returns the backing slice. The slice is only valid until the next Clear.
func (q *RenderQueue) Sorted() []DrawItem {
	sort.SliceStable(q.items, func(i, j int) bool {
		a, b := q.items[i], q.items[j]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.seq < b.seq
	})
	return q.items
}

// Clear empties the queue, retaining capacity for the next frame.
func (q *RenderQueue) Clear() {
	q.items = q.items[:0]
}
