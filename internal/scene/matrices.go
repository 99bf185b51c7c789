package scene

import "github.com/go-gl/mathgl/mgl32"

// ObjectMatrices is the per-frame transform bundle of one object.
type ObjectMatrices struct {
	ModelView           mgl32.Mat4
	ModelViewProjection mgl32.Mat4
	NormalModelView     mgl32.Mat3
	ModelToWorld        mgl32.Mat4
}

// MatrixCache holds ObjectMatrices keyed by object identity for one view and
// one frame. Compute discards everything from the previous frame.
type MatrixCache struct {
	frame      uint64
	computed   bool
	view       mgl32.Mat4
	projection mgl32.Mat4
	entries    map[*Object]ObjectMatrices
}

// NewMatrixCache returns an empty cache. Get on an empty cache always misses.
func NewMatrixCache() *MatrixCache {
	return &MatrixCache{entries: make(map[*Object]ObjectMatrices)}
}

// Compute rebuilds the cache for frame from view and projection.
func (c *MatrixCache) Compute(frame uint64, view, projection mgl32.Mat4, objects []*Object) {
	for k := range c.entries {
		delete(c.entries, k)
	}
	c.frame = frame
	c.computed = true
	c.view = view
	c.projection = projection
	for _, o := range objects {
		c.entries[o] = Matrices(o.Transform.Matrix(), view, projection)
	}
}

// Matrices derives the bundle for a single model matrix.
func Matrices(model, view, projection mgl32.Mat4) ObjectMatrices {
	mv := view.Mul4(model)
	return ObjectMatrices{
		ModelView:           mv,
		ModelViewProjection: projection.Mul4(mv),
		NormalModelView:     NormalMatrix(mv),
		ModelToWorld:        model,
	}
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// Get returns the matrices of o computed for the current frame.
func (c *MatrixCache) Get(o *Object) (ObjectMatrices, bool) {
	m, ok := c.entries[o]
	return m, ok
}

// Frame reports the frame the cache was computed for and whether it has been computed at all.
func (c *MatrixCache) Frame() (uint64, bool) {
	return c.frame, c.computed
}

func (c *MatrixCache) View() mgl32.Mat4       { return c.view }
func (c *MatrixCache) Projection() mgl32.Mat4 { return c.projection }

// Len returns the number of cached objects.
func (c *MatrixCache) Len() int {
	return len(c.entries)
}
