package engine

import (
	"fmt"

	"github.com/richinsley/gowavefield/field"
)

// VertexStride is the number of float32 components per mesh vertex:
// x, y, height, r, g, b.
const VertexStride = 6

// Mesh is a fixed-subdivision vertex grid over the unit square. Evaluate
// fills the interleaved vertex slice from the surface params and one frame
// of uniforms; the triangle index list never changes after construction.
type Mesh struct {
	cols, rows int
	params     field.Params
	verts      []float32
	indices    []uint32
}

// NewMesh builds a cols x rows vertex grid. Both dimensions must be at
// least 2.
func NewMesh(cols, rows int, params field.Params) (*Mesh, error) {
	if cols < 2 || rows < 2 {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("mesh %dx%d too small, need at least 2x2", cols, rows)}
	}
	return &Mesh{
		cols:    cols,
		rows:    rows,
		params:  params,
		verts:   make([]float32, cols*rows*VertexStride),
		indices: buildIndices(cols, rows),
	}, nil
}

// buildIndices emits two triangles per grid cell.
func buildIndices(cols, rows int) []uint32 {
	idx := make([]uint32, 0, (cols-1)*(rows-1)*6)
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			i := uint32(r*cols + c)
			up := i + uint32(cols)
			idx = append(idx, i, i+1, up, i+1, up+1, up)
		}
	}
	return idx
}

// Evaluate fills every vertex on the calling goroutine.
func (m *Mesh) Evaluate(u Uniforms) {
	for r := 0; r < m.rows; r++ {
		m.evaluateRow(r, u)
	}
}

// EvaluateParallel splits rows across the pool and waits for the last row
// before returning. The result is identical to Evaluate.
func (m *Mesh) EvaluateParallel(u Uniforms, pool *WorkerPool) {
	if pool == nil || pool.Workers() < 2 {
		m.Evaluate(u)
		return
	}
	jobs := make([]func(), m.rows)
	for r := 0; r < m.rows; r++ {
		r := r
		jobs[r] = func() { m.evaluateRow(r, u) }
	}
	pool.ExecuteAll(jobs)
}

// evaluateRow computes one grid row. Rows never share vertices, and u is
// passed by value, so concurrent rows touch disjoint memory.
func (m *Mesh) evaluateRow(row int, u Uniforms) {
	px := float64(u.Pointer[0])
	py := float64(u.Pointer[1])
	in := float64(u.AudioIntensity)
	v := float64(row) / float64(m.rows-1)
	base := row * m.cols * VertexStride
	for c := 0; c < m.cols; c++ {
		uu := float64(c) / float64(m.cols-1)
		h := m.params.Height(uu, v, u.Time, px, py, in)
		wx, wy := m.params.Wobble(uu, v, u.Time)
		cr, cg, cb := field.Shade(uu, v, u.Time, in)
		o := base + c*VertexStride
		m.verts[o+0] = float32(uu + wx)
		m.verts[o+1] = float32(v + wy)
		m.verts[o+2] = float32(h)
		m.verts[o+3] = float32(cr)
		m.verts[o+4] = float32(cg)
		m.verts[o+5] = float32(cb)
	}
}

// Vertices returns the interleaved vertex data. The slice is reused on
// every evaluation; copy it to keep a frame.
func (m *Mesh) Vertices() []float32 {
	return m.verts
}

// Indices returns the static triangle index list.
func (m *Mesh) Indices() []uint32 {
	return m.indices
}

// Dims returns the grid dimensions.
func (m *Mesh) Dims() (cols, rows int) {
	return m.cols, m.rows
}

// Params returns the surface params the mesh evaluates with.
func (m *Mesh) Params() field.Params {
	return m.params
}
