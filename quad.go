package quadbatch

import (
	"log/slog"
	"sync/atomic"
)

// maxQuadsPerDraw is the most quads one uint16-indexed draw can address:
// 65535 / 4 vertices per quad.
const maxQuadsPerDraw = 16383

// MeshConfig describes quad geometry and texture addressing shared by
// PlayfieldMesh and SpriteMesh.
type MeshConfig struct {
	// CellWidth and CellHeight are the quad size in world units.
	CellWidth, CellHeight float32
	// Anchor is the world position of cell (0, 0). Rows grow toward -Y.
	Anchor Vec2
	// Pivot is the point of the quad, as a fraction of its size measured from
	// the top-left corner, that sits on the translate position.
	Pivot Vec2
	// Columns lays sprites out row-major at construction. Zero keeps the
	// translate values already in the records. Ignored by PlayfieldMesh.
	Columns int
	// UVMode and UVTable select tiled or atlas texture addressing.
	UVMode  UVMode
	UVTable UVTable
}

// cellPosition returns the world position of cell (col, row).
func (c *MeshConfig) cellPosition(col, row int) [3]float32 {
	return [3]float32{
		c.Anchor.X + float32(col)*c.CellWidth,
		c.Anchor.Y - float32(row)*c.CellHeight,
		0,
	}
}

// quadrants is the unit UV of each corner in vertex order TL, TR, BR, BL.
var quadrants = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// quadMesh is the buffer, expander and dirty flag shared by both mesh kinds.
type quadMesh struct {
	kind   string
	n      int
	cfg    MeshConfig
	mapper *PropertyMapper
	exp    *QuadExpander
	buf    []float32
	static []float32

	dirty     atomic.Bool
	destroyed bool
	stats     MeshStats
}

func (q *quadMesh) init(kind string, n int, m *PropertyMapper, src RecordSource, cfg MeshConfig) error {
	exp, err := NewQuadExpander(m, src, cfg.UVMode, cfg.UVTable)
	if err != nil {
		return err
	}
	q.kind = kind
	q.n = n
	q.cfg = cfg
	q.mapper = m
	q.exp = exp
	q.buf = make([]float32, m.BufferLen(n))
	q.static = make([]float32, m.StaticBufferLen(n))
	q.writeStatic()
	exp.BindAttributeBuffer(q.buf)
	Logger().Debug("quadbatch: mesh allocated",
		slog.String("mesh", kind),
		slog.Int("quads", n),
		slog.Int("stride", m.AttributesPerVertex()),
		slog.Int("floats", len(q.buf)))
	return nil
}

// writeStatic fills the per-corner shape and quadrant data once.
func (q *quadMesh) writeStatic() {
	if q.mapper.StaticStride() == 0 {
		return
	}
	w, h := q.cfg.CellWidth, q.cfg.CellHeight
	px, py := q.cfg.Pivot.X, q.cfg.Pivot.Y
	for i := 0; i < q.n; i++ {
		for c, uv := range quadrants {
			v := i*VerticesPerQuad + c
			q.mapper.WritePosition(q.static, v, (uv[0]-px)*w, -(uv[1]-py)*h)
			q.mapper.WriteQuadrant(q.static, v, uv[0], uv[1])
		}
	}
}

// writePosition writes a translate straight into all four vertices of quad i,
// bypassing the expander. Used for the initial positional layout.
func (q *quadMesh) writePosition(i int, pos [3]float32) {
	for c := 0; c < VerticesPerQuad; c++ {
		q.mapper.WriteTranslate(q.buf, i*VerticesPerQuad+c, pos)
	}
}

func (q *quadMesh) markDirty() { q.dirty.Store(true) }

// expandOne re-expands quad i and marks the buffer dirty.
func (q *quadMesh) expandOne(i int) {
	checkDestroyed(q.destroyed, q.kind, "edit")
	checkIndex(i, q.n, q.kind)
	if err := q.exp.Expand(i); err != nil {
		panic(err)
	}
	q.markDirty()
}

// Len returns the fixed number of quads.
func (q *quadMesh) Len() int { return q.n }

// Mapper returns the property mapper the mesh was built with.
func (q *quadMesh) Mapper() *PropertyMapper { return q.mapper }

// Config returns the mesh configuration.
func (q *quadMesh) Config() MeshConfig { return q.cfg }

// UVMode returns the texture addressing mode fixed at construction.
func (q *quadMesh) UVMode() UVMode { return q.cfg.UVMode }

// Buffer returns the dynamic quad buffer. Its length never changes.
func (q *quadMesh) Buffer() []float32 { return q.buf }

// StaticBuffer returns the per-corner static buffer written at construction.
func (q *quadMesh) StaticBuffer() []float32 { return q.static }

// Dirty reports whether the dynamic buffer changed since the last Consume.
func (q *quadMesh) Dirty() bool { return q.dirty.Load() }

// Consume is the renderer's upload step: it clears the dirty flag and returns
// the buffer to upload. Call it from the render phase only.
func (q *quadMesh) Consume() []float32 {
	q.dirty.Store(false)
	return q.buf
}

// Stats returns the expansion counters. Bulk timings are only collected in
// debug mode.
func (q *quadMesh) Stats() MeshStats {
	s := q.stats
	if q.exp != nil {
		s.ExpandStats = q.exp.Stats()
	}
	return s
}

// Destroyed reports whether Destroy has been called.
func (q *quadMesh) Destroyed() bool { return q.destroyed }

func (q *quadMesh) release() {
	if q.destroyed {
		return
	}
	q.destroyed = true
	q.exp.BindAttributeBuffer(nil)
	q.buf = nil
	q.static = nil
	q.dirty.Store(false)
	Logger().Info("quadbatch: mesh destroyed", slog.String("mesh", q.kind), slog.Int("quads", q.n))
}

// QuadIndices returns the triangle list for n quads: two triangles per quad,
// (0,1,2) and (0,2,3) over corners TL, TR, BR, BL.
func QuadIndices(n int) []uint32 {
	out := make([]uint32, n*6)
	for i := 0; i < n; i++ {
		base := uint32(i * 4)
		off := i * 6
		out[off+0] = base + 0
		out[off+1] = base + 1
		out[off+2] = base + 2
		out[off+3] = base + 0
		out[off+4] = base + 2
		out[off+5] = base + 3
	}
	return out
}

// QuadIndices16 is QuadIndices for 16-bit index buffers. n is clamped to the
// largest count a 16-bit draw can address; callers split larger meshes into
// chunks of at most that many quads.
func QuadIndices16(n int) []uint16 {
	n = min(n, maxQuadsPerDraw)
	out := make([]uint16, n*6)
	for i := 0; i < n; i++ {
		base := uint16(i * 4)
		off := i * 6
		out[off+0] = base + 0
		out[off+1] = base + 1
		out[off+2] = base + 2
		out[off+3] = base + 0
		out[off+4] = base + 2
		out[off+5] = base + 3
	}
	return out
}
