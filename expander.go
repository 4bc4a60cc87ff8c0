package quadbatch

import (
	"fmt"
)

// UVMode selects how texture coordinates reach the shader. It is fixed per
// mesh at construction; the two modes are never mixed.
type UVMode uint8

const (
	// UVTiled broadcasts the frame index to all four vertices; the shader
	// derives the texture rectangle from it.
	UVTiled UVMode = iota
	// UVAtlas writes one (u, v) pair per corner from a per-frame table, for
	// atlases whose frames cannot be computed from a single index.
	UVAtlas
)

func (m UVMode) String() string {
	switch m {
	case UVTiled:
		return "tiled"
	case UVAtlas:
		return "atlas"
	default:
		return "unknown"
	}
}

// UVTable maps a frame index to its four corner coordinates in the order
// TL, TR, BR, BL as (u0,v0, u1,v1, u2,v2, u3,v3). The provider guarantees the
// table is populated before any expansion references a frame.
type UVTable interface {
	FrameUVs(frame int) (uv [8]float32, ok bool)
}

// AttributeExpander keeps a bound dynamic buffer in step with entity state.
type AttributeExpander interface {
	BindAttributeBuffer(buf []float32)
	UpdateAttributeData() error
	Expand(i int) error
}

// cornerOrder permutes atlas corners by flip flags. Indexed by
// flags&(FlipX|FlipY); entry[c] is the source corner written to corner c.
var cornerOrder = [4][4]int{
	{0, 1, 2, 3}, // none
	{1, 0, 3, 2}, // flip X
	{3, 2, 1, 0}, // flip Y
	{2, 3, 0, 1}, // flip X+Y
}

// QuadExpander expands one record into four vertex records. Transform and
// color are broadcast to every corner; only UVs (atlas mode) and corner
// colors (when the source provides them) vary per corner.
type QuadExpander struct {
	mapper  *PropertyMapper
	source  RecordSource
	corners CornerColorSource // nil unless source implements it
	mode    UVMode
	table   UVTable
	buf     []float32

	stats ExpandStats
}

// ExpandStats counts expansion work since the last ResetStats.
type ExpandStats struct {
	Quads      int // quads expanded
	FullPasses int // UpdateAttributeData calls
}

// NewQuadExpander checks that the layout carries what mode needs: a frame
// attribute for UVTiled, a uv attribute and a table for UVAtlas.
func NewQuadExpander(m *PropertyMapper, source RecordSource, mode UVMode, table UVTable) (*QuadExpander, error) {
	switch mode {
	case UVTiled:
		if !m.Has(PropFrame) {
			return nil, configError("expander", "frame", "tiled UV mode needs a frame attribute")
		}
	case UVAtlas:
		if !m.Has(PropUV) || m.Components(PropUV) < 2 {
			return nil, configError("expander", "uv", "atlas UV mode needs a 2-component uv attribute")
		}
		if table == nil {
			return nil, configError("expander", "uv", "atlas UV mode needs a UV table")
		}
	default:
		return nil, configError("expander", mode.String(), "unknown UV mode")
	}
	e := &QuadExpander{mapper: m, source: source, mode: mode, table: table}
	if cs, ok := source.(CornerColorSource); ok {
		e.corners = cs
	}
	return e, nil
}

// Mode returns the UV mode chosen at construction.
func (e *QuadExpander) Mode() UVMode { return e.mode }

// BindAttributeBuffer sets the buffer expansions write into, replacing any
// previous binding.
func (e *QuadExpander) BindAttributeBuffer(buf []float32) {
	e.buf = buf
}

// UpdateAttributeData re-expands every entity.
func (e *QuadExpander) UpdateAttributeData() error {
	if e.buf == nil {
		return fmt.Errorf("update attribute data: %w", ErrBufferNotBound)
	}
	n := e.source.Len()
	for i := 0; i < n; i++ {
		e.expand(i)
	}
	e.stats.FullPasses++
	return nil
}

// Expand re-expands entity i.
func (e *QuadExpander) Expand(i int) error {
	if e.buf == nil {
		return fmt.Errorf("expand entity %d: %w", i, ErrBufferNotBound)
	}
	e.expand(i)
	return nil
}

// ExpandRange re-expands entities [lo, hi).
func (e *QuadExpander) ExpandRange(lo, hi int) error {
	if e.buf == nil {
		return fmt.Errorf("expand entities [%d,%d): %w", lo, hi, ErrBufferNotBound)
	}
	for i := lo; i < hi; i++ {
		e.expand(i)
	}
	return nil
}

// Stats returns the counters accumulated since the last ResetStats.
func (e *QuadExpander) Stats() ExpandStats { return e.stats }

// ResetStats zeroes the counters.
func (e *QuadExpander) ResetStats() { e.stats = ExpandStats{} }

func (e *QuadExpander) expand(i int) {
	r := e.source.Record(i)
	m := e.mapper
	base := i * VerticesPerQuad

	var colors [4]Color
	perCorner := false
	if e.corners != nil {
		colors, perCorner = e.corners.CornerColors(i)
	}

	var uv [8]float32
	order := cornerOrder[r.Flags&(FlipX|FlipY)]
	if e.mode == UVAtlas {
		var ok bool
		uv, ok = e.table.FrameUVs(r.Frame)
		if !ok && globalDebug {
			Logger().Warn("quadbatch: atlas frame missing, using placeholder UVs", "entity", i, "frame", r.Frame)
		}
	}

	for c := 0; c < VerticesPerQuad; c++ {
		v := base + c
		m.WriteTranslate(e.buf, v, r.Translate)
		m.WriteRotate(e.buf, v, r.Rotate)
		m.WriteScale(e.buf, v, r.Scale)
		if perCorner {
			m.WriteColor(e.buf, v, colors[c])
		} else {
			m.WriteColor(e.buf, v, r.Color)
		}
		m.WriteFrame(e.buf, v, r.Frame, r.Flags)
		if e.mode == UVAtlas {
			src := order[c] * 2
			m.WriteUV(e.buf, v, uv[src], uv[src+1])
		}
	}
	e.stats.Quads++
}
