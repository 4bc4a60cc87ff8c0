package quadbatch

import (
	"github.com/gogpu/gputypes"
)

// BufferID selects which physical vertex buffer an attribute lives in.
type BufferID uint8

const (
	// BufferDynamic holds per-entity state rewritten whenever an entity
	// changes. It is the zero value.
	BufferDynamic BufferID = iota
	// BufferStatic holds per-quad-constant data (corner shape, UV quadrant)
	// written once when a mesh is built.
	BufferStatic
)

func (b BufferID) String() string {
	switch b {
	case BufferStatic:
		return "static"
	case BufferDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Attribute is one named value in a vertex record.
type Attribute struct {
	Name       string
	Components int // float32 components, 1..4
	Buffer     BufferID
}

// Binding is the resolved location of an attribute.
type Binding struct {
	Offset     int // in float32 units from the start of the vertex record
	Components int
	Buffer     BufferID
}

// VariableLayout is the immutable, ordered description of the attributes a
// shader configuration reads. Offsets are assigned per buffer in declaration
// order, so the same attribute list always yields the same offsets.
type VariableLayout struct {
	attrs    []Attribute
	bindings map[string]Binding
	strides  [2]int
}

// NewVariableLayout validates attrs and computes per-buffer offsets.
func NewVariableLayout(attrs ...Attribute) (*VariableLayout, error) {
	l := &VariableLayout{
		attrs:    make([]Attribute, len(attrs)),
		bindings: make(map[string]Binding, len(attrs)),
	}
	copy(l.attrs, attrs)
	for _, a := range attrs {
		if a.Name == "" {
			return nil, configError("layout", "", "attribute with empty name")
		}
		if a.Components < 1 || a.Components > 4 {
			return nil, configError("layout", a.Name, "component count %d outside 1..4", a.Components)
		}
		if a.Buffer != BufferStatic && a.Buffer != BufferDynamic {
			return nil, configError("layout", a.Name, "unknown buffer id %d", a.Buffer)
		}
		if _, dup := l.bindings[a.Name]; dup {
			return nil, configError("layout", a.Name, "duplicate attribute")
		}
		l.bindings[a.Name] = Binding{
			Offset:     l.strides[a.Buffer],
			Components: a.Components,
			Buffer:     a.Buffer,
		}
		l.strides[a.Buffer] += a.Components
	}
	return l, nil
}

// MustVariableLayout is like NewVariableLayout but panics on error. Intended
// for package-level layout definitions.
func MustVariableLayout(attrs ...Attribute) *VariableLayout {
	l, err := NewVariableLayout(attrs...)
	if err != nil {
		panic(err)
	}
	return l
}

// Resolve returns the location of the named attribute.
func (l *VariableLayout) Resolve(name string) (Binding, error) {
	b, ok := l.bindings[name]
	if !ok {
		return Binding{}, configError("resolve", name, "attribute not in layout")
	}
	return b, nil
}

// Stride returns the number of float32 values per vertex in buffer b.
func (l *VariableLayout) Stride(b BufferID) int {
	if int(b) >= len(l.strides) {
		return 0
	}
	return l.strides[b]
}

// Len returns the number of attributes.
func (l *VariableLayout) Len() int { return len(l.attrs) }

// Attributes returns a copy of the attribute list in declaration order.
func (l *VariableLayout) Attributes() []Attribute {
	out := make([]Attribute, len(l.attrs))
	copy(out, l.attrs)
	return out
}

// vertexBufferOrder is the WebGPU vertex buffer slot of each buffer.
var vertexBufferOrder = [2]BufferID{BufferStatic, BufferDynamic}

var float32Formats = [5]gputypes.VertexFormat{
	gputypes.VertexFormatUndefined,
	gputypes.VertexFormatFloat32,
	gputypes.VertexFormatFloat32x2,
	gputypes.VertexFormatFloat32x3,
	gputypes.VertexFormatFloat32x4,
}

// VertexBufferLayouts describes the layout as WebGPU vertex buffers: index 0
// is the static buffer, index 1 the dynamic buffer. Shader locations follow
// declaration order across both buffers. A buffer with no attributes is
// reported with VertexStepModeVertexBufferNotUsed.
func (l *VariableLayout) VertexBufferLayouts() []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, 2)
	for i, b := range vertexBufferOrder {
		out[i] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(l.strides[b] * 4),
			StepMode:    gputypes.VertexStepModeVertex,
		}
		if l.strides[b] == 0 {
			out[i].StepMode = gputypes.VertexStepModeVertexBufferNotUsed
		}
	}
	for loc, a := range l.attrs {
		b := l.bindings[a.Name]
		slot := 1
		if a.Buffer == BufferStatic {
			slot = 0
		}
		out[slot].Attributes = append(out[slot].Attributes, gputypes.VertexAttribute{
			Format:         float32Formats[a.Components],
			Offset:         uint64(b.Offset * 4),
			ShaderLocation: uint32(loc),
		})
	}
	return out
}
