package quadbatch

// Property is a semantic attribute the mapper knows how to address.
type Property uint8

const (
	PropTranslate Property = iota // dynamic, xyz
	PropRotate                    // dynamic, xyz (z is the in-plane angle in radians)
	PropScale                     // dynamic, xyz
	PropColor                     // dynamic, rgba
	PropFrame                     // dynamic, [frame index, flags]
	PropUV                        // dynamic, per-corner (u, v)
	PropPosition                  // static, per-corner shape offset
	PropQuadrant                  // static, per-corner unit UV
	propCount
)

// NotPresent is the offset reported for properties missing from the layout.
const NotPresent = -1

var propertyNames = [propCount]string{
	PropTranslate: "translate",
	PropRotate:    "rotate",
	PropScale:     "scale",
	PropColor:     "color",
	PropFrame:     "frame",
	PropUV:        "uv",
	PropPosition:  "position",
	PropQuadrant:  "quadrant",
}

// String returns the attribute name the property is recognized by.
func (p Property) String() string {
	if p < propCount {
		return propertyNames[p]
	}
	return "unknown"
}

func (p Property) buffer() BufferID {
	if p == PropPosition || p == PropQuadrant {
		return BufferStatic
	}
	return BufferDynamic
}

// PropertyMapper resolves semantic offsets from a VariableLayout once, and is
// the only place buffer index arithmetic happens. It is immutable and may be
// shared by every mesh built for the same shader configuration.
type PropertyMapper struct {
	layout       *VariableLayout
	offsets      [propCount]int
	components   [propCount]int
	stride       int // attributesPerVertex, dynamic buffer
	staticStride int
}

// NewPropertyMapper scans layout for the recognized attribute names. Absent
// properties are marked NotPresent. A recognized name declared in the wrong
// buffer is a ConfigurationError.
func NewPropertyMapper(layout *VariableLayout) (*PropertyMapper, error) {
	m := &PropertyMapper{
		layout:       layout,
		stride:       layout.Stride(BufferDynamic),
		staticStride: layout.Stride(BufferStatic),
	}
	for p := Property(0); p < propCount; p++ {
		b, err := layout.Resolve(propertyNames[p])
		if err != nil {
			m.offsets[p] = NotPresent
			continue
		}
		if b.Buffer != p.buffer() {
			return nil, configError("mapper", p.String(), "declared in %s buffer, want %s", b.Buffer, p.buffer())
		}
		m.offsets[p] = b.Offset
		m.components[p] = b.Components
	}
	return m, nil
}

// Layout returns the layout the mapper was built from.
func (m *PropertyMapper) Layout() *VariableLayout { return m.layout }

// Has reports whether p is present in the layout.
func (m *PropertyMapper) Has(p Property) bool { return m.offsets[p] != NotPresent }

// Offset returns the offset of p within its vertex record, or NotPresent.
func (m *PropertyMapper) Offset(p Property) int { return m.offsets[p] }

// Components returns the declared component count of p, or 0 if absent.
func (m *PropertyMapper) Components(p Property) int { return m.components[p] }

// AttributesPerVertex is the dynamic-buffer stride in float32 units.
func (m *PropertyMapper) AttributesPerVertex() int { return m.stride }

// StaticStride is the static-buffer stride in float32 units.
func (m *PropertyMapper) StaticStride() int { return m.staticStride }

// BufferLen is the dynamic buffer length for n entities.
func (m *PropertyMapper) BufferLen(n int) int { return n * VerticesPerQuad * m.stride }

// StaticBufferLen is the static buffer length for n entities.
func (m *PropertyMapper) StaticBufferLen(n int) int { return n * VerticesPerQuad * m.staticStride }

// slot returns the index of p's first component for vertex v, or -1.
func (m *PropertyMapper) slot(p Property, v int) int {
	off := m.offsets[p]
	if off == NotPresent {
		return -1
	}
	if p.buffer() == BufferStatic {
		return v*m.staticStride + off
	}
	return v*m.stride + off
}

func (m *PropertyMapper) write(p Property, buf []float32, v int, vals ...float32) {
	i := m.slot(p, v)
	if i < 0 {
		return
	}
	n := min(len(vals), m.components[p])
	copy(buf[i:i+n], vals[:n])
}

// WriteTranslate writes t to vertex v. Extra components are dropped.
func (m *PropertyMapper) WriteTranslate(buf []float32, v int, t [3]float32) {
	m.write(PropTranslate, buf, v, t[:]...)
}

// WriteRotate writes r to vertex v.
func (m *PropertyMapper) WriteRotate(buf []float32, v int, r [3]float32) {
	m.write(PropRotate, buf, v, r[:]...)
}

// WriteScale writes s to vertex v.
func (m *PropertyMapper) WriteScale(buf []float32, v int, s [3]float32) {
	m.write(PropScale, buf, v, s[:]...)
}

// WriteColor writes c to vertex v. A 3-component color attribute drops alpha.
func (m *PropertyMapper) WriteColor(buf []float32, v int, c Color) {
	m.write(PropColor, buf, v, c.R, c.G, c.B, c.A)
}

// WriteFrame writes the frame index and flags to vertex v.
func (m *PropertyMapper) WriteFrame(buf []float32, v int, frame int, flags uint8) {
	m.write(PropFrame, buf, v, float32(frame), float32(flags))
}

// WriteUV writes one texture coordinate pair to vertex v.
func (m *PropertyMapper) WriteUV(buf []float32, v int, u, vv float32) {
	m.write(PropUV, buf, v, u, vv)
}

// WritePosition writes the static corner shape offset of vertex v.
func (m *PropertyMapper) WritePosition(buf []float32, v int, x, y float32) {
	m.write(PropPosition, buf, v, x, y)
}

// WriteQuadrant writes the static unit UV of vertex v.
func (m *PropertyMapper) WriteQuadrant(buf []float32, v int, u, vv float32) {
	m.write(PropQuadrant, buf, v, u, vv)
}

func (m *PropertyMapper) read(p Property, buf []float32, v int, dst []float32) {
	i := m.slot(p, v)
	if i < 0 {
		return
	}
	n := min(len(dst), m.components[p])
	copy(dst[:n], buf[i:i+n])
}

// ReadTranslate returns the translate of vertex v; absent components are 0.
func (m *PropertyMapper) ReadTranslate(buf []float32, v int) (t [3]float32) {
	m.read(PropTranslate, buf, v, t[:])
	return t
}

// ReadRotate returns the rotate of vertex v.
func (m *PropertyMapper) ReadRotate(buf []float32, v int) (r [3]float32) {
	m.read(PropRotate, buf, v, r[:])
	return r
}

// ReadScale returns the scale of vertex v. A missing scale attribute reads as 1.
func (m *PropertyMapper) ReadScale(buf []float32, v int) [3]float32 {
	s := [3]float32{1, 1, 1}
	m.read(PropScale, buf, v, s[:])
	return s
}

// ReadColor returns the color of vertex v. A missing color reads as white and
// a 3-component color reads with alpha 1.
func (m *PropertyMapper) ReadColor(buf []float32, v int) Color {
	c := [4]float32{1, 1, 1, 1}
	m.read(PropColor, buf, v, c[:])
	return Color{c[0], c[1], c[2], c[3]}
}

// ReadFrame returns the frame index and flags of vertex v.
func (m *PropertyMapper) ReadFrame(buf []float32, v int) (frame int, flags uint8) {
	var f [2]float32
	m.read(PropFrame, buf, v, f[:])
	return int(f[0]), uint8(f[1])
}

// ReadUV returns the texture coordinate pair of vertex v.
func (m *PropertyMapper) ReadUV(buf []float32, v int) (u, vv float32) {
	var uv [2]float32
	m.read(PropUV, buf, v, uv[:])
	return uv[0], uv[1]
}

// ReadPosition returns the static corner offset of vertex v.
func (m *PropertyMapper) ReadPosition(buf []float32, v int) (x, y float32) {
	var p [2]float32
	m.read(PropPosition, buf, v, p[:])
	return p[0], p[1]
}
