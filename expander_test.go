package quadbatch

import (
	"errors"
	"testing"
)

// uvTable is a fixed frame -> corners table for atlas tests.
type uvTable map[int][8]float32

func (u uvTable) FrameUVs(frame int) ([8]float32, bool) {
	uv, ok := u[frame]
	return uv, ok
}

var testUVs = uvTable{
	3: {0.1, 0.2, 0.3, 0.2, 0.3, 0.4, 0.1, 0.4},
	9: {0.5, 0.5, 0.75, 0.5, 0.75, 1, 0.5, 1},
}

func TestQuadExpanderNotBound(t *testing.T) {
	m := newMapper(t, transformLayout(t))
	e, err := NewQuadExpander(m, NewRecords(2), UVTiled, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Expand(0); !errors.Is(err, ErrBufferNotBound) {
		t.Errorf("Expand err = %v, want ErrBufferNotBound", err)
	}
	if err := e.UpdateAttributeData(); !errors.Is(err, ErrBufferNotBound) {
		t.Errorf("UpdateAttributeData err = %v, want ErrBufferNotBound", err)
	}
	if err := e.ExpandRange(0, 2); !errors.Is(err, ErrBufferNotBound) {
		t.Errorf("ExpandRange err = %v, want ErrBufferNotBound", err)
	}
}

func TestQuadExpanderModeRequirements(t *testing.T) {
	noFrame := newMapper(t, MustVariableLayout(Attribute{Name: "translate", Components: 3}))
	if _, err := NewQuadExpander(noFrame, NewRecords(1), UVTiled, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("tiled without frame: err = %v", err)
	}
	noUV := newMapper(t, transformLayout(t))
	if _, err := NewQuadExpander(noUV, NewRecords(1), UVAtlas, testUVs); !errors.Is(err, ErrConfiguration) {
		t.Errorf("atlas without uv: err = %v", err)
	}
	withUV := newMapper(t, fullLayout(t, true))
	if _, err := NewQuadExpander(withUV, NewRecords(1), UVAtlas, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("atlas without table: err = %v", err)
	}
	if _, err := NewQuadExpander(withUV, NewRecords(1), UVMode(9), nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown mode: err = %v", err)
	}
}

func TestQuadExpanderTiledBroadcast(t *testing.T) {
	m := newMapper(t, transformLayout(t))
	recs := NewRecords(3)
	recs[1] = Record{
		Translate: [3]float32{10, 20, 1},
		Rotate:    [3]float32{0, 0, 1.5},
		Scale:     [3]float32{2, 2, 1},
		Color:     Color{1, 0.5, 0.25, 0.8},
		Frame:     11,
		Flags:     FlipX | FlipY,
	}
	e, err := NewQuadExpander(m, recs, UVTiled, nil)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, m.BufferLen(3))
	e.BindAttributeBuffer(buf)
	if err := e.Expand(1); err != nil {
		t.Fatal(err)
	}

	for c := 0; c < VerticesPerQuad; c++ {
		v := 4 + c
		if got := m.ReadTranslate(buf, v); got != recs[1].Translate {
			t.Errorf("corner %d translate = %v", c, got)
		}
		if got := m.ReadRotate(buf, v); got != recs[1].Rotate {
			t.Errorf("corner %d rotate = %v", c, got)
		}
		if got := m.ReadScale(buf, v); got != recs[1].Scale {
			t.Errorf("corner %d scale = %v", c, got)
		}
		if got := m.ReadColor(buf, v); got != recs[1].Color {
			t.Errorf("corner %d color = %v", c, got)
		}
		if f, fl := m.ReadFrame(buf, v); f != 11 || fl != FlipX|FlipY {
			t.Errorf("corner %d frame = %d flags %d, want 11 and 3", c, f, fl)
		}
	}

	// Only quad 1 was expanded.
	for v := 0; v < 4; v++ {
		if f, _ := m.ReadFrame(buf, v); f != 0 {
			t.Errorf("quad 0 vertex %d touched", v)
		}
		if got := m.ReadScale(buf, v); got != ([3]float32{}) {
			t.Errorf("quad 0 vertex %d scale = %v, want untouched zero", v, got)
		}
	}
	if e.Stats().Quads != 1 {
		t.Errorf("Stats.Quads = %d, want 1", e.Stats().Quads)
	}
}

func TestQuadExpanderAtlasCornerOrder(t *testing.T) {
	m := newMapper(t, fullLayout(t, true))
	recs := NewRecords(2)
	recs[0].Frame = 3
	recs[1].Frame = 9
	e, err := NewQuadExpander(m, recs, UVAtlas, testUVs)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, m.BufferLen(2))
	e.BindAttributeBuffer(buf)
	if err := e.UpdateAttributeData(); err != nil {
		t.Fatal(err)
	}

	for i, r := range recs {
		want := testUVs[r.Frame]
		for c := 0; c < VerticesPerQuad; c++ {
			u, v := m.ReadUV(buf, i*4+c)
			if u != want[c*2] || v != want[c*2+1] {
				t.Errorf("quad %d corner %d uv = (%v,%v), want (%v,%v)", i, c, u, v, want[c*2], want[c*2+1])
			}
		}
	}
	if e.Stats().FullPasses != 1 || e.Stats().Quads != 2 {
		t.Errorf("Stats = %+v", e.Stats())
	}
}

func TestQuadExpanderAtlasFlips(t *testing.T) {
	m := newMapper(t, fullLayout(t, true))
	uv := testUVs[3]
	tl := [2]float32{uv[0], uv[1]}
	tr := [2]float32{uv[2], uv[3]}
	br := [2]float32{uv[4], uv[5]}
	bl := [2]float32{uv[6], uv[7]}

	tests := []struct {
		name  string
		flags uint8
		want  [4][2]float32
	}{
		{"none", 0, [4][2]float32{tl, tr, br, bl}},
		{"flip x", FlipX, [4][2]float32{tr, tl, bl, br}},
		{"flip y", FlipY, [4][2]float32{bl, br, tr, tl}},
		{"flip xy", FlipX | FlipY, [4][2]float32{br, bl, tl, tr}},
		{"reserved bits ignored", FlipX | 0x80, [4][2]float32{tr, tl, bl, br}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := NewRecords(1)
			recs[0].Frame = 3
			recs[0].Flags = tt.flags
			e, err := NewQuadExpander(m, recs, UVAtlas, testUVs)
			if err != nil {
				t.Fatal(err)
			}
			buf := make([]float32, m.BufferLen(1))
			e.BindAttributeBuffer(buf)
			if err := e.Expand(0); err != nil {
				t.Fatal(err)
			}
			for c := 0; c < VerticesPerQuad; c++ {
				u, v := m.ReadUV(buf, c)
				if u != tt.want[c][0] || v != tt.want[c][1] {
					t.Errorf("corner %d = (%v,%v), want %v", c, u, v, tt.want[c])
				}
			}
			if _, fl := m.ReadFrame(buf, 0); fl != tt.flags {
				t.Errorf("flags = %d, want %d", fl, tt.flags)
			}
		})
	}
}

func TestQuadExpanderAtlasMissingFrame(t *testing.T) {
	m := newMapper(t, fullLayout(t, true))
	recs := NewRecords(1)
	recs[0].Frame = 1234
	e, err := NewQuadExpander(m, recs, UVAtlas, testUVs)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, m.BufferLen(1))
	for i := range buf {
		buf[i] = -1
	}
	e.BindAttributeBuffer(buf)
	if err := e.Expand(0); err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 4; c++ {
		if u, v := m.ReadUV(buf, c); u != 0 || v != 0 {
			t.Errorf("corner %d uv = (%v,%v), want placeholder zero", c, u, v)
		}
	}
}

type cornerRecords struct {
	Records
	colors [4]Color
}

func (c cornerRecords) CornerColors(int) ([4]Color, bool) { return c.colors, true }

func TestQuadExpanderCornerColors(t *testing.T) {
	m := newMapper(t, transformLayout(t))
	src := cornerRecords{
		Records: NewRecords(1),
		colors:  [4]Color{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}, {1, 1, 0, 1}},
	}
	e, err := NewQuadExpander(m, src, UVTiled, nil)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float32, m.BufferLen(1))
	e.BindAttributeBuffer(buf)
	if err := e.Expand(0); err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 4; c++ {
		if got := m.ReadColor(buf, c); got != src.colors[c] {
			t.Errorf("corner %d color = %v, want %v", c, got, src.colors[c])
		}
	}
}

func TestQuadExpanderRebind(t *testing.T) {
	m := newMapper(t, transformLayout(t))
	recs := NewRecords(1)
	recs[0].Frame = 4
	e, _ := NewQuadExpander(m, recs, UVTiled, nil)

	a := make([]float32, m.BufferLen(1))
	b := make([]float32, m.BufferLen(1))
	e.BindAttributeBuffer(a)
	e.BindAttributeBuffer(b)
	if err := e.Expand(0); err != nil {
		t.Fatal(err)
	}
	if f, _ := m.ReadFrame(a, 0); f != 0 {
		t.Error("old binding written")
	}
	if f, _ := m.ReadFrame(b, 0); f != 4 {
		t.Error("new binding not written")
	}

	e.ResetStats()
	if e.Stats() != (ExpandStats{}) {
		t.Errorf("Stats after reset = %+v", e.Stats())
	}
}

func TestUVModeString(t *testing.T) {
	if UVTiled.String() != "tiled" || UVAtlas.String() != "atlas" || UVMode(7).String() != "unknown" {
		t.Error("UVMode.String")
	}
}
