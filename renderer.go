package quadbatch

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// QuadBuffer is what a renderer needs from a mesh. PlayfieldMesh and
// SpriteMesh implement it.
type QuadBuffer interface {
	Len() int
	Mapper() *PropertyMapper
	Config() MeshConfig
	StaticBuffer() []float32
	Dirty() bool
	Consume() []float32
	Destroyed() bool
}

// EbitenRenderer draws quad meshes with ebiten's DrawTriangles. It does on the
// CPU what a batched-quad vertex shader does: each corner is offset from the
// translate by its static position, scaled, rotated about z and tinted.
// World Y grows upward; screen Y is flipped around Origin.
//
// Vertices are rebuilt only when a mesh reports dirty. Draw must be called
// from the render phase, since consuming a buffer races with edits.
type EbitenRenderer struct {
	// Image is the texture sampled by every quad.
	Image *ebiten.Image
	// SheetW and SheetH convert normalized UVs to texel coordinates. Zero
	// means the image bounds.
	SheetW, SheetH float32
	// Origin is the screen position of world (0, 0).
	Origin Vec2

	cache map[QuadBuffer]*vertexCache
}

type vertexCache struct {
	verts []ebiten.Vertex
	inds  []uint16
}

// NewEbitenRenderer returns a renderer sampling img.
func NewEbitenRenderer(img *ebiten.Image) *EbitenRenderer {
	return &EbitenRenderer{Image: img}
}

// Draw renders mesh onto dst. It is Prepare followed by Submit.
func (r *EbitenRenderer) Draw(dst *ebiten.Image, mesh QuadBuffer) {
	r.Prepare(mesh)
	r.Submit(dst, mesh)
}

// Prepare rebuilds the cached vertices of mesh if it is dirty or has not been
// seen before. Destroyed meshes have their cache dropped. Prepare is the
// consume step, so it may run on a render worker while the update side is
// parked.
func (r *EbitenRenderer) Prepare(mesh QuadBuffer) {
	if mesh.Destroyed() {
		r.Forget(mesh)
		return
	}
	if r.cache == nil {
		r.cache = make(map[QuadBuffer]*vertexCache)
	}
	vc, ok := r.cache[mesh]
	if !ok {
		vc = &vertexCache{
			verts: make([]ebiten.Vertex, mesh.Len()*VerticesPerQuad),
			inds:  QuadIndices16(mesh.Len()),
		}
		r.cache[mesh] = vc
		r.rebuild(vc, mesh)
	} else if mesh.Dirty() {
		r.rebuild(vc, mesh)
	}
}

// Submit draws the vertices last prepared for mesh, in chunks a 16-bit index
// buffer can address.
func (r *EbitenRenderer) Submit(dst *ebiten.Image, mesh QuadBuffer) {
	vc, ok := r.cache[mesh]
	if !ok || r.Image == nil || len(vc.verts) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	quads := len(vc.verts) / VerticesPerQuad
	for lo := 0; lo < quads; lo += maxQuadsPerDraw {
		n := min(quads-lo, maxQuadsPerDraw)
		verts := vc.verts[lo*VerticesPerQuad : (lo+n)*VerticesPerQuad]
		dst.DrawTriangles(verts, vc.inds[:n*6], r.Image, &op)
	}
}

// Forget drops the cached vertices of mesh.
func (r *EbitenRenderer) Forget(mesh QuadBuffer) {
	delete(r.cache, mesh)
}

// Vertices returns the vertices last built for mesh, or nil.
func (r *EbitenRenderer) Vertices(mesh QuadBuffer) []ebiten.Vertex {
	if vc, ok := r.cache[mesh]; ok {
		return vc.verts
	}
	return nil
}

func (r *EbitenRenderer) sheetSize() (float32, float32) {
	w, h := r.SheetW, r.SheetH
	if (w == 0 || h == 0) && r.Image != nil {
		b := r.Image.Bounds()
		if w == 0 {
			w = float32(b.Dx())
		}
		if h == 0 {
			h = float32(b.Dy())
		}
	}
	return w, h
}

func (r *EbitenRenderer) rebuild(vc *vertexCache, mesh QuadBuffer) {
	buf := mesh.Consume()
	m := mesh.Mapper()
	cfg := mesh.Config()
	static := mesh.StaticBuffer()
	sw, sh := r.sheetSize()
	atlas := cfg.UVMode == UVAtlas && m.Has(PropUV)

	for i := 0; i < mesh.Len(); i++ {
		base := i * VerticesPerQuad
		// Transform is broadcast, so corner 0 speaks for the quad.
		t := m.ReadTranslate(buf, base)
		s := m.ReadScale(buf, base)
		rot := m.ReadRotate(buf, base)[2]
		sin, cos := math.Sincos(float64(rot))

		var uv [8]float32
		if !atlas && cfg.UVTable != nil {
			frame, flags := m.ReadFrame(buf, base)
			if src, ok := cfg.UVTable.FrameUVs(frame); ok {
				order := cornerOrder[flags&(FlipX|FlipY)]
				for c := 0; c < VerticesPerQuad; c++ {
					uv[c*2], uv[c*2+1] = src[order[c]*2], src[order[c]*2+1]
				}
			}
		}

		for c := 0; c < VerticesPerQuad; c++ {
			v := base + c
			var ox, oy float32
			if m.Has(PropPosition) {
				ox, oy = m.ReadPosition(static, v)
			} else {
				q := quadrants[c]
				ox = (q[0] - cfg.Pivot.X) * cfg.CellWidth
				oy = -(q[1] - cfg.Pivot.Y) * cfg.CellHeight
			}
			x := float64(ox * s[0])
			y := float64(oy * s[1])
			wx := t[0] + float32(x*cos-y*sin)
			wy := t[1] + float32(x*sin+y*cos)

			u, vv := uv[c*2], uv[c*2+1]
			if atlas {
				u, vv = m.ReadUV(buf, v)
			}

			col := m.ReadColor(buf, v)
			vc.verts[v] = ebiten.Vertex{
				DstX:   r.Origin.X + wx,
				DstY:   r.Origin.Y - wy,
				SrcX:   u * sw,
				SrcY:   vv * sh,
				ColorR: col.R * col.A,
				ColorG: col.G * col.A,
				ColorB: col.B * col.A,
				ColorA: col.A,
			}
		}
	}
}
