package quadbatch

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float32 fields of one sprite record at once.
// Create one via TweenPosition, TweenScale, TweenColor, TweenAlpha or
// TweenRotation and call Update(dt) each frame; every step writes the values
// into the record and re-expands that sprite's quad. If the mesh is
// destroyed, the group stops immediately.
//
// There is no global animation manager; callers (or the tween behavior)
// drive Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float32
	mesh   *SpriteMesh
	index  int
	Done   bool
}

// Update advances all tweens by dt seconds.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.mesh.Destroyed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = val
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.mesh.Refresh(g.index)
}

// Reset rewinds every tween to its start.
func (g *TweenGroup) Reset() {
	for i := 0; i < g.count; i++ {
		g.tweens[i].Reset()
	}
	g.Done = false
}

func newTweenGroup(m *SpriteMesh, i int) (*TweenGroup, *Record) {
	return &TweenGroup{mesh: m, index: i}, m.Record(i)
}

func (g *TweenGroup) add(field *float32, to, duration float32, fn ease.TweenFunc) {
	g.tweens[g.count] = gween.New(*field, to, duration, fn)
	g.fields[g.count] = field
	g.count++
}

// TweenPosition animates the x and y translate of sprite i.
func TweenPosition(m *SpriteMesh, i int, toX, toY, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, r := newTweenGroup(m, i)
	g.add(&r.Translate[0], toX, duration, fn)
	g.add(&r.Translate[1], toY, duration, fn)
	return g
}

// TweenScale animates the x and y scale of sprite i.
func TweenScale(m *SpriteMesh, i int, toSX, toSY, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, r := newTweenGroup(m, i)
	g.add(&r.Scale[0], toSX, duration, fn)
	g.add(&r.Scale[1], toSY, duration, fn)
	return g
}

// TweenColor animates all four color components of sprite i.
func TweenColor(m *SpriteMesh, i int, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, r := newTweenGroup(m, i)
	g.add(&r.Color.R, to.R, duration, fn)
	g.add(&r.Color.G, to.G, duration, fn)
	g.add(&r.Color.B, to.B, duration, fn)
	g.add(&r.Color.A, to.A, duration, fn)
	return g
}

// TweenAlpha animates the color alpha of sprite i.
func TweenAlpha(m *SpriteMesh, i int, to, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, r := newTweenGroup(m, i)
	g.add(&r.Color.A, to, duration, fn)
	return g
}

// TweenRotation animates the in-plane rotation of sprite i.
func TweenRotation(m *SpriteMesh, i int, to, duration float32, fn ease.TweenFunc) *TweenGroup {
	g, r := newTweenGroup(m, i)
	g.add(&r.Rotate[2], to, duration, fn)
	return g
}
