package quadbatch

import (
	"fmt"
	"math"
	"slices"
)

// AmbientMode selects how per-cell ambient colors are stored.
type AmbientMode uint8

const (
	AmbientNone   AmbientMode = iota // no ambient colors
	AmbientChar                      // one color per cell
	AmbientVertex                    // four colors per cell, one per corner
)

func (m AmbientMode) String() string {
	switch m {
	case AmbientNone:
		return "none"
	case AmbientChar:
		return "char"
	case AmbientVertex:
		return "vertex"
	default:
		return fmt.Sprintf("AmbientMode(%d)", uint8(m))
	}
}

// TileGridMap is a fixed-size grid of cells, each holding a frame index,
// flag bits and an optional ambient color. Cells are stored row-major.
//
// Bulk edits are clipped to the grid rather than rejected: a rectangle that
// lies partly or wholly outside the grid touches only the cells inside it.
type TileGridMap struct {
	width, height int
	cells         []int32
	flags         []uint8

	ambientMode  AmbientMode
	ambientComps int       // 3 or 4 when ambientMode != AmbientNone
	ambient      []float32 // len = cells * comps (x4 in vertex mode)

	listeners    []gridListener
	nextListener int
}

type gridListener struct {
	id int
	fn func(Rect)
}

// NewTileGridMap allocates a width×height grid with every frame and flag zero.
// Negative dimensions are treated as zero.
func NewTileGridMap(width, height int) *TileGridMap {
	width = max(width, 0)
	height = max(height, 0)
	return &TileGridMap{
		width:  width,
		height: height,
		cells:  make([]int32, width*height),
		flags:  make([]uint8, width*height),
	}
}

// Width returns the grid width in cells.
func (g *TileGridMap) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *TileGridMap) Height() int { return g.height }

// Len returns the number of cells.
func (g *TileGridMap) Len() int { return len(g.cells) }

// Index returns the row-major index of (x, y). The caller must ensure the
// coordinates are in range.
func (g *TileGridMap) Index(x, y int) int { return y*g.width + x }

// Bounds returns the grid rectangle.
func (g *TileGridMap) Bounds() Rect { return Rect{Width: g.width, Height: g.height} }

func (g *TileGridMap) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// OnChange registers fn to be called with the clipped rectangle of every
// edit and returns a func that unregisters it. Listeners run in the order
// they were added.
func (g *TileGridMap) OnChange(fn func(area Rect)) (remove func()) {
	if fn == nil {
		return func() {}
	}
	g.nextListener++
	id := g.nextListener
	g.listeners = append(g.listeners, gridListener{id: id, fn: fn})
	return func() {
		// Copy so a notify loop in progress keeps its own slice.
		g.listeners = slices.DeleteFunc(slices.Clone(g.listeners), func(l gridListener) bool {
			return l.id == id
		})
	}
}

// Bound reports whether any listener is registered.
func (g *TileGridMap) Bound() bool { return len(g.listeners) > 0 }

func (g *TileGridMap) notify(area Rect) {
	if area.Empty() {
		return
	}
	for _, l := range g.listeners {
		l.fn(area)
	}
}

// Cell returns the frame and flags at (x, y). ok is false out of range.
func (g *TileGridMap) Cell(x, y int) (frame int, flags uint8, ok bool) {
	if !g.inBounds(x, y) {
		return 0, 0, false
	}
	i := g.Index(x, y)
	return int(g.cells[i]), g.flags[i], true
}

// SetCell sets one cell. Out-of-range coordinates are ignored.
func (g *TileGridMap) SetCell(x, y, frame int, flags uint8) {
	if !g.inBounds(x, y) {
		return
	}
	i := g.Index(x, y)
	g.cells[i] = int32(frame)
	g.flags[i] = flags
	g.notify(Rect{X: x, Y: y, Width: 1, Height: 1})
}

// Fill sets frame and flags on every cell of [x, x+w) × [y, y+h) that lies
// inside the grid, and returns the rectangle actually touched.
func (g *TileGridMap) Fill(x, y, w, h, frame int, flags uint8) Rect {
	area := Rect{X: x, Y: y, Width: w, Height: h}.Intersect(g.Bounds())
	if area.Empty() {
		return area
	}
	f := int32(frame)
	for row := area.Y; row < area.Y+area.Height; row++ {
		lo := g.Index(area.X, row)
		hi := lo + area.Width
		for i := lo; i < hi; i++ {
			g.cells[i] = f
			g.flags[i] = flags
		}
	}
	g.notify(area)
	return area
}

// Copy copies src into g with src's origin placed at (dx, dy). Only the
// overlap of the placed source and g is written, so at offset (0, 0) the
// copied region is min(widths) × min(heights). Offsets may be negative, which
// selects a window of a larger source. Ambient colors are copied when both
// grids define them. Copy returns the destination rectangle touched.
func (g *TileGridMap) Copy(src *TileGridMap, dx, dy int) Rect {
	area := Rect{X: dx, Y: dy, Width: src.width, Height: src.height}.Intersect(g.Bounds())
	if area.Empty() {
		return area
	}
	withAmbient := g.ambientMode != AmbientNone && src.ambientMode != AmbientNone
	fastAmbient := withAmbient && g.ambientMode == src.ambientMode && g.ambientComps == src.ambientComps

	rows := make([]int, 0, area.Height)
	for row := area.Y; row < area.Y+area.Height; row++ {
		rows = append(rows, row)
	}
	// Copying a grid onto itself downward must walk rows bottom-up.
	if src == g && dy > 0 {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	for _, row := range rows {
		d := g.Index(area.X, row)
		s := src.Index(area.X-dx, row-dy)
		n := area.Width
		copy(g.cells[d:d+n], src.cells[s:s+n])
		copy(g.flags[d:d+n], src.flags[s:s+n])
		switch {
		case fastAmbient:
			per := g.ambientStride()
			copy(g.ambient[d*per:(d+n)*per], src.ambient[s*per:(s+n)*per])
		case withAmbient:
			for k := 0; k < n; k++ {
				g.setCornerColors(d+k, src.cornerColors(s+k))
			}
		}
	}
	g.notify(area)
	return area
}

// Frames returns the backing frame slice. Callers must not resize it.
func (g *TileGridMap) Frames() []int32 { return g.cells }

// Flags returns the backing flag slice. Callers must not resize it.
func (g *TileGridMap) Flags() []uint8 { return g.flags }

// --- Ambient color ---

// SetAmbientMode switches the ambient color storage. components must be 3
// (RGB) or 4 (RGBA) unless mode is AmbientNone. Existing colors are discarded
// and every cell starts white.
func (g *TileGridMap) SetAmbientMode(mode AmbientMode, components int) error {
	switch mode {
	case AmbientNone:
		g.ambientMode, g.ambientComps, g.ambient = AmbientNone, 0, nil
		g.notify(g.Bounds())
		return nil
	case AmbientChar, AmbientVertex:
	default:
		return configError("ambient", mode.String(), "unknown ambient mode")
	}
	if components != 3 && components != 4 {
		return configError("ambient", mode.String(), "color format must have 3 or 4 components, got %d", components)
	}
	g.ambientMode = mode
	g.ambientComps = components
	g.ambient = make([]float32, len(g.cells)*g.cornersPerCell()*components)
	for i := range g.ambient {
		g.ambient[i] = 1
	}
	g.notify(g.Bounds())
	return nil
}

// AmbientMode returns the ambient storage mode and component count.
func (g *TileGridMap) AmbientMode() (AmbientMode, int) { return g.ambientMode, g.ambientComps }

func (g *TileGridMap) cornersPerCell() int {
	if g.ambientMode == AmbientVertex {
		return 4
	}
	return 1
}

func (g *TileGridMap) ambientStride() int { return g.cornersPerCell() * g.ambientComps }

func (g *TileGridMap) colorAt(j int) Color {
	c := Color{A: 1}
	a := g.ambient[j*g.ambientComps:]
	c.R, c.G, c.B = a[0], a[1], a[2]
	if g.ambientComps == 4 {
		c.A = a[3]
	}
	return c
}

func (g *TileGridMap) putColorAt(j int, c Color) {
	a := g.ambient[j*g.ambientComps:]
	a[0], a[1], a[2] = c.R, c.G, c.B
	if g.ambientComps == 4 {
		a[3] = c.A
	}
}

func (g *TileGridMap) cornerColors(i int) [4]Color {
	var out [4]Color
	if g.ambientMode == AmbientVertex {
		for c := range out {
			out[c] = g.colorAt(i*4 + c)
		}
		return out
	}
	c := g.colorAt(i)
	return [4]Color{c, c, c, c}
}

func (g *TileGridMap) setCornerColors(i int, cs [4]Color) {
	if g.ambientMode == AmbientVertex {
		for c := range cs {
			g.putColorAt(i*4+c, cs[c])
		}
		return
	}
	g.putColorAt(i, cs[CornerTopLeft])
}

// SetAmbientColor sets the color of cell (x, y). In vertex mode every corner
// receives c. Ignored when out of range or when no ambient mode is set.
func (g *TileGridMap) SetAmbientColor(x, y int, c Color) {
	if g.ambientMode == AmbientNone || !g.inBounds(x, y) {
		return
	}
	g.setCornerColors(g.Index(x, y), [4]Color{c, c, c, c})
	g.notify(Rect{X: x, Y: y, Width: 1, Height: 1})
}

// SetAmbientCornerColor sets one corner of cell (x, y). Only meaningful in
// vertex mode; in char mode it sets the cell color.
func (g *TileGridMap) SetAmbientCornerColor(x, y, corner int, c Color) {
	if g.ambientMode == AmbientNone || !g.inBounds(x, y) || corner < 0 || corner >= VerticesPerQuad {
		return
	}
	i := g.Index(x, y)
	if g.ambientMode == AmbientVertex {
		g.putColorAt(i*4+corner, c)
	} else {
		g.putColorAt(i, c)
	}
	g.notify(Rect{X: x, Y: y, Width: 1, Height: 1})
}

// FillAmbient sets the color of every cell in the clipped rectangle.
func (g *TileGridMap) FillAmbient(x, y, w, h int, c Color) Rect {
	area := Rect{X: x, Y: y, Width: w, Height: h}.Intersect(g.Bounds())
	if g.ambientMode == AmbientNone || area.Empty() {
		return Rect{}
	}
	all := [4]Color{c, c, c, c}
	for row := area.Y; row < area.Y+area.Height; row++ {
		for col := area.X; col < area.X+area.Width; col++ {
			g.setCornerColors(g.Index(col, row), all)
		}
	}
	g.notify(area)
	return area
}

// AmbientColor returns the color of cell (x, y) (the top-left corner in
// vertex mode). ok is false out of range or without ambient colors.
func (g *TileGridMap) AmbientColor(x, y int) (Color, bool) {
	if g.ambientMode == AmbientNone || !g.inBounds(x, y) {
		return Color{}, false
	}
	return g.cornerColors(g.Index(x, y))[CornerTopLeft], true
}

// AmbientCornerColors returns the four corner colors of cell (x, y).
func (g *TileGridMap) AmbientCornerColors(x, y int) ([4]Color, bool) {
	if g.ambientMode == AmbientNone || !g.inBounds(x, y) {
		return [4]Color{}, false
	}
	return g.cornerColors(g.Index(x, y)), true
}

// Equal reports whether g and other have the same dimensions, cells, flags
// and ambient data. Colors are compared bit for bit.
func (g *TileGridMap) Equal(other *TileGridMap) bool {
	if g.width != other.width || g.height != other.height ||
		g.ambientMode != other.ambientMode || g.ambientComps != other.ambientComps ||
		len(g.ambient) != len(other.ambient) {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] || g.flags[i] != other.flags[i] {
			return false
		}
	}
	for i := range g.ambient {
		if math.Float32bits(g.ambient[i]) != math.Float32bits(other.ambient[i]) {
			return false
		}
	}
	return true
}
