package quadbatch

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for anchors, cell sizes and offsets.
type Vec2 struct {
	X, Y float32
}

// Rect is an integer cell rectangle [X, X+Width) × [Y, Y+Height).
type Rect struct {
	X, Y, Width, Height int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the overlap of r and other. The result is empty
// (zero Width or Height) when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(spanEnd(r.X, r.Width), spanEnd(other.X, other.Width))
	y1 := min(spanEnd(r.Y, r.Height), spanEnd(other.Y, other.Height))
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// spanEnd returns start+length, saturating at math.MaxInt. A non-positive
// length ends where it starts.
func spanEnd(start, length int) int {
	if length <= 0 {
		return start
	}
	if start > math.MaxInt-length {
		return math.MaxInt
	}
	return start + length
}

// Cell flag bits. Bits 2-7 are reserved and preserved as-is.
const (
	FlipX uint8 = 1 << 0 // mirror the frame horizontally
	FlipY uint8 = 1 << 1 // mirror the frame vertically
)

// Corner indices of a quad, in the fixed vertex order used by every buffer.
const (
	CornerTopLeft     = 0
	CornerTopRight    = 1
	CornerBottomRight = 2
	CornerBottomLeft  = 3
)

// VerticesPerQuad is the number of vertex records one entity expands into.
const VerticesPerQuad = 4
