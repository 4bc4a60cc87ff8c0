package quadbatch

// Viewport shows a fixed-size window of a larger world grid through a
// PlayfieldMesh. The mesh only ever holds window-size quads; scrolling copies
// the newly visible part of the world into the window grid.
type Viewport struct {
	world  *TileGridMap
	window *TileGridMap
	mesh   *PlayfieldMesh

	col, row int

	// Blank is the frame shown where the window extends past the world.
	Blank int
}

// NewViewport creates a cols×rows window onto world positioned at (0, 0).
// The window grid takes the world's ambient mode.
func NewViewport(world *TileGridMap, cols, rows int, m *PropertyMapper, cfg MeshConfig) (*Viewport, error) {
	if cols <= 0 || rows <= 0 {
		return nil, configError("NewViewport", "size", "window must be at least 1x1, got %dx%d", cols, rows)
	}
	window := NewTileGridMap(cols, rows)
	if mode, comps := world.AmbientMode(); mode != AmbientNone {
		if err := window.SetAmbientMode(mode, comps); err != nil {
			return nil, err
		}
	}
	window.Copy(world, 0, 0)
	mesh, err := NewPlayfieldMesh(window, m, cfg)
	if err != nil {
		return nil, err
	}
	return &Viewport{world: world, window: window, mesh: mesh}, nil
}

// Mesh returns the window mesh.
func (v *Viewport) Mesh() *PlayfieldMesh { return v.mesh }

// World returns the world grid.
func (v *Viewport) World() *TileGridMap { return v.world }

// Position returns the world cell shown at the window's top-left.
func (v *Viewport) Position() (col, row int) { return v.col, v.row }

// ScrollTo shows the world starting at cell (col, row). When the world is at
// least as large as the window the position is clamped so the window stays
// inside it.
func (v *Viewport) ScrollTo(col, row int) {
	checkDestroyed(v.mesh.destroyed, "viewport", "ScrollTo")
	col = clampScroll(col, v.world.Width()-v.window.Width())
	row = clampScroll(row, v.world.Height()-v.window.Height())
	if col == v.col && row == v.row {
		return
	}
	v.col, v.row = col, row
	v.Refresh()
}

// ScrollBy moves the window by (dc, dr) cells.
func (v *Viewport) ScrollBy(dc, dr int) {
	v.ScrollTo(v.col+dc, v.row+dr)
}

// Refresh recopies the visible world area, picking up world edits.
func (v *Viewport) Refresh() {
	visible := Rect{X: -v.col, Y: -v.row, Width: v.world.Width(), Height: v.world.Height()}.
		Intersect(v.window.Bounds())
	if visible != v.window.Bounds() {
		v.mesh.Fill(0, 0, v.window.Width(), v.window.Height(), v.Blank, 0)
	}
	v.mesh.Copy(v.world, -v.col, -v.row)
}

// Destroy releases the window mesh. The world grid is left untouched.
func (v *Viewport) Destroy() { v.mesh.Destroy() }

func clampScroll(p, limit int) int {
	if limit < 0 {
		return p
	}
	return min(max(p, 0), limit)
}
