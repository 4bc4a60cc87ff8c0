package quadbatch

import (
	"math"
	"time"
)

// AnimFrame is one step of a tile animation.
type AnimFrame struct {
	Frame    int
	Duration int // milliseconds
}

// gridRecords presents grid cells as expansion records. Record returns a
// pointer to a scratch record that is only valid until the next call.
type gridRecords struct {
	p       *PlayfieldMesh
	scratch Record
}

func (r *gridRecords) Len() int { return r.p.width * r.p.height }

func (r *gridRecords) Record(i int) *Record {
	p := r.p
	col, row := i%p.width, i/p.width
	rec := &r.scratch
	*rec = DefaultRecord()
	rec.Translate = p.cfg.cellPosition(col, row)
	rec.Frame = p.displayFrame(int(p.grid.cells[i]))
	rec.Flags = p.grid.flags[i]
	if p.grid.ambientMode == AmbientChar {
		rec.Color = p.grid.colorAt(i)
	}
	return rec
}

func (r *gridRecords) CornerColors(i int) ([4]Color, bool) {
	g := r.p.grid
	if g.ambientMode != AmbientVertex {
		return [4]Color{}, false
	}
	return g.cornerColors(i), true
}

// PlayfieldMesh binds a TileGridMap to a quad buffer: one quad per cell, laid
// out row-major from the anchor with row 0 on top. Every edit made through the
// mesh or directly on the grid re-expands only the touched cells and marks the
// buffer dirty.
type PlayfieldMesh struct {
	quadMesh
	grid          *TileGridMap
	width, height int
	records       *gridRecords
	unbind        func()

	anims       map[int][]AnimFrame
	animElapsed float64      // milliseconds
	animShown   map[int]int  // base frame -> frame currently displayed
	animCells   map[int]bool // cell indices whose base frame is animated
}

// NewPlayfieldMesh builds a mesh over grid. The grid's dimensions become the
// mesh's fixed quad count; the grid must not be resized while bound. Several
// meshes may share one grid.
func NewPlayfieldMesh(grid *TileGridMap, m *PropertyMapper, cfg MeshConfig) (*PlayfieldMesh, error) {
	p := &PlayfieldMesh{
		grid:   grid,
		width:  grid.Width(),
		height: grid.Height(),
	}
	p.records = &gridRecords{p: p}
	if err := p.init("playfield", grid.Len(), m, p.records, cfg); err != nil {
		return nil, err
	}
	for row := 0; row < p.height; row++ {
		for col := 0; col < p.width; col++ {
			p.writePosition(row*p.width+col, cfg.cellPosition(col, row))
		}
	}
	if err := p.exp.UpdateAttributeData(); err != nil {
		return nil, err
	}
	p.unbind = grid.OnChange(p.onGridChange)
	return p, nil
}

// Grid returns the bound grid.
func (p *PlayfieldMesh) Grid() *TileGridMap { return p.grid }

// CellQuad returns the quad index of cell (x, y), or -1 when out of range.
func (p *PlayfieldMesh) CellQuad(x, y int) int {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return -1
	}
	return y*p.width + x
}

// onGridChange re-expands the touched rectangle one row span at a time.
func (p *PlayfieldMesh) onGridChange(area Rect) {
	if p.destroyed {
		return
	}
	area = area.Intersect(Rect{Width: p.width, Height: p.height})
	if area.Empty() {
		return
	}
	var start time.Time
	if globalDebug {
		start = time.Now()
	}
	for row := area.Y; row < area.Y+area.Height; row++ {
		lo := row*p.width + area.X
		if p.anims != nil {
			for i := lo; i < lo+area.Width; i++ {
				p.trackAnimated(i)
			}
		}
		if err := p.exp.ExpandRange(lo, lo+area.Width); err != nil {
			panic(err)
		}
	}
	p.markDirty()
	if area.Width*area.Height > 1 {
		p.stats.BulkEdits++
		if globalDebug {
			p.stats.LastBulkTime = time.Since(start)
			debugLogPass(p.kind, "expand", area, area.Width*area.Height, p.stats.LastBulkTime)
		}
	}
}

// SetCell sets the frame and flags of cell (x, y).
func (p *PlayfieldMesh) SetCell(x, y, frame int, flags uint8) {
	checkDestroyed(p.destroyed, p.kind, "SetCell")
	p.grid.SetCell(x, y, frame, flags)
}

// SetFrame changes the frame of cell (x, y), keeping its flags.
func (p *PlayfieldMesh) SetFrame(x, y, frame int) {
	checkDestroyed(p.destroyed, p.kind, "SetFrame")
	if _, flags, ok := p.grid.Cell(x, y); ok {
		p.grid.SetCell(x, y, frame, flags)
	}
}

// SetFlags changes the flags of cell (x, y), keeping its frame.
func (p *PlayfieldMesh) SetFlags(x, y int, flags uint8) {
	checkDestroyed(p.destroyed, p.kind, "SetFlags")
	if frame, _, ok := p.grid.Cell(x, y); ok {
		p.grid.SetCell(x, y, frame, flags)
	}
}

// SetColor sets the ambient color of cell (x, y). The grid must have an
// ambient mode; otherwise a ConfigurationError is returned.
func (p *PlayfieldMesh) SetColor(x, y int, c Color) error {
	checkDestroyed(p.destroyed, p.kind, "SetColor")
	if mode, _ := p.grid.AmbientMode(); mode == AmbientNone {
		return configError("SetColor", "color", "grid has no ambient color storage")
	}
	p.grid.SetAmbientColor(x, y, c)
	return nil
}

// SetCornerColor sets one corner's ambient color of cell (x, y).
func (p *PlayfieldMesh) SetCornerColor(x, y, corner int, c Color) error {
	checkDestroyed(p.destroyed, p.kind, "SetCornerColor")
	if mode, _ := p.grid.AmbientMode(); mode == AmbientNone {
		return configError("SetCornerColor", "color", "grid has no ambient color storage")
	}
	p.grid.SetAmbientCornerColor(x, y, corner, c)
	return nil
}

// Fill sets frame and flags over the clipped rectangle and returns the cells
// touched. Only those cells are re-expanded.
func (p *PlayfieldMesh) Fill(x, y, w, h, frame int, flags uint8) Rect {
	checkDestroyed(p.destroyed, p.kind, "Fill")
	area := p.grid.Fill(x, y, w, h, frame, flags)
	if area.Empty() {
		debugWarnNoop(p.kind, "fill", Rect{X: x, Y: y, Width: w, Height: h})
	}
	return area
}

// FillColor sets the ambient color over the clipped rectangle.
func (p *PlayfieldMesh) FillColor(x, y, w, h int, c Color) (Rect, error) {
	checkDestroyed(p.destroyed, p.kind, "FillColor")
	if mode, _ := p.grid.AmbientMode(); mode == AmbientNone {
		return Rect{}, configError("FillColor", "color", "grid has no ambient color storage")
	}
	return p.grid.FillAmbient(x, y, w, h, c), nil
}

// Copy copies src into the bound grid at (dx, dy); see TileGridMap.Copy.
func (p *PlayfieldMesh) Copy(src *TileGridMap, dx, dy int) Rect {
	checkDestroyed(p.destroyed, p.kind, "Copy")
	area := p.grid.Copy(src, dx, dy)
	if area.Empty() {
		debugWarnNoop(p.kind, "copy", Rect{X: dx, Y: dy, Width: src.Width(), Height: src.Height()})
	}
	return area
}

// Refresh re-expands every cell. Use it after writing to Grid().Frames()
// directly, which bypasses change notification.
func (p *PlayfieldMesh) Refresh() error {
	checkDestroyed(p.destroyed, p.kind, "Refresh")
	if err := p.exp.UpdateAttributeData(); err != nil {
		return err
	}
	p.markDirty()
	return nil
}

// Destroy unbinds the grid and releases the buffers. Further edits panic.
func (p *PlayfieldMesh) Destroy() {
	if p.destroyed {
		return
	}
	p.unbind()
	p.release()
}

// --- Tile animation ---

// SetAnimations sets frame animations keyed by base frame. Cells whose stored
// frame is a key display the animation's current frame instead.
func (p *PlayfieldMesh) SetAnimations(anims map[int][]AnimFrame) {
	checkDestroyed(p.destroyed, p.kind, "SetAnimations")
	p.anims = anims
	p.animShown = make(map[int]int, len(anims))
	p.animCells = make(map[int]bool)
	for i := 0; i < p.n; i++ {
		p.trackAnimated(i)
	}
	for base := range anims {
		p.animShown[base] = p.currentAnimFrame(base)
	}
	if err := p.exp.UpdateAttributeData(); err != nil {
		panic(err)
	}
	p.markDirty()
}

func (p *PlayfieldMesh) trackAnimated(i int) {
	if _, ok := p.anims[int(p.grid.cells[i])]; ok {
		p.animCells[i] = true
	} else {
		delete(p.animCells, i)
	}
}

// displayFrame maps a stored frame to the frame shown this tick.
func (p *PlayfieldMesh) displayFrame(base int) int {
	if p.anims == nil {
		return base
	}
	if f, ok := p.animShown[base]; ok {
		return f
	}
	return base
}

func (p *PlayfieldMesh) currentAnimFrame(base int) int {
	frames := p.anims[base]
	if len(frames) == 0 {
		return base
	}
	total := 0
	for _, f := range frames {
		total += f.Duration
	}
	if total <= 0 {
		return frames[0].Frame
	}
	elapsed := int(math.Mod(p.animElapsed, float64(total)))
	acc := 0
	for _, f := range frames {
		acc += f.Duration
		if elapsed < acc {
			return f.Frame
		}
	}
	return frames[0].Frame
}

// Update advances tile animations by dt seconds and re-expands only the
// cells whose displayed frame changed.
func (p *PlayfieldMesh) Update(dt float64) {
	checkDestroyed(p.destroyed, p.kind, "Update")
	if len(p.anims) == 0 {
		return
	}
	if dt <= 0 {
		return
	}
	p.animElapsed += dt * 1000

	changed := make(map[int]bool)
	for base := range p.anims {
		f := p.currentAnimFrame(base)
		if p.animShown[base] != f {
			p.animShown[base] = f
			changed[base] = true
		}
	}
	if len(changed) == 0 {
		return
	}
	for i := range p.animCells {
		if changed[int(p.grid.cells[i])] {
			if err := p.exp.Expand(i); err != nil {
				panic(err)
			}
		}
	}
	p.markDirty()
}
