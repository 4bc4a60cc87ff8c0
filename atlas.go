package quadbatch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes a sub-rectangle within an atlas page.
type TextureRegion struct {
	Page      uint16 // atlas page index
	X, Y      uint16 // top-left corner of the rect within the page
	Width     uint16 // sprite width (the page rect is Height wide when Rotated)
	Height    uint16 // sprite height
	OriginalW uint16 // untrimmed sprite width as authored
	OriginalH uint16 // untrimmed sprite height as authored
	OffsetX   int16  // trim offset from TexturePacker
	OffsetY   int16
	Rotated   bool // stored 90 degrees clockwise in the page
}

// Atlas holds atlas pages and their named regions. Frames are numbered in
// sorted name order so the numbering is stable for a given atlas file. Atlas
// implements UVTable with coordinates normalized to the page size.
type Atlas struct {
	// Pages contains the page images indexed by page number. May be nil for
	// atlases used only to compute UVs.
	Pages []*ebiten.Image

	names     []string
	regions   []TextureRegion
	byName    map[string]int
	pageSizes []Vec2
	uvs       [][8]float32
}

// Frame returns the frame index of the named region.
func (a *Atlas) Frame(name string) (int, bool) {
	i, ok := a.byName[name]
	return i, ok
}

// MustFrame is like Frame but logs a warning and returns -1 when missing, so
// expansion falls back to placeholder UVs.
func (a *Atlas) MustFrame(name string) int {
	if i, ok := a.byName[name]; ok {
		return i
	}
	Logger().Warn("quadbatch: atlas region not found", slog.String("name", name))
	return -1
}

// Region returns the region of frame i.
func (a *Atlas) Region(i int) (TextureRegion, bool) {
	if i < 0 || i >= len(a.regions) {
		return TextureRegion{}, false
	}
	return a.regions[i], true
}

// Names returns region names in frame order.
func (a *Atlas) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Len returns the number of frames.
func (a *Atlas) Len() int { return len(a.regions) }

// PageSize returns the pixel size of page p.
func (a *Atlas) PageSize(p int) Vec2 {
	if p < 0 || p >= len(a.pageSizes) {
		return Vec2{}
	}
	return a.pageSizes[p]
}

// FrameUVs implements UVTable.
func (a *Atlas) FrameUVs(frame int) ([8]float32, bool) {
	if frame < 0 || frame >= len(a.uvs) {
		return [8]float32{}, false
	}
	return a.uvs[frame], true
}

// regionUVs returns normalized corners TL, TR, BR, BL of r on a page of the
// given size. Rotated regions occupy a Height×Width rect turned clockwise, so
// the sprite's top-left lands on the rect's top-right.
func regionUVs(r TextureRegion, page Vec2) [8]float32 {
	if page.X == 0 || page.Y == 0 {
		return [8]float32{}
	}
	x0 := float32(r.X) / page.X
	y0 := float32(r.Y) / page.Y
	if r.Rotated {
		x1 := float32(int(r.X)+int(r.Height)) / page.X
		y1 := float32(int(r.Y)+int(r.Width)) / page.Y
		return [8]float32{x1, y0, x1, y1, x0, y1, x0, y0}
	}
	x1 := float32(int(r.X)+int(r.Width)) / page.X
	y1 := float32(int(r.Y)+int(r.Height)) / page.Y
	return [8]float32{x0, y0, x1, y0, x1, y1, x0, y1}
}

// LoadAtlas parses TexturePacker JSON data and associates the given page
// images. Supports both the hash format (single "frames" object) and the
// array format ("textures" array with per-page frame lists). Page sizes come
// from the JSON "size" entries, falling back to the page image bounds.
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     struct {
			Size jsonSize `json:"size"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("quadbatch: failed to parse atlas JSON: %w", err)
	}

	b := atlasBuilder{regions: make(map[string]TextureRegion)}
	switch {
	case probe.Textures != nil:
		if err := b.parseArrayFormat(probe.Textures); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := b.parseHashFrames(probe.Frames, 0); err != nil {
			return nil, err
		}
		b.sizes = append(b.sizes, probe.Meta.Size)
	default:
		return nil, fmt.Errorf("quadbatch: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return b.build(pages)
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Size   jsonSize             `json:"size"`
	Frames map[string]jsonFrame `json:"frames"`
}

type atlasBuilder struct {
	regions map[string]TextureRegion
	sizes   []jsonSize
}

func (b *atlasBuilder) parseHashFrames(raw json.RawMessage, page uint16) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("quadbatch: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		b.regions[name] = frameToRegion(f, page)
	}
	return nil
}

func (b *atlasBuilder) parseArrayFormat(raw json.RawMessage) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("quadbatch: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			b.regions[name] = frameToRegion(f, uint16(i))
		}
		b.sizes = append(b.sizes, tex.Size)
	}
	return nil
}

func (b *atlasBuilder) build(pages []*ebiten.Image) (*Atlas, error) {
	a := &Atlas{
		Pages:  pages,
		byName: make(map[string]int, len(b.regions)),
	}
	n := max(len(b.sizes), len(pages))
	a.pageSizes = make([]Vec2, n)
	for p := 0; p < n; p++ {
		if p < len(b.sizes) && b.sizes[p].W > 0 && b.sizes[p].H > 0 {
			a.pageSizes[p] = Vec2{float32(b.sizes[p].W), float32(b.sizes[p].H)}
		} else if p < len(pages) && pages[p] != nil {
			bounds := pages[p].Bounds()
			a.pageSizes[p] = Vec2{float32(bounds.Dx()), float32(bounds.Dy())}
		}
	}

	for name := range b.regions {
		a.names = append(a.names, name)
	}
	sort.Strings(a.names)
	a.regions = make([]TextureRegion, len(a.names))
	a.uvs = make([][8]float32, len(a.names))
	for i, name := range a.names {
		r := b.regions[name]
		if int(r.Page) >= len(a.pageSizes) || a.pageSizes[r.Page] == (Vec2{}) {
			return nil, fmt.Errorf("quadbatch: atlas region %q: page %d has no size", name, r.Page)
		}
		a.byName[name] = i
		a.regions[i] = r
		a.uvs[i] = regionUVs(r, a.pageSizes[r.Page])
	}
	return a, nil
}

func frameToRegion(f jsonFrame, page uint16) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}

// TileSheet is a UVTable for a regular grid of equally sized frames, numbered
// row-major from the top-left. It is what a tiled-mode shader computes on the
// GPU, available on the CPU for renderers without such a shader.
type TileSheet struct {
	Columns        int
	TileW, TileH   float32
	SheetW, SheetH float32
}

// FrameUVs implements UVTable.
func (s TileSheet) FrameUVs(frame int) ([8]float32, bool) {
	if frame < 0 || s.Columns <= 0 || s.TileW <= 0 || s.TileH <= 0 || s.SheetW <= 0 || s.SheetH <= 0 {
		return [8]float32{}, false
	}
	col, row := frame%s.Columns, frame/s.Columns
	if row >= int(s.SheetH/s.TileH) {
		return [8]float32{}, false
	}
	x0 := float32(col) * s.TileW / s.SheetW
	y0 := float32(row) * s.TileH / s.SheetH
	x1 := x0 + s.TileW/s.SheetW
	y1 := y0 + s.TileH/s.SheetH
	return [8]float32{x0, y0, x1, y0, x1, y1, x0, y1}, true
}
