package quadbatch

import (
	"errors"
	"testing"
)

func newViewport(t *testing.T, world *TileGridMap, cols, rows int) (*Viewport, *PropertyMapper) {
	t.Helper()
	m := newMapper(t, fullLayout(t, false))
	v, err := NewViewport(world, cols, rows, m, MeshConfig{CellWidth: 1, CellHeight: 1})
	if err != nil {
		t.Fatalf("NewViewport: %v", err)
	}
	return v, m
}

// windowFrames reads the frame of every window quad, row-major.
func windowFrames(v *Viewport, m *PropertyMapper) []int {
	mesh := v.Mesh()
	out := make([]int, mesh.Len())
	for i := range out {
		out[i], _ = m.ReadFrame(mesh.Buffer(), i*4)
	}
	return out
}

func TestViewportInitialWindow(t *testing.T) {
	v, m := newViewport(t, patterned(10, 8), 3, 2)
	want := []int{0, 1, 2, 100, 101, 102}
	got := windowFrames(v, m)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("quad %d frame = %d, want %d", i, got[i], want[i])
		}
	}
	if v.Mesh().Len() != 6 {
		t.Errorf("mesh Len = %d, want window size 6", v.Mesh().Len())
	}
}

func TestViewportScroll(t *testing.T) {
	v, m := newViewport(t, patterned(10, 8), 3, 2)

	v.ScrollTo(4, 3)
	if c, r := v.Position(); c != 4 || r != 3 {
		t.Fatalf("Position = (%d,%d)", c, r)
	}
	want := []int{304, 305, 306, 404, 405, 406}
	for i, f := range windowFrames(v, m) {
		if f != want[i] {
			t.Errorf("quad %d frame = %d, want %d", i, f, want[i])
		}
	}

	v.ScrollBy(100, 100)
	if c, r := v.Position(); c != 7 || r != 6 {
		t.Errorf("clamped Position = (%d,%d), want (7,6)", c, r)
	}
	v.ScrollBy(-100, -100)
	if c, r := v.Position(); c != 0 || r != 0 {
		t.Errorf("clamped Position = (%d,%d), want (0,0)", c, r)
	}
}

func TestViewportScrollNoChange(t *testing.T) {
	v, _ := newViewport(t, patterned(10, 8), 3, 2)
	v.Mesh().Consume()
	v.ScrollTo(0, 0)
	if v.Mesh().Dirty() {
		t.Error("dirty after no-op scroll")
	}
}

func TestViewportSmallWorldBlank(t *testing.T) {
	v, m := newViewport(t, patterned(2, 1), 3, 2)
	v.Blank = -1
	v.ScrollTo(1, 0)
	want := []int{1, -1, -1, -1, -1, -1}
	for i, f := range windowFrames(v, m) {
		if f != want[i] {
			t.Errorf("quad %d frame = %d, want %d", i, f, want[i])
		}
	}
}

func TestViewportRefreshPicksUpWorldEdits(t *testing.T) {
	world := patterned(10, 8)
	v, m := newViewport(t, world, 3, 2)
	v.ScrollTo(1, 1)
	world.SetCell(2, 2, 999, 0)
	if windowFrames(v, m)[4] == 999 {
		t.Fatal("world edit visible before Refresh")
	}
	v.Refresh()
	if got := windowFrames(v, m)[4]; got != 999 {
		t.Errorf("frame = %d, want 999", got)
	}
}

func TestViewportAmbient(t *testing.T) {
	world := NewTileGridMap(4, 4)
	if err := world.SetAmbientMode(AmbientChar, 4); err != nil {
		t.Fatal(err)
	}
	red := Color{1, 0, 0, 1}
	world.SetAmbientColor(1, 0, red)
	v, m := newViewport(t, world, 2, 2)
	if mode, _ := v.Mesh().Grid().AmbientMode(); mode != AmbientChar {
		t.Fatalf("window ambient mode = %s", mode)
	}
	if got := m.ReadColor(v.Mesh().Buffer(), 4); got != red {
		t.Errorf("color = %v, want %v", got, red)
	}
}

func TestViewportErrors(t *testing.T) {
	m := newMapper(t, fullLayout(t, false))
	_, err := NewViewport(NewTileGridMap(4, 4), 0, 2, m, MeshConfig{})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}

	v, _ := newViewport(t, patterned(4, 4), 2, 2)
	v.Destroy()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic scrolling destroyed viewport")
		}
	}()
	v.ScrollTo(1, 1)
}
