package quadbatch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const spriteYAML = `
layout:
  - {name: position, components: 2, buffer: static}
  - {name: translate, components: 3}
  - {name: color, components: 4, buffer: dynamic}
  - {name: frame, components: 2}
  - {name: uv, components: 2}
uv_mode: atlas
cell: {width: 24, height: 12}
pivot: {x: 0.5, y: 1}
anchor: {x: -10, y: 10}
columns: 4
behaviors:
  - id: spin
    params: {speed: 2}
  - id: static
`

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(spriteYAML))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Layout) != 5 || c.Layout[0].Buffer != "static" {
		t.Errorf("layout = %+v", c.Layout)
	}
	m, err := c.PropertyMapper()
	if err != nil {
		t.Fatal(err)
	}
	if m.AttributesPerVertex() != 11 || m.StaticStride() != 2 {
		t.Errorf("stride = %d static = %d, want 11 and 2", m.AttributesPerVertex(), m.StaticStride())
	}

	mc, err := c.MeshConfig(testUVs)
	if err != nil {
		t.Fatal(err)
	}
	if mc.UVMode != UVAtlas || mc.CellWidth != 24 || mc.CellHeight != 12 || mc.Columns != 4 {
		t.Errorf("MeshConfig = %+v", mc)
	}
	if mc.Pivot != (Vec2{0.5, 1}) || mc.Anchor != (Vec2{-10, 10}) {
		t.Errorf("pivot %v anchor %v", mc.Pivot, mc.Anchor)
	}

	bs, err := c.ResolveBehaviors(NewBehaviorRegistry())
	if err != nil || len(bs) != 2 {
		t.Fatalf("ResolveBehaviors = %d, %v", len(bs), err)
	}
}

func TestParseConfigDefaultsToTiled(t *testing.T) {
	c, err := ParseConfig([]byte("layout:\n  - {name: frame, components: 1}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.UV != "tiled" {
		t.Errorf("UV = %q, want tiled", c.UV)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := map[string]string{
		"bad uv mode":    "uv_mode: sideways\n",
		"bad buffer":     "layout:\n  - {name: frame, components: 1, buffer: gpu}\n",
		"bad components": "layout:\n  - {name: frame, components: 9}\n",
		"duplicate":      "layout:\n  - {name: frame, components: 1}\n  - {name: frame, components: 1}\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(data)); !errors.Is(err, ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
		})
	}
	if _, err := ParseConfig([]byte("layout: [")); err == nil || errors.Is(err, ErrConfiguration) {
		t.Errorf("malformed YAML err = %v", err)
	}
}

func TestDefaultConfigMeshConfig(t *testing.T) {
	c := DefaultConfig()
	mc, err := c.MeshConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	sheet, ok := mc.UVTable.(TileSheet)
	if !ok {
		t.Fatalf("UVTable = %T, want TileSheet", mc.UVTable)
	}
	if sheet.TileW != 32 || sheet.TileH != 32 || sheet.Columns != 8 {
		t.Errorf("sheet = %+v", sheet)
	}
	if _, err := c.PropertyMapper(); err != nil {
		t.Errorf("default layout: %v", err)
	}
}

func TestConfigUnknownBehavior(t *testing.T) {
	c := DefaultConfig()
	c.Behaviors = []BehaviorConfig{{ID: "teleport"}}
	if _, err := c.ResolveBehaviors(NewBehaviorRegistry()); !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprites.yaml")
	if err := os.WriteFile(path, []byte(spriteYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
