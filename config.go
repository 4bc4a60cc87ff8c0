package quadbatch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is a YAML descriptor for one shader configuration and the mesh
// defaults that go with it.
type Config struct {
	Layout      []AttributeConfig `yaml:"layout"`
	UV          string            `yaml:"uv_mode"` // tiled | atlas
	Cell        SizeConfig        `yaml:"cell"`
	Anchor      PointConfig       `yaml:"anchor"`
	Pivot       PointConfig       `yaml:"pivot"`
	TilesPerRow int               `yaml:"tiles_per_row"`
	Sheet       SizeConfig        `yaml:"sheet"`
	Columns     int               `yaml:"columns"`
	Behaviors   []BehaviorConfig  `yaml:"behaviors,omitempty"`
}

// AttributeConfig is one layout entry. Buffer defaults to dynamic.
type AttributeConfig struct {
	Name       string `yaml:"name"`
	Components int    `yaml:"components"`
	Buffer     string `yaml:"buffer"`
}

// SizeConfig is a width and height.
type SizeConfig struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// PointConfig is an x, y pair.
type PointConfig struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// BehaviorConfig names a registered behavior and its parameters.
type BehaviorConfig struct {
	ID     string             `yaml:"id"`
	Params map[string]float64 `yaml:"params"`
}

// DefaultConfig returns the tiled layout with every recognized attribute,
// 32x32 cells on a 256x256 sheet of 8 columns.
func DefaultConfig() *Config {
	return &Config{
		Layout: []AttributeConfig{
			{Name: "position", Components: 2, Buffer: "static"},
			{Name: "quadrant", Components: 2, Buffer: "static"},
			{Name: "translate", Components: 3},
			{Name: "rotate", Components: 3},
			{Name: "scale", Components: 3},
			{Name: "color", Components: 4},
			{Name: "frame", Components: 2},
		},
		UV:          "tiled",
		Cell:        SizeConfig{Width: 32, Height: 32},
		TilesPerRow: 8,
		Sheet:       SizeConfig{Width: 256, Height: 256},
	}
}

// ParseConfig decodes a YAML descriptor and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("quadbatch: parsing config: %w", err)
	}
	if c.UV == "" {
		c.UV = "tiled"
	}
	if _, err := c.UVMode(); err != nil {
		return nil, err
	}
	if _, err := c.VariableLayout(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig reads and parses the descriptor at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quadbatch: reading config file: %w", err)
	}
	return ParseConfig(data)
}

// UVMode returns the configured texture addressing mode.
func (c *Config) UVMode() (UVMode, error) {
	switch c.UV {
	case "tiled", "":
		return UVTiled, nil
	case "atlas":
		return UVAtlas, nil
	default:
		return 0, configError("UVMode", "uv_mode", "unknown mode %q", c.UV)
	}
}

// VariableLayout builds the layout described by c.
func (c *Config) VariableLayout() (*VariableLayout, error) {
	attrs := make([]Attribute, len(c.Layout))
	for i, a := range c.Layout {
		var b BufferID
		switch a.Buffer {
		case "", "dynamic":
			b = BufferDynamic
		case "static":
			b = BufferStatic
		default:
			return nil, configError("VariableLayout", a.Name, "unknown buffer %q", a.Buffer)
		}
		attrs[i] = Attribute{Name: a.Name, Components: a.Components, Buffer: b}
	}
	return NewVariableLayout(attrs...)
}

// PropertyMapper builds the layout and its mapper in one step.
func (c *Config) PropertyMapper() (*PropertyMapper, error) {
	l, err := c.VariableLayout()
	if err != nil {
		return nil, err
	}
	return NewPropertyMapper(l)
}

// TileSheet returns the UV table for the configured sheet. Tiles are square,
// tiles_per_row of them spanning the sheet width.
func (c *Config) TileSheet() TileSheet {
	tile := c.Sheet.Width / float32(max(c.TilesPerRow, 1))
	return TileSheet{
		Columns: c.TilesPerRow,
		TileW:   tile,
		TileH:   tile,
		SheetW:  c.Sheet.Width,
		SheetH:  c.Sheet.Height,
	}
}

// MeshConfig returns the mesh defaults. In tiled mode the UV table is the
// configured tile sheet; in atlas mode table must be supplied by the caller.
func (c *Config) MeshConfig(table UVTable) (MeshConfig, error) {
	mode, err := c.UVMode()
	if err != nil {
		return MeshConfig{}, err
	}
	if table == nil && mode == UVTiled && c.TilesPerRow > 0 {
		table = c.TileSheet()
	}
	return MeshConfig{
		CellWidth:  c.Cell.Width,
		CellHeight: c.Cell.Height,
		Anchor:     Vec2{X: c.Anchor.X, Y: c.Anchor.Y},
		Pivot:      Vec2{X: c.Pivot.X, Y: c.Pivot.Y},
		Columns:    c.Columns,
		UVMode:     mode,
		UVTable:    table,
	}, nil
}

// ResolveBehaviors builds every configured behavior from reg.
func (c *Config) ResolveBehaviors(reg *BehaviorRegistry) ([]Behavior, error) {
	out := make([]Behavior, 0, len(c.Behaviors))
	for _, bc := range c.Behaviors {
		b, err := reg.Resolve(bc.ID, bc.Params)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
