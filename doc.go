// Package quadbatch lays out and expands per-entity state into the vertex
// buffers of a batched-quad renderer.
//
// A sprite or tile is one logical record (translate, rotate, scale, color,
// frame, flags). The GPU draws it as a quad of four vertices, so every
// attribute is written four times, once per corner, into a flat float32
// buffer whose layout is chosen by the shader configuration. quadbatch keeps
// that buffer in step with the records and touches only the quads that
// changed.
//
// # Layout
//
// A [VariableLayout] names the attributes a shader reads and assigns each a
// per-buffer offset in declaration order. Per-corner constants (corner shape,
// UV quadrant) live in the static buffer; per-entity state in the dynamic
// buffer. A [PropertyMapper] resolves the recognized property names once so
// every writer uses named offsets:
//
//	layout := quadbatch.MustVariableLayout(
//		quadbatch.Attribute{Name: "position", Components: 2, Buffer: quadbatch.BufferStatic},
//		quadbatch.Attribute{Name: "translate", Components: 3},
//		quadbatch.Attribute{Name: "color", Components: 4},
//		quadbatch.Attribute{Name: "frame", Components: 2},
//	)
//	mapper, err := quadbatch.NewPropertyMapper(layout)
//
// Layouts can also come from a YAML descriptor; see [ParseConfig].
//
// # Meshes
//
// [PlayfieldMesh] binds a [TileGridMap] (one quad per cell) and re-expands
// the rectangle touched by each grid edit. [SpriteMesh] expands a fixed set
// of caller-owned records, one quad per sprite. Both keep a dirty flag the
// renderer clears with Consume.
//
//	grid := quadbatch.NewTileGridMap(64, 48)
//	mesh, err := quadbatch.NewPlayfieldMesh(grid, mapper, quadbatch.MeshConfig{
//		CellWidth: 32, CellHeight: 32,
//	})
//	mesh.Fill(0, 0, 64, 1, 3, quadbatch.FlipX)
//	if mesh.Dirty() {
//		upload(mesh.Consume())
//	}
//
// Texture coordinates come from either the frame index (tiled mode, computed
// by the shader) or a [UVTable] such as an [Atlas] or [TileSheet] (atlas
// mode, written per corner).
//
// # Frame pacing
//
// A [FramePump] runs the render phase on its own goroutine with at most one
// frame in flight. The update side mutates meshes only between Await and
// Signal.
//
// # Ebitengine
//
// [EbitenRenderer] turns mesh buffers into [ebiten.Vertex] slices and draws
// them with DrawTriangles. Sprite behaviors ([BehaviorRegistry]) and tweens
// (via [gween]) drive SpriteMesh records; the ecs subpackage adapts a
// [Donburi] world as a record source.
//
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package quadbatch
