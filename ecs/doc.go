// Package ecs provides ECS adapters for quadbatch sprite meshes.
//
// The primary adapter is [NewDonburiSource], which presents the entities of
// a [Donburi] world that carry a [SpriteComponent] as the fixed record
// source of a [quadbatch.SpriteMesh]. Systems change sprites by publishing
// [SpriteEdit] events; [DonburiSource.Apply] drains them in the update phase
// and re-expands only the edited quads.
//
// Usage:
//
//	src := ecs.NewDonburiSource(world)
//	mesh, _ := quadbatch.NewSpriteMesh(src, mapper, cfg)
//	src.Bind(mesh)
//	// in a system:
//	ecs.PublishEdit(world, ecs.SpriteEdit{Entity: e, Record: rec})
//	// once per update:
//	src.Apply()
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
