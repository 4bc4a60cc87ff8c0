package ecs

import (
	"github.com/phanxgames/quadbatch"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// SpriteComponent holds the expansion record of a sprite entity.
var SpriteComponent = donburi.NewComponentType[quadbatch.Record](quadbatch.DefaultRecord())

// SpriteEdit replaces the record of one sprite entity.
type SpriteEdit struct {
	Entity donburi.Entity
	Record quadbatch.Record
}

// SpriteEditEventType is the Donburi event type for queued sprite edits.
var SpriteEditEventType = events.NewEventType[SpriteEdit]()

// PublishEdit queues an edit for the next Apply.
func PublishEdit(world donburi.World, edit SpriteEdit) {
	SpriteEditEventType.Publish(world, edit)
}

// DonburiSource is a quadbatch.RecordSource over the sprite entities that
// existed when it was created. The set is fixed, like the mesh arena it
// feeds; entities created later are not drawn.
type DonburiSource struct {
	world    donburi.World
	entities []donburi.Entity
	index    map[donburi.Entity]int
	mesh     *quadbatch.SpriteMesh
}

// NewDonburiSource collects every entity with a SpriteComponent, in query
// order, and subscribes to SpriteEditEventType.
func NewDonburiSource(world donburi.World) *DonburiSource {
	s := &DonburiSource{world: world, index: make(map[donburi.Entity]int)}
	query := donburi.NewQuery(filter.Contains(SpriteComponent))
	query.Each(world, func(entry *donburi.Entry) {
		s.index[entry.Entity()] = len(s.entities)
		s.entities = append(s.entities, entry.Entity())
	})
	SpriteEditEventType.Subscribe(world, s.onEdit)
	return s
}

// Len implements quadbatch.RecordSource.
func (s *DonburiSource) Len() int { return len(s.entities) }

// Record implements quadbatch.RecordSource.
func (s *DonburiSource) Record(i int) *quadbatch.Record {
	return SpriteComponent.Get(s.world.Entry(s.entities[i]))
}

// Entity returns the entity drawn as quad i.
func (s *DonburiSource) Entity(i int) donburi.Entity { return s.entities[i] }

// Index returns the quad index of e.
func (s *DonburiSource) Index(e donburi.Entity) (int, bool) {
	i, ok := s.index[e]
	return i, ok
}

// Bind attaches the mesh that Apply re-expands. The mesh must have been
// built over s.
func (s *DonburiSource) Bind(mesh *quadbatch.SpriteMesh) { s.mesh = mesh }

// Apply processes queued edits. Call it from the update phase.
func (s *DonburiSource) Apply() {
	SpriteEditEventType.ProcessEvents(s.world)
}

func (s *DonburiSource) onEdit(w donburi.World, edit SpriteEdit) {
	i, ok := s.index[edit.Entity]
	if !ok || !w.Valid(edit.Entity) {
		quadbatch.Logger().Debug("ecs: edit for unknown sprite entity dropped")
		return
	}
	*SpriteComponent.Get(w.Entry(edit.Entity)) = edit.Record
	if s.mesh != nil && !s.mesh.Destroyed() {
		s.mesh.Refresh(i)
	}
}
