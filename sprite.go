package quadbatch

// SpriteMesh expands a fixed set of caller-owned sprite records into one quad
// buffer. Setters update the record and re-expand that one quad.
type SpriteMesh struct {
	quadMesh
	source    RecordSource
	behaviors []Behavior
}

// NewSpriteMesh builds a mesh over source. When cfg.Columns is positive the
// sprites are laid out row-major from cfg.Anchor, one cell apart, and the
// positions are written back into the records.
func NewSpriteMesh(source RecordSource, m *PropertyMapper, cfg MeshConfig) (*SpriteMesh, error) {
	s := &SpriteMesh{source: source}
	n := source.Len()
	if err := s.init("sprites", n, m, source, cfg); err != nil {
		return nil, err
	}
	if cfg.Columns > 0 {
		for i := 0; i < n; i++ {
			pos := cfg.cellPosition(i%cfg.Columns, i/cfg.Columns)
			source.Record(i).Translate = pos
			s.writePosition(i, pos)
		}
	}
	if err := s.exp.UpdateAttributeData(); err != nil {
		return nil, err
	}
	return s, nil
}

// Source returns the record source.
func (s *SpriteMesh) Source() RecordSource { return s.source }

// Record returns sprite i's record. After changing it directly, call Refresh.
func (s *SpriteMesh) Record(i int) *Record {
	checkIndex(i, s.n, s.kind)
	return s.source.Record(i)
}

// Refresh re-expands sprite i after its record was edited in place.
func (s *SpriteMesh) Refresh(i int) {
	s.expandOne(i)
}

// RefreshAll re-expands every sprite.
func (s *SpriteMesh) RefreshAll() error {
	checkDestroyed(s.destroyed, s.kind, "RefreshAll")
	if err := s.exp.UpdateAttributeData(); err != nil {
		return err
	}
	s.markDirty()
	return nil
}

// SetPosition sets the x and y translate of sprite i.
func (s *SpriteMesh) SetPosition(i int, x, y float32) {
	r := s.Record(i)
	r.Translate[0], r.Translate[1] = x, y
	s.expandOne(i)
}

// SetTransform sets translate, rotate and scale of sprite i at once.
func (s *SpriteMesh) SetTransform(i int, translate, rotate, scale [3]float32) {
	r := s.Record(i)
	r.Translate, r.Rotate, r.Scale = translate, rotate, scale
	s.expandOne(i)
}

// SetRotation sets the in-plane rotation of sprite i, in radians.
func (s *SpriteMesh) SetRotation(i int, radians float32) {
	r := s.Record(i)
	r.Rotate[2] = radians
	s.expandOne(i)
}

// SetScale sets the x and y scale of sprite i.
func (s *SpriteMesh) SetScale(i int, sx, sy float32) {
	r := s.Record(i)
	r.Scale[0], r.Scale[1] = sx, sy
	s.expandOne(i)
}

// SetColor sets the tint of sprite i.
func (s *SpriteMesh) SetColor(i int, c Color) {
	s.Record(i).Color = c
	s.expandOne(i)
}

// SetFrame sets the frame of sprite i.
func (s *SpriteMesh) SetFrame(i int, frame int) {
	s.Record(i).Frame = frame
	s.expandOne(i)
}

// SetFlags sets the flip flags of sprite i.
func (s *SpriteMesh) SetFlags(i int, flags uint8) {
	s.Record(i).Flags = flags
	s.expandOne(i)
}

// SetBehavior attaches b to sprite i; nil detaches.
func (s *SpriteMesh) SetBehavior(i int, b Behavior) {
	checkDestroyed(s.destroyed, s.kind, "SetBehavior")
	checkIndex(i, s.n, s.kind)
	if s.behaviors == nil {
		if b == nil {
			return
		}
		s.behaviors = make([]Behavior, s.n)
	}
	s.behaviors[i] = b
}

// Behavior returns the behavior attached to sprite i, if any.
func (s *SpriteMesh) Behavior(i int) Behavior {
	checkIndex(i, s.n, s.kind)
	if s.behaviors == nil {
		return nil
	}
	return s.behaviors[i]
}

// Update runs every attached behavior with dt seconds.
func (s *SpriteMesh) Update(dt float32) {
	checkDestroyed(s.destroyed, s.kind, "Update")
	for i, b := range s.behaviors {
		if b != nil {
			b.Update(dt, s, i)
		}
	}
}

// Destroy releases the buffers. Further edits panic.
func (s *SpriteMesh) Destroy() {
	s.behaviors = nil
	s.release()
}
