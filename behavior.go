package quadbatch

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/tanema/gween/ease"
)

// Behavior updates one sprite each frame. Implementations edit the sprite
// through the mesh setters so the quad is re-expanded.
type Behavior interface {
	Update(dt float32, m *SpriteMesh, i int)
}

// BehaviorFunc adapts a plain function to Behavior.
type BehaviorFunc func(dt float32, m *SpriteMesh, i int)

// Update implements Behavior.
func (f BehaviorFunc) Update(dt float32, m *SpriteMesh, i int) { f(dt, m, i) }

// BehaviorFactory creates a fresh behavior from numeric parameters. Missing
// parameters take the factory's defaults.
type BehaviorFactory func(params map[string]float64) (Behavior, error)

// BehaviorRegistry maps behavior ids to factories. A registry is an ordinary
// value owned by whoever builds sprites; it starts with the built-in ids
// static, spin, bob, animate and tween.
type BehaviorRegistry struct {
	mu        sync.RWMutex
	factories map[string]BehaviorFactory
}

// NewBehaviorRegistry returns a registry holding the built-in behaviors.
func NewBehaviorRegistry() *BehaviorRegistry {
	r := &BehaviorRegistry{factories: make(map[string]BehaviorFactory)}
	r.Register("static", newStaticBehavior)
	r.Register("spin", newSpinBehavior)
	r.Register("bob", newBobBehavior)
	r.Register("animate", newAnimateBehavior)
	r.Register("tween", newTweenBehavior)
	return r
}

// Register adds or replaces the factory for id.
func (r *BehaviorRegistry) Register(id string, f BehaviorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[id]; ok {
		Logger().Debug("quadbatch: behavior replaced", slog.String("id", id))
	}
	r.factories[id] = f
}

// IDs returns the registered ids in sorted order.
func (r *BehaviorRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve builds the behavior registered under id. An unknown id is a
// ConfigurationError.
func (r *BehaviorRegistry) Resolve(id string, params map[string]float64) (Behavior, error) {
	r.mu.RLock()
	f, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, configError("Resolve", id, "unknown behavior")
	}
	b, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("quadbatch: behavior %q: %w", id, err)
	}
	return b, nil
}

func param(params map[string]float64, name string, def float64) float32 {
	if v, ok := params[name]; ok {
		return float32(v)
	}
	return float32(def)
}

// --- built-ins ---

type staticBehavior struct{}

func (staticBehavior) Update(float32, *SpriteMesh, int) {}

func newStaticBehavior(map[string]float64) (Behavior, error) {
	return staticBehavior{}, nil
}

// spinBehavior rotates the sprite at speed radians per second.
type spinBehavior struct {
	speed float32
}

func (b *spinBehavior) Update(dt float32, m *SpriteMesh, i int) {
	r := m.Record(i)
	a := r.Rotate[2] + b.speed*dt
	m.SetRotation(i, float32(math.Mod(float64(a), 2*math.Pi)))
}

func newSpinBehavior(params map[string]float64) (Behavior, error) {
	return &spinBehavior{speed: param(params, "speed", math.Pi)}, nil
}

// bobBehavior moves the sprite up and down around the y it had on its first
// update.
type bobBehavior struct {
	amplitude, speed float32
	phase            float32
	baseY            float32
	started          bool
}

func (b *bobBehavior) Update(dt float32, m *SpriteMesh, i int) {
	r := m.Record(i)
	if !b.started {
		b.baseY = r.Translate[1]
		b.started = true
	}
	b.phase += b.speed * dt
	y := b.baseY + b.amplitude*float32(math.Sin(float64(b.phase)))
	m.SetPosition(i, r.Translate[0], y)
}

func newBobBehavior(params map[string]float64) (Behavior, error) {
	return &bobBehavior{
		amplitude: param(params, "amplitude", 4),
		speed:     param(params, "speed", 2*math.Pi),
	}, nil
}

// animateBehavior cycles count frames starting at first, fps frames per
// second.
type animateBehavior struct {
	first, count int
	fps          float32
	elapsed      float32
	shown        int
}

func (b *animateBehavior) Update(dt float32, m *SpriteMesh, i int) {
	b.elapsed += dt
	f := b.first + int(b.elapsed*b.fps)%b.count
	if f != b.shown || m.Record(i).Frame != f {
		b.shown = f
		m.SetFrame(i, f)
	}
}

func newAnimateBehavior(params map[string]float64) (Behavior, error) {
	count := int(param(params, "count", 1))
	if count <= 0 {
		return nil, configError("animate", "count", "must be positive, got %d", count)
	}
	fps := param(params, "fps", 8)
	if fps <= 0 {
		return nil, configError("animate", "fps", "must be positive, got %g", fps)
	}
	first := int(param(params, "first", 0))
	return &animateBehavior{first: first, count: count, fps: fps, shown: -1}, nil
}

// tweenBehavior moves the sprite to (x, y) once, easing in and out.
type tweenBehavior struct {
	x, y, duration float32
	group          *TweenGroup
}

func (b *tweenBehavior) Update(dt float32, m *SpriteMesh, i int) {
	if b.group == nil {
		b.group = TweenPosition(m, i, b.x, b.y, b.duration, ease.InOutQuad)
	}
	b.group.Update(dt)
}

func newTweenBehavior(params map[string]float64) (Behavior, error) {
	d := param(params, "duration", 1)
	if d <= 0 {
		return nil, configError("tween", "duration", "must be positive, got %g", d)
	}
	return &tweenBehavior{x: param(params, "x", 0), y: param(params, "y", 0), duration: d}, nil
}
