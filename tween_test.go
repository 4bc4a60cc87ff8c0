package quadbatch

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 0.01 }

func tweenSprites(t *testing.T) (*SpriteMesh, Records, *PropertyMapper) {
	t.Helper()
	return newSprites(t, 2, MeshConfig{CellWidth: 1, CellHeight: 1})
}

func TestTweenPositionReachesTarget(t *testing.T) {
	s, recs, m := tweenSprites(t)
	s.SetPosition(1, 10, 20)

	g := TweenPosition(s, 1, 100, 200, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	if !near(recs[1].Translate[0], 55) || !near(recs[1].Translate[1], 110) {
		t.Errorf("midpoint = %v, want ~(55,110)", recs[1].Translate)
	}
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if !near(recs[1].Translate[0], 100) || !near(recs[1].Translate[1], 200) {
		t.Errorf("translate = %v, want ~(100,200)", recs[1].Translate)
	}
	// The buffer follows the record.
	if got := m.ReadTranslate(s.Buffer(), 7); !near(got[0], 100) || !near(got[1], 200) {
		t.Errorf("buffer translate = %v", got)
	}
	if recs[0].Translate != ([3]float32{}) {
		t.Error("other sprite moved")
	}
}

func TestTweenScaleReachesTarget(t *testing.T) {
	s, recs, _ := tweenSprites(t)
	g := TweenScale(s, 0, 2, 3, 0.5, ease.Linear)
	g.Update(0.25)
	g.Update(0.25)
	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if !near(recs[0].Scale[0], 2) || !near(recs[0].Scale[1], 3) || recs[0].Scale[2] != 1 {
		t.Errorf("scale = %v, want ~(2,3,1)", recs[0].Scale)
	}
}

func TestTweenColorAllComponents(t *testing.T) {
	s, recs, m := tweenSprites(t)
	s.SetColor(0, Color{R: 1, G: 0, B: 0, A: 1})
	target := Color{R: 0, G: 1, B: 0.5, A: 0.5}

	g := TweenColor(s, 0, target, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)

	c := recs[0].Color
	if !near(c.R, target.R) || !near(c.G, target.G) || !near(c.B, target.B) || !near(c.A, target.A) {
		t.Errorf("color = %+v, want ~%+v", c, target)
	}
	if got := m.ReadColor(s.Buffer(), 0); !near(got.B, 0.5) {
		t.Errorf("buffer color = %+v", got)
	}
}

func TestTweenAlphaInterpolates(t *testing.T) {
	s, recs, _ := tweenSprites(t)
	g := TweenAlpha(s, 0, 0, 1.0, ease.Linear)
	g.Update(0.5)
	if !near(recs[0].Color.A, 0.5) {
		t.Errorf("alpha at midpoint = %v, want ~0.5", recs[0].Color.A)
	}
	if recs[0].Color.R != 1 {
		t.Error("alpha tween changed red")
	}
}

func TestTweenRotationReachesTarget(t *testing.T) {
	s, recs, _ := tweenSprites(t)
	g := TweenRotation(s, 0, math.Pi, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)
	if !near(recs[0].Rotate[2], math.Pi) {
		t.Errorf("rotation = %v, want ~pi", recs[0].Rotate[2])
	}
}

func TestTweenGroupDoneFlagTransition(t *testing.T) {
	s, _, _ := tweenSprites(t)
	g := TweenPosition(s, 0, 50, 50, 0.5, ease.Linear)
	if g.Done {
		t.Fatal("should not be Done at start")
	}
	g.Update(0.25)
	if g.Done {
		t.Fatal("should not be Done partway through")
	}
	g.Update(0.25)
	if !g.Done {
		t.Fatal("should be Done after full duration")
	}
	g.Update(0.1)
	if !g.Done {
		t.Fatal("should remain Done")
	}

	g.Reset()
	if g.Done {
		t.Fatal("Reset should clear Done")
	}
}

func TestTweenGroupMarksDirty(t *testing.T) {
	s, _, _ := tweenSprites(t)
	s.Consume()
	g := TweenPosition(s, 0, 100, 100, 1.0, ease.Linear)
	g.Update(0.1)
	if !s.Dirty() {
		t.Fatal("expected mesh dirty after tween step")
	}
}

func TestTweenGroupDestroyedMesh(t *testing.T) {
	s, recs, _ := tweenSprites(t)
	s.SetPosition(0, 10, 20)
	g := TweenPosition(s, 0, 100, 200, 1.0, ease.Linear)
	g.Update(0.1)
	if g.Done {
		t.Fatal("should not be Done yet")
	}

	s.Destroy()
	saved := recs[0].Translate
	g.Update(0.1)
	if !g.Done {
		t.Fatal("expected Done after mesh destroyed")
	}
	if recs[0].Translate != saved {
		t.Error("record changed after mesh destroyed")
	}
}

func TestTweenEasingFunctionsProduceDifferentCurves(t *testing.T) {
	s, recs, _ := tweenSprites(t)
	gL := TweenPosition(s, 0, 100, 0, 1.0, ease.Linear)
	gC := TweenPosition(s, 1, 100, 0, 1.0, ease.OutCubic)
	gL.Update(0.5)
	gC.Update(0.5)
	if math.Abs(float64(recs[0].Translate[0]-recs[1].Translate[0])) < 1 {
		t.Errorf("easing curves should differ at midpoint: linear=%v cubic=%v",
			recs[0].Translate[0], recs[1].Translate[0])
	}
}
