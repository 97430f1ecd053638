package bkt

import (
	"math"
	"testing"
)

func TestInit_Defaults(t *testing.T) {
	p := Init(nil)
	if p.PL0 != DefaultPL0 || p.PT != DefaultPT || p.PG != DefaultPG || p.PS != DefaultPS {
		t.Errorf("Init(nil) = %+v, want defaults", p)
	}
	if p.PL != p.PL0 {
		t.Errorf("PL = %v, want PL0 (%v)", p.PL, p.PL0)
	}
}

func TestInit_Overrides(t *testing.T) {
	pl0 := 0.25
	pg := 0.15
	p := Init(&Overrides{PL0: &pl0, PG: &pg})
	if p.PL0 != 0.25 {
		t.Errorf("PL0 = %v, want 0.25", p.PL0)
	}
	if p.PG != 0.15 {
		t.Errorf("PG = %v, want 0.15", p.PG)
	}
	if p.PT != DefaultPT {
		t.Errorf("PT = %v, want default %v", p.PT, DefaultPT)
	}
	if p.PL != 0.25 {
		t.Errorf("PL = %v, want 0.25", p.PL)
	}
}

func TestInit_OverridesClamped(t *testing.T) {
	bad := 1.7
	p := Init(&Overrides{PT: &bad})
	if p.PT != 1.0 {
		t.Errorf("PT = %v, want clamped to 1.0", p.PT)
	}
}

// Known values for the default parameter tuple, worked by hand:
// correct:   post = 0.1·0.9/(0.1·0.9+0.9·0.2) = 1/3, PL' = 1/3 + 2/3·0.3 = 0.5333
// incorrect: post = 0.1·0.1/(0.1·0.1+0.9·0.8) = 0.01369, PL' = 0.3096
func TestUpdate_KnownValues(t *testing.T) {
	p := Init(nil)

	up := Update(p, true)
	if !closeTo(up.PL, 0.53333, 1e-4) {
		t.Errorf("correct update PL = %v, want ≈0.5333", up.PL)
	}

	down := Update(p, false)
	if !closeTo(down.PL, 0.30959, 1e-4) {
		t.Errorf("incorrect update PL = %v, want ≈0.3096", down.PL)
	}

	// Learning dominates at low mastery: both exceed the prior, but the
	// correct path must always exceed the incorrect path.
	if up.PL <= down.PL {
		t.Errorf("correct path (%v) must exceed incorrect path (%v)", up.PL, down.PL)
	}
	if up.PL <= p.PL0 || down.PL <= p.PL0 {
		t.Errorf("both paths should exceed PL0=%v: got %v, %v", p.PL0, up.PL, down.PL)
	}
}

func TestUpdate_Pure(t *testing.T) {
	p := Init(nil)
	before := p
	_ = Update(p, true)
	if p != before {
		t.Error("Update mutated its input")
	}
}

func TestUpdate_ImmutableFixedParams(t *testing.T) {
	p := Init(nil)
	up := Update(p, true)
	if up.PL0 != p.PL0 || up.PT != p.PT || up.PG != p.PG || up.PS != p.PS {
		t.Error("Update changed a fixed parameter; only PL may change")
	}
}

func TestUpdate_DegenerateDenominator(t *testing.T) {
	// PL=0 with PG=0: correct-answer denominator is exactly 0. The
	// posterior must fall back to the unchanged prior, then transition.
	p := Params{PL0: 0, PT: 0.3, PG: 0, PS: 0.1, PL: 0}
	up := Update(p, true)
	if math.IsNaN(up.PL) || math.IsInf(up.PL, 0) {
		t.Fatalf("PL = %v, want finite", up.PL)
	}
	if !closeTo(up.PL, 0.3, 1e-9) {
		t.Errorf("PL = %v, want 0.3 (prior 0 + transition)", up.PL)
	}

	// PL=1 with PS=1: incorrect-answer denominator is 0 at PG=1.
	p = Params{PL0: 1, PT: 0.3, PG: 1, PS: 0, PL: 1}
	up = Update(p, false)
	if math.IsNaN(up.PL) || math.IsInf(up.PL, 0) {
		t.Fatalf("PL = %v, want finite", up.PL)
	}
	if up.PL != 1 {
		t.Errorf("PL = %v, want 1 (prior unchanged, transition saturates)", up.PL)
	}
}

func TestUpdate_LongSequenceConverges(t *testing.T) {
	p := Init(nil)
	for i := 0; i < 50; i++ {
		p = Update(p, true)
	}
	if p.PL < 0.99 {
		t.Errorf("PL after 50 correct = %v, want near 1", p.PL)
	}
	if p.PL > 1 {
		t.Errorf("PL = %v, exceeds 1", p.PL)
	}
}

func closeTo(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}
