package bkt

import (
	"testing"

	"pgregory.net/rapid"
)

// For any valid parameter tuple and any answer sequence, PL stays in [0,1].
func TestProperty_PLBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := Params{
			PL0: rapid.Float64Range(0, 1).Draw(rt, "pl0"),
			PT:  rapid.Float64Range(0, 1).Draw(rt, "pt"),
			PG:  rapid.Float64Range(0, 1).Draw(rt, "pg"),
			PS:  rapid.Float64Range(0, 1).Draw(rt, "ps"),
		}
		p.PL = p.PL0

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			correct := rapid.Bool().Draw(rt, "correct")
			p = Update(p, correct)
			if p.PL < 0 || p.PL > 1 {
				rt.Fatalf("PL = %v after step %d, out of [0,1]", p.PL, i)
			}
		}
	})
}

// From the same starting PL, a correct answer never yields a lower
// estimate than an incorrect answer, for non-degenerate guess/slip rates.
func TestProperty_CorrectDominatesIncorrect(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := Params{
			PL0: rapid.Float64Range(0.01, 0.99).Draw(rt, "pl0"),
			PT:  rapid.Float64Range(0, 1).Draw(rt, "pt"),
			PG:  rapid.Float64Range(0.01, 0.49).Draw(rt, "pg"),
			PS:  rapid.Float64Range(0.01, 0.49).Draw(rt, "ps"),
		}
		p.PL = p.PL0

		up := Update(p, true)
		down := Update(p, false)
		if up.PL < down.PL {
			rt.Fatalf("correct path %v < incorrect path %v (start %v)", up.PL, down.PL, p.PL)
		}
	})
}
