// Package bkt implements Bayesian Knowledge Tracing: a per-skill
// hidden-state model that estimates probability-of-mastery from a
// sequence of right/wrong observations.
package bkt

// Params holds the BKT parameter tuple for one student × skill pair.
// PL0, PT, PG and PS are fixed once the skill is initialized; only PL
// changes as answers are observed.
type Params struct {
	// PL0 is the prior probability the skill is already known.
	PL0 float64 `json:"p_l0"`
	// PT is the probability of transitioning unknown→known after one
	// interaction, regardless of correctness.
	PT float64 `json:"p_t"`
	// PG is the probability of guessing correctly while not knowing
	// the skill.
	PG float64 `json:"p_g"`
	// PS is the probability of slipping: answering incorrectly despite
	// knowing the skill.
	PS float64 `json:"p_s"`
	// PL is the current mastery estimate. Starts at PL0.
	PL float64 `json:"p_l"`
}

// Default parameter values, used when no per-skill override is configured.
const (
	DefaultPL0 = 0.1
	DefaultPT  = 0.3
	DefaultPG  = 0.2
	DefaultPS  = 0.1
)

// Overrides optionally replaces individual default parameters for a skill.
// A nil field keeps the default.
type Overrides struct {
	PL0 *float64 `json:"p_l0,omitempty" mapstructure:"p_l0"`
	PT  *float64 `json:"p_t,omitempty" mapstructure:"p_t"`
	PG  *float64 `json:"p_g,omitempty" mapstructure:"p_g"`
	PS  *float64 `json:"p_s,omitempty" mapstructure:"p_s"`
}

// Init returns the starting parameters for a skill, applying any
// configured overrides on top of the defaults. PL starts at PL0.
func Init(overrides *Overrides) Params {
	p := Params{
		PL0: DefaultPL0,
		PT:  DefaultPT,
		PG:  DefaultPG,
		PS:  DefaultPS,
	}
	if overrides != nil {
		if overrides.PL0 != nil {
			p.PL0 = clamp01(*overrides.PL0)
		}
		if overrides.PT != nil {
			p.PT = clamp01(*overrides.PT)
		}
		if overrides.PG != nil {
			p.PG = clamp01(*overrides.PG)
		}
		if overrides.PS != nil {
			p.PS = clamp01(*overrides.PS)
		}
	}
	p.PL = p.PL0
	return p
}

// Update applies the standard two-step Bayesian update and returns the
// new parameters. Pure: the input is never modified, and the function
// cannot fail.
//
// Step 1 conditions the mastery estimate on the observed answer; step 2
// applies the learning transition PT.
func Update(p Params, correct bool) Params {
	var post float64
	if correct {
		num := p.PL * (1 - p.PS)
		den := num + (1-p.PL)*p.PG
		if den == 0 {
			// Degenerate PG/PS at the probability boundary. Keep the
			// prior rather than dividing by zero.
			post = p.PL
		} else {
			post = num / den
		}
	} else {
		num := p.PL * p.PS
		den := num + (1-p.PL)*(1-p.PG)
		if den == 0 {
			post = p.PL
		} else {
			post = num / den
		}
	}

	p.PL = clamp01(post + (1-post)*p.PT)
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
