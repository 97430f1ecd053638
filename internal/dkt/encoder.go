package dkt

import "fmt"

// Step is one interaction fed to the sequence model: which skill was
// attempted and whether the answer was correct.
type Step struct {
	SkillID string `json:"skill_id"`
	Correct bool   `json:"correct"`
}

// Encoder maps interactions onto fixed-width input vectors. The layout
// is the usual one-hot pairing: slot i fires for a correct answer on
// skill i, slot N+i for an incorrect one, giving width 2N for N tracked
// skills.
type Encoder struct {
	skills []string
	index  map[string]int
}

// NewEncoder builds an encoder over the given tracked skill list. The
// order of the list fixes the vector layout, so the same list must be
// used on both sides of a process boundary.
func NewEncoder(skills []string) (*Encoder, error) {
	if len(skills) == 0 {
		return nil, fmt.Errorf("encoder requires at least one tracked skill")
	}
	idx := make(map[string]int, len(skills))
	for i, s := range skills {
		if _, dup := idx[s]; dup {
			return nil, fmt.Errorf("duplicate tracked skill %q", s)
		}
		idx[s] = i
	}
	return &Encoder{skills: append([]string(nil), skills...), index: idx}, nil
}

// Skills returns the tracked skill list in vector order.
func (e *Encoder) Skills() []string {
	return append([]string(nil), e.skills...)
}

// NumSkills returns the number of tracked skills.
func (e *Encoder) NumSkills() int {
	return len(e.skills)
}

// InputWidth returns the encoded vector width (2 × tracked skills).
func (e *Encoder) InputWidth() int {
	return 2 * len(e.skills)
}

// SkillIndex returns the vector index for a skill, or -1 if the skill
// is not tracked by this encoder.
func (e *Encoder) SkillIndex(skillID string) int {
	i, ok := e.index[skillID]
	if !ok {
		return -1
	}
	return i
}

// Encode produces the input vector for one step. Steps on untracked
// skills encode to the zero vector: the model simply learns nothing
// from them.
func (e *Encoder) Encode(s Step) []float64 {
	v := make([]float64, e.InputWidth())
	i, ok := e.index[s.SkillID]
	if !ok {
		return v
	}
	if s.Correct {
		v[i] = 1
	} else {
		v[len(e.skills)+i] = 1
	}
	return v
}

// EncodeSequence encodes an ordered interaction sequence.
func (e *Encoder) EncodeSequence(steps []Step) [][]float64 {
	out := make([][]float64, len(steps))
	for i, s := range steps {
		out[i] = e.Encode(s)
	}
	return out
}
