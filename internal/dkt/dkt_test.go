package dkt

import (
	"math"
	"testing"
)

func testSkills() []string {
	return []string{"fractions", "decimals", "ratios"}
}

func testModel(t *testing.T) *Model {
	t.Helper()
	enc, err := NewEncoder(testSkills())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	net, err := NewNetwork(enc.InputWidth(), DefaultHiddenSize, DefaultLayers, DefaultSeed)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	return NewModel(enc, net)
}

func TestEncoder_Layout(t *testing.T) {
	enc, err := NewEncoder(testSkills())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if enc.InputWidth() != 6 {
		t.Errorf("InputWidth = %d, want 6", enc.InputWidth())
	}

	v := enc.Encode(Step{SkillID: "decimals", Correct: true})
	if v[1] != 1 {
		t.Errorf("correct decimals should fire slot 1, got %v", v)
	}
	if sumVec(v) != 1 {
		t.Errorf("encoding should be one-hot, got %v", v)
	}

	v = enc.Encode(Step{SkillID: "decimals", Correct: false})
	if v[4] != 1 {
		t.Errorf("incorrect decimals should fire slot N+1=4, got %v", v)
	}
}

func TestEncoder_UntrackedSkillIsZero(t *testing.T) {
	enc, _ := NewEncoder(testSkills())
	v := enc.Encode(Step{SkillID: "algebra", Correct: true})
	if sumVec(v) != 0 {
		t.Errorf("untracked skill should encode to zero vector, got %v", v)
	}
	if enc.SkillIndex("algebra") != -1 {
		t.Error("SkillIndex for untracked skill should be -1")
	}
}

func TestEncoder_RejectsDuplicates(t *testing.T) {
	if _, err := NewEncoder([]string{"a", "b", "a"}); err == nil {
		t.Error("expected error for duplicate skills")
	}
	if _, err := NewEncoder(nil); err == nil {
		t.Error("expected error for empty skill list")
	}
}

func TestPredict_ColdStart(t *testing.T) {
	m := testModel(t)
	pred := m.Predict(nil)

	if len(pred.SkillMastery) != 3 {
		t.Fatalf("mastery entries = %d, want 3", len(pred.SkillMastery))
	}
	for skill, p := range pred.SkillMastery {
		if p != 0.5 {
			t.Errorf("cold start mastery[%s] = %v, want exactly 0.5", skill, p)
		}
	}
	if pred.Confidence != 0.5 {
		t.Errorf("cold start confidence = %v, want exactly 0.5", pred.Confidence)
	}
	for _, h := range pred.HiddenState {
		if h != 0 {
			t.Errorf("cold start hidden state should be zero, got %v", pred.HiddenState)
			break
		}
	}
	if pred.SequenceLength != 0 {
		t.Errorf("SequenceLength = %d, want 0", pred.SequenceLength)
	}
}

func TestPredict_OutputsBounded(t *testing.T) {
	m := testModel(t)
	seq := []Step{
		{SkillID: "fractions", Correct: true},
		{SkillID: "fractions", Correct: true},
		{SkillID: "decimals", Correct: false},
		{SkillID: "ratios", Correct: true},
		{SkillID: "fractions", Correct: false},
	}
	pred := m.Predict(seq)

	for skill, p := range pred.SkillMastery {
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Errorf("mastery[%s] = %v, out of [0,1]", skill, p)
		}
	}
	if pred.Confidence < 0 || pred.Confidence > 1 {
		t.Errorf("confidence = %v, out of [0,1]", pred.Confidence)
	}
	if len(pred.HiddenState) != DefaultHiddenSize {
		t.Errorf("hidden state length = %d, want %d", len(pred.HiddenState), DefaultHiddenSize)
	}
	if pred.SequenceLength != len(seq) {
		t.Errorf("SequenceLength = %d, want %d", pred.SequenceLength, len(seq))
	}
}

func TestPredict_Deterministic(t *testing.T) {
	seq := []Step{
		{SkillID: "fractions", Correct: true},
		{SkillID: "decimals", Correct: false},
	}

	a := testModel(t).Predict(seq)
	b := testModel(t).Predict(seq)

	for skill, p := range a.SkillMastery {
		if b.SkillMastery[skill] != p {
			t.Errorf("same seed diverged on %s: %v vs %v", skill, p, b.SkillMastery[skill])
		}
	}
	if a.Confidence != b.Confidence {
		t.Errorf("confidence diverged: %v vs %v", a.Confidence, b.Confidence)
	}
}

func TestPredict_StatelessAcrossCalls(t *testing.T) {
	m := testModel(t)
	seq := []Step{{SkillID: "ratios", Correct: true}}

	first := m.Predict(seq)
	// Interleave an unrelated prediction to prove no state leaks.
	m.Predict([]Step{{SkillID: "fractions", Correct: false}, {SkillID: "decimals", Correct: false}})
	second := m.Predict(seq)

	for skill, p := range first.SkillMastery {
		if second.SkillMastery[skill] != p {
			t.Errorf("model leaked state across calls on %s", skill)
		}
	}
}

func TestEntropyConfidence(t *testing.T) {
	cases := []struct {
		name  string
		probs []float64
		want  float64
		tol   float64
	}{
		{"max uncertainty", []float64{0.5, 0.5}, 0, 1e-12},
		{"fully saturated", []float64{0, 1, 1}, 1, 1e-12},
		{"near saturated", []float64{0.99, 0.01}, 0.919, 0.001},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := entropyConfidence(tc.probs)
			if math.Abs(got-tc.want) > tc.tol {
				t.Errorf("entropyConfidence(%v) = %v, want %v", tc.probs, got, tc.want)
			}
		})
	}
}

func sumVec(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}
