package gateway

import "github.com/adaptlearn/skilltrace/internal/dkt"

// Fallback heuristic tuning. The neutral prior carries most of the
// blend weight: five observations make for a noisy accuracy estimate.
const (
	// fallbackWindow is how many recent interactions per skill feed the
	// empirical accuracy.
	fallbackWindow = 5
	// fallbackAccuracyWeight is the empirical accuracy's share of the
	// blend; the neutral 0.5 prior gets the rest.
	fallbackAccuracyWeight = 0.3

	fallbackNeutral        = 0.5
	fallbackConfidenceCap  = 0.9
	fallbackConfidenceStep = 0.05
)

// heuristicPrediction synthesizes a prediction with the same shape as
// the sequence model's when the model is unreachable. Deterministic:
// per skill, the empirical accuracy over the last five interactions on
// that skill (0.5 if none) blended 30/70 with the neutral prior, with
// overall confidence scaled by how much history exists.
func heuristicPrediction(skills []string, steps []dkt.Step) dkt.Prediction {
	mastery := make(map[string]float64, len(skills))
	for _, skill := range skills {
		mastery[skill] = fallbackNeutral*(1-fallbackAccuracyWeight) +
			recentAccuracy(steps, skill)*fallbackAccuracyWeight
	}

	conf := fallbackNeutral + fallbackConfidenceStep*float64(len(steps))
	if conf > fallbackConfidenceCap {
		conf = fallbackConfidenceCap
	}

	return dkt.Prediction{
		SkillMastery:   mastery,
		HiddenState:    nil,
		Confidence:     conf,
		SequenceLength: len(steps),
	}
}

// recentAccuracy computes the hit rate over the last fallbackWindow
// interactions on one skill, or the neutral 0.5 when the skill has no
// history yet.
func recentAccuracy(steps []dkt.Step, skillID string) float64 {
	seen, correct := 0, 0
	for i := len(steps) - 1; i >= 0 && seen < fallbackWindow; i-- {
		if steps[i].SkillID != skillID {
			continue
		}
		seen++
		if steps[i].Correct {
			correct++
		}
	}
	if seen == 0 {
		return fallbackNeutral
	}
	return float64(correct) / float64(seen)
}
