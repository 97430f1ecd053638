// Package adaptive fuses the two mastery estimates into one confidence
// score, selects the next difficulty band, and drives the level-unlock
// state machine.
package adaptive

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/adaptlearn/skilltrace/internal/bkt"
	"github.com/adaptlearn/skilltrace/internal/dkt"
	"github.com/adaptlearn/skilltrace/internal/gateway"
	"github.com/adaptlearn/skilltrace/internal/knowledge"
)

// Tunables are the empirically-tuned knobs of the selector. They are
// set from validated configuration; the engine assumes they are sane.
type Tunables struct {
	// BKTWeight and SequenceWeight fuse the two mastery estimates.
	// They sum to 1.
	BKTWeight      float64
	SequenceWeight float64

	// Band cutoffs on the combined confidence. Strictly increasing,
	// inside (0,1). A value below VeryEasyMax selects very_easy, and
	// so on; at or above ModerateMax selects difficult.
	VeryEasyMax float64
	EasyMax     float64
	ModerateMax float64

	// StreakTarget is the consecutive-correct count that, together
	// with the state's mastery threshold, unlocks the next level.
	StreakTarget int

	// BKTOverrides replaces default BKT parameters for specific skills
	// when they are first encountered.
	BKTOverrides map[string]bkt.Overrides
}

// DefaultTunables mirrors the shipped configuration defaults.
func DefaultTunables() Tunables {
	return Tunables{
		BKTWeight:      0.6,
		SequenceWeight: 0.4,
		VeryEasyMax:    0.3,
		EasyMax:        0.5,
		ModerateMax:    0.75,
		StreakTarget:   3,
	}
}

// Decision is what the engine tells the caller after each turn.
type Decision struct {
	NextDifficulty     knowledge.Difficulty `json:"next_difficulty"`
	MasteryAchieved    bool                 `json:"mastery_achieved"`
	CombinedConfidence float64              `json:"combined_confidence"`
	// AdaptiveReason is a human-readable account of what the turn
	// changed: band movement, streak progress, mastery unlock.
	AdaptiveReason string `json:"adaptive_reason"`
	// UnlockedLevel is the level opened this turn, 0 if none.
	UnlockedLevel int `json:"unlocked_level,omitempty"`
}

// Engine is the per-turn orchestrator. It holds no session state of its
// own: everything mutable lives in the knowledge.State the caller
// supplies, so distinct sessions can run through one Engine in
// parallel. Calls against a single State must be serialized by the
// caller.
type Engine struct {
	gw  *gateway.Gateway
	tun Tunables
	log *zap.Logger
}

// New creates an Engine over a gateway.
func New(gw *gateway.Gateway, tun Tunables, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{gw: gw, tun: tun, log: log}
}

// ProcessInteraction runs one full turn: log the answer, update the
// Bayesian estimate, consult the sequence model (or its fallback), fuse
// the two, pick the next band, and advance the streak/unlock machine.
// It never fails for valid input; a skill the state has not seen before
// is lazily initialized, not an error.
func (e *Engine) ProcessInteraction(ctx context.Context, state *knowledge.State, skillID string, correct bool, responseTime *float64) Decision {
	state.Append(skillID, correct, responseTime)

	params, ok := state.BKTBySkill[skillID]
	if !ok {
		var o *bkt.Overrides
		if ov, found := e.tun.BKTOverrides[skillID]; found {
			o = &ov
		}
		params = bkt.Init(o)
	}
	params = bkt.Update(params, correct)
	state.BKTBySkill[skillID] = params

	pred := e.gw.PredictOrFallback(ctx, projectSteps(state.Log))
	state.Sequence = knowledge.SequenceState{
		Hidden:       pred.HiddenState,
		SkillMastery: pred.SkillMastery,
		Confidence:   pred.Confidence,
	}

	seqMastery, ok := pred.SkillMastery[skillID]
	if !ok {
		// Skill outside the sequence model's tracked set: neutral.
		seqMastery = 0.5
	}
	confidence := e.tun.BKTWeight*params.PL + e.tun.SequenceWeight*seqMastery
	state.CombinedConfidence = confidence

	prevBand := state.CurrentDifficulty
	nextBand := e.selectBand(confidence)
	state.CurrentDifficulty = nextBand

	switch {
	case !correct:
		state.ConsecutiveCorrectAtLevel = 0
	case nextBand >= prevBand:
		state.ConsecutiveCorrectAtLevel++
	}
	// A correct answer while dropping a band neither counts toward the
	// streak nor resets it.

	unlocked := 0
	masteredNow := false
	if state.ConsecutiveCorrectAtLevel >= e.tun.StreakTarget && confidence >= state.MasteryThreshold {
		state.MasteryAchieved = true
		masteredNow = true
		unlocked = state.UnlockNextLevel()
		state.ConsecutiveCorrectAtLevel = 0
	}

	decision := Decision{
		NextDifficulty:     nextBand,
		MasteryAchieved:    state.MasteryAchieved,
		CombinedConfidence: confidence,
		AdaptiveReason:     reason(prevBand, nextBand, correct, state.ConsecutiveCorrectAtLevel, e.tun.StreakTarget, masteredNow, unlocked),
		UnlockedLevel:      unlocked,
	}

	e.log.Debug("interaction processed",
		zap.String("session_id", state.SessionID),
		zap.String("skill_id", skillID),
		zap.Bool("correct", correct),
		zap.Float64("p_l", params.PL),
		zap.Float64("combined_confidence", confidence),
		zap.Stringer("next_difficulty", nextBand),
		zap.String("reason", decision.AdaptiveReason))

	return decision
}

// selectBand maps the combined confidence onto a difficulty band.
// Cutoffs are half-open: a value exactly at a cutoff belongs to the
// band above it.
func (e *Engine) selectBand(confidence float64) knowledge.Difficulty {
	switch {
	case confidence < e.tun.VeryEasyMax:
		return knowledge.VeryEasy
	case confidence < e.tun.EasyMax:
		return knowledge.Easy
	case confidence < e.tun.ModerateMax:
		return knowledge.Moderate
	default:
		return knowledge.Difficult
	}
}

// reason composes the adaptation explanation: band change first, then
// streak progress, then mastery unlock.
func reason(prev, next knowledge.Difficulty, correct bool, streak, target int, mastered bool, unlocked int) string {
	var parts []string

	switch {
	case next > prev:
		parts = append(parts, fmt.Sprintf("difficulty raised from %s to %s", prev, next))
	case next < prev:
		parts = append(parts, fmt.Sprintf("difficulty lowered from %s to %s", prev, next))
	}

	switch {
	case mastered:
		// The streak was consumed by the unlock; report the unlock below.
	case !correct:
		parts = append(parts, "streak reset")
	default:
		parts = append(parts, fmt.Sprintf("streak %d/%d", streak, target))
	}

	if mastered {
		parts = append(parts, fmt.Sprintf("mastery achieved, level %d unlocked", unlocked))
	}

	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("difficulty held at %s", next))
	}
	return strings.Join(parts, "; ")
}

// projectSteps strips the interaction log down to the (skill, correct)
// pairs the sequence model consumes.
func projectSteps(log []knowledge.Interaction) []dkt.Step {
	steps := make([]dkt.Step, len(log))
	for i, in := range log {
		steps[i] = dkt.Step{SkillID: in.SkillID, Correct: in.Correct}
	}
	return steps
}
