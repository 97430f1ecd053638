// Package knowledge defines the mutable per-session learner state the
// adaptive engine reads and writes on every turn. The state is owned by
// the caller: the engine holds no process-wide state, and callers must
// serialize turns against a single State.
package knowledge

import (
	"github.com/google/uuid"

	"github.com/adaptlearn/skilltrace/internal/bkt"
)

// DefaultMasteryThreshold is the combined-confidence bar for mastery.
const DefaultMasteryThreshold = 0.8

// Interaction is one immutable log record: appended on every turn,
// never mutated or deleted. The ordered log is what the sequence model
// consumes on every prediction.
type Interaction struct {
	SkillID string `json:"skill_id"`
	Correct bool   `json:"correct"`
	// ResponseTime is seconds taken to answer; nil when the caller did
	// not measure it.
	ResponseTime *float64 `json:"response_time,omitempty"`
	// Ordinal is the 0-based position in the session.
	Ordinal int `json:"ordinal"`
}

// SequenceState caches the last sequence-model prediction. The hidden
// vector is opaque: it has no meaning outside the model that produced
// it, and it round-trips through the gateway unchanged except when a
// prediction call explicitly updates it.
type SequenceState struct {
	Hidden       []float64          `json:"hidden,omitempty"`
	SkillMastery map[string]float64 `json:"skill_mastery,omitempty"`
	Confidence   float64            `json:"confidence"`
}

// State aggregates everything the engine tracks for one learner ×
// session. All fields serialize to JSON without loss so the caller can
// persist the snapshot however it likes.
type State struct {
	SessionID string `json:"session_id"`

	BKTBySkill map[string]bkt.Params `json:"bkt_by_skill"`
	Log        []Interaction         `json:"interaction_log"`
	Sequence   SequenceState         `json:"sequence_state"`

	CombinedConfidence float64    `json:"combined_confidence"`
	CurrentDifficulty  Difficulty `json:"current_difficulty"`

	ConsecutiveCorrectAtLevel int     `json:"consecutive_correct_at_level"`
	MasteryThreshold          float64 `json:"mastery_threshold"`
	MasteryAchieved           bool    `json:"mastery_achieved"`

	// UnlockedLevels is monotonically non-shrinking. Level 1 is
	// unlocked from the start.
	UnlockedLevels []int `json:"unlocked_levels"`
}

// NewState creates a fresh session state. A zero or out-of-range
// threshold falls back to the default; callers validating configuration
// up front will never hit the fallback.
func NewState(masteryThreshold float64) *State {
	if masteryThreshold <= 0 || masteryThreshold > 1 {
		masteryThreshold = DefaultMasteryThreshold
	}
	return &State{
		SessionID:         uuid.NewString(),
		BKTBySkill:        make(map[string]bkt.Params),
		CurrentDifficulty: Moderate,
		MasteryThreshold:  masteryThreshold,
		UnlockedLevels:    []int{1},
	}
}

// Append records one interaction at the end of the log and returns it.
func (s *State) Append(skillID string, correct bool, responseTime *float64) Interaction {
	in := Interaction{
		SkillID:      skillID,
		Correct:      correct,
		ResponseTime: responseTime,
		Ordinal:      len(s.Log),
	}
	s.Log = append(s.Log, in)
	return in
}

// HasLevel reports whether a level has been unlocked.
func (s *State) HasLevel(level int) bool {
	for _, l := range s.UnlockedLevels {
		if l == level {
			return true
		}
	}
	return false
}

// UnlockNextLevel adds the next integer level to the unlocked set and
// returns it. The set never shrinks.
func (s *State) UnlockNextLevel() int {
	next := 1
	for _, l := range s.UnlockedLevels {
		if l >= next {
			next = l + 1
		}
	}
	s.UnlockedLevels = append(s.UnlockedLevels, next)
	return next
}
