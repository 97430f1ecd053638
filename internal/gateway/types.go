package gateway

// Wire shapes for the sidecar's prediction endpoint. Skills cross the
// boundary as encoder indices, not names: the two processes share the
// tracked-skill list through configuration.

// PredictRequest is the body of POST /v1/predict.
type PredictRequest struct {
	InteractionSequence []WireStep `json:"interaction_sequence"`
	StudentID           string     `json:"student_id,omitempty"`
}

// WireStep is one interaction as sent over the wire.
type WireStep struct {
	SkillID   int  `json:"skill_id"`
	IsCorrect bool `json:"is_correct"`
}

// PredictResponse is the sidecar's reply. SkillPredictions is indexed
// by encoder skill index.
type PredictResponse struct {
	SkillPredictions []float64 `json:"skill_predictions"`
	HiddenState      []float64 `json:"hidden_state"`
	Confidence       float64   `json:"confidence"`
	SequenceLength   int       `json:"sequence_length"`
}

// predictResponseSchema is the contract a reply must satisfy before the
// gateway trusts it. Anything else counts as a malformed response and
// triggers the fallback.
const predictResponseSchema = `{
	"type": "object",
	"required": ["skill_predictions", "hidden_state", "confidence", "sequence_length"],
	"properties": {
		"skill_predictions": {
			"type": "array",
			"items": {"type": "number", "minimum": 0, "maximum": 1}
		},
		"hidden_state": {
			"type": "array",
			"items": {"type": "number"}
		},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"sequence_length": {"type": "integer", "minimum": 0}
	}
}`
