// Package gateway is the synchronous boundary between the adaptive
// engine and the Sequence Engine, which may run as a separate process.
// Its one guarantee: the engine always receives a well-formed
// prediction, whether or not the model is reachable.
package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/adaptlearn/skilltrace/internal/dkt"
)

// Gateway wraps a Predictor with the fallback heuristic. Transport
// failures, timeouts and malformed payloads never cross this boundary.
type Gateway struct {
	predictor Predictor
	skills    []string
	log       *zap.Logger
}

// New builds a Gateway over a predictor. The skill list fixes which
// skills appear in fallback predictions; it should match the
// predictor's tracked-skill list.
func New(predictor Predictor, skills []string, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		predictor: predictor,
		skills:    append([]string(nil), skills...),
		log:       log,
	}
}

// PredictOrFallback returns the sequence model's prediction, or the
// deterministic heuristic when the model fails in any way. It never
// returns an error, and every returned mastery value and the confidence
// lie in [0,1].
func (g *Gateway) PredictOrFallback(ctx context.Context, steps []dkt.Step) dkt.Prediction {
	if g.predictor != nil {
		pred, err := g.predictor.Predict(ctx, steps)
		if err == nil {
			return sanitize(pred)
		}
		g.log.Warn("sequence engine prediction failed, using fallback",
			zap.Error(err),
			zap.Int("sequence_length", len(steps)))
	}
	return heuristicPrediction(g.skills, steps)
}

// sanitize clamps model outputs so numeric drift in a remote model can
// never push a probability outside [0,1].
func sanitize(p dkt.Prediction) dkt.Prediction {
	for skill, v := range p.SkillMastery {
		p.SkillMastery[skill] = clamp01(v)
	}
	p.Confidence = clamp01(p.Confidence)
	return p
}

func clamp01(v float64) float64 {
	if v != v || v < 0 { // NaN clamps low
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Local adapts an in-process dkt.Model to the Predictor interface, for
// deployments that do not run a sidecar.
type Local struct {
	Model *dkt.Model
}

// Predict runs the model in-process. It cannot fail.
func (l Local) Predict(_ context.Context, steps []dkt.Step) (dkt.Prediction, error) {
	return l.Model.Predict(steps), nil
}
