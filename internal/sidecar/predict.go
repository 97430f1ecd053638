package sidecar

import (
	"encoding/json"
	"net/http"

	"github.com/adaptlearn/skilltrace/internal/dkt"
	"github.com/adaptlearn/skilltrace/internal/gateway"
)

// handlePredict runs the full interaction sequence through the model.
// The wire format carries skills as encoder indices; indices outside
// the tracked range are ignored rather than rejected, mirroring how the
// model treats untracked skills.
func handlePredict(model *dkt.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gateway.PredictRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		skills := model.Encoder().Skills()
		steps := make([]dkt.Step, 0, len(req.InteractionSequence))
		for _, ws := range req.InteractionSequence {
			if ws.SkillID < 0 || ws.SkillID >= len(skills) {
				continue
			}
			steps = append(steps, dkt.Step{SkillID: skills[ws.SkillID], Correct: ws.IsCorrect})
		}

		pred := model.Predict(steps)

		resp := gateway.PredictResponse{
			SkillPredictions: make([]float64, len(skills)),
			HiddenState:      pred.HiddenState,
			Confidence:       pred.Confidence,
			SequenceLength:   pred.SequenceLength,
		}
		for i, skill := range skills {
			resp.SkillPredictions[i] = pred.SkillMastery[skill]
		}
		if resp.HiddenState == nil {
			resp.HiddenState = []float64{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
