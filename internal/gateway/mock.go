package gateway

import (
	"context"
	"sync"

	"github.com/adaptlearn/skilltrace/internal/dkt"
)

// MockResponse is a canned reply for the MockPredictor.
type MockResponse struct {
	Prediction dkt.Prediction
	Err        error
}

// MockPredictor is a deterministic Predictor for testing. It returns
// canned responses in FIFO order and records all requests.
type MockPredictor struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     [][]dkt.Step
}

// NewMockPredictor creates a MockPredictor with the given canned
// responses.
func NewMockPredictor(responses ...MockResponse) *MockPredictor {
	return &MockPredictor{responses: responses}
}

// Predict returns the next canned response, or ErrEngineUnavailable
// when the queue is empty.
func (m *MockPredictor) Predict(_ context.Context, steps []dkt.Step) (dkt.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, append([]dkt.Step(nil), steps...))

	if len(m.responses) == 0 {
		return dkt.Prediction{}, &ErrEngineUnavailable{}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return dkt.Prediction{}, resp.Err
	}
	return resp.Prediction, nil
}
