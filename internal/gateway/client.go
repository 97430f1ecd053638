package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/adaptlearn/skilltrace/internal/dkt"
)

// DefaultTimeout bounds a single prediction call. Past it the gateway
// falls back rather than blocking the turn.
const DefaultTimeout = 2 * time.Second

// Predictor is the boundary to the Sequence Engine, wherever it runs.
type Predictor interface {
	// Predict returns the sequence model's estimate for the full
	// interaction sequence. Implementations may fail; the Gateway is
	// what guarantees the caller always gets a result.
	Predict(ctx context.Context, steps []dkt.Step) (dkt.Prediction, error)
}

// ClientOptions configures the HTTP client to a sidecar deployment.
type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// Encoder fixes the skill index layout; it must match the
	// sidecar's tracked-skill list.
	Encoder *dkt.Encoder
	// StudentID is attached to requests when set.
	StudentID string

	HTTPClient *http.Client
}

// Client calls a separately-deployed Sequence Engine over HTTP and
// validates its replies before trusting them.
type Client struct {
	baseURL   string
	timeout   time.Duration
	enc       *dkt.Encoder
	studentID string
	hc        *http.Client
}

// NewClient builds a Client. BaseURL and Encoder are required.
func NewClient(opts ClientOptions) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL required")
	}
	if opts.Encoder == nil {
		return nil, fmt.Errorf("encoder required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		baseURL:   baseURL,
		timeout:   timeout,
		enc:       opts.Encoder,
		studentID: opts.StudentID,
		hc:        hc,
	}, nil
}

// Predict posts the projected interaction sequence to the sidecar.
// Untracked skills are dropped from the wire payload; the model could
// not learn from them anyway.
func (c *Client) Predict(ctx context.Context, steps []dkt.Step) (dkt.Prediction, error) {
	req := PredictRequest{
		InteractionSequence: make([]WireStep, 0, len(steps)),
		StudentID:           c.studentID,
	}
	for _, s := range steps {
		idx := c.enc.SkillIndex(s.SkillID)
		if idx < 0 {
			continue
		}
		req.InteractionSequence = append(req.InteractionSequence, WireStep{
			SkillID:   idx,
			IsCorrect: s.Correct,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return dkt.Prediction{}, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/predict", bytes.NewReader(body))
	if err != nil {
		return dkt.Prediction{}, &ErrEngineUnavailable{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return dkt.Prediction{}, &ErrEngineUnavailable{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dkt.Prediction{}, &ErrEngineUnavailable{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return dkt.Prediction{}, &ErrEngineUnavailable{
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	wire, err := decodeResponse(raw)
	if err != nil {
		return dkt.Prediction{}, err
	}
	if len(wire.SkillPredictions) != c.enc.NumSkills() {
		return dkt.Prediction{}, &ErrMalformedResponse{
			Body: raw,
			Err:  fmt.Errorf("got %d skill predictions, want %d", len(wire.SkillPredictions), c.enc.NumSkills()),
		}
	}

	mastery := make(map[string]float64, c.enc.NumSkills())
	for i, skill := range c.enc.Skills() {
		mastery[skill] = wire.SkillPredictions[i]
	}
	return dkt.Prediction{
		SkillMastery:   mastery,
		HiddenState:    wire.HiddenState,
		Confidence:     wire.Confidence,
		SequenceLength: wire.SequenceLength,
	}, nil
}

var (
	responseSchemaOnce sync.Once
	responseSchema     *jsonschema.Schema
	responseSchemaErr  error
)

// decodeResponse validates the raw reply against the prediction schema
// before decoding, so a half-broken sidecar can never leak garbage
// probabilities into the engine.
func decodeResponse(raw []byte) (*PredictResponse, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrMalformedResponse{Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := compiledResponseSchema()
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &ErrMalformedResponse{Body: raw, Err: err}
	}

	var wire PredictResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ErrMalformedResponse{Body: raw, Err: err}
	}
	return &wire, nil
}

func compiledResponseSchema() (*jsonschema.Schema, error) {
	responseSchemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(predictResponseSchema), &def); err != nil {
			responseSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://predict-response.json", def); err != nil {
			responseSchemaErr = err
			return
		}
		responseSchema, responseSchemaErr = c.Compile("schema://predict-response.json")
	})
	return responseSchema, responseSchemaErr
}
