package gateway

import (
	"encoding/json"
	"fmt"
)

// ErrEngineUnavailable indicates the sequence-model process is down,
// unreachable, or timed out.
type ErrEngineUnavailable struct {
	Err error
}

func (e *ErrEngineUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sequence engine unavailable: %v", e.Err)
	}
	return "sequence engine unavailable"
}

func (e *ErrEngineUnavailable) Unwrap() error { return e.Err }

// ErrMalformedResponse indicates the sequence-model process answered,
// but with a payload that does not match the prediction contract.
type ErrMalformedResponse struct {
	Body json.RawMessage
	Err  error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed prediction response: %v", e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }
