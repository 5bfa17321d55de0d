package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnreachable indicates the backend could not be reached or did not
// answer before the deadline.
var ErrUnreachable = errors.New("model backend unreachable")

// Backend defines the interface for text-generation model providers.
type Backend interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// GenerateRequest is one non-streaming completion request.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Temperature float64
	Timeout     time.Duration
	Stream      bool
}

// GenerateResponse holds the model output. Token counts are zero when the
// backend does not report them.
type GenerateResponse struct {
	Response        string
	PromptEvalCount int
	EvalCount       int
}

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("model backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("model backend returned status %d: %s", e.StatusCode, e.Body)
}
