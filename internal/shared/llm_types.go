package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// Outcome is the coarse result of a generation, used as a metrics label.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeEmpty Outcome = "empty"
	OutcomeError Outcome = "error"
)

// GenerationMeta holds operational metadata for one generation round trip.
type GenerationMeta struct {
	Operation string
	Usage     TokenUsage
	Latency   time.Duration
	Outcome   Outcome
	// ErrorKind is set when Outcome is OutcomeError.
	ErrorKind string
}
