package planner

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a generation produced no data.
type ErrorKind string

const (
	// KindTransport covers connectivity, credential rejection and service-side errors.
	KindTransport ErrorKind = "TRANSPORT_ERROR"
	// KindMalformed means the response text is not a JSON array of objects.
	KindMalformed ErrorKind = "MALFORMED_PAYLOAD"
	// KindShapeMismatch means the JSON parsed but broke the response schema.
	KindShapeMismatch ErrorKind = "SHAPE_MISMATCH"
)

// GenerationError is returned by every Planner operation that fails.
type GenerationError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether asking again may help. Every kind qualifies
// since a model that ignored the schema once can comply on the next call.
func (e *GenerationError) IsRetryable() bool {
	switch e.Kind {
	case KindTransport, KindMalformed, KindShapeMismatch:
		return true
	default:
		return false
	}
}

// KindOf returns the kind of a GenerationError anywhere in err's chain, or ""
// when err is nil or of another type.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}
