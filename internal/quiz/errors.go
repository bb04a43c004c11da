package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredential means no reasoning-service credential is
	// configured and placeholder generation was not enabled.
	ErrMissingCredential = errors.New("missing LLM credential")

	// ErrValidation marks bad caller input: missing settings keys, unknown
	// question types, missing or non-READY sources.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes rejected input. It matches ErrValidation.
type ValidationError struct {
	Message     string
	NotReadyIDs []int
}

func (e *ValidationError) Error() string {
	if len(e.NotReadyIDs) == 0 {
		return e.Message
	}
	ids := make([]string, len(e.NotReadyIDs))
	for i, id := range e.NotReadyIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%s (not ready: %s)", e.Message, strings.Join(ids, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// GenerationError wraps a failed or unusable reasoning-service reply.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("quiz generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
