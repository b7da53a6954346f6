package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrValidation        = errors.New("validation failed")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrPersistence       = errors.New("persistence failure")
	ErrTimerNotFound     = errors.New("timer not found")
	ErrInvalidTimerState = errors.New("invalid timer state")
	ErrStepOutOfRange    = errors.New("step out of range")
	ErrNotFound          = errors.New("not found")
)

// RecipeError describes why a recipe was rejected. It matches
// ErrValidation under errors.Is.
type RecipeError struct {
	Field  string
	Reason string
}

func (e *RecipeError) Error() string {
	return fmt.Sprintf("invalid recipe: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *RecipeError) Is(target error) bool {
	return target == ErrValidation
}
