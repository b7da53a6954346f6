package nlu

import (
	"context"
	"errors"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Classifier = (*FallbackClassifier)(nil)
	_ domain.Responder  = (*FallbackResponder)(nil)
)

// FallbackClassifier tries Primary and falls back to Secondary when it
// fails. Empty utterances are not retried.
type FallbackClassifier struct {
	Primary   domain.Classifier
	Secondary domain.Classifier
	Log       *logger.Logger
}

// Classify implements domain.Classifier.
func (f *FallbackClassifier) Classify(ctx context.Context, text string, state domain.SessionView) (domain.Command, error) {
	cmd, err := f.Primary.Classify(ctx, text, state)
	if err == nil || errors.Is(err, errEmptyUtterance) {
		return cmd, err
	}
	f.Log.Warn("classifier failed, using fallback: %v", err)
	return f.Secondary.Classify(ctx, text, state)
}

// FallbackResponder tries Primary and falls back to Secondary when it
// fails.
type FallbackResponder struct {
	Primary   domain.Responder
	Secondary domain.Responder
	Log       *logger.Logger
}

// Answer implements domain.Responder.
func (f *FallbackResponder) Answer(ctx context.Context, question string, state domain.SessionView) (string, error) {
	answer, err := f.Primary.Answer(ctx, question, state)
	if err == nil {
		return answer, nil
	}
	f.Log.Warn("responder failed, using fallback: %v", err)
	return f.Secondary.Answer(ctx, question, state)
}
