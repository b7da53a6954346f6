package nlu

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hammamikhairi/cookalong/internal/domain"
)

// Compile-time interface check.
var _ domain.Responder = OfflineResponder{}

// OfflineResponder answers questions from the session state alone. It is
// used when no language model is configured.
type OfflineResponder struct{}

// Answer picks a canned reply based on what the question is about.
func (OfflineResponder) Answer(_ context.Context, question string, state domain.SessionView) (string, error) {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "timer") || strings.Contains(q, "how long left"):
		return describeTimers(state.ActiveTimers), nil
	case strings.Contains(q, "ingredient") || strings.Contains(q, "how much") || strings.Contains(q, "how many"):
		return describeIngredients(state.Recipe), nil
	case strings.Contains(q, "tool") || strings.Contains(q, "equipment"):
		if state.Recipe == nil || len(state.Recipe.Tools) == 0 {
			return "This recipe doesn't list any tools.", nil
		}
		return "You'll need: " + strings.Join(state.Recipe.Tools, ", ") + ".", nil
	}

	reply := fmt.Sprintf("Step %d of %d: %s", state.CurrentStep, state.TotalSteps, state.CurrentStepData.Instruction)
	if est := state.CurrentStepData.EstimatedTime; est != "" {
		reply += fmt.Sprintf(" This should take about %s.", est)
	}
	return reply, nil
}

func describeTimers(timers []domain.TimerView) string {
	if len(timers) == 0 {
		return "No timers are running."
	}
	parts := make([]string, 0, len(timers))
	for _, t := range timers {
		s := fmt.Sprintf("%s has %s left", t.Label, domain.FormatSeconds(t.SecondsRemaining))
		if t.Status == domain.TimerPaused.String() {
			s += " (paused)"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ") + "."
}

func describeIngredients(r *domain.Recipe) string {
	if r == nil || len(r.Ingredients) == 0 {
		return "This recipe doesn't list its ingredients."
	}
	groups := make([]string, 0, len(r.Ingredients))
	for g := range r.Ingredients {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, fmt.Sprintf("%s: %s", g, strings.Join(r.Ingredients[g], ", ")))
	}
	return strings.Join(parts, "; ") + "."
}
