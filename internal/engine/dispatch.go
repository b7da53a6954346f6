package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/cookalong/internal/domain"
)

// ErrNoResponder is returned for Ask commands when no responder is set.
var ErrNoResponder = errors.New("no responder configured")

// CommandResult is what a caller gets back after applying a command.
type CommandResult struct {
	Response     string             `json:"response"`
	CurrentStep  int                `json:"current_step"`
	TotalSteps   int                `json:"total_steps"`
	ActiveTimers []domain.TimerView `json:"active_timers"`
	IsPaused     bool               `json:"is_paused"`
	// Alerts names timers that were found complete while applying the
	// command.
	Alerts []string `json:"alerts,omitempty"`
}

// ApplyCommand executes one classified command against a session.
// Ask never mutates: the question goes to the responder and its answer is
// relayed as is.
func (m *Manager) ApplyCommand(ctx context.Context, id string, cmd domain.Command) (CommandResult, error) {
	if ask, ok := cmd.(domain.Ask); ok {
		return m.ask(ctx, id, ask)
	}

	var response string
	op := func(s *domain.Session, now time.Time) error {
		switch c := cmd.(type) {
		case domain.Navigate:
			st, err := s.Navigate(c.Action)
			if err != nil {
				return err
			}
			response = fmt.Sprintf("Step %d: %s", s.CurrentStep, st.Instruction)
		case domain.SetTimer:
			t, err := s.AddTimer(c.Label, c.Duration, now)
			if err != nil {
				return err
			}
			response = fmt.Sprintf("Timer set: %s for %s.", t.Label, domain.FormatSeconds(t.DurationSeconds))
		case domain.Pause:
			s.Pause()
			response = "Session paused. Say 'resume' or 'continue' when you're ready."
		case domain.Resume:
			s.Resume()
			response = fmt.Sprintf("Resuming. Step %d: %s", s.CurrentStep, s.Current().Instruction)
		case nil:
			return fmt.Errorf("%w: missing command", domain.ErrValidation)
		default:
			return fmt.Errorf("%w: unsupported command %T", domain.ErrValidation, c)
		}
		return nil
	}

	s, done, err := m.mutate(ctx, "engine.ApplyCommand", id, op)
	if err != nil {
		return CommandResult{}, err
	}
	m.log.Debug("session %s: applied %s", id, cmd.Kind())

	res := commandResult(s, response, m.now())
	for _, t := range done {
		res.Alerts = append(res.Alerts, t.Label+" is done")
	}
	return res, nil
}

func (m *Manager) ask(ctx context.Context, id string, ask domain.Ask) (CommandResult, error) {
	s, err := m.current(ctx, id)
	if err != nil {
		return CommandResult{}, err
	}
	if m.responder == nil {
		return CommandResult{}, ErrNoResponder
	}

	now := m.now()
	answer, err := m.responder.Answer(ctx, ask.Text, s.View(now))
	if err != nil {
		return CommandResult{}, fmt.Errorf("answering question: %w", err)
	}
	return commandResult(s, answer, now), nil
}

func commandResult(s *domain.Session, response string, now time.Time) CommandResult {
	return CommandResult{
		Response:     response,
		CurrentStep:  s.CurrentStep,
		TotalSteps:   s.TotalSteps(),
		ActiveTimers: s.ActiveTimers(now),
		IsPaused:     s.Paused,
	}
}
