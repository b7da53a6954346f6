package display

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cookalong/internal/domain"
)

type fakeSession struct {
	mu    sync.Mutex
	view  domain.SessionView
	err   error
	heard []string
}

func (f *fakeSession) State(context.Context) (domain.SessionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view, f.err
}

func (f *fakeSession) Say(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heard = append(f.heard, text)
	return "Step 2: Add the garlic.", nil
}

func sampleView() domain.SessionView {
	return domain.SessionView{
		SessionID:   "s-1",
		RecipeTitle: "Garlic Noodles",
		CurrentStep: 1,
		TotalSteps:  3,
		CurrentStepData: domain.Step{
			Number:        1,
			Instruction:   "Boil the noodles in salted water.",
			EstimatedTime: "8 minutes",
		},
		Timers: []domain.TimerView{
			{ID: "timer-1", Label: "noodles", Status: "running", SecondsTotal: 480, SecondsRemaining: 245},
			{ID: "timer-2", Label: "eggs", Status: "paused", SecondsTotal: 60, SecondsRemaining: 30},
			{ID: "timer-3", Label: "toast", Status: "completed", SecondsTotal: 60},
			{ID: "timer-4", Label: "sauce", Status: "cancelled", SecondsTotal: 60},
		},
		ActiveTimers: []domain.TimerView{
			{ID: "timer-1", Label: "noodles", Status: "running", SecondsTotal: 480, SecondsRemaining: 245},
		},
	}
}

func TestFmtSeconds(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{-3, "0s"},
		{0, "0s"},
		{9, "9s"},
		{245, "4m05s"},
		{3723, "1h02m03s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fmtSeconds(tt.in), "fmtSeconds(%d)", tt.in)
	}
}

func TestRenderStep(t *testing.T) {
	v := sampleView()
	out := renderStep(v, 80)
	assert.Contains(t, out, "Garlic Noodles")
	assert.Contains(t, out, "Step 1/3 (~8 minutes)")
	assert.Contains(t, out, "Boil the noodles in salted water.")
	assert.NotContains(t, out, "PAUSED")

	v.IsPaused = true
	assert.Contains(t, renderStep(v, 80), "PAUSED")
}

func TestRenderTimers(t *testing.T) {
	out := renderTimers(sampleView().Timers, 120)
	assert.Contains(t, out, "noodles: ")
	assert.Contains(t, out, "4m05s")
	assert.Contains(t, out, "30s paused")
	assert.Contains(t, out, "toast: DONE!")
	assert.NotContains(t, out, "sauce")

	assert.Empty(t, renderTimers(nil, 80))
	assert.Empty(t, renderTimers([]domain.TimerView{{Label: "x", Status: "cancelled"}}, 80))
}

func TestTitleStr(t *testing.T) {
	assert.Equal(t, "cookalong", titleStr(domain.SessionView{}))
	assert.Equal(t, "cookalong: noodles: 4m05s", titleStr(sampleView()))

	v := sampleView()
	v.ActiveTimers = nil
	assert.Equal(t, "cookalong: Garlic Noodles, step 1/3", titleStr(v))
}

func TestModelRendersState(t *testing.T) {
	sess := &fakeSession{view: sampleView()}
	m := newModel(context.Background(), sess, false)
	assert.Contains(t, m.View(), "loading session")

	msg := m.fetch()()
	updated, cmd := m.Update(msg)
	require.NotNil(t, cmd)

	view := updated.View()
	assert.Contains(t, view, "Step 1/3")
	assert.Contains(t, view, "noodles")
	assert.Contains(t, view, "q to quit")
}

func TestModelKeepsLastStateOnError(t *testing.T) {
	sess := &fakeSession{view: sampleView()}
	m := newModel(context.Background(), sess, false)

	updated, _ := m.Update(m.fetch()())
	updated, _ = updated.Update(stateMsg{err: errors.New("session not found")})

	view := updated.View()
	assert.Contains(t, view, "Step 1/3")
	assert.Contains(t, view, "session not found")
}

func TestModelSendsInput(t *testing.T) {
	sess := &fakeSession{view: sampleView()}
	m := newModel(context.Background(), sess, true)
	m.input.SetValue("  next  ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, updated.(model).input.Value())

	// The reply command runs Say once it is executed.
	reply := m.say("next")()
	assert.Equal(t, replyMsg{text: "Step 2: Add the garlic."}, reply)
	assert.Equal(t, []string{"next"}, sess.heard)

	_, cmd = updated.Update(reply)
	assert.NotNil(t, cmd)
}

func TestModelQuitKeys(t *testing.T) {
	m := newModel(context.Background(), &fakeSession{}, false)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	interactive := newModel(context.Background(), &fakeSession{}, true)
	updated, _ := interactive.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Equal(t, "q", updated.(model).input.Value(), "q is just a letter at the prompt")
}

func TestNotifyBeforeRunPrintsToStdout(t *testing.T) {
	u := NewUI(&fakeSession{}, false)
	assert.NoError(t, u.Notify(context.Background(), "hello"))
	assert.NoError(t, u.NotifyUrgent(context.Background(), strings.Repeat("x", 3)))
}
