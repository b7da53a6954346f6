package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func TestNewTimer(t *testing.T) {
	tm, err := NewTimer("timer-1", 1, "Boil water", "5 minutes", epoch)
	require.NoError(t, err)

	assert.Equal(t, 300, tm.DurationSeconds)
	assert.Equal(t, TimerRunning, tm.Status)
	assert.Equal(t, epoch, tm.StartedAt)
	assert.Equal(t, 300, tm.SecondsRemaining(epoch))

	_, err = NewTimer("timer-2", 2, "Nothing", "", epoch)
	assert.True(t, errors.Is(err, ErrInvalidDuration))
}

func TestNewTimerRejectsOversizedDurations(t *testing.T) {
	for _, d := range []string{"18446744074 seconds", "307445734561825861:00", "169 hours"} {
		tm, err := NewTimer("timer-1", 1, "Stock", d, epoch)
		assert.Nil(t, tm, d)
		assert.True(t, errors.Is(err, ErrInvalidDuration), "%s: got %v", d, err)
	}

	tm, err := NewTimer("timer-1", 1, "Stock", "168 hours", epoch)
	require.NoError(t, err)
	assert.Equal(t, MaxTimerDuration, tm.Duration())
	assert.Equal(t, TimerRunning, tm.StatusAt(epoch.Add(time.Hour)))
}

func TestTimerBlankLabel(t *testing.T) {
	tm, err := NewTimer("timer-1", 1, "  ", "1 minute", epoch)
	require.NoError(t, err)
	assert.Equal(t, "Timer", tm.Label)
}

func TestTimerRemainingRecomputed(t *testing.T) {
	tm, err := NewTimer("timer-1", 1, "Rice", "90 seconds", epoch)
	require.NoError(t, err)

	tests := []struct {
		name   string
		at     time.Duration
		want   int
		status TimerStatus
	}{
		{"at start", 0, 90, TimerRunning},
		{"half a second in", 500 * time.Millisecond, 90, TimerRunning},
		{"one second in", time.Second, 89, TimerRunning},
		{"a minute in", time.Minute, 30, TimerRunning},
		{"at the end", 90 * time.Second, 0, TimerCompleted},
		{"long after", time.Hour, 0, TimerCompleted},
		{"clock behind start", -time.Minute, 90, TimerRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := epoch.Add(tt.at)
			assert.Equal(t, tt.want, tm.SecondsRemaining(now))
			assert.Equal(t, tt.status, tm.StatusAt(now))
		})
	}
	// Reads never change the stored record.
	assert.Equal(t, TimerRunning, tm.Status)
}

func TestTimerPauseResume(t *testing.T) {
	tm, err := NewTimer("timer-1", 1, "Sauce", "10 minutes", epoch)
	require.NoError(t, err)

	pausedAt := epoch.Add(3 * time.Minute)
	require.NoError(t, tm.Pause(pausedAt))
	assert.Equal(t, TimerPaused, tm.Status)
	assert.True(t, tm.StartedAt.IsZero())
	assert.Equal(t, 7*time.Minute, tm.Remaining)

	// Time passing while paused does not count.
	later := pausedAt.Add(20 * time.Minute)
	assert.Equal(t, 420, tm.SecondsRemaining(later))

	require.NoError(t, tm.Resume(later))
	assert.Equal(t, TimerRunning, tm.Status)
	assert.Equal(t, 420, tm.SecondsRemaining(later))
	assert.Equal(t, 360, tm.SecondsRemaining(later.Add(time.Minute)))
	assert.Equal(t, TimerCompleted, tm.StatusAt(later.Add(7*time.Minute)))
}

func TestTimerPauseThenResumeImmediately(t *testing.T) {
	tm, err := NewTimer("timer-1", 1, "Eggs", "5 minutes", epoch)
	require.NoError(t, err)

	now := epoch.Add(1234 * time.Millisecond)
	before := tm.RemainingAt(now)
	require.NoError(t, tm.Pause(now))
	require.NoError(t, tm.Resume(now))
	assert.Equal(t, before, tm.RemainingAt(now))
}

func TestTimerTransitions(t *testing.T) {
	newTimer := func(t *testing.T) *Timer {
		tm, err := NewTimer("timer-1", 1, "Oven", "1 minute", epoch)
		require.NoError(t, err)
		return tm
	}

	t.Run("resume running", func(t *testing.T) {
		tm := newTimer(t)
		assert.True(t, errors.Is(tm.Resume(epoch), ErrInvalidTimerState))
	})

	t.Run("pause paused", func(t *testing.T) {
		tm := newTimer(t)
		require.NoError(t, tm.Pause(epoch))
		assert.True(t, errors.Is(tm.Pause(epoch), ErrInvalidTimerState))
	})

	t.Run("pause expired", func(t *testing.T) {
		tm := newTimer(t)
		assert.True(t, errors.Is(tm.Pause(epoch.Add(2*time.Minute)), ErrInvalidTimerState))
	})

	t.Run("cancel paused", func(t *testing.T) {
		tm := newTimer(t)
		require.NoError(t, tm.Pause(epoch))
		require.NoError(t, tm.Cancel(epoch))
		assert.Equal(t, TimerCancelled, tm.Status)
		assert.Equal(t, 0, tm.SecondsRemaining(epoch))
	})

	t.Run("cancel is final", func(t *testing.T) {
		tm := newTimer(t)
		require.NoError(t, tm.Cancel(epoch))
		assert.True(t, errors.Is(tm.Cancel(epoch), ErrInvalidTimerState))
		assert.True(t, errors.Is(tm.Resume(epoch), ErrInvalidTimerState))
		assert.True(t, errors.Is(tm.Pause(epoch), ErrInvalidTimerState))
	})

	t.Run("cancel completed", func(t *testing.T) {
		tm := newTimer(t)
		assert.True(t, errors.Is(tm.Cancel(epoch.Add(time.Minute)), ErrInvalidTimerState))
	})
}

func TestTimerSettle(t *testing.T) {
	tm, err := NewTimer("timer-1", 1, "Bread", "30 seconds", epoch)
	require.NoError(t, err)

	assert.False(t, tm.Settle(epoch.Add(10*time.Second)))
	assert.Equal(t, TimerRunning, tm.Status)

	assert.True(t, tm.Settle(epoch.Add(30*time.Second)))
	assert.Equal(t, TimerCompleted, tm.Status)
	assert.False(t, tm.Settle(epoch.Add(time.Minute)))
}

func TestTimerStatusJSON(t *testing.T) {
	tm, err := NewTimer("timer-1", 1, "Tea", "3 minutes", epoch)
	require.NoError(t, err)
	require.NoError(t, tm.Pause(epoch.Add(time.Minute)))

	b, err := json.Marshal(tm)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"paused"`)
	assert.NotContains(t, string(b), `"started_at"`)

	var back Timer
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, *tm, back)

	var st TimerStatus
	assert.Error(t, st.UnmarshalText([]byte("boiling")))
}
