package nlu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cookalong/internal/domain"
)

func TestOfflineResponder(t *testing.T) {
	view := testView()

	tests := []struct {
		question string
		want     string
	}{
		{"what do I do now", "Step 2 of 2: Knead for ten minutes. This should take about 10 minutes."},
		{"how long on the timer?", "rest has 2 minutes 5 seconds left."},
		{"how much flour?", "dough: 300g flour, 3 eggs."},
		{"what tools do I need", "You'll need: rolling pin."},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, err := OfflineResponder{}.Answer(context.Background(), tt.question, view)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOfflineResponderNoTimers(t *testing.T) {
	view := testView()
	view.ActiveTimers = nil
	got, err := OfflineResponder{}.Answer(context.Background(), "any timers?", view)
	require.NoError(t, err)
	assert.Equal(t, "No timers are running.", got)

	view.ActiveTimers = []domain.TimerView{{Label: "sauce", Status: "paused", SecondsRemaining: 60}}
	got, err = OfflineResponder{}.Answer(context.Background(), "timer?", view)
	require.NoError(t, err)
	assert.Equal(t, "sauce has 1 minute left (paused).", got)
}
