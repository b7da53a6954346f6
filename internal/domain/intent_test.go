package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentCommand(t *testing.T) {
	tests := []struct {
		json string
		want Command
	}{
		{`{"intent":"navigate","action":"next"}`, Navigate{Action: NavNext}},
		{`{"intent":"navigate","action":"Previous"}`, Navigate{Action: NavPrevious}},
		{`{"intent":"set_timer","label":"pasta","duration":"10 minutes"}`, SetTimer{Label: "pasta", Duration: "10 minutes"}},
		{`{"intent":"pause"}`, Pause{}},
		{`{"intent":"RESUME"}`, Resume{}},
		{`{"intent":"ask","text":"how thin should it be?"}`, Ask{Text: "how thin should it be?"}},
	}

	for _, tt := range tests {
		t.Run(tt.json, func(t *testing.T) {
			got, err := ParseIntentJSON([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := IntentOf(got).Command()
			require.NoError(t, err)
			assert.Equal(t, tt.want, back)
		})
	}
}

func TestIntentCommandRejects(t *testing.T) {
	inputs := []string{
		`{"intent":"dance"}`,
		`{"intent":"navigate","action":"up"}`,
		`{"intent":"ask","text":"  "}`,
		`{}`,
		`not json`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseIntentJSON([]byte(in))
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestCommandKinds(t *testing.T) {
	kinds := map[string]Command{
		"navigate":  Navigate{},
		"set_timer": SetTimer{},
		"pause":     Pause{},
		"resume":    Resume{},
		"ask":       Ask{},
	}
	for want, c := range kinds {
		assert.Equal(t, want, c.Kind())
	}
}
