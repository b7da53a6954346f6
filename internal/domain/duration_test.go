package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1:30", 90},
		{"0:45", 45},
		{"1:02:03", 3723},
		{"5 minutes", 300},
		{"90 seconds", 90},
		{"2 minutes 30 seconds", 150},
		{"1 hour", 3600},
		{"1 hour and 15 minutes", 4500},
		{"1.5 hours", 5400},
		{"2m", 120},
		{"5m30s", 330},
		{"1h30m", 5400},
		{"10 mins", 600},
		{"45 secs", 45},
		{"  5 Minutes  ", 300},
		{"a minute", 60},
		{"two minutes", 120},
		{"forty-five seconds", 45},
		{"half an hour", 1800},
		{"a minute and a half", 90},
		{"for about 20 minutes", 1200},
		{"1 hour 30", 5400},
		{"2 minutes 15", 135},
		{"168:00:00", 604800},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSeconds(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSecondsRejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"soon",
		"5",
		"5 apples",
		"0 minutes",
		"0:00",
		"0.1 seconds",
		"30 hours 200 hours",
		"-5 seconds",
		"18446744074 seconds",
		"9223372036854775807 hours",
		"307445734561825861:00",
		"99999999999999999999:00",
		"168:00:01",
		"30 seconds 5",
		"5 10 minutes",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSeconds(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDuration), "got %v", err)
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0 seconds", FormatSeconds(0))
	assert.Equal(t, "1 second", FormatSeconds(1))
	assert.Equal(t, "5 minutes", FormatSeconds(300))
	assert.Equal(t, "1 minute 30 seconds", FormatSeconds(90))
	assert.Equal(t, "1 hour 1 second", FormatSeconds(3601))
}
