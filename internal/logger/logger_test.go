package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelNormal, &buf)

	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[INF] ")
	assert.Contains(t, buf.String(), "shown 2")

	log.SetLevel(LevelVerbose)
	log.Debug("now visible")
	assert.Contains(t, buf.String(), "[DBG] ")

	buf.Reset()
	log.SetLevel(LevelOff)
	log.Error("nothing")
	assert.Empty(t, buf.String())
}

func TestNamedSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := New(LevelNormal, &buf)
	child := root.Named("engine").Named("locks")

	child.Warn("held for %s", "2s")
	assert.Contains(t, buf.String(), "engine: locks: held for 2s")

	buf.Reset()
	root.SetLevel(LevelOff)
	child.Error("dropped")
	assert.Empty(t, buf.String())
	assert.Equal(t, LevelOff, child.GetLevel())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"", LevelNormal},
		{"info", LevelNormal},
		{"DEBUG", LevelVerbose},
		{"verbose", LevelVerbose},
		{"off", LevelOff},
		{"quiet", LevelOff},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
