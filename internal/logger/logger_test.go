package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	log.Debug().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "v", line["k"])
	assert.Equal(t, "medidesk", line["service"])
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "json", &buf)
	log.Info().Msg("skipped")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("loud", "", &buf)
	log.Debug().Msg("skipped")
	assert.Zero(t, buf.Len())
	log.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "console", &buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotEqual(t, byte('{'), buf.Bytes()[0])
}
