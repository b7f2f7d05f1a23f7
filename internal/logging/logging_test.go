package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, SetupWriter("warn", "json", &buf))

	log.Info().Msg("hidden")
	log.Warn().Str("node", "web").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "web", entry["node"])
	assert.Equal(t, "shown", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetupConsole(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, SetupWriter("DEBUG", "console", &buf))
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestSetupRejectsBadInput(t *testing.T) {
	assert.Error(t, SetupWriter("loud", "json", &bytes.Buffer{}))
	assert.Error(t, SetupWriter("info", "xml", &bytes.Buffer{}))
}
