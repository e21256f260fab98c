package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := setup(&buf, "production", "warn")
	require.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	logger.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	logger.Error().Str("order_code", "ORDER-ABCDEF12").Msg("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, "cartorder", entry["service"])
	require.Equal(t, "ORDER-ABCDEF12", entry["order_code"])
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	setup(&buf, "development", "loud")
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
