package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"), "desconocido cae en info")
}

func TestFromWriter_ComponenteYNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.FromWriter(&buf, "warn").Component("applicator")

	log.Info().Msg("no se escribe")
	assert.Zero(t, buf.Len())

	log.Warn().Str("movement_id", "mov-1").Msg("reintento")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "applicator", entry["component"])
	assert.Equal(t, "mov-1", entry["movement_id"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("descartado") })
}
