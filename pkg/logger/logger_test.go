package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sync/pkg/logger"
)

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Service: "inventario-sync", Output: &buf})

	comp := l.Component("export")
	comp.Info().Str("file", "inventory_warehouse_7.csv").Msg("listo")
	l.Debug().Msg("no debe salir")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug queda filtrado con nivel info")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "inventario-sync", entry["service"])
	assert.Equal(t, "export", entry["component"])
	assert.Equal(t, "listo", entry["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("WARNING"))
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel(" debug "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
}
