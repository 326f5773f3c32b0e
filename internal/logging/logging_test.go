package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/salesdash/internal/logging"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logging.New(&buf, "JSON", slog.LevelInfo).Info("starting server", "port", 3000)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "starting server", entry["msg"])
	assert.Equal(t, float64(3000), entry["port"])
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New(&buf, "text", slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
