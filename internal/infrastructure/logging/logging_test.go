package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_JSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	var buf bytes.Buffer

	logger := Configure(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestConfigure_TextAndLevelChange(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	var buf bytes.Buffer

	logger := Configure(&buf, "nonsense", "text")
	logger.Debug("before")
	assert.Empty(t, buf.String())

	SetLevel("DEBUG")
	logger.Debug("after")
	assert.Contains(t, buf.String(), "msg=after")
}
