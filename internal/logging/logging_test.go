package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewJSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(Options{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.Int("trials", 10))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, 10.0, entry["trials"])
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.ErrorContains(t, err, "log level")
}

func TestNewFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	var buf bytes.Buffer
	log, err := newLogger(Options{Console: true, File: path}, &buf)
	require.NoError(t, err)

	log.Info("monte carlo complete")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"monte carlo complete"`)
	assert.Contains(t, buf.String(), "monte carlo complete")
	assert.NotContains(t, buf.String(), `"msg"`)
}
