package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	log, err := New(path, "warn")
	require.NoError(t, err)

	log.Info("dropped below level %d", 1)
	log.With("hold_id", "abc").Warn("hold %s expired", "abc")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "hold abc expired", entry["msg"])
	assert.Equal(t, "abc", entry["hold_id"])
}

func TestLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New("", "loud")
	require.NoError(t, err)
	assert.Equal(t, "info", log.entry.Logger.GetLevel().String())
}
