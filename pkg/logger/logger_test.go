package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(WARNING, buf)

	l.Infof("skipped %d", 1)
	l.Warnf("kept %d", 2)
	l.With("kind", "raffle").Errorf("failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Equal(t, "kept 2", first["message"])
	require.Equal(t, "warn", first["level"])
	require.Equal(t, "raffle", second["kind"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, DEBUG, ParseLevel("DEBUG"))
	require.Equal(t, WARNING, ParseLevel("warn"))
	require.Equal(t, SILENCE, ParseLevel("silence"))
	require.Equal(t, INFO, ParseLevel("whatever"))
}
