package snapio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	m := New().WithIn(strings.NewReader("first\r\nsecond\nlast"))

	for _, want := range []string{"first", "second", "last"} {
		got, err := m.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := m.ReadLine()
	assert.Error(t, err)
}

func TestReadSecretFallsBackToLine(t *testing.T) {
	m := New().WithIn(strings.NewReader("hunter2\n"))
	got, err := m.ReadSecret()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestInteractiveOverride(t *testing.T) {
	m := New().WithIn(strings.NewReader("")).WithOut(&bytes.Buffer{})
	assert.False(t, m.IsInteractive())
	assert.True(t, m.ForceInteractive(true).IsInteractive())
}

func TestColorizeRespectsNoColor(t *testing.T) {
	m := New().WithOut(&bytes.Buffer{})
	assert.Equal(t, "x", m.NoColor().Bold("x"))
	assert.Equal(t, "\x1b[1mx\x1b[0m", m.ForceColor().Bold("x"))
}

func TestLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	m := New().WithOut(&out).WithErr(&errOut).NoColor()
	l := NewLogger(m).WithFormat(LogFormatTagged)

	l.Debug("hidden %d", 1)
	l.Info("shown %d", 2)
	l.Error("bad")
	assert.Equal(t, "[INFO] shown 2\n", out.String())
	assert.Equal(t, "[ERROR] bad\n", errOut.String())

	l.WithLevel(LevelDebug).Debug("trace")
	assert.Contains(t, errOut.String(), "[DEBUG] trace")
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.log")
	l := NewFileLogger(path, 1)
	l.Warning("disk %s", "full")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[WARN]")
	assert.Contains(t, string(data), "disk full")
}
