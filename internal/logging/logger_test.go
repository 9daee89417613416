package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabefollower/source1import/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	defer l.Close()
	l.Info("test message")
}

func TestLogger_ConsoleRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l, err := newLogger("", &stdout, &stderr, false)
	require.NoError(t, err)

	l.Info("converted %d", 3)
	l.Success("done")
	l.Warn("careful")
	l.Error("broken")
	l.Debug(false, "hidden")
	l.Debug(true, "shown")

	out := stdout.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "converted 3")
	assert.Contains(t, out, "[SUCCESS]")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "[DEBUG]")
	assert.Contains(t, out, "shown")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "broken", "errors go to stderr")

	assert.Contains(t, stderr.String(), "[ERROR]")
	assert.Contains(t, stderr.String(), "broken")
}

func TestLogger_WithAddsField(t *testing.T) {
	var stdout bytes.Buffer
	l, err := newLogger("", &stdout, &bytes.Buffer{}, false)
	require.NoError(t, err)

	l.With("asset", "brick.vtf").Info("hello")
	assert.Contains(t, stdout.String(), "brick.vtf")
}

func TestNewLogger_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vtfimport.log")
	l, err := newLogger(path, &bytes.Buffer{}, &bytes.Buffer{}, false)
	require.NoError(t, err)

	l.With("backend", "2013").Info("to file")
	l.Error("also to file")
	require.NoError(t, l.Close())
	l.Info("after close") // dropped, must not panic

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), "line: %s", sc.Text())
		entries = append(entries, m)
	}
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "to file", entries[0]["message"])
	assert.Equal(t, "2013", entries[0]["backend"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestFormatLevel(t *testing.T) {
	assert.Equal(t, "[WARN]", palette{}.formatLevel("warn"))
	assert.Equal(t, "[]", palette{}.formatLevel(nil))
	assert.Equal(t, ansi.warn+"[WARN]"+ansi.reset, ansi.formatLevel("warn"))
	assert.Equal(t, "[TRACE]", ansi.formatLevel("trace"), "unknown levels stay plain")
}

func TestLogger_Colored(t *testing.T) {
	var stdout bytes.Buffer
	l, err := newLogger("", &stdout, &bytes.Buffer{}, true)
	require.NoError(t, err)
	assert.True(t, l.Colored())
	assert.True(t, l.With("asset", "a.vtf").Colored())

	l.Warn("careful")
	assert.Contains(t, stdout.String(), ansi.warn+"[WARN]")

	plain, err := newLogger("", &bytes.Buffer{}, &bytes.Buffer{}, false)
	require.NoError(t, err)
	assert.False(t, plain.Colored())
}

func TestColorEnabled(t *testing.T) {
	assert.True(t, ColorEnabled(config.ColorAlways, nil))
	assert.False(t, ColorEnabled(config.ColorNever, os.Stdout))

	f, err := os.Create(filepath.Join(t.TempDir(), "plain"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ColorEnabled(config.ColorAuto, f), "regular files are not terminals")
	assert.False(t, ColorEnabled(config.ColorAuto, nil))
}

func TestColorEnabled_AutoHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(config.ColorAuto, os.Stdout))
}
