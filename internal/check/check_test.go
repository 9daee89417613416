package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabefollower/source1import/internal/backend"
	"github.com/gabefollower/source1import/internal/config"
)

type recordLogger struct{ lines []string }

func (l *recordLogger) add(level, format string, args ...interface{}) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordLogger) Info(f string, a ...interface{})    { l.add("INFO", f, a...) }
func (l *recordLogger) Success(f string, a ...interface{}) { l.add("OK", f, a...) }
func (l *recordLogger) Warn(f string, a ...interface{})    { l.add("WARN", f, a...) }
func (l *recordLogger) Error(f string, a ...interface{})   { l.add("ERROR", f, a...) }
func (l *recordLogger) Debug(v bool, f string, a ...interface{}) {
	if v {
		l.add("DEBUG", f, a...)
	}
}

func (l *recordLogger) contains(s string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func fakeExe(t *testing.T, dir, rel string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not meaningful on Windows")
	}
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestRunCheck_ListsCandidates(t *testing.T) {
	dir := t.TempDir()
	fakeExe(t, dir, "2013/vtf2tga")

	cfg := config.DefaultConfig()
	cfg.CheckOnly = true
	cfg.BaseDir = dir
	cfg.Backends = []string{"2013/vtf2tga", "csgo/vtf2tga"}

	log := &recordLogger{}
	usable := RunCheck(&cfg, log)

	assert.Equal(t, 1, usable)
	assert.True(t, log.contains("OK   0. [2013]"), log.lines)
	assert.True(t, log.contains("WARN   1. [csgo] csgo/vtf2tga"), log.lines)
	assert.True(t, log.contains("Concurrency:"))
	assert.True(t, log.contains("WARN Forced backend 1 is not usable"), log.lines)
}

func TestRunCheck_ForcedBackendByPosition(t *testing.T) {
	dir := t.TempDir()
	fakeExe(t, dir, "csgo/vtf2tga")
	fakeExe(t, dir, "tf2/vtf2tga")

	cfg := config.DefaultConfig()
	cfg.BaseDir = dir
	cfg.Backends = []string{"2013/vtf2tga", "csgo/vtf2tga", "tf2/vtf2tga"}

	log := &recordLogger{}
	assert.Equal(t, 2, RunCheck(&cfg, log))
	assert.True(t, log.contains("Forced backend 1. [csgo]"), log.lines)
}

func TestRunCheck_NoUsableBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	cfg.Backends = []string{"missing/vtf2tga"}

	log := &recordLogger{}
	assert.Zero(t, RunCheck(&cfg, log))
	assert.True(t, log.contains("ERROR No usable backend"))
}

func TestCheckDeps(t *testing.T) {
	dir := t.TempDir()
	exe := fakeExe(t, dir, "bin/2013/vtf2tga")

	cfg := config.DefaultConfig()
	cfg.InputDir = t.TempDir()
	cfg.Backends = []string{filepath.Join(dir, "nope"), exe}

	backends, err := CheckDeps(&cfg)
	require.NoError(t, err)
	require.Len(t, backends, 1)
	assert.Equal(t, "2013", backends[0].Tag)
	assert.Equal(t, 1, backends[0].Priority)
}

func TestCheckDeps_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.InputDir = filepath.Join(t.TempDir(), "missing")
	_, err := CheckDeps(&cfg)
	assert.True(t, errors.Is(err, ErrInputMissing))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.InputDir = file
	_, err = CheckDeps(&cfg)
	assert.True(t, errors.Is(err, ErrInputNotDir))

	cfg.InputDir = t.TempDir()
	cfg.Backends = []string{filepath.Join(cfg.InputDir, "none")}
	_, err = CheckDeps(&cfg)
	assert.True(t, errors.Is(err, backend.ErrNoBackendAvailable))
}
