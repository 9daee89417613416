// Package logging provides the leveled console logger used by every stage of
// a run. Console lines are human-readable and optionally colored; when a log
// file is configured the same events are appended to it as JSON lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gabefollower/source1import/internal/config"
)

// Level names written to the "level" field.
const (
	levelInfo    = "info"
	levelSuccess = "success"
	levelWarn    = "warn"
	levelError   = "error"
	levelDebug   = "debug"
)

const consoleTimeFormat = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with optional file sink.
// Child loggers from [Logger.With] share the parent's sink.
type Logger struct {
	out     zerolog.Logger // stdout (+ file)
	err     zerolog.Logger // stderr (+ file)
	sink    *fileSink
	colored bool
}

// NewLogger resolves cfg.ColorMode against stdout and optionally opens
// cfg.LogFile. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	return newLogger(cfg.LogFile, os.Stdout, os.Stderr, ColorEnabled(cfg.ColorMode, os.Stdout))
}

func newLogger(logFile string, stdout, stderr io.Writer, colored bool) (*Logger, error) {
	sink := &fileSink{}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		sink.file = f
	}

	var p palette
	if colored {
		p = ansi
	}
	build := func(w io.Writer) zerolog.Logger {
		var dest io.Writer = console(w, p, colored)
		if sink.file != nil {
			dest = zerolog.MultiLevelWriter(dest, sink)
		}
		return zerolog.New(dest).With().Timestamp().Logger()
	}
	return &Logger{out: build(stdout), err: build(stderr), sink: sink, colored: colored}, nil
}

func console(w io.Writer, p palette, colored bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         w,
		NoColor:     !colored,
		TimeFormat:  consoleTimeFormat,
		FormatLevel: p.formatLevel,
	}
}

// With returns a child logger that tags every line with key=value.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		out:     l.out.With().Str(key, value).Logger(),
		err:     l.err.With().Str(key, value).Logger(),
		sink:    l.sink,
		colored: l.colored,
	}
}

// Colored reports whether console output carries ANSI colors.
func (l *Logger) Colored() bool { return l.colored }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	return l.sink.close()
}

func (l *Logger) line(level, text string) {
	zl := &l.out
	if level == levelError {
		zl = &l.err
	}
	zl.Log().Str(zerolog.LevelFieldName, level).Msg(text)
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(levelInfo, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(levelSuccess, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(levelWarn, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(levelError, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line(levelDebug, fmt.Sprintf(format, args...))
}

// fileSink serializes JSON lines into the log file. Writes after close are
// dropped.
type fileSink struct {
	mu   sync.Mutex
	file *os.File
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return len(p), nil
	}
	return s.file.Write(p)
}

func (s *fileSink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
