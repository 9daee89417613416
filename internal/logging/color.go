package logging

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/gabefollower/source1import/internal/config"
)

// palette maps each level to its ANSI sequence. The zero value is uncolored.
type palette struct {
	info, success, warn, error, debug string
	reset                             string
}

var ansi = palette{
	info:    "\033[1;94m",
	success: "\033[1;92m",
	warn:    "\033[1;93m",
	error:   "\033[1;91m",
	debug:   "\033[1;96m",
	reset:   "\033[0m",
}

// ColorEnabled resolves mode against f. Auto mode colors only a terminal,
// and honors NO_COLOR (https://no-color.org) and TERM=dumb.
func ColorEnabled(mode config.ColorMode, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return isTerminal(f) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// isTerminal includes Cygwin/MSYS pseudo terminals on Windows.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// formatLevel renders "[LEVEL]" in the level's color.
func (p palette) formatLevel(i interface{}) string {
	name, _ := i.(string)
	label := "[" + strings.ToUpper(name) + "]"
	var color string
	switch name {
	case levelInfo:
		color = p.info
	case levelSuccess:
		color = p.success
	case levelWarn:
		color = p.warn
	case levelError:
		color = p.error
	case levelDebug:
		color = p.debug
	}
	if color == "" {
		return label
	}
	return color + label + p.reset
}
