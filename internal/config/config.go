// Package config holds runtime configuration: defaults, config-file and
// environment overlays, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// NoForcedBackend disables the forced-backend hint.
const NoForcedBackend = -1

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [LoadFile] and [ApplyEnv], and finally mutated by
// [ParseFlags] before being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputDir  string
	OutputDir string

	// Converter backends, highest priority first. Relative entries are
	// resolved against BaseDir.
	Backends []string
	BaseDir  string        // Default: "" (directory of the running executable).
	Timeout  time.Duration // Per-invocation limit. Default: 0 (none).

	// Forced-backend hint: assets whose path contains SkyboxMarker always
	// run the backend configured at position ForceBackend of Backends when it
	// resolved and more than one backend is usable.
	SkyboxMarker string // Default: "skybox".
	ForceBackend int    // Default: 1. NoForcedBackend disables.

	// Asset selection.
	InputExt            string   // Default: ".vtf".
	OutputExts          []string // Default: ".tga" (LDR), ".pfm" (HDR).
	Overwrite           bool     // Re-convert assets whose outputs already exist.
	IgnoreWorldCubemaps bool     // Default: true. Skip auto-generated env cubemaps.
	VtexParams          bool     // Translate vtex compile parameter files.

	// Scheduling.
	Jobs     int  // Default: 0 (auto: min(CPUs+2, 10)).
	Parallel bool // Default: true. Cleared by --no-parallel.

	// Behavior flags.
	DryRun bool

	// Run artifacts.
	ReportFile  string // Optional JSON/YAML report path.
	MetricsFile string // Optional Prometheus textfile path.

	// Display and logging.
	Verbose    bool
	ColorMode  ColorMode // Default: "auto".
	LogFile    string    // Optional log file path (JSON lines).
	CheckOnly  bool      // Run --check diagnostics and exit.
	ConfigFile string    // Optional TOML/YAML overlay.
}

// DefaultBackends is the stock candidate list: the bundled 2013 and CS:GO
// builds, then a TF2 install.
var DefaultBackends = []string{
	"./shared/bin/vtf2tga/2013/vtf2tga.exe",
	"./shared/bin/vtf2tga/csgo/vtf2tga.exe",
	`C:\Program Files (x86)\Steam\steamapps\common\Team Fortress 2\bin\vtf2tga.exe`,
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// overlays and [ParseFlags] apply.
func DefaultConfig() Config {
	return Config{
		Backends:            append([]string(nil), DefaultBackends...),
		SkyboxMarker:        "skybox",
		ForceBackend:        1,
		InputExt:            ".vtf",
		OutputExts:          []string{".tga", ".pfm"},
		Overwrite:           false,
		IgnoreWorldCubemaps: true,
		Parallel:            true,
		ColorMode:           ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// NormalizeExt lowercases ext and guarantees a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// Validate checks enum and range fields and normalizes extensions. When not
// in CheckOnly mode, it also requires both directory paths.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if len(c.Backends) == 0 {
		return errors.New("at least one backend candidate is required")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0 (got %d)", c.Jobs)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative (got %s)", c.Timeout)
	}
	if c.ForceBackend < NoForcedBackend {
		return fmt.Errorf("force-backend must be >= %d (got %d)", NoForcedBackend, c.ForceBackend)
	}

	c.InputExt = NormalizeExt(c.InputExt)
	if c.InputExt == "" {
		return errors.New("input extension must not be empty")
	}
	if len(c.OutputExts) == 0 {
		return errors.New("at least one output extension is required")
	}
	for i, ext := range c.OutputExts {
		ext = NormalizeExt(ext)
		if ext == "" {
			return errors.New("output extensions must not be empty")
		}
		if ext == c.InputExt {
			return fmt.Errorf("output extension %s equals the input extension", ext)
		}
		c.OutputExts[i] = ext
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need exactly input_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. Relocated artifacts would otherwise be
// rediscovered as inputs on the next run. Both arguments must be absolute,
// symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
