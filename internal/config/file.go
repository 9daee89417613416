package config

// This file implements the optional config-file overlay. TOML and YAML are
// both accepted; the format is chosen by extension. Only keys present in the
// file override the current values, so defaults hold for everything else.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Pointer fields distinguish "absent" from
// zero values.
type fileConfig struct {
	Backends            []string `toml:"backends" yaml:"backends"`
	BaseDir             *string  `toml:"base_dir" yaml:"base_dir"`
	Timeout             *string  `toml:"timeout" yaml:"timeout"`
	SkyboxMarker        *string  `toml:"skybox_marker" yaml:"skybox_marker"`
	ForceBackend        *int     `toml:"force_backend" yaml:"force_backend"`
	InputExt            *string  `toml:"input_ext" yaml:"input_ext"`
	OutputExts          []string `toml:"output_exts" yaml:"output_exts"`
	Overwrite           *bool    `toml:"overwrite" yaml:"overwrite"`
	IgnoreWorldCubemaps *bool    `toml:"ignore_world_cubemaps" yaml:"ignore_world_cubemaps"`
	VtexParams          *bool    `toml:"vtex_params" yaml:"vtex_params"`
	Jobs                *int     `toml:"jobs" yaml:"jobs"`
	Parallel            *bool    `toml:"parallel" yaml:"parallel"`
	Report              *string  `toml:"report" yaml:"report"`
	MetricsFile         *string  `toml:"metrics_file" yaml:"metrics_file"`
	Log                 *string  `toml:"log" yaml:"log"`
	Color               *string  `toml:"color" yaml:"color"`
}

// LoadFile reads a TOML (.toml) or YAML (.yaml, .yml) file and overlays its
// keys onto cfg. Unknown keys are rejected so typos don't pass silently.
func LoadFile(path string, cfg *Config) error {
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, &fc)
		if err != nil {
			return fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("config load failed (%s): %w", path, err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		// An empty document decodes to io.EOF; treat it as "no overrides".
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
	return fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *Config) error {
	if len(fc.Backends) > 0 {
		cfg.Backends = append([]string(nil), fc.Backends...)
	}
	if fc.BaseDir != nil {
		cfg.BaseDir = *fc.BaseDir
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", *fc.Timeout, err)
		}
		cfg.Timeout = d
	}
	if fc.SkyboxMarker != nil {
		cfg.SkyboxMarker = *fc.SkyboxMarker
	}
	if fc.ForceBackend != nil {
		cfg.ForceBackend = *fc.ForceBackend
	}
	if fc.InputExt != nil {
		cfg.InputExt = *fc.InputExt
	}
	if len(fc.OutputExts) > 0 {
		cfg.OutputExts = append([]string(nil), fc.OutputExts...)
	}
	if fc.Overwrite != nil {
		cfg.Overwrite = *fc.Overwrite
	}
	if fc.IgnoreWorldCubemaps != nil {
		cfg.IgnoreWorldCubemaps = *fc.IgnoreWorldCubemaps
	}
	if fc.VtexParams != nil {
		cfg.VtexParams = *fc.VtexParams
	}
	if fc.Jobs != nil {
		cfg.Jobs = *fc.Jobs
	}
	if fc.Parallel != nil {
		cfg.Parallel = *fc.Parallel
	}
	if fc.Report != nil {
		cfg.ReportFile = *fc.Report
	}
	if fc.MetricsFile != nil {
		cfg.MetricsFile = *fc.MetricsFile
	}
	if fc.Log != nil {
		cfg.LogFile = *fc.Log
	}
	if fc.Color != nil {
		mode := ColorMode(strings.ToLower(*fc.Color))
		switch mode {
		case ColorAuto, ColorAlways, ColorNever:
			cfg.ColorMode = mode
		default:
			return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
		}
	}
	return nil
}
