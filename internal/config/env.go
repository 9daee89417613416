package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment overrides. They sit between the config file and CLI flags.
const (
	EnvBackends = "SOURCE1IMPORT_BACKENDS" // os.PathListSeparator-separated candidate list.
	EnvJobs     = "SOURCE1IMPORT_JOBS"
	EnvTimeout  = "SOURCE1IMPORT_TIMEOUT"
	EnvLogLevel = "SOURCE1IMPORT_LOG_LEVEL"
	EnvNoColor  = "SOURCE1IMPORT_NOCOLOR"
)

// ApplyEnv loads an optional .env file from the working directory and then
// applies SOURCE1IMPORT_* overrides onto cfg. Variables already set in the
// process environment win over .env entries. A missing .env is fine; one
// that cannot be read or parsed is an error.
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if raw := strings.TrimSpace(os.Getenv(EnvBackends)); raw != "" {
		var list []string
		for _, p := range filepath.SplitList(raw) {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		if len(list) > 0 {
			cfg.Backends = list
		}
	}
	if raw := strings.TrimSpace(os.Getenv(EnvJobs)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be a whole number (got %q)", EnvJobs, raw)
		}
		cfg.Jobs = n
	}
	if raw := strings.TrimSpace(os.Getenv(EnvTimeout)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))) {
	case "debug", "trace":
		cfg.Verbose = true
	case "info", "warn", "warning", "error":
		cfg.Verbose = false
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvNoColor))); err == nil && v {
		cfg.ColorMode = ColorNever
	}
	return nil
}
