// Command vtfimport converts a tree of Source 1 textures into image files
// by driving one or more external vtf2tga converters, mirroring the input
// layout into the output directory.
//
// It parses flags, validates configuration and paths, and either runs
// system diagnostics (--check) or the conversion pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gabefollower/source1import/internal/backend"
	"github.com/gabefollower/source1import/internal/check"
	"github.com/gabefollower/source1import/internal/config"
	"github.com/gabefollower/source1import/internal/display"
	"github.com/gabefollower/source1import/internal/logging"
	"github.com/gabefollower/source1import/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Bootstrap: no logger yet, errors go straight to stderr.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, os.Args[1:], version); err != nil {
		fmt.Fprintf(os.Stderr, "vtfimport: %v\n", err)
		return 2
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "vtfimport: %v\n", err)
		return 2
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vtfimport: %v\n", err)
		return 1
	}
	defer log.Close()

	display.PrintBanner(os.Stdout, log.Colored())

	if cfg.CheckOnly {
		if check.RunCheck(&cfg, log) == 0 {
			return 1
		}
		return 0
	}

	// Input must exist, output is created if needed and must not be inside
	// input (relocated artifacts would be rediscovered).
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputDir)
		return 1
	}
	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			log.Error("Cannot create output directory: %s", cfg.OutputDir)
			return 1
		}
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil && !(cfg.DryRun && errors.Is(err, os.ErrNotExist)) {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if outputAbs == "" {
		outputAbs, _ = filepath.Abs(cfg.OutputDir)
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.InputDir)
		return 1
	}
	cfg.InputDir, cfg.OutputDir = inputAbs, outputAbs

	log.Info("=== vtfimport v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.ConfigFile != "" {
		log.Info("Config: %s", cfg.ConfigFile)
	}
	if cfg.DryRun {
		log.Warn("DRY RUN: no backend will be invoked")
	}
	log.Info("")

	backends, err := check.CheckDeps(&cfg)
	if err != nil {
		log.Error("%v", err)
		if errors.Is(err, backend.ErrNoBackendAvailable) {
			log.Error("Configure at least one vtf2tga executable with --backend (see --check)")
		}
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, stopping running conversions...")
		cancel()
	}()

	// Assets that no backend could convert are reported, not fatal.
	if _, err := pipeline.Run(ctx, &cfg, log, backends); err != nil {
		return 1
	}
	if ctx.Err() != nil {
		return 130
	}
	return 0
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
