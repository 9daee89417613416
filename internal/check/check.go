// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for the converter backends and the
// input tree.
package check

import (
	"errors"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"

	"github.com/gabefollower/source1import/internal/backend"
	"github.com/gabefollower/source1import/internal/config"
	"github.com/gabefollower/source1import/internal/pipeline"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrInputMissing = errors.New("input directory does not exist")
	ErrInputNotDir  = errors.New("input path is not a directory")
)

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck prints the host summary, the verdict for every backend candidate,
// and the concurrency a run would use. Informational only. It returns the
// number of usable backends.
func RunCheck(cfg *config.Config, log Logger) int {
	log.Info("=== System Check ===")

	checkHost(log)
	usable := checkBackends(cfg, log)

	capacity := pipeline.Capacity(cfg)
	log.Info("Concurrency: %d", capacity)
	if cfg.Timeout > 0 {
		log.Info("Timeout: %s per invocation", cfg.Timeout)
	}
	return usable
}

func checkHost(log Logger) {
	if info, err := host.Info(); err != nil {
		log.Warn("Could not read host info: %v", err)
	} else {
		log.Info("Host: %s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
	}

	logical, err := cpu.Counts(true)
	if err != nil {
		log.Warn("Could not count CPUs: %v", err)
		return
	}
	physical, _ := cpu.Counts(false)
	log.Info("CPUs: %d logical, %d physical", logical, physical)
}

// checkBackends lists every configured candidate with its resolved path and
// tag, in priority order.
func checkBackends(cfg *config.Config, log Logger) int {
	log.Info("Backends (priority order):")
	usable := 0
	forced := ""
	for i, c := range backend.NewRegistry(cfg.Backends, cfg.BaseDir).Inspect() {
		if c.Err != nil {
			log.Warn("  %d. [%s] %s: %v", i, c.Tag, c.Configured, c.Err)
			log.Debug(cfg.Verbose, "     resolved to %s", c.Resolved)
			continue
		}
		log.Success("  %d. [%s] %s", i, c.Tag, c.Resolved)
		usable++
		if i == cfg.ForceBackend {
			forced = c.Tag
		}
	}
	switch {
	case usable == 0:
		log.Error("No usable backend: %v", backend.ErrNoBackendAvailable)
	case forced == "" && cfg.ForceBackend != config.NoForcedBackend:
		log.Warn("Forced backend %d is not usable; the hint is inactive", cfg.ForceBackend)
	case usable > 1 && forced != "":
		log.Info("Forced backend %d. [%s] applies to paths containing %q", cfg.ForceBackend, forced, cfg.SkyboxMarker)
	}
	return usable
}

// CheckDeps is the pre-pipeline validation: the input directory must exist
// and at least one backend candidate must be executable. It returns the
// resolved backends in priority order.
func CheckDeps(cfg *config.Config) ([]backend.Backend, error) {
	fi, err := os.Stat(cfg.InputDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, cfg.InputDir)
	case err != nil:
		return nil, err
	case !fi.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrInputNotDir, cfg.InputDir)
	}
	return backend.NewRegistry(cfg.Backends, cfg.BaseDir).Resolve()
}
