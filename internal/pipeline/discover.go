package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabefollower/source1import/internal/artifact"
	"github.com/gabefollower/source1import/internal/backend"
	"github.com/gabefollower/source1import/internal/config"
	"github.com/gabefollower/source1import/internal/naming"
)

// VtexParamsExt is the extension of vtex compile parameter files.
const VtexParamsExt = ".txt"

// Job is one asset admitted for conversion. Force is the Priority of the
// backend that always runs for this asset, or config.NoForcedBackend.
type Job struct {
	Asset artifact.Asset
	Force int
}

// Collection is the result of [Discover].
type Collection struct {
	Jobs            []Job
	Params          []string // Vtex compile parameter files.
	SkippedExisting []string // Assets whose outputs are already in the output tree.
	SkippedCubemaps []string // Auto-generated environment cubemaps.
}

// Discover walks cfg.InputDir and collects assets with cfg.InputExt plus any
// vtex compile parameter files, sorted lexicographically for deterministic
// processing order. Unless cfg.Overwrite is set, assets with any output
// already present in the mirrored output tree are skipped. backends are the
// resolved backends and gate the forced-backend hint.
func Discover(cfg *config.Config, backends []backend.Backend) (*Collection, error) {
	var assets, params []string
	err := filepath.WalkDir(cfg.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case cfg.InputExt:
			assets = append(assets, path)
		case VtexParamsExt:
			params = append(params, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(assets)
	sort.Strings(params)

	col := &Collection{Params: params}
	for _, path := range assets {
		a := artifact.NewAsset(path)
		if cfg.IgnoreWorldCubemaps && IsWorldCubemap(filepath.Base(path)) {
			col.SkippedCubemaps = append(col.SkippedCubemaps, path)
			continue
		}
		if !cfg.Overwrite && outputsExist(cfg, a) {
			col.SkippedExisting = append(col.SkippedExisting, path)
			continue
		}
		col.Jobs = append(col.Jobs, Job{Asset: a, Force: ForceHint(cfg, path, backends)})
	}
	return col, nil
}

// IsWorldCubemap reports whether name looks like a cubemap the map compiler
// generated for an env_cubemap entity (e.g. "c-1024_512_64.vtf"): more than
// four digits, at least two '_' or '-', and a leading 'c'.
func IsWorldCubemap(name string) bool {
	digits, dashes := 0, 0
	for _, r := range name {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '_' || r == '-':
			dashes++
		}
	}
	return digits > 4 && dashes >= 2 && strings.HasPrefix(name, "c")
}

// ForceHint returns the candidate position to force for path, or
// config.NoForcedBackend. cfg.ForceBackend names a position in the configured
// candidate list, so the hint applies only when that candidate resolved, more
// than one backend resolved, and the path contains the skybox marker.
func ForceHint(cfg *config.Config, path string, backends []backend.Backend) int {
	if cfg.ForceBackend == config.NoForcedBackend || cfg.SkyboxMarker == "" {
		return config.NoForcedBackend
	}
	if len(backends) < 2 {
		return config.NoForcedBackend
	}
	if _, ok := backend.ByPriority(backends, cfg.ForceBackend); !ok {
		return config.NoForcedBackend
	}
	if !strings.Contains(filepath.ToSlash(path), cfg.SkyboxMarker) {
		return config.NoForcedBackend
	}
	return cfg.ForceBackend
}

// outputsExist reports whether any candidate output of a already sits in the
// mirrored output tree.
func outputsExist(cfg *config.Config, a artifact.Asset) bool {
	for cand := range artifact.EnumerateCandidatePaths(a, cfg.OutputExts) {
		dest, err := naming.MirrorPath(cfg.InputDir, cfg.OutputDir, cand)
		if err != nil {
			return false
		}
		if artifact.Exists(dest) {
			return true
		}
	}
	return false
}
