package pipeline

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gabefollower/source1import/internal/display"
	"github.com/gabefollower/source1import/internal/logging"
)

// WriteReport writes r to path as JSON (.json) or YAML (.yaml, .yml).
func WriteReport(path string, r ErrorReport) error {
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		b, err = json.MarshalIndent(r, "", "  ")
		b = append(b, '\n')
	case ".yaml", ".yml":
		b, err = yaml.Marshal(r)
	default:
		return fmt.Errorf("unsupported report format %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// FormatErrorLine renders the error-rate line, e.g.
// "Total: 3 / 10  |  30.00 % Error rate".
func FormatErrorLine(r ErrorReport) string {
	return fmt.Sprintf("Total: %d / %d  |  %.2f %% Error rate", len(r.Failed), r.Total, r.ErrorRatePercent)
}

// logSummary prints the final block: artifact totals, every asset that
// failed all backends, and the error rate.
func logSummary(log *logging.Logger, inputDir string, r ErrorReport) {
	log.Info("==============================")
	if r.DryRun {
		log.Info("Done (dry run): %d assets would be converted", r.Total)
		return
	}
	log.Info("Done: %d converted, %d failed", r.Succeeded, len(r.Failed))
	log.Info("Summary report:")
	log.Info("  Artifacts produced: %d (%s)", r.Artifacts, display.FormatBytes(r.ArtifactBytes))
	for _, kind := range slices.Sorted(maps.Keys(r.ByKind)) {
		log.Info("    %-15s %d", kind, r.ByKind[kind])
	}
	for _, tag := range slices.Sorted(maps.Keys(r.ByBackend)) {
		log.Info("    [%s] %d", tag, r.ByBackend[tag])
	}
	if r.Incomplete > 0 {
		log.Warn("  Incomplete: %d assets yielded fewer parts than their header declares", r.Incomplete)
	}
	if r.SkippedExisting > 0 || r.SkippedCubemaps > 0 {
		log.Info("  Skipped: %d existing, %d world cubemaps", r.SkippedExisting, r.SkippedCubemaps)
	}

	if len(r.Failed) == 0 {
		log.Success("  No failures")
		return
	}
	log.Error("No backend could convert the following files:")
	for _, a := range r.Failed {
		rel, err := filepath.Rel(inputDir, a.Path)
		if err != nil {
			rel = a.Path
		}
		log.Error("  %s", rel)
	}
	log.Error("%s", FormatErrorLine(r))
}
