package pipeline

import (
	"sort"

	"github.com/gabefollower/source1import/internal/artifact"
)

// ErrorReport is the final tally of a run, built once after the scheduler's
// barrier by [Aggregate].
type ErrorReport struct {
	RunID            string           `json:"run_id" yaml:"run_id"`
	DryRun           bool             `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Total            int              `json:"total" yaml:"total"`
	Succeeded        int              `json:"succeeded" yaml:"succeeded"`
	Failed           []artifact.Asset `json:"failed" yaml:"failed"`
	Artifacts        int              `json:"artifacts" yaml:"artifacts"`
	ArtifactBytes    int64            `json:"artifact_bytes" yaml:"artifact_bytes"`
	ByKind           map[string]int   `json:"by_kind" yaml:"by_kind"`
	ByBackend        map[string]int   `json:"by_backend" yaml:"by_backend"`
	Incomplete       int              `json:"incomplete" yaml:"incomplete"`
	ErrorRatePercent float64          `json:"error_rate_percent" yaml:"error_rate_percent"`
	SkippedExisting  int              `json:"skipped_existing" yaml:"skipped_existing"`
	SkippedCubemaps  int              `json:"skipped_cubemaps" yaml:"skipped_cubemaps"`
	Params           int              `json:"vtex_params" yaml:"vtex_params"`
}

// Aggregate folds terminal outcomes into a report. It is pure: the same
// outcomes in any order give the same report. Failed assets are sorted by
// path.
func Aggregate(runID string, outcomes []Outcome) ErrorReport {
	r := ErrorReport{
		RunID:     runID,
		Total:     len(outcomes),
		Failed:    []artifact.Asset{},
		ByKind:    make(map[string]int),
		ByBackend: make(map[string]int),
	}
	for _, o := range outcomes {
		if !o.Succeeded {
			r.Failed = append(r.Failed, o.Asset)
			continue
		}
		r.Succeeded++
		if o.Incomplete {
			r.Incomplete++
		}
		for _, p := range o.Artifacts {
			r.Artifacts++
			r.ArtifactBytes += p.Size
			r.ByKind[p.Kind.Class.String()]++
			r.ByBackend[p.Backend]++
		}
	}
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Path < r.Failed[j].Path })
	r.ErrorRatePercent = ErrorRate(len(r.Failed), r.Total)
	return r
}

// ErrorRate returns 100*failed/total, or 0 when total is 0.
func ErrorRate(failed, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(failed) / float64(total)
}
