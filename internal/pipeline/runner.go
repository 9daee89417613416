package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gabefollower/source1import/internal/backend"
	"github.com/gabefollower/source1import/internal/config"
	"github.com/gabefollower/source1import/internal/logging"
	"github.com/gabefollower/source1import/internal/metrics"
	"github.com/gabefollower/source1import/internal/naming"
	"github.com/gabefollower/source1import/internal/probe"
	"github.com/gabefollower/source1import/internal/vtex"
)

// Run is the top-level batch entry point. It discovers assets, admits one
// job per asset into a bounded scheduler, waits for every job, and returns
// the aggregated report. Per-asset failures are part of the report, not the
// error: err is non-nil only when discovery fails or a requested report or
// metrics file cannot be written.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, backends []backend.Backend) (ErrorReport, error) {
	runner := backend.Executor{Timeout: cfg.Timeout}
	if cfg.Verbose {
		runner.Stream = os.Stderr
	}
	return run(ctx, cfg, log, backends, runner)
}

func run(ctx context.Context, cfg *config.Config, log *logging.Logger, backends []backend.Backend, runner backend.Runner) (ErrorReport, error) {
	runID := uuid.NewString()

	col, err := Discover(cfg, backends)
	if err != nil {
		log.Error("Asset discovery failed: %v", err)
		return ErrorReport{RunID: runID}, err
	}

	capacity := Capacity(cfg)
	logBatchHeader(cfg, log, runID, backends, col, capacity)

	var report ErrorReport
	if cfg.DryRun {
		report = dryRun(cfg, log, backends, col)
		report.RunID = runID
	} else {
		report = convertAll(ctx, cfg, log, backends, runner, col, capacity)
		report.RunID = runID
		if cfg.VtexParams {
			importParams(cfg, log, col.Params)
		}
	}
	report.SkippedExisting = len(col.SkippedExisting)
	report.SkippedCubemaps = len(col.SkippedCubemaps)
	report.Params = len(col.Params)

	metrics.SetErrorRate(report.ErrorRatePercent)
	logSummary(log, cfg.InputDir, report)

	var errs []error
	if cfg.ReportFile != "" {
		if err := WriteReport(cfg.ReportFile, report); err != nil {
			log.Error("Cannot write report: %v", err)
			errs = append(errs, err)
		} else {
			log.Info("Report written to %s", cfg.ReportFile)
		}
	}
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("Cannot write metrics: %v", err)
			errs = append(errs, err)
		}
	}
	return report, errors.Join(errs...)
}

// convertAll schedules every job and folds the outcomes after the barrier.
func convertAll(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	backends []backend.Backend,
	runner backend.Runner,
	col *Collection,
	capacity int,
) ErrorReport {
	w := &Worker{
		Backends:  backends,
		Runner:    runner,
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Exts:      cfg.OutputExts,
		Overwrite: cfg.Overwrite,
		Claims:    naming.NewClaimRegistry(),
		Log:       log,
		Verbose:   cfg.Verbose,
	}
	sched := NewScheduler(capacity)

	for i, job := range col.Jobs {
		if ctx.Err() != nil {
			log.Warn("Interrupted: %d of %d assets not started", len(col.Jobs)-i, len(col.Jobs))
			break
		}
		sched.Submit(func() Outcome {
			metrics.JobStarted()
			defer metrics.JobFinished()
			o := w.Convert(ctx, job.Asset, job.Force)
			metrics.RecordAsset(o.Succeeded)
			return o
		})
	}

	report := Aggregate("", sched.WaitAll())
	log.Debug(cfg.Verbose, "Claimed %d output paths", w.Claims.Len())
	return report
}

// dryRun lists what would run without invoking any backend.
func dryRun(cfg *config.Config, log *logging.Logger, backends []backend.Backend, col *Collection) ErrorReport {
	for _, job := range col.Jobs {
		rel := relTo(cfg.InputDir, job.Asset.Path)
		if hdr, err := probe.Probe(job.Asset.Path); err == nil {
			rel += " [" + hdr.Summary() + "]"
		}
		if b, ok := backend.ByPriority(backends, job.Force); ok {
			log.Success("[DRY] Would convert %s (forcing [%s])", rel, b.Tag)
		} else {
			log.Success("[DRY] Would convert %s", rel)
		}
	}
	for _, p := range col.Params {
		log.Info("[DRY] Found vtex compile param file %s", relTo(cfg.InputDir, p))
	}
	r := Aggregate("", nil)
	r.DryRun = true
	r.Total = len(col.Jobs)
	return r
}

// importParams translates each vtex compile parameter file into the mirrored
// output tree. Failures are logged and do not affect the asset report.
func importParams(cfg *config.Config, log *logging.Logger, params []string) {
	for _, p := range params {
		rel := relTo(cfg.InputDir, p)
		dst, err := naming.MirrorPath(cfg.InputDir, cfg.OutputDir, p)
		if err != nil {
			log.Error("Cannot map %s: %v", rel, err)
			continue
		}
		if !cfg.Overwrite {
			if _, err := os.Stat(dst); err == nil {
				log.Debug(cfg.Verbose, "Skip (exists): %s", rel)
				continue
			}
		}
		switch err := vtex.TranslateFile(p, dst); {
		case errors.Is(err, vtex.ErrAlreadyTranslated):
			log.Info("Copied settings file %s", rel)
		case err != nil:
			log.Error("Cannot import %s: %v", rel, err)
		default:
			log.Success("Imported vtex compile params %s", rel)
		}
	}
}

func logBatchHeader(
	cfg *config.Config,
	log *logging.Logger,
	runID string,
	backends []backend.Backend,
	col *Collection,
	capacity int,
) {
	log.Debug(cfg.Verbose, "Run ID: %s", runID)
	log.Info("Found %d assets (%s)", len(col.Jobs), cfg.InputExt)
	if n := len(col.SkippedExisting); n > 0 {
		log.Info("Skipping %d assets with existing output (use --force to redo)", n)
	}
	if n := len(col.SkippedCubemaps); n > 0 {
		log.Info("Skipping %d world cubemaps", n)
		for _, p := range col.SkippedCubemaps {
			log.Debug(cfg.Verbose, "  skip %s", relTo(cfg.InputDir, p))
		}
	}
	if n := len(col.Params); n > 0 && !cfg.DryRun {
		if cfg.VtexParams {
			log.Info("Found %d vtex compile param files", n)
		} else {
			log.Info("Found %d vtex compile param files (use --vtex-params to import)", n)
		}
	}

	tags := make([]string, len(backends))
	for i, b := range backends {
		tags[i] = b.Tag
	}
	log.Info("Backends: %s", strings.Join(tags, " -> "))
	if b, ok := backend.ByPriority(backends, cfg.ForceBackend); ok && len(backends) > 1 {
		log.Info("Forced backend: [%s] for paths containing %q", b.Tag, cfg.SkyboxMarker)
	}
	if cfg.Timeout > 0 {
		log.Info("Timeout: %s per invocation", cfg.Timeout)
	}
	log.Info("Concurrency: %d", capacity)
	fmt.Println()
}

// relTo returns path relative to root for display.
func relTo(root, path string) string {
	if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}
