// Package pipeline orchestrates asset discovery, bounded parallel
// conversion, artifact relocation, and the final error report.
//
// Types:
//   - Job, Collection (discovered work and skip lists)
//   - Worker (per-asset backend fallback, classification, relocation)
//   - Scheduler (bounded admission plus completion barrier)
//   - Outcome, Attempt (terminal per-asset result)
//   - ErrorReport (fold of all outcomes)
//
// Functions:
//   - Run(ctx, cfg, log, backends) → ErrorReport
//     discover → schedule one job per asset → WaitAll → Aggregate →
//     summary, optional report and metrics files.
//   - Discover(cfg, backends) → Collection
//     Walk input tree, filter by extension, skip existing outputs and world
//     cubemaps, attach forced-backend hints.
package pipeline
