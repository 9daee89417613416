package pipeline

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"golang.org/x/sync/errgroup"

	"github.com/gabefollower/source1import/internal/config"
)

// maxCapacity caps the default number of concurrent conversions.
const maxCapacity = 10

// DefaultCapacity returns min(usable CPUs + 2, 10). Usable CPUs is the
// smaller of the host's logical count and runtime.NumCPU, which honors the
// process affinity mask.
func DefaultCapacity() int {
	n := runtime.NumCPU()
	if c, err := cpu.Counts(true); err == nil && c > 0 && c < n {
		n = c
	}
	return min(n+2, maxCapacity)
}

// Capacity returns the concurrency limit for a run: 1 when parallelism is
// off, cfg.Jobs when set, otherwise [DefaultCapacity].
func Capacity(cfg *config.Config) int {
	switch {
	case !cfg.Parallel:
		return 1
	case cfg.Jobs > 0:
		return cfg.Jobs
	}
	return DefaultCapacity()
}

// Scheduler runs submitted jobs with at most a fixed number in flight.
// Submit blocks while the pool is full; no job is ever dropped. Outcomes
// are collected under a lock and handed back by WaitAll.
type Scheduler struct {
	capacity int
	g        errgroup.Group

	mu       sync.Mutex
	outcomes []Outcome
}

// NewScheduler creates a scheduler admitting at most capacity concurrent
// jobs. A capacity below 1 is treated as 1.
func NewScheduler(capacity int) *Scheduler {
	if capacity < 1 {
		capacity = 1
	}
	s := &Scheduler{capacity: capacity}
	s.g.SetLimit(capacity)
	return s
}

// Capacity returns the admission limit.
func (s *Scheduler) Capacity() int { return s.capacity }

// Submit admits job, blocking until a slot is free.
func (s *Scheduler) Submit(job func() Outcome) {
	s.g.Go(func() error {
		o := job()
		s.mu.Lock()
		s.outcomes = append(s.outcomes, o)
		s.mu.Unlock()
		return nil
	})
}

// WaitAll blocks until every submitted job has finished and returns their
// outcomes in completion order. Call once, after the last Submit.
func (s *Scheduler) WaitAll() []Outcome {
	_ = s.g.Wait() // jobs never return errors
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Outcome(nil), s.outcomes...)
}
