package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/adapters/observability"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

// writeGrace bounds how long a dispatched property may keep writing after a
// shutdown request. Keeps the no-partial-column-write invariant without
// letting shutdown hang on a stuck connection.
const writeGrace = 15 * time.Second

// CycleStats is the per-cycle outcome summary, the primary observability
// signal of the worker.
type CycleStats struct {
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Fallback  int           `json:"fallback"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration_ns"`
	EndedAt   time.Time     `json:"ended_at"`
}

// Scheduler drives the repeating discover/process/persist cycle. Workers is
// the bounded concurrency degree; 1 means strictly sequential processing.
type Scheduler struct {
	repo      domain.PropertyRepository
	proc      *Processor
	batchSize int
	interval  time.Duration
	workers   int64

	mu   sync.Mutex
	last CycleStats
}

func NewScheduler(repo domain.PropertyRepository, proc *Processor, batchSize int, interval time.Duration, workers int) *Scheduler {
	if batchSize <= 0 {
		batchSize = 50
	}
	if workers <= 0 {
		workers = 1
	}
	return &Scheduler{
		repo:      repo,
		proc:      proc,
		batchSize: batchSize,
		interval:  interval,
		workers:   int64(workers),
	}
}

// LastStats returns a snapshot of the most recent cycle.
func (s *Scheduler) LastStats() CycleStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Run loops until ctx is canceled. A cycle-level failure (database
// unreachable) is logged and retried on the next scheduled cycle; it never
// crashes the process.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().
		Int("batch_size", s.batchSize).
		Dur("interval", s.interval).
		Int64("workers", s.workers).
		Msg("scheduler starting")

	for {
		if _, err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error().Err(err).Msg("cycle failed, retrying next interval")
		}
		if !waitCtx(ctx, s.interval) {
			break
		}
	}
	log.Info().Msg("scheduler stopped")
}

// RunCycle executes one discover/process/persist pass. Per-property failures
// are counted, never propagated; the returned error is reserved for not
// reaching the database at all.
func (s *Scheduler) RunCycle(ctx context.Context) (CycleStats, error) {
	start := time.Now()

	cands, err := s.repo.FindCandidates(ctx, s.batchSize)
	if err != nil {
		return CycleStats{}, err
	}

	stats := CycleStats{}
	if len(cands) == 0 {
		log.Debug().Msg("no candidates this cycle")
		s.finishCycle(&stats, start)
		return stats, nil
	}

	log.Info().Int("candidates", len(cands)).Msg("processing batch")

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, cand := range cands {
		// stop dispatching on shutdown; already-dispatched tasks finish
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		mu.Lock()
		stats.Attempted++
		mu.Unlock()

		wg.Add(1)
		go func(c domain.Candidate) {
			defer wg.Done()
			defer sem.Release(1)
			s.processOne(ctx, c, &stats, &mu)
		}(cand)
	}
	wg.Wait()

	s.finishCycle(&stats, start)
	log.Info().
		Int("attempted", stats.Attempted).
		Int("succeeded", stats.Succeeded).
		Int("fallback", stats.Fallback).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Dur("took", stats.Duration).
		Msg("cycle complete")
	return stats, nil
}

func (s *Scheduler) processOne(ctx context.Context, c domain.Candidate, stats *CycleStats, mu *sync.Mutex) {
	upd, err := s.proc.Process(ctx, c)
	if err != nil {
		// canceled mid-property: the partial update is discarded
		mu.Lock()
		stats.Failed++
		mu.Unlock()
		observability.ObserveProperty("failed")
		return
	}
	if upd.Empty() {
		mu.Lock()
		stats.Skipped++
		mu.Unlock()
		observability.ObserveProperty("skipped")
		log.Info().Str("external_id", c.ExternalID).Msg("no new content, skipped")
		return
	}

	// the write survives shutdown for a bounded grace period
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeGrace)
	defer cancel()

	if err := s.repo.ApplyUpdate(writeCtx, upd); err != nil {
		mu.Lock()
		stats.Failed++
		mu.Unlock()
		observability.ObserveProperty("failed")
		log.Warn().Int64("id", c.ID).Str("external_id", c.ExternalID).Err(err).Msg("update failed")
		return
	}

	mu.Lock()
	stats.Succeeded++
	if upd.UsedFallback() {
		stats.Fallback++
	}
	mu.Unlock()
	if upd.UsedFallback() {
		observability.ObserveProperty("fallback")
	} else {
		observability.ObserveProperty("api")
	}
	log.Info().Int64("id", c.ID).Str("external_id", c.ExternalID).Msg("property updated")
}

func (s *Scheduler) finishCycle(stats *CycleStats, start time.Time) {
	stats.Duration = time.Since(start)
	stats.EndedAt = time.Now()
	observability.ObserveCycle(stats.Duration)

	// best-effort backlog gauge
	gaugeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pending, err := s.repo.PendingCount(gaugeCtx); err == nil {
		observability.PendingProperties.Set(float64(pending))
	}

	s.mu.Lock()
	s.last = *stats
	s.mu.Unlock()
}

// waitCtx sleeps for d or returns false as soon as ctx is done.
func waitCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
