package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/app"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

type fakeRepo struct {
	mu         sync.Mutex
	candidates []domain.Candidate
	findErr    error
	applyErr   error
	limitSeen  int
	updates    []domain.Update
}

func (f *fakeRepo) FindCandidates(ctx context.Context, limit int) ([]domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.limitSeen = limit
	if len(f.candidates) > limit {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

func (f *fakeRepo) FindByExternalID(ctx context.Context, externalID string) (domain.Candidate, error) {
	return domain.Candidate{}, domain.ErrNotFound
}

func (f *fakeRepo) ApplyUpdate(ctx context.Context, u domain.Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	f.updates = append(f.updates, u)
	return nil
}

func (f *fakeRepo) PendingCount(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.candidates)), nil
}

func (f *fakeRepo) applied() []domain.Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Update(nil), f.updates...)
}

func candidates(n int) []domain.Candidate {
	out := make([]domain.Candidate, n)
	for i := range out {
		out[i] = domain.Candidate{ID: int64(i + 1), ExternalID: fmt.Sprintf("ext-%d", i+1), SourceTitle: "ბინა"}
	}
	return out
}

func okClient() *stubClient {
	return &stubClient{responses: map[domain.Language]domain.Content{
		domain.LangEnglish: {Title: ptr("Apartment"), Description: ptr("Flat")},
		domain.LangRussian: {Title: ptr("Квартира"), Description: ptr("Квартира")},
	}}
}

func newScheduler(repo domain.PropertyRepository, client domain.TranslationClient, batch, workers int) *app.Scheduler {
	proc := app.NewProcessor(client, app.NewTermTranslator(), nil, domain.DefaultLanguages, time.Hour)
	return app.NewScheduler(repo, proc, batch, time.Minute, workers)
}

func TestRunCycle_BatchBoundary(t *testing.T) {
	repo := &fakeRepo{candidates: candidates(25)}
	s := newScheduler(repo, okClient(), 10, 4)

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if repo.limitSeen != 10 {
		t.Fatalf("discovery limit = %d, want 10", repo.limitSeen)
	}
	if stats.Attempted != 10 || stats.Succeeded != 10 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if got := len(repo.applied()); got != 10 {
		t.Fatalf("expected 10 updates, got %d", got)
	}
}

func TestRunCycle_PersistFailureCountedNotFatal(t *testing.T) {
	repo := &fakeRepo{candidates: candidates(3), applyErr: errors.New("deadlock")}
	s := newScheduler(repo, okClient(), 10, 1)

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("persistence failures must not fail the cycle: %v", err)
	}
	if stats.Failed != 3 || stats.Succeeded != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunCycle_SkippedWhenNothingToWrite(t *testing.T) {
	repo := &fakeRepo{candidates: []domain.Candidate{
		{ID: 1, ExternalID: "a", SourceTitle: "no georgian terms"},
	}}
	client := &stubClient{errs: map[domain.Language]error{
		domain.LangEnglish: errTransient,
		domain.LangRussian: errTransient,
	}}
	s := newScheduler(repo, client, 10, 1)

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if stats.Skipped != 1 || stats.Succeeded != 0 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(repo.applied()) != 0 {
		t.Fatalf("nothing should have been written")
	}
}

func TestRunCycle_FallbackCounted(t *testing.T) {
	repo := &fakeRepo{candidates: candidates(2)}
	client := &stubClient{
		responses: map[domain.Language]domain.Content{
			domain.LangEnglish: {Title: ptr("Apartment")},
		},
		errs: map[domain.Language]error{domain.LangRussian: errTransient},
	}
	s := newScheduler(repo, client, 10, 1)

	stats, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if stats.Succeeded != 2 || stats.Fallback != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunCycle_DiscoveryErrorSurfaced(t *testing.T) {
	repo := &fakeRepo{findErr: errors.New("dial tcp: connection refused")}
	s := newScheduler(repo, okClient(), 10, 1)

	if _, err := s.RunCycle(context.Background()); err == nil {
		t.Fatalf("expected discovery error")
	}
}

func TestRun_StopsPromptlyOnCancel(t *testing.T) {
	repo := &fakeRepo{} // no candidates, so Run spends its time in the sleep
	proc := app.NewProcessor(okClient(), app.NewTermTranslator(), nil, domain.DefaultLanguages, time.Hour)
	s := app.NewScheduler(repo, proc, 10, time.Hour, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel; sleep wait is not cancellable")
	}
}

func TestLastStats_Snapshot(t *testing.T) {
	repo := &fakeRepo{candidates: candidates(1)}
	s := newScheduler(repo, okClient(), 10, 1)

	if _, err := s.RunCycle(context.Background()); err != nil {
		t.Fatalf("err: %v", err)
	}
	last := s.LastStats()
	if last.Attempted != 1 || last.Succeeded != 1 || last.EndedAt.IsZero() {
		t.Fatalf("unexpected snapshot: %+v", last)
	}
}
