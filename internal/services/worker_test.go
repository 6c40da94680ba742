package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/repositories"
)

type workerFixture struct {
	store  *repositories.MemoryStore
	jobs   JobService
	worker Worker
	base   time.Time
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return base })

	extraction := NewExtractionClient(defaultFakeProvider())
	pipeline := NewPipeline(store.Jobs(), store.Profiles(), store.Runs(), extraction, nil)
	w := NewWorker(store.Runs(), pipeline, WorkerOptions{
		Concurrency: 2,
		Interval:    time.Hour,
		Grace:       time.Minute,
	})
	t.Cleanup(w.Stop)

	return &workerFixture{store: store, jobs: NewJobService(store.Jobs()), worker: w, base: base}
}

func (f *workerFixture) extractedRun(t *testing.T, run *models.ExtractionRun, payload string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.Runs().Create(ctx, run))
	require.NoError(t, f.store.Runs().MarkExtracted(ctx, run.ID, payload))
}

func (f *workerFixture) advance(d time.Duration) {
	later := f.base.Add(d)
	f.store.SetClock(func() time.Time { return later })
}

func TestWorker_RecoversStalledAnalysis(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	job, err := f.jobs.Create(ctx, acmeJob())
	require.NoError(t, err)

	run := &models.ExtractionRun{UserID: "u1", JobID: job.ID, Kind: models.KindJobAnalysis}
	f.extractedRun(t, run, fakeIntelJSON)

	assert.Zero(t, f.worker.RecoverOnce(ctx), "runs inside the grace period are left alone")

	f.advance(5 * time.Minute)
	f.worker.Start(ctx)
	assert.Equal(t, 1, f.worker.RecoverOnce(ctx))

	assert.Eventually(t, func() bool {
		got, err := f.store.Runs().FindByID(ctx, run.ID)
		return err == nil && got.Phase == models.PhasePersisted
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := f.jobs.Get(ctx, "u1", job.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.JobIntel)
	assert.Equal(t, "Senior Backend Engineer", stored.PositionTitle)

	got, err := f.store.Runs().FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
}

func TestWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	run := &models.ExtractionRun{
		UserID:   "u1",
		JobID:    "j1",
		Kind:     models.KindTailoringStrategy,
		Attempts: maxRecoveryAttempts,
	}
	f.extractedRun(t, run, fakeStrategyJSON)

	f.advance(5 * time.Minute)
	f.worker.Start(ctx)
	require.Equal(t, 1, f.worker.RecoverOnce(ctx))

	assert.Eventually(t, func() bool {
		got, err := f.store.Runs().FindByID(ctx, run.ID)
		return err == nil && got.Phase == models.PhaseFailed
	}, 2*time.Second, 10*time.Millisecond)

	got, err := f.store.Runs().FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "recovery attempts exhausted", got.ErrorMessage)
}

func TestWorker_FailsUnknownKind(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	run := &models.ExtractionRun{UserID: "u1", JobID: "j1", Kind: "cover_letter"}
	f.extractedRun(t, run, `{}`)

	f.advance(5 * time.Minute)
	f.worker.Start(ctx)
	f.worker.RecoverOnce(ctx)

	assert.Eventually(t, func() bool {
		got, err := f.store.Runs().FindByID(ctx, run.ID)
		return err == nil && got.Phase == models.PhaseFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_StopIsIdempotent(t *testing.T) {
	f := newWorkerFixture(t)
	f.worker.Start(context.Background())
	f.worker.Stop()
	f.worker.Stop()

	// Enqueue after stop must not block.
	done := make(chan struct{})
	go func() {
		for range 200 {
			assert.False(t, f.worker.Enqueue(models.ExtractionRun{ID: uuid.New()}))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked after Stop")
	}
}

func TestWorker_RecoverOnceCountsOnlyNewlyQueuedRuns(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	run := &models.ExtractionRun{UserID: "u1", JobID: "j1", Kind: models.KindJobAnalysis}
	f.extractedRun(t, run, fakeIntelJSON)
	f.advance(5 * time.Minute)

	// No consumers are running, so the run stays claimed in the queue.
	assert.Equal(t, 1, f.worker.RecoverOnce(ctx))
	assert.Zero(t, f.worker.RecoverOnce(ctx))

	stalled, err := f.store.Runs().FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, f.worker.Enqueue(*stalled))
}
