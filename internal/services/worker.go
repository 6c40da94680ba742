package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/repositories"
)

const (
	recoveryBatchSize   = 10
	maxRecoveryAttempts = 5
)

// Worker re-applies extraction runs whose payload was validated but never
// reached the job record.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	// Enqueue reports whether the run was queued. A run already queued or
	// being applied, or a stopped worker, yields false.
	Enqueue(run models.ExtractionRun) bool
	// RecoverOnce scans for stalled runs and enqueues them. It returns how
	// many were newly enqueued.
	RecoverOnce(ctx context.Context) int
}

type WorkerOptions struct {
	Concurrency int
	Interval    time.Duration
	Grace       time.Duration
}

type worker struct {
	runs        repositories.ExtractionRunRepository
	pipeline    Pipeline
	runQueue    chan models.ExtractionRun
	concurrency int
	interval    time.Duration
	grace       time.Duration
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewWorker(
	runs repositories.ExtractionRunRepository,
	pipeline Pipeline,
	opts WorkerOptions,
) Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	return &worker{
		runs:        runs,
		pipeline:    pipeline,
		runQueue:    make(chan models.ExtractionRun, 100),
		concurrency: opts.Concurrency,
		interval:    opts.Interval,
		grace:       opts.Grace,
		stopChan:    make(chan struct{}),
		inFlight:    make(map[uuid.UUID]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting recovery worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processRuns(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollStalledRuns(ctx)

	log.Println("✅ Recovery worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping recovery worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Recovery worker stopped")
	})
}

// Enqueue implements Worker.
func (w *worker) Enqueue(run models.ExtractionRun) bool {
	if !w.claim(run.ID) {
		return false
	}

	select {
	case <-w.stopChan:
		w.release(run.ID)
		log.Printf("⚠️  Worker stopped, cannot enqueue run %s\n", run.ID)
		return false
	default:
	}

	select {
	case w.runQueue <- run:
		log.Printf("📥 Run %s enqueued for recovery\n", run.ID)
		return true
	case <-w.stopChan:
		w.release(run.ID)
		log.Printf("⚠️  Worker stopped, cannot enqueue run %s\n", run.ID)
		return false
	}
}

func (w *worker) claim(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inFlight[id]; ok {
		return false
	}
	w.inFlight[id] = struct{}{}
	return true
}

func (w *worker) release(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, id)
}

func (w *worker) processRuns(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case run := <-w.runQueue:
			w.recover(ctx, workerID, run)
			w.release(run.ID)
		}
	}
}

func (w *worker) recover(ctx context.Context, workerID int, run models.ExtractionRun) {
	attempts, err := w.runs.IncrementAttempts(ctx, run.ID)
	if err != nil {
		log.Printf("❌ Worker #%d could not claim run %s: %v\n", workerID, run.ID, err)
		return
	}
	if attempts > maxRecoveryAttempts {
		log.Printf("❌ Run %s exceeded %d recovery attempts, giving up\n", run.ID, maxRecoveryAttempts)
		if err := w.runs.MarkFailed(ctx, run.ID, "recovery attempts exhausted"); err != nil {
			log.Printf("⚠️  Failed to mark run %s failed: %v\n", run.ID, err)
		}
		return
	}

	log.Printf("👷 Worker #%d re-applying %s run %s (attempt %d)\n", workerID, run.Kind, run.ID, attempts)
	if err := w.pipeline.ApplyRun(ctx, &run); err != nil {
		log.Printf("❌ Worker #%d failed to recover run %s: %v\n", workerID, run.ID, err)
		return
	}
	log.Printf("✅ Worker #%d recovered run %s\n", workerID, run.ID)
}

// RecoverOnce implements Worker.
func (w *worker) RecoverOnce(ctx context.Context) int {
	stalled, err := w.runs.FindStalled(ctx, w.grace, recoveryBatchSize)
	if err != nil {
		log.Printf("⚠️  Failed to fetch stalled runs: %v\n", err)
		return 0
	}

	if len(stalled) > 0 {
		log.Printf("📋 Found %d stalled extraction runs\n", len(stalled))
	}

	enqueued := 0
	for _, run := range stalled {
		if w.Enqueue(run) {
			enqueued++
		}
	}
	return enqueued
}

func (w *worker) pollStalledRuns(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Println("🔄 Starting stalled runs poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Stalled runs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RecoverOnce(ctx)
		}
	}
}
