package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"careerpilot/backend/internal/models"
)

// MemoryStore keeps jobs, profiles and extraction runs in process. Records go
// in and come out as deep copies so callers never share state with the store.
// Map keys are always taken from strings the store owns; caller strings may
// alias a request buffer that is reused after the call returns.
type MemoryStore struct {
	mu       sync.RWMutex
	jobs     map[string]models.JobApplication
	profiles map[string]models.MasterResume
	runs     map[uuid.UUID]models.ExtractionRun
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:     make(map[string]models.JobApplication),
		profiles: make(map[string]models.MasterResume),
		runs:     make(map[uuid.UUID]models.ExtractionRun),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source used for timestamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Jobs() JobRepository { return memoryJobs{s} }

func (s *MemoryStore) Profiles() ProfileRepository { return memoryProfiles{s} }

func (s *MemoryStore) Runs() ExtractionRunRepository { return memoryRuns{s} }

// deepCopy round-trips through JSON. Every stored type is plain data with
// json tags, so this copies nested slices and pointers without hand-written
// clone code per type.
func deepCopy[T any](in T) T {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func cloneJob(job models.JobApplication) models.JobApplication {
	return deepCopy(job)
}

func cloneProfile(p models.MasterResume) models.MasterResume {
	out := deepCopy(p)
	// UpdatedAt is not serialized.
	out.UpdatedAt = p.UpdatedAt
	return out
}

type memoryJobs struct{ s *MemoryStore }

func (m memoryJobs) Create(ctx context.Context, job *models.JobApplication) (*models.JobApplication, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("create job", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	record := cloneJob(*job)
	record.ID = uuid.NewString()
	if record.Status == "" {
		record.Status = models.StatusWishlist
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = m.s.now()
	}
	m.s.jobs[record.ID] = record

	out := cloneJob(record)
	return &out, nil
}

func (m memoryJobs) FindByID(ctx context.Context, userID, jobID string) (*models.JobApplication, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("find job", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	job, ok := m.s.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, ErrNotFound
	}
	out := cloneJob(job)
	return &out, nil
}

func (m memoryJobs) ListByUser(ctx context.Context, userID string) ([]models.JobApplication, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("list jobs", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	jobs := []models.JobApplication{}
	for _, job := range m.s.jobs {
		if job.UserID == userID {
			jobs = append(jobs, cloneJob(job))
		}
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (m memoryJobs) Update(ctx context.Context, userID, jobID string, update models.JobUpdate) error {
	if err := ctx.Err(); err != nil {
		return storeErr("update job", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	job, ok := m.s.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil
	}
	update.Apply(&job)
	m.s.jobs[job.ID] = job
	return nil
}

func (m memoryJobs) SaveAnalysis(ctx context.Context, userID, jobID string, intel *models.JobIntelligence, positionTitle string) error {
	if err := ctx.Err(); err != nil {
		return storeErr("save analysis", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	job, ok := m.s.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil
	}
	if intel != nil {
		copied := deepCopy(*intel)
		job.JobIntel = &copied
	}
	if positionTitle != "" {
		job.PositionTitle = positionTitle
	}
	m.s.jobs[job.ID] = job
	return nil
}

func (m memoryJobs) SaveStrategy(ctx context.Context, userID, jobID string, strategy *models.TailoringStrategy) error {
	if err := ctx.Err(); err != nil {
		return storeErr("save strategy", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	job, ok := m.s.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil
	}
	if strategy != nil {
		copied := deepCopy(*strategy)
		job.TailoringStrategy = &copied
	}
	m.s.jobs[job.ID] = job
	return nil
}

func (m memoryJobs) Delete(ctx context.Context, userID, jobID string) error {
	if err := ctx.Err(); err != nil {
		return storeErr("delete job", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if job, ok := m.s.jobs[jobID]; ok && job.UserID == userID {
		delete(m.s.jobs, jobID)
	}
	return nil
}

type memoryProfiles struct{ s *MemoryStore }

func (m memoryProfiles) FindByUser(ctx context.Context, userID string) (*models.MasterResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("find profile", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	profile, ok := m.s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneProfile(profile)
	return &out, nil
}

func (m memoryProfiles) Save(ctx context.Context, userID string, profile *models.MasterResume) (*models.MasterResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("save profile", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	saved := cloneProfile(m.s.profiles[userID])
	update := cloneProfile(*profile)
	saved.Merge(&update)
	saved.UserID = strings.Clone(userID)
	saved.UpdatedAt = m.s.now()
	m.s.profiles[saved.UserID] = saved

	out := cloneProfile(saved)
	return &out, nil
}

func (m memoryProfiles) List(ctx context.Context) ([]models.MasterResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("list profiles", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	profiles := make([]models.MasterResume, 0, len(m.s.profiles))
	for _, p := range m.s.profiles {
		profiles = append(profiles, cloneProfile(p))
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].UserID < profiles[j].UserID })
	return profiles, nil
}

type memoryRuns struct{ s *MemoryStore }

func (m memoryRuns) Create(ctx context.Context, run *models.ExtractionRun) error {
	if err := ctx.Err(); err != nil {
		return storeErr("create extraction run", err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Phase == "" {
		run.Phase = models.PhasePending
	}
	now := m.s.now()
	run.CreatedAt = now
	run.UpdatedAt = now
	stored := *run
	stored.UserID = strings.Clone(run.UserID)
	stored.JobID = strings.Clone(run.JobID)
	m.s.runs[run.ID] = stored
	return nil
}

func (m memoryRuns) FindByID(ctx context.Context, id uuid.UUID) (*models.ExtractionRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("find extraction run", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	run, ok := m.s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

func (m memoryRuns) MarkExtracted(ctx context.Context, id uuid.UUID, payload string) error {
	return m.transition(ctx, "mark run extracted", id, func(run *models.ExtractionRun) {
		run.Phase = models.PhaseExtracted
		run.Payload = payload
	})
}

func (m memoryRuns) MarkPersisted(ctx context.Context, id uuid.UUID) error {
	return m.transition(ctx, "mark run persisted", id, func(run *models.ExtractionRun) {
		run.Phase = models.PhasePersisted
		run.ErrorMessage = ""
	})
}

func (m memoryRuns) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return m.transition(ctx, "mark run failed", id, func(run *models.ExtractionRun) {
		run.Phase = models.PhaseFailed
		run.ErrorMessage = errorMsg
	})
}

func (m memoryRuns) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	attempts := 0
	err := m.transition(ctx, "increment run attempts", id, func(run *models.ExtractionRun) {
		run.Attempts++
		attempts = run.Attempts
	})
	return attempts, err
}

func (m memoryRuns) transition(ctx context.Context, op string, id uuid.UUID, apply func(*models.ExtractionRun)) error {
	if err := ctx.Err(); err != nil {
		return storeErr(op, err)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	run, ok := m.s.runs[id]
	if !ok {
		return ErrNotFound
	}
	apply(&run)
	run.UpdatedAt = m.s.now()
	m.s.runs[id] = run
	return nil
}

func (m memoryRuns) FindStalled(ctx context.Context, olderThan time.Duration, limit int) ([]models.ExtractionRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("find stalled runs", err)
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	cutoff := m.s.now().Add(-olderThan)
	var runs []models.ExtractionRun
	for _, run := range m.s.runs {
		if run.Phase == models.PhaseExtracted && run.UpdatedAt.Before(cutoff) {
			runs = append(runs, run)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].UpdatedAt.Before(runs[j].UpdatedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
