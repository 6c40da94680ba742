package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/repositories"
	"careerpilot/backend/internal/schemas"
)

const (
	msgNoDescription = "No job description found. Please paste it first."
	msgAnalyzeFirst  = "Job intelligence not found. Please analyze the job first."
	msgProfileFirst  = "User profile not found. Please create your profile first."
)

var errUnknownKind = errors.New("unknown extraction kind")

// Pipeline sequences fetch, precondition checks, extraction and persistence
// for the analyze and strategy flows. Every extraction is logged as an
// ExtractionRun so a payload that never reached the job can be re-applied.
type Pipeline interface {
	AnalyzeJob(ctx context.Context, userID, jobID string) (*models.AnalyzeResponse, error)
	GenerateStrategy(ctx context.Context, userID, jobID string) (*models.TailoringStrategy, error)
	ApplyRun(ctx context.Context, run *models.ExtractionRun) error
}

type pipeline struct {
	jobs       repositories.JobRepository
	profiles   repositories.ProfileRepository
	runs       repositories.ExtractionRunRepository
	extraction ExtractionClient
	index      ExperienceIndex
}

func NewPipeline(
	jobs repositories.JobRepository,
	profiles repositories.ProfileRepository,
	runs repositories.ExtractionRunRepository,
	extraction ExtractionClient,
	index ExperienceIndex,
) Pipeline {
	if index == nil {
		index = NewNopExperienceIndex()
	}
	return &pipeline{
		jobs:       jobs,
		profiles:   profiles,
		runs:       runs,
		extraction: extraction,
		index:      index,
	}
}

func (p *pipeline) loadJob(ctx context.Context, userID, jobID string) (*models.JobApplication, error) {
	job, err := p.jobs.FindByID(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "Job"}
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return job, nil
}

// AnalyzeJob extracts JobIntelligence from the stored description. A missing
// or short description is a soft failure, not an error.
func (p *pipeline) AnalyzeJob(ctx context.Context, userID, jobID string) (*models.AnalyzeResponse, error) {
	job, err := p.loadJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	description := ""
	if job.RawDescription != nil {
		description = strings.TrimSpace(*job.RawDescription)
	}
	if utf8.RuneCountInString(description) < minJobDescriptionLength {
		return &models.AnalyzeResponse{Status: "error", Message: msgNoDescription}, nil
	}

	run, err := p.startRun(ctx, userID, jobID, models.KindJobAnalysis)
	if err != nil {
		return nil, err
	}

	log.Printf("🤖 Analyzing job %s for user %s\n", jobID, userID)
	intel, payload, err := p.extraction.ExtractJobIntelligence(ctx, description)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}

	if err := p.recordExtracted(ctx, run, payload); err != nil {
		return nil, err
	}

	if err := p.jobs.SaveAnalysis(ctx, userID, jobID, intel, strings.TrimSpace(intel.RoleName)); err != nil {
		log.Printf("❌ Analysis for job %s extracted but not saved (run %s): %v\n", jobID, run.ID, err)
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	p.persistedRun(ctx, run)
	log.Printf("✅ Job %s analyzed: %s\n", jobID, intel.RoleName)

	return &models.AnalyzeResponse{Status: "success", Data: intel}, nil
}

// GenerateStrategy compares the job's intelligence with the user's profile.
// Job and profile are read independently.
func (p *pipeline) GenerateStrategy(ctx context.Context, userID, jobID string) (*models.TailoringStrategy, error) {
	job, err := p.loadJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.JobIntel == nil {
		return nil, &PreconditionError{Message: msgAnalyzeFirst}
	}

	profile, err := p.profiles.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &PreconditionError{Message: msgProfileFirst}
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	evidence := ""
	results, err := p.index.Retrieve(ctx, userID, job.JobIntel)
	if err != nil {
		log.Printf("⚠️  Failed to retrieve resume evidence for job %s: %v\n", jobID, err)
	} else {
		evidence = FormatRAGContext(results)
	}

	run, err := p.startRun(ctx, userID, jobID, models.KindTailoringStrategy)
	if err != nil {
		return nil, err
	}

	log.Printf("🤖 Generating strategy for job %s\n", jobID)
	strategy, payload, err := p.extraction.ExtractTailoringStrategy(ctx, job.JobIntel, profile, evidence)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, fmt.Errorf("strategy generation failed: %w", err)
	}

	if err := p.recordExtracted(ctx, run, payload); err != nil {
		return nil, err
	}

	if err := p.jobs.SaveStrategy(ctx, userID, jobID, strategy); err != nil {
		log.Printf("❌ Strategy for job %s extracted but not saved (run %s): %v\n", jobID, run.ID, err)
		return nil, fmt.Errorf("failed to save strategy: %w", err)
	}

	p.persistedRun(ctx, run)
	log.Printf("✅ Strategy for job %s generated (match score %d)\n", jobID, strategy.MatchScore)

	return strategy, nil
}

// ApplyRun re-persists the validated payload of an extracted run.
func (p *pipeline) ApplyRun(ctx context.Context, run *models.ExtractionRun) error {
	if run.Phase != models.PhaseExtracted {
		return fmt.Errorf("run %s is %s, not %s", run.ID, run.Phase, models.PhaseExtracted)
	}

	payload := json.RawMessage(run.Payload)
	var err error
	switch run.Kind {
	case models.KindJobAnalysis:
		var intel models.JobIntelligence
		if err = schemas.Decode(schemas.JobIntelligence, payload, &intel); err == nil {
			err = p.jobs.SaveAnalysis(ctx, run.UserID, run.JobID, &intel, strings.TrimSpace(intel.RoleName))
		}
	case models.KindTailoringStrategy:
		var strategy models.TailoringStrategy
		if err = schemas.Decode(schemas.TailoringStrategy, payload, &strategy); err == nil {
			err = p.jobs.SaveStrategy(ctx, run.UserID, run.JobID, &strategy)
		}
	default:
		err = fmt.Errorf("%w %q", errUnknownKind, run.Kind)
	}

	if err != nil {
		var ve *schemas.ValidationError
		// Payloads that can never apply are failed; store errors are retried.
		if errors.As(err, &ve) || errors.Is(err, errUnknownKind) {
			p.failRun(ctx, run, err)
		}
		return fmt.Errorf("failed to apply run %s: %w", run.ID, err)
	}

	if err := p.runs.MarkPersisted(ctx, run.ID); err != nil {
		return fmt.Errorf("failed to mark run %s persisted: %w", run.ID, err)
	}
	return nil
}

func (p *pipeline) startRun(ctx context.Context, userID, jobID string, kind models.ExtractionKind) (*models.ExtractionRun, error) {
	run := &models.ExtractionRun{
		UserID: userID,
		JobID:  jobID,
		Kind:   kind,
		Phase:  models.PhasePending,
	}
	if err := p.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record extraction run: %w", err)
	}
	return run, nil
}

// recordExtracted stores the validated payload before the job is touched. A
// job write is only attempted once the payload is recoverable from the log.
func (p *pipeline) recordExtracted(ctx context.Context, run *models.ExtractionRun, payload json.RawMessage) error {
	if err := p.runs.MarkExtracted(ctx, run.ID, string(payload)); err != nil {
		log.Printf("❌ Failed to record extracted run %s: %v\n", run.ID, err)
		p.failRun(ctx, run, err)
		return fmt.Errorf("failed to record extraction run: %w", err)
	}
	return nil
}

func (p *pipeline) failRun(ctx context.Context, run *models.ExtractionRun, cause error) {
	if err := p.runs.MarkFailed(ctx, run.ID, cause.Error()); err != nil {
		log.Printf("⚠️  Failed to mark run %s failed: %v\n", run.ID, err)
	}
}

func (p *pipeline) persistedRun(ctx context.Context, run *models.ExtractionRun) {
	if err := p.runs.MarkPersisted(ctx, run.ID); err != nil {
		log.Printf("⚠️  Failed to mark run %s persisted: %v\n", run.ID, err)
	}
}
