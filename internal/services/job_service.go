package services

import (
	"context"
	"errors"
	"fmt"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/repositories"
)

type JobService interface {
	Create(ctx context.Context, job *models.JobApplication) (*models.JobApplication, error)
	List(ctx context.Context, userID string) ([]models.JobApplication, error)
	Get(ctx context.Context, userID, jobID string) (*models.JobApplication, error)
	Update(ctx context.Context, userID, jobID string, update models.JobUpdate) (*models.UpdateResponse, error)
	Delete(ctx context.Context, userID, jobID string) (*models.DeleteResponse, error)
}

type jobService struct {
	jobs repositories.JobRepository
}

func NewJobService(jobs repositories.JobRepository) JobService {
	return &jobService{jobs: jobs}
}

// Create validates the payload and stores it as a fresh record. Extraction
// output and client-supplied ids are never accepted here.
func (s *jobService) Create(ctx context.Context, job *models.JobApplication) (*models.JobApplication, error) {
	record := models.JobApplication{
		UserID:                 job.UserID,
		CompanyName:            job.CompanyName,
		PositionTitle:          job.PositionTitle,
		JobURL:                 job.JobURL,
		Status:                 job.Status,
		RawDescription:         job.RawDescription,
		TailoredResumeMarkdown: job.TailoredResumeMarkdown,
	}
	if record.Status == "" {
		record.Status = models.StatusWishlist
	}
	if !record.Status.Valid() {
		return nil, invalidStatus(record.Status)
	}
	if err := validateRequest(&record); err != nil {
		return nil, err
	}

	created, err := s.jobs.Create(ctx, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

func (s *jobService) List(ctx context.Context, userID string) ([]models.JobApplication, error) {
	jobs, err := s.jobs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (s *jobService) Get(ctx context.Context, userID, jobID string) (*models.JobApplication, error) {
	job, err := s.jobs.FindByID(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "Job"}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// Update applies the allow-listed fields. Updating a job that does not exist
// still acknowledges, matching the store's silent no-op.
func (s *jobService) Update(ctx context.Context, userID, jobID string, update models.JobUpdate) (*models.UpdateResponse, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, invalidStatus(*update.Status)
	}
	if err := validateRequest(&update); err != nil {
		return nil, err
	}

	if err := s.jobs.Update(ctx, userID, jobID, update); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return &models.UpdateResponse{ID: jobID, Updated: true}, nil
}

func (s *jobService) Delete(ctx context.Context, userID, jobID string) (*models.DeleteResponse, error) {
	if err := s.jobs.Delete(ctx, userID, jobID); err != nil {
		return nil, fmt.Errorf("failed to delete job: %w", err)
	}
	return &models.DeleteResponse{Status: "success", Deleted: true, JobID: jobID}, nil
}

func invalidStatus(status models.JobStatus) error {
	return &RequestError{Message: fmt.Sprintf("invalid status %q, expected one of %v", status, models.JobStatuses())}
}
