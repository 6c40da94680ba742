package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careerpilot/backend/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.JobApplication) (*models.JobApplication, error)
	FindByID(ctx context.Context, userID, jobID string) (*models.JobApplication, error)
	ListByUser(ctx context.Context, userID string) ([]models.JobApplication, error)
	// Update merges the supplied fields. A job that does not exist is a no-op.
	Update(ctx context.Context, userID, jobID string, update models.JobUpdate) error
	SaveAnalysis(ctx context.Context, userID, jobID string, intel *models.JobIntelligence, positionTitle string) error
	SaveStrategy(ctx context.Context, userID, jobID string, strategy *models.TailoringStrategy) error
	Delete(ctx context.Context, userID, jobID string) error
}

type jobRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewJobRepository(db *gorm.DB, timeout time.Duration) JobRepository {
	return &jobRepository{db: db, timeout: timeout}
}

// Create implements JobRepository.
func (r *jobRepository) Create(ctx context.Context, job *models.JobApplication) (*models.JobApplication, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	record := *job
	record.ID = uuid.NewString()
	if record.Status == "" {
		record.Status = models.StatusWishlist
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, storeErr("create job", err)
	}

	return &record, nil
}

// FindByID implements JobRepository.
func (r *jobRepository) FindByID(ctx context.Context, userID, jobID string) (*models.JobApplication, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var job models.JobApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, jobID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("find job", err)
	}

	return &job, nil
}

// ListByUser implements JobRepository.
func (r *jobRepository) ListByUser(ctx context.Context, userID string) ([]models.JobApplication, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	jobs := []models.JobApplication{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, storeErr("list jobs", err)
	}

	return jobs, nil
}

// Update implements JobRepository.
func (r *jobRepository) Update(ctx context.Context, userID, jobID string, update models.JobUpdate) error {
	cols := update.Columns()
	if len(cols) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("user_id = ? AND id = ?", userID, jobID).
		Updates(cols).Error
	if err != nil {
		return storeErr("update job", err)
	}

	return nil
}

// SaveAnalysis implements JobRepository. An empty positionTitle leaves the
// display title alone.
func (r *jobRepository) SaveAnalysis(ctx context.Context, userID, jobID string, intel *models.JobIntelligence, positionTitle string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	columns := []string{"job_intel"}
	if positionTitle != "" {
		columns = append(columns, "position_title")
	}

	err := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("user_id = ? AND id = ?", userID, jobID).
		Select(columns).
		Updates(&models.JobApplication{JobIntel: intel, PositionTitle: positionTitle}).Error
	if err != nil {
		return storeErr("save analysis", err)
	}

	return nil
}

// SaveStrategy implements JobRepository.
func (r *jobRepository) SaveStrategy(ctx context.Context, userID, jobID string, strategy *models.TailoringStrategy) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("user_id = ? AND id = ?", userID, jobID).
		Select("tailoring_strategy").
		Updates(&models.JobApplication{TailoringStrategy: strategy}).Error
	if err != nil {
		return storeErr("save strategy", err)
	}

	return nil
}

// Delete implements JobRepository.
func (r *jobRepository) Delete(ctx context.Context, userID, jobID string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, jobID).
		Delete(&models.JobApplication{}).Error
	if err != nil {
		return storeErr("delete job", err)
	}

	return nil
}
