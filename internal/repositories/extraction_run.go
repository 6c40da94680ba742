package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careerpilot/backend/internal/models"
)

type ExtractionRunRepository interface {
	Create(ctx context.Context, run *models.ExtractionRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ExtractionRun, error)
	MarkExtracted(ctx context.Context, id uuid.UUID, payload string) error
	MarkPersisted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error
	// IncrementAttempts bumps the persistence attempt counter and returns the
	// new value.
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	// FindStalled returns runs stuck in the extracted phase for longer than
	// olderThan, oldest first.
	FindStalled(ctx context.Context, olderThan time.Duration, limit int) ([]models.ExtractionRun, error)
}

type extractionRunRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewExtractionRunRepository(db *gorm.DB, timeout time.Duration) ExtractionRunRepository {
	return &extractionRunRepository{db: db, timeout: timeout}
}

func (r *extractionRunRepository) Create(ctx context.Context, run *models.ExtractionRun) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Phase == "" {
		run.Phase = models.PhasePending
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return storeErr("create extraction run", err)
	}
	return nil
}

func (r *extractionRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ExtractionRun, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var run models.ExtractionRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("find extraction run", err)
	}
	return &run, nil
}

func (r *extractionRunRepository) MarkExtracted(ctx context.Context, id uuid.UUID, payload string) error {
	return r.update(ctx, "mark run extracted", id, map[string]interface{}{
		"phase":   models.PhaseExtracted,
		"payload": payload,
	})
}

func (r *extractionRunRepository) MarkPersisted(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, "mark run persisted", id, map[string]interface{}{
		"phase":         models.PhasePersisted,
		"error_message": "",
	})
}

func (r *extractionRunRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.update(ctx, "mark run failed", id, map[string]interface{}{
		"phase":         models.PhaseFailed,
		"error_message": errorMsg,
	})
}

func (r *extractionRunRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var run models.ExtractionRun
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ExtractionRun{}).
			Where("id = ?", id).
			UpdateColumns(map[string]interface{}{
				"attempts":   gorm.Expr("attempts + 1"),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Select("attempts").Where("id = ?", id).First(&run).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, storeErr("increment run attempts", err)
	}
	return run.Attempts, nil
}

func (r *extractionRunRepository) update(ctx context.Context, op string, id uuid.UUID, updates map[string]interface{}) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.ExtractionRun{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return storeErr(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *extractionRunRepository) FindStalled(ctx context.Context, olderThan time.Duration, limit int) ([]models.ExtractionRun, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var runs []models.ExtractionRun
	err := r.db.WithContext(ctx).
		Where("phase = ? AND updated_at < ?", models.PhaseExtracted, time.Now().UTC().Add(-olderThan)).
		Order("updated_at ASC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, storeErr("find stalled runs", err)
	}
	return runs, nil
}
