package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"careerpilot/backend/internal/models"
)

type ProfileRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.MasterResume, error)
	// Save merge-writes profile under userID and returns the stored record.
	Save(ctx context.Context, userID string, profile *models.MasterResume) (*models.MasterResume, error)
	List(ctx context.Context) ([]models.MasterResume, error)
}

type profileRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewProfileRepository(db *gorm.DB, timeout time.Duration) ProfileRepository {
	return &profileRepository{db: db, timeout: timeout}
}

// FindByUser implements ProfileRepository.
func (r *profileRepository) FindByUser(ctx context.Context, userID string) (*models.MasterResume, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var profile models.MasterResume
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("find profile", err)
	}

	return &profile, nil
}

// Save implements ProfileRepository.
func (r *profileRepository) Save(ctx context.Context, userID string, profile *models.MasterResume) (*models.MasterResume, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var saved models.MasterResume
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&saved).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		saved.Merge(profile)
		saved.UserID = userID
		saved.UpdatedAt = time.Now().UTC()

		return tx.Save(&saved).Error
	})
	if err != nil {
		return nil, storeErr("save profile", err)
	}

	return &saved, nil
}

// List implements ProfileRepository.
func (r *profileRepository) List(ctx context.Context) ([]models.MasterResume, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	profiles := []models.MasterResume{}
	if err := r.db.WithContext(ctx).Order("user_id ASC").Find(&profiles).Error; err != nil {
		return nil, storeErr("list profiles", err)
	}

	return profiles, nil
}
