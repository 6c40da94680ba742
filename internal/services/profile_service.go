package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/repositories"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.MasterResume, error)
	Save(ctx context.Context, userID string, profile *models.MasterResume) (*models.MasterResume, error)
	// ParseResume turns an uploaded resume into a structured record. The
	// result is not persisted.
	ParseResume(ctx context.Context, upload *Upload) (*models.MasterResume, error)
	ReindexAll(ctx context.Context) (int, error)
}

type profileService struct {
	profiles   repositories.ProfileRepository
	extraction ExtractionClient
	documents  DocumentTextService
	index      ExperienceIndex
}

func NewProfileService(
	profiles repositories.ProfileRepository,
	extraction ExtractionClient,
	documents DocumentTextService,
	index ExperienceIndex,
) ProfileService {
	if index == nil {
		index = NewNopExperienceIndex()
	}
	return &profileService{
		profiles:   profiles,
		extraction: extraction,
		documents:  documents,
		index:      index,
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.MasterResume, error) {
	profile, err := s.profiles.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "Profile"}
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// Save merge-writes the profile and refreshes the experience index. A first
// save must carry full_name; later saves may be partial.
func (s *profileService) Save(ctx context.Context, userID string, profile *models.MasterResume) (*models.MasterResume, error) {
	if err := validate.StructExcept(profile, "FullName"); err != nil {
		return nil, &RequestError{Message: "invalid profile", Err: err}
	}

	if profile.FullName == "" {
		_, err := s.profiles.FindByUser(ctx, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &RequestError{Message: "full_name is required"}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
	}

	saved, err := s.profiles.Save(ctx, userID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if _, err := s.index.IndexProfile(ctx, saved); err != nil {
		log.Printf("⚠️  Failed to index profile for user %s: %v\n", userID, err)
	}

	return saved, nil
}

func (s *profileService) ParseResume(ctx context.Context, upload *Upload) (*models.MasterResume, error) {
	text, err := s.documents.ExtractText(upload.Filename, upload.ContentType, upload.Data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedDocument) || errors.Is(err, ErrEmptyDocument) {
			return nil, &RequestError{Message: "unreadable resume", Err: err}
		}
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}

	log.Printf("📄 Parsing resume %q (%d chars)\n", upload.Filename, len(text))

	resume, err := s.extraction.ExtractResume(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("resume parsing failed: %w", err)
	}
	return resume, nil
}

// ReindexAll rebuilds the experience index for every stored profile and
// returns the number of bullets written.
func (s *profileService) ReindexAll(ctx context.Context) (int, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	total := 0
	for i := range profiles {
		n, err := s.index.IndexProfile(ctx, &profiles[i])
		if err != nil {
			return total, fmt.Errorf("failed to index profile %s: %w", profiles[i].UserID, err)
		}
		total += n
	}
	return total, nil
}
