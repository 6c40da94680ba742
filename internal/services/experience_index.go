package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"careerpilot/backend/internal/models"
)

const defaultEvidenceLimit = 5

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ExperienceIndex keeps one vector per resume bullet so the tailoring prompt
// can cite the candidate's most relevant work.
type ExperienceIndex interface {
	IndexProfile(ctx context.Context, profile *models.MasterResume) (int, error)
	Retrieve(ctx context.Context, userID string, intel *models.JobIntelligence) ([]SearchResult, error)
}

type experienceIndex struct {
	embedder Embedder
	store    VectorStore
	prompts  *PromptBuilder
	limit    int
}

func NewExperienceIndex(embedder Embedder, store VectorStore) ExperienceIndex {
	return &experienceIndex{
		embedder: embedder,
		store:    store,
		prompts:  NewPromptBuilder(),
		limit:    defaultEvidenceLimit,
	}
}

type bullet struct {
	section string
	source  string
	text    string
}

func profileBullets(profile *models.MasterResume) []bullet {
	var out []bullet
	if s := strings.TrimSpace(profile.Summary); s != "" {
		out = append(out, bullet{section: "summary", source: "Summary", text: s})
	}
	for _, exp := range profile.Experience {
		source := strings.TrimSpace(exp.Role + " @ " + exp.Company)
		for _, line := range exp.Description {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, bullet{section: "experience", source: source, text: line})
			}
		}
	}
	for _, proj := range profile.Projects {
		for _, line := range proj.Description {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, bullet{section: "project", source: proj.Name, text: line})
			}
		}
	}
	return out
}

// pointID is stable for a given user, position and text so reindexing the
// same profile writes the same points.
func pointID(userID string, i int, b bullet) string {
	name := fmt.Sprintf("%s|%d|%s|%s|%s", userID, i, b.section, b.source, b.text)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// IndexProfile implements ExperienceIndex. Existing points for the user are
// replaced.
func (e *experienceIndex) IndexProfile(ctx context.Context, profile *models.MasterResume) (int, error) {
	bullets := profileBullets(profile)

	points := make([]VectorPoint, 0, len(bullets))
	for i, b := range bullets {
		vector, err := e.embedder.GenerateEmbedding(ctx, b.source+": "+b.text)
		if err != nil {
			return 0, fmt.Errorf("failed to embed bullet %d: %w", i, err)
		}
		points = append(points, VectorPoint{
			ID:      pointID(profile.UserID, i, b),
			Vector:  vector,
			UserID:  profile.UserID,
			Text:    b.text,
			Source:  b.source,
			Section: b.section,
		})
	}

	if err := e.store.DeleteByUser(ctx, profile.UserID); err != nil {
		return 0, err
	}
	if err := e.store.Upsert(ctx, points); err != nil {
		return 0, err
	}

	log.Printf("✅ Indexed %d resume bullets for user %s\n", len(points), profile.UserID)
	return len(points), nil
}

// Retrieve implements ExperienceIndex.
func (e *experienceIndex) Retrieve(ctx context.Context, userID string, intel *models.JobIntelligence) ([]SearchResult, error) {
	query := e.prompts.BuildRetrievalQuery(intel.RoleName, intel.HardSkills)

	vector, err := e.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	return e.store.Search(ctx, vector, userID, e.limit)
}

// nopExperienceIndex is used when Qdrant is not configured.
type nopExperienceIndex struct{}

func NewNopExperienceIndex() ExperienceIndex {
	return nopExperienceIndex{}
}

func (nopExperienceIndex) IndexProfile(context.Context, *models.MasterResume) (int, error) {
	return 0, nil
}

func (nopExperienceIndex) Retrieve(context.Context, string, *models.JobIntelligence) ([]SearchResult, error) {
	return nil, nil
}
