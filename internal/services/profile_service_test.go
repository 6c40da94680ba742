package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/repositories"
	"careerpilot/backend/internal/schemas"
)

type profileFixture struct {
	svc      ProfileService
	store    *repositories.MemoryStore
	provider *fakeProvider
	vectors  *fakeVectorStore
}

func newProfileFixture() *profileFixture {
	store := repositories.NewMemoryStore()
	provider := defaultFakeProvider()
	vectors := newFakeVectorStore()
	svc := NewProfileService(
		store.Profiles(),
		NewExtractionClient(provider),
		NewDocumentTextService(20000),
		NewExperienceIndex(&fakeEmbedder{}, vectors),
	)
	return &profileFixture{svc: svc, store: store, provider: provider, vectors: vectors}
}

func TestProfileService_SaveThenGetRoundTrip(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	profile := sampleProfile("ignored")
	saved, err := f.svc.Save(ctx, "u1", profile)
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.UserID)

	got, err := f.svc.Get(ctx, "u1")
	require.NoError(t, err)

	want := *profile
	want.UserID = "u1"
	got.UpdatedAt = want.UpdatedAt
	assert.Equal(t, &want, got)
}

func TestProfileService_PartialSaveKeepsFields(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	_, err := f.svc.Save(ctx, "u1", sampleProfile("u1"))
	require.NoError(t, err)

	saved, err := f.svc.Save(ctx, "u1", &models.MasterResume{Skills: []string{"Go", "Rust"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", saved.FullName)
	assert.Equal(t, []string{"Go", "Rust"}, saved.Skills)
	assert.Len(t, saved.Experience, 1)
}

func TestProfileService_FirstSaveNeedsName(t *testing.T) {
	f := newProfileFixture()

	_, err := f.svc.Save(context.Background(), "u1", &models.MasterResume{Skills: []string{"Go"}})
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, err.Error(), "full_name")
}

func TestProfileService_RejectsBadLink(t *testing.T) {
	f := newProfileFixture()

	profile := sampleProfile("u1")
	profile.Links = []models.ProfileLink{{Label: "Site", URL: "nope"}}
	_, err := f.svc.Save(context.Background(), "u1", profile)
	var re *RequestError
	assert.True(t, errors.As(err, &re))
}

func TestProfileService_SaveIndexesBestEffort(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewProfileService(
		store.Profiles(),
		NewExtractionClient(defaultFakeProvider()),
		NewDocumentTextService(20000),
		NewExperienceIndex(&fakeEmbedder{err: errors.New("embedding quota")}, newFakeVectorStore()),
	)

	_, err := svc.Save(context.Background(), "u1", sampleProfile("u1"))
	require.NoError(t, err)

	f := newProfileFixture()
	_, err = f.svc.Save(context.Background(), "u1", sampleProfile("u1"))
	require.NoError(t, err)
	assert.Equal(t, 4, f.vectors.count("u1"))
}

func TestProfileService_GetMissing(t *testing.T) {
	_, err := newProfileFixture().svc.Get(context.Background(), "nobody")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Profile not found", err.Error())
}

func TestProfileService_ParseResumeDoesNotPersist(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	resume, err := f.svc.ParseResume(ctx, &Upload{
		Filename:    "resume.txt",
		ContentType: "text/plain",
		Data:        []byte("Ada Lovelace\nBackend engineer\nInitech 2019-2024"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", resume.FullName)
	assert.Contains(t, f.provider.lastPrompt(schemas.MasterResume), "Initech 2019-2024")

	_, err = f.svc.Get(ctx, "u1")
	assert.Error(t, err)
}

func TestProfileService_ParseResumeFailures(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	_, err := f.svc.ParseResume(ctx, &Upload{Filename: "photo.png", ContentType: "image/png", Data: []byte("x")})
	var re *RequestError
	assert.True(t, errors.As(err, &re))

	f.provider.script(schemas.MasterResume, "nope", "still nope")
	_, err = f.svc.ParseResume(ctx, &Upload{Filename: "resume.txt", Data: []byte("Ada")})
	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Contains(t, err.Error(), "resume parsing failed")
}

func TestProfileService_ReindexAll(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	_, err := f.svc.Save(ctx, "u1", sampleProfile("u1"))
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, "u2", sampleProfile("u2"))
	require.NoError(t, err)

	n, err := f.svc.ReindexAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 4, f.vectors.count("u2"))
}
