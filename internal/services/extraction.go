package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/schemas"
)

const (
	TemperatureResumeParse  float32 = 0.1
	TemperatureJobAnalysis  float32 = 0.2
	TemperatureTailoring    float32 = 0.4
	minJobDescriptionLength         = 50
)

// ExtractionTask is one prompt sent to a structured-output model.
type ExtractionTask struct {
	Name        string
	Prompt      string
	Temperature float32
}

// ExtractionProvider returns the model's raw reply for a task. The reply is
// not assumed to be valid JSON.
type ExtractionProvider interface {
	Extract(ctx context.Context, task ExtractionTask) (json.RawMessage, error)
}

// ExtractionClient runs the three extraction tasks against a provider and
// hands back schema-validated records.
type ExtractionClient interface {
	ExtractJobIntelligence(ctx context.Context, rawText string) (*models.JobIntelligence, json.RawMessage, error)
	ExtractResume(ctx context.Context, rawText string) (*models.MasterResume, error)
	ExtractTailoringStrategy(ctx context.Context, intel *models.JobIntelligence, resume *models.MasterResume, evidence string) (*models.TailoringStrategy, json.RawMessage, error)
}

type extractionClient struct {
	provider ExtractionProvider
	prompts  *PromptBuilder
}

func NewExtractionClient(provider ExtractionProvider) ExtractionClient {
	return &extractionClient{
		provider: provider,
		prompts:  NewPromptBuilder(),
	}
}

// ExtractJobIntelligence implements ExtractionClient. The validated payload
// is returned alongside the record so callers can log it durably.
func (c *extractionClient) ExtractJobIntelligence(ctx context.Context, rawText string) (*models.JobIntelligence, json.RawMessage, error) {
	payload, err := c.run(ctx, ExtractionTask{
		Name:        string(schemas.JobIntelligence),
		Prompt:      c.prompts.BuildJobAnalysisPrompt(rawText),
		Temperature: TemperatureJobAnalysis,
	})
	if err != nil {
		return nil, nil, err
	}

	var intel models.JobIntelligence
	if err := schemas.Decode(schemas.JobIntelligence, payload, &intel); err != nil {
		return nil, nil, err
	}

	return &intel, payload, nil
}

// ExtractResume implements ExtractionClient.
func (c *extractionClient) ExtractResume(ctx context.Context, rawText string) (*models.MasterResume, error) {
	payload, err := c.run(ctx, ExtractionTask{
		Name:        string(schemas.MasterResume),
		Prompt:      c.prompts.BuildResumeParsePrompt(rawText),
		Temperature: TemperatureResumeParse,
	})
	if err != nil {
		return nil, err
	}

	var resume models.MasterResume
	if err := schemas.Decode(schemas.MasterResume, payload, &resume); err != nil {
		return nil, err
	}

	return &resume, nil
}

// ExtractTailoringStrategy implements ExtractionClient.
func (c *extractionClient) ExtractTailoringStrategy(ctx context.Context, intel *models.JobIntelligence, resume *models.MasterResume, evidence string) (*models.TailoringStrategy, json.RawMessage, error) {
	intelJSON, err := json.MarshalIndent(intel, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode job intelligence: %w", err)
	}
	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode master resume: %w", err)
	}

	payload, err := c.run(ctx, ExtractionTask{
		Name:        string(schemas.TailoringStrategy),
		Prompt:      c.prompts.BuildTailoringStrategyPrompt(string(intelJSON), string(resumeJSON), evidence),
		Temperature: TemperatureTailoring,
	})
	if err != nil {
		return nil, nil, err
	}

	var strategy models.TailoringStrategy
	if err := schemas.Decode(schemas.TailoringStrategy, payload, &strategy); err != nil {
		return nil, nil, err
	}

	return &strategy, payload, nil
}

// run calls the provider and normalizes its reply. An unparseable reply gets
// exactly one re-prompt with stricter formatting instructions; provider
// errors are returned immediately.
func (c *extractionClient) run(ctx context.Context, task ExtractionTask) (json.RawMessage, error) {
	raw, err := c.provider.Extract(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s extraction: %w", task.Name, err)
	}

	payload, err := NormalizeJSON(raw)
	if err == nil {
		return payload, nil
	}

	log.Printf("⚠️ %s reply was not parseable, re-prompting once\n", task.Name)

	retry := task
	retry.Prompt = c.prompts.BuildStrictRetryPrompt(task.Prompt)
	raw, err = c.provider.Extract(ctx, retry)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s extraction: %w", task.Name, err)
	}

	payload, err = NormalizeJSON(raw)
	if err != nil {
		log.Printf("❌ %s reply still not parseable: %.200q\n", task.Name, string(raw))
		return nil, &ExtractionError{Task: task.Name, Attempts: 2, Err: err}
	}

	return payload, nil
}

// IsModelOutputInvalid reports whether err came from schema validation of a
// model reply.
func IsModelOutputInvalid(err error) bool {
	var ve *schemas.ValidationError
	return errors.As(err, &ve)
}
