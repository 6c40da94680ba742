package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"careerpilot/backend/internal/config"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateJSONWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	timeout    time.Duration
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (GeminiService, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.APIKey == "" {
		if cfg.Project == "" {
			return nil, fmt.Errorf("either GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT must be set")
		}
		clientCfg = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Project,
			Location: cfg.Location,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	log.Printf("✅ Gemini client ready (model=%s, backend=%v)\n", cfg.Model, clientCfg.Backend)

	return &geminiService{
		client:     client,
		modelName:  cfg.Model,
		embedModel: cfg.EmbedModel,
		timeout:    cfg.Timeout,
	}, nil
}

func (g *geminiService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	ctx, cancel := g.bound(ctx)
	defer cancel()

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateJSON implements GeminiService. The model is asked for
// application/json output; the caller still has to parse what comes back.
func (g *geminiService) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genCfg)
	if err != nil {
		log.Printf("❌ Gemini API error: %v\n", err)
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateJSONWithRetry implements GeminiService. Only transport failures are
// retried here; unparseable payloads are handled by the extraction client.
func (g *geminiService) GenerateJSONWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateJSON(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if attempt == maxRetries {
			break
		}

		log.Printf("⚠️ Attempt %d failed: %v. Retrying...\n", attempt, err)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

// geminiProvider adapts GeminiService to ExtractionProvider.
type geminiProvider struct {
	gemini     GeminiService
	maxRetries int
}

func NewGeminiProvider(gemini GeminiService, maxRetries int) ExtractionProvider {
	return &geminiProvider{gemini: gemini, maxRetries: maxRetries}
}

// Extract implements ExtractionProvider.
func (p *geminiProvider) Extract(ctx context.Context, task ExtractionTask) (json.RawMessage, error) {
	log.Printf("🤖 Running %s extraction (prompt %d chars)\n", task.Name, len(task.Prompt))

	text, err := p.gemini.GenerateJSONWithRetry(ctx, task.Prompt, task.Temperature, p.maxRetries)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(text), nil
}
