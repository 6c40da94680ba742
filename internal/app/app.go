// Package app wires configuration, stores and services into the object graph
// shared by the API server and the pilotctl CLI.
package app

import (
	"context"
	"fmt"
	"log"

	"careerpilot/backend/internal/config"
	"careerpilot/backend/internal/repositories"
	"careerpilot/backend/internal/services"
)

type App struct {
	Config     *config.Config
	Extraction services.ExtractionClient
	Jobs       services.JobService
	Profiles   services.ProfileService
	Pipeline   services.Pipeline
	Storage    services.StorageService
	Worker     services.Worker
}

type stores struct {
	jobs     repositories.JobRepository
	profiles repositories.ProfileRepository
	runs     repositories.ExtractionRunRepository
}

func openStores(cfg *config.Config) (*stores, error) {
	db, err := config.InitDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if db == nil {
		mem := repositories.NewMemoryStore()
		return &stores{jobs: mem.Jobs(), profiles: mem.Profiles(), runs: mem.Runs()}, nil
	}

	timeout := cfg.Store.Timeout
	return &stores{
		jobs:     repositories.NewJobRepository(db, timeout),
		profiles: repositories.NewProfileRepository(db, timeout),
		runs:     repositories.NewExtractionRunRepository(db, timeout),
	}, nil
}

// New builds every service. Retrieval is wired only when Qdrant is
// configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := openStores(cfg)
	if err != nil {
		return nil, err
	}
	log.Println("✅ Repositories initialized successfully")

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	index := services.NewNopExperienceIndex()
	if cfg.Qdrant.Enabled() {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize Qdrant collection: %w", err)
		}
		index = services.NewExperienceIndex(gemini, qdrantService)
		log.Println("✅ Qdrant initialized successfully")
	} else {
		log.Println("⚠️  QDRANT_URL not set, experience retrieval disabled")
	}

	extraction := services.NewExtractionClient(services.NewGeminiProvider(gemini, cfg.Gemini.MaxRetries))
	documents := services.NewDocumentTextService(cfg.Upload.MaxResumeChars)
	pipeline := services.NewPipeline(st.jobs, st.profiles, st.runs, extraction, index)

	worker := services.NewWorker(st.runs, pipeline, services.WorkerOptions{
		Concurrency: cfg.Worker.Concurrency,
		Interval:    cfg.Worker.RecoveryInterval,
		Grace:       cfg.Worker.RecoveryGrace,
	})

	a := &App{
		Config:     cfg,
		Extraction: extraction,
		Jobs:       services.NewJobService(st.jobs),
		Profiles:   services.NewProfileService(st.profiles, extraction, documents, index),
		Pipeline:   pipeline,
		Storage:    services.NewStorageService(cfg.Upload.MaxFileSize),
		Worker:     worker,
	}
	log.Println("✅ Services initialized successfully")
	return a, nil
}
