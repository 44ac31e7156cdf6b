package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/abm-insights/internal/config"
	"github.com/jonathan/abm-insights/internal/db"
	"github.com/jonathan/abm-insights/internal/llm"
	"github.com/jonathan/abm-insights/internal/notify"
	"github.com/jonathan/abm-insights/internal/pipeline"
	"github.com/jonathan/abm-insights/internal/research"
	"github.com/jonathan/abm-insights/internal/scrape"
	"github.com/jonathan/abm-insights/internal/vectorstore"
	"github.com/jonathan/abm-insights/internal/vectorstore/memory"
	"github.com/jonathan/abm-insights/internal/vectorstore/pgvector"
)

// loadConfig reads the optional config file and applies environment
// overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRunner wires the pipeline from configuration. The returned cleanup
// function releases the LLM client and any database pool.
func buildRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, vectorstore.Store, func(), error) {
	llmCfg := llm.DefaultConfig()
	if cfg.GenerationModel != "" {
		llmCfg.GenerationModel = cfg.GenerationModel
	}
	if cfg.EmbeddingModel != "" {
		llmCfg.EmbeddingModel = cfg.EmbeddingModel
	}
	llmClient, err := llm.NewGeminiClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var fallback research.Searcher
	if cfg.GoogleSearchAPIKey != "" && cfg.GoogleSearchCX != "" {
		gs, err := research.NewGoogleSearcher(ctx, cfg.GoogleSearchAPIKey, cfg.GoogleSearchCX)
		if err != nil {
			log.Printf("Warning: failed to initialize Google search fallback: %v", err)
		} else {
			fallback = gs
		}
	}
	researcher := research.NewClient(research.Config{
		BaseURL:  cfg.ResearchURL,
		APIKey:   cfg.ResearchAPIKey,
		Fallback: fallback,
	})

	var runStore pipeline.RunStore
	var vecStore vectorstore.Store
	cleanup := func() { _ = llmClient.Close() }

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = llmClient.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			_ = llmClient.Close()
			return nil, nil, nil, err
		}
		pgStore := pgvector.New(database.Pool(), cfg.EmbeddingDimension)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			database.Close()
			_ = llmClient.Close()
			return nil, nil, nil, err
		}
		runStore = database
		vecStore = pgStore
		cleanup = func() {
			database.Close()
			_ = llmClient.Close()
		}
	} else {
		log.Printf("No DATABASE_URL configured; using in-memory stores")
		runStore = db.NewMemoryStore()
		vecStore = memory.New()
	}

	threshold := 0.0
	if cfg.SimilarityThreshold != nil {
		threshold = *cfg.SimilarityThreshold
	}
	runner := &pipeline.Runner{
		Store:        runStore,
		Scraper:      scrape.New(0, cfg.UseBrowser),
		Researcher:   researcher,
		Orchestrator: pipeline.NewOrchestrator(llmClient, vecStore, llmClient, cfg.TopK, threshold),
		Notifier:     notify.NewWebhook(cfg.WebhookURL, 0),
	}
	return runner, vecStore, cleanup, nil
}
