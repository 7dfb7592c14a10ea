package app

import (
	"context"
	"fmt"
	"log"

	"family-meal-planner/internal/config"
	"family-meal-planner/internal/database"
	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/shopping"
	"family-meal-planner/internal/storage"
)

// NewTextGenerator builds the model client for the configured provider.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return llm.NewGeminiClient(ctx, cfg)
	case config.ProviderGroq:
		return llm.NewGroqClient(cfg, 0.7), nil
	case config.ProviderOllama:
		return llm.NewOllamaClient(cfg, 0.7), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.LLMProvider)
	}
}

// Build wires the full application from configuration. The returned
// cleanup function closes everything Build opened.
func Build(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	textGen, err := NewTextGenerator(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	prefs, err := storage.NewPreferenceStore(cfg.PreferencesPath)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize preference store: %w", err)
	}

	aggregator := shopping.NewAggregator(shopping.NewNormalizer(textGen))
	aggregator.ExcludePantryStaples = cfg.ExcludePantryStaples

	a := &App{
		Prefs:      prefs,
		History:    storage.NewHistoryStore(db.SQL),
		Generator:  planner.NewGenerator(textGen, recipe.NewFetcher(textGen), &planner.Remixer{OilyFishIngredient: cfg.OilyFishIngredient}),
		Aggregator: aggregator,
		Metrics:    metrics.NewStore(db.SQL),
		Importer:   recipe.NewImporter(textGen),
	}

	if cfg.CartAPIURL != "" && cfg.CartAPIKey != "" {
		cart, err := shopping.NewCartClient(cfg.CartAPIURL, cfg.CartAPIKey, cfg.CartUserID)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to create cart client: %w", err)
		}
		a.Cart = cart
	}

	cleanup := func() {
		if closer, ok := textGen.(llm.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Printf("warning: failed to close model client: %v", err)
			}
		}
		db.Close()
	}
	return a, cleanup, nil
}
