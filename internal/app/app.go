package app

import (
	"context"
	"fmt"
	"log"

	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/shared"
	"family-meal-planner/internal/shopping"
	"family-meal-planner/internal/storage"
)

// recentPlansForVariety is how many past plans feed the "recently
// eaten" list given to the generator.
const recentPlansForVariety = 2

// App wires the planner, stores and shopping pipeline together.
type App struct {
	Prefs      *storage.PreferenceStore
	History    *storage.HistoryStore
	Generator  *planner.Generator
	Aggregator *shopping.Aggregator
	Metrics    *metrics.Store
	Importer   *recipe.Importer
	Cart       shopping.CartClient
}

// GenerateMealPlan produces and persists a new weekly plan along with
// its shopping list. On failure nothing is written, so the history only
// ever contains valid plans.
func (a *App) GenerateMealPlan(ctx context.Context) (*planner.MealPlan, *shopping.List, error) {
	profile := a.Prefs.Profile()

	recent, err := a.History.Recent(ctx, recentPlansForVariety)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load recent plans: %w", err)
	}
	var recentMeals []string
	for _, p := range recent {
		recentMeals = append(recentMeals, p.MealNames()...)
	}

	plan, metas, err := a.Generator.Generate(ctx, profile, recentMeals)
	a.recordMetas(ctx, metas)
	if err != nil {
		return nil, nil, err
	}

	if err := a.History.Append(ctx, plan); err != nil {
		return nil, nil, fmt.Errorf("failed to save plan: %w", err)
	}

	list := a.Aggregator.Aggregate(ctx, plan)
	if err := a.Prefs.StoreShoppingList(list); err != nil {
		// The plan is saved; the list can be rebuilt on demand.
		log.Printf("warning: failed to cache shopping list: %v", err)
	}
	return plan, list, nil
}

// ShoppingList returns the list for a plan, rebuilding and caching it
// if it was never generated or the cache was lost.
func (a *App) ShoppingList(ctx context.Context, planID string) (*shopping.List, error) {
	if list, ok := a.Prefs.ShoppingList(planID); ok {
		return list, nil
	}

	plan, err := a.History.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	list := a.Aggregator.Aggregate(ctx, plan)
	if err := a.Prefs.StoreShoppingList(list); err != nil {
		log.Printf("warning: failed to cache shopping list: %v", err)
	}
	return list, nil
}

// LatestShoppingList returns the list for the most recent plan.
func (a *App) LatestShoppingList(ctx context.Context) (*shopping.List, error) {
	plan, err := a.History.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("no meal plans generated yet")
	}
	return a.ShoppingList(ctx, plan.ID)
}

// SubmitCart sends a plan's shopping list to the grocery cart service.
func (a *App) SubmitCart(ctx context.Context, planID string) (*shopping.CartResult, error) {
	if a.Cart == nil {
		return nil, fmt.Errorf("cart service is not configured")
	}

	list, err := a.ShoppingList(ctx, planID)
	if err != nil {
		return nil, err
	}
	return a.Cart.Submit(ctx, list)
}

// ImportRecipe pulls a recipe from a URL and records its name as a
// liked food so future plans can use it.
func (a *App) ImportRecipe(ctx context.Context, url string) (*recipe.Imported, error) {
	if a.Importer == nil {
		return nil, fmt.Errorf("recipe importer is not configured")
	}

	imported, err := a.Importer.Import(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := a.Prefs.AddLikedFood(imported.Name); err != nil {
		log.Printf("warning: failed to record imported recipe as liked: %v", err)
	}
	return imported, nil
}

func (a *App) recordMetas(ctx context.Context, metas []shared.AgentMeta) {
	if a.Metrics == nil {
		return
	}
	for _, meta := range metas {
		if err := a.Metrics.RecordMeta(ctx, meta); err != nil {
			log.Printf("warning: failed to record metrics for %s: %v", meta.AgentName, err)
		}
	}
}
