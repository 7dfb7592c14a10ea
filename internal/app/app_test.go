package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"family-meal-planner/internal/database"
	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/shared"
	"family-meal-planner/internal/shopping"
	"family-meal-planner/internal/storage"
)

type scriptedTextGenerator struct {
	responses []llm.ContentResponse
	calls     int
}

func (s *scriptedTextGenerator) GenerateContent(_ context.Context, _ string) (llm.ContentResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return llm.ContentResponse{}, nil
}

func newTestApp(t *testing.T, gen llm.TextGenerator) *App {
	t.Helper()
	dir := t.TempDir()

	prefs, err := storage.NewPreferenceStore(filepath.Join(dir, "preferences.json"))
	if err != nil {
		t.Fatal(err)
	}
	db, err := database.NewDB(filepath.Join(dir, "planner.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	fetcher := recipe.NewFetcher(gen)
	return &App{
		Prefs:      prefs,
		History:    storage.NewHistoryStore(db.SQL),
		Generator:  planner.NewGenerator(gen, fetcher, &planner.Remixer{OilyFishIngredient: "salmon fillet"}),
		Aggregator: shopping.NewAggregator(shopping.NewNormalizer(nil)),
		Metrics:    metrics.NewStore(db.SQL),
	}
}

const validPlanResponse = `{
	"days": [
		{
			"day": "Monday",
			"meal": "Salmon Traybake",
			"description": "Roasted salmon with veg.",
			"is_remixed": false,
			"contains_oily_fish": true,
			"ingredients": [
				{"name": "salmon fillet", "quantity": 4, "unit": "piece", "category": "fish"},
				{"name": "Tomatoes", "quantity": 3, "unit": "whole", "category": "fruit_veg"}
			],
			"preparation_instructions": ["Roast everything for 25 minutes."]
		},
		{
			"day": "Tuesday",
			"meal": "Deconstructed Fish Pie",
			"description": "All the parts, plated separately.",
			"is_remixed": true,
			"contains_oily_fish": false,
			"ingredients": [
				{"name": "white fish", "quantity": 400, "unit": "g", "category": "fish"},
				{"name": "tomato", "quantity": 2, "unit": "whole", "category": "fruit_veg"}
			],
			"preparation_instructions": ["Poach the fish.", "Serve with mash."]
		},
		{
			"day": "Wednesday",
			"meal": "Veggie Chilli",
			"description": "A hearty bean chilli.",
			"is_remixed": false,
			"contains_oily_fish": false,
			"ingredients": [{"name": "kidney beans", "quantity": 400, "unit": "g", "category": "pantry"}],
			"preparation_instructions": ["Simmer for 30 minutes."]
		}
	]
}`

func TestApp_GenerateMealPlan(t *testing.T) {
	gen := &scriptedTextGenerator{responses: []llm.ContentResponse{
		{Content: validPlanResponse, Usage: planUsage()},
	}}
	a := newTestApp(t, gen)
	ctx := context.Background()

	if err := a.Prefs.SetFamily(4, []int{6, 9}); err != nil {
		t.Fatal(err)
	}
	if err := a.Prefs.SetMealCount(3); err != nil {
		t.Fatal(err)
	}

	plan, list, err := a.GenerateMealPlan(ctx)
	if err != nil {
		t.Fatalf("GenerateMealPlan() error = %v", err)
	}
	if len(plan.Days) != 3 {
		t.Errorf("got %d days, want 3", len(plan.Days))
	}
	if len(list.Items) == 0 {
		t.Fatal("shopping list is empty")
	}

	// merged lines are unique per (name, unit)
	seen := map[string]bool{}
	for _, item := range list.Items {
		key := item.Name + "|" + item.Unit
		if seen[key] {
			t.Errorf("duplicate shopping line %q", key)
		}
		seen[key] = true
		if item.Category == "" {
			t.Errorf("item %q has no category", item.Name)
		}
	}
	if !seen["tomato|whole"] {
		t.Errorf("tomatoes not merged: %+v", list.Items)
	}

	// plan persisted and list cached
	all, err := a.History.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != plan.ID {
		t.Errorf("history = %+v", all)
	}
	if cached, ok := a.Prefs.ShoppingList(plan.ID); !ok || len(cached.Items) != len(list.Items) {
		t.Error("shopping list not cached")
	}

	// generation metrics recorded
	usage, err := a.Metrics.GetDailyUsage(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(usage) != 1 || usage[0].TotalExecution != 1 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestApp_GenerateMealPlanFailureLeavesHistoryAlone(t *testing.T) {
	garbage := llm.ContentResponse{Content: "no json here"}
	gen := &scriptedTextGenerator{responses: []llm.ContentResponse{garbage, garbage, garbage}}
	a := newTestApp(t, gen)
	ctx := context.Background()

	// No liked foods, so repair has nothing to build from.
	_, _, err := a.GenerateMealPlan(ctx)
	if !errors.Is(err, planner.ErrGenerationFailed) {
		t.Fatalf("error = %v, want ErrGenerationFailed", err)
	}

	all, err := a.History.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("history has %d plans after a failed generation, want 0", len(all))
	}
}

func TestApp_ShoppingListRebuildsFromHistory(t *testing.T) {
	gen := &scriptedTextGenerator{responses: []llm.ContentResponse{{Content: validPlanResponse}}}
	a := newTestApp(t, gen)
	ctx := context.Background()

	a.Prefs.SetMealCount(3)
	a.Prefs.AddLikedFood("fish pie")

	plan, _, err := a.GenerateMealPlan(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Wipe the cache by loading a fresh preference store.
	fresh, err := storage.NewPreferenceStore(filepath.Join(t.TempDir(), "preferences.json"))
	if err != nil {
		t.Fatal(err)
	}
	a.Prefs = fresh

	list, err := a.ShoppingList(ctx, plan.ID)
	if err != nil {
		t.Fatalf("ShoppingList() error = %v", err)
	}
	if len(list.Items) == 0 {
		t.Error("rebuilt shopping list is empty")
	}
	if _, ok := a.Prefs.ShoppingList(plan.ID); !ok {
		t.Error("rebuilt list was not cached")
	}

	if _, err := a.ShoppingList(ctx, "missing-plan"); err == nil {
		t.Error("expected error for an unknown plan")
	}
}

func planUsage() shared.TokenUsage {
	return shared.TokenUsage{PromptTokens: 200, CompletionTokens: 150, TotalTokens: 350, Model: "test-model"}
}
