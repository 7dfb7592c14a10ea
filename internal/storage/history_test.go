package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"family-meal-planner/internal/database"
	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/recipe"
)

func newTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHistoryStore(db.SQL)
}

func testPlan(id string, generatedAt time.Time, meals ...string) *planner.MealPlan {
	plan := &planner.MealPlan{
		ID:          id,
		WeekStart:   planner.NextWeekStart(generatedAt),
		GeneratedAt: generatedAt,
	}
	for i, meal := range meals {
		plan.Days = append(plan.Days, planner.MealDay{
			Day:         planner.WeekDays[i],
			Meal:        meal,
			Ingredients: []recipe.Ingredient{{Name: "onion", Quantity: 1, Unit: "whole", Category: "fruit_veg"}},
			Recipe:      recipe.Recipe{Instructions: []string{"Cook."}},
		})
	}
	return plan
}

func TestHistoryStore_AppendAndRecent(t *testing.T) {
	store := newTestHistory(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, meals := range [][]string{
		{"Fish Pie"},
		{"Chicken Curry"},
		{"Veggie Chilli"},
	} {
		plan := testPlan(planner.WeekDays[i], base.AddDate(0, 0, 7*i), meals...)
		plan.ID = meals[0]
		if err := store.Append(ctx, plan); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d plans, want 2", len(recent))
	}
	// oldest of the two most recent comes first
	if recent[0].ID != "Chicken Curry" || recent[1].ID != "Veggie Chilli" {
		t.Errorf("recent order = %s, %s", recent[0].ID, recent[1].ID)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "Fish Pie" {
		t.Errorf("All() = %d plans, first %q", len(all), all[0].ID)
	}
}

func TestHistoryStore_GetAndLatest(t *testing.T) {
	store := newTestHistory(t)
	ctx := context.Background()

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() on empty history: %v", err)
	}
	if latest != nil {
		t.Errorf("Latest() = %+v, want nil", latest)
	}

	plan := testPlan("plan-1", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), "Fish Pie")
	if err := store.Append(ctx, plan); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "plan-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Days[0].Meal != "Fish Pie" {
		t.Errorf("Get() meal = %q", got.Days[0].Meal)
	}

	if _, err := store.Get(ctx, "missing"); err == nil {
		t.Error("Get() on a missing plan did not fail")
	}

	latest, err = store.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.ID != "plan-1" {
		t.Errorf("Latest() = %+v", latest)
	}
}
