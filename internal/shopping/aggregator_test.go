package shopping

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/recipe"
)

type mockTextGenerator struct {
	response llm.ContentResponse
	err      error
	prompts  []string
}

func (m *mockTextGenerator) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func planWith(ingredients ...[]recipe.Ingredient) *planner.MealPlan {
	plan := &planner.MealPlan{ID: "plan-1"}
	for i, ings := range ingredients {
		plan.Days = append(plan.Days, planner.MealDay{
			Day:         planner.WeekDays[i],
			Meal:        "Meal",
			Ingredients: ings,
			Recipe:      recipe.Recipe{Instructions: []string{"Cook."}},
		})
	}
	return plan
}

func TestAggregator_MergesAcrossDays(t *testing.T) {
	plan := planWith(
		[]recipe.Ingredient{
			{Name: "Tomato", Quantity: 2, Unit: "whole", Category: "fruit_veg"},
			{Name: "Chicken Breast", Quantity: 2, Unit: "piece", Category: "meat"},
		},
		[]recipe.Ingredient{
			{Name: "Tomatoes", Quantity: 3, Unit: "whole", Category: "fruit_veg"},
		},
	)

	agg := NewAggregator(NewNormalizer(nil))
	list := agg.Aggregate(context.Background(), plan)

	if list.PlanID != "plan-1" {
		t.Errorf("PlanID = %q", list.PlanID)
	}
	if len(list.Items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(list.Items), list.Items)
	}

	// fruit_veg sorts before meat
	if list.Items[0].Name != "tomato" || list.Items[0].Quantity != 5 {
		t.Errorf("merged tomato line = %+v", list.Items[0])
	}
	if list.Items[1].Name != "chicken breast" || list.Items[1].Category != "meat" {
		t.Errorf("chicken line = %+v", list.Items[1])
	}
}

func TestAggregator_KeepsIncompatibleUnitsApart(t *testing.T) {
	plan := planWith(
		[]recipe.Ingredient{{Name: "flour", Quantity: 200, Unit: "g", Category: "pantry"}},
		[]recipe.Ingredient{{Name: "flour", Quantity: 1, Unit: "cup", Category: "pantry"}},
	)

	agg := NewAggregator(NewNormalizer(nil))
	list := agg.Aggregate(context.Background(), plan)

	if len(list.Items) != 2 {
		t.Fatalf("got %d items, want 2 separate flour lines: %+v", len(list.Items), list.Items)
	}
	for _, item := range list.Items {
		if item.Name != "flour" {
			t.Errorf("unexpected item %+v", item)
		}
	}
}

func TestAggregator_IsIdempotent(t *testing.T) {
	plan := planWith(
		[]recipe.Ingredient{
			{Name: "Large Onions", Quantity: 2, Unit: "whole", Category: "fruit_veg"},
			{Name: "salmon fillet", Quantity: 4, Unit: "piece", Category: "fish"},
		},
	)

	agg := NewAggregator(NewNormalizer(nil))
	first := agg.Aggregate(context.Background(), plan)

	// Re-aggregate a plan built from the already normalized items.
	var reIngredients []recipe.Ingredient
	for _, item := range first.Items {
		reIngredients = append(reIngredients, recipe.Ingredient{
			Name: item.Name, Quantity: item.Quantity, Unit: item.Unit, Category: item.Category,
		})
	}
	second := agg.Aggregate(context.Background(), planWith(reIngredients))
	second.PlanID = first.PlanID

	if !reflect.DeepEqual(first.Items, second.Items) {
		t.Errorf("aggregation not idempotent:\nfirst:  %+v\nsecond: %+v", first.Items, second.Items)
	}
}

func TestAggregator_UsesModelCanonicalization(t *testing.T) {
	mock := &mockTextGenerator{
		response: llm.ContentResponse{
			Content: `{"mappings": {"vine-ripened tomatoes": "tomato", "cherry tomatoes": "tomato"}}`,
		},
	}

	plan := planWith(
		[]recipe.Ingredient{
			{Name: "vine-ripened tomatoes", Quantity: 4, Unit: "whole", Category: "fruit_veg"},
			{Name: "cherry tomatoes", Quantity: 6, Unit: "whole", Category: "fruit_veg"},
		},
	)

	agg := NewAggregator(NewNormalizer(mock))
	list := agg.Aggregate(context.Background(), plan)

	if len(list.Items) != 1 {
		t.Fatalf("got %d items, want 1 merged tomato line: %+v", len(list.Items), list.Items)
	}
	if list.Items[0].Name != "tomato" || list.Items[0].Quantity != 10 {
		t.Errorf("merged line = %+v", list.Items[0])
	}
}

func TestAggregator_FallsBackToRulesOnBackendFailure(t *testing.T) {
	mock := &mockTextGenerator{err: errors.New("backend down")}

	plan := planWith(
		[]recipe.Ingredient{
			{Name: "Tomatoes", Quantity: 3, Unit: "whole", Category: "fruit_veg"},
			{Name: "fresh tomato", Quantity: 2, Unit: "whole", Category: "fruit_veg"},
		},
	)

	agg := NewAggregator(NewNormalizer(mock))
	list := agg.Aggregate(context.Background(), plan)

	if len(list.Items) != 1 || list.Items[0].Name != "tomato" || list.Items[0].Quantity != 5 {
		t.Errorf("rule fallback merge failed: %+v", list.Items)
	}
}

func TestAggregator_PantryStaplesFilter(t *testing.T) {
	plan := planWith(
		[]recipe.Ingredient{
			{Name: "salt", Quantity: 1, Unit: "pinch", Category: "pantry"},
			{Name: "flour", Quantity: 200, Unit: "g", Category: "pantry"},
		},
	)

	t.Run("off by default", func(t *testing.T) {
		agg := NewAggregator(NewNormalizer(nil))
		list := agg.Aggregate(context.Background(), plan)
		if len(list.Items) != 2 {
			t.Errorf("got %d items, want 2: %+v", len(list.Items), list.Items)
		}
	})

	t.Run("drops staples but keeps flour when on", func(t *testing.T) {
		agg := NewAggregator(NewNormalizer(nil))
		agg.ExcludePantryStaples = true
		list := agg.Aggregate(context.Background(), plan)
		if len(list.Items) != 1 || list.Items[0].Name != "flour" {
			t.Errorf("got %+v, want just flour", list.Items)
		}
	})
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Tomatoes", "tomato"},
		{"fresh large onions", "onion"},
		{"Bell Pepper", "pepper"},
		{"garlic cloves", "garlic"},
		{"berries", "berry"},
		{"potatoes", "potato"},
		{"couscous", "couscous"},
		{"hummus", "hummus"},
		{"  Chopped   Spinach  ", "spinach"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := NormalizeName(tt.raw); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
