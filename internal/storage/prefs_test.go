package storage

import (
	"path/filepath"
	"testing"

	"family-meal-planner/internal/shopping"
)

func newTestStore(t *testing.T) *PreferenceStore {
	t.Helper()
	store, err := NewPreferenceStore(filepath.Join(t.TempDir(), "preferences.json"))
	if err != nil {
		t.Fatalf("NewPreferenceStore() error = %v", err)
	}
	return store
}

func TestPreferenceStore_Defaults(t *testing.T) {
	store := newTestStore(t)
	profile := store.Profile()
	if profile.MealCount != 5 {
		t.Errorf("default MealCount = %d, want 5", profile.MealCount)
	}
	if profile.Members != 2 {
		t.Errorf("default Members = %d, want 2", profile.Members)
	}
}

func TestPreferenceStore_LikeRemovesDislike(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddDislikedFood("Mushrooms"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddLikedFood("mushrooms"); err != nil {
		t.Fatal(err)
	}

	profile := store.Profile()
	if len(profile.DislikedFoods) != 0 {
		t.Errorf("DislikedFoods = %v, want empty", profile.DislikedFoods)
	}
	if len(profile.LikedFoods) != 1 || profile.LikedFoods[0] != "mushrooms" {
		t.Errorf("LikedFoods = %v", profile.LikedFoods)
	}

	// and back the other way
	if err := store.AddDislikedFood("MUSHROOMS"); err != nil {
		t.Fatal(err)
	}
	profile = store.Profile()
	if len(profile.LikedFoods) != 0 {
		t.Errorf("LikedFoods = %v, want empty", profile.LikedFoods)
	}
	if len(profile.DislikedFoods) != 1 {
		t.Errorf("DislikedFoods = %v", profile.DislikedFoods)
	}
}

func TestPreferenceStore_NoDuplicates(t *testing.T) {
	store := newTestStore(t)
	store.AddLikedFood("pasta")
	store.AddLikedFood("Pasta")

	if got := store.Profile().LikedFoods; len(got) != 1 {
		t.Errorf("LikedFoods = %v, want one entry", got)
	}
}

func TestPreferenceStore_MealCountClamped(t *testing.T) {
	store := newTestStore(t)

	store.SetMealCount(12)
	if got := store.Profile().MealCount; got != 7 {
		t.Errorf("MealCount = %d, want 7", got)
	}

	store.SetMealCount(0)
	if got := store.Profile().MealCount; got != 1 {
		t.Errorf("MealCount = %d, want 1", got)
	}
}

func TestPreferenceStore_PersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")

	store, err := NewPreferenceStore(path)
	if err != nil {
		t.Fatal(err)
	}
	store.AddLikedFood("fish pie")
	store.SetFamily(4, []int{6, 9})
	store.StoreShoppingList(&shopping.List{PlanID: "plan-1", Items: []shopping.Item{{Name: "tomato"}}})

	reloaded, err := NewPreferenceStore(path)
	if err != nil {
		t.Fatal(err)
	}

	profile := reloaded.Profile()
	if profile.Members != 4 || len(profile.ChildrenAges) != 2 {
		t.Errorf("family = %+v", profile)
	}
	if len(profile.LikedFoods) != 1 {
		t.Errorf("LikedFoods = %v", profile.LikedFoods)
	}

	list, ok := reloaded.ShoppingList("plan-1")
	if !ok || len(list.Items) != 1 {
		t.Errorf("shopping list not persisted: ok=%v list=%+v", ok, list)
	}
	if _, ok := reloaded.ShoppingList("missing"); ok {
		t.Error("found a shopping list that was never stored")
	}
}
