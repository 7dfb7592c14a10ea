package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/shopping"
)

const (
	minMealCount = 1
	maxMealCount = 7
)

// preferencesFile is the on-disk shape of the preferences store.
type preferencesFile struct {
	FamilyInfo struct {
		Members      int   `json:"members"`
		ChildrenAges []int `json:"children_ages"`
	} `json:"family_info"`
	Preferences struct {
		LikedFoods          []string `json:"liked_foods"`
		DislikedFoods       []string `json:"disliked_foods"`
		DietaryRequirements []string `json:"dietary_requirements"`
		MealCount           int      `json:"meal_count"`
	} `json:"preferences"`
	ShoppingLists map[string]*shopping.List `json:"shopping_lists"`
}

// PreferenceStore keeps the family profile and cached shopping lists in
// a single JSON file.
type PreferenceStore struct {
	path string
	mu   sync.Mutex
	data preferencesFile
}

// NewPreferenceStore loads the preferences file, seeding a default
// profile if it does not exist yet.
func NewPreferenceStore(path string) (*PreferenceStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}

	s := &PreferenceStore{path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.data = defaultPreferences()
		if err := s.persist(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	if s.data.ShoppingLists == nil {
		s.data.ShoppingLists = map[string]*shopping.List{}
	}
	s.data.Preferences.MealCount = clampMealCount(s.data.Preferences.MealCount)
	return s, nil
}

func defaultPreferences() preferencesFile {
	var d preferencesFile
	d.FamilyInfo.Members = 2
	d.Preferences.MealCount = 5
	d.ShoppingLists = map[string]*shopping.List{}
	return d
}

func clampMealCount(n int) int {
	if n < minMealCount {
		return minMealCount
	}
	if n > maxMealCount {
		return maxMealCount
	}
	return n
}

// Profile returns the current family profile.
func (s *PreferenceStore) Profile() planner.FamilyProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return planner.FamilyProfile{
		Members:             s.data.FamilyInfo.Members,
		ChildrenAges:        append([]int(nil), s.data.FamilyInfo.ChildrenAges...),
		LikedFoods:          append([]string(nil), s.data.Preferences.LikedFoods...),
		DislikedFoods:       append([]string(nil), s.data.Preferences.DislikedFoods...),
		DietaryRequirements: append([]string(nil), s.data.Preferences.DietaryRequirements...),
		MealCount:           clampMealCount(s.data.Preferences.MealCount),
	}
}

// SetFamily updates the household composition.
func (s *PreferenceStore) SetFamily(members int, childrenAges []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.FamilyInfo.Members = members
	s.data.FamilyInfo.ChildrenAges = childrenAges
	return s.persist()
}

// SetMealCount updates how many meals are planned per week, clamped to
// a sane range.
func (s *PreferenceStore) SetMealCount(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Preferences.MealCount = clampMealCount(n)
	return s.persist()
}

// AddLikedFood records a food the family likes. If it was previously
// disliked, it is removed from that list so the two never conflict.
func (s *PreferenceStore) AddLikedFood(food string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	food = strings.TrimSpace(food)
	if food == "" {
		return fmt.Errorf("food name is empty")
	}
	s.data.Preferences.DislikedFoods = removeFold(s.data.Preferences.DislikedFoods, food)
	s.data.Preferences.LikedFoods = appendUniqueFold(s.data.Preferences.LikedFoods, food)
	return s.persist()
}

// AddDislikedFood records a food the family will not eat, removing it
// from the liked list if present.
func (s *PreferenceStore) AddDislikedFood(food string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	food = strings.TrimSpace(food)
	if food == "" {
		return fmt.Errorf("food name is empty")
	}
	s.data.Preferences.LikedFoods = removeFold(s.data.Preferences.LikedFoods, food)
	s.data.Preferences.DislikedFoods = appendUniqueFold(s.data.Preferences.DislikedFoods, food)
	return s.persist()
}

// AddDietaryRequirement records a standing dietary rule.
func (s *PreferenceStore) AddDietaryRequirement(req string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req = strings.TrimSpace(req)
	if req == "" {
		return fmt.Errorf("dietary requirement is empty")
	}
	s.data.Preferences.DietaryRequirements = appendUniqueFold(s.data.Preferences.DietaryRequirements, req)
	return s.persist()
}

// StoreShoppingList caches a generated shopping list under its plan ID.
func (s *PreferenceStore) StoreShoppingList(list *shopping.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ShoppingLists[list.PlanID] = list
	return s.persist()
}

// ShoppingList returns the cached list for a plan, if there is one.
func (s *PreferenceStore) ShoppingList(planID string) (*shopping.List, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.data.ShoppingLists[planID]
	return list, ok
}

func (s *PreferenceStore) persist() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	return nil
}

func removeFold(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if !strings.EqualFold(item, target) {
			out = append(out, item)
		}
	}
	return out
}

func appendUniqueFold(items []string, item string) []string {
	for _, existing := range items {
		if strings.EqualFold(existing, item) {
			return items
		}
	}
	return append(items, item)
}
