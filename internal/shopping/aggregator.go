package shopping

import (
	"context"
	"sort"
	"strings"
	"time"

	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/recipe"
)

// Item is one line on a shopping list.
type Item struct {
	Name     string          `json:"name"`
	Quantity recipe.Quantity `json:"quantity"`
	Unit     string          `json:"unit"`
	Category string          `json:"category"`
}

// List is a shopping list derived from one meal plan.
type List struct {
	PlanID      string    `json:"plan_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Items       []Item    `json:"items"`
}

// categoryRank orders list sections the way the supermarket is laid out.
var categoryRank = map[string]int{
	"fruit_veg": 0,
	"meat":      1,
	"fish":      2,
	"dairy":     3,
	"bakery":    4,
	"frozen":    5,
	"pantry":    6,
	"other":     7,
}

type categoryKeyword struct {
	keyword  string
	category string
}

// categoryKeywords assign a category to items whose recipes disagreed
// or said nothing. First match wins, so more specific words come first.
var categoryKeywords = []categoryKeyword{
	{"frozen", "frozen"},
	{"salmon", "fish"}, {"cod", "fish"}, {"tuna", "fish"}, {"mackerel", "fish"},
	{"sardine", "fish"}, {"trout", "fish"}, {"prawn", "fish"}, {"fish", "fish"},
	{"chicken", "meat"}, {"beef", "meat"}, {"pork", "meat"}, {"lamb", "meat"},
	{"sausage", "meat"}, {"bacon", "meat"}, {"mince", "meat"},
	{"milk", "dairy"}, {"cheese", "dairy"}, {"butter", "dairy"},
	{"yogurt", "dairy"}, {"cream", "dairy"}, {"egg", "dairy"},
	{"bread", "bakery"}, {"roll", "bakery"}, {"wrap", "bakery"}, {"pitta", "bakery"},
	{"flour", "pantry"}, {"oil", "pantry"}, {"rice", "pantry"}, {"pasta", "pantry"},
	{"sugar", "pantry"}, {"stock", "pantry"}, {"sauce", "pantry"},
	{"herb", "pantry"}, {"spice", "pantry"}, {"bean", "pantry"}, {"lentil", "pantry"},
	{"tomato", "fruit_veg"}, {"onion", "fruit_veg"}, {"garlic", "fruit_veg"},
	{"pepper", "fruit_veg"}, {"carrot", "fruit_veg"}, {"potato", "fruit_veg"},
	{"lemon", "fruit_veg"}, {"broccoli", "fruit_veg"}, {"spinach", "fruit_veg"},
}

// Aggregator turns a meal plan's ingredients into a merged,
// supermarket-ordered shopping list.
type Aggregator struct {
	normalizer *Normalizer

	// ExcludePantryStaples drops cupboard items like salt and water.
	ExcludePantryStaples bool
}

// NewAggregator creates a shopping list aggregator.
func NewAggregator(normalizer *Normalizer) *Aggregator {
	return &Aggregator{normalizer: normalizer}
}

// Aggregate merges every ingredient across the plan's days. Ingredients
// sharing a canonical name and a unit are combined by summing their
// quantities; differing units stay as separate lines.
func (a *Aggregator) Aggregate(ctx context.Context, plan *planner.MealPlan) *List {
	var raws []string
	seen := map[string]bool{}
	for _, day := range plan.Days {
		for _, ing := range day.Ingredients {
			if !seen[ing.Name] {
				seen[ing.Name] = true
				raws = append(raws, ing.Name)
			}
		}
	}
	canonical := a.normalizer.Canonicalize(ctx, raws)

	type bucket struct {
		item       Item
		categories map[string]int
	}
	buckets := map[string]*bucket{}
	var order []string

	for _, day := range plan.Days {
		for _, ing := range day.Ingredients {
			name := canonical[ing.Name]
			if name == "" {
				name = NormalizeName(ing.Name)
			}
			if name == "" {
				continue
			}
			if a.ExcludePantryStaples && IsPantryStaple(name) {
				continue
			}

			unit := strings.ToLower(strings.TrimSpace(ing.Unit))
			key := name + "\x00" + unit
			b, ok := buckets[key]
			if !ok {
				b = &bucket{
					item:       Item{Name: name, Unit: unit},
					categories: map[string]int{},
				}
				buckets[key] = b
				order = append(order, key)
			}
			b.item.Quantity += ing.Quantity
			if c := strings.ToLower(strings.TrimSpace(ing.Category)); c != "" {
				b.categories[c]++
			}
		}
	}

	items := make([]Item, 0, len(buckets))
	for _, key := range order {
		b := buckets[key]
		b.item.Category = resolveCategory(b.item.Name, b.categories)
		items = append(items, b.item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := rankOf(items[i].Category), rankOf(items[j].Category)
		if ri != rj {
			return ri < rj
		}
		return items[i].Name < items[j].Name
	})

	return &List{
		PlanID:      plan.ID,
		GeneratedAt: time.Now(),
		Items:       items,
	}
}

// resolveCategory picks the majority category the recipes used, falling
// back to keyword lookup and finally "other".
func resolveCategory(name string, votes map[string]int) string {
	best := ""
	bestCount := 0
	for c, n := range votes {
		if _, known := categoryRank[c]; !known {
			continue
		}
		if n > bestCount || (n == bestCount && c < best) {
			best = c
			bestCount = n
		}
	}
	if best != "" {
		return best
	}

	for _, kw := range categoryKeywords {
		if strings.Contains(name, kw.keyword) {
			return kw.category
		}
	}
	return "other"
}

func rankOf(category string) int {
	if r, ok := categoryRank[category]; ok {
		return r
	}
	return categoryRank["other"]
}
