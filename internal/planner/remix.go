package planner

import (
	"fmt"
	"hash/fnv"
	"strings"

	"family-meal-planner/internal/recipe"
)

// remixPatterns reshape a familiar meal into something new. The pattern
// for a given meal is picked by hashing its name so the same meal always
// remixes the same way.
var remixPatterns = []string{
	"Deconstructed %s",
	"%s Bowl",
	"%s Tacos",
	"Loaded %s",
	"One-Pan %s",
	"%s Traybake",
	"Cheesy %s Melt",
	"%s Fritters",
	"Crispy %s Bites",
	"Upside-Down %s",
}

var oilyFishWords = []string{
	"salmon", "mackerel", "sardine", "trout", "herring", "anchov", "pilchard", "tuna",
}

var sweetMealWords = []string{
	"dessert", "cake", "pudding", "pancake", "ice cream", "sweet",
}

// Remixer enforces the remix and oily fish plan rules on a set of days.
type Remixer struct {
	// OilyFishIngredient is injected when no day plausibly contains oily
	// fish, e.g. "salmon fillet".
	OilyFishIngredient string
}

// EnsureRemixed guarantees at least one day is a remix. When the model
// flagged none, the day whose meal most resembles a past meal is
// renamed with a remix pattern. With no history overlap the first day
// is remixed.
func (r *Remixer) EnsureRemixed(days []MealDay, recentMeals []string) {
	for i := range days {
		if days[i].IsRemixed {
			return
		}
	}
	if len(days) == 0 {
		return
	}

	best := 0
	bestOverlap := -1
	for i := range days {
		overlap := 0
		for _, past := range recentMeals {
			if o := wordOverlap(days[i].Meal, past); o > overlap {
				overlap = o
			}
		}
		if overlap > bestOverlap {
			best = i
			bestOverlap = overlap
		}
	}

	days[best].Meal = remixName(days[best].Meal)
	days[best].IsRemixed = true
}

// EnsureOilyFish guarantees at least one day contains oily fish. Flags
// with no supporting fish anywhere in the day are cleared first; if
// nothing remains, a configured oily fish ingredient is added to the
// first savoury day.
func (r *Remixer) EnsureOilyFish(days []MealDay) {
	hasOilyFish := false
	for i := range days {
		if days[i].ContainsOilyFish && !mentionsOilyFish(days[i]) {
			days[i].ContainsOilyFish = false
		}
		if !days[i].ContainsOilyFish && mentionsOilyFish(days[i]) {
			days[i].ContainsOilyFish = true
		}
		if days[i].ContainsOilyFish {
			hasOilyFish = true
		}
	}
	if hasOilyFish || len(days) == 0 {
		return
	}

	target := 0
	for i := range days {
		if !isSweetMeal(days[i].Meal) {
			target = i
			break
		}
	}

	ingredient := r.OilyFishIngredient
	if ingredient == "" {
		ingredient = "salmon fillet"
	}
	days[target].Ingredients = append(days[target].Ingredients, recipe.Ingredient{
		Name:     ingredient,
		Quantity: 2,
		Unit:     "piece",
		Category: "fish",
	})
	if days[target].Description != "" {
		days[target].Description += fmt.Sprintf(" Served with %s.", ingredient)
	}
	days[target].ContainsOilyFish = true
}

func remixName(meal string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(meal)))
	pattern := remixPatterns[h.Sum32()%uint32(len(remixPatterns))]
	return fmt.Sprintf(pattern, meal)
}

func mentionsOilyFish(d MealDay) bool {
	var b strings.Builder
	b.WriteString(d.Meal)
	b.WriteString(" ")
	b.WriteString(d.Description)
	for _, ing := range d.Ingredients {
		b.WriteString(" ")
		b.WriteString(ing.Name)
	}
	text := strings.ToLower(b.String())
	for _, w := range oilyFishWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func isSweetMeal(meal string) bool {
	lower := strings.ToLower(meal)
	for _, w := range sweetMealWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

var overlapStopwords = map[string]bool{
	"with": true, "and": true, "the": true, "a": true, "of": true, "in": true,
}

func wordOverlap(a, b string) int {
	seen := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(a)) {
		if !overlapStopwords[w] {
			seen[w] = true
		}
	}
	count := 0
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if seen[w] && !overlapStopwords[w] {
			count++
			seen[w] = false
		}
	}
	return count
}
