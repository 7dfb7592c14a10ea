package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/shared"

	"github.com/google/uuid"
)

// maxPlanRetries is the number of corrective attempts after the first
// generation before falling back to deterministic repair.
const maxPlanRetries = 2

// RecipeFetcher fills in recipe details for a single meal.
type RecipeFetcher interface {
	Fetch(ctx context.Context, mealName, description string) (recipe.Recipe, []recipe.Ingredient, shared.AgentMeta, error)
}

// Generator produces validated weekly meal plans. Unparseable or
// malformed model output is retried with a corrective prompt; output
// that parses but breaks a plan rule, or exhausted retries, is
// repaired deterministically from the last candidate.
type Generator struct {
	textGen llm.TextGenerator
	fetcher RecipeFetcher
	remixer *Remixer
	now     func() time.Time
}

// NewGenerator creates a meal plan generator.
func NewGenerator(textGen llm.TextGenerator, fetcher RecipeFetcher, remixer *Remixer) *Generator {
	return &Generator{
		textGen: textGen,
		fetcher: fetcher,
		remixer: remixer,
		now:     time.Now,
	}
}

// wire shape of a generated day, as requested from the model.
type generatedDay struct {
	Day                     string              `json:"day"`
	Meal                    string              `json:"meal"`
	Description             string              `json:"description"`
	IsRemixed               bool                `json:"is_remixed"`
	ContainsOilyFish        bool                `json:"contains_oily_fish"`
	CookingTime             recipe.Minutes      `json:"cooking_time"`
	Ingredients             []recipe.Ingredient `json:"ingredients"`
	PreparationInstructions []string            `json:"preparation_instructions"`
}

// Generate builds a meal plan for the family, avoiding recently eaten
// meals. The returned metas record every model call made along the way.
func (g *Generator) Generate(ctx context.Context, profile FamilyProfile, recentMeals []string) (*MealPlan, []shared.AgentMeta, error) {
	var metas []shared.AgentMeta
	var lastDays []MealDay
	var backendErr error
	corrective := ""

	for attempt := 0; attempt <= maxPlanRetries; attempt++ {
		prompt, err := renderPlanPrompt(profile, recentMeals, corrective)
		if err != nil {
			return nil, metas, err
		}

		start := g.now()
		resp, err := g.textGen.GenerateContent(ctx, prompt)
		metas = append(metas, shared.AgentMeta{
			AgentName: "plan-generator",
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		})
		if err != nil {
			// Transient backend failures consume retry attempts too;
			// the repair path below can still build a plan offline.
			backendErr = err
			continue
		}

		days, err := parsePlanDays(resp.Content)
		if err != nil {
			corrective = err.Error()
			continue
		}
		lastDays = days

		g.enforce(days, recentMeals)
		plan := g.assemble(days)
		if err := plan.Validate(profile.MealCount); err != nil {
			// The plan parsed but broke a plan rule. That is fixable
			// locally, so go straight to repair instead of spending
			// another model call.
			break
		}
		return plan, metas, nil
	}

	days, err := g.repair(ctx, lastDays, profile, recentMeals, &metas)
	if err != nil {
		if backendErr != nil {
			return nil, metas, fmt.Errorf("plan generation call failed: %w", backendErr)
		}
		return nil, metas, err
	}
	g.enforce(days, recentMeals)

	plan := g.assemble(days)
	if err := plan.Validate(profile.MealCount); err != nil {
		return nil, metas, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return plan, metas, nil
}

// parsePlanDays extracts and decodes the generated days, normalizing
// day labels into Monday-first order regardless of what the model wrote.
func parsePlanDays(content string) ([]MealDay, error) {
	raw, ok := llm.ExtractJSON(content)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrParseFailed)
	}

	var payload struct {
		Days []generatedDay `json:"days"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if len(payload.Days) == 0 {
		return nil, fmt.Errorf("%w: no days in output", ErrSchemaInvalid)
	}

	days := make([]MealDay, 0, len(payload.Days))
	for i, d := range payload.Days {
		if strings.TrimSpace(d.Meal) == "" {
			return nil, fmt.Errorf("%w: day %d has no meal name", ErrSchemaInvalid, i+1)
		}
		if d.CookingTime <= 0 {
			d.CookingTime = recipe.DefaultCookingTime
		}
		days = append(days, MealDay{
			Day:              WeekDays[i%len(WeekDays)],
			Meal:             strings.TrimSpace(d.Meal),
			Description:      strings.TrimSpace(d.Description),
			IsRemixed:        d.IsRemixed,
			ContainsOilyFish: d.ContainsOilyFish,
			Ingredients:      d.Ingredients,
			Recipe: recipe.Recipe{
				CookingTime:  d.CookingTime,
				Instructions: d.PreparationInstructions,
				Source:       "model",
			},
		})
	}
	return days, nil
}

// repair deterministically reshapes the last candidate into a complete
// plan: surplus days are dropped, missing days are synthesized from
// liked foods, and incomplete days get a fetched or fallback recipe.
func (g *Generator) repair(ctx context.Context, days []MealDay, profile FamilyProfile, recentMeals []string, metas *[]shared.AgentMeta) ([]MealDay, error) {
	if len(days) > profile.MealCount {
		days = days[:profile.MealCount]
	}

	if len(days) < profile.MealCount {
		candidates := synthesisCandidates(profile.LikedFoods, recentMeals, days)
		if len(candidates) == 0 {
			if len(days) == 0 {
				return nil, fmt.Errorf("%w: nothing generated and no liked foods to fall back on", ErrGenerationFailed)
			}
			return nil, fmt.Errorf("%w: %d days generated and no liked foods to fill the rest", ErrGenerationFailed, len(days))
		}

		// Offset into the candidates by how much history there is, so
		// consecutive broken weeks do not serve the same fallback meals.
		next := len(recentMeals) % len(candidates)
		for len(days) < profile.MealCount {
			meal := candidates[next%len(candidates)]
			next++
			days = append(days, MealDay{
				Day:  WeekDays[len(days)%len(WeekDays)],
				Meal: meal,
			})
		}
	}

	for i := range days {
		if len(days[i].Ingredients) > 0 && len(days[i].Recipe.Instructions) > 0 {
			continue
		}
		rec, ings, meta, err := g.fetcher.Fetch(ctx, days[i].Meal, days[i].Description)
		*metas = append(*metas, meta)
		if err != nil {
			return nil, fmt.Errorf("failed to backfill recipe for %q: %w", days[i].Meal, err)
		}
		if len(days[i].Ingredients) == 0 {
			days[i].Ingredients = ings
		}
		if len(days[i].Recipe.Instructions) == 0 {
			days[i].Recipe = rec
		}
		if days[i].Description == "" {
			days[i].Description = fmt.Sprintf("A simple take on %s.", days[i].Meal)
		}
	}
	return days, nil
}

func (g *Generator) enforce(days []MealDay, recentMeals []string) {
	g.remixer.EnsureOilyFish(days)
	g.remixer.EnsureRemixed(days, recentMeals)
}

func (g *Generator) assemble(days []MealDay) *MealPlan {
	for i := range days {
		days[i].Day = WeekDays[i%len(WeekDays)]
	}
	now := g.now()
	return &MealPlan{
		ID:          uuid.NewString(),
		WeekStart:   NextWeekStart(now),
		GeneratedAt: now,
		Days:        days,
	}
}

// synthesisCandidates picks liked foods that were not eaten recently and
// are not already in the plan.
func synthesisCandidates(likedFoods, recentMeals []string, days []MealDay) []string {
	used := map[string]bool{}
	for _, m := range recentMeals {
		used[strings.ToLower(strings.TrimSpace(m))] = true
	}
	for _, d := range days {
		used[strings.ToLower(d.Meal)] = true
	}

	var fresh []string
	for _, f := range SanitizeList(likedFoods) {
		if !used[strings.ToLower(f)] {
			fresh = append(fresh, f)
		}
	}
	if len(fresh) > 0 {
		return fresh
	}

	// Everything liked was eaten recently; repeating a liked meal beats
	// serving nothing.
	var all []string
	for _, f := range SanitizeList(likedFoods) {
		if !usedInPlan(days, f) {
			all = append(all, f)
		}
	}
	return all
}

func usedInPlan(days []MealDay, meal string) bool {
	for _, d := range days {
		if strings.EqualFold(d.Meal, meal) {
			return true
		}
	}
	return false
}
