package planner

import (
	"errors"
	"fmt"
	"time"

	"family-meal-planner/internal/recipe"
)

// Generation failures are classified so callers can tell a broken
// backend apart from a broken plan.
var (
	// ErrParseFailed marks model output with no usable JSON object in it.
	ErrParseFailed = errors.New("could not parse model output")

	// ErrSchemaInvalid marks parsed output that does not match the plan shape.
	ErrSchemaInvalid = errors.New("model output does not match plan schema")

	// ErrInvariantViolated marks a structurally valid plan that breaks a
	// plan rule, like a missing oily fish day.
	ErrInvariantViolated = errors.New("meal plan violates a plan rule")

	// ErrGenerationFailed marks a generation that could not be repaired
	// into a valid plan.
	ErrGenerationFailed = errors.New("meal plan generation failed")
)

// WeekDays lists day names in plan order, Monday first.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MealDay is one planned evening meal.
type MealDay struct {
	Day              string              `json:"day"`
	Meal             string              `json:"meal"`
	Description      string              `json:"description"`
	IsRemixed        bool                `json:"is_remixed"`
	ContainsOilyFish bool                `json:"contains_oily_fish"`
	Ingredients      []recipe.Ingredient `json:"ingredients"`
	Recipe           recipe.Recipe       `json:"recipe"`
}

// MealPlan is a full week of planned meals.
type MealPlan struct {
	ID          string    `json:"id"`
	WeekStart   string    `json:"week_starting"`
	GeneratedAt time.Time `json:"date_generated"`
	Days        []MealDay `json:"days"`
}

// FamilyProfile describes who the plan is for and what they will eat.
type FamilyProfile struct {
	Members             int      `json:"members"`
	ChildrenAges        []int    `json:"children_ages"`
	LikedFoods          []string `json:"liked_foods"`
	DislikedFoods       []string `json:"disliked_foods"`
	DietaryRequirements []string `json:"dietary_requirements"`
	MealCount           int      `json:"meal_count"`
}

// MealNames returns the plan's meal names in day order.
func (p *MealPlan) MealNames() []string {
	names := make([]string, 0, len(p.Days))
	for _, d := range p.Days {
		names = append(names, d.Meal)
	}
	return names
}

// Validate checks the plan against the plan rules: exactly mealCount
// days, every day fully specified with a positive cooking time, at
// least one oily fish day and at least one remixed day.
func (p *MealPlan) Validate(mealCount int) error {
	if len(p.Days) != mealCount {
		return fmt.Errorf("%w: expected %d days, got %d", ErrInvariantViolated, mealCount, len(p.Days))
	}

	hasOilyFish := false
	hasRemix := false
	for i, d := range p.Days {
		if d.Meal == "" {
			return fmt.Errorf("%w: day %d has no meal name", ErrSchemaInvalid, i+1)
		}
		if len(d.Ingredients) == 0 {
			return fmt.Errorf("%w: %q has no ingredients", ErrInvariantViolated, d.Meal)
		}
		if len(d.Recipe.Instructions) == 0 {
			return fmt.Errorf("%w: %q has no preparation instructions", ErrInvariantViolated, d.Meal)
		}
		if d.Recipe.CookingTime <= 0 {
			return fmt.Errorf("%w: %q has no cooking time", ErrInvariantViolated, d.Meal)
		}
		if d.ContainsOilyFish {
			hasOilyFish = true
		}
		if d.IsRemixed {
			hasRemix = true
		}
	}

	if !hasOilyFish {
		return fmt.Errorf("%w: no oily fish day", ErrInvariantViolated)
	}
	if !hasRemix {
		return fmt.Errorf("%w: no remixed day", ErrInvariantViolated)
	}
	return nil
}

// NextWeekStart returns the date of the Monday after now, formatted as
// an ISO date. A plan generated on a Monday targets the following week.
func NextWeekStart(now time.Time) string {
	daysAhead := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	return now.AddDate(0, 0, daysAhead).Format("2006-01-02")
}
