package recipe

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"family-meal-planner/internal/llm"
	"family-meal-planner/internal/shared"
)

//go:embed recipe_prompt.md
var promptFS embed.FS

// SourceFallback marks recipes synthesized locally rather than generated
// by a model backend.
const SourceFallback = "generated-fallback"

// Fetcher produces a full recipe for a named meal using a text model,
// falling back to a deterministic template when the model cannot help.
type Fetcher struct {
	textGenerator llm.TextGenerator
}

// NewFetcher creates a recipe fetcher backed by the given model.
func NewFetcher(textGenerator llm.TextGenerator) *Fetcher {
	return &Fetcher{textGenerator: textGenerator}
}

type recipePayload struct {
	CookingTime  Minutes      `json:"cooking_time"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
}

// Fetch generates a recipe for the meal. On any backend or parse
// failure it degrades to the deterministic fallback so callers always
// get a usable recipe.
func (f *Fetcher) Fetch(ctx context.Context, mealName, description string) (Recipe, []Ingredient, shared.AgentMeta, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: "recipe-fetcher"}

	prompt, err := renderRecipePrompt(mealName, description)
	if err != nil {
		rec, ings := Fallback(mealName)
		meta.Latency = time.Since(start)
		return rec, ings, meta, nil
	}

	resp, err := f.textGenerator.GenerateContent(ctx, prompt)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		rec, ings := Fallback(mealName)
		return rec, ings, meta, nil
	}

	raw, ok := llm.ExtractJSON(resp.Content)
	if !ok {
		rec, ings := Fallback(mealName)
		return rec, ings, meta, nil
	}

	var payload recipePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		rec, ings := Fallback(mealName)
		return rec, ings, meta, nil
	}
	if len(payload.Ingredients) == 0 || len(payload.Instructions) == 0 {
		rec, ings := Fallback(mealName)
		return rec, ings, meta, nil
	}
	if payload.CookingTime <= 0 {
		payload.CookingTime = DefaultCookingTime
	}

	rec := Recipe{
		CookingTime:  payload.CookingTime,
		Instructions: payload.Instructions,
		Source:       "model",
	}
	return rec, payload.Ingredients, meta, nil
}

func renderRecipePrompt(mealName, description string) (string, error) {
	tmplBytes, err := promptFS.ReadFile("recipe_prompt.md")
	if err != nil {
		return "", fmt.Errorf("failed to read recipe prompt: %w", err)
	}

	tmpl, err := template.New("recipe").Parse(string(tmplBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse recipe prompt: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		MealName    string
		Description string
	}{MealName: mealName, Description: description})
	if err != nil {
		return "", fmt.Errorf("failed to render recipe prompt: %w", err)
	}
	return buf.String(), nil
}

// Fallback builds a deterministic generic recipe for the meal. Same
// input always yields the same output.
func Fallback(mealName string) (Recipe, []Ingredient) {
	main := strings.ToLower(strings.TrimSpace(mealName))
	if main == "" {
		main = "mixed vegetables"
	}

	ingredients := []Ingredient{
		{Name: main, Quantity: 4, Unit: "serving", Category: "other"},
		{Name: "olive oil", Quantity: 2, Unit: "tbsp", Category: "pantry"},
		{Name: "onion", Quantity: 1, Unit: "whole", Category: "fruit_veg"},
		{Name: "garlic", Quantity: 2, Unit: "clove", Category: "fruit_veg"},
		{Name: "mixed herbs", Quantity: 1, Unit: "tsp", Category: "pantry"},
		{Name: "salt and pepper", Quantity: 1, Unit: "pinch", Category: "pantry"},
	}

	rec := Recipe{
		CookingTime: DefaultCookingTime,
		Instructions: []string{
			"Heat the olive oil in a large pan over medium heat, then soften the onion and garlic for 3 to 4 minutes.",
			fmt.Sprintf("Add the main ingredients for %s and cook until done through.", mealName),
			"Season with the mixed herbs, salt and pepper, and adjust to taste.",
			"Serve hot with a side of your choice.",
		},
		Source: SourceFallback,
	}
	return rec, ingredients
}
