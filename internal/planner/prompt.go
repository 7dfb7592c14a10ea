package planner

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed plan_prompt.md
var promptFS embed.FS

type promptData struct {
	MealCount           int
	Members             int
	ChildrenAges        string
	LikedFoods          string
	DislikedFoods       string
	DietaryRequirements string
	RecentMeals         []string
	Corrective          string
}

// renderPlanPrompt builds the generation prompt. corrective carries the
// rejection reason from a failed attempt and is empty on the first try.
func renderPlanPrompt(profile FamilyProfile, recentMeals []string, corrective string) (string, error) {
	tmplBytes, err := promptFS.ReadFile("plan_prompt.md")
	if err != nil {
		return "", fmt.Errorf("failed to read plan prompt: %w", err)
	}

	tmpl, err := template.New("plan").Parse(string(tmplBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse plan prompt: %w", err)
	}

	ages := make([]string, 0, len(profile.ChildrenAges))
	for _, a := range profile.ChildrenAges {
		ages = append(ages, fmt.Sprintf("%d", a))
	}

	data := promptData{
		MealCount:           profile.MealCount,
		Members:             profile.Members,
		ChildrenAges:        strings.Join(ages, ", "),
		LikedFoods:          strings.Join(SanitizeList(profile.LikedFoods), ", "),
		DislikedFoods:       strings.Join(SanitizeList(profile.DislikedFoods), ", "),
		DietaryRequirements: strings.Join(SanitizeList(profile.DietaryRequirements), ", "),
		RecentMeals:         SanitizeList(recentMeals),
		// Rejection reasons quote model output, so they get the same
		// scrubbing as every other untrusted prompt field.
		Corrective: sanitizeItem(corrective),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render plan prompt: %w", err)
	}
	return buf.String(), nil
}
