package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"family-meal-planner/internal/llm"
)

// qualifierWords carry no meaning for shopping and are stripped from
// ingredient names before merging.
var qualifierWords = map[string]bool{
	"fresh": true, "large": true, "small": true, "medium": true,
	"chopped": true, "diced": true, "sliced": true, "minced": true,
	"grated": true, "crushed": true, "finely": true, "roughly": true,
	"organic": true, "free-range": true, "ripe": true, "raw": true,
	"cooked": true, "boneless": true, "skinless": true, "whole": true,
	"dried": true, "ground": true, "extra": true, "virgin": true,
}

// nameMappings collapse common aliases onto one canonical name.
var nameMappings = map[string]string{
	"bell pepper":    "pepper",
	"bell peppers":   "pepper",
	"red pepper":     "pepper",
	"green pepper":   "pepper",
	"yellow pepper":  "pepper",
	"scallion":       "spring onion",
	"scallions":      "spring onion",
	"cilantro":       "coriander",
	"courgettes":     "courgette",
	"zucchini":       "courgette",
	"aubergines":     "aubergine",
	"eggplant":       "aubergine",
	"garlic clove":   "garlic",
	"garlic cloves":  "garlic",
	"cloves garlic":  "garlic",
	"chicken breast": "chicken breast",
}

// pantryStaples are assumed to already be in the cupboard and can be
// filtered from a list on request.
var pantryStaples = map[string]bool{
	"salt": true, "pepper": true, "salt and pepper": true,
	"water": true, "black pepper": true,
}

// NormalizeName maps an ingredient name to its canonical shopping name
// using only local rules: case folding, qualifier stripping, alias
// mapping and a light singularization.
func NormalizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return ""
	}

	if mapped, ok := nameMappings[lower]; ok {
		return mapped
	}

	words := strings.Fields(lower)
	kept := words[:0]
	for _, w := range words {
		if !qualifierWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		kept = strings.Fields(lower)
	}
	stripped := strings.Join(kept, " ")

	if mapped, ok := nameMappings[stripped]; ok {
		return mapped
	}
	return singularize(stripped)
}

// singularize undoes the common English plural forms. It is
// intentionally conservative; a missed plural just means one extra line
// on the list.
func singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 4:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "oes") && len(s) > 4:
		return s[:len(s)-2]
	case strings.HasSuffix(s, "ses"), strings.HasSuffix(s, "xes"),
		strings.HasSuffix(s, "zes"), strings.HasSuffix(s, "ches"),
		strings.HasSuffix(s, "shes"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "ss"), strings.HasSuffix(s, "us"), strings.HasSuffix(s, "is"):
		return s
	case strings.HasSuffix(s, "s") && len(s) > 3:
		return s[:len(s)-1]
	default:
		return s
	}
}

// IsPantryStaple reports whether the canonical name is a cupboard staple.
func IsPantryStaple(canonical string) bool {
	return pantryStaples[canonical]
}

// Normalizer canonicalizes ingredient names, preferring a text model
// and degrading to the local rules when the model cannot be reached.
type Normalizer struct {
	textGen llm.TextGenerator
}

// NewNormalizer creates a normalizer. textGen may be nil, in which case
// only the local rules apply.
func NewNormalizer(textGen llm.TextGenerator) *Normalizer {
	return &Normalizer{textGen: textGen}
}

// Canonicalize maps each raw name to a canonical shopping name. Every
// input name is guaranteed a non-empty entry in the result.
func (n *Normalizer) Canonicalize(ctx context.Context, names []string) map[string]string {
	result := make(map[string]string, len(names))
	for _, name := range names {
		result[name] = NormalizeName(name)
	}
	if n.textGen == nil || len(names) == 0 {
		return result
	}

	prompt := buildCanonicalizePrompt(names)
	resp, err := n.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return result
	}

	raw, ok := llm.ExtractJSON(resp.Content)
	if !ok {
		return result
	}

	var payload struct {
		Mappings map[string]string `json:"mappings"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return result
	}

	for _, name := range names {
		if canonical, ok := payload.Mappings[name]; ok {
			// The model's answer still goes through the local rules so
			// casing and plurals stay consistent across sources.
			if cleaned := NormalizeName(canonical); cleaned != "" {
				result[name] = cleaned
			}
		}
	}
	return result
}

func buildCanonicalizePrompt(names []string) string {
	var sb strings.Builder
	sb.WriteString("You normalize grocery item names for a shopping list.\n")
	sb.WriteString("Map each raw ingredient name to a short canonical grocery name, merging obvious duplicates.\n")
	sb.WriteString("Respond with a single JSON object: {\"mappings\": {\"raw name\": \"canonical name\", ...}}\n\nRaw names:\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "- %s\n", name)
	}
	return sb.String()
}
