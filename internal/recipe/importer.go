package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"family-meal-planner/internal/llm"

	"github.com/PuerkitoBio/goquery"
)

// Importer pulls a recipe off a web page. The page is fetched and
// stripped of markup noise, then a text model structures what is left.
type Importer struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// Imported is a recipe lifted from an external page.
type Imported struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Recipe      Recipe       `json:"recipe"`
}

// NewImporter creates a new recipe importer.
func NewImporter(textGen llm.TextGenerator) *Importer {
	return &Importer{
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Import fetches the URL and extracts a structured recipe from it.
func (i *Importer) Import(ctx context.Context, url string) (*Imported, error) {
	content, err := i.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page text.
Return the result strictly as a JSON object with this structure:
{
  "name": "Recipe Title",
  "description": "One sentence summary",
  "cooking_time": 30,
  "ingredients": [
    {"name": "chicken breast", "quantity": 2, "unit": "piece", "category": "meat"}
  ],
  "instructions": ["Step 1 description", "Step 2 description"]
}
"cooking_time" is the total time in minutes, as a positive whole number.
Categories must be one of: fruit_veg, meat, fish, dairy, bakery, pantry, frozen, other.

Page text:
%s
`, content)

	resp, err := i.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	raw, ok := llm.ExtractJSON(resp.Content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in extraction response")
	}

	var extracted struct {
		Name         string       `json:"name"`
		Description  string       `json:"description"`
		CookingTime  Minutes      `json:"cooking_time"`
		Ingredients  []Ingredient `json:"ingredients"`
		Instructions []string     `json:"instructions"`
	}
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if extracted.Name == "" || len(extracted.Ingredients) == 0 || len(extracted.Instructions) == 0 {
		return nil, fmt.Errorf("extraction response is missing required fields")
	}
	if extracted.CookingTime <= 0 {
		extracted.CookingTime = DefaultCookingTime
	}

	return &Imported{
		Name:        extracted.Name,
		Description: extracted.Description,
		Ingredients: extracted.Ingredients,
		Recipe: Recipe{
			CookingTime:  extracted.CookingTime,
			Instructions: extracted.Instructions,
			Source:       "imported",
			URL:          url,
		},
	}, nil
}

func (i *Importer) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save model tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
