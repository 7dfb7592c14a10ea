package recipe

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Quantity is an ingredient amount. Model output is sloppy about the
// type here: it arrives as a number, a numeric string, or a fraction
// like "1/2", so unmarshalling coerces all of those. Anything
// unparseable becomes 1 rather than failing the whole recipe.
type Quantity float64

// UnmarshalJSON accepts numbers, numeric strings and simple fractions.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*q = Quantity(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*q = parseQuantity(s)
		return nil
	}

	*q = 1
	return nil
}

func parseQuantity(s string) Quantity {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Quantity(v)
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, errD := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if errN == nil && errD == nil && d != 0 {
			return Quantity(n / d)
		}
	}

	return 1
}

// DefaultCookingTime stands in when a recipe arrives without a usable
// cooking time.
const DefaultCookingTime Minutes = 30

// Minutes is a cooking time in whole minutes. Models write it as a
// number, a numeric string, or prose like "30 minutes"; unmarshalling
// coerces all of those. Anything without a usable number becomes 0 and
// is left for the caller to default.
type Minutes int

// UnmarshalJSON accepts numbers and strings with a leading or embedded
// integer.
func (m *Minutes) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*m = clampMinutes(int(num))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = parseMinutes(s)
		return nil
	}

	*m = 0
	return nil
}

func parseMinutes(s string) Minutes {
	digits := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			digits = i
			break
		}
	}
	if digits < 0 {
		return 0
	}
	end := digits
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[digits:end])
	if err != nil {
		return 0
	}
	return clampMinutes(n)
}

func clampMinutes(n int) Minutes {
	if n < 0 {
		return 0
	}
	return Minutes(n)
}

// Ingredient is a single item needed for a meal.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
	Unit     string   `json:"unit"`
	Category string   `json:"category"`
}

// Recipe holds the preparation details for a meal.
type Recipe struct {
	// CookingTime is in minutes and always positive in a valid recipe.
	CookingTime  Minutes  `json:"cooking_time,omitempty"`
	Instructions []string `json:"instructions"`
	Source       string   `json:"source,omitempty"`
	URL          string   `json:"url,omitempty"`
}
