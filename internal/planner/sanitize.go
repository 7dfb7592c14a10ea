package planner

import (
	"strings"
	"unicode"
)

const (
	maxItemRunes = 80
	maxListItems = 25
)

// SanitizeList prepares user-supplied preference lists for prompt
// interpolation. Items are whitespace-collapsed, stripped of control
// runes and truncated, and the list itself is capped so a pathological
// preferences file cannot blow up the prompt.
func SanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		cleaned := sanitizeItem(item)
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}

func sanitizeItem(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.Join(strings.Fields(b.String()), " ")

	runes := []rune(cleaned)
	if len(runes) > maxItemRunes {
		cleaned = string(runes[:maxItemRunes])
	}
	return cleaned
}
