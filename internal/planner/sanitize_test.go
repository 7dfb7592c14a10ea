package planner

import (
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeList(t *testing.T) {
	t.Run("collapses whitespace and drops empties", func(t *testing.T) {
		got := SanitizeList([]string{"  roast   chicken ", "", "   ", "fish\tpie"})
		want := []string{"roast chicken", "fish pie"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("SanitizeList() = %v, want %v", got, want)
		}
	})

	t.Run("strips control runes", func(t *testing.T) {
		got := SanitizeList([]string{"pasta\x00bake\nwith cheese"})
		if len(got) != 1 || got[0] != "pasta bake with cheese" {
			t.Errorf("SanitizeList() = %v", got)
		}
	})

	t.Run("truncates long items", func(t *testing.T) {
		got := SanitizeList([]string{strings.Repeat("a", 200)})
		if len(got) != 1 || len([]rune(got[0])) != maxItemRunes {
			t.Errorf("item length = %d, want %d", len([]rune(got[0])), maxItemRunes)
		}
	})

	t.Run("caps the list", func(t *testing.T) {
		items := make([]string, 40)
		for i := range items {
			items[i] = "item"
		}
		if got := SanitizeList(items); len(got) != maxListItems {
			t.Errorf("list length = %d, want %d", len(got), maxListItems)
		}
	})
}
