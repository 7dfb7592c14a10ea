package llm

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  string
		found bool
	}{
		{
			name:  "bare object",
			raw:   `{"days": []}`,
			want:  `{"days": []}`,
			found: true,
		},
		{
			name:  "fenced block with prose",
			raw:   "Here is your plan:\n```json\n{\"days\": [1]}\n```\nEnjoy!",
			want:  `{"days": [1]}`,
			found: true,
		},
		{
			name:  "fence without language tag",
			raw:   "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "braces buried in prose",
			raw:   `Sure! {"a": {"b": 2}} hope that helps`,
			want:  `{"a": {"b": 2}}`,
			found: true,
		},
		{
			name:  "no json at all",
			raw:   "I cannot help with that.",
			found: false,
		},
		{
			name:  "unbalanced braces",
			raw:   `{"a": 1`,
			found: false,
		},
		{
			name:  "empty input",
			raw:   "   ",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractJSON(tt.raw)
			if found != tt.found {
				t.Fatalf("ExtractJSON() found = %v, want %v", found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
