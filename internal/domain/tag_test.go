package domain

import "testing"

func TestNormalizeTagSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "saas-tools", "saas-tools"},
		{"uppercase", "SaaS Tools", "saas-tools"},
		{"surrounding whitespace", "  open source  ", "open-source"},
		{"punctuation runs", "ai / ml & data", "ai-ml-data"},
		{"repeated hyphens", "no--code---tools", "no-code-tools"},
		{"leading punctuation", "#golang", "golang"},
		{"trailing punctuation", "devtools!", "devtools"},
		{"digits kept", "web3", "web3"},
		{"unicode letters kept", "café", "café"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTagSlug(tt.input); got != tt.want {
				t.Errorf("NormalizeTagSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTagSlugIdempotent(t *testing.T) {
	inputs := []string{"SaaS Tools", "ai / ml", "  productivity  "}
	for _, in := range inputs {
		once := NormalizeTagSlug(in)
		twice := NormalizeTagSlug(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
