//nolint:testpackage // exercises unexported distance helper
package fuzzy

import (
	"reflect"
	"testing"
)

func TestMatcher_Rank(t *testing.T) {
	matcher := NewMatcher(2)

	tests := []struct {
		name       string
		input      string
		candidates []string
		expected   string
	}{
		{"exact match excluded", "help", []string{"help", "version"}, ""},
		{"simple typo", "hep", []string{"help", "version", "verbose"}, "help"},
		{"dashes ignored", "--verbos", []string{"--verbose", "--version"}, "--verbose"},
		{"single substitution", "port", []string{"host", "post", "part"}, "post"},
		{"too far", "xyz", []string{"help", "version"}, ""},
		{"too short", "-x", []string{"--xy", "--help"}, ""},
		{"case insensitive", "HEP", []string{"help"}, "help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := matcher.Rank(tt.input, tt.candidates)
			got := ""
			if len(matches) > 0 {
				got = matches[0].Value
			}
			if got != tt.expected {
				t.Errorf("Rank(%q) best = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatcher_Distance(t *testing.T) {
	m := NewMatcher(10)
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := m.distance(tt.a, tt.b); got != tt.want {
			t.Errorf("distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	// Early cut-off reports maxDistance+1
	short := NewMatcher(1)
	if got := short.distance("abcdef", "uvwxyz"); got != 2 {
		t.Errorf("cut-off distance = %d, want 2", got)
	}
}

func TestSuggest(t *testing.T) {
	got := Suggest("serv", []string{"serve", "server", "status", "sever"}, 2, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", got)
	}
	if got[0] != "serve" {
		t.Errorf("best suggestion = %q, want serve", got[0])
	}

	if got := Suggest("zzzz", []string{"serve"}, 2, 3); !reflect.DeepEqual(got, []string{}) {
		t.Errorf("expected no suggestions, got %v", got)
	}
}
