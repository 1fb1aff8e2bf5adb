package textutil

import (
	"math"
	"reflect"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 1},
		{"disjoint", "quick brown fox", "lazy sleeping dog", 0},
		{"empty", "", "quick brown fox", 0},
		{"short tokens only", "a b c", "a b c", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityPartialAndSymmetric(t *testing.T) {
	a := NewFingerprint("hello there world")
	b := NewFingerprint("hello there friend")
	ab := CosineSimilarity(a, b)
	if ab <= 0 || ab >= 1 {
		t.Fatalf("expected partial similarity, got %v", ab)
	}
	if ba := CosineSimilarity(b, a); ba != ab {
		t.Fatalf("similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestTokenizeKeepsAccentedLetters(t *testing.T) {
	got := Tokenize("¿Cómo estás, señor? It's OK")
	want := []string{"cómo", "estás", "señor"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %q, want %q", got, want)
	}
	if n := NewFingerprint("one two two three").TokenCount(); n != 3 {
		t.Fatalf("TokenCount = %d, want 3", n)
	}
}

func TestEndsSentence(t *testing.T) {
	tests := map[string]bool{
		"Hello.":          true,
		"Really?":         true,
		"Wow!  ":          true,
		"Well…":           true,
		`He said "no."`:   true,
		"(as planned.)":   true,
		"and then":        false,
		"":                false,
		"e.g, not really": false,
	}
	for input, want := range tests {
		if got := EndsSentence(input); got != want {
			t.Errorf("EndsSentence(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestCapitalizeSentences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello. how are you? i am fine!", "Hello. How are you? I am fine!"},
		{"already Fine.", "Already Fine."},
		{"3 apples. then more", "3 apples. Then more"},
		{"visit example.com today", "Visit example.com today"},
		{"we use e.g. python", "We use e.g. python"},
		{"ask dr. smith. she knows", "Ask dr. smith. She knows"},
		{"version 2.5 is out.next", "Version 2.5 is out.next"},
		{"wait... what? \"yes.\" ok", "Wait... What? \"Yes.\" Ok"},
		{"so on etc. and more", "So on etc. and more"},
		{"你好。hello", "你好。Hello"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CapitalizeSentences(tt.input); got != tt.want {
			t.Errorf("CapitalizeSentences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCollapseSpaceAndWordCount(t *testing.T) {
	if got := CollapseSpace("  a \n b\t\tc  "); got != "a b c" {
		t.Fatalf("CollapseSpace = %q", got)
	}
	if got := WordCount("  one two\nthree "); got != 3 {
		t.Fatalf("WordCount = %d, want 3", got)
	}
	if got := WordCount(""); got != 0 {
		t.Fatalf("WordCount(empty) = %d", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := map[string]string{
		"Episode 01.wav": "episode_01_wav",
		"  ":             "unknown",
		"__":             "unknown",
		"job-42":         "job-42",
	}
	for input, want := range tests {
		if got := SanitizeToken(input); got != want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", input, got, want)
		}
	}
}
