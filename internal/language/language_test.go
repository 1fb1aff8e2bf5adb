package language

import "testing"

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"pt-BR", "pt"},
		{"english", "en"},
		{"GERMAN", "de"},
		{"xy", "xy"},
		{"xyz", ""},
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"es", "Spanish"},
		{"jpn", "Japanese"},
		{"es-MX", "Spanish"},
		{"sw", "Swahili"},
		{"", "Unknown"},
		{"n/a", "N/A"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatchesScript(t *testing.T) {
	tests := []struct {
		name string
		text string
		lang string
		want bool
	}{
		{"spanish latin", "¿Cómo estás?", "es", true},
		{"japanese kana", "こんにちは、元気ですか？", "ja", true},
		{"japanese with name", "田中さんとJohnは友達です", "ja", true},
		{"japanese target got english", "Hello, how are you?", "ja", false},
		{"russian cyrillic", "Привет, как дела?", "ru", true},
		{"russian target got latin", "Privet kak dela", "ru", false},
		{"english target got arabic", "مرحبا كيف حالك", "en", false},
		{"korean hangul", "안녕하세요", "ko", true},
		{"digits only", "123 456", "ja", true},
		{"unknown language", "anything", "xx", true},
		{"georgian", "გამარჯობა, როგორ ხარ?", "ka", true},
		{"georgian target got english", "Sorry, I cannot translate that.", "ka", false},
		{"armenian target got english", "Sorry, I cannot translate that.", "hy", false},
		{"persian", "سلام، حال شما چطور است؟", "fa", true},
		{"persian target got english", "Sorry, I cannot translate that.", "fa", false},
		{"bengali", "আপনি কেমন আছেন?", "bn", true},
		{"bengali target got english", "Sorry, I cannot translate that.", "bn", false},
		{"amharic target got english", "Sorry, I cannot translate that.", "am", false},
		{"tamil", "நீங்கள் எப்படி இருக்கிறீர்கள்?", "ta", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesScript(tt.text, tt.lang); got != tt.want {
				t.Errorf("MatchesScript(%q, %q) = %v, want %v", tt.text, tt.lang, got, tt.want)
			}
		})
	}
}

func TestScriptOfDerivesScriptOutsideTable(t *testing.T) {
	tests := map[string]Script{
		"ka":    "Georgian",
		"hy":    "Armenian",
		"fa":    ScriptArabic,
		"bn":    "Bengali",
		"am":    "Ethiopic",
		"ta":    "Tamil",
		"sw":    ScriptLatin,
		"ka-GE": "Georgian",
		"ja":    ScriptJapanese,
	}
	for code, want := range tests {
		got, ok := ScriptOf(code)
		if !ok || got != want {
			t.Errorf("ScriptOf(%q) = %q, %v; want %q", code, got, ok, want)
		}
	}
	if _, ok := ScriptOf("xx"); ok {
		t.Error("expected no script for an unknown code")
	}
}

func TestSameScript(t *testing.T) {
	if !SameScript("en", "es") {
		t.Error("expected en and es to share a script")
	}
	if SameScript("en", "ja") {
		t.Error("expected en and ja to differ")
	}
	if SameScript("en", "xx") {
		t.Error("unknown languages never share a script")
	}
}
