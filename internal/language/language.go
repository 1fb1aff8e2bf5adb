package language

import (
	"strings"
	"unicode"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Script identifies the writing system a language is normally written in.
// Values are keys of unicode.Scripts, except the mixed Japanese and Korean
// writing systems.
type Script string

const (
	ScriptLatin      Script = "Latin"
	ScriptCyrillic   Script = "Cyrillic"
	ScriptGreek      Script = "Greek"
	ScriptArabic     Script = "Arabic"
	ScriptHebrew     Script = "Hebrew"
	ScriptDevanagari Script = "Devanagari"
	ScriptHan        Script = "Han"
	ScriptJapanese   Script = "Japanese"
	ScriptHangul     Script = "Hangul"
	ScriptThai       Script = "Thai"
)

// iso15924 maps ISO 15924 codes to scripts where the CLDR English name is
// not a unicode.Scripts key.
var iso15924 = map[string]Script{
	"Hans": ScriptHan,
	"Hant": ScriptHan,
	"Jpan": ScriptJapanese,
	"Kore": ScriptHangul,
	"Beng": "Bengali",
	"Ethi": "Ethiopic",
	"Orya": "Oriya",
	"Mymr": "Myanmar",
	"Sinh": "Sinhala",
}

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	script  Script   // Primary writing system
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", ScriptLatin, []string{"english"}},
	{"es", "spa", "", "Spanish", ScriptLatin, []string{"spanish", "español"}},
	{"fr", "fra", "fre", "French", ScriptLatin, []string{"french", "français"}},
	{"de", "deu", "ger", "German", ScriptLatin, []string{"german", "deutsch"}},
	{"it", "ita", "", "Italian", ScriptLatin, []string{"italian"}},
	{"pt", "por", "", "Portuguese", ScriptLatin, []string{"portuguese"}},
	{"nl", "nld", "dut", "Dutch", ScriptLatin, []string{"dutch"}},
	{"pl", "pol", "", "Polish", ScriptLatin, []string{"polish"}},
	{"sv", "swe", "", "Swedish", ScriptLatin, []string{"swedish"}},
	{"da", "dan", "", "Danish", ScriptLatin, []string{"danish"}},
	{"no", "nor", "", "Norwegian", ScriptLatin, []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", ScriptLatin, []string{"finnish"}},
	{"tr", "tur", "", "Turkish", ScriptLatin, []string{"turkish"}},
	{"vi", "vie", "", "Vietnamese", ScriptLatin, []string{"vietnamese"}},
	{"id", "ind", "", "Indonesian", ScriptLatin, []string{"indonesian"}},
	{"ru", "rus", "", "Russian", ScriptCyrillic, []string{"russian"}},
	{"uk", "ukr", "", "Ukrainian", ScriptCyrillic, []string{"ukrainian"}},
	{"el", "ell", "gre", "Greek", ScriptGreek, []string{"greek"}},
	{"ar", "ara", "", "Arabic", ScriptArabic, []string{"arabic"}},
	{"he", "heb", "", "Hebrew", ScriptHebrew, []string{"hebrew"}},
	{"hi", "hin", "", "Hindi", ScriptDevanagari, []string{"hindi"}},
	{"zh", "zho", "chi", "Chinese", ScriptHan, []string{"chinese", "mandarin"}},
	{"ja", "jpn", "", "Japanese", ScriptJapanese, []string{"japanese"}},
	{"ko", "kor", "", "Korean", ScriptHangul, []string{"korean"}},
	{"th", "tha", "", "Thai", ScriptThai, []string{"thai"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if base, _, ok := strings.Cut(code, "-"); ok && len(base) >= 2 {
		code = base
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable language name for a code. Codes outside
// the built-in table are resolved through the CLDR names in x/text; anything
// still unknown is returned upper-cased. Empty input yields "Unknown".
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	if tag, err := xlanguage.Parse(trimmed); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// ScriptOf reports the primary script for a language code. Codes outside the
// built-in table use the CLDR likely script. The boolean is false when no
// script can be derived.
func ScriptOf(code string) (Script, bool) {
	if e := lookup(code); e != nil {
		return e.script, true
	}
	tag, err := xlanguage.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", false
	}
	iso, confidence := tag.Script()
	if confidence == xlanguage.No {
		return "", false
	}
	if script, ok := iso15924[iso.String()]; ok {
		return script, true
	}
	if _, ok := unicode.Scripts[iso.String()]; ok {
		return Script(iso.String()), true
	}
	name := display.English.Scripts().Name(iso)
	if _, ok := unicode.Scripts[name]; ok {
		return Script(name), true
	}
	return "", false
}

// SameScript reports whether two languages are both known and written in the
// same script.
func SameScript(a, b string) bool {
	sa, okA := ScriptOf(a)
	sb, okB := ScriptOf(b)
	return okA && okB && sa == sb
}

// minScriptShare is the fraction of letters that must belong to the target
// script for text to count as written in it.
const minScriptShare = 0.5

// MatchesScript reports whether text is plausibly written in the script of
// lang. Text without letters and languages with no known script always
// match.
func MatchesScript(text, lang string) bool {
	script, ok := ScriptOf(lang)
	if !ok {
		return true
	}
	var letters, matched int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if runeInScript(r, script) {
			matched++
		}
	}
	if letters == 0 {
		return true
	}
	return float64(matched)/float64(letters) >= minScriptShare
}

func runeInScript(r rune, script Script) bool {
	switch script {
	case ScriptJapanese:
		return unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han)
	case ScriptHangul:
		return unicode.In(r, unicode.Hangul, unicode.Han)
	}
	if table, ok := unicode.Scripts[string(script)]; ok {
		return unicode.Is(table, r)
	}
	return true
}
