package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CollapseSpace trims text and replaces every whitespace run with one space.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// EndsSentence reports whether text, ignoring trailing whitespace and closing
// quotes or brackets, ends with '.', '!', '?', or an ellipsis.
func EndsSentence(text string) bool {
	trimmed := strings.TrimRightFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || isClosing(r)
	})
	if trimmed == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	return isSentenceEnd(last)
}

// abbreviations end in a period without ending the sentence.
var abbreviations = map[string]struct{}{
	"mr.": {}, "mrs.": {}, "ms.": {}, "dr.": {}, "prof.": {},
	"st.": {}, "jr.": {}, "sr.": {}, "vs.": {}, "etc.": {},
}

// CapitalizeSentences upper-cases the first letter of text and the first
// letter of each following sentence. A terminator only ends a sentence when
// whitespace follows it, so domains, decimals and abbreviations such as
// "e.g." are left alone. Full-width terminators need no whitespace.
func CapitalizeSentences(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	capNext := true
	wordStart := 0
	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			if closesSentence(text[wordStart:i]) {
				capNext = true
			}
			wordStart = i + utf8.RuneLen(r)
		case isFullWidthEnd(r):
			capNext = true
		case capNext && unicode.IsLetter(r):
			r = unicode.ToUpper(r)
			capNext = false
		case capNext && unicode.IsDigit(r):
			capNext = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// closesSentence reports whether word, the run of text before a whitespace,
// ends a sentence.
func closesSentence(word string) bool {
	trimmed := strings.TrimRightFunc(word, isClosing)
	if trimmed == "" {
		return false
	}
	last, size := utf8.DecodeLastRuneInString(trimmed)
	if !isSentenceEnd(last) {
		return false
	}
	if last != '.' {
		return true
	}
	stem := trimmed[:len(trimmed)-size]
	if strings.HasSuffix(stem, ".") {
		return true
	}
	if strings.Contains(stem, ".") {
		return false
	}
	_, abbrev := abbreviations[strings.ToLower(strings.TrimLeftFunc(trimmed, isOpening))]
	return !abbrev
}

func isClosing(r rune) bool {
	return strings.ContainsRune(`"')]»”’`, r)
}

func isOpening(r rune) bool {
	return strings.ContainsRune(`"'([«“‘`, r)
}

func isFullWidthEnd(r rune) bool {
	switch r {
	case '。', '！', '？':
		return true
	}
	return false
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}
