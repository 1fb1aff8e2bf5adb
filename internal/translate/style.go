package translate

import (
	"strings"

	"dubline/internal/textutil"
	"dubline/internal/transcript"
)

// Style is a speaker's register, used to keep formality consistent.
type Style string

const (
	StyleFormal  Style = "formal"
	StyleCasual  Style = "casual"
	StyleNeutral Style = "neutral"
)

var (
	formalIndicators = []string{
		"please", "thank you", "sir", "madam", "kindly", "would you", "could you",
		"therefore", "however", "indeed", "certainly", "regards", "furthermore",
	}
	casualIndicators = []string{
		"yeah", "gonna", "wanna", "gotta", "hey", "cool", "awesome", "guys", "kinda",
		"okay", "ok", "yep", "nope", "dude", "lol", "stuff",
	}
)

// PrepareStyles computes one style per speaker from that speaker's aggregated
// paragraph text.
func PrepareStyles(paragraphs []transcript.Paragraph) map[string]Style {
	texts := make(map[string][]string)
	for _, p := range paragraphs {
		texts[p.Speaker] = append(texts[p.Speaker], p.Text)
	}
	styles := make(map[string]Style, len(texts))
	for speaker, parts := range texts {
		styles[speaker] = DetectStyle(strings.Join(parts, " "))
	}
	return styles
}

// DetectStyle counts formal and casual indicator words in text.
func DetectStyle(text string) Style {
	normalized := " " + strings.Join(normalizeWords(text), "  ") + " "
	formal := countIndicators(normalized, formalIndicators)
	casual := countIndicators(normalized, casualIndicators)
	switch {
	case formal > casual:
		return StyleFormal
	case casual > formal:
		return StyleCasual
	default:
		return StyleNeutral
	}
}

func normalizeWords(text string) []string {
	words := textutil.Words(strings.ToLower(text))
	for i, w := range words {
		words[i] = strings.Trim(w, ".,!?;:\"'()")
	}
	return words
}

// countIndicators expects words joined by two spaces so adjacent matches do
// not share a separator.
func countIndicators(padded string, indicators []string) int {
	total := 0
	for _, ind := range indicators {
		total += strings.Count(padded, " "+strings.ReplaceAll(ind, " ", "  ")+" ")
	}
	return total
}
