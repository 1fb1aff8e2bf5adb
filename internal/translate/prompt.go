package translate

import (
	"fmt"
	"strings"

	"dubline/internal/conversation"
	"dubline/internal/language"
)

// MaxPriorPairs bounds the earlier translations included in a prompt.
const MaxPriorPairs = 2

// Pair is an earlier paragraph and its translation.
type Pair struct {
	Original   string
	Translated string
}

func systemPrompt(source, target string) string {
	return fmt.Sprintf(`You translate spoken dialogue from %s to %s for dubbing.
Keep the speaker's tone and register. Keep names, numbers, and brand names unchanged.
The translation will be spoken over the original timing, so prefer natural phrasing of similar length.
Reply with only the %s translation of the text to translate. Do not add notes, quotes, or labels.`,
		language.DisplayName(source), language.DisplayName(target), language.DisplayName(target))
}

func userPrompt(text string, ctx conversation.Context, style Style, prior []Pair) string {
	var b strings.Builder
	speaker := ctx.Current.Speaker
	if speaker == "" {
		speaker = "unknown"
	}
	fmt.Fprintf(&b, "Speaker: %s (%s style)\n", speaker, style)
	if len(ctx.Flow) > 0 {
		flow := make([]string, len(ctx.Flow))
		for i, tag := range ctx.Flow {
			flow[i] = strings.ReplaceAll(tag, "_", " ")
		}
		fmt.Fprintf(&b, "Conversation: %s\n", strings.Join(flow, ", "))
	}
	if len(ctx.Previous) > 0 {
		b.WriteString("\nPreceding lines (context only, do not translate):\n")
		for _, p := range ctx.Previous {
			label := p.Speaker
			if label == "" {
				label = "unknown"
			}
			fmt.Fprintf(&b, "- %s: %s\n", label, p.Text)
		}
	}
	if n := len(prior); n > 0 {
		if n > MaxPriorPairs {
			prior = prior[n-MaxPriorPairs:]
		}
		b.WriteString("\nEarlier translations for consistency:\n")
		for _, pair := range prior {
			fmt.Fprintf(&b, "Original: %s\nTranslation: %s\n", pair.Original, pair.Translated)
		}
	}
	b.WriteString("\nText to translate:\n")
	b.WriteString(text)
	return b.String()
}

// cleanResponse strips whitespace, wrapping quotes, and a leading
// "Translation:" label some models add despite instructions.
func cleanResponse(raw string) string {
	out := strings.TrimSpace(raw)
	if rest, ok := cutPrefixFold(out, "translation:"); ok {
		out = strings.TrimSpace(rest)
	}
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"«", "»"}, {"「", "」"}} {
		if len(out) >= len(q[0])+len(q[1]) && strings.HasPrefix(out, q[0]) && strings.HasSuffix(out, q[1]) {
			inner := out[len(q[0]) : len(out)-len(q[1])]
			if !strings.Contains(inner, q[0]) {
				out = strings.TrimSpace(inner)
			}
			break
		}
	}
	return out
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
