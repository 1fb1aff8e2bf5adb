package conversation

import (
	"strings"

	"dubline/internal/transcript"
)

// Flow tags attached to a translation context.
const (
	FlowRespondingToQuestion = "responding_to_question"
	FlowDialogue             = "dialogue"
	FlowMonologue            = "monologue"
)

// DefaultWindow is the number of preceding paragraphs kept as context.
const DefaultWindow = 2

// Context is the bounded translation context for one paragraph.
type Context struct {
	Current  transcript.Paragraph
	Previous []transcript.Paragraph
	// SpeakerHistory maps each speaker in the window to their prior texts, oldest first.
	SpeakerHistory map[string][]string
	Flow           []string
}

// HasFlow reports whether tag is among the context's flow tags.
func (c Context) HasFlow(tag string) bool {
	for _, f := range c.Flow {
		if f == tag {
			return true
		}
	}
	return false
}

// Builder computes per-paragraph contexts with a fixed window.
type Builder struct {
	window int
}

// NewBuilder returns a Builder; a negative window is treated as zero.
func NewBuilder(window int) *Builder {
	if window < 0 {
		window = 0
	}
	return &Builder{window: window}
}

// Window returns the configured context window.
func (b *Builder) Window() int {
	return b.window
}

// Context returns the translation context for paragraphs[index]. An index out
// of range yields the zero Context.
func (b *Builder) Context(paragraphs []transcript.Paragraph, index int) Context {
	if index < 0 || index >= len(paragraphs) {
		return Context{}
	}
	from := max(0, index-b.window)
	previous := append([]transcript.Paragraph(nil), paragraphs[from:index]...)

	history := make(map[string][]string)
	for _, p := range previous {
		history[p.Speaker] = append(history[p.Speaker], p.Text)
	}

	var flow []string
	if index > 0 && endsWithQuestionMark(paragraphs[index-1].Text) {
		flow = append(flow, FlowRespondingToQuestion)
	}
	speakers := map[string]struct{}{paragraphs[index].Speaker: {}}
	for _, p := range previous {
		speakers[p.Speaker] = struct{}{}
	}
	if len(speakers) > 1 {
		flow = append(flow, FlowDialogue)
	} else {
		flow = append(flow, FlowMonologue)
	}

	return Context{
		Current:        paragraphs[index],
		Previous:       previous,
		SpeakerHistory: history,
		Flow:           flow,
	}
}

func endsWithQuestionMark(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "？")
}
