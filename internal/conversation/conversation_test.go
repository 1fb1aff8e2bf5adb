package conversation

import (
	"reflect"
	"testing"

	"dubline/internal/transcript"
)

func para(speaker, text string, start float64) transcript.Paragraph {
	return transcript.Paragraph{Speaker: speaker, Text: text, Start: start, End: start + 1}
}

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"How are you?", true},
		{"what time is it", true},
		{"Did you see that.", true},
		{"Could be worse.", true},
		{"I think so.", false},
		{"Whatever you say.", false},
		{"", false},
		{"   ", false},
		{"Is it raining?   ", true},
		{"The question is who?", true},
		{`"Where did it go" I said`, true},
	}
	for _, tt := range tests {
		if got := IsQuestion(tt.text); got != tt.want {
			t.Errorf("IsQuestion(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDetectEmotion(t *testing.T) {
	tests := map[string]Emotion{
		"That is amazing!":           EmotionExcited,
		"Why would you do that?":     EmotionInquisitive,
		"I was going to... no.":      EmotionHesitant,
		"Um, I am not sure.":         EmotionHesitant,
		"It was, you know, strange.": EmotionHesitant,
		"The meeting starts at ten.": EmotionNeutral,
	}
	for text, want := range tests {
		if got := DetectEmotion(text); got != want {
			t.Errorf("DetectEmotion(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestBuildTurns(t *testing.T) {
	paragraphs := []transcript.Paragraph{
		para("A", "Welcome to the show.", 0),
		para("A", "Where did you grow up?", 1),
		para("B", "In a small town.", 2),
		para("B", "It was quiet.", 3),
		para("A", "Nice.", 4),
	}
	turns := BuildTurns(paragraphs)
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if !reflect.DeepEqual(turns[0].Paragraphs, []int{0, 1}) || !reflect.DeepEqual(turns[1].Paragraphs, []int{2, 3}) {
		t.Fatalf("unexpected turn grouping %+v", turns)
	}
	if turns[0].Start != 0 || turns[0].End != 2 {
		t.Fatalf("turn 0 spans %.1f-%.1f", turns[0].Start, turns[0].End)
	}
	if !turns[0].IsQuestion || turns[0].IsResponse {
		t.Fatalf("turn 0 flags wrong: %+v", turns[0])
	}
	if turns[1].IsQuestion || !turns[1].IsResponse {
		t.Fatalf("turn 1 should be a response: %+v", turns[1])
	}
	if turns[2].IsResponse {
		t.Fatalf("turn 2 follows a non-question: %+v", turns[2])
	}
	if turns[1].Text != "In a small town. It was quiet." {
		t.Fatalf("turn 1 text = %q", turns[1].Text)
	}
}

func TestAnalyzeClassification(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []transcript.Paragraph
		want       Type
	}{
		{
			name:       "single speaker",
			paragraphs: []transcript.Paragraph{para("A", "Hello.", 0), para("A", "Goodbye.", 1)},
			want:       Monologue,
		},
		{
			name: "interview",
			paragraphs: []transcript.Paragraph{
				para("A", "What do you do?", 0), para("B", "I build boats.", 1),
				para("A", "Why boats?", 2), para("B", "I love the sea.", 3),
				para("A", "How long?", 4), para("B", "Ten years.", 5),
			},
			want: Interview,
		},
		{
			name: "dialogue",
			paragraphs: []transcript.Paragraph{
				para("A", "Nice weather.", 0), para("B", "Indeed it is.", 1),
				para("A", "Are you coming?", 2), para("B", "Yes.", 3),
			},
			want: Dialogue,
		},
		{
			name: "discussion",
			paragraphs: []transcript.Paragraph{
				para("A", "I disagree.", 0), para("B", "Why?", 1),
				para("C", "Me too.", 2), para("A", "Because.", 3), para("B", "Fine.", 4),
			},
			want: Discussion,
		},
		{
			name: "panel interview",
			paragraphs: []transcript.Paragraph{
				para("Host", "Who starts?", 0), para("A", "I will.", 1),
				para("Host", "And you?", 2), para("B", "Next.", 3),
				para("Host", "What about you?", 4), para("C", "Last.", 5),
			},
			want: Interview,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.paragraphs, nil)
			if got.Type != tt.want {
				t.Fatalf("Type = %q, want %q (ratios %v)", got.Type, tt.want, got.QuestionRatio)
			}
		})
	}
}

func TestAnalyzeUsesProvidedSpeakers(t *testing.T) {
	paragraphs := []transcript.Paragraph{para("A", "Hello.", 0)}
	got := Analyze(paragraphs, []string{"A", "B"})
	if got.Type != Dialogue {
		t.Fatalf("Type = %q, want dialogue for two declared speakers", got.Type)
	}
	if !reflect.DeepEqual(got.Speakers, []string{"A", "B"}) {
		t.Fatalf("Speakers = %v", got.Speakers)
	}
}

func TestBuilderContext(t *testing.T) {
	paragraphs := []transcript.Paragraph{
		para("A", "First.", 0),
		para("A", "Second?", 1),
		para("B", "Third.", 2),
		para("B", "Fourth.", 3),
		para("B", "Fifth.", 4),
	}
	b := NewBuilder(DefaultWindow)

	ctx := b.Context(paragraphs, 2)
	if len(ctx.Previous) != 2 || ctx.Previous[0].Text != "First." {
		t.Fatalf("unexpected previous %+v", ctx.Previous)
	}
	if !ctx.HasFlow(FlowRespondingToQuestion) || !ctx.HasFlow(FlowDialogue) {
		t.Fatalf("unexpected flow %v", ctx.Flow)
	}
	if !reflect.DeepEqual(ctx.SpeakerHistory["A"], []string{"First.", "Second?"}) {
		t.Fatalf("unexpected history %v", ctx.SpeakerHistory)
	}

	ctx = b.Context(paragraphs, 4)
	if !reflect.DeepEqual(ctx.Flow, []string{FlowMonologue}) {
		t.Fatalf("flow = %v, want monologue only", ctx.Flow)
	}

	ctx = b.Context(paragraphs, 0)
	if len(ctx.Previous) != 0 || ctx.Current.Text != "First." {
		t.Fatalf("unexpected first context %+v", ctx)
	}

	if got := b.Context(paragraphs, 9); got.Current.Text != "" {
		t.Fatalf("out of range index should yield zero context, got %+v", got)
	}
}

func TestBuilderContextIsDeterministic(t *testing.T) {
	paragraphs := []transcript.Paragraph{para("A", "One?", 0), para("B", "Two.", 1), para("A", "Three.", 2)}
	b := NewBuilder(2)
	first := b.Context(paragraphs, 2)
	second := b.Context(paragraphs, 2)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("context not deterministic: %+v vs %+v", first, second)
	}
	if NewBuilder(-1).Window() != 0 {
		t.Fatal("negative window should clamp to zero")
	}
}
