package conversation

import (
	"strings"
	"unicode"

	"dubline/internal/textutil"
	"dubline/internal/transcript"
)

// Type classifies the overall conversation.
type Type string

const (
	Monologue  Type = "monologue"
	Dialogue   Type = "dialogue"
	Interview  Type = "interview"
	Discussion Type = "discussion"
)

// Emotion is a coarse lexical tone label for a turn.
type Emotion string

const (
	EmotionNeutral     Emotion = "neutral"
	EmotionExcited     Emotion = "excited"
	EmotionInquisitive Emotion = "inquisitive"
	EmotionHesitant    Emotion = "hesitant"
)

const (
	interviewerRatio = 0.6
	intervieweeRatio = 0.2
)

// questionWords is the closed list of openers that mark a question even
// without a trailing question mark.
var questionWords = map[string]struct{}{
	"who": {}, "what": {}, "when": {}, "where": {}, "why": {}, "how": {}, "which": {}, "whose": {},
	"is": {}, "are": {}, "do": {}, "does": {}, "did": {},
	"can": {}, "could": {}, "would": {}, "should": {},
}

var (
	hesitationWords   = map[string]struct{}{"um": {}, "uh": {}, "er": {}, "hmm": {}, "maybe": {}}
	hesitationPhrases = []string{"i guess", "i mean", "you know", "sort of"}
)

// Turn is a maximal run of consecutive paragraphs from one speaker.
type Turn struct {
	Speaker    string
	Paragraphs []int
	Start      float64
	End        float64
	Text       string
	IsQuestion bool
	IsResponse bool
	Emotion    Emotion
}

// Analysis summarizes a transcript's conversational structure.
type Analysis struct {
	Type     Type
	Speakers []string
	Turns    []Turn
	// QuestionRatio is the share of each speaker's turns that are questions.
	QuestionRatio map[string]float64
}

// IsQuestion reports whether text ends in a question mark or opens with a
// question word.
func IsQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "？") {
		return true
	}
	first := strings.FieldsFunc(strings.ToLower(trimmed), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	if len(first) == 0 {
		return false
	}
	_, ok := questionWords[first[0]]
	return ok
}

// DetectEmotion assigns a lexical tone label.
func DetectEmotion(text string) Emotion {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(trimmed, "!"):
		return EmotionExcited
	case IsQuestion(trimmed):
		return EmotionInquisitive
	case strings.Contains(trimmed, "...") || strings.Contains(trimmed, "…"):
		return EmotionHesitant
	}
	for _, tok := range textutil.Words(lower) {
		if _, ok := hesitationWords[strings.Trim(tok, ",.;:")]; ok {
			return EmotionHesitant
		}
	}
	for _, phrase := range hesitationPhrases {
		if strings.Contains(lower, phrase) {
			return EmotionHesitant
		}
	}
	return EmotionNeutral
}

// BuildTurns collapses consecutive same-speaker paragraphs into turns.
func BuildTurns(paragraphs []transcript.Paragraph) []Turn {
	var turns []Turn
	for i, p := range paragraphs {
		if n := len(turns); n > 0 && turns[n-1].Speaker == p.Speaker {
			last := &turns[n-1]
			last.Paragraphs = append(last.Paragraphs, i)
			last.End = p.End
			last.Text = strings.TrimSpace(last.Text + " " + p.Text)
			continue
		}
		turns = append(turns, Turn{
			Speaker:    p.Speaker,
			Paragraphs: []int{i},
			Start:      p.Start,
			End:        p.End,
			Text:       p.Text,
		})
	}
	for i := range turns {
		turn := &turns[i]
		turn.IsQuestion = asksQuestion(paragraphs, turn.Paragraphs)
		turn.Emotion = DetectEmotion(turn.Text)
		if i > 0 && turns[i-1].IsQuestion && turns[i-1].Speaker != turn.Speaker {
			turn.IsResponse = true
		}
	}
	return turns
}

// asksQuestion reports whether any paragraph of a turn is a question.
func asksQuestion(paragraphs []transcript.Paragraph, indexes []int) bool {
	for _, idx := range indexes {
		if IsQuestion(paragraphs[idx].Text) {
			return true
		}
	}
	return false
}

// Analyze classifies the conversation. speakers may be nil, in which case the
// distinct paragraph speakers in first-appearance order are used.
func Analyze(paragraphs []transcript.Paragraph, speakers []string) Analysis {
	if len(speakers) == 0 {
		speakers = paragraphSpeakers(paragraphs)
	}
	turns := BuildTurns(paragraphs)
	ratio := questionRatios(turns)
	return Analysis{
		Type:          classify(speakers, ratio),
		Speakers:      speakers,
		Turns:         turns,
		QuestionRatio: ratio,
	}
}

func paragraphSpeakers(paragraphs []transcript.Paragraph) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range paragraphs {
		if _, ok := seen[p.Speaker]; ok {
			continue
		}
		seen[p.Speaker] = struct{}{}
		out = append(out, p.Speaker)
	}
	return out
}

func questionRatios(turns []Turn) map[string]float64 {
	total := make(map[string]int)
	questions := make(map[string]int)
	for _, turn := range turns {
		total[turn.Speaker]++
		if turn.IsQuestion {
			questions[turn.Speaker]++
		}
	}
	ratio := make(map[string]float64, len(total))
	for speaker, n := range total {
		ratio[speaker] = float64(questions[speaker]) / float64(n)
	}
	return ratio
}

// classify applies the interview rule to any speaker count above one: exactly
// one speaker asks mostly questions and every other speaker rarely does.
func classify(speakers []string, ratio map[string]float64) Type {
	switch len(speakers) {
	case 0, 1:
		return Monologue
	}
	interviewers := 0
	for _, speaker := range speakers {
		r := ratio[speaker]
		switch {
		case r > interviewerRatio:
			interviewers++
		case r < intervieweeRatio:
		default:
			return fallbackType(speakers)
		}
	}
	if interviewers == 1 {
		return Interview
	}
	return fallbackType(speakers)
}

func fallbackType(speakers []string) Type {
	if len(speakers) == 2 {
		return Dialogue
	}
	return Discussion
}
