package voice

import (
	"strings"

	"dubline/internal/textutil"
)

var (
	maleCues = []string{
		"i'm a man", "i am a man", "as a man", "as a father", "i'm a father", "i am a father",
		"my wife", "my girlfriend", "as a husband", "i'm a husband", "as a dad", "i'm a dad",
		"as a son", "i'm a guy", "as a guy", "as a brother",
	}
	femaleCues = []string{
		"i'm a woman", "i am a woman", "as a woman", "as a mother", "i'm a mother", "i am a mother",
		"my husband", "my boyfriend", "as a wife", "i'm a wife", "as a mom", "i'm a mom",
		"as a daughter", "i'm a girl", "as a girl", "as a sister",
	}
)

// DetectGender guesses a speaker's gender from how they refer to themselves.
// It returns GenderUnknown unless one side has strictly more cues.
func DetectGender(text string) Gender {
	lower := " " + strings.ToLower(textutil.CollapseSpace(strings.ReplaceAll(text, "’", "'"))) + " "
	male := countCues(lower, maleCues)
	female := countCues(lower, femaleCues)
	switch {
	case male > female:
		return GenderMale
	case female > male:
		return GenderFemale
	default:
		return GenderUnknown
	}
}

func countCues(text string, cues []string) int {
	n := 0
	for _, cue := range cues {
		n += strings.Count(text, " "+cue+" ")
		n += strings.Count(text, " "+cue+",")
		n += strings.Count(text, " "+cue+".")
	}
	return n
}
