package timing

import (
	"fmt"
	"sort"
	"strings"

	"dubline/internal/services"
	"dubline/internal/textutil"
	"dubline/internal/transcript"
	"dubline/internal/translate"
)

// Segment is an original segment annotated with its translated text.
type Segment struct {
	transcript.Segment
	Index          int
	OriginalText   string
	TranslatedText string
	// Fallback is set when TranslatedText is the untranslated original.
	Fallback bool
}

// Orphan is a paragraph that overlapped no original segment.
type Orphan struct {
	Paragraph int
	Text      string
}

// Report summarizes alignment quality for one Restore call.
type Report struct {
	Segments         int
	Matched          int
	Degraded         int
	EmptyAssignments int
	Unclaimed        int
	Orphans          []Orphan
	// Issues holds one services.ErrDataAlignment error per problem.
	Issues []error
}

func (r *Report) issue(format string, args ...any) {
	r.Issues = append(r.Issues, services.Wrap(services.ErrDataAlignment, "timing", "restore", fmt.Sprintf(format, args...), nil))
}

// Restore distributes each paragraph's translation over the original segments.
func Restore(paragraphs []translate.Paragraph, original []transcript.Segment) ([]Segment, Report) {
	report := Report{Segments: len(original)}
	out := make([]Segment, len(original))
	for i, seg := range original {
		out[i] = Segment{
			Segment:        seg,
			Index:          i,
			OriginalText:   seg.Text,
			TranslatedText: seg.Text,
			Fallback:       true,
		}
	}
	claimed := make([]bool, len(original))

	for pi, p := range paragraphs {
		matches := contained(p.Paragraph, original, claimed)
		if len(matches) == 0 {
			matches = overlapping(p.Paragraph, original, claimed)
			if len(matches) == 0 {
				report.Orphans = append(report.Orphans, Orphan{Paragraph: pi, Text: p.TranslatedText})
				report.issue("paragraph %d [%.3f-%.3f] overlaps no segment", pi, p.Start, p.End)
				continue
			}
			report.Degraded++
			report.issue("paragraph %d [%.3f-%.3f] contains no segment, using %d overlapping", pi, p.Start, p.End, len(matches))
		} else {
			report.Matched += len(matches)
		}

		parts := distribute(p.TranslatedText, original, matches)
		for k, idx := range matches {
			claimed[idx] = true
			out[idx].TranslatedText = parts[k]
			out[idx].Fallback = p.Fallback
			if parts[k] == "" && strings.TrimSpace(p.TranslatedText) != "" {
				report.EmptyAssignments++
				report.issue("segment %d received no words from paragraph %d", idx, pi)
			}
		}
	}

	for i := range claimed {
		if !claimed[i] {
			report.Unclaimed++
			report.issue("segment %d [%.3f-%.3f] claimed by no paragraph", i, original[i].Start, original[i].End)
		}
	}
	return out, report
}

func contained(p transcript.Paragraph, original []transcript.Segment, claimed []bool) []int {
	start := sort.Search(len(original), func(i int) bool {
		return original[i].Start >= p.Start-transcript.Tolerance
	})
	var matches []int
	for i := start; i < len(original) && original[i].Start <= p.End+transcript.Tolerance; i++ {
		if !claimed[i] && p.Contains(original[i]) {
			matches = append(matches, i)
		}
	}
	return matches
}

func overlapping(p transcript.Paragraph, original []transcript.Segment, claimed []bool) []int {
	start := sort.Search(len(original), func(i int) bool {
		return original[i].End > p.Start+transcript.Tolerance
	})
	var matches []int
	for i := start; i < len(original) && original[i].Start < p.End-transcript.Tolerance; i++ {
		if !claimed[i] && p.Overlaps(original[i]) {
			matches = append(matches, i)
		}
	}
	return matches
}

// distribute splits text into len(matches) parts weighted by each matched
// segment's original word count. Shares are floored and the last part takes
// the remainder. With no original words the split is even.
func distribute(text string, original []transcript.Segment, matches []int) []string {
	words := textutil.Words(text)
	parts := make([]string, len(matches))
	if len(matches) == 0 {
		return parts
	}

	weights := make([]int, len(matches))
	total := 0
	for k, idx := range matches {
		weights[k] = textutil.WordCount(original[idx].Text)
		total += weights[k]
	}

	n := len(words)
	pos := 0
	for k := range matches {
		var share int
		switch {
		case k == len(matches)-1:
			share = n - pos
		case total == 0:
			share = n / len(matches)
		default:
			share = n * weights[k] / total
		}
		parts[k] = strings.Join(words[pos:pos+share], " ")
		pos += share
	}
	return parts
}
