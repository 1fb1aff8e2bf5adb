package merge

import (
	"log/slog"
	"strings"

	"dubline/internal/config"
	"dubline/internal/logging"
	"dubline/internal/textutil"
	"dubline/internal/transcript"
)

// Thresholds controls when an accumulating paragraph is closed.
type Thresholds struct {
	MaxDuration float64
	MinDuration float64
	MaxWords    int
	MinWords    int
	MaxGap      float64
}

// DefaultThresholds returns the stock paragraph thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDuration: 30,
		MinDuration: 5,
		MaxWords:    150,
		MinWords:    20,
		MaxGap:      2.0,
	}
}

// ThresholdsFromConfig maps the [merge] config section.
func ThresholdsFromConfig(cfg config.Merge) Thresholds {
	return Thresholds{
		MaxDuration: cfg.MaxDurationSeconds,
		MinDuration: cfg.MinDurationSeconds,
		MaxWords:    cfg.MaxWords,
		MinWords:    cfg.MinWords,
		MaxGap:      cfg.MaxGapSeconds,
	}
}

// Split reasons reported in debug logs.
const (
	reasonSpeaker  = "speaker_change"
	reasonDuration = "max_duration"
	reasonWords    = "max_words"
	reasonGap      = "gap"
	reasonSentence = "sentence_end"
)

// Merger groups segments into paragraphs.
type Merger struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// New constructs a Merger.
func New(thresholds Thresholds, logger *slog.Logger) *Merger {
	return &Merger{
		thresholds: thresholds,
		logger:     logging.NewComponentLogger(logger, "merger"),
	}
}

type accumulator struct {
	start   float64
	end     float64
	speaker string
	parts   []string
	words   int
}

func (a *accumulator) add(seg transcript.Segment) {
	if text := strings.TrimSpace(seg.Text); text != "" {
		a.parts = append(a.parts, text)
		a.words += textutil.WordCount(text)
	}
	if seg.End > a.end {
		a.end = seg.End
	}
}

func (a *accumulator) text() string {
	return strings.Join(a.parts, " ")
}

// Merge groups ordered segments into paragraphs. Empty-text segments still
// extend the paragraph span.
func (m *Merger) Merge(segments []transcript.Segment) []transcript.Paragraph {
	if len(segments) == 0 {
		return nil
	}
	paragraphs := make([]transcript.Paragraph, 0, len(segments)/2+1)
	cur := newAccumulator(segments[0])
	for _, seg := range segments[1:] {
		if reason := m.splitReason(cur, seg); reason != "" {
			paragraphs = append(paragraphs, finalize(cur))
			m.logger.Debug("paragraph closed",
				logging.Int("index", len(paragraphs)-1),
				logging.String("reason", reason),
				logging.Int("words", cur.words),
				logging.Float64("duration", cur.end-cur.start),
			)
			cur = newAccumulator(seg)
			continue
		}
		cur.add(seg)
	}
	paragraphs = append(paragraphs, finalize(cur))
	m.logger.Debug("segments merged",
		logging.Int("segments", len(segments)),
		logging.Int("paragraphs", len(paragraphs)),
	)
	return paragraphs
}

func newAccumulator(seg transcript.Segment) *accumulator {
	acc := &accumulator{start: seg.Start, end: seg.End, speaker: seg.Speaker}
	acc.add(seg)
	return acc
}

// splitReason reports why the accumulated paragraph must close before next,
// or "" to extend it.
func (m *Merger) splitReason(cur *accumulator, next transcript.Segment) string {
	t := m.thresholds
	duration := cur.end - cur.start
	switch {
	case next.Speaker != cur.speaker:
		return reasonSpeaker
	case duration >= t.MaxDuration:
		return reasonDuration
	case cur.words >= t.MaxWords:
		return reasonWords
	case next.Start-cur.end > t.MaxGap:
		return reasonGap
	case duration >= t.MinDuration && cur.words >= t.MinWords && textutil.EndsSentence(cur.text()):
		return reasonSentence
	}
	return ""
}

func finalize(acc *accumulator) transcript.Paragraph {
	text := textutil.CapitalizeSentences(textutil.CollapseSpace(acc.text()))
	return transcript.Paragraph{
		Start:     acc.start,
		End:       acc.end,
		Text:      text,
		Speaker:   acc.speaker,
		WordCount: textutil.WordCount(text),
		Duration:  acc.end - acc.start,
	}
}
