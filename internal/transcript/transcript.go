package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"dubline/internal/services"
)

// Tolerance absorbs floating point noise when comparing timestamps.
const Tolerance = 0.001

// Segment is one timestamped utterance. Speaker is empty when unknown.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Paragraph is a run of consecutive same-speaker segments merged for
// translation.
type Paragraph struct {
	Start     float64
	End       float64
	Text      string
	Speaker   string
	WordCount int
	Duration  float64
}

// Contains reports whether seg lies inside the paragraph bounds.
func (p Paragraph) Contains(seg Segment) bool {
	return seg.Start >= p.Start-Tolerance && seg.End <= p.End+Tolerance
}

// Overlaps reports whether seg shares any time with the paragraph.
func (p Paragraph) Overlaps(seg Segment) bool {
	return seg.Start < p.End-Tolerance && seg.End > p.Start+Tolerance
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// Load reads segments from a JSON file.
func Load(path string) ([]Segment, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcript", "load", "transcript path is empty", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return Parse(data)
}

// Parse decodes WhisperX JSON or a bare segment array and trims segment text.
func Parse(data []byte) ([]Segment, error) {
	trimmed := bytes.TrimSpace(data)
	var segments []Segment
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &segments); err != nil {
			return nil, services.Wrap(services.ErrValidation, "transcript", "parse", "invalid segment array", err)
		}
	} else {
		var payload whisperXPayload
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, services.Wrap(services.ErrValidation, "transcript", "parse", "invalid whisperx json", err)
		}
		segments = payload.Segments
	}
	for i := range segments {
		segments[i].Text = strings.TrimSpace(segments[i].Text)
		segments[i].Speaker = strings.TrimSpace(segments[i].Speaker)
	}
	return segments, nil
}

// Validate checks that segments are non-empty, individually well formed,
// time ordered, and non-overlapping.
func Validate(segments []Segment) error {
	if len(segments) == 0 {
		return services.Wrap(services.ErrValidation, "transcript", "validate", "no input segments", nil)
	}
	for i, seg := range segments {
		if math.IsNaN(seg.Start) || math.IsNaN(seg.End) || seg.Start < 0 {
			return services.Wrap(services.ErrValidation, "transcript", "validate",
				fmt.Sprintf("segment %d has invalid start %.3f", i, seg.Start), nil)
		}
		if seg.End < seg.Start {
			return services.Wrap(services.ErrValidation, "transcript", "validate",
				fmt.Sprintf("segment %d ends (%.3f) before it starts (%.3f)", i, seg.End, seg.Start), nil)
		}
		if i == 0 {
			continue
		}
		prev := segments[i-1]
		if seg.Start < prev.Start {
			return services.Wrap(services.ErrValidation, "transcript", "validate",
				fmt.Sprintf("segment %d starts before segment %d", i, i-1), nil)
		}
		if seg.Start < prev.End-Tolerance {
			return services.Wrap(services.ErrValidation, "transcript", "validate",
				fmt.Sprintf("segment %d overlaps segment %d (%.3f < %.3f)", i, i-1, seg.Start, prev.End), nil)
		}
	}
	return nil
}

// Speakers returns the distinct non-empty speaker labels in first-appearance
// order.
func Speakers(segments []Segment) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, seg := range segments {
		if seg.Speaker == "" {
			continue
		}
		if _, ok := seen[seg.Speaker]; ok {
			continue
		}
		seen[seg.Speaker] = struct{}{}
		out = append(out, seg.Speaker)
	}
	return out
}

// End returns the latest segment end time, or zero for no segments.
func End(segments []Segment) float64 {
	var end float64
	for _, seg := range segments {
		end = math.Max(end, seg.End)
	}
	return end
}
