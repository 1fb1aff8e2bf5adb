package audio

import (
	"fmt"
	"math"
	"time"
)

// Format describes the sample layout of a Track.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is the compositing format used when none is configured.
func DefaultFormat() Format {
	return Format{SampleRate: 48000, Channels: 2}
}

// Validate rejects formats that cannot express millisecond offsets exactly.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.SampleRate%1000 != 0 {
		return fmt.Errorf("audio format: sample rate %d must be a positive multiple of 1000", f.SampleRate)
	}
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("audio format: channels %d must be 1 or 2", f.Channels)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}

// FramesPerMillisecond returns the whole number of frames in one millisecond.
func (f Format) FramesPerMillisecond() int {
	return f.SampleRate / 1000
}

// FramesAt converts a timestamp in seconds to a frame offset. The timestamp is
// rounded to the nearest millisecond first so offsets never drift.
func (f Format) FramesAt(seconds float64) int {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	ms := int(math.Round(seconds * 1000))
	return ms * f.FramesPerMillisecond()
}

// Duration converts a frame count to wall time.
func (f Format) Duration(frames int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}
