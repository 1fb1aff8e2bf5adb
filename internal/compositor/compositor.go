package compositor

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"dubline/internal/audio"
	"dubline/internal/logging"
)

// Clip is one synthesized segment positioned by its original start time.
type Clip struct {
	Index int
	Start float64
	Track *audio.Track
}

// Kind distinguishes timeline spans.
type Kind string

const (
	KindClip    Kind = "clip"
	KindSilence Kind = "silence"
)

// Placement is one span of the voice track, in frames.
type Placement struct {
	Kind Kind
	// Index is the clip's segment index, or -1 for silence.
	Index      int
	StartFrame int
	Frames     int
}

// Result is the composed mix and how it was built.
type Result struct {
	Track    *audio.Track
	Timeline []Placement
	// Overlays is the number of mix operations, 0 or 1.
	Overlays int
	// Serialized counts clips pushed later because they started before the
	// previous clip ended.
	Serialized int
	// Trimmed is the number of voice frames cut at the original's end.
	Trimmed int
	GainDB  float64
}

// OverlayFunc mixes top onto base and returns a track as long as base.
type OverlayFunc func(base, top *audio.Track) *audio.Track

// Option configures a Compositor.
type Option func(*Compositor)

// WithOverlay replaces the mixing function, mainly for tests.
func WithOverlay(fn OverlayFunc) Option {
	return func(c *Compositor) {
		if fn != nil {
			c.overlay = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compositor) {
		c.logger = logging.NewComponentLogger(logger, "compositor")
	}
}

// Compositor mixes clips for one output format.
type Compositor struct {
	format  audio.Format
	gain    float64
	overlay OverlayFunc
	logger  *slog.Logger
}

// New returns a compositor that attenuates the original by the linear gain
// in [0, 1].
func New(format audio.Format, originalGain float64, opts ...Option) (*Compositor, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if originalGain < 0 || originalGain > 1 {
		return nil, fmt.Errorf("compositor: original gain %v outside [0,1]", originalGain)
	}
	c := &Compositor{
		format:  format,
		gain:    originalGain,
		overlay: audio.Overlay,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Format returns the output format.
func (c *Compositor) Format() audio.Format {
	return c.format
}

// Compose mixes clips over original. The result always has the original's
// frame count in the compositor's format.
func (c *Compositor) Compose(original *audio.Track, clips []Clip) Result {
	base := audio.Convert(original, c.format)
	length := base.Frames()
	gainDB := audio.LinearToDB(c.gain)
	attenuated := audio.ApplyGain(base, gainDB)

	if len(clips) == 0 {
		var timeline []Placement
		if length > 0 {
			timeline = []Placement{{Kind: KindSilence, Index: -1, Frames: length}}
		}
		return Result{Track: attenuated, Timeline: timeline, GainDB: gainDB}
	}

	voice, timeline, serialized := c.buildVoiceTrack(clips)
	trimmed := 0
	if voice.Frames() < length {
		gap := length - voice.Frames()
		timeline = append(timeline, Placement{Kind: KindSilence, Index: -1, StartFrame: voice.Frames(), Frames: gap})
		voice.AppendSilence(gap)
	} else {
		trimmed = voice.Truncate(length)
		timeline = trimTimeline(timeline, length)
	}
	if serialized > 0 || trimmed > 0 {
		c.logger.Info("voice track adjusted",
			logging.Int("serialized_clips", serialized),
			logging.Duration("trimmed", c.format.Duration(trimmed)),
		)
	}

	mixed := c.overlay(attenuated, voice)
	return Result{
		Track:      mixed,
		Timeline:   timeline,
		Overlays:   1,
		Serialized: serialized,
		Trimmed:    trimmed,
		GainDB:     gainDB,
	}
}

func (c *Compositor) buildVoiceTrack(clips []Clip) (*audio.Track, []Placement, int) {
	ordered := slices.Clone(clips)
	slices.SortStableFunc(ordered, func(a, b Clip) int {
		if n := cmp.Compare(a.Start, b.Start); n != 0 {
			return n
		}
		return cmp.Compare(a.Index, b.Index)
	})

	voice := audio.Silence(c.format, 0)
	var timeline []Placement
	serialized := 0
	cursor := 0
	for _, clip := range ordered {
		track := audio.Convert(clip.Track, c.format)
		frames := track.Frames()
		if frames == 0 {
			continue
		}
		start := c.format.FramesAt(clip.Start)
		switch {
		case start > cursor:
			timeline = append(timeline, Placement{Kind: KindSilence, Index: -1, StartFrame: cursor, Frames: start - cursor})
			voice.AppendSilence(start - cursor)
			cursor = start
		case start < cursor:
			serialized++
		}
		// Formats match after Convert.
		_ = voice.Append(track)
		timeline = append(timeline, Placement{Kind: KindClip, Index: clip.Index, StartFrame: cursor, Frames: frames})
		cursor += frames
	}
	return voice, timeline, serialized
}

// trimTimeline drops spans past length and shortens the one crossing it.
func trimTimeline(timeline []Placement, length int) []Placement {
	out := timeline[:0]
	for _, p := range timeline {
		if p.StartFrame >= length {
			break
		}
		if end := p.StartFrame + p.Frames; end > length {
			p.Frames = length - p.StartFrame
		}
		out = append(out, p)
	}
	return out
}

// TotalFrames sums the spans of a timeline.
func TotalFrames(timeline []Placement) int {
	total := 0
	for _, p := range timeline {
		total += p.Frames
	}
	return total
}
