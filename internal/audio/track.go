package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Track is interleaved float32 PCM.
type Track struct {
	Format  Format
	Samples []float32
}

// Silence returns a zeroed track of the given length.
func Silence(format Format, frames int) *Track {
	return &Track{Format: format, Samples: make([]float32, max(frames, 0)*format.Channels)}
}

// Frames returns the number of sample frames.
func (t *Track) Frames() int {
	if t == nil || t.Format.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Format.Channels
}

// Duration returns the playback length.
func (t *Track) Duration() time.Duration {
	if t == nil {
		return 0
	}
	return t.Format.Duration(t.Frames())
}

// Append copies other onto the end of t. Formats must match.
func (t *Track) Append(other *Track) error {
	if other == nil {
		return nil
	}
	if other.Format != t.Format {
		return fmt.Errorf("append: format mismatch %s != %s", other.Format, t.Format)
	}
	t.Samples = append(t.Samples, other.Samples...)
	return nil
}

// AppendSilence pads t with frames of silence.
func (t *Track) AppendSilence(frames int) {
	if frames <= 0 {
		return
	}
	t.Samples = append(t.Samples, make([]float32, frames*t.Format.Channels)...)
}

// Truncate drops everything past frames and returns how many frames were cut.
func (t *Track) Truncate(frames int) int {
	current := t.Frames()
	if frames >= current {
		return 0
	}
	frames = max(frames, 0)
	t.Samples = t.Samples[:frames*t.Format.Channels]
	return current - frames
}

// Clone returns a deep copy.
func (t *Track) Clone() *Track {
	return &Track{Format: t.Format, Samples: append([]float32(nil), t.Samples...)}
}

// FromPCM16 decodes raw little-endian signed 16-bit PCM.
func FromPCM16(data []byte, format Format) (*Track, error) {
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("pcm16: invalid format %s", format)
	}
	if len(data)%2 != 0 {
		return nil, errors.New("pcm16: odd byte count")
	}
	count := len(data) / 2
	count -= count % format.Channels
	samples := make([]float32, count)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768
	}
	return &Track{Format: format, Samples: samples}, nil
}
