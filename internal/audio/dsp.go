package audio

import "math"

// SilenceFloorDB is the attenuation used for a linear gain of zero or less.
const SilenceFloorDB = -60.0

// LinearToDB converts a linear gain to decibels, flooring at SilenceFloorDB.
func LinearToDB(gain float64) float64 {
	if gain <= 0 {
		return SilenceFloorDB
	}
	return math.Max(20*math.Log10(gain), SilenceFloorDB)
}

// DBToLinear converts decibels to a linear multiplier.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// ApplyGain returns a copy of t scaled by db decibels.
func ApplyGain(t *Track, db float64) *Track {
	factor := float32(DBToLinear(db))
	out := &Track{Format: t.Format, Samples: make([]float32, len(t.Samples))}
	for i, s := range t.Samples {
		out.Samples[i] = s * factor
	}
	return out
}

// Overlay mixes top onto base. The result has base's length and format;
// top is converted first and anything past base's end is ignored.
func Overlay(base, top *Track) *Track {
	out := base.Clone()
	top = Convert(top, base.Format)
	n := min(len(out.Samples), len(top.Samples))
	for i := 0; i < n; i++ {
		out.Samples[i] = clamp(out.Samples[i] + top.Samples[i])
	}
	return out
}

// Convert returns t in the target format, remixing channels and resampling
// with linear interpolation. A track already in format is returned as is.
func Convert(t *Track, format Format) *Track {
	if t == nil {
		return Silence(format, 0)
	}
	if t.Format == format {
		return t
	}
	remixed := remix(t, format.Channels)
	return resample(remixed, format.SampleRate)
}

func remix(t *Track, channels int) *Track {
	if t.Format.Channels == channels {
		return t
	}
	frames := t.Frames()
	out := &Track{
		Format:  Format{SampleRate: t.Format.SampleRate, Channels: channels},
		Samples: make([]float32, frames*channels),
	}
	in := t.Format.Channels
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < in; c++ {
			sum += t.Samples[f*in+c]
		}
		mono := sum / float32(in)
		for c := 0; c < channels; c++ {
			if in == 1 || channels == 1 {
				out.Samples[f*channels+c] = mono
			} else {
				out.Samples[f*channels+c] = t.Samples[f*in+min(c, in-1)]
			}
		}
	}
	return out
}

func resample(t *Track, rate int) *Track {
	if t.Format.SampleRate == rate {
		return t
	}
	channels := t.Format.Channels
	inFrames := t.Frames()
	outFrames := int(math.Round(float64(inFrames) * float64(rate) / float64(t.Format.SampleRate)))
	out := &Track{
		Format:  Format{SampleRate: rate, Channels: channels},
		Samples: make([]float32, outFrames*channels),
	}
	if inFrames == 0 {
		return out
	}
	step := float64(t.Format.SampleRate) / float64(rate)
	for f := 0; f < outFrames; f++ {
		pos := float64(f) * step
		i := int(pos)
		frac := float32(pos - float64(i))
		j := min(i+1, inFrames-1)
		i = min(i, inFrames-1)
		for c := 0; c < channels; c++ {
			a := t.Samples[i*channels+c]
			b := t.Samples[j*channels+c]
			out.Samples[f*channels+c] = a + (b-a)*frac
		}
	}
	return out
}

func clamp(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
