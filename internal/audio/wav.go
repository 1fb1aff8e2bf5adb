package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"dubline/internal/fileutil"
)

const wavBitDepth = 16

// ReadWAV decodes a PCM WAV stream into a Track.
func ReadWAV(r io.ReadSeeker) (*Track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("read wav: invalid file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav: decode pcm: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, errors.New("read wav: missing format")
	}
	format := Format{SampleRate: buf.Format.SampleRate, Channels: buf.Format.NumChannels}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("read wav: invalid format %s", format)
	}
	depth := int(dec.BitDepth)
	if depth <= 0 {
		depth = wavBitDepth
	}
	scale := float32(math.Pow(2, float64(depth-1)))
	samples := make([]float32, len(buf.Data)-len(buf.Data)%format.Channels)
	for i := range samples {
		v := buf.Data[i]
		if depth == 8 {
			// 8-bit WAV is unsigned.
			v -= 128
		}
		samples[i] = clamp(float32(v) / scale)
	}
	return &Track{Format: format, Samples: samples}, nil
}

// ReadWAVFile opens path and decodes it.
func ReadWAVFile(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	defer f.Close()
	return ReadWAV(f)
}

// WriteWAV encodes t as 16-bit PCM.
func WriteWAV(w io.WriteSeeker, t *Track) error {
	enc := wav.NewEncoder(w, t.Format.SampleRate, wavBitDepth, t.Format.Channels, 1)
	data := make([]int, len(t.Samples))
	for i, s := range t.Samples {
		data[i] = int(math.Round(float64(clamp(s)) * 32767))
	}
	buf := &goaudio.IntBuffer{
		Data:           data,
		SourceBitDepth: wavBitDepth,
		Format: &goaudio.Format{
			SampleRate:  t.Format.SampleRate,
			NumChannels: t.Format.Channels,
		},
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write wav: finalize: %w", err)
	}
	return nil
}

// WriteWAVFile encodes t to path through a temp file and rename, so a
// partially written mix never appears at path.
func WriteWAVFile(path string, t *Track) error {
	return fileutil.WriteAtomic(path, 0o644, func(f *os.File) error {
		return WriteWAV(f, t)
	})
}
