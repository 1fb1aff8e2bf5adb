package audio

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		format  Format
		wantErr bool
	}{
		{Format{SampleRate: 48000, Channels: 2}, false},
		{Format{SampleRate: 24000, Channels: 1}, false},
		{Format{SampleRate: 44100, Channels: 2}, true},
		{Format{SampleRate: 48000, Channels: 3}, true},
		{Format{SampleRate: 0, Channels: 1}, true},
	}
	for _, tt := range tests {
		if err := tt.format.Validate(); (err != nil) != tt.wantErr {
			t.Fatalf("Validate(%s) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestFramesAtRoundsToMilliseconds(t *testing.T) {
	f := Format{SampleRate: 48000, Channels: 2}
	tests := []struct {
		seconds float64
		want    int
	}{
		{0, 0},
		{-1, 0},
		{1, 48000},
		{1.5, 72000},
		{2.0004, 96000},
		{2.0006, 96048},
	}
	for _, tt := range tests {
		if got := f.FramesAt(tt.seconds); got != tt.want {
			t.Fatalf("FramesAt(%v) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
	if got := f.Duration(96000); got != 2*time.Second {
		t.Fatalf("Duration = %v", got)
	}
}

func TestLinearToDB(t *testing.T) {
	tests := []struct {
		gain float64
		want float64
	}{
		{1, 0},
		{0.1, -20},
		{0, SilenceFloorDB},
		{-0.5, SilenceFloorDB},
		{0.0000001, SilenceFloorDB},
	}
	for _, tt := range tests {
		if got := LinearToDB(tt.gain); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("LinearToDB(%v) = %v, want %v", tt.gain, got, tt.want)
		}
	}
}

func TestFromPCM16(t *testing.T) {
	data := []byte{0x00, 0x40, 0x00, 0xC0, 0xFF, 0x7F}
	track, err := FromPCM16(data, Format{SampleRate: 24000, Channels: 1})
	if err != nil {
		t.Fatalf("FromPCM16: %v", err)
	}
	want := []float32{0.5, -0.5, 32767.0 / 32768}
	for i, w := range want {
		if track.Samples[i] != w {
			t.Fatalf("sample %d = %v, want %v", i, track.Samples[i], w)
		}
	}
	if _, err := FromPCM16([]byte{1}, Format{SampleRate: 24000, Channels: 1}); err == nil {
		t.Fatal("expected error for odd byte count")
	}
}

func TestConvertMonoToStereoUpsample(t *testing.T) {
	mono := &Track{Format: Format{SampleRate: 24000, Channels: 1}, Samples: make([]float32, 2400)}
	for i := range mono.Samples {
		mono.Samples[i] = 0.25
	}
	out := Convert(mono, DefaultFormat())
	if out.Format != DefaultFormat() {
		t.Fatalf("format = %s", out.Format)
	}
	if out.Frames() != 4800 {
		t.Fatalf("frames = %d, want 4800", out.Frames())
	}
	if out.Duration() != 100*time.Millisecond {
		t.Fatalf("duration = %v", out.Duration())
	}
	for i, s := range out.Samples {
		if s != 0.25 {
			t.Fatalf("sample %d = %v", i, s)
		}
	}
}

func TestOverlayKeepsBaseLength(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 1}
	base := &Track{Format: format, Samples: []float32{0.1, 0.2, 0.3, 0.4}}
	top := &Track{Format: format, Samples: []float32{0.5, 0.9, 0.1, 0.1, 0.1, 0.1}}
	out := Overlay(base, top)
	if out.Frames() != base.Frames() {
		t.Fatalf("frames = %d", out.Frames())
	}
	want := []float32{0.6, 1, 0.4, 0.5}
	for i, w := range want {
		if math.Abs(float64(out.Samples[i]-w)) > 1e-6 {
			t.Fatalf("sample %d = %v, want %v", i, out.Samples[i], w)
		}
	}
	if base.Samples[0] != 0.1 {
		t.Fatal("overlay mutated base")
	}
}

func TestTrackAppendAndTruncate(t *testing.T) {
	format := Format{SampleRate: 8000, Channels: 2}
	track := Silence(format, 10)
	track.AppendSilence(5)
	if err := track.Append(Silence(format, 5)); err != nil {
		t.Fatal(err)
	}
	if track.Frames() != 20 {
		t.Fatalf("frames = %d", track.Frames())
	}
	if cut := track.Truncate(12); cut != 8 || track.Frames() != 12 {
		t.Fatalf("Truncate cut %d, frames %d", cut, track.Frames())
	}
	if err := track.Append(Silence(Format{SampleRate: 8000, Channels: 1}, 1)); err == nil {
		t.Fatal("expected format mismatch error")
	}
}

func TestWAVRoundTripIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	format := Format{SampleRate: 16000, Channels: 2}
	track := Silence(format, 1600)
	for i := range track.Samples {
		track.Samples[i] = float32(math.Sin(float64(i)/10)) * 0.5
	}

	first := filepath.Join(dir, "a.wav")
	second := filepath.Join(dir, "b.wav")
	if err := WriteWAVFile(first, track); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}
	if err := WriteWAVFile(second, track); err != nil {
		t.Fatalf("WriteWAVFile: %v", err)
	}
	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Fatal("identical tracks encoded differently")
	}

	decoded, err := ReadWAVFile(first)
	if err != nil {
		t.Fatalf("ReadWAVFile: %v", err)
	}
	if decoded.Format != format || decoded.Frames() != track.Frames() {
		t.Fatalf("decoded %s with %d frames", decoded.Format, decoded.Frames())
	}
	for i := range track.Samples {
		if math.Abs(float64(decoded.Samples[i]-track.Samples[i])) > 1.0/16000 {
			t.Fatalf("sample %d drifted: %v vs %v", i, decoded.Samples[i], track.Samples[i])
		}
	}
}
