package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dubline/internal/audio"
	"dubline/internal/transcript"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteTranscript writes segments as a WhisperX-style JSON document.
func WriteTranscript(t testing.TB, path string, segments []transcript.Segment) {
	t.Helper()

	data, err := json.Marshal(map[string]any{"segments": segments})
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTone writes a constant-level WAV of the given length.
func WriteTone(t testing.TB, path string, format audio.Format, seconds float64, level float32) {
	t.Helper()

	track := audio.Silence(format, format.FramesAt(seconds))
	for i := range track.Samples {
		track.Samples[i] = level
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := audio.WriteWAVFile(path, track); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}
