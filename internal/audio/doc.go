// Package audio holds the in-memory PCM representation used for compositing.
//
// A Track stores interleaved float32 samples in [-1, 1] tagged with a Format.
// Every clip is converted to one fixed Format before concatenation or
// overlay, and frame offsets are derived from millisecond timestamps, so the
// sample rate must be a multiple of 1000.
//
// WAV files are read and written through github.com/go-audio/wav as 16-bit
// PCM. Provider audio (raw little-endian PCM16) enters through FromPCM16.
package audio
