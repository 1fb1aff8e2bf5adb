// Package compositor lays synthesized clips onto the original timeline and
// mixes them over the attenuated original audio.
//
// Compose builds one continuous voice track exactly as long as the
// original: clips are placed at their start offsets, gaps are filled with
// silence, a clip that starts before the previous one ends is appended right
// after it, and anything past the original end is cut. The voice track is
// then mixed onto the original in a single overlay, so the output length
// never drifts from the input.
package compositor
