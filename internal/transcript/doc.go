// Package transcript holds the timestamped speech segments a dubbing job
// starts from and the paragraphs the merge stage groups them into.
//
// Segments are loaded from WhisperX-style JSON (an object with a "segments"
// array) or a bare segment array, then validated: a job refuses input that is
// empty, unordered, or overlapping.
package transcript
