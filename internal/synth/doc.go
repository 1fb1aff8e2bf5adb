// Package synth renders restored segments to audio clips.
//
// A Chain tries each configured speech provider in order, translating the
// assigned voice onto every provider through the voice catalog. The
// Synthesizer issues one task per segment in voice-group order on a bounded
// worker pool, throttled by a rate limiter, and gathers the clips back into
// segment order. A segment that cannot be synthesized becomes a silence
// clip of the segment's length, so the job still produces a full track.
package synth
