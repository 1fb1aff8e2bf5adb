// Package merge groups transcript segments into paragraphs sized for
// translation.
//
// A paragraph never spans a speaker change. Within one speaker the merger
// closes a paragraph once it reaches a duration or word ceiling, when the next
// segment starts after a long pause, or when both minimums are met and the
// text ends a sentence. Segments are never split internally.
package merge
