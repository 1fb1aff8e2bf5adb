// Package timing maps paragraph translations back onto the original segment
// timestamps.
//
// Restore always returns exactly one Segment per original segment, in the
// original order with the original timestamps. Each paragraph claims the
// unclaimed segments that lie inside its bounds and spreads its translated
// words across them in proportion to each segment's share of the original
// words. The last segment absorbs rounding so no translated word is lost.
//
// Alignment problems never abort a job. A paragraph with no contained
// segments falls back to the segments it overlaps; one that overlaps nothing
// is reported as an orphan. Segments no paragraph claims keep their original
// text. Every such case is recorded in the Report as a
// services.ErrDataAlignment issue.
//
// WriteSRT renders the restored segments as target-language subtitles.
package timing
