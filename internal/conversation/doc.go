// Package conversation classifies the structure of a transcript and builds the
// bounded context handed to the translator for each paragraph.
//
// Everything here is a pure function of the paragraph list: no I/O and no
// state carried between calls, so results are deterministic per job.
package conversation
