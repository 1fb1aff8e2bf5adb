// Package textutil provides small text helpers shared by the merge,
// conversation, and translation stages.
//
// The helpers cover whitespace word counting, sentence boundary detection and
// capitalization, token fingerprints with cosine similarity (used to spot a
// provider echoing the source text back), and filesystem-safe tokens.
package textutil
