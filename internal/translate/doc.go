// Package translate turns merged paragraphs into target-language text.
//
// A Translator composes a prompt from the paragraph, its conversation context,
// the speaker's formality style, and earlier translations, then asks a
// Provider for the translation. Responses that are empty, in the wrong script,
// or a copy of the source are retried with linear backoff; when every attempt
// fails the paragraph keeps its original text and is flagged as a fallback.
// Translate never returns an error.
//
// Short phrases are cached per Translator so repeated boilerplate is
// translated once and stays consistent within a job.
package translate
