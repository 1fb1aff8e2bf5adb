// Package language maps language codes to names and writing systems.
//
// Translation prompts use DisplayName for human-readable language names, and
// the translator uses MatchesScript to reject provider responses that are not
// written in the target language's script.
package language
