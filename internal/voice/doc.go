// Package voice picks a synthetic voice for every speaker in a job.
//
// A Catalog holds the voice pools of each synthesis provider plus a direct
// cross-provider mapping used when a voice has to be rendered by a provider
// other than the one it was picked from. The Assigner hands out voices once
// per job: speakers whose gender can be inferred from how they refer to
// themselves get the next unused voice of that gender; everyone else is
// assigned round-robin over the interleaved pool so that adjacent speakers
// alternate between male and female voices.
//
// Prepare and GroupByVoice turn an Assignment into the ordered work list used
// by the synthesis stage.
package voice
