// Package pipeline runs one dubbing job end to end.
//
// Runner.Run takes a Job through the stages load, merge, analyze, translate,
// restore, voices, synthesize, compose, and write. Stages run sequentially;
// translation and synthesis fan out internally. Per-unit failures degrade
// (original text, silence) and are counted in the Report. Only a violated
// precondition (services.ErrValidation or services.ErrConfiguration) or a
// cancelled context stops a job, and a stopped job never writes output: the
// mix and subtitles are written through a temp file and rename.
//
// Progress is reported through the Job's ProgressFunc at every stage
// transition and during the long stages, and mirrored to an optional
// Recorder such as the SQLite job store.
package pipeline
