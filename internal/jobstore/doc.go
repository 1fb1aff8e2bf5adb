// Package jobstore persists dubbing job history in SQLite.
//
// A Store records each job's lifecycle (running, completed, failed,
// cancelled), its latest progress, the JSON report of a finished run, and
// every restored segment with its translation and voice. Store implements
// pipeline.Recorder so the runner can mirror events into it directly.
//
// The schema is versioned; opening a database created by a different
// version fails with ErrSchemaMismatch.
package jobstore
