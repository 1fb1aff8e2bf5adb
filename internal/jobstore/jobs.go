package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dubline/internal/pipeline"
)

var _ pipeline.Recorder = (*Store)(nil)

const jobColumns = "id, status, transcript_path, audio_path, output_path, subtitle_path, source_language, target_language, progress_stage, progress_percent, progress_message, error_message, report_json, created_at, updated_at, finished_at"

// Start inserts a running job.
func (s *Store) Start(ctx context.Context, job pipeline.Job) error {
	now := timestamp(time.Now())
	_, err := s.exec(ctx,
		`INSERT INTO jobs (
            id, status, transcript_path, audio_path, output_path, subtitle_path,
            source_language, target_language, progress_percent, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		string(StatusRunning),
		nullableString(job.TranscriptPath),
		nullableString(job.AudioPath),
		nullableString(job.OutputPath),
		nullableString(job.SubtitlePath),
		nullableString(job.SourceLanguage),
		nullableString(job.TargetLanguage),
		0.0,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Progress records the latest progress of a running job.
func (s *Store) Progress(ctx context.Context, jobID, stage string, percent float64, message string) error {
	res, err := s.exec(ctx,
		`UPDATE jobs SET progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
        WHERE id = ?`,
		nullableString(stage),
		percent,
		nullableString(message),
		timestamp(time.Now()),
		jobID,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return requireRow(res, jobID)
}

// Finish marks the job completed and stores its report and segments.
func (s *Store) Finish(ctx context.Context, report *pipeline.Report) error {
	if report == nil {
		return errors.New("finish job: report is nil")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finish tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := timestamp(time.Now())
	res, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
            report_json = ?, output_path = ?, error_message = NULL, updated_at = ?, finished_at = ?
        WHERE id = ?`,
		string(StatusCompleted),
		pipeline.StageDone,
		100.0,
		"Dub complete",
		string(data),
		nullableString(report.OutputPath),
		now,
		now,
		report.JobID,
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if err := requireRow(res, report.JobID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM job_segments WHERE job_id = ?", report.JobID); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO job_segments (
            job_id, segment_index, start_seconds, end_seconds, speaker,
            original_text, translated_text, voice_id, fallback
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare segment insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range report.Prepared {
		if _, err := stmt.ExecContext(ctx,
			report.JobID,
			p.Index,
			p.Start,
			p.End,
			nullableString(p.Speaker),
			p.OriginalText,
			p.TranslatedText,
			nullableString(p.Voice.ID),
			boolToInt(p.Fallback),
		); err != nil {
			return fmt.Errorf("insert segment %d: %w", p.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finish: %w", err)
	}
	return nil
}

// Fail marks the job failed, or cancelled when cause is a context error.
func (s *Store) Fail(ctx context.Context, jobID string, cause error) error {
	status := StatusFailed
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		status = StatusCancelled
	}
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	now := timestamp(time.Now())
	res, err := s.exec(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ?, finished_at = ? WHERE id = ?`,
		string(status),
		nullableString(message),
		now,
		now,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return requireRow(res, jobID)
}

// Get fetches one job.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs newest first, optionally filtered by status. A limit of
// zero or less returns every job.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs"
	var args []any
	if len(statuses) > 0 {
		query += " WHERE status IN (" + placeholders(len(statuses)) + ")"
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += " ORDER BY created_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Segments returns the stored segments of a completed job in index order.
func (s *Store) Segments(ctx context.Context, jobID string) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT segment_index, start_seconds, end_seconds, speaker, original_text, translated_text, voice_id, fallback
        FROM job_segments WHERE job_id = ? ORDER BY segment_index`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []Segment
	for rows.Next() {
		var (
			seg      Segment
			speaker  sql.NullString
			voiceID  sql.NullString
			fallback int
		)
		if err := rows.Scan(&seg.Index, &seg.Start, &seg.End, &speaker, &seg.OriginalText, &seg.TranslatedText, &voiceID, &fallback); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		seg.Speaker = speaker.String
		seg.VoiceID = voiceID.String
		seg.Fallback = fallback != 0
		out = append(out, seg)
	}
	return out, rows.Err()
}

// DecodeReport parses the report stored with a completed job.
func DecodeReport(job *Job) (*pipeline.Report, error) {
	if job == nil || job.ReportJSON == "" {
		return nil, errors.New("job has no report")
	}
	var report pipeline.Report
	if err := json.Unmarshal([]byte(job.ReportJSON), &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

func requireRow(res interface{ RowsAffected() (int64, error) }, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	b := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		job            Job
		status         string
		transcriptPath sql.NullString
		audioPath      sql.NullString
		outputPath     sql.NullString
		subtitlePath   sql.NullString
		sourceLanguage sql.NullString
		targetLanguage sql.NullString
		stage          sql.NullString
		message        sql.NullString
		errorMessage   sql.NullString
		reportJSON     sql.NullString
		createdRaw     string
		updatedRaw     string
		finishedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&job.ID,
		&status,
		&transcriptPath,
		&audioPath,
		&outputPath,
		&subtitlePath,
		&sourceLanguage,
		&targetLanguage,
		&stage,
		&job.ProgressPercent,
		&message,
		&errorMessage,
		&reportJSON,
		&createdRaw,
		&updatedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	job.Status = Status(status)
	job.TranscriptPath = transcriptPath.String
	job.AudioPath = audioPath.String
	job.OutputPath = outputPath.String
	job.SubtitlePath = subtitlePath.String
	job.SourceLanguage = sourceLanguage.String
	job.TargetLanguage = targetLanguage.String
	job.ProgressStage = stage.String
	job.ProgressMessage = message.String
	job.ErrorMessage = errorMessage.String
	job.ReportJSON = reportJSON.String
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			job.FinishedAt = &finished
		}
	}
	return &job, nil
}
