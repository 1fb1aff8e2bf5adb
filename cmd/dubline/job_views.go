package main

import (
	"time"

	"dubline/internal/jobstore"
	"dubline/internal/pipeline"
)

type jobView struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	TranscriptPath  string     `json:"transcript_path,omitempty"`
	AudioPath       string     `json:"audio_path,omitempty"`
	OutputPath      string     `json:"output_path,omitempty"`
	SubtitlePath    string     `json:"subtitle_path,omitempty"`
	SourceLanguage  string     `json:"source_language"`
	TargetLanguage  string     `json:"target_language"`
	ProgressStage   string     `json:"progress_stage,omitempty"`
	ProgressPercent float64    `json:"progress_percent"`
	ProgressMessage string     `json:"progress_message,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

type segmentView struct {
	Index          int     `json:"index"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Speaker        string  `json:"speaker,omitempty"`
	OriginalText   string  `json:"original_text"`
	TranslatedText string  `json:"translated_text"`
	VoiceID        string  `json:"voice_id,omitempty"`
	Fallback       bool    `json:"fallback"`
}

type jobDetailView struct {
	jobView
	Report   *pipeline.Report `json:"report,omitempty"`
	Segments []segmentView    `json:"segments,omitempty"`
}

func newJobView(job *jobstore.Job) jobView {
	return jobView{
		ID:              job.ID,
		Status:          string(job.Status),
		TranscriptPath:  job.TranscriptPath,
		AudioPath:       job.AudioPath,
		OutputPath:      job.OutputPath,
		SubtitlePath:    job.SubtitlePath,
		SourceLanguage:  job.SourceLanguage,
		TargetLanguage:  job.TargetLanguage,
		ProgressStage:   job.ProgressStage,
		ProgressPercent: job.ProgressPercent,
		ProgressMessage: job.ProgressMessage,
		ErrorMessage:    job.ErrorMessage,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
		FinishedAt:      job.FinishedAt,
	}
}

func jobViews(jobs []*jobstore.Job) []jobView {
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, newJobView(job))
	}
	return views
}

func segmentViews(segments []jobstore.Segment) []segmentView {
	views := make([]segmentView, 0, len(segments))
	for _, seg := range segments {
		views = append(views, segmentView(seg))
	}
	return views
}
