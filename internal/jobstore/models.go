package jobstore

import "time"

// Status is a job lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Job is one persisted dubbing run.
type Job struct {
	ID              string
	Status          Status
	TranscriptPath  string
	AudioPath       string
	OutputPath      string
	SubtitlePath    string
	SourceLanguage  string
	TargetLanguage  string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	ErrorMessage    string
	// ReportJSON is the pipeline report of a completed job.
	ReportJSON string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// Segment is one restored segment of a completed job.
type Segment struct {
	Index          int
	Start          float64
	End            float64
	Speaker        string
	OriginalText   string
	TranslatedText string
	VoiceID        string
	Fallback       bool
}
