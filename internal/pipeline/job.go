package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dubline/internal/compositor"
	"dubline/internal/conversation"
	"dubline/internal/transcript"
	"dubline/internal/voice"
)

// Stage names reported through progress callbacks and logs.
const (
	StageLoad       = "load"
	StageMerge      = "merge"
	StageAnalyze    = "analyze"
	StageTranslate  = "translate"
	StageRestore    = "restore"
	StageVoices     = "voices"
	StageSynthesize = "synthesize"
	StageCompose    = "compose"
	StageWrite      = "write"
	StageDone       = "done"
)

// ProgressFunc receives a human-readable message and overall percent.
type ProgressFunc func(message string, percent float64)

// Job describes one dubbing run.
type Job struct {
	ID string
	// TranscriptPath is read when Segments is nil.
	TranscriptPath string
	Segments       []transcript.Segment
	// AudioPath is the original WAV. When empty the dub is mixed over silence
	// as long as the transcript.
	AudioPath      string
	OutputPath     string
	SubtitlePath   string
	SourceLanguage string
	TargetLanguage string
	Progress       ProgressFunc
}

// NewJobID returns a random job identifier.
func NewJobID() string {
	return uuid.NewString()
}

// Report summarizes a finished job.
type Report struct {
	JobID            string            `json:"job_id"`
	SourceLanguage   string            `json:"source_language"`
	TargetLanguage   string            `json:"target_language"`
	Segments         int               `json:"segments"`
	Paragraphs       int               `json:"paragraphs"`
	Speakers         []string          `json:"speakers"`
	ConversationType conversation.Type `json:"conversation_type"`

	TranslationFallbacks int `json:"translation_fallbacks"`
	CachedTranslations   int `json:"cached_translations"`

	AlignmentIssues  int `json:"alignment_issues"`
	DegradedMatches  int `json:"degraded_matches"`
	EmptyAssignments int `json:"empty_assignments"`
	Orphans          int `json:"orphans"`
	Unclaimed        int `json:"unclaimed"`

	VoiceProvider string            `json:"voice_provider"`
	Voices        map[string]string `json:"voices"`

	SynthesisFallbacks int            `json:"synthesis_fallbacks"`
	SkippedClips       int            `json:"skipped_clips"`
	SpeechProviders    map[string]int `json:"speech_providers"`

	Serialized int                    `json:"serialized_clips"`
	Trimmed    time.Duration          `json:"trimmed"`
	Overlays   int                    `json:"overlays"`
	Duration   time.Duration          `json:"duration"`
	Timeline   []compositor.Placement `json:"-"`

	OutputPath   string `json:"output_path"`
	SubtitlePath string `json:"subtitle_path,omitempty"`

	// Prepared holds every restored segment with its voice.
	Prepared []voice.Prepared `json:"-"`
}

// Recorder persists job lifecycle events. Recorder errors are logged and
// never fail the job.
type Recorder interface {
	Start(ctx context.Context, job Job) error
	Progress(ctx context.Context, jobID, stage string, percent float64, message string) error
	Finish(ctx context.Context, report *Report) error
	Fail(ctx context.Context, jobID string, cause error) error
}
