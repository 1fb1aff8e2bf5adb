package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dubline/internal/audio"
	"dubline/internal/compositor"
	"dubline/internal/config"
	"dubline/internal/conversation"
	"dubline/internal/fileutil"
	"dubline/internal/logging"
	"dubline/internal/merge"
	"dubline/internal/services"
	"dubline/internal/synth"
	"dubline/internal/textutil"
	"dubline/internal/timing"
	"dubline/internal/transcript"
	"dubline/internal/translate"
	"dubline/internal/voice"
)

const progressBucket = 5.0

// Overall percent at which each stage begins. Translate and synthesize
// report inside their span as units finish.
const (
	percentLoad       = 0
	percentMerge      = 5
	percentAnalyze    = 10
	percentTranslate  = 15
	percentRestore    = 55
	percentVoices     = 60
	percentSynthesize = 62
	percentCompose    = 90
	percentWrite      = 95
	percentDone       = 100
)

// Option configures a Runner.
type Option func(*Runner)

// WithTranslationProviders replaces the providers built from config.
func WithTranslationProviders(providers ...translate.Provider) Option {
	return func(r *Runner) {
		r.translation = providers
	}
}

// WithSpeechProviders replaces the providers built from config.
func WithSpeechProviders(providers ...synth.Provider) Option {
	return func(r *Runner) {
		r.speech = providers
	}
}

// WithCatalog sets the voice catalog.
func WithCatalog(catalog *voice.Catalog) Option {
	return func(r *Runner) {
		if catalog != nil {
			r.catalog = catalog
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, "pipeline")
		}
	}
}

// WithRecorder mirrors job lifecycle events to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithSleeper overrides retry waits in translation and synthesis.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		r.sleep = sleep
	}
}

// Runner executes dubbing jobs. A Runner may run several jobs concurrently;
// every job gets its own translator cache and voice pool.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	catalog     *voice.Catalog
	translation []translate.Provider
	speech      []synth.Provider
	recorder    Recorder
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRunner builds a Runner. Providers not supplied through options are
// built from cfg and must have credentials.
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "config is nil", nil)
	}
	r := &Runner{
		cfg:     cfg,
		logger:  logging.NewNop(),
		catalog: voice.DefaultCatalog(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.translation) == 0 {
		providers, err := TranslationProviders(cfg, r.logger)
		if err != nil {
			return nil, err
		}
		r.translation = providers
	}
	if len(r.speech) == 0 {
		providers, err := SpeechProviders(cfg, r.logger)
		if err != nil {
			return nil, err
		}
		r.speech = providers
	}
	return r, nil
}

// jobRun holds the state of one Run call.
type jobRun struct {
	*Runner
	job     Job
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	report  *Report
	format  audio.Format
}

// Run executes job. On success the dubbed WAV (and subtitles when
// SubtitlePath is set) exist on disk. On failure nothing is written and the
// error is either ctx's error or a job-fatal precondition.
func (r *Runner) Run(ctx context.Context, job Job) (*Report, error) {
	if strings.TrimSpace(job.ID) == "" {
		job.ID = NewJobID()
	}
	job.SourceLanguage = firstNonEmpty(job.SourceLanguage, r.cfg.Languages.Source)
	job.TargetLanguage = firstNonEmpty(job.TargetLanguage, r.cfg.Languages.Target)
	if strings.TrimSpace(job.OutputPath) == "" {
		job.OutputPath = DefaultOutputPath(r.cfg, job)
	}

	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, r.logger)
	j := &jobRun{
		Runner:  r,
		job:     job,
		logger:  logger,
		sampler: logging.NewProgressSampler(progressBucket),
		format:  audio.Format{SampleRate: r.cfg.Audio.SampleRate, Channels: r.cfg.Audio.Channels},
		report: &Report{
			JobID:          job.ID,
			SourceLanguage: job.SourceLanguage,
			TargetLanguage: job.TargetLanguage,
			OutputPath:     job.OutputPath,
			SubtitlePath:   job.SubtitlePath,
		},
	}

	if r.recorder != nil {
		j.recorderResult("start", r.recorder.Start(ctx, job))
	}
	logger.Info("dub job started",
		logging.String("transcript", job.TranscriptPath),
		logging.String("audio", job.AudioPath),
		logging.String("output", job.OutputPath),
		logging.String("source_language", job.SourceLanguage),
		logging.String("target_language", job.TargetLanguage),
	)

	started := time.Now()
	if err := j.execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logging.WarnWithContext(logger, "dub job cancelled", "job_cancelled",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rerun the job to produce output"),
				logging.String(logging.FieldImpact, "no output written"),
			)
		} else {
			logger.Error("dub job failed",
				logging.String(logging.FieldEventType, "job_failure"),
				logging.Error(err),
			)
		}
		if r.recorder != nil {
			j.recorderResult("fail", r.recorder.Fail(context.WithoutCancel(ctx), job.ID, err))
		}
		return nil, err
	}

	logger.Info("dub job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("segments", j.report.Segments),
		logging.Int("translation_fallbacks", j.report.TranslationFallbacks),
		logging.Int("synthesis_fallbacks", j.report.SynthesisFallbacks),
		logging.Int("serialized_clips", j.report.Serialized),
		logging.Duration("duration", j.report.Duration),
	)
	if r.recorder != nil {
		j.recorderResult("finish", r.recorder.Finish(ctx, j.report))
	}
	return j.report, nil
}

// DefaultOutputPath names the mix after the transcript inside the output
// directory, suffixed with the target language. The name is reduced to a
// filesystem-safe token.
func DefaultOutputPath(cfg *config.Config, job Job) string {
	base := job.ID
	if job.TranscriptPath != "" {
		base = strings.TrimSuffix(filepath.Base(job.TranscriptPath), filepath.Ext(job.TranscriptPath))
	}
	base = textutil.SanitizeToken(base)
	target := firstNonEmpty(job.TargetLanguage, cfg.Languages.Target)
	return filepath.Join(cfg.Paths.OutputDir, fmt.Sprintf("%s.%s.wav", base, target))
}

func (j *jobRun) execute(ctx context.Context) error {
	var (
		segments   []transcript.Segment
		original   *audio.Track
		paragraphs []transcript.Paragraph
		builder    *conversation.Builder
		translated []translate.Paragraph
		restored   []timing.Segment
		prepared   []voice.Prepared
		clips      []synth.Clip
		mix        compositor.Result
	)

	unlock, err := j.lockOutput()
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			j.logger.Debug("release output lock failed", logging.Error(err))
		}
	}()

	if err := j.stage(ctx, StageLoad, percentLoad, func(ctx context.Context) error {
		var err error
		segments, original, err = j.load()
		if err != nil {
			return err
		}
		j.report.Segments = len(segments)
		j.report.Speakers = transcript.Speakers(segments)
		return nil
	}); err != nil {
		return err
	}

	if err := j.stage(ctx, StageMerge, percentMerge, func(ctx context.Context) error {
		merger := merge.New(merge.ThresholdsFromConfig(j.cfg.Merge), logging.WithContext(ctx, j.Runner.logger))
		paragraphs = merger.Merge(segments)
		j.report.Paragraphs = len(paragraphs)
		return nil
	}); err != nil {
		return err
	}

	if err := j.stage(ctx, StageAnalyze, percentAnalyze, func(ctx context.Context) error {
		analysis := conversation.Analyze(paragraphs, j.report.Speakers)
		j.report.ConversationType = analysis.Type
		builder = conversation.NewBuilder(j.cfg.Translation.ContextWindow)
		return nil
	}); err != nil {
		return err
	}

	if err := j.stage(ctx, StageTranslate, percentTranslate, func(ctx context.Context) error {
		translator := j.translator(ctx)
		translator.PrepareStyles(paragraphs)
		var err error
		translated, err = translator.TranslateAll(ctx, paragraphs, builder, func(done, total int) {
			j.progress(ctx, StageTranslate, span(percentTranslate, percentRestore, done, total),
				fmt.Sprintf("Translated %d/%d paragraphs", done, total))
		})
		if err != nil {
			return err
		}
		for _, p := range translated {
			if p.Fallback {
				j.report.TranslationFallbacks++
			}
			if p.Cached {
				j.report.CachedTranslations++
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := j.stage(ctx, StageRestore, percentRestore, func(ctx context.Context) error {
		var report timing.Report
		restored, report = timing.Restore(translated, segments)
		j.report.AlignmentIssues = len(report.Issues)
		j.report.DegradedMatches = report.Degraded
		j.report.EmptyAssignments = report.EmptyAssignments
		j.report.Orphans = len(report.Orphans)
		j.report.Unclaimed = report.Unclaimed
		if len(report.Issues) > 0 {
			logger := logging.WithContext(ctx, j.Runner.logger)
			for _, issue := range report.Issues {
				logger.Debug("alignment issue", logging.Error(issue))
			}
			logging.WarnWithContext(logger, "translation alignment degraded", "alignment_degraded",
				logging.Int("issues", len(report.Issues)),
				logging.Int("degraded", report.Degraded),
				logging.Int("orphans", len(report.Orphans)),
				logging.Int("unclaimed", report.Unclaimed),
				logging.String(logging.FieldErrorHint, "review merge thresholds or the transcript timestamps"),
				logging.String(logging.FieldImpact, "some segments keep original text or speak a partial translation"),
			)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := j.stage(ctx, StageVoices, percentVoices, func(ctx context.Context) error {
		var err error
		prepared, err = j.assignVoices(ctx, segments, restored)
		return err
	}); err != nil {
		return err
	}

	if err := j.stage(ctx, StageSynthesize, percentSynthesize, func(ctx context.Context) error {
		var err error
		clips, err = j.synthesizer(ctx).SynthesizeAll(ctx, voice.GroupByVoice(prepared), func(done, total int) {
			j.progress(ctx, StageSynthesize, span(percentSynthesize, percentCompose, done, total),
				fmt.Sprintf("Synthesized %d/%d segments", done, total))
		})
		if err != nil {
			return err
		}
		j.report.SpeechProviders = map[string]int{}
		for _, c := range clips {
			switch {
			case c.Skipped:
				j.report.SkippedClips++
			case c.Fallback:
				j.report.SynthesisFallbacks++
			default:
				j.report.SpeechProviders[c.Provider]++
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := j.stage(ctx, StageCompose, percentCompose, func(ctx context.Context) error {
		comp, err := compositor.New(j.format, j.cfg.Audio.OriginalGain,
			compositor.WithLogger(logging.WithContext(ctx, j.Runner.logger)))
		if err != nil {
			return services.Wrap(services.ErrConfiguration, StageCompose, "init", "invalid audio settings", err)
		}
		if original == nil {
			original = audio.Silence(j.format, j.format.FramesAt(transcript.End(segments)))
		}
		mix = comp.Compose(original, compositorClips(clips))
		j.report.Serialized = mix.Serialized
		j.report.Trimmed = j.format.Duration(mix.Trimmed)
		j.report.Overlays = mix.Overlays
		j.report.Duration = mix.Track.Duration()
		j.report.Timeline = mix.Timeline
		return nil
	}); err != nil {
		return err
	}

	if err := j.stage(ctx, StageWrite, percentWrite, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := audio.WriteWAVFile(j.job.OutputPath, mix.Track); err != nil {
			return fmt.Errorf("write dubbed audio: %w", err)
		}
		if j.job.SubtitlePath == "" {
			return nil
		}
		return fileutil.WriteAtomic(j.job.SubtitlePath, 0o644, func(f *os.File) error {
			return timing.WriteSRT(f, restored)
		})
	}); err != nil {
		return err
	}

	j.report.Prepared = prepared
	j.progress(ctx, StageDone, percentDone, "Dub complete")
	return nil
}

// stage runs fn with stage context and start, completion, and failure logs.
func (j *jobRun) stage(ctx context.Context, name string, percent float64, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, j.Runner.logger)
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	j.progress(stageCtx, name, percent, stageMessage(name))

	started := time.Now()
	if err := fn(stageCtx); err != nil {
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// progress notifies the job callback on every call. Logs and the recorder
// only see sampled updates.
func (j *jobRun) progress(ctx context.Context, stage string, percent float64, message string) {
	if j.job.Progress != nil {
		j.job.Progress(message, percent)
	}
	if !j.sampler.ShouldLog(stage, percent) {
		return
	}
	logging.WithContext(ctx, j.Runner.logger).Debug("progress",
		logging.String("message", message),
		logging.Float64("percent", percent),
	)
	if j.recorder != nil {
		j.recorderResult("progress", j.recorder.Progress(ctx, j.job.ID, stage, percent, message))
	}
}

func (j *jobRun) recorderResult(op string, err error) {
	if err == nil {
		return
	}
	logging.WarnWithContext(j.logger, "job record not saved", "recorder_failure",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the job database path and permissions"),
		logging.String(logging.FieldImpact, "job history incomplete; the dub is unaffected"),
	)
}

func (j *jobRun) lockOutput() (func() error, error) {
	if dir := filepath.Dir(j.job.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrValidation, StageLoad, "output dir", "create output directory", err)
		}
	}
	unlock, err := fileutil.LockOutput(j.job.OutputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageLoad, "lock output", j.job.OutputPath, err)
	}
	return unlock, nil
}

func (j *jobRun) load() ([]transcript.Segment, *audio.Track, error) {
	segments := j.job.Segments
	if segments == nil {
		loaded, err := transcript.Load(j.job.TranscriptPath)
		if err != nil {
			return nil, nil, err
		}
		segments = loaded
	}
	if err := transcript.Validate(segments); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(j.job.AudioPath) == "" {
		return segments, nil, nil
	}
	original, err := audio.ReadWAVFile(j.job.AudioPath)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrValidation, StageLoad, "read audio", j.job.AudioPath, err)
	}
	return segments, original, nil
}

func (j *jobRun) translator(ctx context.Context) *translate.Translator {
	cfg := j.cfg.Translation
	opts := []translate.Option{
		translate.WithMaxAttempts(cfg.MaxAttempts),
		translate.WithBackoff(j.cfg.TranslationBackoff()),
		translate.WithCacheMaxWords(cfg.CacheMaxWords),
		translate.WithLimiter(newLimiter(cfg.RequestsPerMinute)),
		translate.WithWorkers(cfg.Workers),
		translate.WithLogger(logging.WithContext(ctx, j.Runner.logger)),
	}
	if j.sleep != nil {
		opts = append(opts, translate.WithSleeper(translate.Sleeper(j.sleep)))
	}
	return translate.New(translate.NewChain(j.translation...), j.job.SourceLanguage, j.job.TargetLanguage, opts...)
}

func (j *jobRun) synthesizer(ctx context.Context) *synth.Synthesizer {
	cfg := j.cfg.Synthesis
	opts := []synth.Option{
		synth.WithWorkers(cfg.Workers),
		synth.WithLimiter(newLimiter(cfg.RequestsPerMinute)),
		synth.WithLogger(logging.WithContext(ctx, j.Runner.logger)),
	}
	if j.sleep != nil {
		opts = append(opts, synth.WithSleeper(synth.Sleeper(j.sleep)))
	}
	return synth.New(synth.NewChain(j.catalog, j.speech...), j.format, opts...)
}

func (j *jobRun) assignVoices(ctx context.Context, segments []transcript.Segment, restored []timing.Segment) ([]voice.Prepared, error) {
	assigner, err := voice.NewAssigner(j.catalog, j.cfg.Voices.Provider, logging.WithContext(ctx, j.Runner.logger))
	if err != nil {
		return nil, err
	}
	fallback, err := j.catalog.Resolve(j.cfg.Voices.DefaultVoice, assigner.Provider())
	if err != nil {
		return nil, err
	}
	assignment := assigner.Assign(j.report.Speakers, segments, j.cfg.Voices.AutoDetectGender)
	j.report.VoiceProvider = assigner.Provider()
	j.report.Voices = make(map[string]string, len(assignment))
	for speaker, profile := range assignment {
		j.report.Voices[speaker] = profile.ID
	}
	return voice.Prepare(restored, assignment, fallback), nil
}

func compositorClips(clips []synth.Clip) []compositor.Clip {
	out := make([]compositor.Clip, 0, len(clips))
	for _, c := range clips {
		out = append(out, compositor.Clip{Index: c.Index, Start: c.Start, Track: c.Track})
	}
	return out
}

// span maps done/total onto [from, to).
func span(from, to float64, done, total int) float64 {
	if total <= 0 {
		return to
	}
	return from + (to-from)*float64(done)/float64(total)
}

func stageMessage(stage string) string {
	switch stage {
	case StageLoad:
		return "Loading transcript"
	case StageMerge:
		return "Merging segments into paragraphs"
	case StageAnalyze:
		return "Analyzing conversation"
	case StageTranslate:
		return "Translating paragraphs"
	case StageRestore:
		return "Restoring segment timing"
	case StageVoices:
		return "Assigning voices"
	case StageSynthesize:
		return "Synthesizing speech"
	case StageCompose:
		return "Composing audio timeline"
	case StageWrite:
		return "Writing output"
	default:
		return stage
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
