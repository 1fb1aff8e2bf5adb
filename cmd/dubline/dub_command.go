package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dubline/internal/config"
	"dubline/internal/jobstore"
	"dubline/internal/pipeline"
	"dubline/internal/preflight"
	"dubline/internal/voice"
)

type dubOptions struct {
	audioPath   string
	outputPath  string
	srtPath     string
	noSubtitles bool
	source      string
	target      string
	jsonOutput  bool
}

func newDubCommand(ctx *commandContext) *cobra.Command {
	var opts dubOptions

	cmd := &cobra.Command{
		Use:   "dub TRANSCRIPT",
		Short: "Translate a transcript and render a dubbed audio track",
		Long: `Translate a diarized transcript and synthesize a dubbed track that keeps
the original timeline. The original audio (--audio) is mixed underneath at
the configured gain; without it the dub is rendered over silence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			catalog := voice.DefaultCatalog()
			if results := preflight.RunLocal(cfg, catalog); preflight.Failed(results) {
				for _, r := range results {
					if !r.Passed {
						fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine(r.Name, statusError, r.Detail, false))
					}
				}
				return errors.New("preflight checks failed (run `dubline doctor` for details)")
			}

			job, err := opts.job(cfg, args[0])
			if err != nil {
				return err
			}
			errOut := cmd.ErrOrStderr()
			if !opts.jsonOutput {
				job.Progress = func(message string, percent float64) {
					fmt.Fprintf(errOut, "[%3.0f%%] %s\n", percent, message)
				}
			}

			store, err := jobstore.Open(cfg.Paths.JobDB)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()

			runner, err := pipeline.NewRunner(cfg,
				pipeline.WithCatalog(catalog),
				pipeline.WithLogger(logger),
				pipeline.WithRecorder(store),
			)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runner.Run(runCtx, job)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Fprintf(errOut, "Job %s cancelled; no output written\n", job.ID)
				}
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd, report)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.audioPath, "audio", "a", "", "Original audio track (WAV)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Destination WAV (default: <output_dir>/<name>.<target>.wav)")
	cmd.Flags().StringVar(&opts.srtPath, "srt", "", "Destination for translated subtitles (default: next to the output)")
	cmd.Flags().BoolVar(&opts.noSubtitles, "no-subtitles", false, "Skip the translated SRT")
	cmd.Flags().StringVar(&opts.source, "source", "", "Source language code (default from config)")
	cmd.Flags().StringVar(&opts.target, "target", "", "Target language code (default from config)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the job report as JSON")
	cmd.MarkFlagsMutuallyExclusive("srt", "no-subtitles")

	return cmd
}

func (o dubOptions) job(cfg *config.Config, transcriptPath string) (pipeline.Job, error) {
	job := pipeline.Job{
		ID:             pipeline.NewJobID(),
		SourceLanguage: firstNonBlank(o.source, cfg.Languages.Source),
		TargetLanguage: firstNonBlank(o.target, cfg.Languages.Target),
	}

	var err error
	if job.TranscriptPath, err = config.ExpandPath(transcriptPath); err != nil {
		return job, fmt.Errorf("resolve transcript path: %w", err)
	}
	if strings.TrimSpace(o.audioPath) != "" {
		if job.AudioPath, err = config.ExpandPath(o.audioPath); err != nil {
			return job, fmt.Errorf("resolve audio path: %w", err)
		}
	}
	if strings.TrimSpace(o.outputPath) != "" {
		if job.OutputPath, err = config.ExpandPath(o.outputPath); err != nil {
			return job, fmt.Errorf("resolve output path: %w", err)
		}
	} else {
		job.OutputPath = pipeline.DefaultOutputPath(cfg, job)
	}

	switch {
	case o.noSubtitles:
	case strings.TrimSpace(o.srtPath) != "":
		if job.SubtitlePath, err = config.ExpandPath(o.srtPath); err != nil {
			return job, fmt.Errorf("resolve subtitle path: %w", err)
		}
	default:
		job.SubtitlePath = strings.TrimSuffix(job.OutputPath, filepath.Ext(job.OutputPath)) + ".srt"
	}
	return job, nil
}

func renderReport(report *pipeline.Report) string {
	var b strings.Builder
	rows := [][]string{
		{"Job", report.JobID},
		{"Languages", fmt.Sprintf("%s -> %s", report.SourceLanguage, report.TargetLanguage)},
		{"Segments", fmt.Sprintf("%d in %d paragraphs", report.Segments, report.Paragraphs)},
		{"Conversation", string(report.ConversationType)},
		{"Translation fallbacks", fmt.Sprintf("%d", report.TranslationFallbacks)},
		{"Alignment issues", fmt.Sprintf("%d", report.AlignmentIssues)},
		{"Synthesis fallbacks", fmt.Sprintf("%d (%d skipped)", report.SynthesisFallbacks, report.SkippedClips)},
		{"Serialized clips", fmt.Sprintf("%d", report.Serialized)},
		{"Duration", report.Duration.String()},
		{"Output", report.OutputPath},
	}
	if report.Trimmed > 0 {
		rows = append(rows, []string{"Trimmed", report.Trimmed.String()})
	}
	if report.SubtitlePath != "" {
		rows = append(rows, []string{"Subtitles", report.SubtitlePath})
	}
	b.WriteString(renderKeyValues(rows))
	b.WriteString("\n")

	if len(report.Voices) > 0 {
		speakers := make([]string, 0, len(report.Voices))
		for speaker := range report.Voices {
			speakers = append(speakers, speaker)
		}
		sort.Strings(speakers)
		voiceRows := make([][]string, 0, len(speakers))
		for _, speaker := range speakers {
			voiceRows = append(voiceRows, []string{speaker, report.Voices[speaker]})
		}
		b.WriteString(renderTable([]string{"Speaker", "Voice (" + report.VoiceProvider + ")"}, voiceRows, nil))
		b.WriteString("\n")
	}
	return b.String()
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
