package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dubline/internal/jobstore"
	"dubline/internal/pipeline"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect dubbing job history",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFlags []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *jobstore.Store) error {
				jobs, err := store.List(cmd.Context(), limit, statuses...)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, jobViews(jobs))
				}
				out := cmd.OutOrStdout()
				if len(jobs) == 0 {
					fmt.Fprintln(out, "No jobs recorded")
					return nil
				}
				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						job.ID,
						string(job.Status),
						job.SourceLanguage + " -> " + job.TargetLanguage,
						formatPercent(job),
						job.CreatedAt.Local().Format(time.DateTime),
						truncate(job.TranscriptPath, 40),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Status", "Languages", "Progress", "Created", "Transcript"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (running, completed, failed, cancelled)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print jobs as JSON")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var showSegments bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one job and its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(store *jobstore.Store) error {
				job, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				var report *pipeline.Report
				if job.ReportJSON != "" {
					if report, err = jobstore.DecodeReport(job); err != nil {
						return err
					}
				}
				var segments []jobstore.Segment
				if showSegments || jsonOutput {
					if segments, err = store.Segments(cmd.Context(), id); err != nil {
						return err
					}
				}

				if jsonOutput {
					view := jobDetailView{jobView: newJobView(job), Report: report}
					if showSegments {
						view.Segments = segmentViews(segments)
					}
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				rows := [][]string{
					{"ID", job.ID},
					{"Status", string(job.Status)},
					{"Languages", job.SourceLanguage + " -> " + job.TargetLanguage},
					{"Progress", fmt.Sprintf("%s (%s)", formatPercent(job), dashIfEmpty(job.ProgressStage))},
					{"Transcript", dashIfEmpty(job.TranscriptPath)},
					{"Audio", dashIfEmpty(job.AudioPath)},
					{"Output", dashIfEmpty(job.OutputPath)},
					{"Subtitles", dashIfEmpty(job.SubtitlePath)},
					{"Created", job.CreatedAt.Local().Format(time.DateTime)},
				}
				if job.FinishedAt != nil {
					rows = append(rows, []string{"Finished", job.FinishedAt.Local().Format(time.DateTime)})
				}
				if job.ErrorMessage != "" {
					rows = append(rows, []string{"Error", job.ErrorMessage})
				}
				if report != nil {
					rows = append(rows,
						[]string{"Paragraphs", strconv.Itoa(report.Paragraphs)},
						[]string{"Translation fallbacks", strconv.Itoa(report.TranslationFallbacks)},
						[]string{"Synthesis fallbacks", strconv.Itoa(report.SynthesisFallbacks)},
						[]string{"Serialized clips", strconv.Itoa(report.Serialized)},
						[]string{"Duration", report.Duration.String()},
					)
				}
				fmt.Fprintln(out, renderKeyValues(rows))

				if showSegments {
					if len(segments) == 0 {
						fmt.Fprintln(out, "No segments recorded")
						return nil
					}
					segRows := make([][]string, 0, len(segments))
					for _, seg := range segments {
						translated := seg.TranslatedText
						if seg.Fallback {
							translated += " (fallback)"
						}
						segRows = append(segRows, []string{
							strconv.Itoa(seg.Index),
							fmt.Sprintf("%.2f-%.2f", seg.Start, seg.End),
							dashIfEmpty(seg.Speaker),
							dashIfEmpty(seg.VoiceID),
							truncate(seg.OriginalText, 40),
							truncate(translated, 40),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"#", "Time", "Speaker", "Voice", "Original", "Translated"},
						segRows,
						[]columnAlignment{alignRight, alignRight},
					))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showSegments, "segments", false, "Include restored segments")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the job as JSON")
	return cmd
}

func parseStatuses(values []string) ([]jobstore.Status, error) {
	var statuses []jobstore.Status
	for _, raw := range values {
		value := jobstore.Status(strings.ToLower(strings.TrimSpace(raw)))
		switch value {
		case jobstore.StatusRunning, jobstore.StatusCompleted, jobstore.StatusFailed, jobstore.StatusCancelled:
			statuses = append(statuses, value)
		case "":
		default:
			return nil, fmt.Errorf("unknown status %q", raw)
		}
	}
	return statuses, nil
}

func formatPercent(job *jobstore.Job) string {
	return fmt.Sprintf("%.0f%%", job.ProgressPercent)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 3 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
