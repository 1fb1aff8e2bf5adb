package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dubline/internal/preflight"
	"dubline/internal/voice"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, voices, and provider credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Dubline readiness", colorize) {
				fmt.Fprintln(out, line)
			}

			results := preflight.RunAll(cmd.Context(), cfg, voice.DefaultCatalog())
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if preflight.Failed(results) {
				return errors.New("one or more readiness checks failed")
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
