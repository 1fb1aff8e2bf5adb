package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dubline/internal/voice"
)

func newVoicesCommand() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:         "voices",
		Short:       "List the voice catalog and cross-provider fallbacks",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := voice.DefaultCatalog()
			providers := catalog.Providers()
			if filter := strings.ToLower(strings.TrimSpace(provider)); filter != "" {
				if len(catalog.Voices(filter)) == 0 {
					return fmt.Errorf("unknown voice provider %q (known: %s)", filter, strings.Join(providers, ", "))
				}
				providers = []string{filter}
			}

			out := cmd.OutOrStdout()
			for i, name := range providers {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, renderVoices(catalog, name))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Only show voices for this provider")
	return cmd
}

func renderVoices(catalog *voice.Catalog, provider string) string {
	var others []string
	for _, name := range catalog.Providers() {
		if name != provider {
			others = append(others, name)
		}
	}

	headers := []string{"ID", "Name", "Gender", "Age", "Tags"}
	for _, other := range others {
		headers = append(headers, "On "+other)
	}

	pool := catalog.Voices(provider)
	rows := make([][]string, 0, len(pool))
	for _, p := range pool {
		row := []string{p.ID, p.Name, genderLabel(p.Gender), dashIfEmpty(p.AgeGroup), dashIfEmpty(strings.Join(p.StyleTags, ", "))}
		for _, other := range others {
			fallback, ok := catalog.FallbackVoice(p.ID, other)
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, fallback.Label())
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	for _, line := range renderSectionHeader(provider, false) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(renderTable(headers, rows, nil))
	b.WriteString("\n")
	return b.String()
}

func genderLabel(g voice.Gender) string {
	if g == voice.GenderUnknown {
		return "neutral"
	}
	return string(g)
}

func dashIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
