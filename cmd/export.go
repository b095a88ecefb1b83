package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/takak2166/bookstack-export/internal/exporter"
	"github.com/takak2166/bookstack-export/internal/index"
)

func newExportCommand(app *appContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every page in the index file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.cfg.ValidateExport(); err != nil {
				return err
			}
			format, err := index.ParseFormat(app.cfg.IndexFields)
			if err != nil {
				return err
			}

			records, err := index.Read(app.cfg.InfoFile, format)
			if err != nil {
				return err
			}

			client, err := app.client()
			if err != nil {
				return err
			}
			exp, err := exporter.New(client, app.cfg.ExportDir, app.cfg.ExportType)
			if err != nil {
				return err
			}

			summary := exp.Export(cmd.Context(), records)
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, showAll))

			if len(summary.Failed) > 0 {
				return fmt.Errorf("%d of %d pages failed to export", len(summary.Failed), summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAll, "all", false, "List exported pages in the summary, not just failures")

	return cmd
}

func renderSummary(summary *exporter.Summary, showAll bool) string {
	var rows [][]string

	if showAll {
		for _, r := range summary.Exported {
			rows = append(rows, []string{r.Record.ID, r.Record.Slug, r.Record.BookSlug, r.Path})
		}
	}
	for _, r := range summary.Failed {
		rows = append(rows, []string{r.Record.ID, r.Record.Slug, r.Record.BookSlug, "FAILED: " + r.Err.Error()})
	}

	footer := fmt.Sprintf("%d exported, %d failed, %d total", len(summary.Exported), len(summary.Failed), summary.Total)
	if len(rows) == 0 {
		return footer
	}
	return renderSummaryTable(rows) + "\n" + footer
}
