package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/takak2166/bookstack-export/internal/index"
	"github.com/takak2166/bookstack-export/internal/lister"
)

func newListCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Write the id/slug of every page to the index file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := index.ParseFormat(app.cfg.IndexFields)
			if err != nil {
				return err
			}

			client, err := app.client()
			if err != nil {
				return err
			}

			count, err := lister.New(client, app.cfg.InfoFile, format).Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d pages written to %s\n", count, app.cfg.InfoFile)
			return nil
		},
	}
}
