package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func ImageCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Image ingestion",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ingest <owner> <file>",
		Short: "Turn an image file into a reference usable in drafts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := app.Images.IngestFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	})
	return cmd
}
