package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plan-annotator/internal/report"
)

func ReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Availability per floor and per parking section",
		RunE: func(cmd *cobra.Command, args []string) error {
			xlsx, _ := cmd.Flags().GetString("xlsx")

			buildings, err := app.Buildings.List(cmd.Context())
			if err != nil {
				return err
			}
			parkings, err := app.Parkings.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := report.Summarize(buildings, parkings)

			if xlsx == "" {
				return report.WriteTable(cmd.OutOrStdout(), rows)
			}
			data, err := report.ExportXLSX(rows)
			if err != nil {
				return err
			}
			if err := os.WriteFile(xlsx, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", xlsx, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), xlsx)
			return nil
		},
	}
	cmd.Flags().String("xlsx", "", "write an Excel workbook instead of a table")
	return cmd
}
