package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plan-annotator/internal/service"
)

func SeedCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import buildings and parkings from a YAML catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read catalogue: %w", err)
			}
			c, err := service.ParseCatalogue(data)
			if err != nil {
				return err
			}

			importer := service.NewImporter(app.BuildingEditor, app.ParkingEditor, app.Logger.Named("seed"))
			res, err := importer.Import(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", len(res.Created), len(res.Skipped))
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "catalogue YAML")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
