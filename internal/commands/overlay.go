package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"plan-annotator/internal/overlay"
)

func OverlayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Render clickable regions and markers as SVG",
	}

	building := &cobra.Command{
		Use:   "building <id>",
		Short: "Facade overlay, or a floor plan with --floor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			floor, _ := cmd.Flags().GetInt("floor")
			withImage, _ := cmd.Flags().GetBool("with-image")

			b, err := app.Buildings.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := overlay.Options{WithImage: withImage}
			var svg string
			if floor > 0 {
				svg, err = app.Renderer.Floor(b, floor, opts)
			} else {
				svg, err = app.Renderer.Building(b, opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), svg)
			return nil
		},
	}
	building.Flags().Int("floor", 0, "render this floor's plan")
	building.Flags().Bool("with-image", false, "embed the background image")

	parking := &cobra.Command{
		Use:   "parking <id>",
		Short: "Overview overlay, or a section plan with --section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, _ := cmd.Flags().GetInt("section")
			withImage, _ := cmd.Flags().GetBool("with-image")

			p, err := app.Parkings.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := overlay.Options{WithImage: withImage}
			var svg string
			if section > 0 {
				svg, err = app.Renderer.Section(p, section-1, opts)
			} else {
				svg, err = app.Renderer.Parking(p, opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), svg)
			return nil
		},
	}
	parking.Flags().Int("section", 0, "render this section's plan (1-based)")
	parking.Flags().Bool("with-image", false, "embed the background image")

	cmd.AddCommand(building, parking)
	return cmd
}
