package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plan-annotator/internal/geometry"
	"plan-annotator/internal/models"
	"plan-annotator/internal/service"
)

func ParkingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parking",
		Short: "Manage parking facilities",
	}
	cmd.AddCommand(
		parkingListCmd(app),
		parkingShowCmd(app),
		parkingDraftCmd(app),
		parkingSaveCmd(app),
		parkingDeleteCmd(app),
		parkingStatusCmd(app),
		parkingMoveCmd(app),
	)
	return cmd
}

func parkingListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List parking facilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Parkings.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tName\tSections\tSpaces\tAvailable")
			for _, p := range list {
				available := 0
				for i := range p.Sections {
					available += p.AvailableInSection(i)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", p.ID, p.Name, len(p.Sections), len(p.Spaces), available)
			}
			return tw.Flush()
		},
	}
}

func parkingShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a parking facility as stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Parkings.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func parkingDraftCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "draft <id>",
		Short: "Print an editable YAML draft of a parking facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.ParkingEditor.Draft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), d)
		},
	}
}

func parkingSaveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or edit a parking facility from a YAML draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			overview, _ := cmd.Flags().GetString("overview")
			plans, _ := cmd.Flags().GetStringArray("section-plan")

			var d service.ParkingDraft
			if err := readYAML(file, &d); err != nil {
				return err
			}

			owner := d.ID
			if owner == "" {
				owner = "drafts"
			}
			if overview != "" {
				url, err := app.Images.IngestFile(cmd.Context(), owner, overview)
				if err != nil {
					return err
				}
				d.OverviewImageURL = url
			}
			for _, spec := range plans {
				n, path, err := numberedPath(spec)
				if err != nil {
					return err
				}
				if n < 1 || n > len(d.Sections) {
					return fmt.Errorf("section %d does not exist", n)
				}
				url, err := app.Images.IngestFile(cmd.Context(), owner, path)
				if err != nil {
					return err
				}
				d.Sections[n-1].PlanImageURL = url
			}

			p, err := app.ParkingEditor.Save(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML draft")
	cmd.Flags().String("overview", "", "overview image file")
	cmd.Flags().StringArray("section-plan", nil, "section plan image as <section>=<file>, repeatable")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func parkingDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a parking facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Parkings.Delete(cmd.Context(), args[0])
		},
	}
}

func parkingStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <parking-id> <space-id> <status>",
		Short: "Set a space's status (available, in negotiation, sold)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseStatus(args[2])
			if err != nil {
				return err
			}
			return app.Parkings.UpdateSpaceStatus(cmd.Context(), args[0], args[1], status)
		},
	}
}

func parkingMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <parking-id> <space-id> <x> <y>",
		Short: "Place a space marker at percent coordinates",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := floatArg(args, 2, "x")
			if err != nil {
				return err
			}
			y, err := floatArg(args, 3, "y")
			if err != nil {
				return err
			}
			return app.Parkings.UpdateSpaceDotPosition(cmd.Context(), args[0], args[1], geometry.Point{X: x, Y: y})
		},
	}
}
