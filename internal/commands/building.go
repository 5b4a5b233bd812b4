package commands

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plan-annotator/internal/geometry"
	"plan-annotator/internal/models"
	"plan-annotator/internal/service"
)

func BuildingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "building",
		Short: "Manage buildings",
	}
	cmd.AddCommand(
		buildingListCmd(app),
		buildingShowCmd(app),
		buildingDraftCmd(app),
		buildingSaveCmd(app),
		buildingDeleteCmd(app),
		buildingStatusCmd(app),
		buildingMoveCmd(app),
	)
	return cmd
}

func buildingListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List buildings",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Buildings.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tName\tFloors\tAvailable")
			for _, b := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", b.ID, b.Name, b.FloorCount, b.AvailableCount())
			}
			return tw.Flush()
		},
	}
}

func buildingShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a building as stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.Buildings.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		},
	}
}

func buildingDraftCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "draft <id>",
		Short: "Print an editable YAML draft of a building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.BuildingEditor.Draft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), d)
		},
	}
}

func buildingSaveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or edit a building from a YAML draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			image, _ := cmd.Flags().GetString("image")
			plans, _ := cmd.Flags().GetStringArray("floor-plan")

			var d service.BuildingDraft
			if err := readYAML(file, &d); err != nil {
				return err
			}

			owner := d.ID
			if owner == "" {
				owner = "drafts"
			}
			if image != "" {
				url, err := app.Images.IngestFile(cmd.Context(), owner, image)
				if err != nil {
					return err
				}
				d.ImageURL = url
			}
			for _, spec := range plans {
				n, path, err := numberedPath(spec)
				if err != nil {
					return err
				}
				url, err := app.Images.IngestFile(cmd.Context(), owner, path)
				if err != nil {
					return err
				}
				d = withFloorPlan(d, n, url)
			}

			b, err := app.BuildingEditor.Save(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.ID)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML draft")
	cmd.Flags().String("image", "", "facade image file")
	cmd.Flags().StringArray("floor-plan", nil, "floor plan image as <floor>=<file>, repeatable")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func withFloorPlan(d service.BuildingDraft, floor int, url string) service.BuildingDraft {
	floors := append([]service.FloorDraft(nil), d.Floors...)
	for i := range floors {
		if floors[i].FloorNumber == floor {
			floors[i].FloorPlanImageURL = url
			d.Floors = floors
			return d
		}
	}
	d.Floors = append(floors, service.FloorDraft{FloorNumber: floor, FloorPlanImageURL: url})
	return d
}

// numberedPath splits "<n>=<path>".
func numberedPath(spec string) (int, string, error) {
	num, path, ok := strings.Cut(spec, "=")
	n, err := strconv.Atoi(num)
	if !ok || err != nil || path == "" {
		return 0, "", fmt.Errorf("expected <number>=<file>, got %q", spec)
	}
	return n, path, nil
}

func buildingDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Buildings.Delete(cmd.Context(), args[0])
		},
	}
}

func buildingStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <building-id> <floor> <apartment-id> <status>",
		Short: "Set an apartment's status (available, in negotiation, sold)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			floor, err := intArg(args, 1, "floor")
			if err != nil {
				return err
			}
			status, err := models.ParseStatus(args[3])
			if err != nil {
				return err
			}
			return app.Buildings.UpdateApartmentStatus(cmd.Context(), args[0], floor, args[2], status)
		},
	}
}

func buildingMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <building-id> <floor> <apartment-id> <x> <y>",
		Short: "Place an apartment marker at percent coordinates",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			floor, err := intArg(args, 1, "floor")
			if err != nil {
				return err
			}
			x, err := floatArg(args, 3, "x")
			if err != nil {
				return err
			}
			y, err := floatArg(args, 4, "y")
			if err != nil {
				return err
			}
			return app.Buildings.UpdateApartmentDotPosition(cmd.Context(), args[0], floor, args[2], geometry.Point{X: x, Y: y})
		},
	}
}
