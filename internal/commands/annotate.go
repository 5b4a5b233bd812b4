package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plan-annotator/internal/annotation"
	"plan-annotator/internal/geometry"
)

// ============================================================
// Annotation replay
// ============================================================

type annotateTarget struct {
	building string
	parking  string
	floor    int
	section  int
	out      string
}

func AnnotateCmd(app *App) *cobra.Command {
	var t annotateTarget
	cmd := &cobra.Command{
		Use:   "annotate <script.yaml>",
		Short: "Replay recorded pointer input against a capture tool",
		Long: `Replays a YAML pointer-event script against one of the capture tools
(floor-rects, section-rects, boundaries, marker) and prints the result.

With --building or --parking the result is applied: rectangles and
boundaries are written into the entity's draft (saved, or written to --out),
marker drags are committed as marker positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			script, err := annotation.ParseScript(data)
			if err != nil {
				return err
			}
			if t.building != "" && t.parking != "" {
				return fmt.Errorf("--building and --parking are exclusive")
			}
			return runAnnotate(cmd, app, script, t)
		},
	}
	cmd.Flags().StringVar(&t.building, "building", "", "apply to this building")
	cmd.Flags().StringVar(&t.parking, "parking", "", "apply to this parking")
	cmd.Flags().IntVar(&t.floor, "floor", 0, "floor whose markers are dragged")
	cmd.Flags().IntVar(&t.section, "section", 0, "section (1-based) whose markers are dragged")
	cmd.Flags().StringVar(&t.out, "out", "", "write the updated draft here instead of saving")
	return cmd
}

func runAnnotate(cmd *cobra.Command, app *App, s *annotation.Script, t annotateTarget) error {
	ctx := cmd.Context()
	var opts annotation.ReplayOptions

	switch {
	case t.building != "":
		if err := prepareBuilding(ctx, app, s, t, &opts); err != nil {
			return err
		}
	case t.parking != "":
		if err := prepareParking(ctx, app, s, t, &opts); err != nil {
			return err
		}
	}

	outcome, err := app.Player.Run(ctx, s, opts)
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), outcome); err != nil {
		return err
	}
	if !outcome.Complete || s.Tool == annotation.KindMarker {
		return nil
	}

	switch {
	case t.building != "":
		return applyToBuilding(cmd, app, outcome, t)
	case t.parking != "":
		return applyToParking(cmd, app, outcome, t)
	}
	return nil
}

// prepareBuilding seeds the script from the stored building: floor list,
// unit count, existing rectangles and, for marker scripts, the markers.
func prepareBuilding(ctx context.Context, app *App, s *annotation.Script, t annotateTarget, opts *annotation.ReplayOptions) error {
	d, err := app.BuildingEditor.Draft(ctx, t.building)
	if err != nil {
		return err
	}
	switch s.Tool {
	case annotation.KindFloorRects:
		if len(s.Floors) == 0 {
			for n := 1; n <= d.TotalFloors(); n++ {
				s.Floors = append(s.Floors, n)
			}
		}
		if len(s.Initial) == 0 {
			s.Initial = d.FloorRects()
		}
	case annotation.KindBoundaries:
		if s.Units == 0 {
			s.Units = d.TotalFloors()
		}
	case annotation.KindMarker:
		b, err := app.Buildings.GetByID(ctx, t.building)
		if err != nil {
			return err
		}
		f, ok := b.Floor(t.floor)
		if !ok {
			return fmt.Errorf("building %s has no floor %d (use --floor)", b.ID, t.floor)
		}
		for i, a := range f.Apartments {
			opts.Markers = append(opts.Markers, annotation.Marker{ID: a.ID, Position: a.DotPosition, Index: i, Total: len(f.Apartments)})
		}
		opts.Commit = func(ctx context.Context, id string, p geometry.Point) error {
			return app.Buildings.UpdateApartmentDotPosition(ctx, b.ID, f.FloorNumber, id, p)
		}
	default:
		return fmt.Errorf("%s scripts cannot be applied to a building", s.Tool)
	}
	return nil
}

func prepareParking(ctx context.Context, app *App, s *annotation.Script, t annotateTarget, opts *annotation.ReplayOptions) error {
	switch s.Tool {
	case annotation.KindSectionRects:
		d, err := app.ParkingEditor.Draft(ctx, t.parking)
		if err != nil {
			return err
		}
		if len(s.Initial) == 0 {
			s.Initial = d.SectionRects()
		}
	case annotation.KindMarker:
		p, err := app.Parkings.GetByID(ctx, t.parking)
		if err != nil {
			return err
		}
		spaces := p.SpacesInSection(t.section - 1)
		if len(spaces) == 0 {
			return fmt.Errorf("parking %s has no spaces in section %d (use --section)", p.ID, t.section)
		}
		for i, sp := range spaces {
			opts.Markers = append(opts.Markers, annotation.Marker{ID: sp.ID, Position: sp.DotPosition, Index: i, Total: len(spaces)})
		}
		opts.Commit = func(ctx context.Context, id string, pt geometry.Point) error {
			return app.Parkings.UpdateSpaceDotPosition(ctx, p.ID, id, pt)
		}
	default:
		return fmt.Errorf("%s scripts cannot be applied to a parking", s.Tool)
	}
	return nil
}

func applyToBuilding(cmd *cobra.Command, app *App, o *annotation.Outcome, t annotateTarget) error {
	d, err := app.BuildingEditor.Draft(cmd.Context(), t.building)
	if err != nil {
		return err
	}
	switch o.Tool {
	case annotation.KindFloorRects:
		d = d.WithFloorRects(o.Rects)
	case annotation.KindBoundaries:
		d.FloorBoundsPercent = o.Boundaries
	}
	if t.out != "" {
		return writeDraft(t.out, d)
	}
	_, err = app.BuildingEditor.Save(cmd.Context(), d)
	return err
}

func applyToParking(cmd *cobra.Command, app *App, o *annotation.Outcome, t annotateTarget) error {
	d, err := app.ParkingEditor.Draft(cmd.Context(), t.parking)
	if err != nil {
		return err
	}
	d = d.WithSectionRects(o.Rects)
	if t.out != "" {
		return writeDraft(t.out, d)
	}
	_, err = app.ParkingEditor.Save(cmd.Context(), d)
	return err
}

func writeDraft(path string, d any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return printYAML(f, d)
}
