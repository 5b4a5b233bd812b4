package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"plan-annotator/internal/models"
)

// ============================================================
// Availability summary
// ============================================================

type Row struct {
	Kind          string
	Entity        string
	Unit          string
	Available     int
	InNegotiation int
	Sold          int
}

func (r Row) Total() int { return r.Available + r.InNegotiation + r.Sold }

func (r *Row) count(s models.Status) {
	switch s.Normalize() {
	case models.StatusAvailable:
		r.Available++
	case models.StatusInNegotiation:
		r.InNegotiation++
	case models.StatusSold:
		r.Sold++
	}
}

// Summarize returns one row per building floor and per parking section, in
// stored order.
func Summarize(buildings []models.Building, parkings []models.ParkingConfig) []Row {
	var rows []Row
	for _, b := range buildings {
		for _, f := range b.Floors {
			row := Row{Kind: "building", Entity: b.Name, Unit: fmt.Sprintf("Floor %d", f.FloorNumber)}
			for _, a := range f.Apartments {
				row.count(a.Status)
			}
			rows = append(rows, row)
		}
	}
	for _, p := range parkings {
		for i := range p.Sections {
			row := Row{Kind: "parking", Entity: p.Name, Unit: fmt.Sprintf("Section %d", i+1)}
			for _, sp := range p.SpacesInSection(i) {
				row.count(sp.Status)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

var header = []string{"Kind", "Name", "Unit", "Available", "In negotiation", "Sold", "Total"}

func (r Row) values() []any {
	return []any{r.Kind, r.Entity, r.Unit, r.Available, r.InNegotiation, r.Sold, r.Total()}
}

// WriteTable prints rows as an aligned text table.
func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n", r.Kind, r.Entity, r.Unit, r.Available, r.InNegotiation, r.Sold, r.Total())
	}
	return tw.Flush()
}
