package overlay

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"plan-annotator/internal/geometry"
	"plan-annotator/internal/models"
)

// ============================================================
// Renderer
// ============================================================

// The overlay uses a 0..100 viewBox stretched over the image, so every
// stored percent value is drawn without conversion.

const dotRadius = 1.6

var statusColors = map[models.Status]string{
	models.StatusAvailable:     "#22c55e",
	models.StatusInNegotiation: "#f59e0b",
	models.StatusSold:          "#ef4444",
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Options tweak a single render.
type Options struct {
	// Live overrides the position of markers currently being dragged.
	Live map[string]geometry.Point
	// WithImage embeds the background image as an <image> element.
	WithImage bool
}

// Building draws the facade overlay: one button per floor, either the drawn
// rectangle or the floor's strip.
func (r *Renderer) Building(b models.Building, opts Options) (string, error) {
	if b.FloorCount < 1 {
		return "", fmt.Errorf("building %s has no floors", b.ID)
	}
	b = b.RecountAvailable()
	buttons := b.FloorButtons()

	var elements []string
	if opts.WithImage && b.ImageURL != "" {
		elements = append(elements, renderImage(b.ImageURL))
	}
	for _, f := range b.Floors {
		rect, ok := buttons[f.FloorNumber]
		if !ok {
			continue
		}
		label := fmt.Sprintf("Floor %d: %d available", f.FloorNumber, f.AvailableCount)
		elements = append(elements, renderButton("floor", strconv.Itoa(f.FloorNumber), rect, label))
	}
	return document(elements), nil
}

// Floor draws the apartment markers of one floor plan.
func (r *Renderer) Floor(b models.Building, floorNumber int, opts Options) (string, error) {
	f, ok := b.Floor(floorNumber)
	if !ok {
		return "", fmt.Errorf("building %s has no floor %d", b.ID, floorNumber)
	}

	var elements []string
	if opts.WithImage && f.FloorPlanImageURL != "" {
		elements = append(elements, renderImage(f.FloorPlanImageURL))
	}
	positions := f.DotPositions()
	for i, a := range f.Apartments {
		p := positions[i]
		if live, ok := opts.Live[a.ID]; ok {
			p = live
		}
		elements = append(elements, renderDot(a.ID, a.Label, a.Status, p))
	}
	return document(elements), nil
}

// Parking draws the overview with one button per section.
func (r *Renderer) Parking(p models.ParkingConfig, opts Options) (string, error) {
	var elements []string
	if opts.WithImage && p.OverviewImageURL != "" {
		elements = append(elements, renderImage(p.OverviewImageURL))
	}
	for i, s := range p.Sections {
		label := fmt.Sprintf("Section %d: %d of %d available", i+1, p.AvailableInSection(i), len(p.SpacesInSection(i)))
		elements = append(elements, renderButton("section", s.ID, s.Area, label))
	}
	return document(elements), nil
}

// Section draws the space markers of one section plan.
func (r *Renderer) Section(p models.ParkingConfig, index int, opts Options) (string, error) {
	s, ok := p.Section(index)
	if !ok {
		return "", fmt.Errorf("parking %s has no section %d", p.ID, index+1)
	}

	var elements []string
	if opts.WithImage && s.PlanImageURL != "" {
		elements = append(elements, renderImage(s.PlanImageURL))
	}
	for _, sp := range p.SpacesInSection(index) {
		pos, _ := p.DotPosition(sp.ID)
		if live, ok := opts.Live[sp.ID]; ok {
			pos = live
		}
		elements = append(elements, renderDot(sp.ID, sp.Label, sp.Status, pos))
	}
	return document(elements), nil
}

// ============================================================
// Element renderers
// ============================================================

func document(elements []string) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" preserveAspectRatio="none">`)
	builder.WriteString("\n")
	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}
	builder.WriteString(`</svg>`)
	return builder.String()
}

func renderImage(href string) string {
	return fmt.Sprintf(`<image href="%s" x="0" y="0" width="100" height="100" preserveAspectRatio="none"/>`, attr(href))
}

func renderButton(kind, id string, r geometry.AreaRect, label string) string {
	return fmt.Sprintf(`<rect class="%s" data-id="%s" x="%s" y="%s" width="%s" height="%s" fill="#3b82f6" fill-opacity="0.25" stroke="#1d4ed8" stroke-width="0.3"><title>%s</title></rect>`,
		kind, attr(id), formatFloat(r.X), formatFloat(r.Y), formatFloat(r.Width), formatFloat(r.Height), attr(label))
}

func renderDot(id, label string, status models.Status, p geometry.Point) string {
	color, ok := statusColors[status.Normalize()]
	if !ok {
		color = "#6b7280"
	}
	return fmt.Sprintf(`<circle class="unit" data-id="%s" data-status="%s" cx="%s" cy="%s" r="%s" fill="%s"><title>%s: %s</title></circle>`,
		attr(id), status.Normalize(), formatFloat(p.X), formatFloat(p.Y), formatFloat(dotRadius), color, attr(label), status.Label())
}

// ============================================================
// Formatting helpers
// ============================================================

func attr(s string) string {
	return html.EscapeString(s)
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
