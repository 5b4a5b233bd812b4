package annotation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"plan-annotator/internal/geometry"
)

// ============================================================
// Pointer-event scripts
// ============================================================

// Event is one recorded input. X/Y are client pixels relative to the page;
// they are mapped through Script.Image like a real pointer event.
type Event struct {
	Type        string  `yaml:"type"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Marker      string  `yaml:"marker,omitempty"`
	FromControl bool    `yaml:"fromControl,omitempty"`
}

// Script drives one tool instance from recorded input.
type Script struct {
	Tool    string                    `yaml:"tool"`
	Floors  []int                     `yaml:"floors,omitempty"`
	Units   int                       `yaml:"units,omitempty"`
	Image   geometry.Bounds           `yaml:"image"`
	Initial map[int]geometry.AreaRect `yaml:"initial,omitempty"`
	Events  []Event                   `yaml:"events"`
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if s.Image.Width <= 0 || s.Image.Height <= 0 {
		return nil, fmt.Errorf("script image bounds must have a positive size")
	}
	return &s, nil
}

// Outcome is what a replay produced.
type Outcome struct {
	Tool       string                    `json:"tool"`
	Complete   bool                      `json:"complete"`
	Rects      map[int]geometry.AreaRect `json:"rects,omitempty"`
	Boundaries geometry.BoundaryList     `json:"boundaries,omitempty"`
	Placed     []float64                 `json:"placed,omitempty"`
	Moved      map[string]geometry.Point `json:"moved,omitempty"`
}

// ReplayOptions carries what marker scripts need from the caller.
type ReplayOptions struct {
	Markers []Marker
	Commit  CommitFunc
}

// Player runs scripts, each inside its own session.
type Player struct {
	sessions *Sessions
	logger   *zap.Logger
}

func NewPlayer(sessions *Sessions, logger *zap.Logger) *Player {
	return &Player{sessions: sessions, logger: logger}
}

// Run replays s and returns the resulting geometry.
func (p *Player) Run(ctx context.Context, s *Script, opts ReplayOptions) (*Outcome, error) {
	switch s.Tool {
	case KindFloorRects:
		return p.runRects(NewFloorRectTool(s.Floors, s.Initial), s)
	case KindSectionRects:
		return p.runRects(NewSectionRectTool(s.Initial), s)
	case KindBoundaries:
		return p.runBoundaries(s)
	case KindMarker:
		return p.runMarker(ctx, s, opts)
	default:
		return nil, fmt.Errorf("%w: unknown tool %q", ErrInvalidAction, s.Tool)
	}
}

func (p *Player) runRects(tool *RectTool, s *Script) (*Outcome, error) {
	id := p.sessions.Open(tool)
	defer p.sessions.Close(id)

	out := &Outcome{Tool: s.Tool}
	for i, ev := range s.Events {
		pt := geometry.PointFromPointer(ev.X, ev.Y, s.Image)
		var err error
		switch ev.Type {
		case "down":
			tool.PointerDown(pt)
		case "move":
			tool.PointerMove(pt)
		case "up":
			tool.PointerUp()
		case "leave":
			tool.PointerLeave()
		case "next":
			err = tool.Next()
		case "add":
			err = tool.AddAnother()
		case "back":
			tool.Back()
		case "redraw":
			tool.RedrawCurrent()
		case "done":
			_, err = tool.Done()
		default:
			err = fmt.Errorf("%w: %q", ErrInvalidAction, ev.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
		}
		p.logger.Debug("rect event",
			zap.String("session", id),
			zap.String("type", ev.Type),
			zap.Int("unit", tool.Current()),
		)
	}

	out.Rects = tool.Result()
	out.Complete = tool.Completed()
	return out, nil
}

func (p *Player) runBoundaries(s *Script) (*Outcome, error) {
	tool := NewBoundaryTool(s.Units)
	id := p.sessions.Open(tool)
	defer p.sessions.Close(id)

	out := &Outcome{Tool: s.Tool}
	for i, ev := range s.Events {
		switch ev.Type {
		case "click":
			if !tool.Click(ev.Y, s.Image) {
				p.logger.Debug("boundary click ignored", zap.String("session", id), zap.Int("event", i))
			}
		case "reset":
			tool.Reset()
		case "done":
			bounds, err := tool.Done()
			if err != nil {
				return nil, fmt.Errorf("event %d (done): %w", i, err)
			}
			out.Boundaries = bounds
			out.Complete = true
		default:
			return nil, fmt.Errorf("event %d: %w: %q", i, ErrInvalidAction, ev.Type)
		}
	}
	out.Placed = tool.Placed()
	return out, nil
}

func (p *Player) runMarker(ctx context.Context, s *Script, opts ReplayOptions) (*Outcome, error) {
	out := &Outcome{Tool: s.Tool, Moved: make(map[string]geometry.Point)}
	byID := make(map[string]Marker, len(opts.Markers))
	for _, m := range opts.Markers {
		byID[m.ID] = m
	}

	tool := NewMarkerDrag(func(ctx context.Context, markerID string, pt geometry.Point) error {
		out.Moved[markerID] = pt
		if opts.Commit == nil {
			return nil
		}
		return opts.Commit(ctx, markerID, pt)
	})
	id := p.sessions.Open(tool)
	defer p.sessions.Close(id)

	for i, ev := range s.Events {
		switch ev.Type {
		case "down":
			m, ok := byID[ev.Marker]
			if !ok {
				return nil, fmt.Errorf("event %d: unknown marker %q", i, ev.Marker)
			}
			tool.PointerDown(m, ev.FromControl)
		case "move":
			tool.PointerMove(geometry.PointFromPointer(ev.X, ev.Y, s.Image))
		case "up":
			if err := tool.PointerUp(ctx); err != nil {
				return nil, fmt.Errorf("event %d (up): %w", i, err)
			}
		default:
			return nil, fmt.Errorf("event %d: %w: %q", i, ErrInvalidAction, ev.Type)
		}
	}
	_, dragging := tool.Dragging()
	out.Complete = !dragging
	return out, nil
}
