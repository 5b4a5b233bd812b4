package annotation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-annotator/internal/geometry"
)

type commitRecorder struct {
	calls map[string]geometry.Point
	err   error
}

func (c *commitRecorder) commit(_ context.Context, id string, p geometry.Point) error {
	if c.err != nil {
		return c.err
	}
	if c.calls == nil {
		c.calls = make(map[string]geometry.Point)
	}
	c.calls[id] = p
	return nil
}

func TestMarkerDrag(t *testing.T) {
	ctx := context.Background()
	stored := &geometry.Point{X: 20, Y: 20}
	a := Marker{ID: "a", Position: stored, Index: 0, Total: 2}
	b := Marker{ID: "b", Index: 1, Total: 2}

	t.Run("drag commits the final position", func(t *testing.T) {
		rec := &commitRecorder{}
		d := NewMarkerDrag(rec.commit)

		require.True(t, d.PointerDown(a, false))
		assert.Equal(t, geometry.Point{X: 20, Y: 20}, d.Position(a))

		d.PointerMove(geometry.Point{X: 70, Y: 35})
		assert.Equal(t, geometry.Point{X: 70, Y: 35}, d.Position(a))
		assert.Equal(t, geometry.DefaultDotPosition(1, 2), d.Position(b), "other markers render from stored data")

		require.NoError(t, d.PointerUp(ctx))
		assert.Equal(t, geometry.Point{X: 70, Y: 35}, rec.calls["a"])
		_, dragging := d.Dragging()
		assert.False(t, dragging)
		assert.Equal(t, *stored, d.Position(a))
	})

	t.Run("default position seeds the drag", func(t *testing.T) {
		rec := &commitRecorder{}
		d := NewMarkerDrag(rec.commit)
		d.PointerDown(b, false)
		require.NoError(t, d.PointerUp(ctx))
		assert.Equal(t, geometry.DefaultDotPosition(1, 2), rec.calls["b"])
	})

	t.Run("press from a status control is ignored", func(t *testing.T) {
		d := NewMarkerDrag(nil)
		assert.False(t, d.PointerDown(a, true))
		_, dragging := d.Dragging()
		assert.False(t, dragging)
	})

	t.Run("only one marker at a time", func(t *testing.T) {
		rec := &commitRecorder{}
		d := NewMarkerDrag(rec.commit)
		require.True(t, d.PointerDown(a, false))
		assert.False(t, d.PointerDown(b, false))
		id, _ := d.Dragging()
		assert.Equal(t, "a", id)
	})

	t.Run("moves are clamped and up without drag is a no-op", func(t *testing.T) {
		rec := &commitRecorder{}
		d := NewMarkerDrag(rec.commit)
		require.NoError(t, d.PointerUp(ctx))
		assert.Empty(t, rec.calls)

		d.PointerDown(a, false)
		d.PointerMove(geometry.Point{X: 140, Y: -5})
		require.NoError(t, d.PointerUp(ctx))
		assert.Equal(t, geometry.Point{X: 100, Y: 0}, rec.calls["a"])
	})

	t.Run("commit errors are returned and the drag ends", func(t *testing.T) {
		rec := &commitRecorder{err: errors.New("boom")}
		d := NewMarkerDrag(rec.commit)
		d.PointerDown(a, false)
		assert.Error(t, d.PointerUp(ctx))
		_, dragging := d.Dragging()
		assert.False(t, dragging)
	})
}

func TestSessionsAreIndependent(t *testing.T) {
	s := NewSessions()
	first := NewMarkerDrag(nil)
	second := NewMarkerDrag(nil)
	id1 := s.Open(first)
	id2 := s.Open(second)
	require.NotEqual(t, id1, id2)
	assert.Equal(t, 2, s.Len())

	first.PointerDown(Marker{ID: "x", Total: 1}, false)
	_, dragging := second.Dragging()
	assert.False(t, dragging)

	got, ok := s.Get(id1)
	require.True(t, ok)
	assert.Equal(t, KindMarker, got.Kind())

	s.Close(id1)
	_, dragging = first.Dragging()
	assert.False(t, dragging, "closing a session discards its drag")
	_, ok = s.Get(id1)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}
