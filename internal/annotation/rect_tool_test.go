package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-annotator/internal/geometry"
)

func drag(t *RectTool, from, to geometry.Point) bool {
	t.PointerDown(from)
	t.PointerMove(to)
	return t.PointerUp()
}

func TestFloorRectTool(t *testing.T) {
	t.Run("advances and completes on last floor", func(t *testing.T) {
		tool := NewFloorRectTool([]int{1, 2, 3}, nil)
		assert.Equal(t, 1, tool.Current())

		assert.False(t, drag(tool, geometry.Point{X: 10, Y: 80}, geometry.Point{X: 90, Y: 95}))
		assert.Equal(t, 2, tool.Current())
		assert.False(t, drag(tool, geometry.Point{X: 10, Y: 50}, geometry.Point{X: 90, Y: 70}))
		assert.Equal(t, 3, tool.Current())
		assert.True(t, drag(tool, geometry.Point{X: 10, Y: 10}, geometry.Point{X: 90, Y: 40}))

		assert.True(t, tool.Completed())
		got, err := tool.Done()
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, geometry.AreaRect{X: 10, Y: 80, Width: 80, Height: 15}, got[1])
	})

	t.Run("move without press is ignored", func(t *testing.T) {
		tool := NewFloorRectTool([]int{1, 2}, nil)
		tool.PointerMove(geometry.Point{X: 50, Y: 50})
		assert.False(t, tool.PointerUp())
		assert.False(t, tool.Has(1))
	})

	t.Run("leave without move commits minimum rectangle", func(t *testing.T) {
		tool := NewFloorRectTool([]int{1, 2}, nil)
		tool.PointerDown(geometry.Point{X: 40, Y: 40})
		tool.PointerLeave()
		got := tool.Result()
		assert.Equal(t, geometry.AreaRect{X: 40, Y: 40, Width: 2, Height: 2}, got[1])
		assert.Equal(t, 2, tool.Current())
	})

	t.Run("preview follows the drag", func(t *testing.T) {
		tool := NewFloorRectTool([]int{1}, nil)
		_, ok := tool.Preview()
		assert.False(t, ok)
		tool.PointerDown(geometry.Point{X: 30, Y: 30})
		tool.PointerMove(geometry.Point{X: 10, Y: 60})
		r, ok := tool.Preview()
		require.True(t, ok)
		assert.Equal(t, geometry.AreaRect{X: 10, Y: 30, Width: 20, Height: 30}, r)
	})

	t.Run("back is clamped and redraw clears", func(t *testing.T) {
		tool := NewFloorRectTool([]int{1, 2}, nil)
		tool.Back()
		assert.Equal(t, 1, tool.Current())

		drag(tool, geometry.Point{X: 1, Y: 1}, geometry.Point{X: 20, Y: 20})
		tool.Back()
		assert.Equal(t, 1, tool.Current())
		tool.RedrawCurrent()
		assert.False(t, tool.Has(1))

		_, err := tool.Done()
		assert.ErrorIs(t, err, ErrIncomplete)
	})

	t.Run("edit mode pre-seeds and ignores unknown floors", func(t *testing.T) {
		initial := map[int]geometry.AreaRect{
			1: {X: 0, Y: 50, Width: 100, Height: 50},
			2: {X: 0, Y: 0, Width: 100, Height: 50},
			7: {X: 5, Y: 5, Width: 5, Height: 5},
		}
		tool := NewFloorRectTool([]int{1, 2}, initial)
		got, err := tool.Done()
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.NotContains(t, got, 7)
	})

	t.Run("next requires a rectangle", func(t *testing.T) {
		tool := NewFloorRectTool([]int{1, 2}, map[int]geometry.AreaRect{1: {Width: 2, Height: 2}})
		require.NoError(t, tool.Next())
		assert.Equal(t, 2, tool.Current())
		assert.ErrorIs(t, tool.Next(), ErrIncomplete)
		assert.ErrorIs(t, tool.AddAnother(), ErrInvalidAction)
	})
}

func TestSectionRectTool(t *testing.T) {
	t.Run("cursor only advances on add", func(t *testing.T) {
		tool := NewSectionRectTool(nil)
		assert.Equal(t, 1, tool.Current())

		_, err := tool.Done()
		assert.ErrorIs(t, err, ErrIncomplete)
		assert.ErrorIs(t, tool.AddAnother(), ErrIncomplete)

		drag(tool, geometry.Point{X: 10, Y: 10}, geometry.Point{X: 40, Y: 40})
		assert.Equal(t, 1, tool.Current())
		drag(tool, geometry.Point{X: 20, Y: 20}, geometry.Point{X: 50, Y: 50})
		assert.Equal(t, geometry.AreaRect{X: 20, Y: 20, Width: 30, Height: 30}, tool.Result()[1])

		require.NoError(t, tool.AddAnother())
		assert.Equal(t, 2, tool.Current())
		assert.False(t, tool.Completed())

		got, err := tool.Done()
		require.NoError(t, err)
		assert.Len(t, got, 1, "an undrawn section is never emitted")
		assert.True(t, tool.Completed())
	})

	t.Run("pre-seeded sections put the cursor after the last", func(t *testing.T) {
		tool := NewSectionRectTool(map[int]geometry.AreaRect{
			1: {X: 1, Y: 1, Width: 10, Height: 10},
			3: {X: 50, Y: 50, Width: 10, Height: 10},
		})
		assert.Equal(t, 4, tool.Current())
		assert.Equal(t, []int{1, 3}, tool.Units())

		tool.Back()
		tool.Back()
		tool.Back()
		tool.Back()
		assert.Equal(t, 1, tool.Current())
		assert.ErrorIs(t, tool.Next(), ErrInvalidAction)
	})
}
