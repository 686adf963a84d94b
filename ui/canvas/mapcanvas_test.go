package canvas

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"tripmap/internal/app"
	"tripmap/pkg/geometry"
)

func TestDraggedAppliesFirstDelta(t *testing.T) {
	test.NewApp()
	defer test.NewApp()

	mc := NewMapCanvas(app.NewState(nil))

	// A drag gesture begins with an event that already carries movement.
	mc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(110, 95)},
		Dragged:    fyne.Delta{DX: 10, DY: -5},
	})
	mc.DragEnd()

	origin := mc.Viewport().ToScreen(geometry.Point2D{})
	assert.InDelta(t, 10, origin.X, 1e-9)
	assert.InDelta(t, -5, origin.Y, 1e-9)
}

func TestDraggedAccumulatesDeltas(t *testing.T) {
	test.NewApp()
	defer test.NewApp()

	mc := NewMapCanvas(app.NewState(nil))

	mc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(50, 50)},
		Dragged:    fyne.Delta{DX: 4, DY: 2},
	})
	mc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(56, 53)},
		Dragged:    fyne.Delta{DX: 6, DY: 3},
	})
	mc.DragEnd()

	origin := mc.Viewport().ToScreen(geometry.Point2D{})
	assert.InDelta(t, 10, origin.X, 1e-9)
	assert.InDelta(t, 5, origin.Y, 1e-9)
	assert.False(t, mc.Viewport().Dragging())
}
