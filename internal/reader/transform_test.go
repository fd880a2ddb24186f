package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformFitCentres(t *testing.T) {
	var tv TransformView
	scale, x, y := tv.Placement(1000, 500, 800, 600)
	assert.InDelta(t, 0.8, scale, 1e-9)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)
	assert.True(t, tv.IsIdentity())
}

func TestTransformPanIsClamped(t *testing.T) {
	var tv TransformView
	tv.Placement(1000, 500, 800, 600)
	tv.ZoomIn()
	assert.Equal(t, ZoomManual, tv.Mode())

	scale, x, y := tv.Placement(1000, 500, 800, 600)
	assert.InDelta(t, 1.0, scale, 1e-9)
	assert.InDelta(t, -100, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)

	tv.PanBy(500, 40)
	_, x, y = tv.Placement(1000, 500, 800, 600)
	assert.InDelta(t, 0, x, 1e-9, "left edge stays on screen")
	assert.InDelta(t, 50, y, 1e-9, "content shorter than the viewport stays centred")
	px, py := tv.Pan()
	assert.InDelta(t, 100, px, 1e-9)
	assert.Zero(t, py)
}

func TestTransformResetsOnNavigation(t *testing.T) {
	var tv TransformView
	tv.Sync(0, false)
	tv.ZoomActual()
	tv.PanBy(10, 10)
	tv.Sync(0, false)
	assert.False(t, tv.IsIdentity(), "same page keeps its transform")

	tv.Sync(1, false)
	assert.True(t, tv.IsIdentity())

	tv.ZoomIn()
	tv.Sync(1, true)
	assert.True(t, tv.IsIdentity(), "toggling spread resets")
	idx, spread := tv.Key()
	assert.Equal(t, 1, idx)
	assert.True(t, spread)
}

func TestTransformZoomLimits(t *testing.T) {
	var tv TransformView
	for i := 0; i < 50; i++ {
		tv.ZoomOut()
	}
	assert.InDelta(t, minZoom, tv.Scale(1), 1e-9)
	for i := 0; i < 50; i++ {
		tv.ZoomIn()
	}
	assert.InDelta(t, maxZoom, tv.Scale(1), 1e-9)
}

func TestTransformPanNeedsManualZoom(t *testing.T) {
	var tv TransformView
	tv.PanBy(20, 20)
	assert.True(t, tv.IsIdentity())
}
