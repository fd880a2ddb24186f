package reader

import "math"

// ZoomMode selects how the displayed page is scaled.
type ZoomMode int

const (
	ZoomFit ZoomMode = iota
	ZoomManual
)

const (
	zoomStep = 1.25
	minZoom  = 0.1
	maxZoom  = 10.0
	panStep  = 50.0
)

type transformKey struct {
	index  int
	spread bool
}

// TransformView is the zoom and pan state of the page(s) on screen. It lives
// for one (index, spread) combination and resets to identity when either
// changes.
type TransformView struct {
	key   transformKey
	mode  ZoomMode
	scale float64
	fit   float64
	panX  float64
	panY  float64
}

// Sync binds the view to the displayed index and spread flag, resetting it
// when they differ from the last call.
func (t *TransformView) Sync(index int, spread bool) {
	k := transformKey{index: index, spread: spread}
	if k == t.key {
		return
	}
	t.key = k
	t.Reset()
}

// Reset returns to fit-to-window with no pan.
func (t *TransformView) Reset() {
	t.mode = ZoomFit
	t.scale = 0
	t.panX, t.panY = 0, 0
}

func (t *TransformView) Mode() ZoomMode                { return t.mode }
func (t *TransformView) Pan() (x, y float64)           { return t.panX, t.panY }
func (t *TransformView) IsIdentity() bool              { return t.mode == ZoomFit && t.panX == 0 && t.panY == 0 }
func (t *TransformView) Key() (index int, spread bool) { return t.key.index, t.key.spread }

// Scale returns the effective scale given the fit-to-window scale.
func (t *TransformView) Scale(fit float64) float64 {
	if t.mode == ZoomFit || t.scale <= 0 {
		return fit
	}
	return t.scale
}

// ZoomIn multiplies the scale by one step, starting from the last fit scale
// computed by Placement.
func (t *TransformView) ZoomIn() { t.zoom(t.Scale(t.lastFit()) * zoomStep) }

// ZoomOut divides the scale by one step.
func (t *TransformView) ZoomOut() { t.zoom(t.Scale(t.lastFit()) / zoomStep) }

func (t *TransformView) lastFit() float64 {
	if t.fit <= 0 {
		return 1
	}
	return t.fit
}

// ZoomActual shows the page at 100%.
func (t *TransformView) ZoomActual() { t.zoom(1) }

func (t *TransformView) zoom(s float64) {
	t.mode = ZoomManual
	t.scale = math.Max(minZoom, math.Min(maxZoom, s))
}

// PanBy moves the page by the given delta. Panning only applies to manual
// zoom.
func (t *TransformView) PanBy(dx, dy float64) {
	if t.mode != ZoomManual {
		return
	}
	t.panX += dx
	t.panY += dy
}

// Placement computes scale and top-left offset for content of size (cw, ch)
// in a (vw, vh) viewport. Content smaller than the viewport is centred;
// larger content is panned and clamped so it always covers the viewport.
// The stored pan is clamped to what was applied.
func (t *TransformView) Placement(cw, ch, vw, vh float64) (scale, x, y float64) {
	if cw <= 0 || ch <= 0 {
		return 1, 0, 0
	}
	t.fit = math.Min(vw/cw, vh/ch)
	scale = t.Scale(t.fit)
	sw, sh := cw*scale, ch*scale

	x, t.panX = placeAxis(sw, vw, t.panX)
	y, t.panY = placeAxis(sh, vh, t.panY)
	return scale, x, y
}

func placeAxis(size, view, pan float64) (offset, applied float64) {
	centred := view/2 - size/2
	if size <= view {
		return centred, 0
	}
	offset = math.Max(view-size, math.Min(0, centred+pan))
	return offset, offset - centred
}
