package reader

import "errors"

// InputController routes key presses and pointer events to the session.
// Every handler reads the current mode through the ModeController, so no
// state is captured when events are bound.
type InputController struct {
	s      *Session
	keymap *Keymap
	closed bool
}

// Keymap returns the active key bindings.
func (in *InputController) Keymap() *Keymap { return in.keymap }

// HandleKey resolves k and dispatches its action. It reports whether the
// key was consumed.
func (in *InputController) HandleKey(k KeyPress) bool {
	if in.closed {
		return false
	}
	a, ok := in.keymap.Lookup(k)
	if !ok {
		return false
	}
	return in.Dispatch(a)
}

// Dispatch runs a against the current state. Actions that do not apply to
// the current mode are ignored and reported as not handled.
func (in *InputController) Dispatch(a Action) bool {
	if in.closed {
		return false
	}
	s := in.s
	c := s.controller
	mode := c.Mode()
	s.Touch()

	switch a {
	case ActionEscape:
		c.Escape()
	case ActionNext:
		if !mode.IsPaged() {
			return false
		}
		c.Next()
	case ActionPrevious:
		if !mode.IsPaged() {
			return false
		}
		c.Prev()
	case ActionNextChapter:
		return in.chapterResult(s.navigator.NextChapter())
	case ActionPrevChapter:
		return in.chapterResult(s.navigator.PrevChapter())
	case ActionToggleSpread:
		if mode == ModeGrid {
			return false
		}
		c.ToggleSpread()
	case ActionToggleScroll:
		c.ToggleScroll()
	case ActionSingle:
		c.SetMode(ModeSingle)
	case ActionToggleDirection:
		s.ToggleDirection()
	case ActionJumpFirst:
		s.JumpTo(0)
	case ActionJumpLast:
		s.JumpTo(c.Len() - 1)
	case ActionScrollUp, ActionScrollDown, ActionPageUp, ActionPageDown:
		return in.scroll(a, mode)
	case ActionPanLeft, ActionPanRight:
		if !mode.IsPaged() {
			return false
		}
		dx := panStep
		if a == ActionPanRight {
			dx = -panStep
		}
		s.transform.PanBy(dx, 0)
	case ActionZoomIn, ActionZoomOut, ActionZoomReset, ActionZoomFit:
		if !mode.IsPaged() {
			return false
		}
		in.zoom(a)
	case ActionSetCover:
		if mode == ModeGrid {
			return false
		}
		s.SetCover()
	default:
		return false
	}
	return true
}

func (in *InputController) chapterResult(err error) bool {
	// Errors here are no-ops the navigator already reported.
	return !errors.Is(err, ErrNoChapters)
}

func (in *InputController) scroll(a Action, mode Mode) bool {
	s := in.s
	step := scrollStep
	if a == ActionPageUp || a == ActionPageDown {
		step = s.viewH * 0.9
	}
	if a == ActionScrollUp || a == ActionPageUp {
		step = -step
	}
	switch mode {
	case ModeScroll, ModeGrid:
		s.ScrollBy(step)
	default:
		if s.transform.Mode() != ZoomManual {
			return false
		}
		s.transform.PanBy(0, -step)
	}
	return true
}

func (in *InputController) zoom(a Action) {
	t := &in.s.transform
	switch a {
	case ActionZoomIn:
		t.ZoomIn()
	case ActionZoomOut:
		t.ZoomOut()
	case ActionZoomReset:
		t.ZoomActual()
	case ActionZoomFit:
		t.Reset()
	}
}

// Click handles a primary click at viewport coordinates (x, y).
//
// In Grid and Scroll mode the image under the pointer opens in Single.
// Clicking the next-chapter tile at the end of the strip switches chapter.
// In paged modes the viewport is split in half: the right half advances and
// the left half retreats.
func (in *InputController) Click(x, y float64) bool {
	if in.closed {
		return false
	}
	s := in.s
	c := s.controller
	s.Touch()

	switch c.Mode() {
	case ModeGrid:
		i := s.GridLayout().IndexAt(x, y+s.grid.Offset)
		if i < 0 {
			return false
		}
		c.ImageClicked(i)
	case ModeScroll:
		cy := y + s.strip.Offset
		if top, h := s.loader.EndMarker(); h > 0 && cy >= top && cy < top+h {
			_ = s.navigator.NextChapter()
			return true
		}
		i := s.loader.IndexAt(cy)
		if i < 0 {
			return false
		}
		c.ImageClicked(i)
	default:
		if s.viewW <= 0 {
			return false
		}
		if x >= s.viewW/2 {
			c.Next()
		} else {
			c.Prev()
		}
	}
	return true
}

// Wheel scrolls Grid and Scroll mode by dy notches. In paged modes a wheel
// turn pans a zoomed page, or pages when the page fits.
func (in *InputController) Wheel(dy float64) bool {
	if in.closed || dy == 0 {
		return false
	}
	s := in.s
	s.Touch()
	switch s.controller.Mode() {
	case ModeGrid, ModeScroll:
		s.ScrollBy(-dy * scrollStep)
	default:
		if s.transform.Mode() == ZoomManual {
			s.transform.PanBy(0, dy*scrollStep)
			break
		}
		if dy < 0 {
			s.controller.Next()
		} else {
			s.controller.Prev()
		}
	}
	return true
}

// Drag pans a zoomed page or scrolls the strip by the pointer delta.
func (in *InputController) Drag(dx, dy float64) bool {
	if in.closed {
		return false
	}
	s := in.s
	switch s.controller.Mode() {
	case ModeGrid, ModeScroll:
		s.ScrollBy(-dy)
	default:
		if s.transform.Mode() != ZoomManual {
			return false
		}
		s.transform.PanBy(dx, dy)
	}
	return true
}

// Close detaches the controller; later events are ignored.
func (in *InputController) Close() { in.closed = true }
