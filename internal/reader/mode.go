package reader

import "strings"

// Mode is a viewing strategy.
type Mode int

const (
	ModeGrid Mode = iota
	ModeScroll
	ModeSingle
	ModeSpread
)

var modeNames = map[Mode]string{
	ModeGrid:   "grid",
	ModeScroll: "scroll",
	ModeSingle: "single",
	ModeSpread: "spread",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode accepts the names produced by String.
func ParseMode(s string) (Mode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, true
		}
	}
	return ModeGrid, false
}

// IsPaged reports whether m shows pages one step at a time.
func (m Mode) IsPaged() bool {
	return m == ModeSingle || m == ModeSpread
}

// ViewState is the reader's position. Spread is true exactly when Mode is
// ModeSpread.
type ViewState struct {
	Mode   Mode
	Index  int
	Spread bool
}

// Step is the outcome of a next/previous request.
type Step int

const (
	StepMoved Step = iota
	StepNone
	StepBoundary // advanced past the last page
)

// ModeController owns the view state and the image sequence. Every other
// component reads through its accessors and mutates only through its methods.
type ModeController struct {
	images []string
	state  ViewState

	indexSubs  map[int]func(int)
	modeSubs   map[int]func(ViewState)
	nextSub    int
	onExit     func()
	onBoundary func()
}

// NewModeController opens a sequence at initial. A positive initial index
// opens in the given reading mode (Single when reading is not paged or
// scrolling), otherwise the controller starts in Grid at index 0.
func NewModeController(images []string, initial int, reading Mode) *ModeController {
	c := &ModeController{
		images:    images,
		indexSubs: make(map[int]func(int)),
		modeSubs:  make(map[int]func(ViewState)),
	}
	if initial > 0 && len(images) > 0 {
		if reading != ModeScroll && !reading.IsPaged() {
			reading = ModeSingle
		}
		c.state = ViewState{Mode: reading, Index: c.clamp(initial), Spread: reading == ModeSpread}
	}
	return c
}

// OnExit sets the handler invoked when Grid receives an escape.
func (c *ModeController) OnExit(fn func()) { c.onExit = fn }

// OnBoundary sets the handler invoked when a paged advance runs past the
// final page.
func (c *ModeController) OnBoundary(fn func()) { c.onBoundary = fn }

// SubscribeIndex registers fn for index changes and returns an unsubscribe
// function.
func (c *ModeController) SubscribeIndex(fn func(index int)) func() {
	c.nextSub++
	id := c.nextSub
	c.indexSubs[id] = fn
	return func() { delete(c.indexSubs, id) }
}

// SubscribeMode registers fn for mode and spread changes.
func (c *ModeController) SubscribeMode(fn func(ViewState)) func() {
	c.nextSub++
	id := c.nextSub
	c.modeSubs[id] = fn
	return func() { delete(c.modeSubs, id) }
}

func (c *ModeController) State() ViewState { return c.state }
func (c *ModeController) Mode() Mode       { return c.state.Mode }
func (c *ModeController) Index() int       { return c.state.Index }
func (c *ModeController) Len() int         { return len(c.images) }

// Images returns the current sequence. Callers must not modify it.
func (c *ModeController) Images() []string { return c.images }

// Image returns the filename at i, or "" when out of range.
func (c *ModeController) Image(i int) string {
	if i < 0 || i >= len(c.images) {
		return ""
	}
	return c.images[i]
}

func (c *ModeController) clamp(i int) int {
	if len(c.images) == 0 || i < 0 {
		return 0
	}
	if i >= len(c.images) {
		return len(c.images) - 1
	}
	return i
}

// SetIndex moves to i, clamped into the sequence.
func (c *ModeController) SetIndex(i int) {
	i = c.clamp(i)
	if i == c.state.Index {
		return
	}
	c.state.Index = i
	for _, fn := range c.indexSubs {
		fn(i)
	}
}

// SetMode switches strategy, keeping the current index.
func (c *ModeController) SetMode(m Mode) {
	if m == c.state.Mode {
		return
	}
	c.state.Mode = m
	c.state.Spread = m == ModeSpread
	c.notifyMode()
}

// ToggleSpread flips between Single and Spread. Outside paged modes it
// enters Spread directly.
func (c *ModeController) ToggleSpread() {
	if c.state.Mode == ModeSpread {
		c.SetMode(ModeSingle)
		return
	}
	c.SetMode(ModeSpread)
}

// ToggleScroll switches directly between Scroll and Grid. From a paged mode
// it goes to Scroll.
func (c *ModeController) ToggleScroll() {
	if c.state.Mode == ModeScroll {
		c.SetMode(ModeGrid)
		return
	}
	c.SetMode(ModeScroll)
}

// ImageClicked opens image i in Single mode from Grid or Scroll.
func (c *ModeController) ImageClicked(i int) {
	if c.state.Mode != ModeGrid && c.state.Mode != ModeScroll {
		return
	}
	c.SetIndex(i)
	c.SetMode(ModeSingle)
}

// Escape returns to Grid, or exits the session when already there.
func (c *ModeController) Escape() {
	if c.state.Mode == ModeGrid {
		c.Exit()
		return
	}
	c.SetMode(ModeGrid)
}

// Exit delegates to the caller's exit handler.
func (c *ModeController) Exit() {
	if c.onExit != nil {
		c.onExit()
	}
}

// Replace swaps the whole sequence and resets the index to 0.
func (c *ModeController) Replace(images []string) {
	c.images = images
	if c.state.Index == 0 {
		return
	}
	c.state.Index = 0
	for _, fn := range c.indexSubs {
		fn(0)
	}
}

// DisplayRange returns the first and last index shown by the current
// strategy. Spread shows index 0 solo and pairs [k, k+1] afterwards.
func (c *ModeController) DisplayRange() (first, last int) {
	k := c.state.Index
	if c.state.Mode != ModeSpread {
		return k, k
	}
	return spreadRange(k, len(c.images))
}

// Next advances one page, or one spread in Spread mode. Advancing past the
// final page leaves the index unchanged and fires the boundary handler.
// Next is ignored outside paged modes.
func (c *ModeController) Next() Step {
	if !c.state.Mode.IsPaged() {
		return StepNone
	}
	target := c.state.Index + 1
	if c.state.Mode == ModeSpread {
		target = spreadNext(c.state.Index)
	}
	if target >= len(c.images) {
		if c.onBoundary != nil {
			c.onBoundary()
		}
		return StepBoundary
	}
	c.SetIndex(target)
	return StepMoved
}

// Prev retreats one page, or one spread in Spread mode.
func (c *ModeController) Prev() Step {
	if !c.state.Mode.IsPaged() || len(c.images) == 0 || c.state.Index == 0 {
		return StepNone
	}
	target := c.state.Index - 1
	if c.state.Mode == ModeSpread {
		target = spreadPrev(c.state.Index)
	}
	c.SetIndex(target)
	return StepMoved
}

func (c *ModeController) notifyMode() {
	for _, fn := range c.modeSubs {
		fn(c.state)
	}
}

func spreadRange(k, n int) (int, int) {
	if k == 0 || k+1 >= n {
		return k, k
	}
	return k, k + 1
}

func spreadNext(k int) int {
	if k == 0 {
		return 1
	}
	return k + 2
}

// spreadPrev keeps the cover solo: 1 and 2 both collapse to 0.
func spreadPrev(k int) int {
	if k <= 2 {
		return 0
	}
	return k - 2
}
