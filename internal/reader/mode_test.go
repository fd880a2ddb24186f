package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModeControllerOpening(t *testing.T) {
	tests := []struct {
		name      string
		initial   int
		reading   Mode
		wantMode  Mode
		wantIndex int
	}{
		{"zero opens grid", 0, ModeSingle, ModeGrid, 0},
		{"positive opens single", 3, ModeSingle, ModeSingle, 3},
		{"remembered scroll", 2, ModeScroll, ModeScroll, 2},
		{"remembered spread", 2, ModeSpread, ModeSpread, 2},
		{"grid preference falls back to single", 2, ModeGrid, ModeSingle, 2},
		{"initial past end is clamped", 99, ModeSingle, ModeSingle, 4},
		{"negative opens grid", -1, ModeSingle, ModeGrid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewModeController(images(5), tt.initial, tt.reading)
			assert.Equal(t, tt.wantMode, c.Mode())
			assert.Equal(t, tt.wantIndex, c.Index())
			assert.Equal(t, tt.wantMode == ModeSpread, c.State().Spread)
		})
	}
}

func TestModeSwitchPreservesIndex(t *testing.T) {
	for i := 0; i < 5; i++ {
		c := NewModeController(images(5), 0, ModeSingle)
		c.SetIndex(i)
		for _, m := range []Mode{ModeScroll, ModeGrid, ModeSingle, ModeGrid, ModeScroll, ModeSingle} {
			c.SetMode(m)
			require.Equal(t, i, c.Index(), "index after switching to %s", m)
		}
	}
}

func TestSetIndexClamps(t *testing.T) {
	c := NewModeController(images(3), 0, ModeSingle)
	var seen []int
	c.SubscribeIndex(func(i int) { seen = append(seen, i) })

	c.SetIndex(10)
	assert.Equal(t, 2, c.Index())
	c.SetIndex(-4)
	assert.Equal(t, 0, c.Index())
	c.SetIndex(0)
	assert.Equal(t, []int{2, 0}, seen, "unchanged index must not notify")
}

func TestSpreadPairing(t *testing.T) {
	c := NewModeController(images(7), 0, ModeSingle)
	boundary := 0
	c.OnBoundary(func() { boundary++ })
	c.SetMode(ModeSingle)
	c.ToggleSpread()
	require.Equal(t, ModeSpread, c.Mode())

	first, last := c.DisplayRange()
	assert.Equal(t, [2]int{0, 0}, [2]int{first, last})

	for _, want := range [][2]int{{1, 2}, {3, 4}, {5, 6}} {
		require.Equal(t, StepMoved, c.Next())
		first, last = c.DisplayRange()
		assert.Equal(t, want, [2]int{first, last})
	}

	assert.Equal(t, StepBoundary, c.Next())
	assert.Equal(t, 1, boundary)
	assert.Equal(t, 5, c.Index())
}

func TestSpreadRetreat(t *testing.T) {
	c := NewModeController(images(7), 5, ModeSpread)
	require.Equal(t, ModeSpread, c.Mode())

	for _, want := range [][2]int{{3, 4}, {1, 2}, {0, 0}} {
		require.Equal(t, StepMoved, c.Prev())
		first, last := c.DisplayRange()
		assert.Equal(t, want, [2]int{first, last})
	}
	assert.Equal(t, StepNone, c.Prev())
}

func TestSpreadLastPageSolo(t *testing.T) {
	c := NewModeController(images(6), 5, ModeSpread)
	first, last := c.DisplayRange()
	assert.Equal(t, [2]int{5, 5}, [2]int{first, last})
}

func TestSpreadCollapsesFromTwo(t *testing.T) {
	c := NewModeController(images(7), 2, ModeSpread)
	c.Prev()
	assert.Equal(t, 0, c.Index())
}

func TestNextIgnoredOutsidePaged(t *testing.T) {
	c := NewModeController(images(3), 0, ModeSingle)
	assert.Equal(t, StepNone, c.Next())
	c.SetMode(ModeScroll)
	assert.Equal(t, StepNone, c.Next())
	assert.Equal(t, StepNone, c.Prev())
	assert.Equal(t, 0, c.Index())
}

func TestNextOnEmptySequenceHitsBoundary(t *testing.T) {
	c := NewModeController(nil, 0, ModeSingle)
	c.SetMode(ModeSingle)
	hit := false
	c.OnBoundary(func() { hit = true })
	assert.Equal(t, StepBoundary, c.Next())
	assert.True(t, hit)
}

func TestEscapeAndImageClicked(t *testing.T) {
	c := NewModeController(images(4), 0, ModeSingle)
	exited := false
	c.OnExit(func() { exited = true })

	c.ImageClicked(2)
	assert.Equal(t, ModeSingle, c.Mode())
	assert.Equal(t, 2, c.Index())

	c.ImageClicked(0)
	assert.Equal(t, 2, c.Index(), "clicks outside grid and scroll are ignored")

	c.Escape()
	assert.Equal(t, ModeGrid, c.Mode())
	assert.Equal(t, 2, c.Index())
	assert.False(t, exited)

	c.Escape()
	assert.True(t, exited)
}

func TestToggleScroll(t *testing.T) {
	c := NewModeController(images(4), 1, ModeSingle)
	c.ToggleScroll()
	assert.Equal(t, ModeScroll, c.Mode())
	c.ToggleScroll()
	assert.Equal(t, ModeGrid, c.Mode())
	c.ToggleScroll()
	assert.Equal(t, ModeScroll, c.Mode())
	assert.Equal(t, 1, c.Index())
}

func TestReplaceResetsIndex(t *testing.T) {
	c := NewModeController(images(4), 3, ModeSingle)
	var seen []int
	c.SubscribeIndex(func(i int) { seen = append(seen, i) })
	c.Replace([]string{"a.jpg", "b.jpg"})
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, ModeSingle, c.Mode())
	assert.Equal(t, []int{0}, seen)
}

func TestSubscribeModeUnsubscribe(t *testing.T) {
	c := NewModeController(images(2), 0, ModeSingle)
	var states []ViewState
	unsub := c.SubscribeMode(func(s ViewState) { states = append(states, s) })
	c.SetMode(ModeSpread)
	unsub()
	c.SetMode(ModeSingle)
	require.Len(t, states, 1)
	assert.Equal(t, ViewState{Mode: ModeSpread, Spread: true}, states[0])
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeGrid, ModeScroll, ModeSingle, ModeSpread} {
		got, ok := ParseMode(m.String())
		require.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMode("carousel")
	assert.False(t, ok)
}
