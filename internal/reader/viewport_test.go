package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewportLoaderArmsOnce(t *testing.T) {
	var armed, reported []int
	v := NewViewportLoader(10, DefaultPrefetchMargin,
		func(i int) { armed = append(armed, i) },
		func(i int) { reported = append(reported, i) })

	v.Observe(0, 600)
	assert.Equal(t, []int{0, 1}, armed)
	assert.Equal(t, []int{0}, reported)

	v.Observe(0, 600)
	v.Observe(100, 600)
	assert.Equal(t, []int{0, 1}, armed, "armed placeholders are never re-evaluated")
	assert.Equal(t, []int{0}, reported)

	v.Observe(5000, 600)
	assert.Equal(t, []int{0, 1, 4, 5, 6}, armed)
	assert.Equal(t, []int{0, 4}, reported)

	v.Observe(0, 600)
	assert.Equal(t, []int{0, 1, 4, 5, 6}, armed)
	assert.Equal(t, []int{0, 4, 0}, reported, "centre item is reported when nothing new arms")
}

func TestViewportLoaderMarginBothDirections(t *testing.T) {
	var armed []int
	v := NewViewportLoader(10, 800, func(i int) { armed = append(armed, i) }, nil)
	v.Observe(4500, 500)
	// [3700, 5800) touches items 3, 4 and 5.
	assert.Equal(t, []int{3, 4, 5}, armed)
}

func TestViewportLoaderStates(t *testing.T) {
	v := NewViewportLoader(3, 0, nil, nil)
	v.Observe(0, 500)
	require.Equal(t, LoadArmed, v.State(0))
	assert.Equal(t, LoadIdle, v.State(1))

	v.MarkFailed(0)
	assert.Equal(t, LoadFailed, v.State(0))
	v.MarkLoaded(0)
	assert.Equal(t, LoadFailed, v.State(0), "settled placeholders do not change")

	v.MarkLoaded(1)
	assert.Equal(t, LoadIdle, v.State(1), "only armed placeholders can load")
	assert.Equal(t, LoadIdle, v.State(7))
}

func TestViewportLoaderClose(t *testing.T) {
	var armed []int
	v := NewViewportLoader(3, 0, func(i int) { armed = append(armed, i) }, nil)
	v.Observe(0, 500)
	v.Close()
	assert.True(t, v.Closed())

	v.MarkLoaded(0)
	assert.Equal(t, LoadArmed, v.State(0))
	v.Observe(2000, 500)
	assert.Equal(t, []int{0}, armed)
}

func TestViewportLoaderLayout(t *testing.T) {
	v := NewViewportLoader(3, 0, nil, nil)
	v.SetHeight(1, 400)
	v.SetEndMarker(EndMarkerHeight)

	top, h := v.Bounds(2)
	assert.Equal(t, 1400.0, top)
	assert.Equal(t, DefaultPlaceholderHeight, h)
	assert.Equal(t, 2400.0+EndMarkerHeight, v.ContentHeight())

	top, h = v.EndMarker()
	assert.Equal(t, 2400.0, top)
	assert.Equal(t, EndMarkerHeight, h)

	assert.Equal(t, 0, v.IndexAt(999))
	assert.Equal(t, 1, v.IndexAt(1000))
	assert.Equal(t, 2, v.IndexAt(1400))
	assert.Equal(t, -1, v.IndexAt(2400))
	assert.Equal(t, -1, v.IndexAt(-1))
}

func TestScrollViewClamp(t *testing.T) {
	var s ScrollView
	s.SetDimensions(3000, 1000)
	s.ScrollBy(5000)
	assert.Equal(t, 2000.0, s.Offset)
	assert.True(t, s.AtEnd())
	s.ScrollTo(-10)
	assert.Zero(t, s.Offset)

	s.SetDimensions(500, 1000)
	assert.Zero(t, s.MaxOffset())
}
