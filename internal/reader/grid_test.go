package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridLayout(t *testing.T) {
	g := NewGridLayout(800, 160, 240, 12, 6)
	assert.Equal(t, 4, g.Columns)
	assert.Equal(t, 2, g.Rows())
	assert.InDelta(t, 516, g.ContentHeight(), 1e-9)

	x, y := g.Cell(5)
	assert.InDelta(t, 234, x, 1e-9)
	assert.InDelta(t, 264, y, 1e-9)
	assert.InDelta(t, 252, g.RowTop(5), 1e-9)

	assert.Equal(t, 0, g.IndexAt(63, 13))
	assert.Equal(t, 5, g.IndexAt(240, 300))
	assert.Equal(t, -1, g.IndexAt(62+165, 20), "gap between cells")
	assert.Equal(t, -1, g.IndexAt(10, 10), "left margin")
	assert.Equal(t, -1, g.IndexAt(62+2*172+5, 270), "past the last cell")
}

func TestGridLayoutNarrow(t *testing.T) {
	g := NewGridLayout(50, 160, 240, 12, 3)
	assert.Equal(t, 1, g.Columns)
	assert.Equal(t, 3, g.Rows())
}
