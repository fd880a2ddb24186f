package reader

import "math"

// GridLayout places thumbnails in rows of equal cells.
type GridLayout struct {
	Width   float64 // viewport width
	CellW   float64
	CellH   float64
	Gap     float64
	Count   int
	Columns int
}

// NewGridLayout fits as many cellW-wide columns as the width allows, at
// least one.
func NewGridLayout(width, cellW, cellH, gap float64, count int) GridLayout {
	cols := int(math.Floor((width - gap) / (cellW + gap)))
	if cols < 1 {
		cols = 1
	}
	return GridLayout{Width: width, CellW: cellW, CellH: cellH, Gap: gap, Count: count, Columns: cols}
}

// Rows returns the number of rows needed for Count cells.
func (g GridLayout) Rows() int {
	if g.Count == 0 {
		return 0
	}
	return (g.Count + g.Columns - 1) / g.Columns
}

// ContentHeight is the total height of all rows.
func (g GridLayout) ContentHeight() float64 {
	return float64(g.Rows())*(g.CellH+g.Gap) + g.Gap
}

// margin centres the columns horizontally.
func (g GridLayout) margin() float64 {
	used := float64(g.Columns)*(g.CellW+g.Gap) + g.Gap
	return math.Max(0, (g.Width-used)/2)
}

// Cell returns the content-space origin of cell i.
func (g GridLayout) Cell(i int) (x, y float64) {
	row, col := i/g.Columns, i%g.Columns
	x = g.margin() + g.Gap + float64(col)*(g.CellW+g.Gap)
	y = g.Gap + float64(row)*(g.CellH+g.Gap)
	return x, y
}

// IndexAt returns the cell under content-space point (x, y), or -1 for gaps
// and empty space.
func (g GridLayout) IndexAt(x, y float64) int {
	x -= g.margin() + g.Gap
	y -= g.Gap
	if x < 0 || y < 0 {
		return -1
	}
	col := int(x / (g.CellW + g.Gap))
	row := int(y / (g.CellH + g.Gap))
	if col >= g.Columns {
		return -1
	}
	if x-float64(col)*(g.CellW+g.Gap) > g.CellW || y-float64(row)*(g.CellH+g.Gap) > g.CellH {
		return -1
	}
	i := row*g.Columns + col
	if i >= g.Count {
		return -1
	}
	return i
}

// RowTop returns the content offset of the row holding cell i.
func (g GridLayout) RowTop(i int) float64 {
	_, y := g.Cell(i)
	return y - g.Gap
}
