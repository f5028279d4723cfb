package layout

// gridArea is the resolved position of a grid item in 0-based track units.
type gridArea struct {
	row, col         int
	rowSpan, colSpan int
}

func (a gridArea) rowEnd() int { return a.row + a.rowSpan }
func (a gridArea) colEnd() int { return a.col + a.colSpan }

// lines returns the 1-based line indexes of the area.
func (a gridArea) lines() GridPlacement {
	return GridPlacement{
		ColumnStart: a.col + 1,
		ColumnEnd:   a.colEnd() + 1,
		RowStart:    a.row + 1,
		RowEnd:      a.rowEnd() + 1,
	}
}

type cell struct{ row, col int }

// occupancy tracks which item claims each cell. Rows and columns grow as
// items are placed.
type occupancy struct {
	owner      map[cell]int
	rows, cols int
}

func newOccupancy(rows, cols int) *occupancy {
	return &occupancy{owner: make(map[cell]int), rows: rows, cols: cols}
}

func (o *occupancy) grow(a gridArea) {
	if a.rowEnd() > o.rows {
		o.rows = a.rowEnd()
	}
	if a.colEnd() > o.cols {
		o.cols = a.colEnd()
	}
}

func (o *occupancy) free(a gridArea) bool {
	for r := a.row; r < a.rowEnd(); r++ {
		for c := a.col; c < a.colEnd(); c++ {
			if _, taken := o.owner[cell{r, c}]; taken {
				return false
			}
		}
	}
	return true
}

// claim marks the cells of a as owned by item. If a cell is already taken it
// returns the owner and the cell.
func (o *occupancy) claim(a gridArea, item int) (other int, at cell, ok bool) {
	for r := a.row; r < a.rowEnd(); r++ {
		for c := a.col; c < a.colEnd(); c++ {
			if prev, taken := o.owner[cell{r, c}]; taken {
				return prev, cell{r, c}, false
			}
		}
	}
	for r := a.row; r < a.rowEnd(); r++ {
		for c := a.col; c < a.colEnd(); c++ {
			o.owner[cell{r, c}] = item
		}
	}
	o.grow(a)
	return 0, cell{}, true
}

// resolveLines turns 1-based start/end lines and a span into a 0-based
// position and a track count. Swapped lines are normalised. A single given
// line covers span tracks from it. fixed is false when neither line is
// given.
func resolveLines(start, end, span int) (pos, size int, fixed bool) {
	if span < 1 {
		span = 1
	}
	switch {
	case start > 0 && end > 0:
		if start > end {
			start, end = end, start
		}
		if start == end {
			return start - 1, 1, true
		}
		return start - 1, end - start, true
	case start > 0:
		return start - 1, span, true
	case end > 0:
		s := end - span
		if s < 1 {
			s = 1
		}
		size = end - s
		if size < 1 {
			size = 1
		}
		return s - 1, size, true
	}
	return 0, span, false
}

// placeItems resolves the area of every child. Items with both axes fixed
// are placed first in child order and may not overlap; the rest are
// auto-placed into the first free run found scanning rows top to bottom and
// columns left to right, honouring a fixed axis when one is given.
func placeItems(container string, children []*Node, explicitRows, explicitCols int) ([]gridArea, *occupancy, error) {
	type pending struct {
		area               gridArea
		rowFixed, colFixed bool
	}
	cols := explicitCols
	items := make([]pending, len(children))
	for i, c := range children {
		var p pending
		p.area.row, p.area.rowSpan, p.rowFixed = resolveLines(c.Cell.RowStart, c.Cell.RowEnd, c.Cell.RowSpan)
		p.area.col, p.area.colSpan, p.colFixed = resolveLines(c.Cell.ColumnStart, c.Cell.ColumnEnd, c.Cell.ColumnSpan)
		if p.colFixed && p.area.colEnd() > cols {
			cols = p.area.colEnd()
		}
		if p.area.colSpan > cols {
			cols = p.area.colSpan
		}
		items[i] = p
	}
	if cols < 1 {
		cols = 1
	}

	grid := newOccupancy(explicitRows, cols)
	areas := make([]gridArea, len(children))

	for i, p := range items {
		if !p.rowFixed || !p.colFixed {
			continue
		}
		if other, at, ok := grid.claim(p.area, i); !ok {
			return nil, nil, &PlacementError{
				Container: container,
				Item:      children[i].ID,
				Other:     children[other].ID,
				Row:       at.row + 1,
				Column:    at.col + 1,
			}
		}
		areas[i] = p.area
	}

	for i, p := range items {
		if p.rowFixed && p.colFixed {
			continue
		}
		a := p.area
		for r := 0; ; r++ {
			if p.rowFixed {
				r = p.area.row
			}
			found := false
			for c := 0; ; c++ {
				if p.colFixed {
					c = p.area.col
				} else if c+a.colSpan > grid.cols {
					if !p.rowFixed {
						break
					}
					grid.cols = c + a.colSpan
				}
				a.row, a.col = r, c
				if grid.free(a) {
					found = true
					break
				}
				if p.colFixed {
					break
				}
			}
			if found {
				break
			}
		}
		grid.claim(a, i)
		areas[i] = a
	}
	return areas, grid, nil
}
