package layout

import (
	"math"

	"go.uber.org/zap"
)

// GridConfig holds the grid container properties.
type GridConfig struct {
	TemplateColumns []Length
	TemplateRows    []Length
	// AutoColumns and AutoRows size implicitly created tracks.
	AutoColumns Length
	AutoRows    Length
	ColumnGap   float64
	RowGap      float64
	// JustifyItems and AlignItems align items inside their cells
	// horizontally and vertically. AlignAuto means stretch.
	JustifyItems Align
	AlignItems   Align
}

// Validate rejects negative gaps and track sizes.
func (c *GridConfig) Validate() error {
	if c.RowGap < 0 {
		return &PropertyError{Property: "row-gap", Value: c.RowGap, Err: ErrInvalidGap}
	}
	if c.ColumnGap < 0 {
		return &PropertyError{Property: "column-gap", Value: c.ColumnGap, Err: ErrInvalidGap}
	}
	check := func(name string, tracks ...Length) error {
		for _, t := range tracks {
			if t.Value < 0 {
				return &PropertyError{Property: name, Value: t, Err: ErrInvalidTrackSize}
			}
		}
		return nil
	}
	if err := check("grid-template-columns", c.TemplateColumns...); err != nil {
		return err
	}
	if err := check("grid-template-rows", c.TemplateRows...); err != nil {
		return err
	}
	return check("grid-auto-tracks", c.AutoColumns, c.AutoRows)
}

func (c *GridConfig) track(template []Length, auto Length, i int) Length {
	if i < len(template) {
		return template[i]
	}
	return auto
}

// clone returns a copy that does not share track slices with c.
func (c *GridConfig) clone() *GridConfig {
	cp := *c
	cp.TemplateColumns = append([]Length(nil), c.TemplateColumns...)
	cp.TemplateRows = append([]Length(nil), c.TemplateRows...)
	return &cp
}

// gridStrategy implements grid placement and track sizing.
type gridStrategy struct{}

type gridItem struct {
	node *Node
	area gridArea
	rs   Resolved
}

// gridPass holds the sized tracks of one layout pass.
type gridPass struct {
	gc    *GridConfig
	items []*gridItem
	cols  []float64
	rows  []float64
	base  Size
}

func (p *gridPass) colOffset(i int) float64 { return offset(p.cols, p.gc.ColumnGap, i) }
func (p *gridPass) rowOffset(i int) float64 { return offset(p.rows, p.gc.RowGap, i) }

func (p *gridPass) span(tracks []float64, gap float64, start, n int) float64 {
	var s float64
	for i := start; i < start+n && i < len(tracks); i++ {
		s += tracks[i]
	}
	if n > 1 {
		s += gap * float64(n-1)
	}
	return s
}

// offset is the position of track i: the size of the preceding tracks plus
// one gap after each.
func offset(tracks []float64, gap float64, i int) float64 {
	var o float64
	for j := 0; j < i && j < len(tracks); j++ {
		o += tracks[j] + gap
	}
	return o
}

func total(tracks []float64, gap float64) float64 {
	if len(tracks) == 0 {
		return 0
	}
	return offset(tracks, gap, len(tracks)) - gap
}

func (ctx *Context) runGrid(n *Node, b box) (*gridPass, error) {
	gc := n.Grid
	if gc == nil {
		gc = &GridConfig{}
	}
	areas, occ, err := placeItems(n.ID, n.Children, len(gc.TemplateRows), len(gc.TemplateColumns))
	if err != nil {
		return nil, err
	}
	p := &gridPass{gc: gc, base: Size{Width: b.Width, Height: b.heightOrInf()}}
	for i, c := range n.Children {
		p.items = append(p.items, &gridItem{node: c, area: areas[i], rs: c.Style.Resolve(p.base)})
	}

	colSpecs := make([]Length, occ.cols)
	for i := range colSpecs {
		colSpecs[i] = gc.track(gc.TemplateColumns, gc.AutoColumns, i)
	}
	p.cols = sizeTracks(colSpecs, b.Width, true, gc.ColumnGap, p.items,
		func(it *gridItem) (int, int) { return it.area.col, it.area.colSpan },
		func(it *gridItem) float64 { return ctx.outerMaxContentWidth(it.node, p.base, b.Width) })

	rowSpecs := make([]Length, occ.rows)
	for i := range rowSpecs {
		rowSpecs[i] = gc.track(gc.TemplateRows, gc.AutoRows, i)
	}
	p.rows = sizeTracks(rowSpecs, b.Height, b.HasHeight, gc.RowGap, p.items,
		func(it *gridItem) (int, int) { return it.area.row, it.area.rowSpan },
		func(it *gridItem) float64 { return ctx.gridItemHeight(p, it) })
	return p, nil
}

// gridItemHeight is the margin-box height of an item at the width its cell
// gives it.
func (ctx *Context) gridItemHeight(p *gridPass, it *gridItem) float64 {
	if it.rs.HasHeight {
		return it.rs.Height + it.rs.Outer().Vertical()
	}
	w, _ := p.itemWidth(ctx, it)
	return ctx.outerHeightAt(it.node, p.base, w)
}

// itemWidth returns the content width of an item and its offset inside the
// cell.
func (p *gridPass) itemWidth(ctx *Context, it *gridItem) (float64, float64) {
	cellW := p.span(p.cols, p.gc.ColumnGap, it.area.col, it.area.colSpan)
	outer := it.rs.Outer().Horizontal()
	if it.rs.HasWidth {
		return it.rs.Width, alignOffset(p.gc.JustifyItems, cellW-it.rs.Width-outer)
	}
	if a := p.gc.JustifyItems; a == AlignAuto || a == AlignStretch {
		return it.rs.ClampWidth(nonNegative(cellW - outer)), 0
	}
	w := math.Min(ctx.outerMaxContentWidth(it.node, p.base, cellW), cellW) - outer
	w = it.rs.ClampWidth(nonNegative(w))
	return w, alignOffset(p.gc.JustifyItems, cellW-w-outer)
}

// sizeTracks resolves track sizes along one axis. Fixed and percentage
// tracks are taken as is, auto tracks grow to fit their items, flexible
// tracks share the leftover space and, when there are none, leftover space
// is spread over auto tracks. available is only used when definite.
func sizeTracks(specs []Length, available float64, definite bool, gap float64, items []*gridItem,
	span func(*gridItem) (int, int), measure func(*gridItem) float64) []float64 {

	sizes := make([]float64, len(specs))
	isAuto := make([]bool, len(specs))
	var frs float64
	for i, s := range specs {
		switch s.Kind {
		case LengthFixed:
			sizes[i] = s.Value
		case LengthPercent:
			if v, ok := s.Resolve(available); ok && definite {
				sizes[i] = v
			} else {
				isAuto[i] = true
			}
		case LengthFraction:
			if definite {
				frs += s.Value
			} else {
				isAuto[i] = true
			}
		default:
			isAuto[i] = true
		}
	}

	// Single-span items first, then spanning items top up their auto tracks.
	for _, it := range items {
		start, n := span(it)
		if n == 1 && isAuto[start] {
			sizes[start] = math.Max(sizes[start], measure(it))
		}
	}
	for _, it := range items {
		start, n := span(it)
		if n == 1 {
			continue
		}
		var autos []int
		var have float64
		for i := start; i < start+n; i++ {
			have += sizes[i]
			if isAuto[i] {
				autos = append(autos, i)
			}
		}
		have += gap * float64(n-1)
		if need := measure(it); need > have && len(autos) > 0 {
			extra := (need - have) / float64(len(autos))
			for _, i := range autos {
				sizes[i] += extra
			}
		}
	}

	if !definite {
		return sizes
	}
	free := available - total(sizes, gap)
	if frs > 0 {
		unit := nonNegative(free) / math.Max(frs, 1)
		for i, s := range specs {
			if s.Kind == LengthFraction {
				sizes[i] = unit * s.Value
			}
		}
		return sizes
	}
	var autos int
	for _, a := range isAuto {
		if a {
			autos++
		}
	}
	if free > 0 && autos > 0 {
		extra := free / float64(autos)
		for i, a := range isAuto {
			if a {
				sizes[i] += extra
			}
		}
	}
	return sizes
}

func (gridStrategy) layout(ctx *Context, n *Node, b box) (inner, error) {
	p, err := ctx.runGrid(n, b)
	if err != nil {
		return inner{}, err
	}

	height := total(p.rows, p.gc.RowGap)
	split := len(p.rows)
	if height > b.Avail+epsilon {
		split = p.splitRow(b.Avail)
		if split == 0 {
			return inner{status: Nothing}, nil
		}
	}

	var frags []*Fragment
	for _, it := range p.items {
		if it.area.rowEnd() > split {
			continue
		}
		res, err := ctx.layoutGridItem(p, it, b)
		if err != nil {
			return inner{}, err
		}
		if res.Fragment != nil {
			frags = append(frags, res.Fragment)
		}
	}
	if split == len(p.rows) {
		return inner{height: height, children: frags}, nil
	}

	ctx.logger.Debug("grid split at row boundary",
		zap.String("node", n.ID),
		zap.Int("row", split),
		zap.Int("rows", len(p.rows)))
	placed := p.rowOffset(split) - p.gc.RowGap
	return inner{height: placed, children: frags, status: Partial, overflow: p.continuation(n, split)}, nil
}

// splitRow returns the last row boundary at or above avail that no item
// crosses. Zero means no boundary qualifies.
func (p *gridPass) splitRow(avail float64) int {
	k := 0
	for r := range p.rows {
		if p.rowOffset(r)+p.rows[r] > avail+epsilon {
			break
		}
		k = r + 1
	}
	for ; k > 0; k-- {
		crossed := false
		for _, it := range p.items {
			if it.area.row < k && it.area.rowEnd() > k {
				crossed = true
				break
			}
		}
		if !crossed {
			return k
		}
	}
	return 0
}

// continuation builds the grid holding rows from split on. Items keep their
// columns and relative rows, and column widths are frozen so that columns
// line up across pages.
func (p *gridPass) continuation(n *Node, split int) *Node {
	var rest []*Node
	for _, it := range p.items {
		if it.area.rowEnd() <= split {
			continue
		}
		c := *it.node
		a := it.area
		a.row -= split
		c.Cell = a.lines()
		rest = append(rest, &c)
	}
	cont := n.continuation(rest)
	gc := p.gc.clone()
	gc.TemplateColumns = make([]Length, len(p.cols))
	for i, w := range p.cols {
		gc.TemplateColumns[i] = Points(w)
	}
	if split < len(gc.TemplateRows) {
		gc.TemplateRows = gc.TemplateRows[split:]
	} else {
		gc.TemplateRows = nil
	}
	cont.Grid = gc
	return cont
}

func (ctx *Context) layoutGridItem(p *gridPass, it *gridItem, b box) (Result, error) {
	w, dx := p.itemWidth(ctx, it)
	cellH := p.span(p.rows, p.gc.RowGap, it.area.row, it.area.rowSpan)
	outerV := it.rs.Outer().Vertical()

	c := Constraints{Base: p.base, Width: w, HasWidth: true}
	var dy float64
	switch a := p.gc.AlignItems; {
	case it.rs.HasHeight:
		dy = alignOffset(a, cellH-it.rs.Height-outerV)
	case a == AlignAuto || a == AlignStretch:
		c.Height, c.HasHeight = it.rs.ClampHeight(nonNegative(cellH-outerV)), true
	default:
		dy = alignOffset(a, cellH-ctx.gridItemHeight(p, it))
	}

	x := b.X + p.colOffset(it.area.col) + dx
	rel := p.rowOffset(it.area.row) + dy
	area := Area{
		X:      x,
		Y:      b.Y + rel,
		Width:  w + it.rs.Outer().Horizontal(),
		Height: b.Avail - rel,
		Fresh:  b.Fresh && rel <= epsilon,
	}
	return ctx.layout(it.node, area, c)
}

func (gridStrategy) maxContentWidth(ctx *Context, n *Node, base Size) float64 {
	gc := n.Grid
	if gc == nil {
		gc = &GridConfig{}
	}
	areas, occ, err := placeItems(n.ID, n.Children, len(gc.TemplateRows), len(gc.TemplateColumns))
	if err != nil {
		return 0
	}
	items := make([]*gridItem, len(n.Children))
	for i, c := range n.Children {
		items[i] = &gridItem{node: c, area: areas[i]}
	}
	specs := make([]Length, occ.cols)
	for i := range specs {
		specs[i] = gc.track(gc.TemplateColumns, gc.AutoColumns, i)
	}
	cols := sizeTracks(specs, base.Width, false, gc.ColumnGap, items,
		func(it *gridItem) (int, int) { return it.area.col, it.area.colSpan },
		func(it *gridItem) float64 { return ctx.outerMaxContentWidth(it.node, base, base.Width) })
	return total(cols, gc.ColumnGap)
}
