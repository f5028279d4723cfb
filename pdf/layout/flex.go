package layout

import (
	"math"

	"go.uber.org/zap"
)

// Direction is the flex-direction property.
type Direction int

const (
	Row Direction = iota
	RowReverse
	Column
	ColumnReverse
)

// IsRow reports whether the main axis is horizontal.
func (d Direction) IsRow() bool { return d == Row || d == RowReverse }

// IsReverse reports whether items are placed from the main end.
func (d Direction) IsReverse() bool { return d == RowReverse || d == ColumnReverse }

func (d Direction) String() string {
	switch d {
	case RowReverse:
		return "row-reverse"
	case Column:
		return "column"
	case ColumnReverse:
		return "column-reverse"
	}
	return "row"
}

// Wrap is the flex-wrap property.
type Wrap int

const (
	NoWrap Wrap = iota
	WrapLines
	WrapReverse
)

func (w Wrap) String() string {
	switch w {
	case WrapLines:
		return "wrap"
	case WrapReverse:
		return "wrap-reverse"
	}
	return "nowrap"
}

// Justify is the justify-content property.
type Justify int

const (
	JustifyFlexStart Justify = iota
	JustifyFlexEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

func (j Justify) String() string {
	switch j {
	case JustifyFlexEnd:
		return "flex-end"
	case JustifyCenter:
		return "center"
	case JustifySpaceBetween:
		return "space-between"
	case JustifySpaceAround:
		return "space-around"
	case JustifySpaceEvenly:
		return "space-evenly"
	}
	return "flex-start"
}

// Align is the align-items and align-self property. AlignAuto on an item
// defers to the container; on the container it means stretch.
type Align int

const (
	AlignAuto Align = iota
	AlignStretch
	AlignFlexStart
	AlignFlexEnd
	AlignCenter
)

func (a Align) String() string {
	switch a {
	case AlignStretch:
		return "stretch"
	case AlignFlexStart:
		return "flex-start"
	case AlignFlexEnd:
		return "flex-end"
	case AlignCenter:
		return "center"
	}
	return "auto"
}

// AlignContent is the align-content property.
type AlignContent int

const (
	ContentStretch AlignContent = iota
	ContentFlexStart
	ContentFlexEnd
	ContentCenter
	ContentSpaceBetween
	ContentSpaceAround
	ContentSpaceEvenly
)

func (a AlignContent) justify() Justify {
	switch a {
	case ContentFlexEnd:
		return JustifyFlexEnd
	case ContentCenter:
		return JustifyCenter
	case ContentSpaceBetween:
		return JustifySpaceBetween
	case ContentSpaceAround:
		return JustifySpaceAround
	case ContentSpaceEvenly:
		return JustifySpaceEvenly
	}
	return JustifyFlexStart
}

func (a AlignContent) String() string {
	if a == ContentStretch {
		return "stretch"
	}
	return a.justify().String()
}

// FlexConfig holds the flex container properties.
type FlexConfig struct {
	Direction      Direction
	Wrap           Wrap
	JustifyContent Justify
	AlignItems     Align
	AlignContent   AlignContent
	RowGap         float64
	ColumnGap      float64
}

// Validate rejects negative gaps.
func (c *FlexConfig) Validate() error {
	if c.RowGap < 0 {
		return &PropertyError{Property: "row-gap", Value: c.RowGap, Err: ErrInvalidGap}
	}
	if c.ColumnGap < 0 {
		return &PropertyError{Property: "column-gap", Value: c.ColumnGap, Err: ErrInvalidGap}
	}
	return nil
}

func (c *FlexConfig) mainGap() float64 {
	if c.Direction.IsRow() {
		return c.ColumnGap
	}
	return c.RowGap
}

func (c *FlexConfig) crossGap() float64 {
	if c.Direction.IsRow() {
		return c.RowGap
	}
	return c.ColumnGap
}

func (c *FlexConfig) alignFor(item FlexItem) Align {
	a := item.AlignSelf
	if a == AlignAuto {
		a = c.AlignItems
	}
	if a == AlignAuto {
		a = AlignStretch
	}
	return a
}

// flexStrategy implements the flexible box layout.
type flexStrategy struct{}

// flexPass is the outcome of sizing a flex container before anything is
// placed on the page.
type flexPass struct {
	fc     *FlexConfig
	row    bool
	base   Size
	items  []*flexItem
	lines  []*flexLine
	height float64
}

func (ctx *Context) runFlex(n *Node, b box) *flexPass {
	fc := n.Flex
	if fc == nil {
		fc = &FlexConfig{}
	}
	p := &flexPass{fc: fc, row: fc.Direction.IsRow(), base: Size{Width: b.Width, Height: b.heightOrInf()}}
	p.items = ctx.collectFlexItems(n, fc, p.base)

	mainAvail := b.Width
	if !p.row {
		mainAvail = b.heightOrInf()
	}
	p.lines = buildLines(p.items, mainAvail, fc.mainGap(), fc.Wrap != NoWrap)
	for _, l := range p.lines {
		resolveFlexibleLengths(l.items, mainAvail, fc.mainGap())
	}
	ctx.measureCross(p.items, p.row, p.base)
	for _, l := range p.lines {
		l.measure(fc.mainGap())
	}

	var mainSize, crossSize float64
	if p.row {
		mainSize = b.Width
		crossSize = arrangeLines(fc, p.lines, b.Height, b.HasHeight, b.rs.ClampHeight)
		p.height = crossSize
	} else {
		crossSize = arrangeLines(fc, p.lines, b.Width, true, nil)
		if b.HasHeight {
			mainSize = b.Height
		} else {
			for _, l := range p.lines {
				mainSize = math.Max(mainSize, l.main)
			}
			mainSize = b.rs.ClampHeight(mainSize)
		}
		p.height = mainSize
	}
	for _, l := range p.lines {
		l.placeMain(fc, mainSize)
		l.placeCross(fc)
	}
	return p
}

func (flexStrategy) layout(ctx *Context, n *Node, b box) (inner, error) {
	p := ctx.runFlex(n, b)
	switch {
	case p.row:
		return ctx.flowFlexLines(n, b, p)
	case len(p.lines) <= 1 && !p.fc.Direction.IsReverse():
		return ctx.flowFlexColumn(n, b, p)
	}

	// Multi-line and reversed columns are placed as a unit.
	unbounded := b
	unbounded.Avail = math.Inf(1)
	var frags []*Fragment
	for _, it := range p.items {
		res, err := ctx.layoutFlexItem(it, p, unbounded, false)
		if err != nil {
			return inner{}, err
		}
		if res.Fragment != nil {
			frags = append(frags, res.Fragment)
		}
	}
	return inner{height: p.height, children: frags}, nil
}

// layoutFlexItem lays out one item at its resolved position. When splitting
// the item keeps its natural block size so that it can break across the page.
func (ctx *Context) layoutFlexItem(it *flexItem, p *flexPass, b box, splitting bool) (Result, error) {
	c := Constraints{Base: p.base}
	var area Area
	if p.row {
		area = Area{X: b.X + it.mainPos, Y: b.Y + it.crossPos, Width: it.outerSize()}
		c.Width, c.HasWidth = it.main, true
		if it.stretched && !splitting {
			c.Height, c.HasHeight = it.cross, true
		}
	} else {
		area = Area{X: b.X + it.crossPos, Y: b.Y + it.mainPos, Width: it.outerCrossSize()}
		c.Width, c.HasWidth = it.cross, true
		if !splitting || it.rs.HasHeight {
			c.Height, c.HasHeight = it.main, true
		}
	}
	rel := area.Y - b.Y
	area.Height = b.Avail - rel
	area.Fresh = b.Fresh && rel <= epsilon
	return ctx.layout(it.node, area, c)
}

// flowFlexLines places row lines top to bottom and splits at the first line
// that does not fit. Items of that line are split individually.
func (ctx *Context) flowFlexLines(n *Node, b box, p *flexPass) (inner, error) {
	var (
		frags  []*Fragment
		bottom float64
	)
	order := visualOrder(p.lines)
	for i, l := range order {
		fits := l.pos+l.cross <= b.Avail+epsilon
		var rest []*Node
		for _, it := range l.items {
			res, err := ctx.layoutFlexItem(it, p, b, !fits)
			if err != nil {
				return inner{}, err
			}
			switch res.Status {
			case Full, Partial:
				frags = append(frags, res.Fragment)
				bottom = math.Max(bottom, it.crossPos+res.Height)
				if res.Status == Partial {
					rest = append(rest, res.Overflow)
				}
			case Nothing:
				rest = append(rest, it.node)
			}
		}
		if len(rest) == 0 {
			bottom = math.Max(bottom, l.pos+l.cross)
			continue
		}
		if len(frags) == 0 {
			return inner{status: Nothing}, nil
		}
		rest = unplacedItems(p.lines, order[:i], l, rest)
		ctx.logger.Debug("flex split between lines",
			zap.String("node", n.ID),
			zap.Int("line", i),
			zap.Int("remaining", len(rest)))
		return inner{height: bottom, children: frags, status: Partial, overflow: n.continuation(rest)}, nil
	}
	return inner{height: p.height, children: frags}, nil
}

// unplacedItems lists the items still to lay out in line order, with the
// overflow of the split line standing in for its items. Placed lines are
// skipped, so wrap-reverse keeps its visual order on the next page.
func unplacedItems(lines, placed []*flexLine, split *flexLine, overflow []*Node) []*Node {
	done := make(map[*flexLine]bool, len(placed))
	for _, l := range placed {
		done[l] = true
	}
	var rest []*Node
	for _, l := range lines {
		switch {
		case l == split:
			rest = append(rest, overflow...)
		case !done[l]:
			for _, it := range l.items {
				rest = append(rest, it.node)
			}
		}
	}
	return rest
}

// flowFlexColumn places the items of a single column line top to bottom and
// splits at the first item that does not fit.
func (ctx *Context) flowFlexColumn(n *Node, b box, p *flexPass) (inner, error) {
	var (
		frags  []*Fragment
		bottom float64
	)
	for i, it := range p.items {
		fits := it.mainPos+it.outerSize() <= b.Avail+epsilon
		res, err := ctx.layoutFlexItem(it, p, b, !fits)
		if err != nil {
			return inner{}, err
		}
		var rest []*Node
		switch res.Status {
		case Full:
			frags = append(frags, res.Fragment)
			bottom = math.Max(bottom, it.mainPos+res.Height)
			continue
		case Partial:
			frags = append(frags, res.Fragment)
			bottom = math.Max(bottom, it.mainPos+res.Height)
			rest = append(rest, res.Overflow)
			for _, next := range p.items[i+1:] {
				rest = append(rest, next.node)
			}
		case Nothing:
			if len(frags) == 0 {
				return inner{status: Nothing}, nil
			}
			for _, next := range p.items[i:] {
				rest = append(rest, next.node)
			}
		}
		ctx.logger.Debug("flex split between items",
			zap.String("node", n.ID),
			zap.Int("item", i),
			zap.Int("remaining", len(rest)))
		return inner{height: bottom, children: frags, status: Partial, overflow: n.continuation(rest)}, nil
	}
	return inner{height: p.height, children: frags}, nil
}

func (flexStrategy) maxContentWidth(ctx *Context, n *Node, base Size) float64 {
	row := n.Flex == nil || n.Flex.Direction.IsRow()
	var w float64
	for i, c := range n.Children {
		cw := ctx.outerMaxContentWidth(c, base, base.Width)
		switch {
		case !row:
			w = math.Max(w, cw)
		case i > 0 && n.Flex != nil:
			w += cw + n.Flex.ColumnGap
		default:
			w += cw
		}
	}
	return w
}
