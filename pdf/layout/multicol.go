package layout

import (
	"math"

	"go.uber.org/zap"
)

// DefaultColumnGap is the column gap used when none is given.
const DefaultColumnGap = 12.0

// ColumnFill selects how content is spread over the columns.
type ColumnFill int

const (
	// FillBalance uses the smallest column height that holds the content.
	FillBalance ColumnFill = iota
	// FillAuto fills each column to the available height before moving on.
	FillAuto
)

func (f ColumnFill) String() string {
	if f == FillAuto {
		return "auto"
	}
	return "balance"
}

// MulticolConfig holds the multi-column container properties.
type MulticolConfig struct {
	// ColumnCount is the wanted number of columns. Zero means auto.
	ColumnCount int
	// ColumnWidth is the minimum column width, or auto.
	ColumnWidth Length
	// ColumnGap is auto (DefaultColumnGap), points or a percentage of the
	// container width.
	ColumnGap Length
	// RuleWidth is the width of the rule drawn between columns.
	RuleWidth float64
	Fill      ColumnFill
}

// Validate rejects negative gaps and counts and non-positive column widths.
func (c *MulticolConfig) Validate() error {
	if c.ColumnCount < 0 {
		return &PropertyError{Property: "column-count", Value: c.ColumnCount, Err: ErrInvalidColumnProperties}
	}
	switch c.ColumnWidth.Kind {
	case LengthAuto:
	case LengthFixed, LengthPercent:
		if c.ColumnWidth.Value <= 0 {
			return &PropertyError{Property: "column-width", Value: c.ColumnWidth, Err: ErrInvalidColumnProperties}
		}
	default:
		return &PropertyError{Property: "column-width", Value: c.ColumnWidth, Err: ErrInvalidColumnProperties}
	}
	if c.ColumnGap.Kind == LengthFraction || c.ColumnGap.Value < 0 {
		return &PropertyError{Property: "column-gap", Value: c.ColumnGap, Err: ErrInvalidColumnProperties}
	}
	if c.RuleWidth < 0 {
		return &PropertyError{Property: "column-rule-width", Value: c.RuleWidth, Err: ErrInvalidColumnProperties}
	}
	return nil
}

// Gap returns the column gap in points for a container width points wide.
func (c *MulticolConfig) Gap(width float64) float64 {
	if v, ok := c.ColumnGap.Resolve(width); ok {
		return v
	}
	return DefaultColumnGap
}

// Columns resolves the column count and width for a container width points
// wide.
func (c *MulticolConfig) Columns(width float64) (int, float64, error) {
	cw := 0.0
	if v, ok := c.ColumnWidth.Resolve(width); ok {
		cw = v
	}
	return ResolveColumns(width, c.ColumnCount, cw, c.Gap(width))
}

// ResolveColumns computes the number of columns and their width. count and
// columnWidth of zero mean auto. columnWidth is a minimum: the count is the
// largest that keeps columns at least that wide, capped by count when both
// are given. Columns always fill width.
func ResolveColumns(width float64, count int, columnWidth, gap float64) (int, float64, error) {
	if count < 0 {
		return 0, 0, &PropertyError{Property: "column-count", Value: count, Err: ErrInvalidColumnProperties}
	}
	if columnWidth < 0 {
		return 0, 0, &PropertyError{Property: "column-width", Value: columnWidth, Err: ErrInvalidColumnProperties}
	}
	if gap < 0 {
		return 0, 0, &PropertyError{Property: "column-gap", Value: gap, Err: ErrInvalidColumnProperties}
	}

	n := 1
	switch {
	case columnWidth > 0:
		n = int(math.Floor((width + gap) / (columnWidth + gap)))
		if count > 0 && count < n {
			n = count
		}
		if n < 1 {
			n = 1
		}
	case count > 0:
		n = count
	}
	w := nonNegative((width - float64(n-1)*gap) / float64(n))
	return n, w, nil
}

// multicolStrategy pours the children, as one block flow, into columns.
type multicolStrategy struct{}

// pour is the outcome of filling the columns once.
type pour struct {
	columns   []*Fragment
	heights   []float64
	remaining *Node
	clipped   bool
}

func (p pour) tallest() float64 {
	var h float64
	for _, c := range p.heights {
		h = math.Max(h, c)
	}
	return h
}

func (ctx *Context) pourColumns(flow *Node, b box, count int, colW, gap, height float64) (pour, error) {
	var p pour
	remaining := flow
	for i := 0; i < count && remaining != nil; i++ {
		area := Area{
			X:      b.X + float64(i)*(colW+gap),
			Y:      b.Y,
			Width:  colW,
			Height: height,
			Fresh:  b.Fresh && i == 0,
		}
		res, err := ctx.layout(remaining, area, Constraints{Base: Size{Width: colW, Height: height}})
		if err != nil {
			return pour{}, err
		}
		switch res.Status {
		case Full:
			remaining = nil
		case Partial:
			remaining = res.Overflow
		}
		if res.Fragment == nil {
			continue
		}
		p.clipped = p.clipped || anyClipped(res.Fragment)
		p.columns = append(p.columns, res.Fragment)
		p.heights = append(p.heights, res.Height)
	}
	p.remaining = remaining
	return p, nil
}

// anyClipped reports whether f or any fragment below it was clipped.
func anyClipped(f *Fragment) bool {
	if f.Clipped {
		return true
	}
	for _, c := range f.Children {
		if anyClipped(c) {
			return true
		}
	}
	return false
}

// balancedHeight binary searches the smallest column height, at most limit,
// at which the flow fits the columns.
func (ctx *Context) balancedHeight(flow *Node, b box, count int, colW, gap, limit float64) (float64, error) {
	m := ctx.measuringContext()
	full := m.outerHeightAt(flow, Size{Width: colW, Height: math.Inf(1)}, colW)
	hi := math.Min(full, limit)
	if count == 1 {
		return hi, nil
	}
	fits := func(h float64) (bool, error) {
		p, err := m.pourColumns(flow, b, count, colW, gap, h)
		if err != nil {
			return false, err
		}
		return p.remaining == nil && !p.clipped, nil
	}
	ok, err := fits(hi)
	if err != nil || !ok {
		return limit, err
	}
	lo := full / float64(count)
	for i := 0; i < 32 && hi-lo > 0.5; i++ {
		mid := (lo + hi) / 2
		ok, err := fits(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}

func (multicolStrategy) layout(ctx *Context, n *Node, b box) (inner, error) {
	mc := n.Multicol
	if mc == nil {
		mc = &MulticolConfig{}
	}
	count, colW, err := mc.Columns(b.Width)
	if err != nil {
		return inner{}, withNode(err, n.ID)
	}
	gap := mc.Gap(b.Width)
	flow := &Node{ID: n.ID + "/flow", Kind: KindBlock, Anonymous: true, Item: DefaultFlexItem(), Children: n.Children}

	limit := b.Avail
	hard := false
	switch {
	case b.HasHeight:
		hard = b.Height <= b.Avail+epsilon
		limit = math.Min(b.Height, b.Avail)
	case mc.Fill == FillBalance:
		limit, err = ctx.balancedHeight(flow, b, count, colW, gap, b.Avail)
		if err != nil {
			return inner{}, err
		}
	}
	if math.IsInf(limit, 1) {
		// Unbounded: everything goes in the first column.
		limit = ctx.measuringContext().outerHeightAt(flow, Size{Width: colW, Height: limit}, colW)
	}

	p, err := ctx.pourColumns(flow, b, count, colW, gap, limit)
	if err != nil {
		return inner{}, err
	}
	in := inner{height: p.tallest(), children: p.columns}
	if b.HasHeight || (mc.Fill == FillAuto && p.remaining != nil) {
		in.height = limit
	}
	in.rules = columnRules(mc, b, p, colW, gap, in.height)

	if p.remaining == nil {
		return in, nil
	}
	switch {
	case hard:
		ctx.report(Clipped, n, "content exceeds the column height %.2f", limit)
		in.clipped = true
		return in, nil
	case len(p.columns) == 0:
		return inner{status: Nothing}, nil
	}
	ctx.logger.Debug("multicol continues on next area",
		zap.String("node", n.ID),
		zap.Int("columns", count),
		zap.Float64("height", limit))
	in.status = Partial
	in.overflow = n.continuation(p.remaining.Children)
	return in, nil
}

// columnRules draws a rule in the middle of each gap between two used
// columns.
func columnRules(mc *MulticolConfig, b box, p pour, colW, gap, height float64) []Rectangle {
	if mc.RuleWidth <= 0 || len(p.columns) < 2 {
		return nil
	}
	rules := make([]Rectangle, 0, len(p.columns)-1)
	for i := 1; i < len(p.columns); i++ {
		x := b.X + float64(i)*(colW+gap) - gap/2 - mc.RuleWidth/2
		rules = append(rules, Rectangle{X: x, Y: b.Y, Width: mc.RuleWidth, Height: height})
	}
	return rules
}

func (multicolStrategy) maxContentWidth(ctx *Context, n *Node, base Size) float64 {
	mc := n.Multicol
	if mc == nil {
		mc = &MulticolConfig{}
	}
	var col float64
	for _, c := range n.Children {
		col = math.Max(col, ctx.outerMaxContentWidth(c, base, base.Width))
	}
	if v, ok := mc.ColumnWidth.Resolve(base.Width); ok {
		col = math.Max(col, v)
	}
	count := mc.ColumnCount
	if count < 1 {
		count = 1
	}
	return float64(count)*col + float64(count-1)*mc.Gap(base.Width)
}
