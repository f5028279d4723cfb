package layout

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Measurer measures the intrinsic size of leaf content.
type Measurer interface {
	MeasureIntrinsicSize(n *Node, availableWidth float64) Size
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(n *Node, availableWidth float64) Size

// MeasureIntrinsicSize calls f.
func (f MeasurerFunc) MeasureIntrinsicSize(n *Node, availableWidth float64) Size {
	return f(n, availableWidth)
}

// contentMeasurer asks the leaf content to measure itself.
type contentMeasurer struct{}

func (contentMeasurer) MeasureIntrinsicSize(n *Node, availableWidth float64) Size {
	if n.Content == nil {
		return Size{}
	}
	return n.Content.IntrinsicSize(availableWidth)
}

// Area is the space offered to a node. Height may be +Inf.
type Area struct {
	X, Y          float64
	Width, Height float64
	// Fresh is true when nothing precedes the node on the current page, so
	// moving it to the next page would not help.
	Fresh bool
}

// AreaFrom converts a rectangle to an Area.
func AreaFrom(r Rectangle, fresh bool) Area {
	return Area{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Fresh: fresh}
}

// Constraints carries what a parent imposes on a child beyond its area.
type Constraints struct {
	// Base is the containing block content size used for percentages.
	Base Size
	// Forced content-box sizes, e.g. a flexed main size or a stretched
	// cross size.
	Width, Height       float64
	HasWidth, HasHeight bool
}

// Engine lays out node trees.
type Engine struct {
	measurer Measurer
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMeasurer sets the leaf content measurer.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) { e.measurer = m }
}

// WithLogger sets the logger used for fit failures and split tracing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a layout engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{measurer: contentMeasurer{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout validates n and lays it out in area. Configuration errors and grid
// placement conflicts are returned as errors; fit failures are reported in
// Result.Diagnostics.
func (e *Engine) Layout(n *Node, area Area) (Result, error) {
	if err := n.Validate(); err != nil {
		return Result{}, err
	}
	ctx := e.newContext()
	res, err := ctx.layout(n, area, Constraints{Base: Size{area.Width, area.Height}})
	if err != nil {
		return Result{}, err
	}
	res.Diagnostics = *ctx.diags
	return res, nil
}

// IntrinsicSize returns the margin-box size n would take when given at most
// availableWidth points of width and unbounded height.
func (e *Engine) IntrinsicSize(n *Node, availableWidth float64) Size {
	ctx := e.newContext().measuringContext()
	base := Size{availableWidth, math.Inf(1)}
	w := math.Min(ctx.outerMaxContentWidth(n, base, availableWidth), availableWidth)
	rs := n.Style.Resolve(base)
	return Size{Width: w, Height: ctx.outerHeightAt(n, base, nonNegative(w-rs.Outer().Horizontal()))}
}

// Context is the state of one top-level layout pass. It is created fresh for
// every Engine.Layout call and handed down the recursion.
type Context struct {
	measurer  Measurer
	logger    *zap.Logger
	diags     *[]Diagnostic
	measuring bool
}

func (e *Engine) newContext() *Context {
	return &Context{measurer: e.measurer, logger: e.logger, diags: &[]Diagnostic{}}
}

// measuringContext returns a context for speculative layout: diagnostics
// and logs are discarded.
func (ctx *Context) measuringContext() *Context {
	if ctx.measuring {
		return ctx
	}
	return &Context{measurer: ctx.measurer, logger: zap.NewNop(), diags: &[]Diagnostic{}, measuring: true}
}

func (ctx *Context) report(kind DiagnosticKind, n *Node, format string, args ...any) {
	if ctx.measuring {
		return
	}
	d := Diagnostic{Kind: kind, NodeID: n.ID, Message: fmt.Sprintf(format, args...)}
	*ctx.diags = append(*ctx.diags, d)
	ctx.logger.Warn("layout fit failure",
		zap.Stringer("kind", kind),
		zap.String("node", n.ID),
		zap.String("reason", d.Message))
}

func (ctx *Context) measure(n *Node, availableWidth float64) Size {
	return ctx.measurer.MeasureIntrinsicSize(n, nonNegative(availableWidth))
}

// box is the content box a strategy lays children into.
type box struct {
	X, Y      float64
	Width     float64
	Height    float64
	HasHeight bool
	// Avail is the height left on the page below Y.
	Avail float64
	Fresh bool
	rs    Resolved
}

// heightOrInf returns the definite content height or +Inf.
func (b box) heightOrInf() float64 {
	if b.HasHeight {
		return b.Height
	}
	return math.Inf(1)
}

// inner is what a strategy reports back for a node's content.
type inner struct {
	height   float64
	children []*Fragment
	rules    []Rectangle
	status   Status
	// overflow is the continuation of the node when status is Partial.
	overflow *Node
	// placed replaces the node in the fragment (split leaves).
	placed  *Node
	clipped bool
}

type strategy interface {
	layout(ctx *Context, n *Node, b box) (inner, error)
	// maxContentWidth returns the content-box max-content width of n,
	// bounded by base.Width.
	maxContentWidth(ctx *Context, n *Node, base Size) float64
}

var strategies = map[Kind]strategy{
	KindLeaf:     leafStrategy{},
	KindBlock:    blockStrategy{},
	KindFlex:     flexStrategy{},
	KindGrid:     gridStrategy{},
	KindMulticol: multicolStrategy{},
}

func strategyFor(k Kind) strategy {
	if s, ok := strategies[k]; ok {
		return s
	}
	return blockStrategy{}
}

// layout resolves n's box model, runs its strategy and handles fit
// failures, KeepTogether and definite heights that cross the page end.
func (ctx *Context) layout(n *Node, area Area, c Constraints) (Result, error) {
	rs := n.Style.Resolve(c.Base)
	outer := rs.Outer()
	insets := rs.Insets()

	var width float64
	switch {
	case c.HasWidth:
		width = c.Width
	case rs.HasWidth:
		width = rs.Width
	case n.IsReplaced():
		width = rs.ClampWidth(ctx.measure(n, area.Width-outer.Horizontal()).Width)
	default:
		width = rs.ClampWidth(nonNegative(area.Width - outer.Horizontal()))
	}
	if n.IsReplaced() && width+outer.Horizontal() > area.Width+epsilon {
		ctx.report(Clipped, n, "width %.2f exceeds available width %.2f", width+outer.Horizontal(), area.Width)
	}

	b := box{
		X:     area.X + outer.Left,
		Y:     area.Y + outer.Top,
		Width: width,
		Avail: area.Height - outer.Vertical(),
		Fresh: area.Fresh,
		rs:    rs,
	}
	switch {
	case c.HasHeight:
		b.Height, b.HasHeight = c.Height, true
	case rs.HasHeight:
		b.Height, b.HasHeight = rs.Height, true
	}

	in, err := strategyFor(n.Kind).layout(ctx, n, b)
	if err != nil {
		return Result{}, err
	}

	if in.status == Nothing || (in.status == Partial && n.Style.KeepTogether) {
		if !area.Fresh {
			return Result{Status: Nothing, Overflow: n}, nil
		}
		return ctx.force(n, area, c, "content does not fit an empty area")
	}

	height := rs.ClampHeight(in.height)
	if b.HasHeight {
		height = b.Height
	}

	switch in.status {
	case Full:
		if height > b.Avail+epsilon {
			switch {
			case n.HasChildren() && b.HasHeight && !n.Style.KeepTogether && b.Avail > epsilon:
				// The content fit but the box itself runs past the page.
				in.status = Partial
				in.overflow = n.continuation(nil)
				height = b.Avail
				setRemainingHeight(in.overflow, rs, b.Height-height)
			case forced(in.children):
				// A child was already forced and reported.
				in.clipped = true
			case !area.Fresh:
				return Result{Status: Nothing, Overflow: n}, nil
			default:
				ctx.report(FitFailure, n, "height %.2f exceeds available height %.2f", height, b.Avail)
				in.clipped = true
			}
		}
	case Partial:
		if b.HasHeight {
			used := math.Max(in.height, math.Min(b.Height, nonNegative(b.Avail)))
			setRemainingHeight(in.overflow, rs, b.Height-used)
			height = used
		} else if rs.MinHeight > 0 {
			in.overflow.Style.MinHeight = Points(nonNegative(rs.MinHeight - height))
			if n.Style.BoxSizing == BorderBox {
				in.overflow.Style.MinHeight.Value += insets.Vertical()
			}
		}
		ctx.logger.Debug("split node",
			zap.String("node", n.ID),
			zap.Stringer("kind", n.Kind),
			zap.Float64("placed", height))
	}

	placed := in.placed
	if placed == nil {
		placed = n
	}
	frag := &Fragment{
		Node: placed,
		Rect: Rectangle{
			X:      area.X + rs.Margin.Left,
			Y:      area.Y + rs.Margin.Top,
			Width:  width + insets.Horizontal(),
			Height: height + insets.Vertical(),
		},
		Content:  Rectangle{X: b.X, Y: b.Y, Width: width, Height: height},
		Children: in.children,
		Rules:    in.rules,
		Clipped:  in.clipped,
	}
	return Result{
		Status:   in.status,
		Fragment: frag,
		Overflow: in.overflow,
		Width:    width + outer.Horizontal(),
		Height:   height + outer.Vertical(),
	}, nil
}

// force lays n out ignoring the page end. It is used when n cannot be
// placed on an area nothing else competes for.
func (ctx *Context) force(n *Node, area Area, c Constraints, reason string) (Result, error) {
	ctx.report(FitFailure, n, "%s; forcing it onto the page", reason)
	unbounded := area
	unbounded.Height = math.Inf(1)
	unbounded.Fresh = true
	res, err := ctx.layout(n, unbounded, c)
	if err != nil {
		return Result{}, err
	}
	if res.Fragment != nil {
		res.Fragment.Clipped = true
	}
	return res, nil
}

func forced(children []*Fragment) bool {
	for _, c := range children {
		if c.Clipped {
			return true
		}
	}
	return false
}

// setRemainingHeight gives a continuation the definite height its original
// had left over.
func setRemainingHeight(cont *Node, rs Resolved, remaining float64) {
	h := nonNegative(remaining)
	if cont.Style.BoxSizing == BorderBox {
		h += rs.Insets().Vertical()
	}
	cont.Style.Height = Points(h)
	cont.Style.MinHeight = Auto()
}

// outerMaxContentWidth returns n's margin-box max-content width, bounded by
// available.
func (ctx *Context) outerMaxContentWidth(n *Node, base Size, available float64) float64 {
	rs := n.Style.Resolve(base)
	outer := rs.Outer().Horizontal()
	if rs.HasWidth {
		return rs.Width + outer
	}
	inner := Size{Width: nonNegative(available - outer), Height: base.Height}
	w := strategyFor(n.Kind).maxContentWidth(ctx, n, inner)
	return rs.ClampWidth(math.Min(w, inner.Width)) + outer
}

// outerHeightAt returns n's margin-box height when its content box is width
// points wide and height is unbounded.
func (ctx *Context) outerHeightAt(n *Node, base Size, width float64) float64 {
	m := ctx.measuringContext()
	rs := n.Style.Resolve(base)
	area := Area{Width: width + rs.Outer().Horizontal(), Height: math.Inf(1), Fresh: true}
	res, err := m.layout(n, area, Constraints{Base: base, Width: width, HasWidth: true})
	if err != nil {
		return 0
	}
	return res.Height
}

// leafStrategy lays out measured content.
type leafStrategy struct{}

func (leafStrategy) layout(ctx *Context, n *Node, b box) (inner, error) {
	h := ctx.measure(n, b.Width).Height
	if b.HasHeight || h <= b.Avail+epsilon {
		return inner{height: h}, nil
	}
	if sp, ok := n.Content.(Splitter); ok && !n.Style.KeepTogether {
		head, tail, ok := sp.Split(b.Width, b.Avail)
		if ok && head != nil && tail != nil {
			placed := n.withContent(head)
			return inner{
				height:   ctx.measure(placed, b.Width).Height,
				status:   Partial,
				placed:   placed,
				overflow: n.continuation(nil).withContent(tail),
			}, nil
		}
	}
	return inner{status: Nothing}, nil
}

func (leafStrategy) maxContentWidth(ctx *Context, n *Node, base Size) float64 {
	return ctx.measure(n, base.Width).Width
}
