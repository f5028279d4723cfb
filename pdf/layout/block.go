package layout

// blockStrategy stacks children vertically, each filling the content width.
type blockStrategy struct{}

func (blockStrategy) layout(ctx *Context, n *Node, b box) (inner, error) {
	base := Size{Width: b.Width, Height: b.heightOrInf()}
	var (
		y     float64
		frags []*Fragment
	)
	for i, c := range n.Children {
		area := Area{
			X:      b.X,
			Y:      b.Y + y,
			Width:  b.Width,
			Height: b.Avail - y,
			Fresh:  b.Fresh && y <= epsilon,
		}
		res, err := ctx.layout(c, area, Constraints{Base: base})
		if err != nil {
			return inner{}, err
		}
		switch res.Status {
		case Full:
			frags = append(frags, res.Fragment)
			y += res.Height
		case Partial:
			frags = append(frags, res.Fragment)
			y += res.Height
			rest := append([]*Node{res.Overflow}, n.Children[i+1:]...)
			return inner{height: y, children: frags, status: Partial, overflow: n.continuation(rest)}, nil
		case Nothing:
			if len(frags) == 0 {
				return inner{status: Nothing}, nil
			}
			rest := append([]*Node(nil), n.Children[i:]...)
			return inner{height: y, children: frags, status: Partial, overflow: n.continuation(rest)}, nil
		}
	}
	return inner{height: y, children: frags}, nil
}

func (blockStrategy) maxContentWidth(ctx *Context, n *Node, base Size) float64 {
	var w float64
	for _, c := range n.Children {
		if cw := ctx.outerMaxContentWidth(c, base, base.Width); cw > w {
			w = cw
		}
	}
	return w
}
