package layout

import "math"

// flexItem is the per-pass state of one flex container child.
type flexItem struct {
	node  *Node
	rs    Resolved
	align Align

	// Margin, border and padding along each axis.
	outerMain, outerCross float64

	basis            float64
	hypo             float64
	minMain, maxMain float64
	main             float64
	frozen           bool

	minCross, maxCross float64
	cross              float64
	definiteCross      bool
	stretched          bool

	// Margin-box offsets inside the container content box.
	mainPos, crossPos float64
}

func (it *flexItem) outerHypo() float64 { return it.hypo + it.outerMain }

func (it *flexItem) outerSize() float64 { return it.main + it.outerMain }

func (it *flexItem) outerCrossSize() float64 { return it.cross + it.outerCross }

func (it *flexItem) clampCross(v float64) float64 { return clamp(v, it.minCross, it.maxCross) }

// collectFlexItems resolves the flex base size and hypothetical main size of
// every child of n.
func (ctx *Context) collectFlexItems(n *Node, fc *FlexConfig, base Size) []*flexItem {
	row := fc.Direction.IsRow()
	items := make([]*flexItem, 0, len(n.Children))
	for _, c := range n.Children {
		rs := c.Style.Resolve(base)
		outer := rs.Outer()
		it := &flexItem{node: c, rs: rs, align: fc.alignFor(c.Item)}
		if row {
			it.outerMain, it.outerCross = outer.Horizontal(), outer.Vertical()
			it.minMain, it.maxMain = rs.MinWidth, rs.MaxWidth
			it.minCross, it.maxCross = rs.MinHeight, rs.MaxHeight
			it.cross, it.definiteCross = rs.Height, rs.HasHeight
		} else {
			it.outerMain, it.outerCross = outer.Vertical(), outer.Horizontal()
			it.minMain, it.maxMain = rs.MinHeight, rs.MaxHeight
			it.minCross, it.maxCross = rs.MinWidth, rs.MaxWidth
			it.cross, it.definiteCross = rs.Width, rs.HasWidth
		}
		it.basis = ctx.flexBasis(it, row, base)
		it.hypo = clamp(it.basis, it.minMain, it.maxMain)
		it.main = it.hypo
		items = append(items, it)
	}
	return items
}

// flexBasis uses a definite flex-basis, then a definite main size, and
// finally measures the content.
func (ctx *Context) flexBasis(it *flexItem, row bool, base Size) float64 {
	c := it.node
	containerMain, inset := base.Width, it.rs.Insets().Horizontal()
	if !row {
		containerMain, inset = base.Height, it.rs.Insets().Vertical()
	}
	if v, ok := c.Item.Basis.Resolve(containerMain); ok {
		if c.Style.BoxSizing == BorderBox {
			v = nonNegative(v - inset)
		}
		return v
	}
	if row {
		if it.rs.HasWidth {
			return it.rs.Width
		}
		avail := Size{Width: nonNegative(base.Width - it.outerMain), Height: base.Height}
		return math.Min(strategyFor(c.Kind).maxContentWidth(ctx, c, avail), avail.Width)
	}
	if it.rs.HasHeight {
		return it.rs.Height
	}
	return nonNegative(ctx.outerHeightAt(c, base, ctx.columnItemWidth(it, base.Width, true)) - it.outerMain)
}

// columnItemWidth returns the cross size of an item in a column container.
// When stretch is set, stretched items take the whole container width.
func (ctx *Context) columnItemWidth(it *flexItem, containerWidth float64, stretch bool) float64 {
	if it.definiteCross {
		return it.cross
	}
	avail := nonNegative(containerWidth - it.outerCross)
	if stretch && it.align == AlignStretch {
		return it.clampCross(avail)
	}
	w := strategyFor(it.node.Kind).maxContentWidth(ctx, it.node, Size{Width: avail, Height: math.Inf(1)})
	return it.clampCross(math.Min(w, avail))
}

// measureCross computes the natural cross size of every item once main sizes
// are final.
func (ctx *Context) measureCross(items []*flexItem, row bool, base Size) {
	for _, it := range items {
		if it.definiteCross {
			continue
		}
		if row {
			it.cross = it.clampCross(ctx.outerHeightAt(it.node, base, it.main) - it.outerCross)
		} else {
			it.cross = ctx.columnItemWidth(it, base.Width, false)
		}
	}
}

// resolveFlexibleLengths grows or shrinks the items of one line so that their
// outer sizes plus gaps fill available. Items that hit their min or max are
// frozen and the remaining free space is distributed again until nothing
// changes.
func resolveFlexibleLengths(items []*flexItem, available, gap float64) {
	if len(items) == 0 || math.IsInf(available, 0) {
		return
	}
	gaps := gap * float64(len(items)-1)
	used := gaps
	for _, it := range items {
		used += it.outerHypo()
	}
	grow := used < available
	for _, it := range items {
		it.main = it.hypo
		factor := it.node.Item.Shrink
		if grow {
			factor = it.node.Item.Grow
		}
		it.frozen = factor == 0 || (grow && it.basis > it.hypo) || (!grow && it.basis < it.hypo)
	}

	for {
		free := available - gaps
		var weights float64
		for _, it := range items {
			if it.frozen {
				free -= it.main + it.outerMain
				continue
			}
			free -= it.hypo + it.outerMain
			weights += flexWeight(it, grow)
		}
		if weights <= 0 {
			return
		}

		var violation float64
		raw := make([]float64, len(items))
		targets := make([]float64, len(items))
		for i, it := range items {
			if it.frozen {
				continue
			}
			raw[i] = it.hypo + free*flexWeight(it, grow)/weights
			targets[i] = clamp(raw[i], it.minMain, it.maxMain)
			violation += targets[i] - raw[i]
		}

		switch {
		case math.Abs(violation) <= epsilon:
			for i, it := range items {
				if !it.frozen {
					it.main = targets[i]
					it.frozen = true
				}
			}
			return
		case violation > 0:
			// min violations
			for i, it := range items {
				if !it.frozen && targets[i] > raw[i] {
					it.main = targets[i]
					it.frozen = true
				}
			}
		default:
			// max violations
			for i, it := range items {
				if !it.frozen && targets[i] < raw[i] {
					it.main = targets[i]
					it.frozen = true
				}
			}
		}
	}
}

// flexWeight is flex-grow when growing and flex-shrink scaled by the
// hypothetical size when shrinking.
func flexWeight(it *flexItem, grow bool) float64 {
	if grow {
		return it.node.Item.Grow
	}
	return it.node.Item.Shrink * it.hypo
}
