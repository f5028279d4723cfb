package layout

import "sort"

// flexLine is a run of consecutive items laid out along the main axis.
type flexLine struct {
	items []*flexItem
	// main is the sum of outer main sizes plus gaps.
	main  float64
	cross float64
	// pos is the cross offset of the line inside the container content box.
	pos float64
}

// buildLines groups items into lines. Without wrapping a single line holds
// every item; otherwise a line is closed when the next item would overflow
// available and the line is not empty.
func buildLines(items []*flexItem, available, gap float64, wrap bool) []*flexLine {
	if len(items) == 0 {
		return nil
	}
	var lines []*flexLine
	cur := &flexLine{}
	for _, it := range items {
		size := it.outerHypo()
		if wrap && len(cur.items) > 0 && cur.main+gap+size > available+epsilon {
			lines = append(lines, cur)
			cur = &flexLine{}
		}
		if len(cur.items) > 0 {
			cur.main += gap
		}
		cur.items = append(cur.items, it)
		cur.main += size
	}
	return append(lines, cur)
}

// measure recomputes the used main size after flexing and the natural cross
// size from the members.
func (l *flexLine) measure(gap float64) {
	l.main, l.cross = 0, 0
	for i, it := range l.items {
		if i > 0 {
			l.main += gap
		}
		l.main += it.outerSize()
		if c := it.outerCrossSize(); c > l.cross {
			l.cross = c
		}
	}
}

// placeMain positions the items of the line along the main axis of a
// container mainSize long.
func (l *flexLine) placeMain(fc *FlexConfig, mainSize float64) {
	gap := fc.mainGap()
	start, between := distribute(fc.JustifyContent, mainSize-l.main, len(l.items))
	pos := start
	for _, it := range l.items {
		it.mainPos = pos
		pos += it.outerSize() + gap + between
		if fc.Direction.IsReverse() {
			it.mainPos = mainSize - it.mainPos - it.outerSize()
		}
	}
}

// placeCross stretches and aligns the items inside the line.
func (l *flexLine) placeCross(fc *FlexConfig) {
	for _, it := range l.items {
		if it.align == AlignStretch && !it.definiteCross {
			it.cross = it.clampCross(l.cross - it.outerCross)
			it.stretched = true
		}
		free := l.cross - it.outerCrossSize()
		off := alignOffset(it.align, free)
		if fc.Wrap == WrapReverse {
			off = free - off
		}
		it.crossPos = l.pos + off
	}
}

// arrangeLines sizes and positions lines along the cross axis and returns the
// container's content cross size. When definite is false the size is derived
// from the lines and passed through clampSize.
func arrangeLines(fc *FlexConfig, lines []*flexLine, size float64, definite bool, clampSize func(float64) float64) float64 {
	gap := fc.crossGap()
	if len(lines) == 1 && definite {
		lines[0].cross = size
	}
	var total float64
	for i, l := range lines {
		if i > 0 {
			total += gap
		}
		total += l.cross
	}
	if !definite {
		size = clampSize(total)
	}
	if len(lines) == 0 {
		return size
	}

	free := size - total
	var start, between float64
	if fc.AlignContent == ContentStretch {
		if free > 0 {
			extra := free / float64(len(lines))
			for _, l := range lines {
				l.cross += extra
			}
		}
	} else {
		start, between = distribute(fc.AlignContent.justify(), free, len(lines))
	}
	pos := start
	for _, l := range lines {
		l.pos = pos
		pos += l.cross + gap + between
		if fc.Wrap == WrapReverse {
			l.pos = size - l.pos - l.cross
		}
	}
	return size
}

// visualOrder returns the lines sorted top to bottom.
func visualOrder(lines []*flexLine) []*flexLine {
	out := append([]*flexLine(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].pos < out[j].pos })
	return out
}
