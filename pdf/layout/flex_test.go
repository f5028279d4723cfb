package layout

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flex(t *testing.T, cfg FlexConfig, children ...*Node) *Node {
	t.Helper()
	n, err := NewFlex("flex", cfg, children...)
	require.NoError(t, err)
	return n
}

func withBasis(n *Node, basis float64, grow, shrink float64) *Node {
	n.Item.Basis = Points(basis)
	n.Item.Grow = grow
	n.Item.Shrink = shrink
	return n
}

func TestFlexGrowFreezesAtMax(t *testing.T) {
	a := withBasis(leaf("a", 10, 20), 50, 1, 1)
	b := withBasis(leaf("b", 10, 20), 50, 1, 1)
	b.Style.MaxWidth = Points(80)
	c := withBasis(leaf("c", 10, 20), 50, 2, 1)

	res := place(t, flex(t, FlexConfig{}, a, b, c), 300, 500)
	require.Equal(t, Full, res.Status)
	requireRects(t, map[string]Rectangle{
		"a": {X: 0, Y: 0, Width: 90, Height: 20},
		"b": {X: 90, Y: 0, Width: 80, Height: 20},
		"c": {X: 170, Y: 0, Width: 130, Height: 20},
	}, res)
	assert.InDelta(t, 20, res.Height, 1e-9)
}

func TestFlexGrowWithGap(t *testing.T) {
	a := withBasis(leaf("a", 10, 20), 50, 1, 1)
	b := withBasis(leaf("b", 10, 20), 50, 1, 1)

	res := place(t, flex(t, FlexConfig{ColumnGap: 10}, a, b), 300, 500)
	requireRects(t, map[string]Rectangle{
		"a": {X: 0, Y: 0, Width: 145, Height: 20},
		"b": {X: 155, Y: 0, Width: 145, Height: 20},
	}, res)
}

func TestFlexShrinkFreezesAtMin(t *testing.T) {
	a := withBasis(leaf("a", 10, 20), 100, 0, 1)
	b := withBasis(leaf("b", 10, 20), 100, 0, 1)
	b.Style.MinWidth = Points(90)
	c := withBasis(leaf("c", 10, 20), 100, 0, 1)

	res := place(t, flex(t, FlexConfig{}, a, b, c), 200, 500)
	requireRects(t, map[string]Rectangle{
		"a": {X: 0, Y: 0, Width: 55, Height: 20},
		"b": {X: 55, Y: 0, Width: 90, Height: 20},
		"c": {X: 145, Y: 0, Width: 55, Height: 20},
	}, res)
}

func TestFlexShrinkAllFrozenOverflows(t *testing.T) {
	var items []*Node
	for i := 0; i < 3; i++ {
		n := withBasis(leaf(fmt.Sprintf("i%d", i), 10, 20), 100, 0, 1)
		n.Style.MinWidth = Points(80)
		items = append(items, n)
	}
	res := place(t, flex(t, FlexConfig{}, items...), 200, 500)
	got := rects(res)
	var sum float64
	for i := 0; i < 3; i++ {
		r := got[fmt.Sprintf("i%d", i)]
		assert.InDelta(t, 80, r.Width, 1e-9)
		sum += r.Width
	}
	assert.InDelta(t, 240, sum, 1e-9)
}

func TestFlexZeroWeightsKeepHypotheticalSizes(t *testing.T) {
	a := withBasis(leaf("a", 10, 20), 60, 0, 0)
	b := withBasis(leaf("b", 10, 20), 70, 0, 0)

	res := place(t, flex(t, FlexConfig{}, a, b), 300, 500)
	requireRects(t, map[string]Rectangle{
		"a": {X: 0, Y: 0, Width: 60, Height: 20},
		"b": {X: 60, Y: 0, Width: 70, Height: 20},
	}, res)

	res = place(t, flex(t, FlexConfig{}, a, b), 100, 500)
	requireRects(t, map[string]Rectangle{
		"a": {X: 0, Y: 0, Width: 60, Height: 20},
		"b": {X: 60, Y: 0, Width: 70, Height: 20},
	}, res)
}

func TestFlexConservationProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		const available = 400.0
		count := 2 + rng.Intn(4)
		gap := float64(rng.Intn(3) * 5)
		grow := rng.Intn(2) == 0

		items := make([]*flexItem, count)
		for i := range items {
			n := leaf(fmt.Sprintf("i%d", i), 10, 10)
			n.Item.Grow = float64(rng.Intn(3))
			n.Item.Shrink = float64(rng.Intn(3))
			it := &flexItem{node: n, minMain: 0, maxMain: 1e9}
			if grow {
				it.basis = float64(10 + rng.Intn(40))
				if i > 0 && rng.Intn(2) == 0 {
					it.maxMain = it.basis + float64(rng.Intn(20))
				}
			} else {
				it.basis = float64(100 + rng.Intn(100))
				if i > 0 && rng.Intn(2) == 0 {
					it.minMain = float64(rng.Intn(100))
				}
			}
			it.hypo = clamp(it.basis, it.minMain, it.maxMain)
			items[i] = it
		}
		// the first item always flexes and is never capped
		items[0].node.Item.Grow, items[0].node.Item.Shrink = 1, 1

		resolveFlexibleLengths(items, available, gap)

		sum := gap * float64(count-1)
		floor := gap * float64(count-1)
		for _, it := range items {
			sum += it.main
			if it.node.Item.Shrink == 0 {
				floor += it.hypo
			} else {
				floor += it.minMain
			}
			assert.LessOrEqual(t, it.main, it.maxMain+1e-9, "round %d", round)
			assert.GreaterOrEqual(t, it.main, it.minMain-1e-9, "round %d", round)
		}
		if grow || floor <= available {
			assert.InDelta(t, available, sum, 1e-6, "round %d", round)
		} else {
			assert.Greater(t, sum, available, "round %d", round)
		}
	}
}

func TestFlexBuildLines(t *testing.T) {
	mk := func(sizes ...float64) []*flexItem {
		items := make([]*flexItem, len(sizes))
		for i, s := range sizes {
			items[i] = &flexItem{hypo: s, main: s}
		}
		return items
	}

	t.Run("nowrap is one line", func(t *testing.T) {
		lines := buildLines(mk(80, 80, 80, 80), 100, 10, false)
		require.Len(t, lines, 1)
		assert.Len(t, lines[0].items, 4)
	})

	t.Run("wrap keeps lines within the width", func(t *testing.T) {
		lines := buildLines(mk(30, 40, 20, 150, 30, 60, 10), 100, 5, true)
		require.Len(t, lines, 4)
		for _, l := range lines {
			if len(l.items) > 1 {
				assert.LessOrEqual(t, l.main, 100.0)
			}
		}
		// the oversized item sits alone on its own line
		assert.Len(t, lines[1].items, 1)
		assert.InDelta(t, 150, lines[1].main, 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, buildLines(nil, 100, 0, true))
	})
}

func TestFlexJustifyContent(t *testing.T) {
	tests := []struct {
		justify Justify
		ax, bx  float64
	}{
		{JustifyFlexStart, 0, 20},
		{JustifyFlexEnd, 60, 80},
		{JustifyCenter, 30, 50},
		{JustifySpaceBetween, 0, 80},
		{JustifySpaceAround, 15, 65},
		{JustifySpaceEvenly, 20, 60},
	}
	for _, tt := range tests {
		t.Run(tt.justify.String(), func(t *testing.T) {
			n := flex(t, FlexConfig{JustifyContent: tt.justify}, leaf("a", 20, 10), leaf("b", 20, 10))
			got := rects(place(t, n, 100, 500))
			assert.InDelta(t, tt.ax, got["a"].X, 1e-9)
			assert.InDelta(t, tt.bx, got["b"].X, 1e-9)
		})
	}
}

func TestFlexRowReverse(t *testing.T) {
	n := flex(t, FlexConfig{Direction: RowReverse}, leaf("a", 20, 10), leaf("b", 20, 10))
	got := rects(place(t, n, 100, 500))
	assert.InDelta(t, 80, got["a"].X, 1e-9)
	assert.InDelta(t, 60, got["b"].X, 1e-9)
}

func TestFlexAlignItems(t *testing.T) {
	tests := []struct {
		align     Align
		y, height float64
	}{
		{AlignFlexStart, 0, 20},
		{AlignFlexEnd, 80, 20},
		{AlignCenter, 40, 20},
		{AlignStretch, 0, 100},
		{AlignAuto, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			n := flex(t, FlexConfig{AlignItems: tt.align}, leaf("a", 20, 20))
			n.Style.Height = Points(100)
			got := rects(place(t, n, 100, 500))
			assert.InDelta(t, tt.y, got["a"].Y, 1e-9)
			assert.InDelta(t, tt.height, got["a"].Height, 1e-9)
		})
	}
}

func TestFlexExplicitCrossSizeWinsOverStretch(t *testing.T) {
	a := leaf("a", 20, 20)
	a.Style.Height = Points(30)
	b := leaf("b", 20, 20)
	b.Item.AlignSelf = AlignFlexEnd
	n := flex(t, FlexConfig{AlignItems: AlignStretch}, a, b)
	n.Style.Height = Points(100)

	requireRects(t, map[string]Rectangle{
		"a": {X: 0, Y: 0, Width: 20, Height: 30},
		"b": {X: 20, Y: 80, Width: 20, Height: 20},
	}, place(t, n, 100, 500))
}

func TestFlexWrap(t *testing.T) {
	items := func() []*Node {
		return []*Node{leaf("a", 40, 10), leaf("b", 40, 10), leaf("c", 40, 10)}
	}

	t.Run("wrap", func(t *testing.T) {
		res := place(t, flex(t, FlexConfig{Wrap: WrapLines}, items()...), 100, 500)
		requireRects(t, map[string]Rectangle{
			"a": {X: 0, Y: 0, Width: 40, Height: 10},
			"b": {X: 40, Y: 0, Width: 40, Height: 10},
			"c": {X: 0, Y: 10, Width: 40, Height: 10},
		}, res)
		assert.InDelta(t, 20, res.Height, 1e-9)
	})

	t.Run("nowrap shrinks", func(t *testing.T) {
		res := place(t, flex(t, FlexConfig{}, items()...), 100, 500)
		got := rects(res)
		for _, id := range []string{"a", "b", "c"} {
			assert.InDelta(t, 100.0/3, got[id].Width, 1e-6)
			assert.InDelta(t, 0, got[id].Y, 1e-9)
		}
	})

	t.Run("wrap-reverse", func(t *testing.T) {
		res := place(t, flex(t, FlexConfig{Wrap: WrapReverse}, items()...), 100, 500)
		requireRects(t, map[string]Rectangle{
			"a": {X: 0, Y: 10, Width: 40, Height: 10},
			"b": {X: 40, Y: 10, Width: 40, Height: 10},
			"c": {X: 0, Y: 0, Width: 40, Height: 10},
		}, res)
	})

	t.Run("row gap", func(t *testing.T) {
		res := place(t, flex(t, FlexConfig{Wrap: WrapLines, RowGap: 5}, items()...), 100, 500)
		assert.InDelta(t, 15, rects(res)["c"].Y, 1e-9)
		assert.InDelta(t, 25, res.Height, 1e-9)
	})
}

func TestFlexAlignContent(t *testing.T) {
	tests := []struct {
		align  AlignContent
		y1, y2 float64
		h      float64
	}{
		{ContentFlexStart, 0, 10, 10},
		{ContentFlexEnd, 80, 90, 10},
		{ContentCenter, 40, 50, 10},
		{ContentSpaceBetween, 0, 90, 10},
		{ContentStretch, 0, 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			n := flex(t, FlexConfig{Wrap: WrapLines, AlignContent: tt.align},
				leaf("a", 60, 10), leaf("b", 60, 10))
			n.Style.Height = Points(100)
			got := rects(place(t, n, 100, 500))
			assert.InDelta(t, tt.y1, got["a"].Y, 1e-9)
			assert.InDelta(t, tt.y2, got["b"].Y, 1e-9)
			assert.InDelta(t, tt.h, got["b"].Height, 1e-9)
		})
	}
}

func TestFlexColumn(t *testing.T) {
	n := flex(t, FlexConfig{Direction: Column, RowGap: 5}, leaf("a", 50, 30), leaf("b", 50, 30))
	res := place(t, n, 200, 500)
	requireRects(t, map[string]Rectangle{
		"a": {X: 0, Y: 0, Width: 200, Height: 30},
		"b": {X: 0, Y: 35, Width: 200, Height: 30},
	}, res)
	assert.InDelta(t, 65, res.Height, 1e-9)

	n = flex(t, FlexConfig{Direction: ColumnReverse, AlignItems: AlignCenter}, leaf("a", 50, 30), leaf("b", 50, 30))
	requireRects(t, map[string]Rectangle{
		"a": {X: 75, Y: 30, Width: 50, Height: 30},
		"b": {X: 75, Y: 0, Width: 50, Height: 30},
	}, place(t, n, 200, 500))
}

func TestFlexColumnGrowsIntoDefiniteHeight(t *testing.T) {
	a := leaf("a", 50, 30)
	b := leaf("b", 50, 30)
	b.Item.Grow = 1
	n := flex(t, FlexConfig{Direction: Column}, a, b)
	n.Style.Height = Points(200)

	requireRects(t, map[string]Rectangle{
		"a": {X: 0, Y: 0, Width: 100, Height: 30},
		"b": {X: 0, Y: 30, Width: 100, Height: 170},
	}, place(t, n, 100, 500))
}

func TestFlexRowSplitsBetweenLines(t *testing.T) {
	var items []*Node
	for i := 0; i < 6; i++ {
		items = append(items, leaf(fmt.Sprintf("i%d", i), 50, 100))
	}
	n := flex(t, FlexConfig{Wrap: WrapLines}, items...)

	res := place(t, n, 100, 250)
	require.Equal(t, Partial, res.Status)
	assert.InDelta(t, 200, res.Height, 1e-9)
	got := rects(res)
	assert.Len(t, got, 5) // container plus four items
	require.NotNil(t, res.Overflow)
	require.Len(t, res.Overflow.Children, 2)
	assert.Equal(t, "i4", res.Overflow.Children[0].ID)
	assert.Equal(t, "i5", res.Overflow.Children[1].ID)

	next := place(t, res.Overflow, 100, 250)
	assert.Equal(t, Full, next.Status)
	requireRects(t, map[string]Rectangle{
		"i4": {X: 0, Y: 0, Width: 50, Height: 100},
		"i5": {X: 50, Y: 0, Width: 50, Height: 100},
	}, next)
}

func TestFlexWrapReverseKeepsLineOrderAcrossPages(t *testing.T) {
	var items []*Node
	for i := 0; i < 4; i++ {
		items = append(items, leaf(fmt.Sprintf("l%d", i), 100, 60))
	}
	n := flex(t, FlexConfig{Wrap: WrapReverse}, items...)

	tall := place(t, n, 100, 500)
	require.Equal(t, Full, tall.Status)
	got := rects(tall)
	for i := 1; i < 4; i++ {
		assert.Less(t, got[fmt.Sprintf("l%d", i)].Y, got[fmt.Sprintf("l%d", i-1)].Y)
	}

	var pages [][]string
	for next := n; next != nil; {
		res := place(t, next, 100, 70)
		var ids []string
		for id := range rects(res) {
			if id != "flex" {
				ids = append(ids, id)
			}
		}
		pages = append(pages, ids)
		next = res.Overflow
		require.LessOrEqual(t, len(pages), 4)
	}
	assert.Equal(t, [][]string{{"l3"}, {"l2"}, {"l1"}, {"l0"}}, pages)
}

func TestFlexRowSplitsInsideLine(t *testing.T) {
	text := NewLeaf("text", lines{count: 10, height: 10})
	text.Item.Basis = Points(50)
	side := leaf("side", 50, 20)
	n := flex(t, FlexConfig{}, text, side)

	res := place(t, n, 100, 60)
	require.Equal(t, Partial, res.Status)
	got := rects(res)
	assert.InDelta(t, 60, got["text"].Height, 1e-9)
	assert.InDelta(t, 20, got["side"].Height, 1e-9)
	require.Len(t, res.Overflow.Children, 1)
	assert.Equal(t, lines{count: 4, height: 10}, res.Overflow.Children[0].Content)
}

func TestFlexColumnSplitsBetweenItems(t *testing.T) {
	var items []*Node
	for i := 0; i < 4; i++ {
		items = append(items, leaf(fmt.Sprintf("i%d", i), 50, 40))
	}
	n := flex(t, FlexConfig{Direction: Column}, items...)

	res := place(t, n, 100, 100)
	require.Equal(t, Partial, res.Status)
	assert.InDelta(t, 80, res.Height, 1e-9)
	require.Len(t, res.Overflow.Children, 2)
	assert.Equal(t, "i2", res.Overflow.Children[0].ID)
}

func TestFlexSplitConservation(t *testing.T) {
	build := func() *Node {
		var items []*Node
		for i := 0; i < 7; i++ {
			items = append(items, leaf(fmt.Sprintf("i%d", i), 40, float64(30+10*i)))
		}
		return flex(t, FlexConfig{Wrap: WrapLines, ColumnGap: 5, RowGap: 5}, items...)
	}

	whole := rects(place(t, build(), 100, 1e9))

	seen := map[string]Rectangle{}
	node := build()
	for page := 0; node != nil; page++ {
		require.Less(t, page, 10)
		res := place(t, node, 100, 120)
		for id, r := range rects(res) {
			if id == "flex" {
				continue
			}
			_, dup := seen[id]
			require.False(t, dup, "%s placed twice", id)
			seen[id] = r
		}
		node = nil
		if res.Status == Partial {
			node = res.Overflow
		}
	}

	require.Len(t, seen, 7)
	for id, r := range seen {
		assert.InDelta(t, whole[id].Width, r.Width, 1e-9, id)
		assert.InDelta(t, whole[id].Height, r.Height, 1e-9, id)
	}
}

func TestFlexKeepTogetherItemMovesToNextLine(t *testing.T) {
	text := NewLeaf("text", lines{count: 10, height: 10})
	text.Item.Basis = Points(100)
	text.Style.KeepTogether = true
	first := leaf("first", 100, 50)

	n := flex(t, FlexConfig{Wrap: WrapLines}, first, text)
	res := place(t, n, 100, 80)
	require.Equal(t, Partial, res.Status)
	got := rects(res)
	assert.NotContains(t, got, "text")
	require.Len(t, res.Overflow.Children, 1)
	assert.Same(t, text, res.Overflow.Children[0])
}

func TestSetFlexRejectsNegativeFactors(t *testing.T) {
	n := leaf("a", 10, 10)
	err := n.SetFlex(-1, 1)
	require.ErrorIs(t, err, ErrInvalidFlexFactor)
	err = n.SetFlex(1, -1)
	require.ErrorIs(t, err, ErrInvalidFlexFactor)
	require.NoError(t, n.SetFlex(2, 0))
	assert.Equal(t, 2.0, n.Item.Grow)

	n.Item.Grow = -3
	_, err = NewEngine().Layout(flex(t, FlexConfig{}, n), Area{Width: 100, Height: 100, Fresh: true})
	require.ErrorIs(t, err, ErrInvalidFlexFactor)
}

func TestFlexConfigRejectsNegativeGap(t *testing.T) {
	_, err := NewFlex("f", FlexConfig{RowGap: -1})
	require.ErrorIs(t, err, ErrInvalidGap)
	var pe *PropertyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "f", pe.Node)
	assert.Equal(t, "row-gap", pe.Property)
}

func TestDistribute(t *testing.T) {
	start, between := distribute(JustifySpaceBetween, 60, 1)
	assert.Zero(t, start)
	assert.Zero(t, between)

	start, _ = distribute(JustifySpaceAround, -20, 2)
	assert.InDelta(t, -10, start, 1e-9)

	start, between = distribute(JustifySpaceEvenly, 30, 2)
	assert.InDelta(t, 10, start, 1e-9)
	assert.InDelta(t, 10, between, 1e-9)
}
