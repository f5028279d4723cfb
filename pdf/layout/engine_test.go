package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBoxModelPlacement(t *testing.T) {
	child := NewLeaf("child", fill(50))
	child.Style.Margin = UniformMargins(10)
	child.Style.Padding = UniformMargins(5)
	child.Style.Border = UniformMargins(1)
	root := NewBlock("root", child)

	res := place(t, root, 200, 500)
	require.Equal(t, Full, res.Status)
	assert.InDelta(t, 82, res.Height, 1e-9)

	var frag *Fragment
	_ = res.Fragment.Walk(func(f *Fragment) error {
		if f.Node.ID == "child" {
			frag = f
		}
		return nil
	})
	require.NotNil(t, frag)
	assert.Equal(t, Rectangle{X: 10, Y: 10, Width: 180, Height: 62}, frag.Rect)
	assert.Equal(t, Rectangle{X: 16, Y: 16, Width: 168, Height: 50}, frag.Content)
}

func TestBorderBoxWidth(t *testing.T) {
	child := NewLeaf("child", fill(20))
	child.Style.Width = Points(100)
	child.Style.Padding = UniformMargins(10)
	child.Style.BoxSizing = BorderBox

	requireRects(t, map[string]Rectangle{
		"child": {X: 0, Y: 0, Width: 100, Height: 40},
	}, place(t, NewBlock("root", child), 300, 500))
}

func TestBlockSplitsInsideChild(t *testing.T) {
	root := NewBlock("root", NewLeaf("a", fill(100)), NewLeaf("text", lines{count: 10, height: 10}))

	res := place(t, root, 200, 150)
	require.Equal(t, Partial, res.Status)
	assert.InDelta(t, 150, res.Height, 1e-9)
	got := rects(res)
	assert.InDelta(t, 50, got["text"].Height, 1e-9)
	require.Len(t, res.Overflow.Children, 1)
	assert.Equal(t, lines{count: 5, height: 10}, res.Overflow.Children[0].Content)
}

func TestKeepTogetherMovesWholeBlock(t *testing.T) {
	kept := NewBlock("kept", NewLeaf("text", lines{count: 10, height: 10}))
	kept.Style.KeepTogether = true
	root := NewBlock("root", NewLeaf("a", fill(100)), kept)

	res := place(t, root, 200, 150)
	require.Equal(t, Partial, res.Status)
	assert.NotContains(t, rects(res), "kept")
	require.Len(t, res.Overflow.Children, 1)
	assert.Same(t, kept, res.Overflow.Children[0])
	assert.Empty(t, res.Diagnostics)
}

func TestFitFailureIsForcedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	engine := NewEngine(WithLogger(zap.New(core)))

	big := leaf("big", 100, 500)
	res, err := engine.Layout(NewBlock("root", big), Area{Width: 200, Height: 300, Fresh: true})
	require.NoError(t, err)

	assert.Equal(t, Full, res.Status)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, FitFailure, res.Diagnostics[0].Kind)
	assert.Equal(t, "big", res.Diagnostics[0].NodeID)

	var clipped bool
	_ = res.Fragment.Walk(func(f *Fragment) error {
		if f.Node.ID == "big" {
			clipped = f.Clipped
			assert.InDelta(t, 500, f.Rect.Height, 1e-9)
		}
		return nil
	})
	assert.True(t, clipped)

	entries := logs.FilterMessage("layout fit failure").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "big", entries[0].ContextMap()["node"])
}

func TestOversizedLeafOnUsedAreaMovesOn(t *testing.T) {
	root := NewBlock("root", NewLeaf("a", fill(100)), leaf("big", 100, 500))

	res := place(t, root, 200, 300)
	require.Equal(t, Partial, res.Status)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Overflow.Children, 1)
	assert.Equal(t, "big", res.Overflow.Children[0].ID)
}

func TestDefiniteHeightCarriesOver(t *testing.T) {
	box := NewBlock("box", NewLeaf("a", fill(100)))
	box.Style.Height = Points(400)

	res := place(t, box, 200, 300)
	require.Equal(t, Partial, res.Status)
	assert.InDelta(t, 300, res.Fragment.Rect.Height, 1e-9)
	require.NotNil(t, res.Overflow)
	assert.Empty(t, res.Overflow.Children)
	assert.Equal(t, Points(100), res.Overflow.Style.Height)

	next := place(t, res.Overflow, 200, 300)
	assert.Equal(t, Full, next.Status)
	assert.InDelta(t, 100, next.Height, 1e-9)
}

func TestContinuationDropsTopMargin(t *testing.T) {
	text := NewLeaf("text", lines{count: 10, height: 10})
	text.Style.Margin = NewMargins(20, 0, 0, 0)

	res := place(t, NewBlock("root", text), 200, 70)
	require.Equal(t, Partial, res.Status)
	cont := res.Overflow.Children[0]
	assert.Zero(t, cont.Style.Margin.Top)
	assert.Equal(t, 20.0, text.Style.Margin.Top)
}

func TestIntrinsicSize(t *testing.T) {
	n := flex(t, FlexConfig{ColumnGap: 5}, leaf("a", 30, 20), leaf("b", 40, 10))
	size := NewEngine().IntrinsicSize(n, 500)
	assert.InDelta(t, 75, size.Width, 1e-9)
	assert.InDelta(t, 20, size.Height, 1e-9)

	size = NewEngine().IntrinsicSize(n, 50)
	assert.InDelta(t, 50, size.Width, 1e-9)
}

func TestCustomMeasurer(t *testing.T) {
	calls := 0
	m := MeasurerFunc(func(n *Node, availableWidth float64) Size {
		calls++
		return Size{Width: availableWidth, Height: 42}
	})
	res, err := NewEngine(WithMeasurer(m)).Layout(NewLeaf("x", nil), Area{Width: 100, Height: 100, Fresh: true})
	require.NoError(t, err)
	assert.InDelta(t, 42, res.Height, 1e-9)
	assert.Positive(t, calls)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "full", Full.String())
	assert.Equal(t, "partial", Partial.String())
	assert.Equal(t, "nothing", Nothing.String())
	assert.Equal(t, "clipped", Clipped.String())
	assert.Equal(t, "grid", KindGrid.String())
}

func TestValidateLeavesConfigsUntouched(t *testing.T) {
	nodes := []*Node{
		{ID: "f", Kind: KindFlex},
		{ID: "g", Kind: KindGrid},
		{ID: "m", Kind: KindMulticol},
	}
	for _, n := range nodes {
		require.NoError(t, n.Validate())
		assert.Nil(t, n.Flex, n.ID)
		assert.Nil(t, n.Grid, n.ID)
		assert.Nil(t, n.Multicol, n.ID)
	}

	bad := &Node{ID: "bad", Kind: KindMulticol, Multicol: &MulticolConfig{ColumnCount: -1}}
	require.ErrorIs(t, bad.Validate(), ErrInvalidColumnProperties)
}
