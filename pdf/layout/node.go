package layout

import "errors"

// Kind selects the layout strategy of a node.
type Kind int

const (
	KindLeaf Kind = iota
	KindBlock
	KindFlex
	KindGrid
	KindMulticol
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindBlock:
		return "block"
	case KindFlex:
		return "flex"
	case KindGrid:
		return "grid"
	case KindMulticol:
		return "multicol"
	}
	return "unknown"
}

// Content is the payload of a leaf node. It is measured through the
// engine's Measurer.
type Content interface {
	// IntrinsicSize returns the content size when laid out in at most
	// availableWidth points (which may be +Inf for max-content).
	IntrinsicSize(availableWidth float64) Size
	// Replaced reports whether the content has its own intrinsic width
	// (images and similar) instead of filling the available width.
	Replaced() bool
}

// Splitter is implemented by content that can be divided between pages.
type Splitter interface {
	// Split returns the part of the content that fits in height points
	// when laid out width points wide, and the remainder. ok is false when
	// no part fits.
	Split(width, height float64) (head, tail Content, ok bool)
}

// FixedContent is replaced content with a fixed intrinsic size, e.g. an
// image.
type FixedContent struct {
	Width, Height float64
}

// IntrinsicSize returns the fixed size.
func (c FixedContent) IntrinsicSize(float64) Size {
	return Size{Width: c.Width, Height: c.Height}
}

// Replaced returns true.
func (c FixedContent) Replaced() bool { return true }

// FlexItem holds the properties a node uses as a child of a flex container.
type FlexItem struct {
	Grow      float64
	Shrink    float64
	Basis     Length
	AlignSelf Align
}

// DefaultFlexItem returns the initial flex item values (0 1 auto).
func DefaultFlexItem() FlexItem {
	return FlexItem{Grow: 0, Shrink: 1, Basis: Auto()}
}

// GridPlacement holds the 1-based grid line indexes of a grid child. Zero
// means auto. Spans apply to an axis whose lines are not both given.
type GridPlacement struct {
	ColumnStart, ColumnEnd int
	RowStart, RowEnd       int
	ColumnSpan, RowSpan    int
}

// Node is a layout-able box.
type Node struct {
	ID    string
	Kind  Kind
	Style Style

	// Exactly one of these is set, matching Kind.
	Flex     *FlexConfig
	Grid     *GridConfig
	Multicol *MulticolConfig
	Content  Content

	// Properties used when this node is a child of a flex or grid container.
	Item FlexItem
	Cell GridPlacement

	// Anonymous nodes are generated by the engine and are not drawn.
	Anonymous bool

	Children []*Node
}

func newNode(id string, kind Kind, children []*Node) *Node {
	return &Node{ID: id, Kind: kind, Item: DefaultFlexItem(), Children: children}
}

// NewLeaf creates a leaf node holding content.
func NewLeaf(id string, content Content) *Node {
	n := newNode(id, KindLeaf, nil)
	n.Content = content
	return n
}

// NewBlock creates a node that stacks its children vertically.
func NewBlock(id string, children ...*Node) *Node {
	return newNode(id, KindBlock, children)
}

// NewFlex creates a flex container. The configuration is validated.
func NewFlex(id string, cfg FlexConfig, children ...*Node) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, withNode(err, id)
	}
	n := newNode(id, KindFlex, children)
	n.Flex = &cfg
	return n, nil
}

// NewGrid creates a grid container. The configuration is validated.
func NewGrid(id string, cfg GridConfig, children ...*Node) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, withNode(err, id)
	}
	n := newNode(id, KindGrid, children)
	n.Grid = &cfg
	return n, nil
}

// NewMulticol creates a multi-column container. The configuration is
// validated.
func NewMulticol(id string, cfg MulticolConfig, children ...*Node) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, withNode(err, id)
	}
	n := newNode(id, KindMulticol, children)
	n.Multicol = &cfg
	return n, nil
}

// SetFlex sets flex-grow and flex-shrink. Negative factors are rejected.
func (n *Node) SetFlex(grow, shrink float64) error {
	if grow < 0 {
		return &PropertyError{Node: n.ID, Property: "flex-grow", Value: grow, Err: ErrInvalidFlexFactor}
	}
	if shrink < 0 {
		return &PropertyError{Node: n.ID, Property: "flex-shrink", Value: shrink, Err: ErrInvalidFlexFactor}
	}
	n.Item.Grow = grow
	n.Item.Shrink = shrink
	return nil
}

// Append adds children and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// HasChildren reports whether the node arranges child nodes.
func (n *Node) HasChildren() bool {
	return n.Kind != KindLeaf
}

// IsReplaced reports whether the node is a leaf with replaced content.
func (n *Node) IsReplaced() bool {
	return n.Kind == KindLeaf && n.Content != nil && n.Content.Replaced()
}

// Validate checks the whole subtree for configuration errors.
func (n *Node) Validate() error {
	if n.Item.Grow < 0 {
		return &PropertyError{Node: n.ID, Property: "flex-grow", Value: n.Item.Grow, Err: ErrInvalidFlexFactor}
	}
	if n.Item.Shrink < 0 {
		return &PropertyError{Node: n.ID, Property: "flex-shrink", Value: n.Item.Shrink, Err: ErrInvalidFlexFactor}
	}
	var err error
	switch n.Kind {
	case KindFlex:
		cfg := n.Flex
		if cfg == nil {
			cfg = &FlexConfig{}
		}
		err = cfg.Validate()
	case KindGrid:
		cfg := n.Grid
		if cfg == nil {
			cfg = &GridConfig{}
		}
		err = cfg.Validate()
	case KindMulticol:
		cfg := n.Multicol
		if cfg == nil {
			cfg = &MulticolConfig{}
		}
		err = cfg.Validate()
	}
	if err != nil {
		return withNode(err, n.ID)
	}
	for _, c := range n.Children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// continuation returns a copy of n that holds the given children. The top
// margin is dropped since the copy starts at a page break.
func (n *Node) continuation(children []*Node) *Node {
	c := *n
	c.Children = children
	c.Style.Margin.Top = 0
	return &c
}

// withContent returns a copy of the leaf n holding content.
func (n *Node) withContent(content Content) *Node {
	c := *n
	c.Content = content
	return &c
}

func withNode(err error, id string) error {
	var pe *PropertyError
	if errors.As(err, &pe) && pe.Node == "" {
		pe.Node = id
	}
	return err
}
