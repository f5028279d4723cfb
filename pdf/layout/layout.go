// Package layout sizes and places rectangular boxes on abstract pages.
//
// A document is a tree of *Node values. Each node carries a typed
// configuration for the way it arranges its children (block flow, flexible
// box, grid or multi-column) and the engine computes, for every node, a
// border-box rectangle inside the area its parent allots to it. Content that
// does not fit the current page area is returned as a continuation node that
// the Paginator re-offers on the next page.
//
// All geometry produced by this package lives in layout space: X grows to the
// right and Y grows downward from the top edge of the page. Use
// Rectangle.ToPDF to convert to PDF user space.
package layout

// Unit represents a measurement unit.
type Unit float64

const (
	// Points - the base PDF unit (1/72 inch)
	Pt Unit = 1
	// Inches
	In Unit = 72
	// Centimeters
	Cm Unit = 72 / 2.54
	// Millimeters
	Mm Unit = 72 / 25.4
	// Pixels at 96 DPI
	Px Unit = 72.0 / 96
)

// ToPoints converts a value in the given unit to points.
func ToPoints(value float64, unit Unit) float64 {
	return value * float64(unit)
}

// PageSize represents standard page dimensions.
type PageSize struct {
	Width  float64
	Height float64
}

// Standard page sizes in points
var (
	A3 = PageSize{842, 1191}
	A4 = PageSize{595, 842}
	A5 = PageSize{420, 595}

	Letter  = PageSize{612, 792}
	Legal   = PageSize{612, 1008}
	Tabloid = PageSize{792, 1224}
)

// Landscape returns the page size in landscape orientation.
func (p PageSize) Landscape() PageSize {
	if p.Width < p.Height {
		return PageSize{p.Height, p.Width}
	}
	return p
}

// Portrait returns the page size in portrait orientation.
func (p PageSize) Portrait() PageSize {
	if p.Width > p.Height {
		return PageSize{p.Height, p.Width}
	}
	return p
}

// Size is a width/height pair. Either value may be +Inf for unbounded space.
type Size struct {
	Width  float64
	Height float64
}

// Rectangle is an axis-aligned rectangle in layout space: (X, Y) is the
// top-left corner.
type Rectangle struct {
	X, Y          float64
	Width, Height float64
}

// Inset returns a rectangle inset by the given margins.
func (r Rectangle) Inset(m Margins) Rectangle {
	return Rectangle{
		X:      r.X + m.Left,
		Y:      r.Y + m.Top,
		Width:  r.Width - m.Horizontal(),
		Height: r.Height - m.Vertical(),
	}
}

// ToPDF converts the rectangle to PDF user space (origin at the bottom-left
// corner of a page of the given height).
func (r Rectangle) ToPDF(pageHeight float64) Rectangle {
	return Rectangle{X: r.X, Y: pageHeight - r.Y - r.Height, Width: r.Width, Height: r.Height}
}

// Margins represents edge sizes (margin, border or padding widths).
type Margins struct {
	Top, Right, Bottom, Left float64
}

// NewMargins creates new margins.
func NewMargins(top, right, bottom, left float64) Margins {
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}
}

// UniformMargins creates margins with the same value on all sides.
func UniformMargins(value float64) Margins {
	return Margins{value, value, value, value}
}

// Horizontal returns left + right.
func (m Margins) Horizontal() float64 {
	return m.Left + m.Right
}

// Vertical returns top + bottom.
func (m Margins) Vertical() float64 {
	return m.Top + m.Bottom
}

// Add returns the edge-wise sum of two margins.
func (m Margins) Add(other Margins) Margins {
	return Margins{
		Top:    m.Top + other.Top,
		Right:  m.Right + other.Right,
		Bottom: m.Bottom + other.Bottom,
		Left:   m.Left + other.Left,
	}
}

// PageLayout represents a page with margins.
type PageLayout struct {
	Size    PageSize
	Margins Margins
}

// NewPageLayout creates a new page layout.
func NewPageLayout(size PageSize) *PageLayout {
	return &PageLayout{
		Size:    size,
		Margins: UniformMargins(72), // 1 inch default
	}
}

// SetMargins sets the margins.
func (p *PageLayout) SetMargins(margins Margins) *PageLayout {
	p.Margins = margins
	return p
}

// ContentArea returns the content area rectangle in layout space.
func (p *PageLayout) ContentArea() Rectangle {
	return Rectangle{
		X:      p.Margins.Left,
		Y:      p.Margins.Top,
		Width:  p.Size.Width - p.Margins.Horizontal(),
		Height: p.Size.Height - p.Margins.Vertical(),
	}
}

const epsilon = 1e-6

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
