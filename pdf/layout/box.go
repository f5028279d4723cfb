package layout

import (
	"fmt"
	"math"
	"strconv"
)

// LengthKind discriminates Length values.
type LengthKind int

const (
	LengthAuto LengthKind = iota
	LengthFixed
	LengthPercent
	// LengthFraction is only meaningful for grid tracks.
	LengthFraction
)

// Length is a size specification: auto, a fixed number of points, a
// percentage of the containing block, or a grid fraction.
type Length struct {
	Kind  LengthKind
	Value float64
}

// Auto returns the auto length.
func Auto() Length { return Length{} }

// Points returns a fixed length.
func Points(v float64) Length { return Length{Kind: LengthFixed, Value: v} }

// Percent returns a percentage length (50 means half the base).
func Percent(v float64) Length { return Length{Kind: LengthPercent, Value: v} }

// Fraction returns a grid track fraction (the fr unit).
func Fraction(v float64) Length { return Length{Kind: LengthFraction, Value: v} }

// IsAuto reports whether the length is auto.
func (l Length) IsAuto() bool { return l.Kind == LengthAuto }

// Resolve returns the length in points against base. The second result is
// false when the length is not definite (auto, fraction, or a percentage of
// an unbounded base).
func (l Length) Resolve(base float64) (float64, bool) {
	switch l.Kind {
	case LengthFixed:
		return l.Value, true
	case LengthPercent:
		if math.IsInf(base, 0) || math.IsNaN(base) {
			return 0, false
		}
		return l.Value * base / 100, true
	}
	return 0, false
}

func (l Length) String() string {
	switch l.Kind {
	case LengthFixed:
		return strconv.FormatFloat(l.Value, 'f', -1, 64) + "pt"
	case LengthPercent:
		return strconv.FormatFloat(l.Value, 'f', -1, 64) + "%"
	case LengthFraction:
		return strconv.FormatFloat(l.Value, 'f', -1, 64) + "fr"
	}
	return "auto"
}

// BoxSizing selects which box a specified width or height applies to.
type BoxSizing int

const (
	ContentBox BoxSizing = iota
	BorderBox
)

func (b BoxSizing) String() string {
	if b == BorderBox {
		return "border-box"
	}
	return "content-box"
}

// Style holds the box-model properties shared by every node kind.
type Style struct {
	Width, Height       Length
	MinWidth, MinHeight Length
	// Auto max sizes mean "none".
	MaxWidth, MaxHeight Length

	Margin  Margins
	Border  Margins
	Padding Margins

	BoxSizing BoxSizing

	// KeepTogether suppresses splitting this node across pages.
	KeepTogether bool
}

// Resolved is the outcome of resolving a Style against a containing block.
// All sizes are content-box sizes.
type Resolved struct {
	Width, Height       float64
	HasWidth, HasHeight bool

	MinWidth, MaxWidth   float64
	MinHeight, MaxHeight float64

	Margin  Margins
	Border  Margins
	Padding Margins
}

// Resolve computes the content-box constraints of the style. Percentages
// resolve against base, the containing block's content box. The function is
// pure.
func (s Style) Resolve(base Size) Resolved {
	r := Resolved{
		Margin:    s.Margin,
		Border:    s.Border,
		Padding:   s.Padding,
		MaxWidth:  math.Inf(1),
		MaxHeight: math.Inf(1),
	}
	insetH := s.Border.Horizontal() + s.Padding.Horizontal()
	insetV := s.Border.Vertical() + s.Padding.Vertical()

	content := func(l Length, base, inset float64) (float64, bool) {
		v, ok := l.Resolve(base)
		if !ok {
			return 0, false
		}
		if s.BoxSizing == BorderBox {
			v = nonNegative(v - inset)
		}
		return v, true
	}

	if v, ok := content(s.MinWidth, base.Width, insetH); ok {
		r.MinWidth = v
	}
	if v, ok := content(s.MaxWidth, base.Width, insetH); ok {
		r.MaxWidth = math.Max(v, r.MinWidth)
	}
	if v, ok := content(s.MinHeight, base.Height, insetV); ok {
		r.MinHeight = v
	}
	if v, ok := content(s.MaxHeight, base.Height, insetV); ok {
		r.MaxHeight = math.Max(v, r.MinHeight)
	}
	if v, ok := content(s.Width, base.Width, insetH); ok {
		r.Width, r.HasWidth = r.ClampWidth(v), true
	}
	if v, ok := content(s.Height, base.Height, insetV); ok {
		r.Height, r.HasHeight = r.ClampHeight(v), true
	}
	return r
}

// ClampWidth clamps a content width into [MinWidth, MaxWidth].
func (r Resolved) ClampWidth(w float64) float64 {
	return clamp(w, r.MinWidth, r.MaxWidth)
}

// ClampHeight clamps a content height into [MinHeight, MaxHeight].
func (r Resolved) ClampHeight(h float64) float64 {
	return clamp(h, r.MinHeight, r.MaxHeight)
}

// Insets returns border plus padding.
func (r Resolved) Insets() Margins {
	return r.Border.Add(r.Padding)
}

// Outer returns margin plus border plus padding.
func (r Resolved) Outer() Margins {
	return r.Margin.Add(r.Border).Add(r.Padding)
}

func (r Resolved) String() string {
	return fmt.Sprintf("content %gx%g (definite %t/%t)", r.Width, r.Height, r.HasWidth, r.HasHeight)
}
