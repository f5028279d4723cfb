// Package text measures, wraps and splits text set in the standard PDF fonts.
package text

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrFontNotFound = errors.New("font not found")
)

// Standard font names supported for measurement.
const (
	Helvetica            = "Helvetica"
	HelveticaBold        = "Helvetica-Bold"
	HelveticaOblique     = "Helvetica-Oblique"
	HelveticaBoldOblique = "Helvetica-BoldOblique"
	Courier              = "Courier"
	CourierBold          = "Courier-Bold"
	CourierOblique       = "Courier-Oblique"
	CourierBoldOblique   = "Courier-BoldOblique"
)

// unitsPerEm is the glyph space of the standard Type1 fonts.
const unitsPerEm = 1000

// Font holds the metrics of a standard Type1 font in glyph units.
type Font struct {
	Name       string
	Ascender   float64
	Descender  float64
	FixedPitch bool
	// ascii holds widths for U+0020 to U+007E.
	ascii        *[95]float64
	defaultWidth float64
}

var helveticaWidths = [95]float64{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [95]float64{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

// LookupFont returns the metrics of a standard font by name.
func LookupFont(name string) (*Font, error) {
	switch name {
	case Helvetica, HelveticaOblique:
		return &Font{Name: name, Ascender: 718, Descender: -207, ascii: &helveticaWidths, defaultWidth: 556}, nil
	case HelveticaBold, HelveticaBoldOblique:
		return &Font{Name: name, Ascender: 718, Descender: -207, ascii: &helveticaBoldWidths, defaultWidth: 611}, nil
	case Courier, CourierBold, CourierOblique, CourierBoldOblique:
		return &Font{Name: name, Ascender: 629, Descender: -157, FixedPitch: true, defaultWidth: 600}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFontNotFound, name)
}

// MustFont is LookupFont for names known to exist.
func MustFont(name string) *Font {
	f, err := LookupFont(name)
	if err != nil {
		panic(err)
	}
	return f
}

// GlyphWidth returns the advance of r in glyph units.
func (f *Font) GlyphWidth(r rune) float64 {
	if f.ascii != nil && r >= 0x20 && r <= 0x7E {
		return f.ascii[r-0x20]
	}
	return f.defaultWidth
}

// winAnsi maps the non Latin-1 code points of WinAnsiEncoding.
var winAnsi = map[rune]byte{
	0x20AC: 0x80, 0x201A: 0x82, 0x0192: 0x83, 0x201E: 0x84,
	0x2026: 0x85, 0x2020: 0x86, 0x2021: 0x87, 0x2030: 0x89,
	0x0160: 0x8A, 0x0152: 0x8C, 0x017D: 0x8E, 0x2018: 0x91,
	0x2019: 0x92, 0x201C: 0x93, 0x201D: 0x94, 0x2022: 0x95,
	0x2013: 0x96, 0x2014: 0x97, 0x2122: 0x99, 0x0161: 0x9A,
	0x0153: 0x9C, 0x017E: 0x9E, 0x0178: 0x9F,
}

// Encode converts s to the single-byte WinAnsiEncoding used by the standard
// fonts. Unmappable runes become '?'.
func (f *Font) Encode(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteByte(byte(r))
		case r >= 0xA0 && r <= 0xFF:
			b.WriteByte(byte(r))
		default:
			if c, ok := winAnsi[r]; ok {
				b.WriteByte(c)
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}
