package text

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/georgepadayatti/pdflayout/pdf/layout"
)

// Align represents horizontal alignment of lines within their box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the string representation.
func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlign parses an alignment name. Unknown names mean left.
func ParseAlign(s string) Align {
	switch strings.ToLower(s) {
	case "center", "centre":
		return AlignCenter
	case "right":
		return AlignRight
	default:
		return AlignLeft
	}
}

// Style is a font at a size.
type Style struct {
	Font *Font
	Size float64
	// Leading is the line height as a multiple of Size. Zero uses the
	// font's ascender to descender distance.
	Leading float64
}

// DefaultStyle returns 12pt Helvetica.
func DefaultStyle() Style {
	return Style{Font: MustFont(Helvetica), Size: 12}
}

func (s Style) font() *Font {
	if s.Font == nil {
		return MustFont(Helvetica)
	}
	return s.Font
}

// LineHeight returns the distance between baselines.
func (s Style) LineHeight() float64 {
	if s.Leading > 0 {
		return s.Size * s.Leading
	}
	f := s.font()
	return (f.Ascender - f.Descender) * s.Size / unitsPerEm
}

// Ascent returns the distance from the top of a line to its baseline.
func (s Style) Ascent() float64 {
	return s.font().Ascender * s.Size / unitsPerEm
}

// Width returns the advance of str after NFC normalisation.
func (s Style) Width(str string) float64 {
	return s.width(norm.NFC.String(str))
}

func (s Style) width(str string) float64 {
	f := s.font()
	var units float64
	for _, r := range str {
		units += runeWidth(f, r)
	}
	return units * s.Size / unitsPerEm
}

// runeWidth counts East Asian wide and fullwidth runes as one em.
func runeWidth(f *Font, r rune) float64 {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return unitsPerEm
	}
	return f.GlyphWidth(r)
}

// Wrap breaks str into lines no wider than maxWidth. Hard line breaks are
// kept, words are broken between runes only when they do not fit on a line
// of their own.
func (s Style) Wrap(str string, maxWidth float64) []string {
	var out []string
	for _, para := range strings.Split(norm.NFC.String(str), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if s.width(candidate) <= maxWidth+1e-9 {
				line = candidate
				continue
			}
			if line != "" {
				out = append(out, line)
			}
			for s.width(w) > maxWidth && utf8.RuneCountInString(w) > 1 {
				var head string
				head, w = s.breakWord(w, maxWidth)
				out = append(out, head)
			}
			line = w
		}
		out = append(out, line)
	}
	return out
}

// breakWord splits off the longest prefix of w that fits, at least one rune.
func (s Style) breakWord(w string, maxWidth float64) (string, string) {
	f := s.font()
	var used float64
	for i, r := range w {
		used += runeWidth(f, r) * s.Size / unitsPerEm
		if used > maxWidth+1e-9 && i > 0 {
			return w[:i], w[i:]
		}
	}
	_, size := utf8.DecodeRuneInString(w)
	return w[:size], w[size:]
}

// Text is a run of wrapped text. It splits between lines.
type Text struct {
	Value string
	Style Style
	Align Align
	// Orphans is the least number of lines left at the bottom of an area
	// and Widows the least carried to the next one.
	Orphans int
	Widows  int
}

// NewText creates text content.
func NewText(value string, style Style) *Text {
	return &Text{Value: value, Style: style}
}

// Lines wraps the text to width.
func (t *Text) Lines(width float64) []string {
	return t.Style.Wrap(t.Value, width)
}

// IntrinsicSize returns the widest wrapped line and the total line height.
func (t *Text) IntrinsicSize(availableWidth float64) layout.Size {
	lines := t.Lines(availableWidth)
	var w float64
	for _, l := range lines {
		w = math.Max(w, t.Style.width(l))
	}
	return layout.Size{Width: w, Height: float64(len(lines)) * t.Style.LineHeight()}
}

// Replaced reports false: text takes the width it is given.
func (*Text) Replaced() bool { return false }

// Split keeps as many whole lines as fit in height.
func (t *Text) Split(width, height float64) (layout.Content, layout.Content, bool) {
	lines := t.Lines(width)
	n := int(math.Floor(height/t.Style.LineHeight() + 1e-9))
	if t.Widows > 0 && len(lines)-n < t.Widows {
		n = len(lines) - t.Widows
	}
	if n <= 0 || n >= len(lines) || n < t.Orphans {
		return nil, nil, false
	}
	head, tail := *t, *t
	head.Value = strings.Join(lines[:n], "\n")
	tail.Value = strings.Join(lines[n:], "\n")
	return &head, &tail, true
}

// Offset returns the x offset of line within a box of the given width.
func (t *Text) Offset(line string, boxWidth float64) float64 {
	free := boxWidth - t.Style.width(line)
	switch t.Align {
	case AlignCenter:
		return free / 2
	case AlignRight:
		return free
	}
	return 0
}
