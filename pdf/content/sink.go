package content

import (
	"fmt"
	"math"

	"github.com/georgepadayatti/pdflayout/pdf/images"
	"github.com/georgepadayatti/pdflayout/pdf/layout"
	"github.com/georgepadayatti/pdflayout/pdf/text"
)

// Page is the content stream of one laid out page.
type Page struct {
	Area    layout.PageArea
	builder *Builder
}

// Render returns the page's content stream.
func (p *Page) Render() []byte {
	return p.builder.Render()
}

// Operations returns the page's operations.
func (p *Page) Operations() []Operation {
	return p.builder.Stream().Operations
}

// Sink turns placed boxes into PDF content streams. Bordered boxes are
// stroked, text leaves are set line by line and column rules are filled.
type Sink struct {
	pages []*Page
	// fonts maps font names to resource names, in order of first use.
	fonts     map[string]string
	fontNames []string
	// images maps images to XObject resource names.
	images map[*images.Image]string
}

// NewSink creates an empty content sink.
func NewSink() *Sink {
	return &Sink{fonts: map[string]string{}, images: map[*images.Image]string{}}
}

// BeginPage starts a new content stream.
func (s *Sink) BeginPage(page layout.PageArea) error {
	s.pages = append(s.pages, &Page{Area: page, builder: NewBuilder()})
	return nil
}

func (s *Sink) current(page layout.PageArea) (*Page, error) {
	if len(s.pages) == 0 || s.pages[len(s.pages)-1].Area.Index != page.Index {
		return nil, fmt.Errorf("page %d was not begun", page.Index+1)
	}
	return s.pages[len(s.pages)-1], nil
}

// PlaceBox draws the border, text and image of n.
func (s *Sink) PlaceBox(page layout.PageArea, n *layout.Node, r layout.Rectangle) error {
	p, err := s.current(page)
	if err != nil {
		return err
	}
	if w := borderWidth(n.Style.Border); w > 0 {
		pdf := r.Inset(halfInset(n.Style.Border)).ToPDF(page.Size.Height)
		p.builder.SaveState().
			SetLineWidth(w).
			Rectangle(pdf.X, pdf.Y, pdf.Width, pdf.Height).
			Stroke().
			RestoreState()
	}
	box := r.Inset(n.Style.Border.Add(n.Style.Padding))
	switch c := n.Content.(type) {
	case *text.Text:
		s.setText(p, c, box)
	case *images.Image:
		pdf := box.ToPDF(page.Size.Height)
		p.builder.SaveState().
			Transform(pdf.Width, 0, 0, pdf.Height, pdf.X, pdf.Y).
			DrawXObject(s.imageResource(c)).
			RestoreState()
	}
	return nil
}

// PlaceRule fills a column rule.
func (s *Sink) PlaceRule(page layout.PageArea, r layout.Rectangle) error {
	p, err := s.current(page)
	if err != nil {
		return err
	}
	pdf := r.ToPDF(page.Size.Height)
	p.builder.SaveState().
		SetFillGray(0).
		Rectangle(pdf.X, pdf.Y, pdf.Width, pdf.Height).
		Fill().
		RestoreState()
	return nil
}

func (s *Sink) setText(p *Page, t *text.Text, box layout.Rectangle) {
	font := t.Style.Font
	if font == nil {
		font = text.MustFont(text.Helvetica)
	}
	resource := s.fontResource(font.Name)
	lh := t.Style.LineHeight()
	pageHeight := p.Area.Size.Height

	p.builder.BeginText().SetFont(resource, t.Style.Size)
	var prevX, prevY float64
	for i, line := range t.Lines(box.Width) {
		x := box.X + t.Offset(line, box.Width)
		y := pageHeight - (box.Y + float64(i)*lh + t.Style.Ascent())
		// Td is relative to the start of the previous line.
		p.builder.TextPosition(x-prevX, y-prevY)
		prevX, prevY = x, y
		if line != "" {
			p.builder.ShowText(font.Encode(line))
		}
	}
	p.builder.EndText()
}

func (s *Sink) fontResource(name string) string {
	if res, ok := s.fonts[name]; ok {
		return res
	}
	res := fmt.Sprintf("F%d", len(s.fonts)+1)
	s.fonts[name] = res
	s.fontNames = append(s.fontNames, name)
	return res
}

func (s *Sink) imageResource(img *images.Image) string {
	if res, ok := s.images[img]; ok {
		return res
	}
	res := fmt.Sprintf("Im%d", len(s.images)+1)
	s.images[img] = res
	return res
}

// Images returns the images drawn, indexed by resource name.
func (s *Sink) Images() map[string]*images.Image {
	out := make(map[string]*images.Image, len(s.images))
	for img, res := range s.images {
		out[res] = img
	}
	return out
}

// Pages returns the pages begun so far.
func (s *Sink) Pages() []*Page {
	return s.pages
}

// Fonts returns the font names used, indexed by resource name.
func (s *Sink) Fonts() map[string]string {
	out := make(map[string]string, len(s.fonts))
	for name, res := range s.fonts {
		out[res] = name
	}
	return out
}

// FontNames returns the font names used, in order of first use.
func (s *Sink) FontNames() []string {
	return append([]string(nil), s.fontNames...)
}

// borderWidth is the widest border side; the stroke is uniform.
func borderWidth(m layout.Margins) float64 {
	return math.Max(math.Max(m.Top, m.Bottom), math.Max(m.Left, m.Right))
}

// halfInset centres the stroke on the border.
func halfInset(m layout.Margins) layout.Margins {
	return layout.NewMargins(m.Top/2, m.Right/2, m.Bottom/2, m.Left/2)
}
