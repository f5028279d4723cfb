// Package preview rasterises laid out pages to PNG images.
package preview

import (
	"fmt"
	"image"
	"io"
	"math"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/georgepadayatti/pdflayout/pdf/images"
	"github.com/georgepadayatti/pdflayout/pdf/layout"
	"github.com/georgepadayatti/pdflayout/pdf/text"
)

// Sink draws every placed box as an outline, bordered boxes in black,
// text as lines in the built-in face and column rules filled.
type Sink struct {
	// Scale is pixels per point.
	Scale float64
	pages []*gg.Context
	areas []layout.PageArea
}

// NewSink creates a preview sink. A scale of zero or less means 1.
func NewSink(scale float64) *Sink {
	if scale <= 0 {
		scale = 1
	}
	return &Sink{Scale: scale}
}

// BeginPage starts a blank page image.
func (s *Sink) BeginPage(page layout.PageArea) error {
	w := int(math.Ceil(page.Size.Width * s.Scale))
	h := int(math.Ceil(page.Size.Height * s.Scale))
	if w <= 0 || h <= 0 {
		return fmt.Errorf("page %d: empty page size %vx%v", page.Index+1, page.Size.Width, page.Size.Height)
	}
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Scale(s.Scale, s.Scale)
	s.pages = append(s.pages, dc)
	s.areas = append(s.areas, page)
	return nil
}

func (s *Sink) current(page layout.PageArea) (*gg.Context, error) {
	if len(s.pages) == 0 || s.areas[len(s.areas)-1].Index != page.Index {
		return nil, fmt.Errorf("page %d was not begun", page.Index+1)
	}
	return s.pages[len(s.pages)-1], nil
}

// PlaceBox draws the outline of n and its text or image.
func (s *Sink) PlaceBox(page layout.PageArea, n *layout.Node, r layout.Rectangle) error {
	dc, err := s.current(page)
	if err != nil {
		return err
	}
	b := n.Style.Border
	if w := math.Max(math.Max(b.Top, b.Bottom), math.Max(b.Left, b.Right)); w > 0 {
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(w)
	} else {
		dc.SetRGB(0.8, 0.8, 0.8)
		dc.SetLineWidth(0.5)
	}
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Stroke()

	box := r.Inset(b.Add(n.Style.Padding))
	switch c := n.Content.(type) {
	case *text.Text:
		dc.SetRGB(0, 0, 0)
		lh := c.Style.LineHeight()
		for i, line := range c.Lines(box.Width) {
			dc.DrawString(line, box.X+c.Offset(line, box.Width), box.Y+float64(i)*lh+c.Style.Ascent())
		}
	case *images.Image:
		px, err := c.Pixels()
		if err != nil {
			return fmt.Errorf("node '%s': %w", n.ID, err)
		}
		dc.Push()
		dc.Translate(box.X, box.Y)
		dc.Scale(box.Width/float64(c.Width), box.Height/float64(c.Height))
		dc.DrawImage(px, 0, 0)
		dc.Pop()
	}
	return nil
}

// PlaceRule fills a column rule.
func (s *Sink) PlaceRule(page layout.PageArea, r layout.Rectangle) error {
	dc, err := s.current(page)
	if err != nil {
		return err
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Fill()
	return nil
}

// Len returns the number of pages drawn.
func (s *Sink) Len() int {
	return len(s.pages)
}

// Image returns page i.
func (s *Sink) Image(i int) image.Image {
	return s.pages[i].Image()
}

// WritePNG encodes page i as PNG.
func (s *Sink) WritePNG(i int, w io.Writer) error {
	if i < 0 || i >= len(s.pages) {
		return fmt.Errorf("page %d out of range", i+1)
	}
	return s.pages[i].EncodePNG(w)
}

// SavePNGs writes every page to dir as <prefix>-<n>.png and returns the paths.
func (s *Sink) SavePNGs(dir, prefix string) ([]string, error) {
	paths := make([]string, 0, len(s.pages))
	for i, dc := range s.pages {
		path := filepath.Join(dir, fmt.Sprintf("%s-%d.png", prefix, i+1))
		if err := dc.SavePNG(path); err != nil {
			return paths, fmt.Errorf("saving page %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
