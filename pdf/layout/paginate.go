package layout

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxPages bounds a pagination run when Paginator.MaxPages is zero.
const DefaultMaxPages = 1000

// PageArea is the content area of one page in layout space.
type PageArea struct {
	Index   int
	Size    PageSize
	Content Rectangle
}

// AreaProvider hands out the area of the next page.
type AreaProvider interface {
	NextArea() (PageArea, error)
}

// PageAreas provides identical pages described by a PageLayout.
type PageAreas struct {
	layout *PageLayout
	next   int
}

// NewPageAreas creates an area provider for layout.
func NewPageAreas(layout *PageLayout) *PageAreas {
	return &PageAreas{layout: layout}
}

// NextArea returns the next page's content area.
func (p *PageAreas) NextArea() (PageArea, error) {
	area := PageArea{Index: p.next, Size: p.layout.Size, Content: p.layout.ContentArea()}
	if area.Content.Width <= 0 || area.Content.Height <= 0 {
		return PageArea{}, fmt.Errorf("page %d: margins leave no content area", p.next)
	}
	p.next++
	return area, nil
}

// Sink receives the final geometry of every page.
type Sink interface {
	BeginPage(page PageArea) error
	// PlaceBox is called once per placed box with its border box.
	PlaceBox(page PageArea, n *Node, r Rectangle) error
	PlaceRule(page PageArea, r Rectangle) error
}

// Page is the outcome of laying out one page.
type Page struct {
	Area     PageArea
	Fragment *Fragment
}

// Report summarises a pagination run.
type Report struct {
	Pages       []Page
	Diagnostics []Diagnostic
}

// Paginator lays a node tree out over as many pages as it needs.
type Paginator struct {
	Engine *Engine
	Areas  AreaProvider
	// Sink is optional.
	Sink     Sink
	MaxPages int
}

// Run lays out root page by page, continuing with the overflow of each page
// until everything is placed.
func (p *Paginator) Run(root *Node) (*Report, error) {
	engine := p.Engine
	if engine == nil {
		engine = NewEngine()
	}
	limit := p.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPages
	}

	rep := &Report{}
	node := root
	for node != nil {
		if len(rep.Pages) >= limit {
			return rep, fmt.Errorf("%w: limit is %d", ErrTooManyPages, limit)
		}
		area, err := p.Areas.NextArea()
		if err != nil {
			return rep, err
		}
		res, err := engine.Layout(node, AreaFrom(area.Content, true))
		if err != nil {
			return rep, fmt.Errorf("page %d: %w", area.Index+1, err)
		}
		rep.Diagnostics = append(rep.Diagnostics, res.Diagnostics...)
		if res.Status == Nothing || (res.Status == Partial && res.Overflow == node) {
			return rep, fmt.Errorf("page %d: node '%s': %w", area.Index+1, node.ID, ErrNoProgress)
		}

		page := Page{Area: area, Fragment: res.Fragment}
		rep.Pages = append(rep.Pages, page)
		if err := p.emit(page); err != nil {
			return rep, err
		}
		engine.logger.Debug("page laid out",
			zap.Int("page", area.Index+1),
			zap.Stringer("status", res.Status),
			zap.Int("diagnostics", len(res.Diagnostics)))

		node = nil
		if res.Status == Partial {
			node = res.Overflow
		}
	}
	return rep, nil
}

func (p *Paginator) emit(page Page) error {
	if p.Sink == nil {
		return nil
	}
	if err := p.Sink.BeginPage(page.Area); err != nil {
		return err
	}
	return page.Fragment.Walk(func(f *Fragment) error {
		if !f.Node.Anonymous {
			if err := p.Sink.PlaceBox(page.Area, f.Node, f.Rect); err != nil {
				return err
			}
		}
		for _, r := range f.Rules {
			if err := p.Sink.PlaceRule(page.Area, r); err != nil {
				return err
			}
		}
		return nil
	})
}
