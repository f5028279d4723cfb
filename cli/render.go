package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgepadayatti/pdflayout/config"
	"github.com/georgepadayatti/pdflayout/pdf/content"
	"github.com/georgepadayatti/pdflayout/pdf/layout"
	"github.com/georgepadayatti/pdflayout/pdf/preview"
	"github.com/georgepadayatti/pdflayout/pdf/writer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Output formats of the render command.
const (
	FormatContent = "content"
	FormatPNG     = "png"
	FormatJSON    = "json"
	FormatPDF     = "pdf"
)

// RenderOptions contains options for the render command.
type RenderOptions struct {
	Format string
	Out    string
	Scale    float64
	Strict   bool
	Compress bool
}

func newRenderCommand(a *app) *cobra.Command {
	var opts RenderOptions

	cmd := &cobra.Command{
		Use:   "render <document.yaml>",
		Short: "Lay out a document and write its pages",
		Long: `Lay out a YAML document over as many pages as it needs.

Formats:
  content  one PDF content stream per page
  png      one preview image per page
  json     the placed boxes of every page
  pdf      a PDF file set in the standard fonts`,
		Example: `  pdflayout render report.yaml
  pdflayout render --format png --scale 2 --out pages report.yaml
  pdflayout render --format json report.yaml
  pdflayout render --format pdf --out build report.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.OutOrStdout(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatContent, "output format: content, png, json or pdf")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "directory for per-page files (default is stdout, required for png)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 1, "pixels per point for png output")
	cmd.Flags().BoolVar(&opts.Compress, "compress", true, "compress pdf content streams")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when content had to be forced onto a page")
	return cmd
}

// pageSink is the sink behind one output format.
type pageSink interface {
	layout.Sink
	write(w io.Writer, out, prefix string, rep *layout.Report) error
}

func (a *app) render(w io.Writer, path string, opts *RenderOptions) error {
	sink, err := newPageSink(opts)
	if err != nil {
		return err
	}

	doc, err := config.LoadDocument(path)
	if err != nil {
		return err
	}
	root, err := doc.Build()
	if err != nil {
		return err
	}
	pageLayout, err := a.settings.PageLayout(doc)
	if err != nil {
		return err
	}

	p := &layout.Paginator{
		Engine:   layout.NewEngine(layout.WithLogger(a.logger)),
		Areas:    layout.NewPageAreas(pageLayout),
		Sink:     sink,
		MaxPages: a.settings.MaxPages,
	}
	rep, err := p.Run(root)
	if err != nil {
		return fmt.Errorf("failed to lay out %s: %w", path, err)
	}
	a.logger.Info("Document laid out",
		zap.String("document", path),
		zap.Int("pages", len(rep.Pages)),
		zap.Int("diagnostics", len(rep.Diagnostics)),
	)
	if opts.Strict && len(rep.Diagnostics) > 0 {
		return fmt.Errorf("%s: %d layout problems, first is %s", path, len(rep.Diagnostics), rep.Diagnostics[0])
	}

	if opts.Out != "" {
		if err := os.MkdirAll(opts.Out, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	prefix := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return sink.write(w, opts.Out, prefix, rep)
}

func newPageSink(opts *RenderOptions) (pageSink, error) {
	switch opts.Format {
	case FormatContent:
		return &contentSink{Sink: content.NewSink()}, nil
	case FormatPNG:
		if opts.Out == "" {
			return nil, errors.New("png output needs --out")
		}
		return &previewSink{Sink: preview.NewSink(opts.Scale)}, nil
	case FormatJSON:
		return &placementSink{}, nil
	case FormatPDF:
		return &pdfSink{Sink: content.NewSink(), compress: opts.Compress}, nil
	}
	return nil, fmt.Errorf("unknown format %q", opts.Format)
}

type contentSink struct {
	*content.Sink
}

func (s *contentSink) write(w io.Writer, out, prefix string, _ *layout.Report) error {
	for i, page := range s.Pages() {
		if out == "" {
			fmt.Fprintf(w, "%% page %d\n", i+1)
			if _, err := w.Write(page.Render()); err != nil {
				return err
			}
			continue
		}
		name := filepath.Join(out, fmt.Sprintf("%s-%d.content", prefix, i+1))
		if err := os.WriteFile(name, page.Render(), 0o644); err != nil {
			return fmt.Errorf("failed to write page %d: %w", i+1, err)
		}
		fmt.Fprintln(w, name)
	}
	return nil
}

type pdfSink struct {
	*content.Sink
	compress bool
}

func (s *pdfSink) write(w io.Writer, out, prefix string, _ *layout.Report) error {
	pw := writer.NewPdfFileWriter("")
	pw.Compress = s.compress
	if err := pw.WriteDocument(s.Sink); err != nil {
		return err
	}
	if out == "" {
		return pw.Write(w)
	}
	name := filepath.Join(out, prefix+".pdf")
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if err := pw.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(w, name)
	return nil
}

type previewSink struct {
	*preview.Sink
}

func (s *previewSink) write(w io.Writer, out, prefix string, _ *layout.Report) error {
	paths, err := s.SavePNGs(out, prefix)
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	return err
}

// PlacementOutput is the JSON form of a laid out document.
type PlacementOutput struct {
	Pages       []*PagePlacements `json:"pages"`
	Diagnostics []DiagnosticJSON  `json:"diagnostics,omitempty"`
}

// PagePlacements lists the boxes drawn on one page.
type PagePlacements struct {
	Number int         `json:"number"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Boxes  []Placement `json:"boxes"`
	Rules  []Placement `json:"rules,omitempty"`
}

// Placement is one border box in layout coordinates, y growing downwards.
type Placement struct {
	ID     string  `json:"id,omitempty"`
	Kind   string  `json:"kind,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DiagnosticJSON is a JSON-serializable layout diagnostic.
type DiagnosticJSON struct {
	Kind    string `json:"kind"`
	Node    string `json:"node"`
	Message string `json:"message"`
}

type placementSink struct {
	out PlacementOutput
}

func (s *placementSink) current(page layout.PageArea) (*PagePlacements, error) {
	if n := len(s.out.Pages); n == 0 || s.out.Pages[n-1].Number != page.Index+1 {
		return nil, fmt.Errorf("page %d was not begun", page.Index+1)
	}
	return s.out.Pages[len(s.out.Pages)-1], nil
}

func (s *placementSink) BeginPage(page layout.PageArea) error {
	s.out.Pages = append(s.out.Pages, &PagePlacements{
		Number: page.Index + 1,
		Width:  page.Size.Width,
		Height: page.Size.Height,
		Boxes:  []Placement{},
	})
	return nil
}

func (s *placementSink) PlaceBox(page layout.PageArea, n *layout.Node, r layout.Rectangle) error {
	p, err := s.current(page)
	if err != nil {
		return err
	}
	p.Boxes = append(p.Boxes, placement(n.ID, n.Kind.String(), r))
	return nil
}

func (s *placementSink) PlaceRule(page layout.PageArea, r layout.Rectangle) error {
	p, err := s.current(page)
	if err != nil {
		return err
	}
	p.Rules = append(p.Rules, placement("", "", r))
	return nil
}

func (s *placementSink) write(w io.Writer, out, prefix string, rep *layout.Report) error {
	for _, d := range rep.Diagnostics {
		s.out.Diagnostics = append(s.out.Diagnostics, DiagnosticJSON{
			Kind:    d.Kind.String(),
			Node:    d.NodeID,
			Message: d.Message,
		})
	}
	data, err := json.MarshalIndent(&s.out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode placements: %w", err)
	}
	data = append(data, '\n')
	if out == "" {
		_, err = w.Write(data)
		return err
	}
	name := filepath.Join(out, prefix+".json")
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("failed to write placements: %w", err)
	}
	fmt.Fprintln(w, name)
	return nil
}

func placement(id, kind string, r layout.Rectangle) Placement {
	return Placement{ID: id, Kind: kind, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
