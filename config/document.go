package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/georgepadayatti/pdflayout/pdf/images"
	"github.com/georgepadayatti/pdflayout/pdf/layout"
	"github.com/georgepadayatti/pdflayout/pdf/text"
)

// Document is a layout document: optional page overrides and a node tree.
type Document struct {
	Page *PageConfig `yaml:"page"`
	Root *NodeSpec   `yaml:"root"`

	// dir resolves relative image paths.
	dir string
}

// StyleSpec holds the box-model properties of a node.
type StyleSpec struct {
	Width        Length `yaml:"width"`
	Height       Length `yaml:"height"`
	MinWidth     Length `yaml:"min-width"`
	MinHeight    Length `yaml:"min-height"`
	MaxWidth     Length `yaml:"max-width"`
	MaxHeight    Length `yaml:"max-height"`
	Margin       Edges  `yaml:"margin"`
	Border       Edges  `yaml:"border"`
	Padding      Edges  `yaml:"padding"`
	BoxSizing    string `yaml:"box-sizing"`
	KeepTogether bool   `yaml:"keep-together"`
}

// FlexSpec holds flex container properties.
type FlexSpec struct {
	Direction      string  `yaml:"direction"`
	Wrap           string  `yaml:"wrap"`
	JustifyContent string  `yaml:"justify-content"`
	AlignItems     string  `yaml:"align-items"`
	AlignContent   string  `yaml:"align-content"`
	RowGap         float64 `yaml:"row-gap"`
	ColumnGap      float64 `yaml:"column-gap"`
}

// ItemSpec holds the flex item properties of a node.
type ItemSpec struct {
	Grow      float64  `yaml:"grow"`
	Shrink    *float64 `yaml:"shrink"`
	Basis     Length   `yaml:"basis"`
	AlignSelf string   `yaml:"align-self"`
}

// GridSpec holds grid container properties.
type GridSpec struct {
	TemplateColumns []Length `yaml:"template-columns"`
	TemplateRows    []Length `yaml:"template-rows"`
	AutoColumns     Length   `yaml:"auto-columns"`
	AutoRows        Length   `yaml:"auto-rows"`
	ColumnGap       float64  `yaml:"column-gap"`
	RowGap          float64  `yaml:"row-gap"`
	JustifyItems    string   `yaml:"justify-items"`
	AlignItems      string   `yaml:"align-items"`
}

// CellSpec holds the 1-based grid lines of a node.
type CellSpec struct {
	ColumnStart int `yaml:"column-start"`
	ColumnEnd   int `yaml:"column-end"`
	RowStart    int `yaml:"row-start"`
	RowEnd      int `yaml:"row-end"`
	ColumnSpan  int `yaml:"column-span"`
	RowSpan     int `yaml:"row-span"`
}

// ColumnsSpec holds multi-column properties.
type ColumnsSpec struct {
	Count     int     `yaml:"count"`
	Width     Length  `yaml:"width"`
	Gap       Length  `yaml:"gap"`
	RuleWidth float64 `yaml:"rule-width"`
	Fill      string  `yaml:"fill"`
}

// SizeSpec is the intrinsic size of a fixed box such as an image.
type SizeSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// NodeSpec describes one node of the tree.
type NodeSpec struct {
	ID string `yaml:"id"`
	// Kind is block, flex, grid, multicol, text, image or box. When empty
	// it is inferred from the other fields.
	Kind  string    `yaml:"kind"`
	Style StyleSpec `yaml:",inline"`

	Flex    *FlexSpec    `yaml:"flex"`
	Grid    *GridSpec    `yaml:"grid"`
	Columns *ColumnsSpec `yaml:"columns"`
	Item    *ItemSpec    `yaml:"item"`
	Cell    *CellSpec    `yaml:"cell"`

	Text     string  `yaml:"text"`
	Font     string  `yaml:"font"`
	FontSize float64 `yaml:"font-size"`
	Leading  float64 `yaml:"leading"`
	Align    string  `yaml:"align"`
	Orphans  int     `yaml:"orphans"`
	Widows   int     `yaml:"widows"`

	Image string    `yaml:"image"`
	Size  *SizeSpec `yaml:"size"`

	Children []*NodeSpec `yaml:"children"`
}

var (
	directions = map[string]layout.Direction{
		"row": layout.Row, "row-reverse": layout.RowReverse,
		"column": layout.Column, "column-reverse": layout.ColumnReverse,
	}
	wraps = map[string]layout.Wrap{
		"nowrap": layout.NoWrap, "wrap": layout.WrapLines, "wrap-reverse": layout.WrapReverse,
	}
	justifies = map[string]layout.Justify{
		"flex-start": layout.JustifyFlexStart, "start": layout.JustifyFlexStart,
		"flex-end": layout.JustifyFlexEnd, "end": layout.JustifyFlexEnd,
		"center":        layout.JustifyCenter,
		"space-between": layout.JustifySpaceBetween,
		"space-around":  layout.JustifySpaceAround,
		"space-evenly":  layout.JustifySpaceEvenly,
	}
	aligns = map[string]layout.Align{
		"auto": layout.AlignAuto, "stretch": layout.AlignStretch,
		"flex-start": layout.AlignFlexStart, "start": layout.AlignFlexStart,
		"flex-end": layout.AlignFlexEnd, "end": layout.AlignFlexEnd,
		"center": layout.AlignCenter,
	}
	alignContents = map[string]layout.AlignContent{
		"stretch":    layout.ContentStretch,
		"flex-start": layout.ContentFlexStart, "start": layout.ContentFlexStart,
		"flex-end": layout.ContentFlexEnd, "end": layout.ContentFlexEnd,
		"center":        layout.ContentCenter,
		"space-between": layout.ContentSpaceBetween,
		"space-around":  layout.ContentSpaceAround,
		"space-evenly":  layout.ContentSpaceEvenly,
	}
	fills = map[string]layout.ColumnFill{
		"balance": layout.FillBalance, "auto": layout.FillAuto,
	}
	boxSizings = map[string]layout.BoxSizing{
		"content-box": layout.ContentBox, "border-box": layout.BorderBox,
	}
)

// lookup resolves a keyword. The empty string yields the zero value.
func lookup[T any](field, value string, table map[string]T) (T, error) {
	var zero T
	if value == "" {
		return zero, nil
	}
	v, ok := table[strings.ToLower(value)]
	if !ok {
		return zero, &ConfigError{Field: field, Message: fmt.Sprintf("unknown value '%s'", value), Err: ErrInvalidValue}
	}
	return v, nil
}

// ParseDocument parses a YAML layout document. Unknown keys are rejected.
func ParseDocument(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, NewConfigError("root", "document is empty")
		}
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Root == nil {
		return nil, NewConfigError("root", "required field is missing")
	}
	return &doc, nil
}

// LoadDocument loads a layout document from a YAML file. Image paths are
// relative to the file.
func LoadDocument(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	doc.dir = filepath.Dir(filename)
	return doc, nil
}

// Build converts the document into a validated layout tree.
func (d *Document) Build() (*layout.Node, error) {
	n, err := d.Root.build(d.dir, "root")
	if err != nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, &ConfigError{Field: "root", Message: err.Error(), Err: err}
	}
	return n, nil
}

func (s *NodeSpec) kind() string {
	switch {
	case s.Kind != "":
		return strings.ToLower(s.Kind)
	case s.Text != "":
		return "text"
	case s.Image != "":
		return "image"
	case s.Size != nil:
		return "box"
	case s.Flex != nil:
		return "flex"
	case s.Grid != nil:
		return "grid"
	case s.Columns != nil:
		return "multicol"
	}
	return "block"
}

func (s *NodeSpec) build(dir, path string) (*layout.Node, error) {
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}

	var children []*layout.Node
	for i, c := range s.Children {
		child, err := c.build(dir, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	var (
		n   *layout.Node
		err error
	)
	switch kind := s.kind(); kind {
	case "block":
		n = layout.NewBlock(id, children...)
	case "text":
		var content *text.Text
		content, err = s.text(path)
		n = layout.NewLeaf(id, content)
	case "image":
		if s.Image == "" {
			return nil, NewConfigError(path+".image", "required field is missing")
		}
		src := s.Image
		if !filepath.IsAbs(src) && dir != "" {
			src = filepath.Join(dir, src)
		}
		var img *images.Image
		if img, err = images.Load(src); err != nil {
			return nil, &ConfigError{Field: path + ".image", Message: err.Error(), Err: err}
		}
		n = layout.NewLeaf(id, img)
	case "box":
		if s.Size == nil {
			return nil, NewConfigError(path+".size", "required field is missing")
		}
		n = layout.NewLeaf(id, layout.FixedContent{Width: s.Size.Width, Height: s.Size.Height})
	case "flex":
		var cfg layout.FlexConfig
		if cfg, err = s.Flex.config(path + ".flex"); err == nil {
			n, err = layout.NewFlex(id, cfg, children...)
		}
	case "grid":
		var cfg layout.GridConfig
		if cfg, err = s.Grid.config(path + ".grid"); err == nil {
			n, err = layout.NewGrid(id, cfg, children...)
		}
	case "multicol":
		var cfg layout.MulticolConfig
		if cfg, err = s.Columns.config(path + ".columns"); err == nil {
			n, err = layout.NewMulticol(id, cfg, children...)
		}
	default:
		return nil, &ConfigError{Field: path + ".kind", Message: fmt.Sprintf("unknown kind '%s'", kind), Err: ErrInvalidValue}
	}
	if err != nil {
		return nil, wrap(path, err)
	}
	if len(children) > 0 && n.Kind == layout.KindLeaf {
		return nil, NewConfigError(path+".children", "leaf nodes cannot have children")
	}

	if n.Style, err = s.Style.style(path); err != nil {
		return nil, err
	}
	if s.Item != nil {
		if err := s.Item.apply(path+".item", n); err != nil {
			return nil, err
		}
	}
	if s.Cell != nil {
		n.Cell = layout.GridPlacement(*s.Cell)
	}
	return n, nil
}

func wrap(path string, err error) error {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}
	return &ConfigError{Field: path, Message: err.Error(), Err: err}
}

func (s *NodeSpec) text(path string) (*text.Text, error) {
	style := text.DefaultStyle()
	if s.Font != "" {
		f, err := text.LookupFont(s.Font)
		if err != nil {
			return nil, &ConfigError{Field: path + ".font", Message: err.Error(), Err: err}
		}
		style.Font = f
	}
	if s.FontSize < 0 {
		return nil, &ConfigError{Field: path + ".font-size", Message: "must not be negative", Err: ErrInvalidValue}
	}
	if s.FontSize > 0 {
		style.Size = s.FontSize
	}
	style.Leading = s.Leading
	t := text.NewText(s.Text, style)
	t.Align = text.ParseAlign(s.Align)
	t.Orphans, t.Widows = s.Orphans, s.Widows
	return t, nil
}

func (s StyleSpec) style(path string) (layout.Style, error) {
	sizing, err := lookup(path+".box-sizing", s.BoxSizing, boxSizings)
	if err != nil {
		return layout.Style{}, err
	}
	return layout.Style{
		Width:        layout.Length(s.Width),
		Height:       layout.Length(s.Height),
		MinWidth:     layout.Length(s.MinWidth),
		MinHeight:    layout.Length(s.MinHeight),
		MaxWidth:     layout.Length(s.MaxWidth),
		MaxHeight:    layout.Length(s.MaxHeight),
		Margin:       layout.Margins(s.Margin),
		Border:       layout.Margins(s.Border),
		Padding:      layout.Margins(s.Padding),
		BoxSizing:    sizing,
		KeepTogether: s.KeepTogether,
	}, nil
}

func (f *FlexSpec) config(path string) (layout.FlexConfig, error) {
	var cfg layout.FlexConfig
	if f == nil {
		return cfg, nil
	}
	var err error
	if cfg.Direction, err = lookup(path+".direction", f.Direction, directions); err != nil {
		return cfg, err
	}
	if cfg.Wrap, err = lookup(path+".wrap", f.Wrap, wraps); err != nil {
		return cfg, err
	}
	if cfg.JustifyContent, err = lookup(path+".justify-content", f.JustifyContent, justifies); err != nil {
		return cfg, err
	}
	if cfg.AlignItems, err = lookup(path+".align-items", f.AlignItems, aligns); err != nil {
		return cfg, err
	}
	if cfg.AlignContent, err = lookup(path+".align-content", f.AlignContent, alignContents); err != nil {
		return cfg, err
	}
	cfg.RowGap, cfg.ColumnGap = f.RowGap, f.ColumnGap
	return cfg, nil
}

func (g *GridSpec) config(path string) (layout.GridConfig, error) {
	var cfg layout.GridConfig
	if g == nil {
		return cfg, nil
	}
	for _, l := range g.TemplateColumns {
		cfg.TemplateColumns = append(cfg.TemplateColumns, layout.Length(l))
	}
	for _, l := range g.TemplateRows {
		cfg.TemplateRows = append(cfg.TemplateRows, layout.Length(l))
	}
	cfg.AutoColumns = layout.Length(g.AutoColumns)
	cfg.AutoRows = layout.Length(g.AutoRows)
	cfg.ColumnGap, cfg.RowGap = g.ColumnGap, g.RowGap
	var err error
	if cfg.JustifyItems, err = lookup(path+".justify-items", g.JustifyItems, aligns); err != nil {
		return cfg, err
	}
	cfg.AlignItems, err = lookup(path+".align-items", g.AlignItems, aligns)
	return cfg, err
}

func (c *ColumnsSpec) config(path string) (layout.MulticolConfig, error) {
	var cfg layout.MulticolConfig
	if c == nil {
		return cfg, nil
	}
	cfg.ColumnCount = c.Count
	cfg.ColumnWidth = layout.Length(c.Width)
	cfg.ColumnGap = layout.Length(c.Gap)
	cfg.RuleWidth = c.RuleWidth
	var err error
	cfg.Fill, err = lookup(path+".fill", c.Fill, fills)
	return cfg, err
}

func (it *ItemSpec) apply(path string, n *layout.Node) error {
	shrink := n.Item.Shrink
	if it.Shrink != nil {
		shrink = *it.Shrink
	}
	if err := n.SetFlex(it.Grow, shrink); err != nil {
		return wrap(path, err)
	}
	n.Item.Basis = layout.Length(it.Basis)
	var err error
	n.Item.AlignSelf, err = lookup(path+".align-self", it.AlignSelf, aligns)
	return err
}
