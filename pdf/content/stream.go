// Package content builds PDF content streams for laid out pages.
package content

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Operator represents a PDF content stream operator.
type Operator string

// Operators emitted by the builder
const (
	// Graphics state operators
	OpSaveState    Operator = "q"
	OpRestoreState Operator = "Q"
	OpSetLineWidth Operator = "w"
	OpConcat       Operator = "cm"

	// Path operators
	OpRectangle Operator = "re"
	OpStroke    Operator = "S"
	OpFill      Operator = "f"
	OpClip      Operator = "W"
	OpEndPath   Operator = "n"

	// Text operators
	OpBeginText Operator = "BT"
	OpEndText   Operator = "ET"
	OpSetFont   Operator = "Tf"
	OpTextMove  Operator = "Td"
	OpShowText  Operator = "Tj"

	// XObject operators
	OpDrawXObject Operator = "Do"

	// Color operators
	OpSetStrokeGray Operator = "G"
	OpSetFillGray   Operator = "g"
)

// Name is a PDF name operand.
type Name string

// literal is an already escaped PDF string operand.
type literal string

// Operation represents a single operation in a content stream.
type Operation struct {
	Operator Operator
	Operands []any
}

// Stream is an ordered list of operations.
type Stream struct {
	Operations []Operation
}

// Add appends an operation.
func (s *Stream) Add(op Operator, operands ...any) {
	s.Operations = append(s.Operations, Operation{Operator: op, Operands: operands})
}

// Render renders the stream to bytes, one operation per line.
func (s *Stream) Render() []byte {
	var buf bytes.Buffer
	for _, op := range s.Operations {
		for _, operand := range op.Operands {
			buf.WriteString(formatOperand(operand))
			buf.WriteByte(' ')
		}
		buf.WriteString(string(op.Operator))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func formatOperand(v any) string {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(math.Round(val*1e4)/1e4, 'f', -1, 64)
	case Name:
		return "/" + string(val)
	case literal:
		return "(" + string(val) + ")"
	default:
		return ""
	}
}

// Builder provides a fluent interface for building content streams.
type Builder struct {
	stream Stream
}

// NewBuilder creates a new content builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SaveState saves the graphics state.
func (b *Builder) SaveState() *Builder {
	b.stream.Add(OpSaveState)
	return b
}

// RestoreState restores the graphics state.
func (b *Builder) RestoreState() *Builder {
	b.stream.Add(OpRestoreState)
	return b
}

// Transform concatenates a matrix to the current transformation matrix.
func (b *Builder) Transform(a, bb, c, d, e, f float64) *Builder {
	b.stream.Add(OpConcat, a, bb, c, d, e, f)
	return b
}

// DrawXObject paints the named XObject resource.
func (b *Builder) DrawXObject(resource string) *Builder {
	b.stream.Add(OpDrawXObject, Name(resource))
	return b
}

// Rectangle appends a rectangle path.
func (b *Builder) Rectangle(x, y, width, height float64) *Builder {
	b.stream.Add(OpRectangle, x, y, width, height)
	return b
}

// Stroke strokes the path.
func (b *Builder) Stroke() *Builder {
	b.stream.Add(OpStroke)
	return b
}

// Fill fills the path.
func (b *Builder) Fill() *Builder {
	b.stream.Add(OpFill)
	return b
}

// Clip intersects the clipping path with the current path and ends it.
func (b *Builder) Clip() *Builder {
	b.stream.Add(OpClip)
	b.stream.Add(OpEndPath)
	return b
}

// SetLineWidth sets the line width.
func (b *Builder) SetLineWidth(width float64) *Builder {
	b.stream.Add(OpSetLineWidth, width)
	return b
}

// SetStrokeGray sets the stroke color (grayscale).
func (b *Builder) SetStrokeGray(gray float64) *Builder {
	b.stream.Add(OpSetStrokeGray, gray)
	return b
}

// SetFillGray sets the fill color (grayscale).
func (b *Builder) SetFillGray(gray float64) *Builder {
	b.stream.Add(OpSetFillGray, gray)
	return b
}

// BeginText begins a text object.
func (b *Builder) BeginText() *Builder {
	b.stream.Add(OpBeginText)
	return b
}

// EndText ends a text object.
func (b *Builder) EndText() *Builder {
	b.stream.Add(OpEndText)
	return b
}

// SetFont selects a font resource and size.
func (b *Builder) SetFont(resource string, size float64) *Builder {
	b.stream.Add(OpSetFont, Name(resource), size)
	return b
}

// TextPosition moves to the start of the next line.
func (b *Builder) TextPosition(x, y float64) *Builder {
	b.stream.Add(OpTextMove, x, y)
	return b
}

// ShowText shows already encoded text.
func (b *Builder) ShowText(text string) *Builder {
	b.stream.Add(OpShowText, literal(escapeString(text)))
	return b
}

// Stream returns the content stream built so far.
func (b *Builder) Stream() *Stream {
	return &b.stream
}

// Render renders the content stream to bytes.
func (b *Builder) Render() []byte {
	return b.stream.Render()
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", `\n`)

func escapeString(s string) string {
	return escaper.Replace(s)
}
