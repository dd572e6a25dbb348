// Package content builds PDF page content streams.
package content

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/buffalographics/fleet-spec-sheet/pdf/generic"
)

// Operator represents a PDF content stream operator.
type Operator string

// Operators used by the sheet renderer.
const (
	OpSaveState    Operator = "q"
	OpRestoreState Operator = "Q"
	OpSetCTM       Operator = "cm"
	OpSetLineWidth Operator = "w"

	OpMoveTo    Operator = "m"
	OpLineTo    Operator = "l"
	OpRectangle Operator = "re"

	OpStroke Operator = "S"
	OpFill   Operator = "f"

	OpBeginText Operator = "BT"
	OpEndText   Operator = "ET"
	OpSetFont   Operator = "Tf"
	OpTextMove  Operator = "Td"
	OpShowText  Operator = "Tj"

	OpSetStrokeGray Operator = "G"
	OpSetFillGray   Operator = "g"
	OpSetFillRGB    Operator = "rg"

	OpPaintXObject Operator = "Do"
)

// ContentStream is an ordered list of operations.
type ContentStream struct {
	Operations []Operation
}

// Operation represents a single operation in a content stream.
type Operation struct {
	Operator Operator
	Operands []any
}

// NewContentStream creates a new empty content stream.
func NewContentStream() *ContentStream {
	return &ContentStream{}
}

// AddOperation adds an operation to the content stream.
func (cs *ContentStream) AddOperation(op Operator, operands ...any) {
	cs.Operations = append(cs.Operations, Operation{Operator: op, Operands: operands})
}

// Render renders the content stream to bytes.
func (cs *ContentStream) Render() []byte {
	var buf bytes.Buffer
	for _, op := range cs.Operations {
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
		return generic.FormatReal(val)
	case string:
		return val
	case generic.PdfObject:
		var buf bytes.Buffer
		val.Write(&buf)
		return buf.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ContentBuilder provides a fluent interface for building content streams.
type ContentBuilder struct {
	stream *ContentStream
}

// NewContentBuilder creates a new content builder.
func NewContentBuilder() *ContentBuilder {
	return &ContentBuilder{stream: NewContentStream()}
}

// SaveState saves the graphics state.
func (cb *ContentBuilder) SaveState() *ContentBuilder {
	cb.stream.AddOperation(OpSaveState)
	return cb
}

// RestoreState restores the graphics state.
func (cb *ContentBuilder) RestoreState() *ContentBuilder {
	cb.stream.AddOperation(OpRestoreState)
	return cb
}

// Transform concatenates a matrix to the current transformation.
func (cb *ContentBuilder) Transform(a, b, c, d, e, f float64) *ContentBuilder {
	cb.stream.AddOperation(OpSetCTM, a, b, c, d, e, f)
	return cb
}

// Translate moves the origin.
func (cb *ContentBuilder) Translate(tx, ty float64) *ContentBuilder {
	return cb.Transform(1, 0, 0, 1, tx, ty)
}

// Scale scales the coordinate system.
func (cb *ContentBuilder) Scale(sx, sy float64) *ContentBuilder {
	return cb.Transform(sx, 0, 0, sy, 0, 0)
}

// MoveTo moves to a point.
func (cb *ContentBuilder) MoveTo(x, y float64) *ContentBuilder {
	cb.stream.AddOperation(OpMoveTo, x, y)
	return cb
}

// LineTo draws a line to a point.
func (cb *ContentBuilder) LineTo(x, y float64) *ContentBuilder {
	cb.stream.AddOperation(OpLineTo, x, y)
	return cb
}

// Rectangle appends a rectangle to the path.
func (cb *ContentBuilder) Rectangle(x, y, width, height float64) *ContentBuilder {
	cb.stream.AddOperation(OpRectangle, x, y, width, height)
	return cb
}

// Stroke strokes the path.
func (cb *ContentBuilder) Stroke() *ContentBuilder {
	cb.stream.AddOperation(OpStroke)
	return cb
}

// Fill fills the path.
func (cb *ContentBuilder) Fill() *ContentBuilder {
	cb.stream.AddOperation(OpFill)
	return cb
}

// BeginText begins a text object.
func (cb *ContentBuilder) BeginText() *ContentBuilder {
	cb.stream.AddOperation(OpBeginText)
	return cb
}

// EndText ends a text object.
func (cb *ContentBuilder) EndText() *ContentBuilder {
	cb.stream.AddOperation(OpEndText)
	return cb
}

// SetFont sets the font resource and size.
func (cb *ContentBuilder) SetFont(font string, size float64) *ContentBuilder {
	cb.stream.AddOperation(OpSetFont, generic.NameObject(font), size)
	return cb
}

// TextPosition moves to the start of the next line.
func (cb *ContentBuilder) TextPosition(x, y float64) *ContentBuilder {
	cb.stream.AddOperation(OpTextMove, x, y)
	return cb
}

// ShowText shows text already encoded for the current font.
func (cb *ContentBuilder) ShowText(encoded []byte) *ContentBuilder {
	cb.stream.AddOperation(OpShowText, string(generic.EscapeLiteral(encoded)))
	return cb
}

// SetFillColor sets the fill color (RGB, 0 to 1).
func (cb *ContentBuilder) SetFillColor(r, g, b float64) *ContentBuilder {
	cb.stream.AddOperation(OpSetFillRGB, r, g, b)
	return cb
}

// SetStrokeGray sets the stroke color (grayscale).
func (cb *ContentBuilder) SetStrokeGray(gray float64) *ContentBuilder {
	cb.stream.AddOperation(OpSetStrokeGray, gray)
	return cb
}

// SetFillGray sets the fill color (grayscale).
func (cb *ContentBuilder) SetFillGray(gray float64) *ContentBuilder {
	cb.stream.AddOperation(OpSetFillGray, gray)
	return cb
}

// SetLineWidth sets the line width.
func (cb *ContentBuilder) SetLineWidth(width float64) *ContentBuilder {
	cb.stream.AddOperation(OpSetLineWidth, width)
	return cb
}

// PaintXObject paints an XObject.
func (cb *ContentBuilder) PaintXObject(name string) *ContentBuilder {
	cb.stream.AddOperation(OpPaintXObject, generic.NameObject(name))
	return cb
}

// Build returns the content stream.
func (cb *ContentBuilder) Build() *ContentStream {
	return cb.stream
}

// Render renders the content stream to bytes.
func (cb *ContentBuilder) Render() []byte {
	return cb.stream.Render()
}
