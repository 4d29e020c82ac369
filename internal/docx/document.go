// Package docx holds a small WordprocessingML document model (paragraphs, runs,
// tables with shading and horizontal merges) and writes it as a .docx package.
package docx

import (
	"strings"

	"github.com/google/uuid"
)

// Alignment is a paragraph or table justification value.
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// Block is an element of the document body: a *Paragraph or a *Table.
type Block interface {
	block()
}

// Run is a span of text sharing one set of font properties.
type Run struct {
	Text string
	Bold bool
	// Size is the font size in points; 0 inherits from the style.
	Size float64
}

// Paragraph is a sequence of runs.
type Paragraph struct {
	Runs  []*Run
	Align Alignment
	Style string
}

func (*Paragraph) block() {}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// AddRun appends a run with the given text.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: text}
	p.Runs = append(p.Runs, r)
	return r
}

// Document is an in-memory .docx document. It is not safe for concurrent use.
type Document struct {
	// ID is written to the core properties as dc:identifier.
	ID    string
	Title string
	// Header is the default section header; nil means no header part.
	Header *Paragraph
	Body   []Block
	// HeadingSize overrides the Heading1 style font size in points.
	HeadingSize float64
}

// New returns an empty document with a fresh identifier.
func New() *Document {
	return &Document{ID: uuid.NewString(), HeadingSize: 16}
}

// AddParagraph appends a paragraph holding text. Empty text yields an empty paragraph.
func (d *Document) AddParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.AddRun(text)
	}
	d.Body = append(d.Body, p)
	return p
}

// AddTable appends a rows x cols table with empty cells.
func (d *Document) AddTable(rows, cols int) *Table {
	t := NewTable(rows, cols)
	d.Body = append(d.Body, t)
	return t
}

// SetHeader sets the section header to a single centered Heading1 paragraph.
func (d *Document) SetHeader(text string) *Paragraph {
	p := &Paragraph{Align: AlignCenter, Style: "Heading1"}
	p.AddRun(text)
	d.Header = p
	return p
}

// Tables returns the body tables in document order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.Body {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}
