package docx

import (
	"fmt"
	"strings"
)

// Cell is a table cell. A cell covered by a horizontal merge is hidden and
// not serialized; the merge origin carries the span.
type Cell struct {
	Paragraphs []*Paragraph
	// Fill is the background shading as six hex digits, empty for none.
	Fill   string
	span   int
	hidden bool
}

func newCell() *Cell {
	return &Cell{Paragraphs: []*Paragraph{{}}, span: 1}
}

// Text returns the cell text, paragraphs joined by newlines.
func (c *Cell) Text() string {
	parts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		parts[i] = p.Text()
	}
	return strings.Join(parts, "\n")
}

// SetText replaces the cell content with a single paragraph holding text.
func (c *Cell) SetText(text string) {
	p := &Paragraph{}
	if text != "" {
		p.AddRun(text)
	}
	c.Paragraphs = []*Paragraph{p}
}

// Span is the number of grid columns the cell covers.
func (c *Cell) Span() int { return c.span }

// Hidden reports whether the cell is covered by a merge.
func (c *Cell) Hidden() bool { return c.hidden }

// Runs returns every run of every paragraph in the cell.
func (c *Cell) Runs() []*Run {
	var out []*Run
	for _, p := range c.Paragraphs {
		out = append(out, p.Runs...)
	}
	return out
}

// Row is a table row. Header rows repeat on every page.
type Row struct {
	Cells  []*Cell
	Header bool
}

// Table is a rectangular grid of cells.
type Table struct {
	Rows  []*Row
	Style string
	Align Alignment
	// Widths holds per-column widths in centimetres; 0 leaves the column to autofit.
	Widths []float64
	// Fixed disables autofit.
	Fixed bool
	cols  int
}

func (*Table) block() {}

// NewTable returns a rows x cols table of empty cells.
func NewTable(rows, cols int) *Table {
	t := &Table{Widths: make([]float64, cols), cols: cols}
	for i := 0; i < rows; i++ {
		r := &Row{Cells: make([]*Cell, cols)}
		for j := range r.Cells {
			r.Cells[j] = newCell()
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// Cols returns the number of grid columns.
func (t *Table) Cols() int { return t.cols }

// Cell returns the cell at row r, column c. It panics when out of range.
func (t *Table) Cell(r, c int) *Cell {
	return t.Rows[r].Cells[c]
}

// Merge merges cells from..to (inclusive) of row r into the cell at from.
// Text of the covered cells is appended to the origin, as Word does.
func (t *Table) Merge(r, from, to int) (*Cell, error) {
	if r < 0 || r >= len(t.Rows) {
		return nil, fmt.Errorf("merge: row %d out of range", r)
	}
	if from < 0 || to >= t.cols || from >= to {
		return nil, fmt.Errorf("merge: invalid column range %d..%d", from, to)
	}
	row := t.Rows[r]
	for j := from; j <= to; j++ {
		if row.Cells[j].hidden || (j > from && row.Cells[j].span > 1) {
			return nil, fmt.Errorf("merge: column %d already merged", j)
		}
	}
	origin := row.Cells[from]
	if origin.span > 1 {
		return nil, fmt.Errorf("merge: column %d already merged", from)
	}
	for j := from + 1; j <= to; j++ {
		c := row.Cells[j]
		if txt := c.Text(); txt != "" {
			origin.Paragraphs = append(origin.Paragraphs, c.Paragraphs...)
		}
		c.hidden = true
		c.Paragraphs = []*Paragraph{{}}
	}
	origin.span = to - from + 1
	return origin, nil
}

// SetColumnWidth sets column c to cm centimetres.
func (t *Table) SetColumnWidth(c int, cm float64) {
	if c >= 0 && c < len(t.Widths) {
		t.Widths[c] = cm
	}
}

// VisibleCells returns the cells of row r not covered by a merge.
func (t *Table) VisibleCells(r int) []*Cell {
	var out []*Cell
	for _, c := range t.Rows[r].Cells {
		if !c.hidden {
			out = append(out, c)
		}
	}
	return out
}
