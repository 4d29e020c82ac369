package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/redlist-cli/internal/utils"
)

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// Save serializes the document and writes it atomically to path.
func (d *Document) Save(path string) error {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

// Write serializes the document as a .docx zip package to w.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", d.contentTypes()},
		{"_rels/.rels", packageRels},
		{"docProps/core.xml", d.coreProps()},
		{"word/_rels/document.xml.rels", d.documentRels()},
		{"word/styles.xml", d.styles()},
		{"word/document.xml", d.documentXML()},
	}
	if d.Header != nil {
		parts = append(parts, struct {
			name string
			body string
		}{"word/header1.xml", d.headerXML()})
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := io.WriteString(f, p.body); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close docx: %w", err)
	}
	return nil
}

const packageRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

func (d *Document) contentTypes() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	sb.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	sb.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	if d.Header != nil {
		sb.WriteString(`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`)
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

func (d *Document) coreProps() string {
	now := time.Now().UTC().Format(time.RFC3339)
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	sb.WriteString(`<dc:title>` + escape(d.Title) + `</dc:title>`)
	sb.WriteString(`<dc:identifier>` + escape(d.ID) + `</dc:identifier>`)
	sb.WriteString(`<dcterms:created xsi:type="dcterms:W3CDTF">` + now + `</dcterms:created>`)
	sb.WriteString(`</cp:coreProperties>`)
	return sb.String()
}

func (d *Document) documentRels() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	sb.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	if d.Header != nil {
		sb.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>`)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func (d *Document) styles() string {
	heading := d.HeadingSize
	if heading <= 0 {
		heading = 16
	}
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<w:styles xmlns:w="` + nsW + `">`)
	sb.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/>` +
		`<w:pPr><w:spacing w:after="0"/></w:pPr><w:rPr><w:sz w:val="22"/><w:szCs w:val="22"/></w:rPr></w:style>`)
	sb.WriteString(`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>` +
		`<w:next w:val="Normal"/><w:qFormat/><w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr>` +
		`<w:rPr><w:b/>` + sizeXML(heading) + `</w:rPr></w:style>`)
	sb.WriteString(`<w:style w:type="table" w:default="1" w:styleId="TableNormal"><w:name w:val="Normal Table"/>` +
		`<w:tblPr><w:tblCellMar><w:left w:w="108" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>`)
	sb.WriteString(`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:basedOn w:val="TableNormal"/>` +
		`<w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`</w:tblBorders></w:tblPr></w:style>`)
	sb.WriteString(`</w:styles>`)
	return sb.String()
}

func (d *Document) headerXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<w:hdr xmlns:w="` + nsW + `" xmlns:r="` + nsR + `">`)
	writeParagraph(&sb, d.Header)
	sb.WriteString(`</w:hdr>`)
	return sb.String()
}

func (d *Document) documentXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `"><w:body>`)
	for _, b := range d.Body {
		switch v := b.(type) {
		case *Paragraph:
			writeParagraph(&sb, v)
		case *Table:
			writeTable(&sb, v)
		}
	}
	sb.WriteString(`<w:sectPr>`)
	if d.Header != nil {
		sb.WriteString(`<w:headerReference w:type="default" r:id="rId2"/>`)
	}
	// A4 portrait
	sb.WriteString(`<w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1417" w:right="1417" w:bottom="1134" w:left="1417" w:header="708" w:footer="708" w:gutter="0"/>`)
	sb.WriteString(`</w:sectPr></w:body></w:document>`)
	return sb.String()
}

func writeParagraph(sb *strings.Builder, p *Paragraph) {
	sb.WriteString(`<w:p>`)
	if p.Style != "" || p.Align != AlignDefault {
		sb.WriteString(`<w:pPr>`)
		if p.Style != "" {
			sb.WriteString(`<w:pStyle w:val="` + escape(p.Style) + `"/>`)
		}
		if p.Align != AlignDefault {
			sb.WriteString(`<w:jc w:val="` + string(p.Align) + `"/>`)
		}
		sb.WriteString(`</w:pPr>`)
	}
	for _, r := range p.Runs {
		writeRun(sb, r)
	}
	sb.WriteString(`</w:p>`)
}

func writeRun(sb *strings.Builder, r *Run) {
	sb.WriteString(`<w:r>`)
	if r.Bold || r.Size > 0 {
		sb.WriteString(`<w:rPr>`)
		if r.Bold {
			sb.WriteString(`<w:b/><w:bCs/>`)
		}
		if r.Size > 0 {
			sb.WriteString(sizeXML(r.Size))
		}
		sb.WriteString(`</w:rPr>`)
	}
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			sb.WriteString(`<w:br/>`)
		}
		if line != "" {
			sb.WriteString(`<w:t xml:space="preserve">` + escape(line) + `</w:t>`)
		}
	}
	sb.WriteString(`</w:r>`)
}

func writeTable(sb *strings.Builder, t *Table) {
	sb.WriteString(`<w:tbl><w:tblPr>`)
	if t.Style != "" {
		sb.WriteString(`<w:tblStyle w:val="` + escape(t.Style) + `"/>`)
	}
	sb.WriteString(`<w:tblW w:w="0" w:type="auto"/>`)
	if t.Align != AlignDefault {
		sb.WriteString(`<w:jc w:val="` + string(t.Align) + `"/>`)
	}
	if t.Fixed {
		sb.WriteString(`<w:tblLayout w:type="fixed"/>`)
	}
	sb.WriteString(`<w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="1" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/>`)
	sb.WriteString(`</w:tblPr><w:tblGrid>`)
	for _, w := range t.Widths {
		sb.WriteString(`<w:gridCol w:w="` + strconv.Itoa(twips(w)) + `"/>`)
	}
	sb.WriteString(`</w:tblGrid>`)
	for _, row := range t.Rows {
		sb.WriteString(`<w:tr>`)
		if row.Header {
			sb.WriteString(`<w:trPr><w:tblHeader/></w:trPr>`)
		}
		for j, c := range row.Cells {
			if c.hidden {
				continue
			}
			writeCell(sb, c, spanWidth(t.Widths, j, c.span))
		}
		sb.WriteString(`</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
}

func writeCell(sb *strings.Builder, c *Cell, width float64) {
	sb.WriteString(`<w:tc><w:tcPr>`)
	if width > 0 {
		sb.WriteString(`<w:tcW w:w="` + strconv.Itoa(twips(width)) + `" w:type="dxa"/>`)
	}
	if c.span > 1 {
		sb.WriteString(`<w:gridSpan w:val="` + strconv.Itoa(c.span) + `"/>`)
	}
	if c.Fill != "" {
		sb.WriteString(`<w:shd w:val="clear" w:color="auto" w:fill="` + escape(c.Fill) + `"/>`)
	}
	sb.WriteString(`</w:tcPr>`)
	if len(c.Paragraphs) == 0 {
		// a cell must hold at least one paragraph
		sb.WriteString(`<w:p/>`)
	}
	for _, p := range c.Paragraphs {
		writeParagraph(sb, p)
	}
	sb.WriteString(`</w:tc>`)
}

func spanWidth(widths []float64, from, span int) float64 {
	var total float64
	for j := from; j < from+span && j < len(widths); j++ {
		total += widths[j]
	}
	return total
}

// twips converts centimetres to twentieths of a point.
func twips(cm float64) int {
	return int(math.Round(cm * 1440 / 2.54))
}

func sizeXML(pt float64) string {
	half := strconv.Itoa(int(math.Round(pt * 2)))
	return `<w:sz w:val="` + half + `"/><w:szCs w:val="` + half + `"/>`
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
