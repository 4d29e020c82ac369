package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// ReadPart returns the raw bytes of a named part (e.g. "word/document.xml")
// from a .docx package.
func ReadPart(content []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%s not found in DOCX", name)
}

// ExtractText returns the plain text of the document body. Table cells are
// separated by " | " and paragraphs by newlines.
func ExtractText(content []byte) (string, error) {
	return ExtractPartText(content, "word/document.xml")
}

// ExtractPartText is ExtractText for any WordprocessingML part, such as
// "word/header1.xml".
func ExtractPartText(content []byte, name string) (string, error) {
	docXML, err := ReadPart(content, name)
	if err != nil {
		return "", err
	}
	text := strings.ReplaceAll(string(docXML), "</w:p></w:tc>", " | ")
	text = strings.ReplaceAll(text, "<w:p/></w:tc>", " | ")
	text = strings.ReplaceAll(text, "</w:p>", "\n")
	text = strings.ReplaceAll(text, "</w:tr>", "\n")
	text = strings.ReplaceAll(text, "<w:br/>", "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(l), "|"))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n"), nil
}
