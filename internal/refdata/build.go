package refdata

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/redlist-cli/internal/utils"
)

// BuildResult summarizes a consolidation run.
type BuildResult struct {
	Path    string
	Files   []string
	Rows    int
	Columns []string
}

// Build reads the first sheet of every .xlsx file in dir, concatenates the
// rows and writes them `|`-separated to out, replacing any previous file.
// All spreadsheets must carry the same set of header names; columns are
// aligned to the first file's order. Nothing is written on error.
func Build(dir, out string) (*BuildResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") || !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no .xlsx files in %s", dir)
	}

	var merged *Table
	for _, path := range files {
		t, err := ReadSheet(path, "")
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = NewTable(out, t.Header, t.Rows)
			continue
		}
		if err := appendAligned(merged, t); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := merged.Write(&buf); err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(out, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write reference: %w", err)
	}
	return &BuildResult{Path: out, Files: files, Rows: len(merged.Rows), Columns: merged.Header}, nil
}

func appendAligned(dst, src *Table) error {
	var missing, extra []string
	for _, h := range dst.Header {
		if _, ok := src.Column(h); !ok {
			missing = append(missing, h)
		}
	}
	for _, h := range src.Header {
		if _, ok := dst.Column(h); !ok {
			extra = append(extra, h)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return &SchemaError{Source: src.Source, Missing: missing, Extra: extra}
	}
	for _, row := range src.Rows {
		aligned := make([]string, len(dst.Header))
		for i, h := range dst.Header {
			j, _ := src.Column(h)
			aligned[i] = row[j]
		}
		dst.Rows = append(dst.Rows, aligned)
	}
	return nil
}

// ReadSheet reads a worksheet into a Table; the first non-empty row is the
// header. An empty sheet name selects the first sheet.
func ReadSheet(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, filepath.Base(path), err)
	}
	var header []string
	var data [][]string
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if header == nil {
			header = make([]string, len(row))
			for i, h := range row {
				header[i] = strings.TrimSpace(h)
			}
			continue
		}
		data = append(data, row)
	}
	if header == nil {
		return nil, &SchemaError{Source: path}
	}
	return NewTable(path, header, data), nil
}

// Write encodes the table `|`-separated with a header row.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
