package features

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/redlist-cli/internal/refdata"
)

// csvOpener reads attribute tables exported as delimited text.
type csvOpener struct{}

func (csvOpener) CanOpen(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".csv" || ext == ".tsv" || ext == ".txt"
}

func (csvOpener) Open(path, _ string) (Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	t, err := refdata.ParseWith(path, br, sniffDelimiter(string(first)))
	if err != nil {
		return nil, err
	}
	return fromTable(layerName(path), t), nil
}

// sniffDelimiter picks the candidate occurring most often in the first line.
func sniffDelimiter(sample string) rune {
	line := sample
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '|', '\t'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// xlsxOpener reads an attribute table exported to a spreadsheet; layer names
// the sheet.
type xlsxOpener struct{}

func (xlsxOpener) CanOpen(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func (xlsxOpener) Open(path, layer string) (Collection, error) {
	t, err := refdata.ReadSheet(path, layer)
	if err != nil {
		return nil, err
	}
	name := layer
	if name == "" {
		name = layerName(path)
	}
	return fromTable(name, t), nil
}

// fromTable converts a string table; empty cells become NULL.
func fromTable(name string, t *refdata.Table) *Memory {
	rows := make([]map[string]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		rec := make(map[string]any, len(t.Header))
		for i, h := range t.Header {
			if r[i] == "" {
				rec[h] = nil
				continue
			}
			rec[h] = r[i]
		}
		rows = append(rows, rec)
	}
	return NewMemory(name, t.Header, rows)
}

func layerName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
