// Package colorrule maps categorical status codes to cell fill colors.
package colorrule

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/redlist-cli/internal/docx"
)

var (
	// ErrDuplicateRule is returned when two rules share the same text.
	ErrDuplicateRule = errors.New("duplicate color rule")
	// ErrInvalidColor is returned for fills that are not six hex digits.
	ErrInvalidColor = errors.New("invalid fill color")
)

// Rule fills a cell whose text equals Text with Fill.
type Rule struct {
	Text string `yaml:"text" json:"text"`
	Fill string `yaml:"fill" json:"fill"`
}

// Set is an immutable text -> fill lookup.
type Set struct {
	fills map[string]string
}

// New validates rules and builds a Set. Fills may carry a leading '#'; they
// are stored as upper-case hex.
func New(rules []Rule) (*Set, error) {
	s := &Set{fills: make(map[string]string, len(rules))}
	for _, r := range rules {
		if r.Text == "" {
			return nil, fmt.Errorf("color rule with empty text (fill %q)", r.Fill)
		}
		if _, dup := s.fills[r.Text]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, r.Text)
		}
		fill, err := normalizeFill(r.Fill)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Text, err)
		}
		s.fills[r.Text] = fill
	}
	return s, nil
}

func normalizeFill(fill string) (string, error) {
	f := strings.TrimPrefix(strings.TrimSpace(fill), "#")
	if len(f) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, fill)
	}
	for _, c := range f {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, fill)
		}
	}
	return strings.ToUpper(f), nil
}

// Fill returns the fill for text.
func (s *Set) Fill(text string) (string, bool) {
	if s == nil {
		return "", false
	}
	f, ok := s.fills[text]
	return f, ok
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fills)
}

// Keys returns the rule texts in sorted order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.fills))
	for k := range s.fills {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply fills every visible cell of rows from..len(t.Rows)-1 whose text
// matches a rule and returns the number of filled cells. Unmatched cells are
// left untouched.
func (s *Set) Apply(t *docx.Table, from int) int {
	n := 0
	for i := from; i < len(t.Rows); i++ {
		for _, c := range t.Rows[i].Cells {
			if c.Hidden() {
				continue
			}
			if fill, ok := s.Fill(c.Text()); ok {
				c.Fill = fill
				n++
			}
		}
	}
	return n
}
