package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is the raw content of one source file: a header row followed by
// string records. Records are padded to the header width.
type Table struct {
	Name    string
	Header  []string
	Records [][]string
}

// Parser defines a raw source reader.
type Parser interface {
	CanParse(filename string) bool
	Parse(path string) (*Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns the parsed table.
func ParseFile(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	for _, p := range registry {
		if p.CanParse(path) {
			t, err := p.Parse(path)
			if err != nil {
				return nil, err
			}
			t.Name = filepath.Base(path)
			if len(t.Header) == 0 {
				return nil, fmt.Errorf("%s: %w", t.Name, ErrEmpty)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

func init() {
	// Register default parsers
	Register(csvParser{})
	Register(xlsxParser{})
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported source format")

// ErrEmpty indicates a source without a header row.
var ErrEmpty = errors.New("source has no header row")

// normalize trims cells, drops blank rows and pads records to the header width.
func normalize(header []string, rows [][]string) ([]string, [][]string) {
	h := make([]string, len(header))
	for i, c := range header {
		c = strings.TrimPrefix(c, "\ufeff")
		h[i] = strings.TrimSpace(c)
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := make([]string, len(h))
		blank := true
		for i := 0; i < len(h) && i < len(r); i++ {
			rec[i] = strings.TrimSpace(r[i])
			if rec[i] != "" && rec[i] != "NaN" {
				blank = false
			}
		}
		if blank {
			continue
		}
		out = append(out, rec)
	}
	return h, out
}
