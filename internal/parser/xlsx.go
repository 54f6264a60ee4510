package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxParser) Parse(path string) (*Table, error) {
	return ParseSheet(path, "")
}

// ParseSheet reads the named sheet, or the first sheet when sheet is empty.
func ParseSheet(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	target := sheets[0]
	if sheet != "" {
		found := false
		for _, s := range sheets {
			if strings.EqualFold(s, sheet) {
				target, found = s, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet '%s' not found; available sheets: %s", sheet, strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(target)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	header, recs := normalize(rows[0], rows[1:])
	return &Table{Header: header, Records: recs}, nil
}
