package imports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads the first sheet of an xlsx workbook into rows using the
// same header-zip semantics as ParseTable: first non-blank row is the header,
// short rows pad with empty strings, all-blank rows are skipped.
func ParseWorkbook(contents []byte) ([]Row, error) {
	book, err := excelize.OpenReader(bytes.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}
	cells, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var header []string
	var rows []Row
	for _, line := range cells {
		blank := true
		for _, cell := range line {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		if header == nil {
			header = make([]string, len(line))
			for i, cell := range line {
				header[i] = strings.TrimSpace(cell)
			}
			continue
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(line) {
				row[name] = strings.TrimSpace(line[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	if header == nil {
		return nil, ErrNoData
	}
	return rows, nil
}
