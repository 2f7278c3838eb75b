package imports

import (
	"errors"
	"strings"
)

// ErrNoData is returned when an uploaded file contains zero non-blank lines.
var ErrNoData = errors.New("no data")

// ParseTable converts delimited text into an ordered sequence of rows. The
// first non-blank line is the header; every following non-blank line is
// zipped positionally against it. A row shorter than the header yields empty
// strings for the missing trailing columns; extra cells are dropped. A data
// line whose cells are all empty after trimming is skipped without consuming
// a row position.
//
// The splitter honors double-quoted fields: a comma inside an open quote is
// not a separator, and a doubled quote inside a quoted field is an escaped
// literal quote.
func ParseTable(contents string) ([]Row, error) {
	var lines []string
	for _, line := range strings.Split(contents, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, ErrNoData
	}

	header := splitLine(lines[0])
	for i, cell := range header {
		header[i] = strings.TrimSpace(cell)
	}

	var rows []Row
	for _, line := range lines[1:] {
		cells := splitLine(line)
		blank := true
		for _, cell := range cells {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(cells) {
				row[name] = strings.TrimSpace(cells[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// splitLine is a quote-aware field splitter. Wrapping quotes are stripped
// from each field; "" inside a quoted field produces a literal quote.
func splitLine(line string) []string {
	line = strings.TrimSuffix(line, "\r")

	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if quoted && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			quoted = !quoted
		case ch == ',' && !quoted:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())
	return fields
}
