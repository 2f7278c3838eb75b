package imports

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// ParseUpload turns an uploaded file into rows. Spreadsheet workbooks are
// detected by the ZIP container magic and handed to the workbook reader;
// everything else is decoded to UTF-8 text (honoring UTF-8 and UTF-16 byte
// order marks) and parsed as delimited text. The extension is only a
// gatekeeper; content decides the parse path.
func ParseUpload(filename string, contents []byte) ([]Row, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".xlsx", ".xls", ".txt":
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}

	if bytes.HasPrefix(contents, zipMagic) {
		return ParseWorkbook(contents)
	}

	text, err := decodeText(contents)
	if err != nil {
		return nil, fmt.Errorf("decode upload: %w", err)
	}
	return ParseTable(text)
}

// decodeText converts raw bytes to a UTF-8 string, stripping a UTF-8 BOM and
// transcoding UTF-16 (either endianness, BOM-detected) to UTF-8.
func decodeText(contents []byte) (string, error) {
	decoder := unicode.UTF8BOM.NewDecoder()
	if len(contents) >= 2 {
		switch {
		case contents[0] == 0xFF && contents[1] == 0xFE,
			contents[0] == 0xFE && contents[1] == 0xFF:
			decoder = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		}
	}
	decoded, _, err := transform.Bytes(decoder, contents)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
