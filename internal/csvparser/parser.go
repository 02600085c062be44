// =============================================================================
// RSP Dashboard - Delimited Text Parser
// =============================================================================
//
// This module turns raw delimited text into rows of string fields. It is
// purely lexical: it knows nothing about headers, column meaning or types.
//
// LEXICAL RULES:
//   - Fields are separated by ','.
//   - Rows are terminated by "\n", "\r\n", or a bare "\r".
//   - A '"' toggles quoting. Inside quotes, ',' and line breaks are literal
//     and a doubled '""' is an escaped quote character.
//   - End of input flushes whatever field/row is pending, even inside an
//     unterminated quote. A trailing newline is not required.
//   - Empty input yields zero rows.
//
// ENCODINGS:
//   Decode converts raw bytes to text before lexing. UTF-8 (with or without a
//   byte order mark), Windows-1252 and ISO-8859-1 are supported.
//
// =============================================================================

package csvparser

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned by Decode for an unsupported encoding name.
var ErrUnknownEncoding = errors.New("unknown encoding")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse splits text into rows of fields.
//
// PARAMETERS:
//   - text: The complete input text.
//
// RETURNS:
//   - The rows in input order. Rows may have different lengths.
//
// EDGE CASES:
//   - "a,b,\n" and "a,b," both yield ["a", "b", ""].
//   - A blank line between rows yields a one-field row [""].
//   - "\"x" (unterminated quote) yields ["x"].
func Parse(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool

		// pending is true once the current field has started: it has content,
		// it contained a quote, or it directly follows a comma.
		pending bool
	)

	flushField := func() {
		row = append(row, field.String())
		field.Reset()
		pending = false
	}
	flushRow := func() {
		rows = append(rows, row)
		row = nil
	}

	// Every delimiter is ASCII, so scanning bytes is safe for UTF-8 input:
	// multi-byte sequences never contain bytes below 0x80.
	for i := 0; i < len(text); i++ {
		ch := text[i]

		if ch == '"' {
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				pending = true
				i++
				continue
			}
			inQuotes = !inQuotes
			pending = true
			continue
		}

		if !inQuotes {
			switch ch {
			case ',':
				flushField()
				pending = true
				continue
			case '\n':
				flushField()
				flushRow()
				continue
			case '\r':
				flushField()
				flushRow()
				if i+1 < len(text) && text[i+1] == '\n' {
					i++
				}
				continue
			}
		}

		field.WriteByte(ch)
		pending = true
	}

	// Flush at end of input.
	if pending || inQuotes {
		flushField()
	}
	if len(row) > 0 {
		flushRow()
	}

	return rows
}

// ParseBytes decodes data with the named encoding and parses the result.
func ParseBytes(data []byte, encoding string) ([][]string, error) {
	text, err := Decode(data, encoding)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}

// =============================================================================
// ENCODING
// =============================================================================

// Decode converts raw bytes into a UTF-8 string.
//
// PARAMETERS:
//   - data: The raw file content.
//   - encoding: The encoding name. Matching ignores case, '-' and '_'.
//     Supported: "" / "UTF-8", "Windows-1252" / "CP1252",
//     "ISO-8859-1" / "Latin1".
//
// RETURNS:
//   - The decoded text. For UTF-8 a leading byte order mark is removed, and a
//     UTF-16 byte order mark switches decoding to UTF-16.
//   - ErrUnknownEncoding for any other name.
func Decode(data []byte, encoding string) (string, error) {
	var decoder transform.Transformer

	switch normalizeEncodingName(encoding) {
	case "", "utf8":
		decoder = xunicode.BOMOverride(transform.Nop)
	case "windows1252", "cp1252":
		decoder = charmap.Windows1252.NewDecoder()
	case "iso88591", "latin1":
		decoder = charmap.ISO8859_1.NewDecoder()
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownEncoding, encoding)
	}

	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode input as %s: %w", encoding, err)
	}

	return string(out), nil
}

// normalizeEncodingName lower-cases name and drops '-', '_' and spaces.
func normalizeEncodingName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// IsRowEmpty reports whether a row has no fields or only blank fields.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
