// =============================================================================
// RSP Dashboard - Record Normalizer
// =============================================================================
//
// This module converts parsed rows into typed Records.
//
// COLUMN MAPPING (positional, every value trimmed):
//   | 0       | 1          | 2          | 3       | 4       | 5    | ... | price* |
//   | country | yearLabel  | monthLabel | dateISO | product | city | ... |        |
//
//   * The price column is found by ResolvePriceColumn and may be anywhere.
//
// TOLERANCE:
//   - Rows shorter than the header are padded with "" (never an error).
//   - Completely empty rows are skipped.
//   - An unparsable price becomes 0.0.
//
// =============================================================================

package dataset

import (
	"strconv"
	"strings"

	"github.com/ginjaninja78/rsp-dashboard/internal/csvparser"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// Positional column indexes of the non-price fields.
const (
	colCountry = iota
	colYearLabel
	colMonthLabel
	colDateISO
	colProduct
	colCity

	// minColumns is the width every row is padded to, even when the header
	// itself is narrower.
	minColumns
)

// =============================================================================
// NORMALIZATION
// =============================================================================

// Normalize converts rows into Records.
//
// PARAMETERS:
//   - rows: All parsed rows. rows[0] is the header and is not emitted.
//
// RETURNS:
//   - One Record per non-empty data row, in input order. Each record's
//     SourceRow is its 1-based position in rows.
func Normalize(rows [][]string) []types.Record {
	if len(rows) == 0 {
		return nil
	}

	header := cleanHeader(rows[0])
	priceIdx := ResolvePriceColumn(header)

	width := len(header)
	if width < minColumns {
		width = minColumns
	}

	records := make([]types.Record, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if csvparser.IsRowEmpty(row) {
			continue
		}
		records = append(records, normalizeRow(padRow(row, width), priceIdx, i+1))
	}

	return records
}

// normalizeRow maps one padded row onto a Record.
func normalizeRow(row []string, priceIdx, sourceRow int) types.Record {
	rec := types.Record{
		Country:    strings.TrimSpace(row[colCountry]),
		YearLabel:  strings.TrimSpace(stripQuotes(row[colYearLabel])),
		MonthLabel: strings.TrimSpace(row[colMonthLabel]),
		DateISO:    strings.TrimSpace(row[colDateISO]),
		Product:    strings.TrimSpace(row[colProduct]),
		City:       strings.TrimSpace(row[colCity]),
		SourceRow:  sourceRow,
	}
	if priceIdx >= 0 && priceIdx < len(row) {
		rec.Price = ParsePrice(row[priceIdx])
	}
	return rec
}

// padRow right-pads row with empty strings up to width. The input slice is
// never modified.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// cleanHeader trims every header cell.
func cleanHeader(header []string) []string {
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}

// stripQuotes removes every '"' and '\'' character.
func stripQuotes(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\'' {
			return -1
		}
		return r
	}, s)
}

// =============================================================================
// PRICE PARSING
// =============================================================================

// ParsePrice converts a raw price cell into a number.
//
// PROCESS:
//   1. Drop every character that is not an ASCII digit or '.'.
//   2. Read the longest leading number: digits, an optional '.', digits.
//   3. Parse it as float64.
//
// EXAMPLES:
//   "₹ 96.72" -> 96.72
//   "1,234.5" -> 1234.5
//   "96.72.1" -> 96.72
//   "", "N/A", "." -> 0
func ParsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)

	num := leadingNumber(cleaned)
	if num == "" || num == "." {
		return 0
	}

	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return val
}

// leadingNumber returns the prefix of s that forms a decimal number, stopping
// at the second '.'.
func leadingNumber(s string) string {
	seenDot := false
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			if seenDot {
				return s[:i]
			}
			seenDot = true
		}
	}
	return s
}
