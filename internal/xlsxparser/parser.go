// =============================================================================
// RSP Dashboard - XLSX Source Reader
// =============================================================================
//
// This module reads RSP datasets that were exported as Excel workbooks
// instead of delimited text. It produces the same [][]string row shape as
// the csvparser package so both sources flow into one normalizer.
//
// WORKBOOK LAYOUT (Expected Columns):
//
//   | A       | B    | C          | D          | E       | F     | ... | last  |
//   |---------|------|------------|------------|---------|-------|-----|-------|
//   | Country | Year | Month      | Date       | Product | City  | ... | RSP   |
//   | India   | 2025 | June, 2025 | 2025-06-20 | Petrol  | Delhi | ... | 94.77 |
//
// Cells are read as their formatted text. Date cells should therefore use
// an ISO "yyyy-mm-dd" number format, or be stored as text.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoSheets is returned for a workbook without any worksheet.
	ErrNoSheets = errors.New("workbook has no sheets")

	// ErrSheetNotFound is returned when the requested worksheet is absent.
	ErrSheetNotFound = errors.New("sheet not found in workbook")
)

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadRows reads every row of one worksheet.
//
// PARAMETERS:
//   - r: The workbook bytes.
//   - sheet: The worksheet name. Empty selects the first sheet.
//
// RETURNS:
//   - The rows as text cells. Trailing empty cells are not included, so
//     rows may be ragged; the normalizer pads them.
//   - An error if the workbook cannot be opened or the sheet is missing.
func ReadRows(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

// SheetNames lists the worksheets of a workbook in tab order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func readSheet(f *excelize.File, sheet string) ([][]string, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, ErrNoSheets
		}
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheet, err)
	}
	return rows, nil
}
