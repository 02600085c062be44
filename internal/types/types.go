// =============================================================================
// RSP Dashboard - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - dataset     (builds Records)
//   - period      (classifies Records by YearMode)
//   - aggregate   (filters Records by Selection)
//   - chart, validation, dashboard, server
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// RECORD
// =============================================================================

// Record is one normalized data row of the RSP dataset.
//
// Records are built once per load and never modified afterwards. All
// filtering and aggregation is read-only over a slice of Records.
type Record struct {
	// Country is the trimmed value of column 0. May be empty.
	Country string `json:"country"`

	// YearLabel is the free-text year column (column 1) with every '"' and
	// '\'' character removed, e.g. "Financial Year (Apr - Mar), 2025".
	YearLabel string `json:"yearLabel"`

	// MonthLabel is the free-text month column (column 2), e.g. "June, 2025".
	MonthLabel string `json:"monthLabel"`

	// DateISO is the date column (column 3), expected as YYYY-MM-DD.
	// It is kept verbatim and may fail to parse.
	DateISO string `json:"dateISO"`

	// Product is the fuel type (column 4), e.g. "Petrol" or "Diesel".
	Product string `json:"product"`

	// City is the metro city (column 5).
	City string `json:"city"`

	// Price is the retail selling price. 0.0 is the sentinel for a missing
	// or unparsable price and cannot be told apart from a genuine zero.
	Price float64 `json:"price"`

	// SourceRow is the 1-based row number in the parsed input. The header
	// is row 1, so the first data row is row 2.
	SourceRow int `json:"sourceRow"`
}

// =============================================================================
// YEAR MODE
// =============================================================================

// YearMode selects the year convention used for bucketing.
type YearMode string

const (
	// FinancialYear buckets dates into April-March years ("2024-2025").
	FinancialYear YearMode = "FY"

	// CalendarYear buckets dates into January-December years ("2024").
	CalendarYear YearMode = "CY"
)

// ErrUnknownYearMode is returned by ParseYearMode for unrecognized input.
var ErrUnknownYearMode = errors.New("unknown year mode")

// ParseYearMode converts user input into a YearMode.
//
// Accepted values (case-insensitive): "fy", "financial", "cy", "calendar".
// An empty string yields the fallback mode.
func ParseYearMode(s string, fallback YearMode) (YearMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return fallback, nil
	case "fy", "financial", "financial-year":
		return FinancialYear, nil
	case "cy", "calendar", "calendar-year":
		return CalendarYear, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownYearMode, s)
	}
}

// Label returns the human readable name of the mode.
func (m YearMode) Label() string {
	if m == CalendarYear {
		return "Calendar Year"
	}
	return "Financial Year"
}

// =============================================================================
// SELECTION
// =============================================================================

// Selection is the filter state chosen by the user.
//
// It is passed explicitly into the aggregator and option deriver rather
// than held as ambient state. Empty City, Product or YearBucket fields mean
// "do not filter on this field".
type Selection struct {
	City       string   `json:"city"`
	Product    string   `json:"product"`
	YearBucket string   `json:"yearBucket"`
	Mode       YearMode `json:"mode"`
}

// WithDefaults returns a copy of s where every empty field is taken from
// defaults. Non-empty fields of s always win.
func (s Selection) WithDefaults(defaults Selection) Selection {
	if s.City == "" {
		s.City = defaults.City
	}
	if s.Product == "" {
		s.Product = defaults.Product
	}
	if s.Mode == "" {
		s.Mode = defaults.Mode
	}
	if s.YearBucket == "" {
		s.YearBucket = defaults.YearBucket
	}
	return s
}
