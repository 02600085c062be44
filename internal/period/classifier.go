// =============================================================================
// RSP Dashboard - Period Classifier
// =============================================================================
//
// This module derives the two period facts the aggregator groups by:
//
//   - YearBucket: computed from a record's DateISO, either a calendar year
//     ("2024") or an April-March financial year ("2024-2025").
//   - MonthKey:   computed from a record's free-text MonthLabel, one of the
//     twelve canonical abbreviations "Jan".."Dec".
//
// The two facts come from different source columns and are NOT
// cross-validated. A row labelled "June, 2025" with date 2025-07-01 buckets
// into July's year but June's month. Diagnostics for that case live in the
// validation package; nothing here reconciles them.
//
// =============================================================================

package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// =============================================================================
// MONTH ORDERING
// =============================================================================

var (
	calendarOrder  = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	financialOrder = []string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}
)

// MonthOrder returns the x-axis month order for mode: Apr..Mar for the
// financial year, Jan..Dec for the calendar year. The slice is a fresh copy.
func MonthOrder(mode types.YearMode) []string {
	src := financialOrder
	if mode == types.CalendarYear {
		src = calendarOrder
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// IsCanonical reports whether key is one of the twelve month abbreviations.
func IsCanonical(key string) bool {
	for _, m := range calendarOrder {
		if m == key {
			return true
		}
	}
	return false
}

// =============================================================================
// YEAR BUCKETS
// =============================================================================

// dateLayouts are tried in order by ParseDate. Only the calendar date part
// is used; no time-zone conversion is applied.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses an ISO-like date string.
//
// RETURNS:
//   - The parsed time and true on success.
//   - The zero time and false when no layout matches.
func ParseDate(dateISO string) (time.Time, bool) {
	s := strings.TrimSpace(dateISO)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// YearBucket derives the year bucket key of dateISO under mode.
//
// RETURNS:
//   - Calendar mode:  "YYYY".
//   - Financial mode: "Y-(Y+1)" where Y is the date's year for April onwards
//     and the previous year for January to March.
//   - ok == false when the date cannot be parsed; callers must skip the
//     record for bucketing.
//
// EXAMPLES:
//   2024-03-31 -> "2023-2024" (FY), "2024" (CY)
//   2024-04-01 -> "2024-2025" (FY), "2024" (CY)
func YearBucket(dateISO string, mode types.YearMode) (string, bool) {
	t, ok := ParseDate(dateISO)
	if !ok {
		return "", false
	}
	return bucketOf(t, mode), true
}

func bucketOf(t time.Time, mode types.YearMode) string {
	if mode == types.CalendarYear {
		return strconv.Itoa(t.Year())
	}
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// MonthOf returns the canonical month key of dateISO's month.
func MonthOf(dateISO string) (string, bool) {
	t, ok := ParseDate(dateISO)
	if !ok {
		return "", false
	}
	return calendarOrder[t.Month()-1], true
}

// =============================================================================
// MONTH KEYS
// =============================================================================

// monthNames maps lower-cased full and abbreviated English month names to
// the canonical key. The table is closed: anything else goes through the
// fallback in MonthKey.
var monthNames = map[string]string{
	"january": "Jan", "february": "Feb", "march": "Mar", "april": "Apr",
	"may": "May", "june": "Jun", "july": "Jul", "august": "Aug",
	"september": "Sep", "october": "Oct", "november": "Nov", "december": "Dec",
	"jan": "Jan", "feb": "Feb", "mar": "Mar", "apr": "Apr",
	"jun": "Jun", "jul": "Jul", "aug": "Aug", "sep": "Sep",
	"oct": "Oct", "nov": "Nov", "dec": "Dec",
}

// MonthKey derives the month key from a free-text month label.
//
// PROCESS:
//   1. Take the text before the first comma and trim it.
//   2. Empty text yields "".
//   3. A case-insensitive hit in the month table yields the canonical key.
//   4. Otherwise return the first character upper-cased followed by the
//      next two characters lower-cased. This fallback is not checked against
//      the canonical list, so "Sept" becomes "Sep" while "13th" becomes
//      "13t". Keep it visible; do not guess intent.
func MonthKey(monthLabel string) string {
	text, _, _ := strings.Cut(monthLabel, ",")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if key, ok := monthNames[strings.ToLower(text)]; ok {
		return key
	}

	first, size := utf8.DecodeRuneInString(text)
	rest := []rune(text[size:])
	if len(rest) > 2 {
		rest = rest[:2]
	}
	return strings.ToUpper(string(first)) + strings.ToLower(string(rest))
}
