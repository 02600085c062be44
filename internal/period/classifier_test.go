package period

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

func TestYearBucket(t *testing.T) {
	tests := []struct {
		date   string
		mode   types.YearMode
		want   string
		wantOK bool
	}{
		{"2024-03-31", types.FinancialYear, "2023-2024", true},
		{"2024-04-01", types.FinancialYear, "2024-2025", true},
		{"2024-03-31", types.CalendarYear, "2024", true},
		{"2024-04-01", types.CalendarYear, "2024", true},
		{"2025-01-15", types.FinancialYear, "2024-2025", true},
		{"2025-12-31", types.FinancialYear, "2025-2026", true},
		{"2025-6-20", types.FinancialYear, "2025-2026", true},
		{"2025/06/20", types.CalendarYear, "2025", true},
		{"2024-04-01T00:30:00+05:30", types.FinancialYear, "2024-2025", true},
		{"2024-03-31T22:00:00-08:00", types.FinancialYear, "2023-2024", true},
		{" 2024-04-01 ", types.CalendarYear, "2024", true},
		{"", types.FinancialYear, "", false},
		{"not-a-date", types.CalendarYear, "", false},
		{"2024-13-01", types.CalendarYear, "", false},
		{"2024-02-30", types.FinancialYear, "", false},
	}

	for _, tc := range tests {
		got, ok := YearBucket(tc.date, tc.mode)
		assert.Equal(t, tc.wantOK, ok, "YearBucket(%q, %s) ok", tc.date, tc.mode)
		assert.Equal(t, tc.want, got, "YearBucket(%q, %s)", tc.date, tc.mode)
	}
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"June, 2025", "Jun"},
		{"june", "Jun"},
		{"JUNE , 2025", "Jun"},
		{"Jun, 2025", "Jun"},
		{"May, 2024", "May"},
		{"september, 2024", "Sep"},
		{"  March  ", "Mar"},
		{"", ""},
		{", 2025", ""},
		{"   ", ""},
		// Fallback: not in the table, abbreviated heuristically.
		{"Sept, 2024", "Sep"},
		{"junio, 2025", "Jun"},
		{"13th, 2025", "13t"},
		{"q", "Q"},
		{"éTÉ", "Été"},
		{"FY 2024", "Fy "},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, MonthKey(tc.label), "MonthKey(%q)", tc.label)
	}
}

func TestMonthKey_IndependentOfDate(t *testing.T) {
	// The month key comes only from the label even when the date disagrees.
	assert.Equal(t, "Jun", MonthKey("June, 2025"))
	month, ok := MonthOf("2025-07-01")
	assert.True(t, ok)
	assert.Equal(t, "Jul", month)
}

func TestMonthOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"},
		MonthOrder(types.FinancialYear))
	assert.Equal(t,
		[]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		MonthOrder(types.CalendarYear))

	// Callers get their own copy.
	order := MonthOrder(types.CalendarYear)
	order[0] = "XXX"
	assert.Equal(t, "Jan", MonthOrder(types.CalendarYear)[0])
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("Sep"))
	assert.False(t, IsCanonical("Sept"))
	assert.False(t, IsCanonical("13t"))
	assert.False(t, IsCanonical(""))
}
