package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/rsp-dashboard/internal/csvparser"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

var rspHeader = []string{"Country", "Year", "Month", "Date", "Product", "City", "Retail Selling Price"}

func TestResolvePriceColumn(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   int
	}{
		{"rsp header", rspHeader, 6},
		{"no match uses last", []string{"Country", "Year", "Month", "Date", "Product", "City", "Value"}, 6},
		{"non-terminal column", []string{"Country", "Year", "Month", "Date", "Product", "City", "RSP (Rs/L)", "Notes"}, 6},
		{"case insensitive", []string{"a", "SELLING PRICE", "b"}, 1},
		{"first match wins", []string{"Price", "Retail"}, 0},
		{"rsp substring", []string{"x", "Metro_RSP"}, 1},
		{"single column", []string{"only"}, 0},
		{"empty header", nil, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolvePriceColumn(tc.header))
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"₹ 96.72", 96.72},
		{"96.72", 96.72},
		{"", 0},
		{"N/A", 0},
		{".", 0},
		{"-", 0},
		{"1,234.50", 1234.5},
		{"Rs. 94.77", 0.94},
		{"96.72.1", 96.72},
		{" 102 ", 102},
		{".5", 0.5},
		{"87.", 87},
	}

	for _, tc := range tests {
		assert.InDelta(t, tc.want, ParsePrice(tc.raw), 1e-9, "ParsePrice(%q)", tc.raw)
	}
}

func TestNormalize(t *testing.T) {
	rows := [][]string{
		{" Country ", "Year", "Month", "Date", "Product", "City", "Retail Selling Price"},
		{"India", `"2025"`, "June, 2025", "2025-06-20", "Petrol", "Delhi", "₹ 94.77"},
		{},
		{""},
		{"  ", " "},
		{" India ", "'FY 2025-26'", " July, 2025 ", " 2025-07-01 ", " Diesel ", " Mumbai ", "N/A"},
		{"India", "2025", "June, 2025", "2025-06-20"},
	}

	records := Normalize(rows)
	require.Len(t, records, 3)

	assert.Equal(t, types.Record{
		Country:    "India",
		YearLabel:  "2025",
		MonthLabel: "June, 2025",
		DateISO:    "2025-06-20",
		Product:    "Petrol",
		City:       "Delhi",
		Price:      94.77,
		SourceRow:  2,
	}, records[0])

	assert.Equal(t, types.Record{
		Country:    "India",
		YearLabel:  "FY 2025-26",
		MonthLabel: "July, 2025",
		DateISO:    "2025-07-01",
		Product:    "Diesel",
		City:       "Mumbai",
		Price:      0,
		SourceRow:  6,
	}, records[1])

	// Short row padded: product, city and price fall in the padded region.
	assert.Equal(t, "", records[2].Product)
	assert.Equal(t, "", records[2].City)
	assert.Equal(t, 0.0, records[2].Price)
	assert.Equal(t, 7, records[2].SourceRow)
}

func TestNormalize_DoesNotMutateRows(t *testing.T) {
	short := []string{"India", "2025"}
	rows := [][]string{rspHeader, short}

	Normalize(rows)
	assert.Len(t, short, 2)
}

func TestNormalize_PriceInMiddleColumn(t *testing.T) {
	rows := csvparser.Parse("Country,Year,Month,Date,Product,City,RSP,Source\n" +
		"India,2024,\"April, 2024\",2024-04-01,Petrol,Kolkata,\"₹ 103.94\",PPAC\n")

	records := Normalize(rows)
	require.Len(t, records, 1)
	assert.Equal(t, 103.94, records[0].Price)
	assert.Equal(t, "April, 2024", records[0].MonthLabel)
}

func TestNormalize_NarrowHeader(t *testing.T) {
	// The header is narrower than the positional layout; rows are still
	// padded far enough to read every positional field.
	rows := [][]string{{"Country", "Price"}, {"India", "99"}}

	records := Normalize(rows)
	require.Len(t, records, 1)
	assert.Equal(t, "India", records[0].Country)
	assert.Equal(t, "", records[0].City)
	// Column 1 is both the positional year label and the resolved price.
	assert.Equal(t, "99", records[0].YearLabel)
	assert.Equal(t, 99.0, records[0].Price)
}

func TestBuild(t *testing.T) {
	t.Run("no rows", func(t *testing.T) {
		ds, err := Build("empty.csv", nil)
		assert.Nil(t, ds)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("header only", func(t *testing.T) {
		ds, err := Build("header.csv", [][]string{rspHeader})
		assert.Nil(t, ds)
		assert.ErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("header and data", func(t *testing.T) {
		rows := [][]string{
			rspHeader,
			{"India", "2025", "June, 2025", "2025-06-20", "Petrol", "Delhi", "94.77"},
		}
		ds, err := Build("RSP.csv", rows)
		require.NoError(t, err)

		assert.Equal(t, "RSP.csv", ds.Source)
		assert.Equal(t, 6, ds.PriceColumn)
		assert.Equal(t, "Retail Selling Price", ds.PriceColumnName())
		assert.Equal(t, 2, ds.RowCount)
		assert.Len(t, ds.Records, 1)
		assert.NotEmpty(t, ds.ID.String())
		assert.False(t, ds.LoadedAt.IsZero())
	})

	t.Run("only blank data rows", func(t *testing.T) {
		// Shape check is on parsed rows; blank rows just yield no records.
		ds, err := Build("blank.csv", [][]string{rspHeader, {""}})
		require.NoError(t, err)
		assert.Empty(t, ds.Records)
	})
}
