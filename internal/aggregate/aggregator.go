// =============================================================================
// RSP Dashboard - Aggregator
// =============================================================================
//
// This module computes the monthly average price series for one selection.
//
// AGGREGATION PROCESS:
//   1. Fix the category order from the year mode (Apr..Mar or Jan..Dec).
//   2. Walk every record and skip it when:
//        - city, product or dateISO is empty
//        - a non-empty selection city/product does not match exactly
//        - the date does not parse
//        - a non-empty selection year bucket differs from the record's
//          bucket in the selection's mode
//        - the month label yields no month key
//   3. Accumulate sum and count per month key.
//   4. Emit, per category, the mean rounded to 2 decimals, or 0.0 for a
//      month without observations.
//
// ROUNDING:
//   Sums and means are plain float64. The mean is rounded on its exact
//   binary value, half away from zero, so 94.72 and 94.73 average to 94.72
//   (the float mean is 94.72499999...).
//
// Aggregate is a pure function of (records, selection): it keeps no state
// between calls and never modifies its input.
//
// =============================================================================

package aggregate

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/rsp-dashboard/internal/period"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// =============================================================================
// SERIES
// =============================================================================

// Series is the chart-ready result of an aggregation.
type Series struct {
	// Categories is the fixed month order of the selection's mode. It is the
	// x-axis contract and is never sorted alphabetically.
	Categories []string `json:"categories"`

	// Values holds the mean price per category, parallel to Categories.
	Values []float64 `json:"values"`

	// Counts holds the number of observations per category.
	Counts []int `json:"counts"`
}

// Empty reports whether every value is exactly zero.
//
// An empty series must be presented as "no data for this combination"
// rather than as a real all-zero chart. Note that a month whose only
// observations carry the 0.0 price sentinel is indistinguishable from a
// month without observations.
func (s Series) Empty() bool {
	for _, v := range s.Values {
		if v != 0 {
			return false
		}
	}
	return true
}

// =============================================================================
// AGGREGATION
// =============================================================================

type accumulator struct {
	sum   float64
	count int
}

// Aggregate computes the monthly average series for sel.
//
// PARAMETERS:
//   - records: The full, read-only record set.
//   - sel: The filter. Empty City, Product or YearBucket disables that
//     filter. An empty Mode is treated as the financial year.
//
// RETURNS:
//   - A Series with 12 categories in the mode's order.
func Aggregate(records []types.Record, sel types.Selection) Series {
	mode := sel.Mode
	if mode == "" {
		mode = types.FinancialYear
	}

	categories := period.MonthOrder(mode)
	sums := make(map[string]*accumulator, len(categories))
	for _, m := range categories {
		sums[m] = &accumulator{}
	}

	for _, r := range records {
		if !matches(r, sel, mode) {
			continue
		}

		month := period.MonthKey(r.MonthLabel)
		if month == "" {
			continue
		}

		// Non-canonical fallback keys have no category and are dropped.
		acc, ok := sums[month]
		if !ok {
			continue
		}
		acc.sum += r.Price
		acc.count++
	}

	series := Series{
		Categories: categories,
		Values:     make([]float64, len(categories)),
		Counts:     make([]int, len(categories)),
	}
	for i, m := range categories {
		acc := sums[m]
		series.Counts[i] = acc.count
		if acc.count == 0 {
			continue
		}
		series.Values[i] = roundCents(acc.sum / float64(acc.count))
	}

	return series
}

// roundCents rounds v to 2 decimals using its exact binary value.
func roundCents(v float64) float64 {
	exact := new(big.Rat).SetFloat64(v)
	if exact == nil {
		return 0
	}
	num := decimal.NewFromBigInt(exact.Num(), 0)
	den := decimal.NewFromBigInt(exact.Denom(), 0)
	rounded, _ := num.DivRound(den, 2).Float64()
	return rounded
}

// matches applies the record-level filters of Aggregate.
func matches(r types.Record, sel types.Selection, mode types.YearMode) bool {
	if r.City == "" || r.Product == "" || r.DateISO == "" {
		return false
	}
	if sel.City != "" && r.City != sel.City {
		return false
	}
	if sel.Product != "" && r.Product != sel.Product {
		return false
	}

	bucket, ok := period.YearBucket(r.DateISO, mode)
	if !ok {
		return false
	}
	if sel.YearBucket != "" && bucket != sel.YearBucket {
		return false
	}
	return true
}
