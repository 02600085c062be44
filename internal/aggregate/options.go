package aggregate

import (
	"slices"

	"github.com/samber/lo"

	"github.com/ginjaninja78/rsp-dashboard/internal/period"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// DefaultProduct is used when no record carries a product.
const DefaultProduct = "Petrol"

// Options are the distinct filter values offered to the selection UI.
type Options struct {
	Cities      []string       `json:"cities"`
	Products    []string       `json:"products"`
	YearBuckets []string       `json:"yearBuckets"`
	Mode        types.YearMode `json:"mode"`
}

// DeriveOptions computes every option list for mode.
func DeriveOptions(records []types.Record, mode types.YearMode) Options {
	return Options{
		Cities:      Cities(records),
		Products:    Products(records),
		YearBuckets: YearBuckets(records, mode),
		Mode:        mode,
	}
}

// Cities returns the distinct non-empty cities, sorted ascending.
func Cities(records []types.Record) []string {
	return distinctSorted(records, func(r types.Record) (string, bool) {
		return r.City, r.City != ""
	})
}

// Products returns the distinct non-empty products, sorted ascending.
func Products(records []types.Record) []string {
	return distinctSorted(records, func(r types.Record) (string, bool) {
		return r.Product, r.Product != ""
	})
}

// YearBuckets returns the distinct year buckets of mode, sorted ascending.
// Records whose date does not parse contribute nothing.
//
// Lexicographic order matches chronological order only because years have
// four digits.
func YearBuckets(records []types.Record, mode types.YearMode) []string {
	return distinctSorted(records, func(r types.Record) (string, bool) {
		return period.YearBucket(r.DateISO, mode)
	})
}

// DefaultSelection returns the initial selection for mode: the first sorted
// city, the first product in record order (DefaultProduct when none) and
// the first sorted year bucket.
func DefaultSelection(records []types.Record, mode types.YearMode) types.Selection {
	sel := types.Selection{
		Product: DefaultProduct,
		Mode:    mode,
	}

	if cities := Cities(records); len(cities) > 0 {
		sel.City = cities[0]
	}
	if first, ok := lo.Find(records, func(r types.Record) bool { return r.Product != "" }); ok {
		sel.Product = first.Product
	}
	if years := YearBuckets(records, mode); len(years) > 0 {
		sel.YearBucket = years[0]
	}

	return sel
}

func distinctSorted(records []types.Record, pick func(types.Record) (string, bool)) []string {
	values := lo.Uniq(lo.FilterMap(records, func(r types.Record, _ int) (string, bool) {
		return pick(r)
	}))
	slices.Sort(values)
	return values
}
