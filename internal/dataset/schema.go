package dataset

import "strings"

// priceKeywords are matched as substrings of the lower-cased header cell.
// Order does not matter: the first matching column wins.
var priceKeywords = []string{"retail", "rsp", "selling price", "price"}

// ResolvePriceColumn returns the index of the price-bearing column.
//
// The header is scanned left to right and the first cell containing any
// price keyword is chosen. With no match the last column is assumed, and an
// empty header yields -1. The guess is best effort: a wrong column shows up
// downstream as zero prices, never as an error.
func ResolvePriceColumn(header []string) int {
	for i, cell := range header {
		h := strings.ToLower(cell)
		for _, kw := range priceKeywords {
			if strings.Contains(h, kw) {
				return i
			}
		}
	}
	return len(header) - 1
}
