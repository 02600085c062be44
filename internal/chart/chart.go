// =============================================================================
// RSP Dashboard - Chart Payload
// =============================================================================
//
// This module turns an aggregated Series into the payload handed to a chart
// renderer. The renderer itself is outside this module; it receives:
//
//   - Categories: 12 month keys in the mode's fixed order
//   - Values:     the mean price per category
//   - Title:      "{product} — {city} — {year} ({FY|CY})"
//   - Unit:       the y-axis unit, "INR/L" by default
//   - Color:      a bar color hint chosen by product
//   - NoData:     true when every value is zero; the renderer should show
//                 a "no data for selected combination" state instead of
//                 twelve zero bars
//
// =============================================================================

package chart

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/rsp-dashboard/internal/aggregate"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// Default settings.
const (
	DefaultUnit   = "INR/L"
	DefaultColor  = "#3b82f6"
	DieselColor   = "#16a34a"
	NoDataMessage = "No data for selected combination"
)

// Settings controls the presentational fields of a Chart.
type Settings struct {
	// Unit is the y-axis unit label.
	Unit string

	// DefaultColor is used for products without an entry in ProductColors.
	DefaultColor string

	// ProductColors maps an exact product name to a color hint.
	ProductColors map[string]string
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Unit:          DefaultUnit,
		DefaultColor:  DefaultColor,
		ProductColors: map[string]string{"Diesel": DieselColor},
	}
}

// Chart is the renderer-facing payload.
type Chart struct {
	Categories []string        `json:"categories"`
	Values     []float64       `json:"values"`
	Counts     []int           `json:"counts"`
	Title      string          `json:"title"`
	Unit       string          `json:"unit"`
	Color      string          `json:"color"`
	NoData     bool            `json:"noData"`
	Message    string          `json:"message,omitempty"`
	Selection  types.Selection `json:"selection"`
}

// Build assembles the payload for series under sel.
func Build(series aggregate.Series, sel types.Selection, settings Settings) Chart {
	if sel.Mode == "" {
		sel.Mode = types.FinancialYear
	}

	c := Chart{
		Categories: series.Categories,
		Values:     series.Values,
		Counts:     series.Counts,
		Title:      Title(sel),
		Unit:       settings.Unit,
		Color:      settings.ColorFor(sel.Product),
		NoData:     series.Empty(),
		Selection:  sel,
	}
	if c.Unit == "" {
		c.Unit = DefaultUnit
	}
	if c.NoData {
		c.Message = NoDataMessage
	}
	return c
}

// Title formats the chart title of sel.
func Title(sel types.Selection) string {
	return fmt.Sprintf("%s — %s — %s (%s)", sel.Product, sel.City, sel.YearBucket, string(sel.Mode))
}

// ColorFor returns the color hint of product.
func (s Settings) ColorFor(product string) string {
	if c, ok := s.ProductColors[product]; ok && c != "" {
		return c
	}
	if s.DefaultColor != "" {
		return s.DefaultColor
	}
	return DefaultColor
}

// Points pairs each category with its value, for table-like renderers.
func (c Chart) Points() []Point {
	points := make([]Point, len(c.Categories))
	for i, cat := range c.Categories {
		p := Point{Month: cat}
		if i < len(c.Values) {
			p.Value = c.Values[i]
		}
		if i < len(c.Counts) {
			p.Count = c.Counts[i]
		}
		points[i] = p
	}
	return points
}

// Point is one bar of the chart.
type Point struct {
	Month string
	Value float64
	Count int
}

// HexColor returns Color without the leading '#', as spreadsheet tools want it.
func (c Chart) HexColor() string {
	return strings.TrimPrefix(c.Color, "#")
}
