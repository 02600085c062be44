// =============================================================================
// RSP Dashboard - Chart Writers
// =============================================================================
//
// This module renders a chart.Chart for the outside world. Three concrete
// renderers are provided:
//
//   - JSON:  the payload as-is, for web front-ends and scripts
//   - Table: an aligned plain-text table for terminals
//   - XLSX:  a workbook with a month/value table and a native clustered
//            column chart, colored with the chart's color hint
//
// XLSX LAYOUT:
//
//   | A     | B                 | C            | D | E ...               |
//   |-------|-------------------|--------------|---|---------------------|
//   | Month | Avg RSP (INR/L)   | Observations |   | <chart or no-data>  |
//   | Apr   | 94.72             | 4            |   |                     |
//   | ...   | ...               | ...          |   |                     |
//
// A no-data chart still gets its table; the chart area carries the
// no-data message instead of twelve zero bars.
//
// =============================================================================

package chartwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/rsp-dashboard/internal/aggregate"
	"github.com/ginjaninja78/rsp-dashboard/internal/chart"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Chart"

// Footer is printed under every table.
const Footer = "Missing values treated as 0"

// =============================================================================
// JSON
// =============================================================================

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// =============================================================================
// PLAIN TEXT
// =============================================================================

// WriteTable writes c as an aligned text table.
//
// OUTPUT:
//
//	Petrol — Delhi — 2024-2025 (FY)
//	Unit: INR/L
//
//	MONTH  AVG PRICE  OBSERVATIONS
//	Apr    94.72      4
//	...
//
//	Missing values treated as 0
func WriteTable(w io.Writer, c chart.Chart) error {
	var b strings.Builder
	fmt.Fprintln(&b, c.Title)
	fmt.Fprintf(&b, "Unit: %s\n", c.Unit)
	if c.NoData {
		fmt.Fprintln(&b, c.Message)
	}
	fmt.Fprintln(&b)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tAVG PRICE\tOBSERVATIONS")
	for _, p := range c.Points() {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\n", p.Month, p.Value, p.Count)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to format table: %w", err)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, Footer)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// WriteOptionsTable lists the filter options and the default selection.
func WriteOptionsTable(w io.Writer, opts aggregate.Options, defaults types.Selection) error {
	var b strings.Builder

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Mode:\t%s (%s)\n", opts.Mode, opts.Mode.Label())
	fmt.Fprintf(tw, "Cities (%d):\t%s\n", len(opts.Cities), joinOrNone(opts.Cities))
	fmt.Fprintf(tw, "Products (%d):\t%s\n", len(opts.Products), joinOrNone(opts.Products))
	fmt.Fprintf(tw, "Years (%d):\t%s\n", len(opts.YearBuckets), joinOrNone(opts.YearBuckets))
	fmt.Fprintf(tw, "Default:\t%s\n", chart.Title(defaults))
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to format options: %w", err)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write options: %w", err)
	}
	return nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

// =============================================================================
// XLSX
// =============================================================================

// WriteXLSX writes c as a workbook with one sheet named SheetName.
//
// PARAMETERS:
//   - w: Destination for the .xlsx bytes.
//   - c: The chart payload.
//
// RETURNS:
//   - An error if the workbook cannot be built or written.
func WriteXLSX(w io.Writer, c chart.Chart) error {
	f, err := BuildWorkbook(c)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// FileNameParams returns the placeholders available to the output file name
// format for c: {product}, {city}, {year} and {mode}.
func FileNameParams(c chart.Chart) map[string]string {
	return map[string]string{
		"product": c.Selection.Product,
		"city":    c.Selection.City,
		"year":    c.Selection.YearBucket,
		"mode":    string(c.Selection.Mode),
	}
}

// BuildWorkbook builds the in-memory workbook written by WriteXLSX.
// The caller must Close it.
func BuildWorkbook(c chart.Chart) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"Month", fmt.Sprintf("Avg RSP (%s)", c.Unit), "Observations"}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	points := c.Points()
	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		row := []any{p.Month, p.Value, p.Count}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	footerRow := len(points) + 3
	if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", footerRow), Footer); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write footer: %w", err)
	}

	if c.NoData || len(points) == 0 {
		if err := f.SetCellValue(SheetName, "E2", chart.NoDataMessage); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write no-data note: %w", err)
		}
		return f, nil
	}

	if err := f.AddChart(SheetName, "E2", columnChart(c, len(points))); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add chart: %w", err)
	}
	return f, nil
}

// columnChart describes the clustered column chart over rows 2..n+1.
func columnChart(c chart.Chart, n int) *excelize.Chart {
	last := n + 1
	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$B$1", SheetName),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", SheetName, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", SheetName, last),
				Fill: excelize.Fill{
					Type:    "pattern",
					Pattern: 1,
					Color:   []string{c.HexColor()},
				},
			},
		},
		Title:  []excelize.RichTextRun{{Text: c.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
		PlotArea: excelize.ChartPlotArea{
			ShowVal: true,
		},
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
			Title:          []excelize.RichTextRun{{Text: c.Unit}},
		},
		Dimension: excelize.ChartDimension{Width: 720, Height: 360},
	}
}
