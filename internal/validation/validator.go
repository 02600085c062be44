// =============================================================================
// RSP Dashboard - Data-Quality Report
// =============================================================================
//
// This module inspects a loaded dataset and reports the records that will
// not behave as a reader might expect. It never alters records and never
// changes what the aggregator computes; it only explains it.
//
// CHECKS:
//   Records excluded from every chart:
//     - missing-city       city column is empty
//     - missing-product    product column is empty
//     - missing-date       date column is empty
//     - unparsable-date    date column does not parse as a calendar date
//     - missing-month      month label is empty
//     - unknown-month      month label yields a key outside Jan..Dec
//
//   Records that contribute but deserve a look:
//     - zero-price         price is the 0.0 sentinel (missing, unparsable,
//                          or a genuine zero; these cannot be told apart)
//     - month-mismatch     month label and date disagree, e.g. "June, 2025"
//                          with 2025-07-01. The value is charted under the
//                          label's month and the date's year bucket.
//
// ERROR HANDLING:
//   - Every finding is counted.
//   - Individual issues are kept up to Options.MaxIssues; the rest are only
//     counted in Report.Truncated.
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/rsp-dashboard/internal/dataset"
	"github.com/ginjaninja78/rsp-dashboard/internal/period"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Severity classifies how an issue affects charts.
type Severity string

const (
	// SeverityExcluded marks a record that no chart will ever include.
	SeverityExcluded Severity = "excluded"

	// SeverityWarning marks a record that is charted but looks suspicious.
	SeverityWarning Severity = "warning"
)

// Rule names.
const (
	RuleMissingCity    = "missing-city"
	RuleMissingProduct = "missing-product"
	RuleMissingDate    = "missing-date"
	RuleUnparsableDate = "unparsable-date"
	RuleMissingMonth   = "missing-month"
	RuleUnknownMonth   = "unknown-month"
	RuleZeroPrice      = "zero-price"
	RuleMonthMismatch  = "month-mismatch"
)

// Issue is a single finding on one record.
type Issue struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`

	// Field is the record field the finding is about.
	Field string `json:"field"`

	// Value is the offending value as loaded.
	Value string `json:"value"`

	Message string `json:"message"`

	// RowNumber is the 1-based row in the parsed input (header = row 1).
	RowNumber int `json:"row"`
}

// Error implements the error interface.
func (i *Issue) Error() string {
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(string(i.Severity)),
		i.RowNumber,
		i.Field,
		i.Message,
		i.Value,
	)
}

// =============================================================================
// REPORT
// =============================================================================

// Report summarizes the data quality of one dataset.
type Report struct {
	DatasetID   string `json:"datasetId"`
	Source      string `json:"source"`
	PriceColumn string `json:"priceColumn"`

	// Records is the number of normalized records inspected.
	Records int `json:"records"`

	// Chartable is the number of records that pass every exclusion check.
	Chartable int `json:"chartable"`

	MissingCity     int `json:"missingCity"`
	MissingProduct  int `json:"missingProduct"`
	MissingDate     int `json:"missingDate"`
	UnparsableDates int `json:"unparsableDates"`
	MissingMonth    int `json:"missingMonth"`
	UnknownMonths   int `json:"unknownMonths"`
	ZeroPrices      int `json:"zeroPrices"`
	MonthMismatches int `json:"monthMismatches"`

	// Issues holds the first MaxIssues findings in record order.
	Issues []*Issue `json:"issues"`

	// Truncated counts findings that were not kept in Issues.
	Truncated int `json:"truncated"`
}

// Clean reports whether no finding was made.
func (r *Report) Clean() bool {
	return len(r.Issues) == 0 && r.Truncated == 0
}

// Excluded is the number of records no chart includes.
func (r *Report) Excluded() int {
	return r.Records - r.Chartable
}

// =============================================================================
// INSPECTOR
// =============================================================================

// DefaultMaxIssues caps the issue list of a report.
const DefaultMaxIssues = 50

// Options controls an Inspector.
type Options struct {
	// MaxIssues is the number of individual issues kept. Values below 1
	// select DefaultMaxIssues.
	MaxIssues int
}

// DefaultOptions returns the default inspection options.
func DefaultOptions() Options {
	return Options{MaxIssues: DefaultMaxIssues}
}

// Inspector builds data-quality reports.
type Inspector struct {
	options Options
}

// NewInspector creates an Inspector.
func NewInspector(options Options) *Inspector {
	if options.MaxIssues < 1 {
		options.MaxIssues = DefaultMaxIssues
	}
	return &Inspector{options: options}
}

// Inspect builds a report for ds with default options.
func Inspect(ds *dataset.Dataset) *Report {
	return NewInspector(DefaultOptions()).Inspect(ds)
}

// Inspect builds a report for ds. A nil dataset yields an empty report.
func (in *Inspector) Inspect(ds *dataset.Dataset) *Report {
	report := &Report{Issues: make([]*Issue, 0)}
	if ds == nil {
		return report
	}

	report.DatasetID = ds.ID.String()
	report.Source = ds.Source
	report.PriceColumn = ds.PriceColumnName()
	report.Records = len(ds.Records)

	for _, r := range ds.Records {
		if in.inspectRecord(report, r) {
			report.Chartable++
		}
	}
	return report
}

// inspectRecord records every finding on r and reports whether r can be
// charted.
func (in *Inspector) inspectRecord(report *Report, r types.Record) bool {
	chartable := true
	add := func(sev Severity, rule, field, value, msg string) {
		if sev == SeverityExcluded {
			chartable = false
		}
		if len(report.Issues) >= in.options.MaxIssues {
			report.Truncated++
			return
		}
		report.Issues = append(report.Issues, &Issue{
			Severity:  sev,
			Rule:      rule,
			Field:     field,
			Value:     value,
			Message:   msg,
			RowNumber: r.SourceRow,
		})
	}

	if r.City == "" {
		report.MissingCity++
		add(SeverityExcluded, RuleMissingCity, "city", r.City, "city is empty")
	}
	if r.Product == "" {
		report.MissingProduct++
		add(SeverityExcluded, RuleMissingProduct, "product", r.Product, "product is empty")
	}

	dateOK := false
	switch {
	case r.DateISO == "":
		report.MissingDate++
		add(SeverityExcluded, RuleMissingDate, "dateISO", r.DateISO, "date is empty")
	default:
		if _, ok := period.ParseDate(r.DateISO); ok {
			dateOK = true
		} else {
			report.UnparsableDates++
			add(SeverityExcluded, RuleUnparsableDate, "dateISO", r.DateISO, "date is not a valid calendar date")
		}
	}

	month := period.MonthKey(r.MonthLabel)
	switch {
	case month == "":
		report.MissingMonth++
		add(SeverityExcluded, RuleMissingMonth, "monthLabel", r.MonthLabel, "month label is empty")
	case !period.IsCanonical(month):
		report.UnknownMonths++
		add(SeverityExcluded, RuleUnknownMonth, "monthLabel", r.MonthLabel,
			fmt.Sprintf("month label maps to %q, which is not a month", month))
	case dateOK:
		if dateMonth, _ := period.MonthOf(r.DateISO); dateMonth != month {
			report.MonthMismatches++
			add(SeverityWarning, RuleMonthMismatch, "monthLabel", r.MonthLabel,
				fmt.Sprintf("month label says %s but date %s is in %s", month, r.DateISO, dateMonth))
		}
	}

	if r.Price == 0 {
		report.ZeroPrices++
		add(SeverityWarning, RuleZeroPrice, "price", "0", "price is missing, unparsable or zero")
	}

	return chartable
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatReport formats a report for display.
func FormatReport(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Source:       %s\n", r.Source)
	fmt.Fprintf(&b, "Dataset:      %s\n", r.DatasetID)
	fmt.Fprintf(&b, "Price column: %s\n", r.PriceColumn)
	fmt.Fprintf(&b, "Records:      %d (%d chartable, %d excluded)\n", r.Records, r.Chartable, r.Excluded())
	b.WriteString("\n")

	counts := []struct {
		label string
		n     int
	}{
		{"Missing city", r.MissingCity},
		{"Missing product", r.MissingProduct},
		{"Missing date", r.MissingDate},
		{"Unparsable dates", r.UnparsableDates},
		{"Missing month", r.MissingMonth},
		{"Unknown months", r.UnknownMonths},
		{"Zero prices", r.ZeroPrices},
		{"Month/date mismatches", r.MonthMismatches},
	}
	for _, c := range counts {
		fmt.Fprintf(&b, "%-22s %d\n", c.label+":", c.n)
	}

	if r.Clean() {
		b.WriteString("\nNo data-quality issues.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nIssues (%d shown", len(r.Issues))
	if r.Truncated > 0 {
		fmt.Fprintf(&b, ", %d more not shown", r.Truncated)
	}
	b.WriteString("):\n")
	for i, issue := range r.Issues {
		fmt.Fprintf(&b, "%d. %s\n", i+1, issue.Error())
	}
	return b.String()
}

// WriteReport writes the formatted report to filePath.
func WriteReport(r *Report, filePath string) error {
	if err := os.WriteFile(filePath, []byte(FormatReport(r)), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
