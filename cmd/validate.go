// =============================================================================
// RSP Dashboard - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which loads the dataset and
// prints its data-quality report without building any chart.
//
// COMMAND USAGE:
//   rspdash validate [flags]
//
// FLAGS:
//   --file      Dataset to load (overrides dataset_path)
//   --format    text or json (default: text)
//   --output    Write the report to this file instead of stdout
//   --strict    Fail when any record is excluded from charts
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/rsp-dashboard/internal/chartwriter"
	"github.com/ginjaninja78/rsp-dashboard/internal/validation"
)

var (
	validateFile   string
	validateFormat string
	validateOutput string
	validateStrict bool
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report data-quality issues in the dataset",
	Long: `Load the dataset and report the records that charts will skip (missing
city, product or date, unparsable dates, unknown months) and the records
that are kept but suspect (zero prices, month labels that disagree with
the date).

Use --strict in pipelines to fail on excluded records.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFile, "file", "", "Dataset to load (overrides dataset_path)")
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "Output format: text or json")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "Write the report to this file")
	validateCmd.Flags().BoolVar(
		&validateStrict,
		"strict",
		false,
		"Exit with an error when any record is excluded",
	)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateFormat != "text" && validateFormat != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", validateFormat)
	}

	svc, err := loadService(cmd.Context(), validateFile)
	if err != nil {
		return err
	}
	report, err := svc.Report()
	if err != nil {
		return err
	}

	switch {
	case validateFormat == "json":
		err = writeTo(cmd, validateOutput, func(w io.Writer) error { return chartwriter.WriteJSON(w, report) })
	case validateOutput != "":
		err = validation.WriteReport(report, validateOutput)
		if err == nil {
			logger.Info("report written", "path", validateOutput)
		}
	default:
		_, err = io.WriteString(cmd.OutOrStdout(), validation.FormatReport(report))
	}
	if err != nil {
		return err
	}

	if validateStrict && report.Excluded() > 0 {
		return fmt.Errorf("%d of %d records are excluded from charts", report.Excluded(), report.Records)
	}
	return nil
}
