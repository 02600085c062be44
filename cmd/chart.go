// =============================================================================
// RSP Dashboard - Chart Command
// =============================================================================
//
// This file defines the 'chart' command, which builds the monthly average
// price chart for one city, product and year.
//
// COMMAND USAGE:
//   rspdash chart [flags]
//
// FLAGS:
//   --file      Dataset to load (overrides dataset_path)
//   --mode      fy or cy (default from config)
//   --city      City to chart (default: first city)
//   --product   Product to chart (default: first product in the dataset)
//   --year      Year bucket, e.g. 2024-2025 or 2024 (default: first bucket)
//   --format    table, json or xlsx (default: table)
//   --output    Write to this file instead of stdout
//
// XLSX OUTPUT:
//   Without --output, workbooks are written to output.dir and named with
//   output.file_name_format. The written path is printed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/rsp-dashboard/internal/chartwriter"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
	"github.com/ginjaninja78/rsp-dashboard/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	chartFile    string
	chartMode    string
	chartCity    string
	chartProduct string
	chartYear    string
	chartFormat  string
	chartOutput  string
)

// =============================================================================
// CHART COMMAND DEFINITION
// =============================================================================

// chartCmd represents the 'chart' command.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Build the monthly average price chart for a selection",
	Long: `Load the dataset and build the twelve-month average price chart for one
city, product and year. Missing months are shown as 0.

Any selection flag left empty takes the default for the chosen mode.

Examples:
  rspdash chart --city Delhi --product Diesel --year 2024-2025
  rspdash chart --mode cy --year 2024 --format json
  rspdash chart --format xlsx --output delhi.xlsx`,
	RunE: runChart,
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(chartCmd)

	chartCmd.Flags().StringVar(&chartFile, "file", "", "Dataset to load (overrides dataset_path)")
	chartCmd.Flags().StringVar(&chartMode, "mode", "", "Year mode: fy or cy")
	chartCmd.Flags().StringVar(&chartCity, "city", "", "City to chart")
	chartCmd.Flags().StringVar(&chartProduct, "product", "", "Product to chart")
	chartCmd.Flags().StringVar(&chartYear, "year", "", "Year bucket, e.g. 2024-2025 (FY) or 2024 (CY)")
	chartCmd.Flags().StringVar(&chartFormat, "format", "table", "Output format: table, json or xlsx")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "Write to this file instead of stdout")
}

// =============================================================================
// COMMAND EXECUTION
// =============================================================================

func runChart(cmd *cobra.Command, args []string) error {
	mode, err := types.ParseYearMode(chartMode, "")
	if err != nil {
		return err
	}

	switch chartFormat {
	case "table", "json", "xlsx":
	default:
		return fmt.Errorf("unknown format %q (want table, json or xlsx)", chartFormat)
	}

	svc, err := loadService(cmd.Context(), chartFile)
	if err != nil {
		return err
	}

	c, err := svc.Chart(types.Selection{
		City:       chartCity,
		Product:    chartProduct,
		YearBucket: chartYear,
		Mode:       mode,
	})
	if err != nil {
		return err
	}

	var write func(io.Writer) error
	switch chartFormat {
	case "table":
		write = func(w io.Writer) error { return chartwriter.WriteTable(w, c) }
	case "json":
		write = func(w io.Writer) error { return chartwriter.WriteJSON(w, c) }
	case "xlsx":
		write = func(w io.Writer) error { return chartwriter.WriteXLSX(w, c) }
		if chartOutput == "" {
			name := utils.GenerateOutputFileName(appConfig.Output.FileNameFormat, chartwriter.FileNameParams(c), ".xlsx")
			path, err := utils.WriteOutputFile(appConfig.Output.Dir, name, write)
			if err != nil {
				return err
			}
			logger.Info("workbook written", "path", path, "no_data", c.NoData)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}
	}

	return writeTo(cmd, chartOutput, write)
}
