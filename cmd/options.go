// =============================================================================
// RSP Dashboard - Options Command
// =============================================================================
//
// This file defines the 'options' command, which lists the cities, products
// and year buckets present in the dataset together with the default
// selection.
//
// COMMAND USAGE:
//   rspdash options [flags]
//
// FLAGS:
//   --file      Dataset to load (overrides dataset_path)
//   --mode      fy or cy (default from config)
//   --format    table or json (default: table)
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/rsp-dashboard/internal/aggregate"
	"github.com/ginjaninja78/rsp-dashboard/internal/chartwriter"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

var (
	optionsFile   string
	optionsMode   string
	optionsFormat string
)

// optionsOutput is the JSON shape of the options command.
type optionsOutput struct {
	aggregate.Options
	Defaults types.Selection `json:"defaults"`
}

// optionsCmd represents the 'options' command.
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the filter options and the default selection",
	Long: `Load the dataset and list its cities, products and year buckets for
the chosen year mode, plus the selection used when none is given.`,
	RunE: runOptions,
}

func init() {
	rootCmd.AddCommand(optionsCmd)

	optionsCmd.Flags().StringVar(&optionsFile, "file", "", "Dataset to load (overrides dataset_path)")
	optionsCmd.Flags().StringVar(&optionsMode, "mode", "", "Year mode: fy or cy")
	optionsCmd.Flags().StringVar(&optionsFormat, "format", "table", "Output format: table or json")
}

func runOptions(cmd *cobra.Command, args []string) error {
	mode, err := types.ParseYearMode(optionsMode, "")
	if err != nil {
		return err
	}
	if optionsFormat != "table" && optionsFormat != "json" {
		return fmt.Errorf("unknown format %q (want table or json)", optionsFormat)
	}

	svc, err := loadService(cmd.Context(), optionsFile)
	if err != nil {
		return err
	}

	opts, err := svc.Options(mode)
	if err != nil {
		return err
	}
	defaults, err := svc.Selection(types.Selection{Mode: opts.Mode})
	if err != nil {
		return err
	}

	if optionsFormat == "json" {
		return chartwriter.WriteJSON(cmd.OutOrStdout(), optionsOutput{Options: opts, Defaults: defaults})
	}
	return chartwriter.WriteOptionsTable(cmd.OutOrStdout(), opts, defaults)
}
