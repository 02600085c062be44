// =============================================================================
// RSP Dashboard - Main Entry Point
// =============================================================================
//
// This is the main entry point for the RSP Dashboard CLI. It delegates
// command execution to the cmd package.
//
// USAGE:
//   rspdash chart       - Build the monthly average price chart for a selection
//   rspdash options     - List cities, products, year buckets and defaults
//   rspdash validate    - Report data-quality issues in the dataset
//   rspdash serve       - Run the dashboard HTTP API
//   rspdash version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, normalization, aggregation, charts, HTTP API
//   - pkg/           : File helpers, metrics and tracing
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/rsp-dashboard/cmd"
)

func main() {
	cmd.Execute()
}
