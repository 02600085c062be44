// =============================================================================
// RSP Dashboard - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (rspdash)
//   ├── chartCmd    (rspdash chart)
//   ├── optionsCmd  (rspdash options)
//   ├── validateCmd (rspdash validate)
//   ├── serveCmd    (rspdash serve)
//   └── versionCmd  (rspdash version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration before any subcommand runs
//   3. Setting up the slog logger (stderr, text or JSON)
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/rsp-dashboard/internal/config"
	"github.com/ginjaninja78/rsp-dashboard/internal/dashboard"
	"github.com/ginjaninja78/rsp-dashboard/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and logger are set by the root PersistentPreRunE.
var (
	appConfig *config.MainConfig
	logger    *slog.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rspdash",
	Short: "RSP Dashboard - monthly retail selling price charts for fuel",
	Long: `RSP Dashboard loads a retail selling price (RSP) dataset for fuels across
cities and months, and turns it into monthly average price charts.

Key Features:
  - Delimited-text (UTF-8, Windows-1252, Latin-1) and .xlsx datasets
  - Financial-year (Apr-Mar) and calendar-year views
  - Chart output as a table, JSON or an Excel workbook with a column chart
  - Data-quality report for rows that never make it into a chart
  - HTTP API for a browser dashboard

Example Usage:
  rspdash options --file RSP.csv
  rspdash chart --file RSP.csv --city Delhi --product Diesel --year 2024-2025
  rspdash chart --mode cy --format xlsx
  rspdash validate
  rspdash serve --addr :9090`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		appConfig = cfg

		l, err := newLogger(cmd.ErrOrStderr(), cfg, verbose)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// newLogger builds the application logger from the configuration.
func newLogger(w io.Writer, cfg *config.MainConfig, verbose bool) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// loadService creates the dashboard service and loads the dataset. An
// empty path loads the configured dataset.
func loadService(ctx context.Context, path string) (*dashboard.Service, error) {
	if path == "" {
		path = appConfig.DatasetPath
	}
	svc := dashboard.New(appConfig, logger)
	if _, err := svc.LoadFile(ctx, path); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return svc, nil
}

// writeTo writes through write to path, or to cmd's output when path is
// empty.
func writeTo(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	written, err := utils.WriteOutputFile(filepath.Dir(path), filepath.Base(path), write)
	if err != nil {
		return err
	}
	logger.Info("output written", "path", written)
	return nil
}
