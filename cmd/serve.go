// =============================================================================
// RSP Dashboard - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the HTTP API used by the
// browser dashboard.
//
// COMMAND USAGE:
//   rspdash serve [flags]
//
// FLAGS:
//   --file      Dataset to load (overrides dataset_path)
//   --addr      Listen address (overrides server.addr)
//
// SIGNALS:
//   SIGHUP          Reload the dataset. A failed reload keeps the current one.
//   SIGINT/SIGTERM  Graceful shutdown within server.shutdown_timeout.
//
// The server starts even when the first load fails; /health reports 503
// until a dataset is loaded.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/rsp-dashboard/internal/dashboard"
	"github.com/ginjaninja78/rsp-dashboard/internal/server"
)

var (
	serveFile string
	serveAddr string
)

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	Long: `Load the dataset and serve the dashboard API:

  GET /api/options     filter options and defaults
  GET /api/chart       chart payload for a selection
  GET /api/chart.xlsx  chart workbook download
  GET /api/report      data-quality report
  GET /health          readiness
  GET /metrics         Prometheus metrics (server.metrics_enabled)

Send SIGHUP to reload the dataset without restarting.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFile, "file", "", "Dataset to load (overrides dataset_path)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveFile != "" {
		appConfig.DatasetPath = serveFile
	}
	if serveAddr != "" {
		appConfig.Server.Addr = serveAddr
	}

	svc := dashboard.New(appConfig, logger)
	if _, err := svc.Reload(cmd.Context()); err != nil {
		logger.Warn("starting without a dataset", slog.Any("error", err))
	}

	srv := &http.Server{
		Addr:              appConfig.Server.Addr,
		Handler:           server.New(svc, appConfig, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "dataset", appConfig.DatasetPath)
		serverErrors <- srv.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	for {
		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-signals:
			if sig == syscall.SIGHUP {
				logger.Info("reload signal received")
				if _, err := svc.Reload(cmd.Context()); err != nil {
					logger.Error("reload failed, keeping current dataset", slog.Any("error", err))
				}
				continue
			}
			logger.Info("shutdown signal received", "signal", sig.String())
			return shutdown(srv, appConfig.Server.ShutdownTimeout)
		}
	}
}

// shutdown stops srv gracefully, forcing it closed after timeout.
func shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		srv.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
