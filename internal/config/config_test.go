package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATASET", "ENCODING", "ADDR", "LOG_LEVEL", "LOG_FORMAT", "OUTPUT_DIR", "METRICS"} {
		t.Setenv(EnvPrefix+key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./RSP.csv", cfg.DatasetPath)
	assert.Equal(t, "UTF-8", cfg.Encoding)
	assert.Equal(t, types.FinancialYear, cfg.YearMode())
	assert.Equal(t, "Petrol", cfg.DefaultProduct)
	assert.Equal(t, "INR/L", cfg.Chart.Unit)
	assert.Equal(t, "#3b82f6", cfg.Chart.DefaultColor)
	assert.Equal(t, map[string]string{"Diesel": "#16a34a"}, cfg.Chart.ProductColors)
	assert.Equal(t, "./output", cfg.Output.Dir)
	assert.Equal(t, "{product}_{city}_{year}_{uuid}.xlsx", cfg.Output.FileNameFormat)
	assert.Equal(t, 50, cfg.Report.MaxIssues)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 20.0, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.NoError(t, validateMainConfig(cfg))
}

func TestLoadMainConfig_MissingDefaultFile(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMainConfig_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoadMainConfig_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
dataset_path: ./data/prices.xlsx
sheet_name: RSP
encoding: windows-1252
default_year_mode: cy
chart:
  unit: INR/kg
  product_colors:
    CNG: "#f59e0b"
server:
  addr: ":9090"
  allowed_origins: ["https://dash.example.com"]
  shutdown_timeout: 5s
  metrics_enabled: false
report:
  max_issues: 10
log_format: json
`)

	cfg, err := LoadMainConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, "./data/prices.xlsx", cfg.DatasetPath)
	assert.Equal(t, "RSP", cfg.SheetName)
	assert.Equal(t, "windows-1252", cfg.Encoding)
	assert.Equal(t, types.CalendarYear, cfg.YearMode())
	assert.Equal(t, "INR/kg", cfg.Chart.Unit)
	assert.Equal(t, map[string]string{"CNG": "#f59e0b"}, cfg.Chart.ProductColors)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, 10, cfg.Report.MaxIssues)
	assert.Equal(t, "json", cfg.LogFormat)
	// Untouched fields keep their defaults.
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)
	assert.Equal(t, "#3b82f6", cfg.Chart.DefaultColor)
}

func TestLoadMainConfig_LogFormatCase(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "log_format: \" JSON \"\n")

	cfg, err := LoadMainConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadMainConfig_RateLimitZeroDisables(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  rate_limit_per_second: 0\n")

	cfg, err := LoadMainConfig(path, true)
	require.NoError(t, err)
	assert.Zero(t, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)

	cfg, err = LoadMainConfig(writeConfig(t, "server:\n  rate_limit_burst: 5\n"), true)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Server.RateLimitPerSecond, "an omitted rate keeps the default")
}

func TestLoadMainConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RSPDASH_DATASET", "/srv/rsp.csv")
	t.Setenv("RSPDASH_ADDR", "127.0.0.1:7000")
	t.Setenv("RSPDASH_LOG_LEVEL", "debug")
	t.Setenv("RSPDASH_OUTPUT_DIR", "/tmp/charts")
	t.Setenv("RSPDASH_METRICS", "false")

	path := writeConfig(t, "dataset_path: ./from-file.csv\n")
	cfg, err := LoadMainConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, "/srv/rsp.csv", cfg.DatasetPath)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/charts", cfg.Output.Dir)
	assert.False(t, cfg.Server.MetricsEnabled)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad yaml", body: "dataset_path: [unterminated\n"},
		{name: "bad year mode", body: "default_year_mode: quarterly\n"},
		{name: "bad encoding", body: "encoding: ebcdic\n"},
		{name: "bad log level", body: "log_level: loud\n"},
		{name: "bad log format", body: "log_format: xml\n"},
		{name: "bad color", body: "chart:\n  default_color: blue\n"},
		{name: "bad product color", body: "chart:\n  product_colors:\n    Diesel: green\n"},
		{name: "negative max issues", body: "report:\n  max_issues: -1\n"},
		{name: "negative burst", body: "server:\n  rate_limit_burst: -2\n"},
		{name: "bad duration", body: "server:\n  shutdown_timeout: soon\n"},
		{name: "bad metrics env", body: "", env: map[string]string{"RSPDASH_METRICS": "maybe"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := LoadMainConfig(writeConfig(t, tc.body), true)
			assert.Error(t, err)
		})
	}
}

func TestChartSettings(t *testing.T) {
	cfg := Default()
	settings := cfg.ChartSettings()

	assert.Equal(t, "INR/L", settings.Unit)
	assert.Equal(t, "#16a34a", settings.ColorFor("Diesel"))
	assert.Equal(t, "#3b82f6", settings.ColorFor("Petrol"))

	// The settings own their map.
	settings.ProductColors["Diesel"] = "#000000"
	assert.Equal(t, "#16a34a", cfg.Chart.ProductColors["Diesel"])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tc := range tests {
		got, err := ParseLogLevel(tc.in)
		if tc.err {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
