// =============================================================================
// RSP Dashboard - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later wins):
//   1. Built-in defaults (see Default)
//   2. The YAML file (config.yaml unless --config is given)
//   3. A .env file in the working directory, if present
//   4. RSPDASH_* environment variables
//
// ENVIRONMENT VARIABLES:
//   RSPDASH_DATASET     -> dataset_path
//   RSPDASH_ENCODING    -> encoding
//   RSPDASH_ADDR        -> server.addr
//   RSPDASH_LOG_LEVEL   -> log_level
//   RSPDASH_LOG_FORMAT  -> log_format
//   RSPDASH_OUTPUT_DIR  -> output.dir
//   RSPDASH_METRICS     -> server.metrics_enabled (true/false)
//
// EXAMPLE config.yaml:
//
//   dataset_path: ./data/RSP.csv
//   encoding: windows-1252
//   default_year_mode: CY
//   chart:
//     unit: INR/L
//     product_colors:
//       Diesel: "#16a34a"
//       CNG: "#f59e0b"
//   server:
//     addr: ":9090"
//     allowed_origins: ["https://dash.example.com"]
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/rsp-dashboard/internal/chart"
	"github.com/ginjaninja78/rsp-dashboard/internal/csvparser"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
)

// DefaultConfigPath is read when no --config flag is given. Its absence is
// not an error.
const DefaultConfigPath = "config.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RSPDASH_"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DATASET SETTINGS
	// =========================================================================

	// DatasetPath is the RSP dataset, either delimited text or .xlsx.
	// Default: "./RSP.csv"
	DatasetPath string `yaml:"dataset_path"`

	// Encoding is the character encoding of delimited-text datasets.
	// Valid values: "UTF-8", "windows-1252", "ISO-8859-1"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// SheetName selects the worksheet of an .xlsx dataset.
	// Default: "" (the first sheet)
	SheetName string `yaml:"sheet_name"`

	// DefaultYearMode is the year convention used when none is requested.
	// Valid values: "FY", "CY"
	// Default: "FY"
	DefaultYearMode string `yaml:"default_year_mode"`

	// DefaultProduct is the product selected when the dataset has none.
	// Default: "Petrol"
	DefaultProduct string `yaml:"default_product"`

	// =========================================================================
	// PRESENTATION AND OUTPUT
	// =========================================================================

	Chart  ChartConfig  `yaml:"chart"`
	Output OutputConfig `yaml:"output"`
	Report ReportConfig `yaml:"report"`

	// =========================================================================
	// HTTP SERVER
	// =========================================================================

	Server ServerConfig `yaml:"server"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log handler.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format"`
}

// ChartConfig holds chart presentation settings.
type ChartConfig struct {
	// Unit is the y-axis unit. Default: "INR/L"
	Unit string `yaml:"unit"`

	// DefaultColor is the bar color for products without an override.
	// Default: "#3b82f6"
	DefaultColor string `yaml:"default_color"`

	// ProductColors maps product names to bar colors.
	// Default: {"Diesel": "#16a34a"}
	ProductColors map[string]string `yaml:"product_colors"`
}

// OutputConfig holds settings for generated files.
type OutputConfig struct {
	// Dir is where generated workbooks are written. Default: "./output"
	Dir string `yaml:"dir"`

	// FileNameFormat names generated workbooks. Placeholders: {product},
	// {city}, {year}, {mode}, {uuid}, {timestamp}.
	// Default: "{product}_{city}_{year}_{uuid}.xlsx"
	FileNameFormat string `yaml:"file_name_format"`
}

// ReportConfig holds data-quality report settings.
type ReportConfig struct {
	// MaxIssues caps the individual issues listed. Default: 50
	MaxIssues int `yaml:"max_issues"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8080"
	Addr string `yaml:"addr"`

	// AllowedOrigins lists CORS origins. Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RateLimitPerSecond is the sustained request rate. 0 disables rate
	// limiting. Default: 20
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`

	// RateLimitBurst is the request burst size. Default: 40
	RateLimitBurst int `yaml:"rate_limit_burst"`

	// ShutdownTimeout bounds graceful shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MetricsEnabled exposes /metrics. Default: true
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the built-in configuration.
func Default() *MainConfig {
	cfg := baseConfig()
	applyMainConfigDefaults(cfg)
	return cfg
}

// baseConfig holds the defaults whose zero value is meaningful, so they must
// be in place before the YAML is read.
func baseConfig() *MainConfig {
	return &MainConfig{
		Server: ServerConfig{
			RateLimitPerSecond: 20,
			MetricsEnabled:     true,
		},
	}
}

// LoadMainConfig loads and validates the configuration.
//
// PARAMETERS:
//   - configPath: The YAML file. Empty selects DefaultConfigPath.
//   - explicit: Whether the user named the file. A missing file is only an
//     error when explicit is true.
//
// RETURNS:
//   - The merged configuration.
//   - An error if the file cannot be read or parsed, or validation fails.
func LoadMainConfig(configPath string, explicit bool) (*MainConfig, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// Defaults whose zero value is meaningful are set up front; the rest are
	// filled after the overlays so maps are not merged.
	cfg := baseConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	applyMainConfigDefaults(cfg)

	if err := validateMainConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyMainConfigDefaults fills every empty field with its default.
func applyMainConfigDefaults(config *MainConfig) {
	if config.DatasetPath == "" {
		config.DatasetPath = "./RSP.csv"
	}
	if config.Encoding == "" {
		config.Encoding = "UTF-8"
	}
	if config.DefaultYearMode == "" {
		config.DefaultYearMode = string(types.FinancialYear)
	}
	if config.DefaultProduct == "" {
		config.DefaultProduct = "Petrol"
	}
	if config.Chart.Unit == "" {
		config.Chart.Unit = chart.DefaultUnit
	}
	if config.Chart.DefaultColor == "" {
		config.Chart.DefaultColor = chart.DefaultColor
	}
	if config.Chart.ProductColors == nil {
		config.Chart.ProductColors = map[string]string{"Diesel": chart.DieselColor}
	}
	if config.Output.Dir == "" {
		config.Output.Dir = "./output"
	}
	if config.Output.FileNameFormat == "" {
		config.Output.FileNameFormat = "{product}_{city}_{year}_{uuid}.xlsx"
	}
	if config.Report.MaxIssues == 0 {
		config.Report.MaxIssues = 50
	}
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}
	if config.Server.RateLimitBurst == 0 {
		config.Server.RateLimitBurst = 40
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	config.LogFormat = strings.ToLower(strings.TrimSpace(config.LogFormat))
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
}

// applyEnv overlays RSPDASH_* environment variables.
func applyEnv(config *MainConfig) error {
	config.DatasetPath = getEnv(EnvPrefix+"DATASET", config.DatasetPath)
	config.Encoding = getEnv(EnvPrefix+"ENCODING", config.Encoding)
	config.Server.Addr = getEnv(EnvPrefix+"ADDR", config.Server.Addr)
	config.LogLevel = getEnv(EnvPrefix+"LOG_LEVEL", config.LogLevel)
	config.LogFormat = getEnv(EnvPrefix+"LOG_FORMAT", config.LogFormat)
	config.Output.Dir = getEnv(EnvPrefix+"OUTPUT_DIR", config.Output.Dir)

	if val := os.Getenv(EnvPrefix + "METRICS"); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid %sMETRICS %q: %w", EnvPrefix, val, err)
		}
		config.Server.MetricsEnabled = enabled
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// validateMainConfig checks the merged configuration.
func validateMainConfig(config *MainConfig) error {
	if _, err := types.ParseYearMode(config.DefaultYearMode, types.FinancialYear); err != nil {
		return fmt.Errorf("default_year_mode: %w", err)
	}
	if _, err := csvparser.Decode(nil, config.Encoding); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	if _, err := ParseLogLevel(config.LogLevel); err != nil {
		return err
	}
	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", config.LogFormat)
	}

	if !hexColor.MatchString(config.Chart.DefaultColor) {
		return fmt.Errorf("chart.default_color %q is not a #rrggbb color", config.Chart.DefaultColor)
	}
	for product, color := range config.Chart.ProductColors {
		if !hexColor.MatchString(color) {
			return fmt.Errorf("chart.product_colors[%s] %q is not a #rrggbb color", product, color)
		}
	}

	if config.Report.MaxIssues < 1 {
		return fmt.Errorf("report.max_issues must be positive, got %d", config.Report.MaxIssues)
	}
	if config.Server.RateLimitPerSecond < 0 {
		return fmt.Errorf("server.rate_limit_per_second must not be negative, got %g", config.Server.RateLimitPerSecond)
	}
	if config.Server.RateLimitBurst < 1 {
		return fmt.Errorf("server.rate_limit_burst must be positive, got %d", config.Server.RateLimitBurst)
	}
	if config.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative, got %s", config.Server.ShutdownTimeout)
	}

	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// YearMode returns the parsed default year mode.
func (c *MainConfig) YearMode() types.YearMode {
	mode, err := types.ParseYearMode(c.DefaultYearMode, types.FinancialYear)
	if err != nil {
		return types.FinancialYear
	}
	return mode
}

// ChartSettings returns the presentational chart settings.
func (c *MainConfig) ChartSettings() chart.Settings {
	colors := make(map[string]string, len(c.Chart.ProductColors))
	for k, v := range c.Chart.ProductColors {
		colors[k] = v
	}
	return chart.Settings{
		Unit:          c.Chart.Unit,
		DefaultColor:  c.Chart.DefaultColor,
		ProductColors: colors,
	}
}

// ParseLogLevel converts a log_level value to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be debug, info, warn or error, got %q", level)
	}
}
