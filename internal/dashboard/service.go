// =============================================================================
// RSP Dashboard - Dashboard Service
// =============================================================================
//
// This module orchestrates the dashboard pipeline and holds the active
// dataset for the CLI and the HTTP server.
//
// LOAD PIPELINE:
//   1. Read the source (file or bytes)
//   2. Parse rows: .xlsx through xlsxparser, anything else through
//      csvparser with the configured encoding
//   3. Build the immutable dataset (header check, normalization)
//   4. Precompute filter options and default selections for both modes
//   5. Build the data-quality report
//   6. Swap the new state in
//
// CONCURRENCY:
//   The active state sits behind an atomic pointer. A load builds a complete
//   new state before swapping it in, so readers never see a partial dataset
//   and need no lock. A failed load leaves the previous state active.
//
// =============================================================================

package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ginjaninja78/rsp-dashboard/internal/aggregate"
	"github.com/ginjaninja78/rsp-dashboard/internal/chart"
	"github.com/ginjaninja78/rsp-dashboard/internal/config"
	"github.com/ginjaninja78/rsp-dashboard/internal/csvparser"
	"github.com/ginjaninja78/rsp-dashboard/internal/dataset"
	"github.com/ginjaninja78/rsp-dashboard/internal/types"
	"github.com/ginjaninja78/rsp-dashboard/internal/validation"
	"github.com/ginjaninja78/rsp-dashboard/internal/xlsxparser"
	"github.com/ginjaninja78/rsp-dashboard/pkg/observability"
	"github.com/ginjaninja78/rsp-dashboard/pkg/utils"
)

// ErrNoDataset is returned by every read before the first successful load.
var ErrNoDataset = errors.New("no dataset loaded")

// =============================================================================
// SERVICE STRUCTURE
// =============================================================================

// Service holds the active dataset and answers dashboard queries.
type Service struct {
	cfg    *config.MainConfig
	logger *slog.Logger
	tracer trace.Tracer

	current atomic.Pointer[state]
}

// state is everything derived from one load. It is never modified after
// being stored.
type state struct {
	ds       *dataset.Dataset
	report   *validation.Report
	options  map[types.YearMode]aggregate.Options
	defaults map[types.YearMode]types.Selection
}

// New creates a Service. A nil cfg uses config.Default and a nil logger
// uses slog.Default.
func New(cfg *config.MainConfig, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		logger: logger.With("component", "dashboard"),
		tracer: observability.Tracer(),
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Reload loads the configured dataset path.
func (s *Service) Reload(ctx context.Context) (*dataset.Dataset, error) {
	return s.LoadFile(ctx, s.cfg.DatasetPath)
}

// LoadFile reads and loads the dataset at path.
//
// RETURNS:
//   - The new active dataset.
//   - An error wrapping utils.ErrSourceUnavailable, dataset.ErrMalformedInput
//     or a parse error. The previous dataset stays active on error.
func (s *Service) LoadFile(ctx context.Context, path string) (_ *dataset.Dataset, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.LoadFile")
	span.SetAttributes(attribute.String("dataset.path", path))
	defer func() { observability.EndSpan(span, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := utils.ReadSource(path)
	if err != nil {
		observability.ObserveLoad(time.Now(), 0, err)
		s.logger.Error("failed to read dataset", "path", path, "error", err)
		return nil, err
	}
	return s.LoadBytes(ctx, path, data)
}

// LoadBytes loads a dataset from raw bytes. name is used for the
// extension-based format dispatch and as the dataset source.
func (s *Service) LoadBytes(ctx context.Context, name string, data []byte) (_ *dataset.Dataset, err error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.LoadBytes")
	span.SetAttributes(
		attribute.String("dataset.source", name),
		attribute.Int("dataset.bytes", len(data)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	st, err := s.build(name, data)
	observability.ObserveLoad(start, recordCount(st), err)
	if err != nil {
		s.logger.Error("failed to load dataset", "source", name, "error", err)
		return nil, err
	}

	s.current.Store(st)
	span.SetAttributes(
		attribute.String("dataset.id", st.ds.ID.String()),
		attribute.Int("dataset.records", len(st.ds.Records)),
	)

	s.logger.Info("dataset loaded",
		"dataset", st.ds.ID.String(),
		"source", name,
		"rows", st.ds.RowCount,
		"records", len(st.ds.Records),
		"price_column", st.ds.PriceColumnName(),
		"duration", time.Since(start),
	)
	if !st.report.Clean() {
		s.logger.Warn("dataset has data-quality issues",
			"dataset", st.ds.ID.String(),
			"excluded", st.report.Excluded(),
			"zero_prices", st.report.ZeroPrices,
			"month_mismatches", st.report.MonthMismatches,
		)
	}

	return st.ds, nil
}

// build runs the load pipeline without touching the active state.
func (s *Service) build(name string, data []byte) (*state, error) {
	rows, err := s.parse(name, data)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Build(name, rows)
	if err != nil {
		return nil, err
	}

	st := &state{
		ds:       ds,
		report:   validation.NewInspector(validation.Options{MaxIssues: s.cfg.Report.MaxIssues}).Inspect(ds),
		options:  make(map[types.YearMode]aggregate.Options, 2),
		defaults: make(map[types.YearMode]types.Selection, 2),
	}
	for _, mode := range []types.YearMode{types.FinancialYear, types.CalendarYear} {
		opts := aggregate.DeriveOptions(ds.Records, mode)
		def := aggregate.DefaultSelection(ds.Records, mode)
		if len(opts.Products) == 0 && s.cfg.DefaultProduct != "" {
			def.Product = s.cfg.DefaultProduct
		}
		st.options[mode] = opts
		st.defaults[mode] = def
	}
	return st, nil
}

// parse dispatches on the file extension.
func (s *Service) parse(name string, data []byte) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		rows, err := xlsxparser.ReadRows(bytes.NewReader(data), s.cfg.SheetName)
		if errors.Is(err, xlsxparser.ErrSheetNotFound) {
			if sheets, listErr := xlsxparser.SheetNames(bytes.NewReader(data)); listErr == nil {
				return nil, fmt.Errorf("failed to read spreadsheet %s: %w (available sheets: %s)",
					name, err, strings.Join(sheets, ", "))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read spreadsheet %s: %w", name, err)
		}
		return rows, nil
	}

	rows, err := csvparser.ParseBytes(data, s.cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return rows, nil
}

func recordCount(st *state) int {
	if st == nil {
		return 0
	}
	return len(st.ds.Records)
}

// =============================================================================
// QUERIES
// =============================================================================

func (s *Service) load() (*state, error) {
	st := s.current.Load()
	if st == nil {
		return nil, ErrNoDataset
	}
	return st, nil
}

// Loaded reports whether a dataset is active.
func (s *Service) Loaded() bool {
	return s.current.Load() != nil
}

// Dataset returns the active dataset.
func (s *Service) Dataset() (*dataset.Dataset, error) {
	st, err := s.load()
	if err != nil {
		return nil, err
	}
	return st.ds, nil
}

// Report returns the data-quality report of the active dataset.
func (s *Service) Report() (*validation.Report, error) {
	st, err := s.load()
	if err != nil {
		return nil, err
	}
	return st.report, nil
}

// Options returns the filter options for mode. An empty mode selects the
// configured default mode.
func (s *Service) Options(mode types.YearMode) (aggregate.Options, error) {
	st, err := s.load()
	if err != nil {
		return aggregate.Options{}, err
	}
	return st.options[s.modeOrDefault(mode)], nil
}

// Selection completes partial with the defaults of its mode. Non-empty
// fields of partial are kept as given, even if the dataset has no such
// value; the chart then reports no data.
func (s *Service) Selection(partial types.Selection) (types.Selection, error) {
	st, err := s.load()
	if err != nil {
		return types.Selection{}, err
	}
	return s.complete(st, partial), nil
}

// Chart completes partial and builds its chart payload.
func (s *Service) Chart(partial types.Selection) (chart.Chart, error) {
	st, err := s.load()
	if err != nil {
		return chart.Chart{}, err
	}

	sel := s.complete(st, partial)
	series := aggregate.Aggregate(st.ds.Records, sel)
	c := chart.Build(series, sel, s.cfg.ChartSettings())
	observability.ObserveChart(string(sel.Mode), c.NoData)

	s.logger.Debug("chart built",
		"dataset", st.ds.ID.String(),
		"city", sel.City,
		"product", sel.Product,
		"year", sel.YearBucket,
		"mode", sel.Mode,
		"no_data", c.NoData,
	)
	return c, nil
}

func (s *Service) complete(st *state, partial types.Selection) types.Selection {
	partial.Mode = s.modeOrDefault(partial.Mode)
	return partial.WithDefaults(st.defaults[partial.Mode])
}

func (s *Service) modeOrDefault(mode types.YearMode) types.YearMode {
	if mode == "" {
		return s.cfg.YearMode()
	}
	return mode
}
