package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/rsp-dashboard/internal/chart"
	"github.com/ginjaninja78/rsp-dashboard/internal/chartwriter"
	"github.com/ginjaninja78/rsp-dashboard/internal/config"
	"github.com/ginjaninja78/rsp-dashboard/internal/dashboard"
	"github.com/ginjaninja78/rsp-dashboard/internal/validation"
)

const rspCSV = "Country,Year,Month,Date,Product,City,Retail Selling Price\n" +
	"India,2024,\"April, 2024\",2024-04-01,Petrol,Delhi,94.72\n" +
	"India,2024,\"June, 2024\",2024-06-03,Petrol,Delhi,100\n" +
	"India,2024,\"June, 2024\",2024-06-10,Petrol,Delhi,102\n" +
	"India,2024,\"June, 2024\",2024-06-17,Petrol,Delhi,98\n" +
	"India,2024,\"June, 2024\",2024-06-03,Diesel,Mumbai,90.03\n"

type fixture struct {
	svc     *dashboard.Service
	handler http.Handler
}

func newFixture(t *testing.T, cfg *config.MainConfig, load bool) fixture {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	svc := dashboard.New(cfg, nil)
	if load {
		_, err := svc.LoadBytes(context.Background(), "RSP.csv", []byte(rspCSV))
		require.NoError(t, err)
	}
	return fixture{svc: svc, handler: New(svc, cfg, nil)}
}

func (f fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	empty := newFixture(t, nil, false)
	rec := empty.get(t, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := empty.svc.LoadBytes(context.Background(), "RSP.csv", []byte(rspCSV))
	require.NoError(t, err)

	rec = empty.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestOptions(t *testing.T) {
	f := newFixture(t, nil, true)

	rec := f.get(t, "/api/options?mode=cy")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body struct {
		Cities      []string `json:"cities"`
		Products    []string `json:"products"`
		YearBuckets []string `json:"yearBuckets"`
		Mode        string   `json:"mode"`
		Defaults    struct {
			City       string `json:"city"`
			Product    string `json:"product"`
			YearBucket string `json:"yearBucket"`
			Mode       string `json:"mode"`
		} `json:"defaults"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, []string{"Delhi", "Mumbai"}, body.Cities)
	assert.Equal(t, []string{"Diesel", "Petrol"}, body.Products)
	assert.Equal(t, []string{"2024"}, body.YearBuckets)
	assert.Equal(t, "CY", body.Mode)
	assert.Equal(t, "Delhi", body.Defaults.City)
	assert.Equal(t, "Petrol", body.Defaults.Product)
	assert.Equal(t, "2024", body.Defaults.YearBucket)
	assert.Equal(t, "CY", body.Defaults.Mode)
}

func TestChart(t *testing.T) {
	f := newFixture(t, nil, true)

	rec := f.get(t, "/api/chart?city=Delhi&product=Petrol&year=2024-2025&mode=fy")
	require.Equal(t, http.StatusOK, rec.Code)

	var c chart.Chart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "Petrol — Delhi — 2024-2025 (FY)", c.Title)
	assert.Equal(t, "INR/L", c.Unit)
	assert.Equal(t, "#3b82f6", c.Color)
	assert.Equal(t, []string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, c.Categories)
	assert.Equal(t, 94.72, c.Values[0])
	assert.Equal(t, 100.0, c.Values[2])
	assert.False(t, c.NoData)
}

func TestChart_DefaultsAndNoData(t *testing.T) {
	f := newFixture(t, nil, true)

	rec := f.get(t, "/api/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	var c chart.Chart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "Petrol — Delhi — 2024-2025 (FY)", c.Title)

	rec = f.get(t, "/api/chart?city=Chennai")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.True(t, c.NoData)
	assert.Equal(t, chart.NoDataMessage, c.Message)
}

func TestChart_BadMode(t *testing.T) {
	f := newFixture(t, nil, true)

	for _, target := range []string{"/api/chart?mode=quarterly", "/api/options?mode=q", "/api/chart.xlsx?mode=x"} {
		rec := f.get(t, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "unknown year mode", target)
	}
}

func TestNoDatasetIs503(t *testing.T) {
	f := newFixture(t, nil, false)

	for _, target := range []string{"/api/chart", "/api/options", "/api/report", "/api/chart.xlsx"} {
		rec := f.get(t, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestChartXLSX(t *testing.T) {
	f := newFixture(t, nil, true)

	rec := f.get(t, "/api/chart.xlsx?city=Mumbai&product=Diesel&year=2024-2025")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="Diesel_Mumbai_2024-2025_[0-9a-f-]{36}\.xlsx"$`, rec.Header().Get("Content-Disposition"))

	wb, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()

	jun, err := wb.GetCellValue(chartwriter.SheetName, "B4")
	require.NoError(t, err)
	assert.Equal(t, "90.03", jun)
}

func TestReport(t *testing.T) {
	f := newFixture(t, nil, true)

	rec := f.get(t, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)

	var report validation.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 5, report.Records)
	assert.Equal(t, 5, report.Chartable)
	assert.Equal(t, "RSP.csv", report.Source)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil, true)
	f.get(t, "/api/chart")

	rec := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rspdash_http_requests_total{code="200",route="/api/chart"}`)

	cfg := config.Default()
	cfg.Server.MetricsEnabled = false
	disabled := newFixture(t, cfg, true)
	assert.Equal(t, http.StatusNotFound, disabled.get(t, "/metrics").Code)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimitPerSecond = 0.001
	cfg.Server.RateLimitBurst = 2
	f := newFixture(t, cfg, true)

	assert.Equal(t, http.StatusOK, f.get(t, "/health").Code)
	assert.Equal(t, http.StatusOK, f.get(t, "/health").Code)

	rec := f.get(t, "/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"https://dash.example.com"}
	f := newFixture(t, cfg, true)

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, nil, true)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chart", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit_ZeroDisables(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimitPerSecond = 0
	cfg.Server.RateLimitBurst = 1
	f := newFixture(t, cfg, true)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, f.get(t, "/health").Code)
	}
}
