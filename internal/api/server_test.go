package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/cache"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/loader"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
)

const beninCSV = `timestamp,GHI,DNI,DHI,Region
2021-08-09 00:01,200,150,20,Malanville
2021-08-09 00:02,240,180,10,Malanville
2021-08-09 00:03,100,60,40,Kandi
`

const togoCSV = `timestamp,GHI,DNI,DHI
2021-10-25 00:01,180,100,20
2021-10-25 00:02,190,110,25
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, solar.Benin.SourceFile()), []byte(beninCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, solar.Togo.SourceFile()), []byte(togoCSV), 0644))

	log := logrus.New()
	log.SetOutput(io.Discard)
	loads := cache.New(loader.New(dir, log), 8, time.Minute)
	return NewServer(loads, log)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func scrape(t *testing.T, s *Server) string {
	t.Helper()
	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) view {
	t.Helper()
	var v view
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestCountries(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/countries")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Countries []string     `json:"countries"`
		Metrics   []metricJSON `json:"metrics"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"Benin", "SierraLeone", "Togo"}, body.Countries)
	require.Len(t, body.Metrics, 3)
	assert.Equal(t, solar.GHI, body.Metrics[0].Metric)
	assert.Equal(t, solar.Describe("GHI"), body.Metrics[0].Description)
}

func TestDescribe(t *testing.T) {
	s := newTestServer(t)

	var m metricJSON
	rec := get(t, s, "/api/metrics/DNI")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, solar.Describe("DNI"), m.Description)

	rec = get(t, s, "/api/metrics/Tamb")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, solar.NoDescription, m.Description)
}

func TestDashboardDefaults(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	v := decodeView(t, rec)
	assert.Equal(t, []string{"Benin"}, v.Countries)
	assert.Equal(t, solar.GHI, v.Metric)
	assert.Empty(t, v.Warnings)

	require.Len(t, v.Summary, 1)
	ghi := v.Summary[0].Metrics["GHI"]
	require.NotNil(t, ghi.Mean)
	assert.InDelta(t, 180.0, *ghi.Mean, 1e-9)
	assert.InDelta(t, 240.0, *ghi.Max, 1e-9)

	require.Len(t, v.TopRegions, 2)
	assert.Equal(t, "Malanville", v.TopRegions[0].Region)
	assert.InDelta(t, 220.0, *v.TopRegions[0].Value, 1e-9)

	require.NotNil(t, v.Correlation)
	assert.Len(t, v.Correlation.Metrics, 3)
	assert.InDelta(t, 1.0, *v.Correlation.Values[0][0], 1e-9)
}

func TestSummaryMultipleCountries(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/summary?countries=Togo,Benin&metric=dni")
	require.Equal(t, http.StatusOK, rec.Code)

	v := decodeView(t, rec)
	assert.Equal(t, solar.DNI, v.Metric)
	require.Len(t, v.Summary, 2)
	assert.Equal(t, "Benin", v.Summary[0].Country)
	assert.Equal(t, "Togo", v.Summary[1].Country)
	assert.Nil(t, v.TopRegions)
	assert.Nil(t, v.Correlation)
}

func TestPartialFailureWarns(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/summary?country=Benin&country=SierraLeone")
	require.Equal(t, http.StatusOK, rec.Code)

	v := decodeView(t, rec)
	require.Len(t, v.Warnings, 1)
	assert.True(t, strings.HasPrefix(v.Warnings[0], "Error loading data for SierraLeone"))
	require.Len(t, v.Summary, 1)
	assert.Equal(t, "Benin", v.Summary[0].Country)
}

func TestAllFailedWarns(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/dashboard?countries=Atlantis")
	require.Equal(t, http.StatusOK, rec.Code)

	v := decodeView(t, rec)
	require.Len(t, v.Warnings, 2)
	assert.Equal(t, WarnNoData, v.Warnings[1])
	assert.Nil(t, v.Summary)

	assert.Contains(t, scrape(t, s), `solar_country_loads_total{country="unknown",result="error"} 1`)
}

func TestEmptySelection(t *testing.T) {
	s := newTestServer(t)
	v := decodeView(t, get(t, s, "/api/dashboard?countries="))
	assert.Equal(t, []string{WarnNoSelection}, v.Warnings)

	rec := get(t, s, "/api/charts/boxplot.png?countries=")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownMetric(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/api/summary?metric=Tamb")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown metric")
}

func TestCorrelationNotEnoughMetrics(t *testing.T) {
	dir := t.TempDir()
	csv := "timestamp,GHI\n2021-08-09 00:01,1\n2021-08-09 00:02,2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, solar.Benin.SourceFile()), []byte(csv), 0644))
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewServer(cache.New(loader.New(dir, log), 4, 0), log)

	v := decodeView(t, get(t, s, "/api/correlation"))
	assert.Equal(t, []string{WarnNoCorrelate}, v.Warnings)
	assert.Nil(t, v.Correlation)
}

func TestCacheHit(t *testing.T) {
	s := newTestServer(t)
	get(t, s, "/api/summary?countries=Benin,Togo")
	get(t, s, "/api/top-regions?countries=Togo,Benin")

	body := scrape(t, s)
	assert.Contains(t, body, `solar_load_cache_requests_total{result="miss"} 1`)
	assert.Contains(t, body, `solar_load_cache_requests_total{result="hit"} 1`)
	assert.Contains(t, body, `solar_country_loads_total{country="Togo",result="ok"} 1`)
}

func TestCharts(t *testing.T) {
	s := newTestServer(t)
	png := []byte("\x89PNG")
	for _, target := range []string{
		"/api/charts/boxplot.png?countries=Benin,Togo",
		"/api/charts/timeseries.png?countries=Benin,Togo&metric=DHI",
	} {
		rec := get(t, s, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), png), target)
	}

	rec := get(t, s, "/api/charts/boxplot.png?country=Atlantis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), WarnNoData)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	get(t, s, "/api/countries")
	assert.Contains(t, scrape(t, s), "solar_http_request_duration_seconds")
}

func TestTopRegionsIgnoreCountriesWithoutRegion(t *testing.T) {
	s := newTestServer(t)
	v := decodeView(t, get(t, s, "/api/top-regions?countries=Togo,Benin"))

	require.Len(t, v.TopRegions, 2)
	for _, r := range v.TopRegions {
		assert.Equal(t, "Benin", r.Country)
		assert.NotEmpty(t, r.Region)
	}
}

func TestDuplicateCountriesCountOnce(t *testing.T) {
	s := newTestServer(t)
	v := decodeView(t, get(t, s, "/api/summary?countries=Benin,Benin&country=Benin"))
	assert.Equal(t, []string{"Benin"}, v.Countries)

	v = decodeView(t, get(t, s, "/api/summary?countries=Benin"))
	require.Len(t, v.Summary, 1)
	ghi := v.Summary[0].Metrics["GHI"]
	require.NotNil(t, ghi.Std)
	assert.InDelta(t, 72.11, *ghi.Std, 1e-9)
	assert.Contains(t, scrape(t, s), `solar_country_loads_total{country="Benin",result="ok"} 1`)
}

func TestNonNumericMetricWarns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, solar.Benin.SourceFile()), []byte(beninCSV), 0644))
	togo := "timestamp,GHI,DNI,DHI\n2021-10-25 00:01,180,n/a,20\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, solar.Togo.SourceFile()), []byte(togo), 0644))
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewServer(cache.New(loader.New(dir, log), 4, time.Minute), log)

	v := decodeView(t, get(t, s, "/api/summary?countries=Benin,Togo&metric=DNI"))
	require.Len(t, v.Warnings, 1)
	assert.True(t, strings.HasPrefix(v.Warnings[0], "DNI has non-numeric values"))
	assert.Nil(t, v.Summary)
}
