package api

import (
	"bytes"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"gonum.org/v1/plot"

	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/analytics"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/chart"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/solar"
	"github.com/Ayenewtarekegn18/solar-challenge-week1/internal/table"
)

// number encodes NaN as JSON null.
func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type statsJSON struct {
	Mean *float64 `json:"mean"`
	Std  *float64 `json:"std"`
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
}

type summaryRowJSON struct {
	Country string               `json:"country"`
	Metrics map[string]statsJSON `json:"metrics"`
}

type regionJSON struct {
	Country string   `json:"country"`
	Region  string   `json:"region"`
	Value   *float64 `json:"value"`
}

type correlationJSON struct {
	Metrics []solar.Metric `json:"metrics"`
	Values  [][]*float64   `json:"values"`
}

type metricJSON struct {
	Metric      solar.Metric `json:"metric"`
	Description string       `json:"description"`
}

// view is the body of every table endpoint. Sections not requested are omitted.
type view struct {
	Countries   []string         `json:"countries"`
	Metric      solar.Metric     `json:"metric"`
	Description string           `json:"description,omitempty"`
	Warnings    []string         `json:"warnings"`
	Summary     []summaryRowJSON `json:"summary,omitempty"`
	TopRegions  []regionJSON     `json:"top_regions,omitempty"`
	Correlation *correlationJSON `json:"correlation,omitempty"`
}

func summaryView(s *analytics.Summary) []summaryRowJSON {
	if s.Empty() {
		return nil
	}
	out := make([]summaryRowJSON, 0, len(s.Rows))
	for _, row := range s.Rows {
		r := summaryRowJSON{Country: row.Country, Metrics: make(map[string]statsJSON, len(s.Metrics))}
		for i, m := range s.Metrics {
			st := row.Values[i]
			r.Metrics[string(m)] = statsJSON{
				Mean: number(st.Mean),
				Std:  number(st.Std),
				Min:  number(st.Min),
				Max:  number(st.Max),
			}
		}
		out = append(out, r)
	}
	return out
}

func regionsView(r *analytics.TopRegions) []regionJSON {
	if r.Empty() {
		return nil
	}
	out := make([]regionJSON, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = regionJSON{Country: row.Country, Region: row.Region, Value: number(row.Value)}
	}
	return out
}

func correlationView(m *analytics.Matrix) *correlationJSON {
	if m.Empty() {
		return nil
	}
	n := m.Size()
	out := &correlationJSON{Metrics: m.Metrics, Values: make([][]*float64, n)}
	for i := 0; i < n; i++ {
		out.Values[i] = make([]*float64, n)
		for j := 0; j < n; j++ {
			out.Values[i][j] = number(m.At(i, j))
		}
	}
	return out
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	metrics := make([]metricJSON, 0, len(solar.Metrics))
	for _, m := range solar.Metrics {
		metrics = append(metrics, metricJSON{Metric: m, Description: solar.Describe(string(m))})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"countries": solar.CountryNames(),
		"metrics":   metrics,
	})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["metric"]
	s.writeJSON(w, http.StatusOK, metricJSON{Metric: solar.Metric(code), Description: solar.Describe(code)})
}

type section int

const (
	sectionSummary section = 1 << iota
	sectionRegions
	sectionCorrelation
)

const sectionAll = sectionSummary | sectionRegions | sectionCorrelation

// respond loads the selection and renders the requested sections. Missing data
// is reported through warnings with status 200.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sections section) {
	sel, err := parseSelection(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	v := view{
		Countries:   sel.Countries,
		Metric:      sel.Metric,
		Description: solar.Describe(string(sel.Metric)),
		Warnings:    []string{},
	}
	if len(sel.Countries) == 0 {
		v.Warnings = append(v.Warnings, WarnNoSelection)
		s.writeJSON(w, http.StatusOK, v)
		return
	}

	batch, warnings := s.load(sel)
	v.Warnings = append(v.Warnings, warnings...)
	if !batch.OK() {
		s.writeJSON(w, http.StatusOK, v)
		return
	}

	if sections&sectionSummary != 0 {
		v.Summary = summaryView(analytics.SummaryStats(batch.Table, []solar.Metric{sel.Metric}))
	}
	if sections&sectionRegions != 0 {
		v.TopRegions = regionsView(analytics.TopRegionsFor(batch.Table, sel.Metric))
	}
	if sections&sectionCorrelation != 0 {
		m := analytics.Correlate(batch.Table, solar.Metrics)
		if m.Empty() {
			v.Warnings = append(v.Warnings, WarnNoCorrelate)
		}
		v.Correlation = correlationView(m)
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, sectionAll)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, sectionSummary)
}

func (s *Server) handleTopRegions(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, sectionRegions)
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, sectionCorrelation)
}

func (s *Server) handleBoxPlot(w http.ResponseWriter, r *http.Request) {
	s.renderChart(w, r, chart.BoxPlot)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	s.renderChart(w, r, chart.TimeSeries)
}

type chartFunc func(t *table.Table, metric solar.Metric) (*plot.Plot, error)

// renderChart answers with a PNG, or with 404 and the warnings when nothing
// could be loaded.
func (s *Server) renderChart(w http.ResponseWriter, r *http.Request, draw chartFunc) {
	sel, err := parseSelection(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(sel.Countries) == 0 {
		s.writeJSON(w, http.StatusNotFound, map[string][]string{"warnings": {WarnNoSelection}})
		return
	}

	batch, warnings := s.load(sel)
	if !batch.OK() {
		s.writeJSON(w, http.StatusNotFound, map[string][]string{"warnings": warnings})
		return
	}

	p, err := draw(batch.Table, sel.Metric)
	if err != nil {
		s.log.Errorf("Render chart: %v", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	var buf bytes.Buffer
	if err := chart.WritePNG(&buf, p); err != nil {
		s.log.Errorf("Encode chart: %v", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
