package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anvers/folio"
)

// maxRollingPoints caps the resolution of rolling-window series.
const maxRollingPoints = 200

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(response{Success: false, Error: err.Error()})
}

// metricNames maps the API method names onto the metric registry.
var metricNames = map[string]string{
	"simple":   "returns",
	"irr":      "irr",
	"mdm":      "mdm",
	"twr":      "twr",
	"monetary": "pnl",
	"mdd":      "mdd",
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// filtered builds the request's portfolio view from the investments and
// currency query parameters.
func (s *Server) filtered(r *http.Request) *folio.FilteredPortfolio {
	q := r.URL.Query()
	return s.Portfolio().Filtered(splitIDs(q.Get("investments")), q.Get("currency"))
}

// dateRange resolves the start/end query parameters. Start defaults to the
// selection's first cash flow, end to today.
func dateRange(r *http.Request, fp *folio.FilteredPortfolio) (start, end folio.Date, err error) {
	q := r.URL.Query()
	if raw := q.Get("start"); raw != "" {
		if start, err = folio.ParseDate(raw); err != nil {
			return start, end, err
		}
	} else if first, _, ok := fp.CashFlowTimeRange(false); ok {
		start = first
	} else {
		start = folio.Today()
	}
	if raw := q.Get("end"); raw != "" {
		if end, err = folio.ParseDate(raw); err != nil {
			return start, end, err
		}
	} else {
		end = folio.Today()
	}
	return start, end, nil
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	p := s.Portfolio()
	writeData(w, map[string]any{
		"investments":         p.Groups(),
		"operatingCurrencies": p.Config().OperatingCurrency,
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	fp := s.filtered(r)
	start, end, err := dateRange(r, fp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	valueChart, err := folio.PortfolioValues(fp, start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	performanceChart, err := folio.TotalPnL{}.Series(fp, start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	costChart, err := folio.CostValues(fp, start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	allocation, err := folio.PortfolioAllocation(fp, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, map[string]any{
		"valueChart":       valueChart,
		"costChart":        costChart,
		"performanceChart": performanceChart,
		"allocation":       allocation,
	})
}

func (s *Server) handleReturns(w http.ResponseWriter, r *http.Request) {
	fp := s.filtered(r)
	q := r.URL.Query()

	name, ok := metricNames[q.Get("method")]
	if !ok {
		s.writeError(w, r, fmt.Errorf("invalid method %q", q.Get("method")))
		return
	}
	metric, err := folio.GetMetric(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	_, end, err := dateRange(r, fp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Intervals never reach back before the first cash flow; earlier windows
	// would chart a flat zero for pre-investment time.
	first, _, ok := fp.CashFlowTimeRange(false)
	if !ok {
		writeData(w, []folio.IntervalValue{})
		return
	}

	var intervals []folio.Interval
	switch q.Get("interval") {
	case "heatmap":
		intervals = folio.IntervalsHeatmap(first, end)
	case "yearly":
		intervals = folio.IntervalsYearly(first, end)
	case "periods":
		intervals = folio.IntervalsPeriods(first, end)
	case "rolling":
		window := 365
		if raw := q.Get("window"); raw != "" {
			if window, err = strconv.Atoi(raw); err != nil || window < 1 {
				s.writeError(w, r, fmt.Errorf("invalid window %q", raw))
				return
			}
		}
		series, err := folio.RollingWindow(metric, fp, first, end, window, maxRollingPoints)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeData(w, series)
		return
	default:
		s.writeError(w, r, fmt.Errorf("invalid interval %q", q.Get("interval")))
		return
	}

	values, err := folio.MetricIntervals(metric, fp, intervals)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, values)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	fp := s.filtered(r)
	q := r.URL.Query()

	name, ok := metricNames[q.Get("method")]
	if !ok {
		s.writeError(w, r, fmt.Errorf("invalid method %q", q.Get("method")))
		return
	}
	start, end, err := dateRange(r, fp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	series, err := folio.CompareChart(fp, start, end, name, splitIDs(q.Get("compareWith")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, series)
}

func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	fp := s.filtered(r)
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "monthly"
	}
	start, end, err := dateRange(r, fp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	chart, err := folio.DividendsChart(fp, start, end, interval)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, map[string]any{"chart": chart})
}

func (s *Server) handleCashFlows(w http.ResponseWriter, r *http.Request) {
	fp := s.filtered(r)
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = "monthly"
	}
	start, end, err := dateRange(r, fp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	chart, err := folio.CashFlowsChart(fp, start, end, interval)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, map[string]any{
		"chart": chart,
		"table": folio.CashFlowsTable(fp, start, end),
	})
}

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	p := s.Portfolio()
	q := r.URL.Query()

	fp := s.filtered(r)
	start, end, err := dateRange(r, fp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var rows []folio.InvestmentStats
	switch q.Get("group_by") {
	case "", "group":
		rows, err = folio.InvestmentsByGroup(p, start, end)
	case "currency":
		rows, err = folio.InvestmentsByCurrency(p, fp.Currency, start, end)
	default:
		s.writeError(w, r, fmt.Errorf("invalid group_by %q", q.Get("group_by")))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, rows)
}

func (s *Server) handleMissingPrices(w http.ResponseWriter, r *http.Request) {
	missing := s.Portfolio().Recorder().MissingPrices(folio.Today())
	if missing == nil {
		missing = []folio.MissingPrice{}
	}
	writeData(w, missing)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, map[string]string{"status": "reloaded"})
}
