package folio

import (
	"fmt"
)

// SeriesPoint is one dated value of a metric series.
type SeriesPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// Series is a date-ordered metric series.
type Series []SeriesPoint

// First returns the first point of the series.
func (s Series) First() (SeriesPoint, bool) {
	if len(s) == 0 {
		return SeriesPoint{}, false
	}
	return s[0], true
}

// TruncateFrom drops points before the given date. The date must be present
// in the series.
func (s Series) TruncateFrom(on Date) (Series, error) {
	for i, p := range s {
		if p.Date == on {
			return s[i:], nil
		}
	}
	return nil, fmt.Errorf("date %s not found in series", on)
}

// Metric is one way of measuring portfolio performance over a window.
//
// Not every metric supports every form: simple returns have no meaningful
// single value, solvers like IRR have no meaningful series. Unsupported
// forms return an error instead of a number that would mislead.
type Metric interface {
	// Single reduces the window [start, end] to one number.
	Single(fp *FilteredPortfolio, start, end Date) (float64, error)
	// Series evaluates the metric at every price or volume change in the
	// window.
	Series(fp *FilteredPortfolio, start, end Date) (Series, error)
	// Rebase shifts a series so it starts at zero at the given base value,
	// using the metric's own compounding rule.
	Rebase(base float64, s Series) Series
}

var metrics = map[string]Metric{
	"returns":    SimpleReturns{},
	"irr":        IRR{},
	"mdm":        ModifiedDietz{},
	"twr":        TWR{},
	"pnl":        TotalPnL{},
	"volatility": Volatility{},
	"mdd":        MDD{},
}

// GetMetric resolves a metric by its registry name.
func GetMetric(name string) (Metric, error) {
	m, ok := metrics[name]
	if !ok {
		return nil, fmt.Errorf("invalid metric %q", name)
	}
	return m, nil
}

func errNoSingle(name string) error {
	return fmt.Errorf("metric %s does not provide a single value", name)
}

func errNoSeries(name string) error {
	return fmt.Errorf("metric %s does not provide a series", name)
}

// IntervalValue is the metric value of one labeled interval.
type IntervalValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// MetricIntervals evaluates the metric's single value on each interval.
func MetricIntervals(m Metric, fp *FilteredPortfolio, intervals []Interval) ([]IntervalValue, error) {
	values := make([]IntervalValue, 0, len(intervals))
	for _, iv := range intervals {
		v, err := m.Single(fp, iv.Start, iv.End)
		if err != nil {
			return nil, err
		}
		values = append(values, IntervalValue{Label: iv.Label, Value: v})
	}
	return values, nil
}

// RollingWindow evaluates the metric's single value over a sliding window of
// windowDays ending at up to maxPoints dates spread across [start, end]. The
// first window is pushed forward so it never starts before the selection's
// first cash flow.
func RollingWindow(m Metric, fp *FilteredPortfolio, start, end Date, windowDays, maxPoints int) (Series, error) {
	if flows := fp.CashFlows(); len(flows) > 0 && start.Add(-windowDays).Before(flows[0].Date) {
		start = flows[0].Date.Add(windowDays)
	}
	days := end.DaysSince(start)
	step := days / maxPoints
	if step < 1 {
		step = 1
	}
	var series Series
	for n := 0; n < days; n += step {
		date := start.Add(n)
		v, err := m.Single(fp, date.Add(-windowDays), date)
		if err != nil {
			return nil, err
		}
		series = append(series, SeriesPoint{Date: date, Value: v})
	}
	return series, nil
}
