package folio

import (
	"errors"
	"sort"
)

// NamedSeries is one line of a comparison chart: a rebased metric series
// plus the daily net cash flows behind it (empty for price series).
type NamedSeries struct {
	Name      string `json:"name"`
	Data      Series `json:"data"`
	CashFlows Series `json:"cashFlows"`
}

// seriesCashFlows aggregates the selection's non-dividend flows per day in
// the target currency, for [start, end].
func seriesCashFlows(fp *FilteredPortfolio, start, end Date) (Series, error) {
	byDate := make(map[Date]float64)
	for _, flow := range fp.CashFlows() {
		if flow.Date.Before(start) || flow.Date.After(end) || flow.IsDividend {
			continue
		}
		converted, err := fp.pricer.ConvertAmount(flow.Amount, fp.Currency, flow.Date)
		if err != nil {
			return nil, err
		}
		byDate[flow.Date] += converted.Float64()
	}
	series := make(Series, 0, len(byDate))
	for date, amount := range byDate {
		series = append(series, SeriesPoint{Date: date, Value: amount})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}

// CompareChart lines up the selection's metric series against other groups,
// accounts or commodity prices. All series are cut to their first common
// date and rebased to zero there, each with the metric's own rule; price
// series rebase as price/first - 1.
func CompareChart(fp *FilteredPortfolio, start, end Date, metricName string, compareWith []string) ([]NamedSeries, error) {
	metric, err := GetMetric(metricName)
	if err != nil {
		return nil, err
	}

	base, err := metric.Series(fp, start, end)
	if err != nil {
		return nil, err
	}
	baseFlows, err := seriesCashFlows(fp, start, end)
	if err != nil {
		return nil, err
	}
	returnsSeries := []NamedSeries{{Name: "portfolio", Data: base, CashFlows: baseFlows}}

	selected := make(map[string]bool, len(compareWith))
	for _, id := range compareWith {
		selected[id] = true
	}

	for _, group := range fp.groups.Groups {
		if !selected[group.ID] {
			continue
		}
		sub := fp.Portfolio.Filtered([]string{group.ID}, fp.Currency)
		data, err := metric.Series(sub, start, end)
		if err != nil {
			return nil, err
		}
		flows, err := seriesCashFlows(sub, start, end)
		if err != nil {
			return nil, err
		}
		returnsSeries = append(returnsSeries, NamedSeries{Name: "(GRP) " + group.Name, Data: data, CashFlows: flows})
	}

	for _, account := range fp.groups.Accounts {
		if !selected[account.ID] {
			continue
		}
		sub := fp.Portfolio.Filtered([]string{account.ID}, fp.Currency)
		data, err := metric.Series(sub, start, end)
		if err != nil {
			return nil, err
		}
		flows, err := seriesCashFlows(sub, start, end)
		if err != nil {
			return nil, err
		}
		returnsSeries = append(returnsSeries, NamedSeries{Name: "(ACC) " + account.AssetAccount, Data: data, CashFlows: flows})
	}

	var priceSeries []NamedSeries
	for _, currency := range fp.groups.Currencies {
		if !selected[currency.ID] {
			continue
		}
		var data Series
		for _, point := range fp.pricer.Prices(currency.Currency, fp.Currency) {
			if point.Date.Before(start) || point.Date.After(end) {
				continue
			}
			data = append(data, SeriesPoint{Date: point.Date, Value: point.Rate.InexactFloat64()})
		}
		priceSeries = append(priceSeries, NamedSeries{
			Name: currency.Name + " (" + currency.Currency + ")",
			Data: data,
		})
	}

	all := make([]NamedSeries, 0, len(returnsSeries)+len(priceSeries))
	all = append(all, returnsSeries...)
	all = append(all, priceSeries...)
	commonDate, ok := firstCommonDate(all)
	if !ok {
		return nil, errors.New("no overlapping start date found for the selected series")
	}

	series := make([]NamedSeries, 0, len(returnsSeries)+len(priceSeries))
	for _, s := range returnsSeries {
		truncated, err := s.Data.TruncateFrom(commonDate)
		if err != nil {
			return nil, err
		}
		rebased := metric.Rebase(truncated[0].Value, truncated)
		series = append(series, NamedSeries{
			Name:      s.Name,
			Data:      rebased,
			CashFlows: dropBefore(s.CashFlows, commonDate),
		})
	}
	for _, s := range priceSeries {
		truncated, err := s.Data.TruncateFrom(commonDate)
		if err != nil {
			return nil, err
		}
		first := truncated[0].Value
		rebased := make(Series, len(truncated))
		for i, p := range truncated {
			rebased[i] = SeriesPoint{Date: p.Date, Value: p.Value/first - 1.0}
		}
		series = append(series, NamedSeries{Name: s.Name, Data: rebased})
	}
	return series, nil
}

// firstCommonDate finds the earliest date present in every series.
func firstCommonDate(series []NamedSeries) (Date, bool) {
	if len(series) == 0 || len(series[0].Data) == 0 {
		return Date{}, false
	}
	sets := make([]map[Date]bool, len(series))
	for i, s := range series {
		sets[i] = make(map[Date]bool, len(s.Data))
		for _, p := range s.Data {
			sets[i][p.Date] = true
		}
	}
	candidates := make([]Date, 0, len(sets[0]))
	for date := range sets[0] {
		candidates = append(candidates, date)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })
	for _, date := range candidates {
		shared := true
		for _, set := range sets[1:] {
			if !set[date] {
				shared = false
				break
			}
		}
		if shared {
			return date, true
		}
	}
	return Date{}, false
}

func dropBefore(s Series, on Date) Series {
	for i, p := range s {
		if !p.Date.Before(on) {
			return s[i:]
		}
	}
	return nil
}
