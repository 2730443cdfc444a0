package folio

// ModifiedDietz weights each cash flow by the fraction of the window it was
// invested, approximating a money-weighted return without solving for a
// rate.
type ModifiedDietz struct{}

func (ModifiedDietz) Single(fp *FilteredPortfolio, start, end Date) (float64, error) {
	// The underlying convention treats the end date as exclusive.
	exclusiveEnd := end.Add(1)
	flows, err := fp.TruncatedCashFlows(start, exclusiveEnd)
	if err != nil {
		return 0, err
	}
	flows, err = ConvertCashFlows(fp.pricer, flows, fp.Currency)
	if err != nil {
		return 0, err
	}
	return computeDietz(flows, exclusiveEnd), nil
}

func (ModifiedDietz) Series(fp *FilteredPortfolio, start, end Date) (Series, error) {
	return nil, errNoSeries("mdm")
}

func (ModifiedDietz) Rebase(base float64, s Series) Series {
	rebased := make(Series, len(s))
	for i, p := range s {
		rebased[i] = SeriesPoint{Date: p.Date, Value: p.Value - base}
	}
	return rebased
}

// computeDietz is gain over time-weighted average invested capital. With
// synthetic open/close flows in the sequence, the gain reduces to the plain
// sum of all flow amounts.
func computeDietz(flows []CashFlow, end Date) float64 {
	if len(flows) == 0 {
		return 0.0
	}
	start := flows[0].Date
	total := end.DaysSince(start)
	if total <= 0 {
		return 0.0
	}
	gain := 0.0
	avgCapital := 0.0
	for _, f := range flows {
		amount := f.Amount.Float64()
		weight := float64(end.DaysSince(f.Date)) / float64(total)
		gain += amount
		avgCapital -= amount * weight
	}
	if avgCapital == 0.0 {
		return 0.0
	}
	return gain / avgCapital
}
