package folio

// TotalPnL measures the absolute gain of the window in the target currency:
// market value minus invested capital, compared before and after.
type TotalPnL struct{}

// Single is the difference between the gains before and after the window.
// The opening state is taken one day before start so a window covering a
// single price point still reports that point's gain.
func (TotalPnL) Single(fp *FilteredPortfolio, start, end Date) (float64, error) {
	before := start.Add(-1)
	startMarket, err := fp.MarketAt(before)
	if err != nil {
		return 0, err
	}
	startCash, err := fp.CashAt(before)
	if err != nil {
		return 0, err
	}
	endMarket, err := fp.MarketAt(end)
	if err != nil {
		return 0, err
	}
	endCash, err := fp.CashAt(end)
	if err != nil {
		return 0, err
	}
	startGain := startMarket.Amount().Sub(startCash)
	endGain := endMarket.Amount().Sub(endCash)
	return endGain.Sub(startGain).InexactFloat64(), nil
}

// Series compares market value with invested capital at every price or
// volume change, unrebased.
func (TotalPnL) Series(fp *FilteredPortfolio, start, end Date) (Series, error) {
	values, err := PortfolioValues(fp, start, end)
	if err != nil {
		return nil, err
	}
	series := make(Series, 0, len(values))
	for _, v := range values {
		series = append(series, SeriesPoint{Date: v.Date, Value: v.Market.Sub(v.Cash).InexactFloat64()})
	}
	return series, nil
}

func (TotalPnL) Rebase(base float64, s Series) Series {
	rebased := make(Series, len(s))
	for i, p := range s {
		rebased[i] = SeriesPoint{Date: p.Date, Value: p.Value - base}
	}
	return rebased
}
