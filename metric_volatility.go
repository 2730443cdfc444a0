package folio

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Volatility is the annualized standard deviation of TWR subperiod returns.
// The annualization factor scales by the mean subperiod length, so irregular
// event spacing does not distort the result.
type Volatility struct{}

func (Volatility) Single(fp *FilteredPortfolio, start, end Date) (float64, error) {
	periods, err := subperiodReturns(fp, start, end)
	if err != nil {
		return 0, err
	}
	var returns, days []float64
	for i := 0; i+1 < len(periods); i++ {
		prev, next := periods[i], periods[i+1]
		days = append(days, float64(next.date.DaysSince(prev.date)))
		returns = append(returns, next.factor-1.0)
	}
	if len(returns) < 2 {
		return 0.0, nil
	}
	volatility := stat.StdDev(returns, nil)
	periodsPerYear := 365.0 / stat.Mean(days, nil)
	return volatility * math.Sqrt(periodsPerYear), nil
}

func (Volatility) Series(fp *FilteredPortfolio, start, end Date) (Series, error) {
	return nil, errNoSeries("volatility")
}

func (Volatility) Rebase(base float64, s Series) Series {
	rebased := make(Series, len(s))
	for i, p := range s {
		rebased[i] = SeriesPoint{Date: p.Date, Value: p.Value - base}
	}
	return rebased
}
