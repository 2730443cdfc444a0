package folio

import (
	"github.com/shopspring/decimal"
)

// SimpleReturns compares market value against cost value at every price or
// volume change.
//
// There is no single value: cost value says nothing useful about a window in
// isolation (selling at a loss drives it to zero while stock is still held),
// so only the series form is provided.
type SimpleReturns struct{}

func (SimpleReturns) Single(fp *FilteredPortfolio, start, end Date) (float64, error) {
	return 0, errNoSingle("returns")
}

func (SimpleReturns) Series(fp *FilteredPortfolio, start, end Date) (Series, error) {
	values, err := PortfolioValues(fp, start, end)
	if err != nil {
		return nil, err
	}
	series := make(Series, 0, len(values))
	for _, v := range values {
		series = append(series, SeriesPoint{Date: v.Date, Value: computeReturns(v.Cost, v.Market)})
	}
	return series, nil
}

// Rebase offsets the whole series: simple returns do not compound.
func (SimpleReturns) Rebase(base float64, s Series) Series {
	rebased := make(Series, len(s))
	for i, p := range s {
		rebased[i] = SeriesPoint{Date: p.Date, Value: p.Value - base}
	}
	return rebased
}

func computeReturns(initial, final decimal.Decimal) float64 {
	if initial.IsZero() {
		return 0.0
	}
	return final.Sub(initial).Div(initial).InexactFloat64()
}
