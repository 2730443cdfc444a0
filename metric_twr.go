package folio

import (
	"github.com/rs/zerolog/log"
)

// TWR is the time-weighted rate of return. It eliminates the effect of cash
// flows by compounding the growth factors of the subperiods between flows,
// so a savings plan and a lump sum into the same stock measure the same.
type TWR struct{}

type subperiod struct {
	date   Date
	factor float64
}

// subperiodReturns yields the growth factor of each subperiod between
// consecutive portfolio events: how one unit of currency already invested
// grew, with the period's external flows backed out of the closing value.
func subperiodReturns(fp *FilteredPortfolio, start, end Date) ([]subperiod, error) {
	values, err := PortfolioValues(fp, start, end)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	periods := []subperiod{{date: values[0].Date, factor: 1.0}}
	for i := 0; i+1 < len(values); i++ {
		cur, next := values[i], values[i+1]
		cashflow := next.Cash.Sub(cur.Cash)
		begin := cur.Market
		closing := next.Market.Sub(cashflow)
		if begin.IsZero() {
			continue
		}
		factor := closing.InexactFloat64() / begin.InexactFloat64()
		log.Debug().
			Stringer("from", cur.Date).
			Stringer("to", next.Date).
			Float64("begin", begin.InexactFloat64()).
			Float64("end", closing.InexactFloat64()).
			Float64("returns", factor-1).
			Msg("twr subperiod")
		periods = append(periods, subperiod{date: next.Date, factor: factor})
	}
	return periods, nil
}

func (TWR) Single(fp *FilteredPortfolio, start, end Date) (float64, error) {
	periods, err := subperiodReturns(fp, start, end)
	if err != nil {
		return 0, err
	}
	twr := 1.0
	for _, p := range periods {
		twr *= p.factor
	}
	return twr - 1.0, nil
}

func (TWR) Series(fp *FilteredPortfolio, start, end Date) (Series, error) {
	periods, err := subperiodReturns(fp, start, end)
	if err != nil {
		return nil, err
	}
	twr := 1.0
	series := make(Series, 0, len(periods))
	for _, p := range periods {
		twr *= p.factor
		series = append(series, SeriesPoint{Date: p.date, Value: twr - 1.0})
	}
	return series, nil
}

// Rebase divides out the compounded growth up to the base point.
func (TWR) Rebase(base float64, s Series) Series {
	rebased := make(Series, len(s))
	for i, p := range s {
		rebased[i] = SeriesPoint{Date: p.Date, Value: (p.Value+1.0)/(base+1.0) - 1.0}
	}
	return rebased
}
