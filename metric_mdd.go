package folio

import (
	"github.com/rs/zerolog/log"
)

// MDD is the maximum drawdown: the deepest decline from a historical peak.
// It runs on the TWR wealth index so cash flows do not register as gains or
// losses.
type MDD struct{}

func (MDD) Single(fp *FilteredPortfolio, start, end Date) (float64, error) {
	drawdowns, err := (MDD{}).Series(fp, start, end)
	if err != nil {
		return 0, err
	}
	minimum := 0.0
	for _, p := range drawdowns {
		if p.Value < minimum {
			minimum = p.Value
		}
	}
	return minimum, nil
}

func (MDD) Series(fp *FilteredPortfolio, start, end Date) (Series, error) {
	twrSeries, err := TWR{}.Series(fp, start, end)
	if err != nil {
		return nil, err
	}
	drawdowns := make(Series, 0, len(twrSeries))
	peak := 1.0
	for _, p := range twrSeries {
		wealth := 1.0 + p.Value
		if wealth > peak {
			peak = wealth
		}
		drawdown := (wealth - peak) / peak
		log.Debug().
			Stringer("date", p.Date).
			Float64("wealthIndex", wealth).
			Float64("peak", peak).
			Float64("drawdown", drawdown).
			Msg("mdd")
		drawdowns = append(drawdowns, SeriesPoint{Date: p.Date, Value: drawdown})
	}
	return drawdowns, nil
}

func (MDD) Rebase(base float64, s Series) Series {
	rebased := make(Series, len(s))
	for i, p := range s {
		rebased[i] = SeriesPoint{Date: p.Date, Value: p.Value - base}
	}
	return rebased
}
