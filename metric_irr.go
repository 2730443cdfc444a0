package folio

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

// IRR is the internal rate of return: the constant annual rate at which the
// net present value of all cash flows, including the synthetic open and
// close flows of the window, is zero.
type IRR struct{}

func (IRR) Single(fp *FilteredPortfolio, start, end Date) (float64, error) {
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
	return computeIRR(flows, exclusiveEnd), nil
}

func (IRR) Series(fp *FilteredPortfolio, start, end Date) (Series, error) {
	return nil, errNoSeries("irr")
}

func (IRR) Rebase(base float64, s Series) Series {
	rebased := make(Series, len(s))
	for i, p := range s {
		rebased[i] = SeriesPoint{Date: p.Date, Value: p.Value - base}
	}
	return rebased
}

// computeIRR solves sum(-amount * (1+x)^years) = 0 where years counts from
// each flow to the end of the window. Newton iteration with a bisection
// fallback when the derivative misbehaves near x = -1.
func computeIRR(flows []CashFlow, end Date) float64 {
	if len(flows) == 0 {
		return 0.0
	}

	type term struct {
		amount float64
		years  float64
	}
	terms := make([]term, len(flows))
	for i, f := range flows {
		terms[i] = term{
			amount: f.Amount.Float64(),
			years:  float64(end.DaysSince(f.Date)) / 365.0,
		}
	}

	if e := log.Debug(); e.Enabled() {
		var b strings.Builder
		for i, t := range terms {
			if i > 0 {
				b.WriteString(" + ")
			}
			fmt.Fprintf(&b, "%.2f*(1+x)^%.3f", -t.amount, t.years)
		}
		b.WriteString(" = 0")
		e.Str("equation", b.String()).Msg("solving irr")
	}

	f := func(x float64) float64 {
		npv := 0.0
		for _, t := range terms {
			npv += -t.amount * math.Pow(1.0+x, t.years)
		}
		return npv
	}

	if x, ok := newton(f, 0.1); ok {
		return x
	}
	if x, ok := bisect(f); ok {
		return x
	}
	return 0.0
}

func newton(f func(float64) float64, x0 float64) (float64, bool) {
	const h = 1e-7
	x := x0
	for i := 0; i < 100; i++ {
		fx := f(x)
		if math.Abs(fx) < 1e-9 {
			return x, true
		}
		dfx := (f(x+h) - f(x-h)) / (2 * h)
		if dfx == 0 || math.IsNaN(dfx) || math.IsInf(dfx, 0) {
			return 0, false
		}
		next := x - fx/dfx
		if next <= -1.0 {
			// rates below total loss are meaningless, let bisection handle it
			return 0, false
		}
		if math.Abs(next-x) < 1e-12 {
			return next, true
		}
		x = next
	}
	return 0, false
}

func bisect(f func(float64) float64) (float64, bool) {
	lo, hi := -0.999999, 10.0
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, true
	}
	if fhi == 0 {
		return hi, true
	}
	if flo*fhi > 0 {
		return 0, false
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fmid := f(mid)
		if math.Abs(fmid) < 1e-12 || (hi-lo)/2 < 1e-12 {
			return mid, true
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2, true
}
