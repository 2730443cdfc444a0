package folio

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// ConversionError reports that no usable price path exists between two
// currencies at a date. It is never silently recovered: a missing price is a
// data problem the user must fix in the ledger.
type ConversionError struct {
	Source string
	Target string
	Date   Date
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("could not convert %s to %s on %s: add a price directive %q to the ledger",
		e.Source, e.Target, e.Date, fmt.Sprintf("%s price %s <rate> %s", e.Date, e.Source, e.Target))
}

// PricePoint is one known rate of a currency pair on a date.
type PricePoint struct {
	Date Date
	Rate decimal.Decimal
}

type currencyPair struct {
	base  string // currency being priced (CORP in CORP->USD)
	quote string // currency the price is expressed in
}

// PriceMap holds all known price series, keyed by currency pair, each series
// sorted ascending by date. Prices come from explicit price points and from
// the implicit per-unit costs of asset postings.
type PriceMap struct {
	series map[currencyPair][]PricePoint
}

// NewPriceMap creates an empty price map.
func NewPriceMap() *PriceMap {
	return &PriceMap{series: make(map[currencyPair][]PricePoint)}
}

// Add records a rate for base->quote on a date. A same-day entry is replaced:
// the last write wins, giving explicit price points priority over implicit
// ones when loaded afterwards.
func (pm *PriceMap) Add(base, quote string, on Date, rate decimal.Decimal) {
	if base == quote {
		return
	}
	pair := currencyPair{base, quote}
	points := pm.series[pair]
	i := sort.Search(len(points), func(i int) bool { return !points[i].Date.Before(on) })
	if i < len(points) && points[i].Date == on {
		points[i].Rate = rate
		return
	}
	points = append(points, PricePoint{})
	copy(points[i+1:], points[i:])
	points[i] = PricePoint{Date: on, Rate: rate}
	pm.series[pair] = points
}

// Prices returns the known price series for base->quote, falling back to the
// inverted series when only the reverse pair is quoted.
func (pm *PriceMap) Prices(base, quote string) []PricePoint {
	if points, ok := pm.series[currencyPair{base, quote}]; ok {
		return points
	}
	inverse := pm.series[currencyPair{quote, base}]
	if len(inverse) == 0 {
		return nil
	}
	one := decimal.NewFromInt(1)
	points := make([]PricePoint, len(inverse))
	for i, p := range inverse {
		points[i] = PricePoint{Date: p.Date, Rate: one.Div(p.Rate)}
	}
	return points
}

// lookup finds the latest rate at or before the date, direct or inverted.
func (pm *PriceMap) lookup(base, quote string, on Date) (rate decimal.Decimal, actual Date, ok bool) {
	if points := pm.series[currencyPair{base, quote}]; len(points) > 0 {
		if i := latestAtOrBefore(points, on); i >= 0 {
			return points[i].Rate, points[i].Date, true
		}
	}
	if points := pm.series[currencyPair{quote, base}]; len(points) > 0 {
		if i := latestAtOrBefore(points, on); i >= 0 {
			return decimal.NewFromInt(1).Div(points[i].Rate), points[i].Date, true
		}
	}
	return decimal.Decimal{}, Date{}, false
}

func latestAtOrBefore(points []PricePoint, on Date) int {
	return sort.Search(len(points), func(i int) bool { return points[i].Date.After(on) }) - 1
}

// PriceLookup is one answer of the price map to a lookup request: the quote
// currency the rate was found in, the date of the price actually used, and
// the rate itself.
type PriceLookup struct {
	Quote      string
	ActualDate Date
	Rate       decimal.Decimal
}

type priceRequest struct {
	Currency string
	Date     Date
}

// PriceRecorder is an opt-in side channel collecting every price lookup the
// engine performed. It backs the missing/stale price diagnostics and nothing
// else: correctness of returned numbers never depends on it.
//
// The recorder is the only shared mutable state in the engine; the HTTP
// server reuses one across requests, hence the lock.
type PriceRecorder struct {
	mu      sync.Mutex
	lookups map[priceRequest]map[PriceLookup]struct{}
}

// NewPriceRecorder creates an empty recorder.
func NewPriceRecorder() *PriceRecorder {
	return &PriceRecorder{lookups: make(map[priceRequest]map[PriceLookup]struct{})}
}

func (r *PriceRecorder) record(currency string, requested Date, found PriceLookup) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := priceRequest{currency, requested}
	set, ok := r.lookups[key]
	if !ok {
		set = make(map[PriceLookup]struct{})
		r.lookups[key] = set
	}
	set[found] = struct{}{}
}

// Len returns the number of distinct (currency, date) requests recorded.
func (r *PriceRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lookups)
}

// staleAfterDays is the lag between a requested date and the price actually
// used beyond which the price is reported as missing.
const staleAfterDays = 5

// MissingPrice is one stale price lookup: on RequestedDate the engine had to
// fall back to a price from ActualDate.
type MissingPrice struct {
	Currency      string `json:"currency"`
	Quote         string `json:"quote"`
	RequestedDate Date   `json:"requestedDate"`
	ActualDate    Date   `json:"actualDate"`
	Command       string `json:"command"`
}

// MissingPrices reports lookups where the price used lags the requested date
// by at least staleAfterDays, skipping requests in the future of today.
func (r *PriceRecorder) MissingPrices(today Date) []MissingPrice {
	r.mu.Lock()
	defer r.mu.Unlock()

	var missing []MissingPrice
	for req, answers := range r.lookups {
		if req.Date.After(today) {
			continue
		}
		for ans := range answers {
			if req.Date.DaysSince(ans.ActualDate) < staleAfterDays {
				continue
			}
			missing = append(missing, MissingPrice{
				Currency:      req.Currency,
				Quote:         ans.Quote,
				RequestedDate: req.Date,
				ActualDate:    ans.ActualDate,
				Command:       fmt.Sprintf("folio fetch -base %s -quote %s -d %s", req.Currency, ans.Quote, req.Date),
			})
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Currency != missing[j].Currency {
			return missing[i].Currency < missing[j].Currency
		}
		return missing[i].RequestedDate.Before(missing[j].RequestedDate)
	})
	return missing
}

// Pricer converts amounts and positions between currencies at a date.
//
// Every lookup is logged into the attached recorder (when present) so stale
// prices can be diagnosed later. Conversion failures surface as
// *ConversionError; the pricer never falls back to the source currency.
type Pricer struct {
	prices   *PriceMap
	recorder *PriceRecorder
}

// NewPricer creates a pricer over a price map. The recorder may be nil to
// disable the diagnostic side channel.
func NewPricer(prices *PriceMap, recorder *PriceRecorder) *Pricer {
	return &Pricer{prices: prices, recorder: recorder}
}

// Prices exposes the known price series for a pair (used by compare charts).
func (p *Pricer) Prices(base, quote string) []PricePoint { return p.prices.Prices(base, quote) }

// rate looks up base->quote at the date, records the lookup, and fails with a
// ConversionError when no price path exists.
func (p *Pricer) rate(base, quote string, on Date) (decimal.Decimal, error) {
	rate, actual, ok := p.prices.lookup(base, quote, on)
	if !ok {
		return decimal.Decimal{}, &ConversionError{Source: base, Target: quote, Date: on}
	}
	p.recorder.record(base, on, PriceLookup{Quote: quote, ActualDate: actual, Rate: rate})
	return rate, nil
}

// ConvertAmount converts a money amount into the target currency at a date.
func (p *Pricer) ConvertAmount(amount Money, target string, on Date) (Money, error) {
	if amount.Currency() == target {
		return amount, nil
	}
	rate, err := p.rate(amount.Currency(), target, on)
	if err != nil {
		return Money{}, err
	}
	return amount.MulRate(rate, target), nil
}

// Value prices a quantity of a commodity in its cost currency at a date.
func (p *Pricer) Value(currency string, units Quantity, costCurrency string, on Date) (Money, error) {
	if currency == costCurrency {
		return M(units.Decimal(), costCurrency), nil
	}
	rate, err := p.rate(currency, costCurrency, on)
	if err != nil {
		return Money{}, err
	}
	return M(units.Decimal().Mul(rate), costCurrency), nil
}

// ConvertPosition values a position at market in its cost currency, then
// converts the result into the target currency. The two-step path (CORP ->
// USD -> EUR) is deliberate: commodities are only ever quoted in their cost
// currency.
func (p *Pricer) ConvertPosition(currency string, units Quantity, costCurrency, target string, on Date) (Money, error) {
	value, err := p.Value(currency, units, costCurrency, on)
	if err != nil {
		return Money{}, err
	}
	return p.ConvertAmount(value, target, on)
}
