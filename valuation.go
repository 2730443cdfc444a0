package folio

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PortfolioValue is the portfolio state at one event date: market value of
// the held inventory, its cost value, and the cumulative invested cash (the
// negated sum of all external flows so far). All three in the target
// currency.
type PortfolioValue struct {
	Date   Date            `json:"date"`
	Market decimal.Decimal `json:"market"`
	Cost   decimal.Decimal `json:"cost"`
	Cash   decimal.Decimal `json:"cash"`
}

type valuationEvent struct {
	date Date
	tx   *Transaction
}

// PortfolioValues reconstructs the portfolio state at every price or volume
// change in [start, end]. The walk replays all events from the beginning of
// history so the inventory and cash totals are correct at the window start;
// events at or before start collapse onto the start date itself.
func PortfolioValues(fp *FilteredPortfolio, start, end Date) ([]PortfolioValue, error) {
	var transactions []*Transaction
	for _, ad := range fp.Accounts {
		for i := range ad.Transactions {
			if ad.Transactions[i].Date.After(end) {
				break
			}
			transactions = append(transactions, &ad.Transactions[i])
		}
	}

	// Price changes of every (held, cost) pair matter, and of (cost, target)
	// when reporting in another currency.
	pairs := make(map[currencyPair]bool)
	for _, tx := range transactions {
		for _, p := range tx.Postings {
			if p.Category != CatAsset || p.Cost == nil {
				continue
			}
			costCurrency := p.Cost.PerUnit.Currency()
			pairs[currencyPair{p.Currency, costCurrency}] = true
			if costCurrency != fp.Currency {
				pairs[currencyPair{costCurrency, fp.Currency}] = true
			}
		}
	}

	var events []valuationEvent
	for pair := range pairs {
		for _, point := range fp.pricer.Prices(pair.base, pair.quote) {
			if !point.Date.After(end) {
				events = append(events, valuationEvent{date: point.Date})
			}
		}
	}
	for _, tx := range transactions {
		events = append(events, valuationEvent{date: tx.Date, tx: tx})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].date.Before(events[j].date) })

	// Price points before the first transaction carry no portfolio state.
	for i, ev := range events {
		if ev.tx != nil {
			events = events[i:]
			break
		}
	}

	// First reported date: the event at or just before start, clamped to
	// start while walking.
	var firstDate Date
	found := false
	for i, ev := range events {
		if i+1 < len(events) && !events[i+1].date.After(start) {
			continue
		}
		firstDate = ev.date
		found = true
		break
	}
	if !found {
		return nil, nil
	}

	var values []PortfolioValue
	balance := NewInventory()
	cash := decimal.Zero
	for i := 0; i < len(events); {
		date := events[i].date
		for ; i < len(events) && events[i].date == date; i++ {
			tx := events[i].tx
			if tx == nil {
				continue
			}
			for _, p := range tx.Postings {
				if p.Category == CatAsset {
					if err := balance.Add(p); err != nil {
						return nil, err
					}
				}
			}
			for _, flow := range produceCashFlows("", []Transaction{*tx}) {
				converted, err := fp.pricer.ConvertAmount(flow.Amount, fp.Currency, date)
				if err != nil {
					return nil, err
				}
				cash = cash.Add(converted.Amount())
			}
		}

		if date.Before(firstDate) {
			continue
		}
		clamp := maxDate(date, start)
		market, err := balance.MarketValue(fp.pricer, fp.Currency, clamp)
		if err != nil {
			return nil, err
		}
		cost, err := balance.CostValue(fp.pricer, fp.Currency, clamp)
		if err != nil {
			return nil, err
		}
		values = append(values, PortfolioValue{
			Date:   clamp,
			Market: market.Amount(),
			Cost:   cost.Amount(),
			Cash:   cash.Neg(),
		})
	}
	return values, nil
}

// CashAt returns the cumulative invested cash at a date: the negated sum of
// all external flows dated at or before it, converted at each flow's date.
func (fp *FilteredPortfolio) CashAt(on Date) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, flow := range fp.CashFlows() {
		if flow.Date.After(on) {
			break
		}
		converted, err := fp.pricer.ConvertAmount(flow.Amount, fp.Currency, flow.Date)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(converted.Amount())
	}
	return total.Neg(), nil
}

// MarketAt values the merged inventory of the selection at a date.
func (fp *FilteredPortfolio) MarketAt(on Date) (Money, error) {
	return fp.BalanceAt(on).MarketValue(fp.pricer, fp.Currency, on)
}

// MarketValues projects the valuation walk onto a chartable market-value
// series.
func MarketValues(fp *FilteredPortfolio, start, end Date) (Series, error) {
	values, err := PortfolioValues(fp, start, end)
	if err != nil {
		return nil, err
	}
	series := make(Series, 0, len(values))
	for _, v := range values {
		series = append(series, SeriesPoint{Date: v.Date, Value: v.Market.InexactFloat64()})
	}
	return series, nil
}

// CostValues returns the book value of the selection at each transaction
// date in the window. Cost changes only with volume, so price-only dates do
// not appear; transactions at or before start collapse onto the start date.
func CostValues(fp *FilteredPortfolio, start, end Date) (Series, error) {
	seen := make(map[Date]bool)
	var dates []Date
	for _, ad := range fp.Accounts {
		for _, tx := range ad.Transactions {
			if tx.Date.After(end) {
				break
			}
			if !seen[tx.Date] {
				seen[tx.Date] = true
				dates = append(dates, tx.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// only the last date at or before start survives as the anchor
	for len(dates) > 1 && !dates[1].After(start) {
		dates = dates[1:]
	}

	series := make(Series, 0, len(dates))
	for _, d := range dates {
		clamp := maxDate(d, start)
		cost, err := fp.BalanceAt(d).CostValue(fp.pricer, fp.Currency, clamp)
		if err != nil {
			return nil, err
		}
		series = append(series, SeriesPoint{Date: clamp, Value: cost.Amount().InexactFloat64()})
	}
	return series, nil
}

// Allocation is the market value held in one commodity at a date.
type Allocation struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Currency    string          `json:"currency"`
	MarketValue decimal.Decimal `json:"marketValue"`
}

// PortfolioAllocation breaks the selection's market value down by held
// commodity, largest first. Commodities with zero value are omitted.
func PortfolioAllocation(fp *FilteredPortfolio, end Date) ([]Allocation, error) {
	byCurrency := make(map[string][]*AccountData)
	var order []string
	for _, ad := range fp.Accounts {
		if _, ok := byCurrency[ad.Currency]; !ok {
			order = append(order, ad.Currency)
		}
		byCurrency[ad.Currency] = append(byCurrency[ad.Currency], ad)
	}

	names := make(map[string]string)
	for _, c := range fp.groups.Currencies {
		names[c.Currency] = c.Name
	}

	allocations := []Allocation{}
	for _, currency := range order {
		sub := &FilteredPortfolio{Portfolio: fp.Portfolio, Accounts: byCurrency[currency], Currency: fp.Currency}
		market, err := sub.MarketAt(end)
		if err != nil {
			return nil, err
		}
		if market.IsZero() {
			continue
		}
		allocations = append(allocations, Allocation{
			ID:          "c:" + currency,
			Name:        names[currency],
			Currency:    currency,
			MarketValue: market.Amount(),
		})
	}
	sort.SliceStable(allocations, func(i, j int) bool {
		return allocations[i].MarketValue.GreaterThan(allocations[j].MarketValue)
	})
	return allocations, nil
}
