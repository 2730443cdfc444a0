package folio

import (
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// UnitsHeld is the total position in one commodity, cost attributes merged.
type UnitsHeld struct {
	Units    decimal.Decimal `json:"units"`
	Currency string          `json:"currency"`
}

// InvestmentStats is one row of the investments table: the position and its
// performance over the window, every money amount in the row's currency.
type InvestmentStats struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Currency      string          `json:"currency"`
	Units         []UnitsHeld     `json:"units"`
	CashIn        decimal.Decimal `json:"cashIn"`
	CashOut       decimal.Decimal `json:"cashOut"`
	CostValue     decimal.Decimal `json:"costValue"`
	MarketValue   decimal.Decimal `json:"marketValue"`
	TotalPnL      float64         `json:"totalPnl"`
	UnrealizedPnL float64         `json:"unrealizedPnl"`
	RealizedPnL   float64         `json:"realizedPnl"`
	IRR           float64         `json:"irr"`
	MDM           float64         `json:"mdm"`
	TWR           float64         `json:"twr"`
}

// portfolioCash sums the window's flows into money put in and money taken
// out, both positive numbers in the target currency.
func portfolioCash(fp *FilteredPortfolio, start, end Date) (cashIn, cashOut decimal.Decimal, err error) {
	cashIn, cashOut = decimal.Zero, decimal.Zero
	for _, flow := range fp.CashFlows() {
		if flow.Date.Before(start) || flow.Date.After(end) {
			continue
		}
		converted, err := fp.pricer.ConvertAmount(flow.Amount, fp.Currency, flow.Date)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		amount := converted.Amount()
		if amount.IsNegative() {
			cashIn = cashIn.Add(amount.Neg())
		} else {
			cashOut = cashOut.Add(amount)
		}
	}
	return cashIn, cashOut, nil
}

func groupStats(fp *FilteredPortfolio, start, end Date) (InvestmentStats, error) {
	var stats InvestmentStats

	cashIn, cashOut, err := portfolioCash(fp, start, end)
	if err != nil {
		return stats, err
	}

	balance := fp.BalanceAt(end)
	market, err := balance.MarketValue(fp.pricer, fp.Currency, end)
	if err != nil {
		return stats, err
	}
	cost, err := balance.CostValue(fp.pricer, fp.Currency, end)
	if err != nil {
		return stats, err
	}

	// Merge lots into plain units per commodity, after valuation: pricing
	// always goes through the cost currency, never commodity to target
	// directly.
	units := make(map[string]decimal.Decimal)
	var order []string
	for lot := range balance.Lots() {
		if _, ok := units[lot.Currency]; !ok {
			order = append(order, lot.Currency)
		}
		units[lot.Currency] = units[lot.Currency].Add(lot.Units.Decimal())
	}
	for _, currency := range order {
		stats.Units = append(stats.Units, UnitsHeld{Units: units[currency], Currency: currency})
	}

	total, err := TotalPnL{}.Single(fp, start, end)
	if err != nil {
		return stats, err
	}
	irr, err := IRR{}.Single(fp, start, end)
	if err != nil {
		return stats, err
	}
	mdm, err := ModifiedDietz{}.Single(fp, start, end)
	if err != nil {
		return stats, err
	}
	twr, err := TWR{}.Single(fp, start, end)
	if err != nil {
		return stats, err
	}

	unrealized := market.Amount().Sub(cost.Amount()).InexactFloat64()
	stats.CashIn = cashIn
	stats.CashOut = cashOut
	stats.CostValue = cost.Amount()
	stats.MarketValue = market.Amount()
	stats.TotalPnL = total
	stats.UnrealizedPnL = unrealized
	stats.RealizedPnL = total - unrealized
	stats.IRR = irr
	stats.MDM = mdm
	stats.TWR = twr
	return stats, nil
}

// InvestmentsByGroup computes the stats of every configured group, each in
// the group's own currency.
func InvestmentsByGroup(p *Portfolio, start, end Date) ([]InvestmentStats, error) {
	rows := []InvestmentStats{}
	for _, group := range p.groups.Groups {
		log.Debug().Str("group", group.Name).Msg("calculating stats")
		fp := p.Filtered([]string{group.ID}, "")
		stats, err := groupStats(fp, start, end)
		if err != nil {
			return nil, err
		}
		stats.ID = group.ID
		stats.Name = group.Name
		stats.Currency = fp.Currency
		rows = append(rows, stats)
	}
	return rows, nil
}

// InvestmentsByCurrency computes the stats of every held commodity in the
// given target currency.
func InvestmentsByCurrency(p *Portfolio, target string, start, end Date) ([]InvestmentStats, error) {
	rows := []InvestmentStats{}
	for _, currency := range p.groups.Currencies {
		log.Debug().Str("currency", currency.Currency).Msg("calculating stats")
		fp := p.Filtered([]string{currency.ID}, target)
		stats, err := groupStats(fp, start, end)
		if err != nil {
			return nil, err
		}
		stats.ID = currency.ID
		stats.Name = currency.Name
		stats.Currency = fp.Currency
		rows = append(rows, stats)
	}
	return rows, nil
}
