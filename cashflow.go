package folio

import (
	"fmt"
	"sort"
)

// FlowSource tags how a cash flow entered the sequence. Synthetic open/close
// flows are first-class variants so windowed sequences carry their own
// provenance instead of relying on caller bookkeeping.
type FlowSource int

const (
	// FlowCash is a real flow from a cash-account posting.
	FlowCash FlowSource = iota
	// FlowOther is an implicit flow from contributing or withdrawing another
	// investment's asset, counted at its weight.
	FlowOther
	// FlowOpen is the synthetic buy-in at the start of a truncation window.
	FlowOpen
	// FlowClose is the synthetic sell-out at the end of a truncation window.
	FlowClose
)

func (s FlowSource) String() string {
	switch s {
	case FlowOther:
		return "other"
	case FlowOpen:
		return "open"
	case FlowClose:
		return "close"
	default:
		return "cash"
	}
}

// CashFlow is one external money movement of an investment. Negative amounts
// flow into the portfolio (a purchase), positive amounts flow out (a sale or
// a dividend paid to cash).
type CashFlow struct {
	Date       Date
	Amount     Money
	IsDividend bool
	Source     FlowSource
	Account    string
	Narration  string
}

// produceCashFlows extracts the external cash flows of one investment from
// its categorized transactions. When any posting of a transaction is tagged
// as dividend income, every cash leg of that transaction is a dividend flow.
func produceCashFlows(account string, txs []Transaction) []CashFlow {
	var flows []CashFlow
	for _, tx := range txs {
		hasDividend := false
		for _, p := range tx.Postings {
			if p.Category == CatDividend {
				hasDividend = true
				break
			}
		}
		for _, p := range tx.Postings {
			switch p.Category {
			case CatCash:
				flows = append(flows, CashFlow{
					Date:       tx.Date,
					Amount:     p.Weight(),
					IsDividend: hasDividend,
					Source:     FlowCash,
					Account:    account,
					Narration:  tx.Narration,
				})
			case CatOtherAsset:
				flows = append(flows, CashFlow{
					Date:      tx.Date,
					Amount:    p.Weight(),
					Source:    FlowOther,
					Account:   account,
					Narration: tx.Narration,
				})
			}
		}
	}
	return flows
}

// TruncateCashFlows restricts an investment's flows to [start, end) and
// synthesizes the boundary flows: an open flow at start worth the negated
// value of what was already held, and a close flow at end worth the value of
// what is still held. A zero start or end leaves that side unbounded.
//
// The close flow is valued one day before end so a same-day price point is
// not double counted.
func TruncateCashFlows(pricer *Pricer, ad *AccountData, start, end Date) ([]CashFlow, error) {
	var startFlows, endFlows []CashFlow

	if !start.IsZero() {
		balance := ad.BalanceBefore(start)
		if !balance.IsEmpty() {
			value, err := balance.MarketValue(pricer, ad.CashCurrency, start)
			if err != nil {
				return nil, fmt.Errorf("opening %s window at %s: %w", ad.Account, start, err)
			}
			if !value.IsZero() {
				startFlows = append(startFlows, CashFlow{
					Date: start, Amount: value.Neg(), Source: FlowOpen, Account: ad.Account,
				})
			}
		}
	}

	if !end.IsZero() {
		balance := ad.BalanceBefore(end)
		if !balance.IsEmpty() {
			value, err := balance.MarketValue(pricer, ad.CashCurrency, end.Add(-1))
			if err != nil {
				return nil, fmt.Errorf("closing %s window at %s: %w", ad.Account, end, err)
			}
			if !value.IsZero() {
				endFlows = append(endFlows, CashFlow{
					Date: end, Amount: value, Source: FlowClose, Account: ad.Account,
				})
			}
		}
	}

	flows := startFlows
	for _, f := range ad.CashFlows {
		if !start.IsZero() && f.Date.Before(start) {
			continue
		}
		if !end.IsZero() && !f.Date.Before(end) {
			break
		}
		flows = append(flows, f)
	}
	flows = append(flows, endFlows...)

	for i := 1; i < len(flows); i++ {
		if flows[i].Date.Before(flows[i-1].Date) {
			return nil, fmt.Errorf("cash flows of %s are not sorted by date", ad.Account)
		}
	}
	return flows, nil
}

// TruncateAndMergeCashFlows truncates each investment's flows to [start, end)
// and merges them into one date-ordered sequence.
func TruncateAndMergeCashFlows(pricer *Pricer, ads []*AccountData, start, end Date) ([]CashFlow, error) {
	var flows []CashFlow
	for _, ad := range ads {
		truncated, err := TruncateCashFlows(pricer, ad, start, end)
		if err != nil {
			return nil, err
		}
		flows = append(flows, truncated...)
	}
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Date.Before(flows[j].Date) })
	return flows, nil
}

// MergeCashFlows concatenates the untruncated flows of several investments
// into one date-ordered sequence.
func MergeCashFlows(ads []*AccountData) []CashFlow {
	var flows []CashFlow
	for _, ad := range ads {
		flows = append(flows, ad.CashFlows...)
	}
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Date.Before(flows[j].Date) })
	return flows
}

// ConvertCashFlows converts every flow amount into the target currency at
// the flow's own date.
func ConvertCashFlows(pricer *Pricer, flows []CashFlow, target string) ([]CashFlow, error) {
	converted := make([]CashFlow, len(flows))
	for i, f := range flows {
		amount, err := pricer.ConvertAmount(f.Amount, target, f.Date)
		if err != nil {
			return nil, err
		}
		converted[i] = f
		converted[i].Amount = amount
	}
	return converted, nil
}
