package folio

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is an explicit price directive: one unit of Base is worth Rate Quote
// on the given date.
type Price struct {
	Date  Date
	Base  string
	Rate  decimal.Decimal
	Quote string
}

// AccountData is everything the engine knows about one investment: the
// transactions that touch it, with postings categorized relative to it, and
// the external cash flows extracted from them.
type AccountData struct {
	Account      string // asset account
	Name         string // display name from the config
	Currency     string // commodity held
	CashCurrency string // currency the commodity is priced in
	Transactions []Transaction
	CashFlows    []CashFlow
}

// BalanceAt replays asset postings with transaction date at or before the
// given date and returns the resulting inventory.
func (ad *AccountData) BalanceAt(on Date) *Inventory {
	return ad.balance(func(d Date) bool { return d.After(on) })
}

// BalanceBefore is BalanceAt with a strict cutoff: postings dated exactly on
// the given date are excluded. This is the windowing convention of
// TruncateCashFlows.
func (ad *AccountData) BalanceBefore(on Date) *Inventory {
	return ad.balance(func(d Date) bool { return !d.Before(on) })
}

func (ad *AccountData) balance(stop func(Date) bool) *Inventory {
	inv := NewInventory()
	for _, tx := range ad.Transactions {
		if stop(tx.Date) {
			break
		}
		for _, p := range tx.Postings {
			if p.Category != CatAsset {
				continue
			}
			// Replaying history that already happened: a reduction error
			// here means the ledger itself is inconsistent, which loading
			// should have caught.
			_ = inv.Add(p)
		}
	}
	return inv
}

// InvestmentAccount, InvestmentGroup and InvestmentCurrency are the three
// kinds of filterable ids exposed by the API: a:<account>, g:<group name> and
// c:<commodity currency>.
type InvestmentAccount struct {
	ID           string `json:"id"`
	Currency     string `json:"currency"`
	AssetAccount string `json:"assetAccount"`
}

type InvestmentGroup struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Investments []string `json:"investments"`
}

type InvestmentCurrency struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	Name     string `json:"name"`
}

type InvestmentGroups struct {
	Accounts   []InvestmentAccount  `json:"accounts"`
	Groups     []InvestmentGroup    `json:"groups"`
	Currencies []InvestmentCurrency `json:"currencies"`
}

// Portfolio is the fully loaded investment universe: every configured
// investment with its categorized transactions, extracted cash flows, and a
// pricer over all explicit and implicit prices.
//
// A Portfolio is immutable once built. Reloading the ledger builds a fresh
// one and swaps it wholesale; in-flight readers keep the old snapshot. The
// recorder is the single mutable exception and carries only diagnostics.
type Portfolio struct {
	config   *Config
	ledger   *Ledger
	pricer   *Pricer
	recorder *PriceRecorder
	accounts map[string]*AccountData
	order    []string
	groups   InvestmentGroups
}

// NewPortfolio builds the portfolio snapshot from a ledger, explicit price
// directives and the investments configuration.
func NewPortfolio(ledger *Ledger, prices []Price, cfg *Config) (*Portfolio, error) {
	priceMap := NewPriceMap()
	// Implicit prices first: a buy at cost is a price point, overridden by
	// any explicit directive on the same day.
	for _, tx := range ledger.Transactions() {
		for _, p := range tx.Postings {
			if p.Cost == nil || !p.Units.IsPositive() {
				continue
			}
			priceMap.Add(p.Currency, p.Cost.PerUnit.Currency(), tx.Date, p.Cost.PerUnit.Amount())
		}
	}
	for _, pr := range prices {
		priceMap.Add(pr.Base, pr.Quote, pr.Date, pr.Rate)
	}

	recorder := NewPriceRecorder()
	p := &Portfolio{
		config:   cfg,
		ledger:   ledger,
		pricer:   NewPricer(priceMap, recorder),
		recorder: recorder,
		accounts: make(map[string]*AccountData, len(cfg.Investments)),
	}

	for _, inv := range cfg.Investments {
		ad, err := extractAccountData(ledger, cfg, inv)
		if err != nil {
			return nil, err
		}
		p.accounts[inv.AssetAccount] = ad
		p.order = append(p.order, inv.AssetAccount)
	}
	p.groups = groupInvestments(cfg, p.accounts, p.order)
	return p, nil
}

// extractAccountData collects and categorizes the transactions of one
// investment. A transaction belongs to the investment when it touches its
// asset account or one of its dividend accounts.
func extractAccountData(ledger *Ledger, cfg *Config, inv InvestmentConfig) (*AccountData, error) {
	isCash := make(map[string]bool, len(inv.CashAccounts))
	for _, a := range inv.CashAccounts {
		isCash[a] = true
	}
	isDividend := make(map[string]bool, len(inv.DividendAccounts))
	for _, a := range inv.DividendAccounts {
		isDividend[a] = true
	}

	ad := &AccountData{
		Account:      inv.AssetAccount,
		Name:         inv.Name,
		Currency:     inv.Currency,
		CashCurrency: cfg.MainCurrency(),
	}

	for _, tx := range ledger.Transactions() {
		relevant := false
		for _, p := range tx.Postings {
			if p.Account == inv.AssetAccount || isDividend[p.Account] {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}

		categorized := Transaction{Date: tx.Date, Narration: tx.Narration}
		for _, p := range tx.Postings {
			switch {
			case p.Account == inv.AssetAccount:
				p.Category = CatAsset
				if p.Cost != nil {
					ad.CashCurrency = p.Cost.PerUnit.Currency()
				}
			case isCash[p.Account]:
				p.Category = CatCash
			case isDividend[p.Account]:
				p.Category = CatDividend
			case isOtherAsset(cfg, inv, p.Account):
				p.Category = CatOtherAsset
			default:
				p.Category = CatNone
			}
			categorized.Postings = append(categorized.Postings, p)
		}
		ad.Transactions = append(ad.Transactions, categorized)
	}

	ad.CashFlows = produceCashFlows(ad.Account, ad.Transactions)
	return ad, nil
}

func isOtherAsset(cfg *Config, self InvestmentConfig, account string) bool {
	other, ok := cfg.Investment(account)
	return ok && other.AssetAccount != self.AssetAccount
}

func groupInvestments(cfg *Config, accounts map[string]*AccountData, order []string) InvestmentGroups {
	g := InvestmentGroups{
		Accounts:   []InvestmentAccount{},
		Groups:     []InvestmentGroup{},
		Currencies: []InvestmentCurrency{},
	}
	for _, inv := range cfg.Investments {
		g.Accounts = append(g.Accounts, InvestmentAccount{
			ID:           "a:" + inv.AssetAccount,
			Currency:     inv.Currency,
			AssetAccount: inv.AssetAccount,
		})
	}
	for _, grp := range cfg.Groups {
		g.Groups = append(g.Groups, InvestmentGroup{
			ID:          "g:" + grp.Name,
			Name:        grp.Name,
			Investments: grp.Investments,
		})
	}
	seen := make(map[string]bool)
	for _, account := range order {
		ad := accounts[account]
		if seen[ad.Currency] {
			continue
		}
		seen[ad.Currency] = true
		name := ad.Name
		if name == "" {
			name = ad.Currency
		}
		g.Currencies = append(g.Currencies, InvestmentCurrency{
			ID:       "c:" + ad.Currency,
			Currency: ad.Currency,
			Name:     name,
		})
	}
	sort.Slice(g.Currencies, func(i, j int) bool { return g.Currencies[i].ID < g.Currencies[j].ID })
	return g
}

// Pricer returns the portfolio's pricer.
func (p *Portfolio) Pricer() *Pricer { return p.pricer }

// Recorder returns the diagnostic price-lookup recorder.
func (p *Portfolio) Recorder() *PriceRecorder { return p.recorder }

// Groups returns the filterable investment universe for the API.
func (p *Portfolio) Groups() InvestmentGroups { return p.groups }

// Ledger returns the underlying transaction ledger.
func (p *Portfolio) Ledger() *Ledger { return p.ledger }

// Config returns the investments configuration the portfolio was built with.
func (p *Portfolio) Config() *Config { return p.config }

// AccountDataList resolves a list of filter ids (a:, g:, c:) to the matching
// investments, in configuration order. An empty filter selects everything.
func (p *Portfolio) AccountDataList(ids []string) []*AccountData {
	if len(ids) == 0 {
		return p.allAccountData()
	}
	selected := make(map[string]bool)
	for _, id := range ids {
		switch {
		case strings.HasPrefix(id, "a:"):
			selected[strings.TrimPrefix(id, "a:")] = true
		case strings.HasPrefix(id, "g:"):
			if grp, ok := p.config.Group(strings.TrimPrefix(id, "g:")); ok {
				for _, account := range grp.Investments {
					selected[account] = true
				}
			}
		case strings.HasPrefix(id, "c:"):
			currency := strings.TrimPrefix(id, "c:")
			for _, ad := range p.accounts {
				if ad.Currency == currency {
					selected[ad.Account] = true
				}
			}
		}
	}
	var ads []*AccountData
	for _, account := range p.order {
		if selected[account] {
			ads = append(ads, p.accounts[account])
		}
	}
	return ads
}

func (p *Portfolio) allAccountData() []*AccountData {
	ads := make([]*AccountData, 0, len(p.order))
	for _, account := range p.order {
		ads = append(ads, p.accounts[account])
	}
	return ads
}

// Filtered builds the working view for one request: the selected investments
// plus the target currency every value is reported in. An empty currency
// falls back to the single selected group's override, then to the main
// operating currency.
func (p *Portfolio) Filtered(ids []string, currency string) *FilteredPortfolio {
	if currency == "" {
		currency = p.config.MainCurrency()
		if len(ids) == 1 && strings.HasPrefix(ids[0], "g:") {
			if grp, ok := p.config.Group(strings.TrimPrefix(ids[0], "g:")); ok && grp.Currency != "" {
				currency = grp.Currency
			}
		}
	}
	return &FilteredPortfolio{
		Portfolio: p,
		Accounts:  p.AccountDataList(ids),
		Currency:  currency,
	}
}

// FilteredPortfolio is a read-only view over a subset of the portfolio's
// investments, reporting in one target currency. It holds no state of its
// own: building one per request is free and concurrency-safe.
type FilteredPortfolio struct {
	*Portfolio
	Accounts []*AccountData
	Currency string
}

// BalanceAt merges the inventories of all selected investments at a date.
func (fp *FilteredPortfolio) BalanceAt(on Date) *Inventory {
	merged := NewInventory()
	for _, ad := range fp.Accounts {
		for lot := range ad.BalanceAt(on).Lots() {
			merged.augment(lot)
		}
	}
	return merged
}

// CashFlows returns the merged, date-ordered flows of the selected
// investments over their whole history.
func (fp *FilteredPortfolio) CashFlows() []CashFlow {
	return MergeCashFlows(fp.Accounts)
}

// TruncatedCashFlows returns the merged flows restricted to [start, end)
// with synthetic open/close boundary flows.
func (fp *FilteredPortfolio) TruncatedCashFlows(start, end Date) ([]CashFlow, error) {
	return TruncateAndMergeCashFlows(fp.pricer, fp.Accounts, start, end)
}

// CashFlowTimeRange returns the dates of the first and last flow of the
// selection, optionally considering only dividend flows. ok is false when the
// selection has no matching flow.
func (fp *FilteredPortfolio) CashFlowTimeRange(onlyDividends bool) (start, end Date, ok bool) {
	for _, ad := range fp.Accounts {
		for _, f := range ad.CashFlows {
			if onlyDividends && !f.IsDividend {
				continue
			}
			if !ok || f.Date.Before(start) {
				start = f.Date
			}
			if !ok || f.Date.After(end) {
				end = f.Date
			}
			ok = true
		}
	}
	return start, end, ok
}
