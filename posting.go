package folio

import (
	"fmt"
	"sort"
)

// Category classifies a posting for the returns engine.
//
// The category is assigned once, when the ledger is loaded against the
// investment configuration; the engine never re-derives it from account names.
type Category int

const (
	// CatNone marks a posting the engine ignores (income legs, balancing
	// postings of accounts outside the investment universe).
	CatNone Category = iota
	// CatAsset is a leg on the investment's asset account: it changes the
	// held inventory.
	CatAsset
	// CatCash is a leg on a configured cash account: it is an external flow.
	CatCash
	// CatDividend is a leg on a configured dividend income account. Its
	// presence flags the transaction's cash legs as dividend flows.
	CatDividend
	// CatOtherAsset is a leg on another investment's asset account:
	// contributing or withdrawing the asset itself counts as an implicit
	// cash-equivalent flow.
	CatOtherAsset
)

func (c Category) String() string {
	switch c {
	case CatAsset:
		return "asset"
	case CatCash:
		return "cash"
	case CatDividend:
		return "dividend"
	case CatOtherAsset:
		return "otherasset"
	default:
		return "none"
	}
}

// ParseCategory parses the persisted category tag.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "asset":
		return CatAsset, nil
	case "cash":
		return CatCash, nil
	case "dividend":
		return CatDividend, nil
	case "otherasset":
		return CatOtherAsset, nil
	case "", "none":
		return CatNone, nil
	default:
		return CatNone, fmt.Errorf("unknown posting category %q", s)
	}
}

// CostSpec is the cost-basis annotation of an asset posting: the per-unit
// acquisition cost and the acquisition date of the lot.
type CostSpec struct {
	PerUnit Money // cost of one unit, in the cost currency
	Date    Date  // acquisition date of the lot
}

// Posting is a single leg of a transaction. Immutable once created.
type Posting struct {
	Account  string
	Units    Quantity
	Currency string    // unit currency: commodity ticker or cash currency
	Cost     *CostSpec // nil for cash legs and cost-less reductions
	Category Category
}

// Weight is the value transferred by this posting: units x per-unit cost for
// postings held at cost, otherwise the units in the posting's own currency.
func (p Posting) Weight() Money {
	if p.Cost != nil {
		return p.Cost.PerUnit.Mul(p.Units)
	}
	return M(p.Units.Decimal(), p.Currency)
}

// Transaction is a date plus the ordered list of its postings.
// Owned by the ledger, immutable once appended.
type Transaction struct {
	Date      Date
	Narration string
	Postings  []Posting
}

// Ledger is a chronologically ordered list of transactions.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{transactions: make([]Transaction, 0)}
}

// Append adds transactions and restores chronological order. The sort is
// stable: same-day transactions keep their relative order.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Transactions returns the chronological transaction list. Callers must not
// mutate it.
func (l *Ledger) Transactions() []Transaction { return l.transactions }

// OldestTransactionDate returns the date of the earliest transaction, or the
// zero date for an empty ledger.
func (l *Ledger) OldestTransactionDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[0].Date
}

// NewestTransactionDate returns the date of the latest transaction, or the
// zero date for an empty ledger.
func (l *Ledger) NewestTransactionDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[len(l.transactions)-1].Date
}
