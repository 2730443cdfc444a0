package folio

import (
	"fmt"
	"iter"
)

// Lot is a quantity of a commodity acquired at a single cost basis.
type Lot struct {
	Currency string   // commodity ticker
	Units    Quantity // always positive while held
	Cost     CostSpec // per-unit acquisition cost and date
}

// CostValue is the book value of the lot: units times per-unit cost.
func (l Lot) CostValue() Money { return l.Cost.PerUnit.Mul(l.Units) }

// Inventory is the multiset of lots held by an account. Augmenting postings
// add lots (merging identical ones), reducing postings consume them.
type Inventory struct {
	lots []Lot
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory { return &Inventory{} }

// IsEmpty reports whether no units are held.
func (inv *Inventory) IsEmpty() bool {
	for _, l := range inv.lots {
		if !l.Units.IsZero() {
			return false
		}
	}
	return true
}

// Units returns the total held units of a commodity across lots.
func (inv *Inventory) Units(currency string) Quantity {
	total := Q(0)
	for _, l := range inv.lots {
		if l.Currency == currency {
			total = total.Add(l.Units)
		}
	}
	return total
}

// Lots iterates over the held lots in acquisition order.
func (inv *Inventory) Lots() iter.Seq[Lot] {
	return func(yield func(Lot) bool) {
		for _, l := range inv.lots {
			if l.Units.IsZero() {
				continue
			}
			if !yield(l) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the inventory.
func (inv *Inventory) Clone() *Inventory {
	c := &Inventory{lots: make([]Lot, len(inv.lots))}
	copy(c.lots, inv.lots)
	return c
}

// Add applies an asset posting to the inventory. Positive units at cost open
// a lot, negative units close lots: against the matching lot when the posting
// names a cost, in FIFO order when it does not.
func (inv *Inventory) Add(p Posting) error {
	switch {
	case p.Units.IsPositive():
		if p.Cost == nil {
			return fmt.Errorf("augmenting posting on %s for %s %s has no cost basis", p.Account, p.Units, p.Currency)
		}
		inv.augment(Lot{Currency: p.Currency, Units: p.Units, Cost: *p.Cost})
		return nil
	case p.Units.IsNegative():
		if p.Cost != nil {
			return inv.reduceLot(p.Currency, p.Units.Neg(), *p.Cost)
		}
		return inv.reduceFIFO(p.Currency, p.Units.Neg())
	default:
		return nil
	}
}

func (inv *Inventory) augment(lot Lot) {
	for i, l := range inv.lots {
		if l.Currency == lot.Currency && l.Cost.Date == lot.Cost.Date && l.Cost.PerUnit.Equal(lot.Cost.PerUnit) {
			inv.lots[i].Units = l.Units.Add(lot.Units)
			return
		}
	}
	inv.lots = append(inv.lots, lot)
}

// reduceLot consumes units from the lot matching the given cost spec. A zero
// cost date matches any acquisition date.
func (inv *Inventory) reduceLot(currency string, units Quantity, cost CostSpec) error {
	for i, l := range inv.lots {
		if l.Currency != currency || !l.Cost.PerUnit.Equal(cost.PerUnit) {
			continue
		}
		if !cost.Date.IsZero() && l.Cost.Date != cost.Date {
			continue
		}
		if l.Units.LessThan(units) {
			return fmt.Errorf("cannot reduce %s %s: lot of %s holds only %s", units, currency, l.Cost.Date, l.Units)
		}
		inv.lots[i].Units = l.Units.Sub(units)
		inv.compact()
		return nil
	}
	return fmt.Errorf("no lot of %s matches cost %s %s", currency, cost.PerUnit, cost.Date)
}

// reduceFIFO consumes units from the oldest lots first.
func (inv *Inventory) reduceFIFO(currency string, units Quantity) error {
	remaining := units
	for i := range inv.lots {
		l := &inv.lots[i]
		if l.Currency != currency || l.Units.IsZero() {
			continue
		}
		if remaining.LessThan(l.Units) {
			l.Units = l.Units.Sub(remaining)
			remaining = Q(0)
			break
		}
		remaining = remaining.Sub(l.Units)
		l.Units = Q(0)
	}
	inv.compact()
	if remaining.IsPositive() {
		return fmt.Errorf("cannot reduce %s %s: inventory exhausted with %s left", units, currency, remaining)
	}
	return nil
}

func (inv *Inventory) compact() {
	kept := inv.lots[:0]
	for _, l := range inv.lots {
		if !l.Units.IsZero() {
			kept = append(kept, l)
		}
	}
	inv.lots = kept
}

// CostValue returns the book value of the inventory in the target currency,
// using the pricer for currency conversion at the given date.
func (inv *Inventory) CostValue(pricer *Pricer, target string, on Date) (Money, error) {
	total := M(0, target)
	for lot := range inv.Lots() {
		value, err := pricer.ConvertAmount(lot.CostValue(), target, on)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(value)
	}
	return total, nil
}

// MarketValue returns the market value of the inventory in the target
// currency at the given date. Each lot is valued in its cost currency first,
// then converted.
func (inv *Inventory) MarketValue(pricer *Pricer, target string, on Date) (Money, error) {
	total := M(0, target)
	for lot := range inv.Lots() {
		value, err := pricer.ConvertPosition(lot.Currency, lot.Units, lot.Cost.PerUnit.Currency(), target, on)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(value)
	}
	return total, nil
}
