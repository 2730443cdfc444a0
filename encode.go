package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DirectiveType discriminates the JSONL ledger lines.
type DirectiveType string

const (
	DirTransaction DirectiveType = "transaction"
	DirPrice       DirectiveType = "price"
)

type costCmd struct {
	PerUnit  decimal.Decimal `json:"perUnit"`
	Currency string          `json:"currency"`
	Date     Date            `json:"date,omitzero"`
}

type postingCmd struct {
	Account  string          `json:"account"`
	Units    decimal.Decimal `json:"units"`
	Currency string          `json:"currency"`
	Cost     *costCmd        `json:"cost,omitempty"`
}

type transactionCmd struct {
	Directive DirectiveType `json:"directive"`
	Date      Date          `json:"date"`
	Narration string        `json:"narration,omitempty"`
	Postings  []postingCmd  `json:"postings"`
}

type priceCmd struct {
	Directive DirectiveType   `json:"directive"`
	Date      Date            `json:"date"`
	Base      string          `json:"base"`
	Rate      decimal.Decimal `json:"rate"`
	Quote     string          `json:"quote"`
}

func (c transactionCmd) transaction() Transaction {
	tx := Transaction{Date: c.Date, Narration: c.Narration}
	for _, p := range c.Postings {
		posting := Posting{
			Account:  p.Account,
			Units:    Q(p.Units),
			Currency: p.Currency,
		}
		if p.Cost != nil {
			date := p.Cost.Date
			if date.IsZero() {
				date = c.Date
			}
			posting.Cost = &CostSpec{PerUnit: M(p.Cost.PerUnit, p.Cost.Currency), Date: date}
		}
		tx.Postings = append(tx.Postings, posting)
	}
	return tx
}

// DecodeLedger reads a JSONL stream of transaction and price directives and
// returns the sorted ledger plus the explicit price points.
func DecodeLedger(r io.Reader) (*Ledger, []Price, error) {
	ledger := NewLedger()
	var prices []Price
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var identifier struct {
			Directive DirectiveType `json:"directive"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, nil, fmt.Errorf("could not identify directive in line %q: %w", string(line), err)
		}

		switch identifier.Directive {
		case DirTransaction:
			var cmd transactionCmd
			if err := json.Unmarshal(line, &cmd); err != nil {
				return nil, nil, fmt.Errorf("decoding transaction %q: %w", string(line), err)
			}
			ledger.Append(cmd.transaction())
		case DirPrice:
			var cmd priceCmd
			if err := json.Unmarshal(line, &cmd); err != nil {
				return nil, nil, fmt.Errorf("decoding price %q: %w", string(line), err)
			}
			prices = append(prices, Price{Date: cmd.Date, Base: cmd.Base, Rate: cmd.Rate, Quote: cmd.Quote})
		default:
			return nil, nil, fmt.Errorf("unknown directive %q in line %q", identifier.Directive, string(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading ledger: %w", err)
	}
	return ledger, prices, nil
}

// EncodeTransaction writes one transaction as a JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	cmd := transactionCmd{Directive: DirTransaction, Date: tx.Date, Narration: tx.Narration}
	for _, p := range tx.Postings {
		pc := postingCmd{Account: p.Account, Units: p.Units.Decimal(), Currency: p.Currency}
		if p.Cost != nil {
			pc.Cost = &costCmd{
				PerUnit:  p.Cost.PerUnit.Amount(),
				Currency: p.Cost.PerUnit.Currency(),
				Date:     p.Cost.Date,
			}
		}
		cmd.Postings = append(cmd.Postings, pc)
	}
	return encodeLine(w, cmd)
}

// EncodePrice writes one price directive as a JSONL line.
func EncodePrice(w io.Writer, p Price) error {
	return encodeLine(w, priceCmd{Directive: DirPrice, Date: p.Date, Base: p.Base, Rate: p.Rate, Quote: p.Quote})
}

func encodeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// EncodeLedger writes the whole ledger and price list as JSONL, transactions
// first.
func EncodeLedger(w io.Writer, ledger *Ledger, prices []Price) error {
	for _, tx := range ledger.Transactions() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	for _, p := range prices {
		if err := EncodePrice(w, p); err != nil {
			return err
		}
	}
	return nil
}

// ReadLedgerFile reads the JSONL ledger at path.
func ReadLedgerFile(path string) (*Ledger, []Price, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading ledger: %w", err)
	}
	defer f.Close()
	return DecodeLedger(f)
}

// LoadPortfolio reads the ledger and config files and builds the portfolio
// snapshot.
func LoadPortfolio(ledgerPath, configPath string) (*Portfolio, error) {
	ledger, prices, err := ReadLedgerFile(ledgerPath)
	if err != nil {
		return nil, err
	}
	cfg, err := ReadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	return NewPortfolio(ledger, prices, cfg)
}
