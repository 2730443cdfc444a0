package folio

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

func intervalLabel(interval string, on Date) (string, error) {
	switch interval {
	case "monthly":
		return fmt.Sprintf("%d-%02d", on.Year(), on.Month()), nil
	case "yearly":
		return fmt.Sprintf("%d", on.Year()), nil
	default:
		return "", fmt.Errorf("invalid interval %q", interval)
	}
}

// DividendsRow is the dividend income of one bucket, broken down by the
// commodity's display name.
type DividendsRow struct {
	Date    string
	Amounts map[string]decimal.Decimal
}

// MarshalJSON flattens the row into one chart object: the bucket label under
// "date" plus one key per commodity name.
func (r DividendsRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Amounts)+1)
	flat["date"] = r.Date
	for name, amount := range r.Amounts {
		flat[name] = amount
	}
	return json.Marshal(flat)
}

// DividendsChart buckets the selection's dividend flows per month or year
// and per paying commodity, converted to the target currency.
func DividendsChart(fp *FilteredPortfolio, start, end Date, interval string) ([]DividendsRow, error) {
	currencyByAccount := make(map[string]string)
	for _, acc := range fp.groups.Accounts {
		currencyByAccount[acc.AssetAccount] = acc.Currency
	}
	nameByCurrency := make(map[string]string)
	for _, cur := range fp.groups.Currencies {
		nameByCurrency[cur.Currency] = cur.Name
	}

	buckets := make(map[string]DividendsRow)
	for _, flow := range fp.CashFlows() {
		if flow.Date.Before(start) || flow.Date.After(end) || !flow.IsDividend {
			continue
		}
		converted, err := fp.pricer.ConvertAmount(flow.Amount, fp.Currency, flow.Date)
		if err != nil {
			return nil, err
		}
		label, err := intervalLabel(interval, flow.Date)
		if err != nil {
			return nil, err
		}
		name := nameByCurrency[currencyByAccount[flow.Account]]
		row, ok := buckets[label]
		if !ok {
			row = DividendsRow{Date: label, Amounts: make(map[string]decimal.Decimal)}
			buckets[label] = row
		}
		row.Amounts[name] = row.Amounts[name].Add(converted.Amount())
	}

	rows := make([]DividendsRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

// CashFlowsRow is the net dividend and non-dividend flow of one bucket.
type CashFlowsRow struct {
	Date  string          `json:"date"`
	Div   decimal.Decimal `json:"div"`
	ExDiv decimal.Decimal `json:"exdiv"`
}

// CashFlowsChart buckets the selection's flows per month or year, dividends
// separated from the rest, converted to the target currency.
func CashFlowsChart(fp *FilteredPortfolio, start, end Date, interval string) ([]CashFlowsRow, error) {
	buckets := make(map[string]*CashFlowsRow)
	for _, flow := range fp.CashFlows() {
		if flow.Date.Before(start) || flow.Date.After(end) {
			continue
		}
		converted, err := fp.pricer.ConvertAmount(flow.Amount, fp.Currency, flow.Date)
		if err != nil {
			return nil, err
		}
		label, err := intervalLabel(interval, flow.Date)
		if err != nil {
			return nil, err
		}
		row, ok := buckets[label]
		if !ok {
			row = &CashFlowsRow{Date: label}
			buckets[label] = row
		}
		if flow.IsDividend {
			row.Div = row.Div.Add(converted.Amount())
		} else {
			row.ExDiv = row.ExDiv.Add(converted.Amount())
		}
	}

	rows := make([]CashFlowsRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

// CashFlowsTableRow is one flow in the table view, newest first.
type CashFlowsTableRow struct {
	Date        Date   `json:"date"`
	Amount      Money  `json:"amount"`
	IsDividend  bool   `json:"isDividend"`
	Source      string `json:"source"`
	Account     string `json:"account"`
	Transaction string `json:"transaction"`
}

// CashFlowsTable lists the selection's flows in [start, end], newest first,
// in their original currencies.
func CashFlowsTable(fp *FilteredPortfolio, start, end Date) []CashFlowsTableRow {
	var rows []CashFlowsTableRow
	for _, flow := range fp.CashFlows() {
		if flow.Date.Before(start) || flow.Date.After(end) {
			continue
		}
		rows = append(rows, CashFlowsTableRow{
			Date:        flow.Date,
			Amount:      flow.Amount,
			IsDividend:  flow.IsDividend,
			Source:      flow.Source.String(),
			Account:     flow.Account,
			Transaction: flow.Narration,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[j].Date.Before(rows[i].Date) })
	return rows
}
