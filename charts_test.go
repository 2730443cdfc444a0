package folio

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func dividendFixture() *Portfolio {
	return loadTest(
		[]Transaction{
			buy("2020-01-01", corpAsset, 2, "CORP", 100),
			dividend("2020-02-10", 10),
			dividend("2020-02-25", 5),
			dividend("2020-05-10", 20),
		},
		nil,
	)
}

func TestDividendsChart(t *testing.T) {
	fp := dividendFixture().Filtered(nil, "")

	rows, err := DividendsChart(fp, MustDate("2020-01-01"), MustDate("2020-12-31"), "monthly")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Date != "2020-02" || !rows[0].Amounts["Corp Inc"].Equal(Q(15).Decimal()) {
		t.Errorf("row 0 = %+v, want 2020-02 Corp Inc 15", rows[0])
	}
	if rows[1].Date != "2020-05" || !rows[1].Amounts["Corp Inc"].Equal(Q(20).Decimal()) {
		t.Errorf("row 1 = %+v, want 2020-05 Corp Inc 20", rows[1])
	}

	yearly, err := DividendsChart(fp, MustDate("2020-01-01"), MustDate("2020-12-31"), "yearly")
	if err != nil {
		t.Fatal(err)
	}
	if len(yearly) != 1 || yearly[0].Date != "2020" || !yearly[0].Amounts["Corp Inc"].Equal(Q(35).Decimal()) {
		t.Errorf("yearly = %+v, want 2020 Corp Inc 35", yearly)
	}

	if _, err := DividendsChart(fp, Date{}, MustDate("2020-12-31"), "weekly"); err == nil {
		t.Error("accepted an invalid interval")
	}
}

func TestDividendsRowJSON(t *testing.T) {
	row := DividendsRow{Date: "2020-02", Amounts: map[string]decimal.Decimal{"Corp Inc": Q(15).Decimal()}}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatal(err)
	}
	if flat["date"] != "2020-02" {
		t.Errorf("date = %v", flat["date"])
	}
	if flat["Corp Inc"] != 15.0 {
		t.Errorf("amount = %v, want 15", flat["Corp Inc"])
	}
}

func TestCashFlowsChart(t *testing.T) {
	fp := dividendFixture().Filtered(nil, "")

	rows, err := CashFlowsChart(fp, MustDate("2020-01-01"), MustDate("2020-12-31"), "monthly")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Date != "2020-01" || !rows[0].ExDiv.Equal(Q(-200).Decimal()) || !rows[0].Div.IsZero() {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Date != "2020-02" || !rows[1].Div.Equal(Q(15).Decimal()) || !rows[1].ExDiv.IsZero() {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].Date != "2020-05" || !rows[2].Div.Equal(Q(20).Decimal()) {
		t.Errorf("row 2 = %+v", rows[2])
	}
}

func TestCashFlowsTable(t *testing.T) {
	fp := dividendFixture().Filtered(nil, "")

	rows := CashFlowsTable(fp, MustDate("2020-01-01"), MustDate("2020-03-01"))
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// newest first
	if rows[0].Date != MustDate("2020-02-25") || rows[2].Date != MustDate("2020-01-01") {
		t.Errorf("order = %s .. %s", rows[0].Date, rows[2].Date)
	}
	if !rows[2].Amount.Equal(M(-200, "USD")) || rows[2].IsDividend {
		t.Errorf("row 2 = %+v", rows[2])
	}
	if rows[0].Source != "cash" || !rows[0].IsDividend {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[2].Transaction != "buy CORP" {
		t.Errorf("narration = %q", rows[2].Transaction)
	}
}
