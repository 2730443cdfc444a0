package folio

import "math"

// Fixture accounts shared by the tests.
const (
	corpAsset = "assets:stock:corp"
	bondAsset = "assets:stock:bond"
	cashAcct  = "assets:cash"
	corpDiv   = "income:dividends:corp"
)

// testConfig declares two investments in USD and one group holding both.
func testConfig() *Config {
	return &Config{
		OperatingCurrency: []string{"USD"},
		Investments: []InvestmentConfig{
			{
				Currency:         "CORP",
				Name:             "Corp Inc",
				AssetAccount:     corpAsset,
				CashAccounts:     []string{cashAcct},
				DividendAccounts: []string{corpDiv},
			},
			{
				Currency:     "BOND",
				Name:         "Bond Fund",
				AssetAccount: bondAsset,
				CashAccounts: []string{cashAcct},
			},
		},
		Groups: []GroupConfig{
			{Name: "Stocks", Investments: []string{corpAsset, bondAsset}},
		},
	}
}

// buy acquires units of a commodity at a per-unit price, paid from cash.
func buy(date string, account string, units float64, commodity string, price float64) Transaction {
	on := MustDate(date)
	return Transaction{
		Date:      on,
		Narration: "buy " + commodity,
		Postings: []Posting{
			{Account: account, Units: Q(units), Currency: commodity,
				Cost: &CostSpec{PerUnit: M(price, "USD"), Date: on}},
			{Account: cashAcct, Units: Q(-units * price), Currency: "USD"},
		},
	}
}

// sell reduces units FIFO and books the proceeds to cash.
func sell(date string, account string, units float64, commodity string, proceeds float64) Transaction {
	return Transaction{
		Date:      MustDate(date),
		Narration: "sell " + commodity,
		Postings: []Posting{
			{Account: account, Units: Q(-units), Currency: commodity},
			{Account: cashAcct, Units: Q(proceeds), Currency: "USD"},
		},
	}
}

// dividend books dividend income of the corp investment to cash.
func dividend(date string, amount float64) Transaction {
	return Transaction{
		Date:      MustDate(date),
		Narration: "corp dividend",
		Postings: []Posting{
			{Account: corpDiv, Units: Q(-amount), Currency: "USD"},
			{Account: cashAcct, Units: Q(amount), Currency: "USD"},
		},
	}
}

func pricePoint(date, base string, rate float64, quote string) Price {
	return Price{Date: MustDate(date), Base: base, Rate: Q(rate).Decimal(), Quote: quote}
}

// loadTest builds a portfolio over the test config. Panics on invalid
// fixtures so tests fail loudly.
func loadTest(txs []Transaction, prices []Price) *Portfolio {
	ledger := NewLedger()
	ledger.Append(txs...)
	p, err := NewPortfolio(ledger, prices, testConfig())
	if err != nil {
		panic(err.Error())
	}
	return p
}

// growthFixture is a CORP position built over two buys with rising prices.
//
//	2020-01-01  buy 2 CORP @ 100
//	2020-02-01  price CORP 150
//	2020-03-01  buy 1 CORP @ 200
//	2020-04-01  price CORP 300
func growthFixture() *Portfolio {
	return loadTest(
		[]Transaction{
			buy("2020-01-01", corpAsset, 2, "CORP", 100),
			buy("2020-03-01", corpAsset, 1, "CORP", 200),
		},
		[]Price{
			pricePoint("2020-02-01", "CORP", 150, "USD"),
			pricePoint("2020-04-01", "CORP", 300, "USD"),
		},
	)
}

// drawdownFixture is a single share riding a peak and a crash.
//
//	2021-01-01  buy 1 CORP @ 100
//	prices: 150, 120, 180, 90 on the first of the following months
func drawdownFixture() *Portfolio {
	return loadTest(
		[]Transaction{buy("2021-01-01", corpAsset, 1, "CORP", 100)},
		[]Price{
			pricePoint("2021-02-01", "CORP", 150, "USD"),
			pricePoint("2021-03-01", "CORP", 120, "USD"),
			pricePoint("2021-04-01", "CORP", 180, "USD"),
			pricePoint("2021-05-01", "CORP", 90, "USD"),
		},
	)
}

func within(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= tolerance
}
