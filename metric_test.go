package folio

import "testing"

func checkSeries(t *testing.T, got Series, dates []string, values []float64) {
	t.Helper()
	if len(got) != len(dates) {
		t.Fatalf("got %d points, want %d", len(got), len(dates))
	}
	for i := range got {
		if got[i].Date != MustDate(dates[i]) {
			t.Errorf("point %d date = %s, want %s", i, got[i].Date, dates[i])
		}
		if !within(got[i].Value, values[i], 1e-9) {
			t.Errorf("point %d value = %v, want %v", i, got[i].Value, values[i])
		}
	}
}

func TestGetMetric(t *testing.T) {
	for _, name := range []string{"returns", "irr", "mdm", "twr", "pnl", "volatility", "mdd"} {
		if _, err := GetMetric(name); err != nil {
			t.Errorf("GetMetric(%q): %v", name, err)
		}
	}
	if _, err := GetMetric("sharpe"); err == nil {
		t.Error("GetMetric accepted an unknown metric")
	}
}

func TestTWR(t *testing.T) {
	fp := growthFixture().Filtered(nil, "")
	start, end := MustDate("2020-01-01"), MustDate("2020-04-01")

	single, err := TWR{}.Single(fp, start, end)
	if err != nil {
		t.Fatal(err)
	}
	// 1.5 * 4/3 * 1.5 - 1: the mid-window buy does not register as growth
	if !within(single, 2.0, 1e-9) {
		t.Errorf("Single = %v, want 2.0", single)
	}

	series, err := TWR{}.Series(fp, start, end)
	if err != nil {
		t.Fatal(err)
	}
	checkSeries(t, series,
		[]string{"2020-01-01", "2020-02-01", "2020-03-01", "2020-04-01"},
		[]float64{0, 0.5, 1.0, 2.0})
}

func TestTWRRebase(t *testing.T) {
	s := Series{
		{Date: MustDate("2020-02-01"), Value: 0.5},
		{Date: MustDate("2020-03-01"), Value: 1.0},
	}
	rebased := TWR{}.Rebase(0.5, s)
	checkSeries(t, rebased,
		[]string{"2020-02-01", "2020-03-01"},
		[]float64{0, 1.0/3.0})
}

func TestSimpleReturnsZeroCost(t *testing.T) {
	// free shares carry a zero cost basis; the ratio is defined as zero
	// instead of dividing by it
	p := loadTest(
		[]Transaction{buy("2020-01-01", corpAsset, 2, "CORP", 0)},
		[]Price{
			pricePoint("2020-01-01", "CORP", 150, "USD"),
			pricePoint("2020-02-01", "CORP", 200, "USD"),
		},
	)
	fp := p.Filtered(nil, "")

	series, err := SimpleReturns{}.Series(fp, MustDate("2020-01-01"), MustDate("2020-02-01"))
	if err != nil {
		t.Fatal(err)
	}
	checkSeries(t, series,
		[]string{"2020-01-01", "2020-02-01"},
		[]float64{0, 0})
}

func TestSimpleReturns(t *testing.T) {
	fp := growthFixture().Filtered(nil, "")
	start, end := MustDate("2020-01-01"), MustDate("2020-04-01")

	if _, err := (SimpleReturns{}).Single(fp, start, end); err == nil {
		t.Error("simple returns provided a single value")
	}

	series, err := SimpleReturns{}.Series(fp, start, end)
	if err != nil {
		t.Fatal(err)
	}
	checkSeries(t, series,
		[]string{"2020-01-01", "2020-02-01", "2020-03-01", "2020-04-01"},
		[]float64{0, 0.5, 0.5, 1.25})
}

func TestModifiedDietz(t *testing.T) {
	fp := growthFixture().Filtered(nil, "")

	got, err := ModifiedDietz{}.Single(fp, MustDate("2020-01-01"), MustDate("2020-04-01"))
	if err != nil {
		t.Fatal(err)
	}
	// gain 500 over an average capital of 200 + 200*32/92
	want := 500.0 / (200.0 + 200.0*32.0/92.0)
	if !within(got, want, 1e-9) {
		t.Errorf("Single = %v, want %v", got, want)
	}

	if _, err := (ModifiedDietz{}).Series(fp, MustDate("2020-01-01"), MustDate("2020-04-01")); err == nil {
		t.Error("mdm provided a series")
	}
}

func TestComputeDietzDegenerate(t *testing.T) {
	if got := computeDietz(nil, MustDate("2020-01-01")); got != 0 {
		t.Errorf("no flows = %v, want 0", got)
	}
	flows := []CashFlow{{Date: MustDate("2020-01-01"), Amount: M(-100, "USD")}}
	if got := computeDietz(flows, MustDate("2020-01-01")); got != 0 {
		t.Errorf("zero-length window = %v, want 0", got)
	}
}

func TestIRR(t *testing.T) {
	// one share bought at 100, worth 110 after exactly one non-leap year
	p := loadTest(
		[]Transaction{buy("2021-01-01", corpAsset, 1, "CORP", 100)},
		[]Price{pricePoint("2021-12-31", "CORP", 110, "USD")},
	)
	fp := p.Filtered(nil, "")

	got, err := IRR{}.Single(fp, MustDate("2021-01-01"), MustDate("2021-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if !within(got, 0.10, 1e-6) {
		t.Errorf("Single = %v, want 0.10", got)
	}
}

func TestIRRLoss(t *testing.T) {
	p := loadTest(
		[]Transaction{buy("2021-01-01", corpAsset, 1, "CORP", 100)},
		[]Price{pricePoint("2021-12-31", "CORP", 90, "USD")},
	)
	fp := p.Filtered(nil, "")

	got, err := IRR{}.Single(fp, MustDate("2021-01-01"), MustDate("2021-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if !within(got, -0.10, 1e-6) {
		t.Errorf("Single = %v, want -0.10", got)
	}
}

func TestComputeIRRDegenerate(t *testing.T) {
	if got := computeIRR(nil, MustDate("2020-01-01")); got != 0 {
		t.Errorf("no flows = %v, want 0", got)
	}
}

func TestTotalPnL(t *testing.T) {
	fp := growthFixture().Filtered(nil, "")

	single, err := TotalPnL{}.Single(fp, MustDate("2020-01-01"), MustDate("2020-04-01"))
	if err != nil {
		t.Fatal(err)
	}
	if !within(single, 500, 1e-9) {
		t.Errorf("Single = %v, want 500", single)
	}

	// the window before any activity gains nothing
	single, err = TotalPnL{}.Single(fp, MustDate("2019-01-01"), MustDate("2019-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if single != 0 {
		t.Errorf("pre-history Single = %v, want 0", single)
	}

	series, err := TotalPnL{}.Series(fp, MustDate("2020-01-01"), MustDate("2020-04-01"))
	if err != nil {
		t.Fatal(err)
	}
	checkSeries(t, series,
		[]string{"2020-01-01", "2020-02-01", "2020-03-01", "2020-04-01"},
		[]float64{0, 100, 200, 500})
}

func TestTotalPnLSingleMonth(t *testing.T) {
	fp := growthFixture().Filtered(nil, "")

	// February captures only the 100 -> 150 price move on the 2 held shares
	got, err := TotalPnL{}.Single(fp, MustDate("2020-02-01"), MustDate("2020-02-29"))
	if err != nil {
		t.Fatal(err)
	}
	if !within(got, 100, 1e-9) {
		t.Errorf("Single = %v, want 100", got)
	}
}

func TestMDD(t *testing.T) {
	fp := drawdownFixture().Filtered(nil, "")
	start, end := MustDate("2021-01-01"), MustDate("2021-05-01")

	series, err := MDD{}.Series(fp, start, end)
	if err != nil {
		t.Fatal(err)
	}
	checkSeries(t, series,
		[]string{"2021-01-01", "2021-02-01", "2021-03-01", "2021-04-01", "2021-05-01"},
		[]float64{0, 0, -0.2, 0, -0.5})

	single, err := MDD{}.Single(fp, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if !within(single, -0.5, 1e-9) {
		t.Errorf("Single = %v, want -0.5", single)
	}
}

func TestVolatility(t *testing.T) {
	fp := growthFixture().Filtered(nil, "")

	got, err := Volatility{}.Single(fp, MustDate("2020-01-01"), MustDate("2020-04-01"))
	if err != nil {
		t.Fatal(err)
	}
	// stdev of [0.5, 1/3, 0.5] annualized by the 91/3-day mean period
	if !within(got, 0.333790, 1e-4) {
		t.Errorf("Single = %v, want ~0.33379", got)
	}
}

func TestVolatilityInsufficientData(t *testing.T) {
	p := loadTest(
		[]Transaction{buy("2020-01-01", corpAsset, 1, "CORP", 100)},
		[]Price{pricePoint("2020-02-01", "CORP", 110, "USD")},
	)
	fp := p.Filtered(nil, "")

	got, err := Volatility{}.Single(fp, MustDate("2020-01-01"), MustDate("2020-02-01"))
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("single subperiod volatility = %v, want 0", got)
	}
}

func TestMetricIntervals(t *testing.T) {
	fp := growthFixture().Filtered(nil, "")

	intervals := []Interval{
		{Label: "2020-02", Start: MustDate("2020-02-01"), End: MustDate("2020-02-29")},
		{Label: "2020-03", Start: MustDate("2020-03-01"), End: MustDate("2020-03-31")},
	}
	values, err := MetricIntervals(TotalPnL{}, fp, intervals)
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 2 {
		t.Fatalf("got %d values, want 2", len(values))
	}
	if values[0].Label != "2020-02" || !within(values[0].Value, 100, 1e-9) {
		t.Errorf("interval 0 = %+v, want 2020-02 = 100", values[0])
	}
	if values[1].Label != "2020-03" || !within(values[1].Value, 100, 1e-9) {
		t.Errorf("interval 1 = %+v, want 2020-03 = 100", values[1])
	}
}

func TestRollingWindow(t *testing.T) {
	fp := drawdownFixture().Filtered(nil, "")

	series, err := RollingWindow(TotalPnL{}, fp, MustDate("2021-01-01"), MustDate("2021-05-01"), 30, 200)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) == 0 {
		t.Fatal("empty rolling series")
	}
	// windows are pushed forward so none starts before the first cash flow
	if series[0].Date.Before(MustDate("2021-01-31")) {
		t.Errorf("first window ends at %s, before the flow-adjusted start", series[0].Date)
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Date.After(series[i-1].Date) {
			t.Errorf("series dates not increasing at %d", i)
		}
	}
}

func TestSeriesTruncateFrom(t *testing.T) {
	s := Series{
		{Date: MustDate("2020-01-01"), Value: 1},
		{Date: MustDate("2020-02-01"), Value: 2},
		{Date: MustDate("2020-03-01"), Value: 3},
	}
	got, err := s.TruncateFrom(MustDate("2020-02-01"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Value != 2 {
		t.Errorf("TruncateFrom = %v", got)
	}
	if _, err := s.TruncateFrom(MustDate("2020-01-15")); err == nil {
		t.Error("TruncateFrom accepted an absent date")
	}
}
