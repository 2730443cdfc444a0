package folio

import (
	"testing"
	"time"
)

func TestIntervalsYearly(t *testing.T) {
	got := IntervalsYearly(MustDate("2020-05-12"), MustDate("2022-03-04"))
	want := []Interval{
		{"2020", MustDate("2020-01-01"), MustDate("2020-12-31")},
		{"2021", MustDate("2021-01-01"), MustDate("2021-12-31")},
		{"2022", MustDate("2022-01-01"), MustDate("2022-03-04")},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d intervals, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("interval %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestIntervalsHeatmap(t *testing.T) {
	got := IntervalsHeatmap(MustDate("2021-11-15"), MustDate("2022-02-10"))

	// two years, each with its twelve months
	if len(got) != 2*13 {
		t.Fatalf("got %d intervals, want 26", len(got))
	}
	byLabel := make(map[string]Interval, len(got))
	for _, iv := range got {
		byLabel[iv.Label] = iv
	}

	tests := []struct {
		label      string
		start, end string
	}{
		{"2021", "2021-01-01", "2021-12-31"},
		{"2021-12", "2021-12-01", "2021-12-31"},
		{"2022", "2022-01-01", "2022-02-10"},
		{"2022-01", "2022-01-01", "2022-01-31"},
		{"2022-02", "2022-02-01", "2022-02-10"}, // clipped to the end date
		{"2022-03", "2022-03-01", "2022-03-31"}, // future months keep natural bounds
	}
	for _, tt := range tests {
		iv, ok := byLabel[tt.label]
		if !ok {
			t.Errorf("missing interval %q", tt.label)
			continue
		}
		if iv.Start != MustDate(tt.start) || iv.End != MustDate(tt.end) {
			t.Errorf("%s = %s..%s, want %s..%s", tt.label, iv.Start, iv.End, tt.start, tt.end)
		}
	}
}

func TestIntervalsPeriods(t *testing.T) {
	got := IntervalsPeriods(MustDate("2018-06-01"), MustDate("2022-03-04"))

	var labels []string
	for _, iv := range got {
		labels = append(labels, iv.Label)
	}
	// 4Y and beyond reach back before the first activity and are dropped
	want := []string{"3M", "6M", "YTD", "1Y", "2Y", "3Y", "MAX"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("labels = %v, want %v", labels, want)
		}
	}

	byLabel := make(map[string]Interval, len(got))
	for _, iv := range got {
		byLabel[iv.Label] = iv
	}
	if iv := byLabel["3M"]; iv.Start != MustDate("2021-12-04") || iv.End != MustDate("2022-03-04") {
		t.Errorf("3M = %s..%s", iv.Start, iv.End)
	}
	if iv := byLabel["YTD"]; iv.Start != MustDate("2022-01-01") {
		t.Errorf("YTD start = %s", iv.Start)
	}
	if iv := byLabel["1Y"]; iv.Start != MustDate("2021-01-01") {
		t.Errorf("1Y start = %s", iv.Start)
	}
	if iv := byLabel["MAX"]; iv.Start != MustDate("2018-06-01") || iv.End != MustDate("2022-03-04") {
		t.Errorf("MAX = %s..%s", iv.Start, iv.End)
	}
}

func TestIterateMonths(t *testing.T) {
	months := IterateMonths(MustDate("2021-11-20"), MustDate("2022-02-03"))
	want := []Month{
		{2021, time.November},
		{2021, time.December},
		{2022, time.January},
		{2022, time.February},
	}
	if len(months) != len(want) {
		t.Fatalf("got %v, want %v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Errorf("month %d = %v, want %v", i, months[i], want[i])
		}
	}
}

func TestIntervalLabels(t *testing.T) {
	labels, err := IntervalLabels("monthly", MustDate("2021-12-15"), MustDate("2022-02-03"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2021-12", "2022-01", "2022-02"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("labels = %v, want %v", labels, want)
		}
	}

	labels, err = IntervalLabels("yearly", MustDate("2021-12-15"), MustDate("2022-02-03"))
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 2 || labels[0] != "2021" || labels[1] != "2022" {
		t.Errorf("yearly labels = %v", labels)
	}

	if _, err := IntervalLabels("weekly", Date{}, Date{}); err == nil {
		t.Error("IntervalLabels accepted an invalid interval")
	}
}
