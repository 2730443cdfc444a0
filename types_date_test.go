package folio

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2025-7-1", NewDate(2025, time.July, 1), false},
		{"2020-02-29", NewDate(2020, time.February, 29), false},
		{"invalid-date", Date{}, true},
		{"2025-13-01", Date{}, true},
		{"", Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.err {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.err)
			}
			if !tt.err && got != tt.expected {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2020, time.February, 28)

	if got := d.Add(1); got != NewDate(2020, time.February, 29) {
		t.Errorf("Add(1) = %v, want 2020-02-29", got)
	}
	if got := d.Add(2); got != NewDate(2020, time.March, 1) {
		t.Errorf("Add(2) = %v, want 2020-03-01", got)
	}
	if got := d.Add(-28); got != NewDate(2020, time.January, 31) {
		t.Errorf("Add(-28) = %v, want 2020-01-31", got)
	}
	if got := d.AddMonths(12); got != NewDate(2021, time.February, 28) {
		t.Errorf("AddMonths(12) = %v, want 2021-02-28", got)
	}
	if got := NewDate(2020, time.March, 1).DaysSince(NewDate(2020, time.January, 1)); got != 60 {
		t.Errorf("DaysSince = %d, want 60", got)
	}
}

func TestAddMonthsClamping(t *testing.T) {
	tests := []struct {
		date   string
		months int
		want   string
	}{
		{"2022-03-31", -1, "2022-02-28"},
		{"2020-03-31", -1, "2020-02-29"}, // leap year
		{"2022-01-31", 1, "2022-02-28"},
		{"2022-05-15", -3, "2022-02-15"},
		{"2022-01-15", -1, "2021-12-15"},
	}
	for _, tt := range tests {
		if got := MustDate(tt.date).AddMonths(tt.months); got != MustDate(tt.want) {
			t.Errorf("%s.AddMonths(%d) = %s, want %s", tt.date, tt.months, got, tt.want)
		}
	}
}

func TestDateCompare(t *testing.T) {
	early, late := MustDate("2020-01-01"), MustDate("2020-01-02")

	if !early.Before(late) || late.Before(early) {
		t.Error("Before is inconsistent")
	}
	if !late.After(early) || early.After(late) {
		t.Error("After is inconsistent")
	}
	if early.Compare(late) != -1 || late.Compare(early) != 1 || early.Compare(early) != 0 {
		t.Error("Compare is inconsistent")
	}
	if maxDate(early, late) != late {
		t.Error("maxDate picked the earlier date")
	}
	if !(Date{}).IsZero() || early.IsZero() {
		t.Error("IsZero is inconsistent")
	}
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(MustDate("2020-07-01"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2020-07-01"` {
		t.Errorf("Marshal = %s, want %q", data, "2020-07-01")
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2021-12-31"`), &d); err != nil {
		t.Fatal(err)
	}
	if d != NewDate(2021, time.December, 31) {
		t.Errorf("Unmarshal = %v, want 2021-12-31", d)
	}
	if err := json.Unmarshal([]byte(`"not a date"`), &d); err == nil {
		t.Error("Unmarshal accepted an invalid date")
	}
}
