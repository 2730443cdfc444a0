package folio

import (
	"fmt"
	"time"
)

// Interval is a labeled reporting window. Both bounds are inclusive.
type Interval struct {
	Label string
	Start Date
	End   Date
}

// clipEnd ends an interval early when the overall end date falls inside it.
func clipEnd(intervalEnd, end Date) Date {
	if end.Before(intervalEnd) {
		return end
	}
	return intervalEnd
}

// IntervalsHeatmap returns the yearly and monthly grid between the two
// dates: one interval per year plus all twelve months of each year. Only the
// interval containing the end date is shortened; later months of the final
// year keep their natural bounds.
func IntervalsHeatmap(start, end Date) []Interval {
	var intervals []Interval
	for year := start.Year(); year <= end.Year(); year++ {
		yearEnd := NewDate(year, time.December, 31)
		intervals = append(intervals, Interval{
			Label: fmt.Sprintf("%d", year),
			Start: NewDate(year, time.January, 1),
			End:   clipEnd(yearEnd, end),
		})
		for month := time.January; month <= time.December; month++ {
			monthStart := NewDate(year, month, 1)
			monthEnd := NewDate(year, month+1, 0)
			if !monthStart.After(end) {
				monthEnd = clipEnd(monthEnd, end)
			}
			intervals = append(intervals, Interval{
				Label: fmt.Sprintf("%d-%02d", year, month),
				Start: monthStart,
				End:   monthEnd,
			})
		}
	}
	return intervals
}

// IntervalsYearly returns one interval per calendar year between the two
// dates, the last one ending at the end date.
func IntervalsYearly(start, end Date) []Interval {
	var intervals []Interval
	for year := start.Year(); year <= end.Year(); year++ {
		intervals = append(intervals, Interval{
			Label: fmt.Sprintf("%d", year),
			Start: NewDate(year, time.January, 1),
			End:   clipEnd(NewDate(year, time.December, 31), end),
		})
	}
	return intervals
}

// IntervalsPeriods returns the named trailing windows ending at end. Windows
// reaching back before the start date are dropped; MAX always covers the
// whole range.
func IntervalsPeriods(start, end Date) []Interval {
	jan1 := func(yearsBack int) Date { return NewDate(end.Year()-yearsBack, time.January, 1) }
	candidates := []Interval{
		{Label: "3M", Start: end.AddMonths(-3), End: end},
		{Label: "6M", Start: end.AddMonths(-6), End: end},
		{Label: "YTD", Start: jan1(0), End: end},
		{Label: "1Y", Start: jan1(1), End: end},
		{Label: "2Y", Start: jan1(2), End: end},
		{Label: "3Y", Start: jan1(3), End: end},
		{Label: "4Y", Start: jan1(4), End: end},
		{Label: "5Y", Start: jan1(5), End: end},
		{Label: "10Y", Start: jan1(10), End: end},
		{Label: "15Y", Start: jan1(15), End: end},
	}
	var intervals []Interval
	for _, c := range candidates {
		if c.Start.Before(start) {
			continue
		}
		intervals = append(intervals, c)
	}
	intervals = append(intervals, Interval{Label: "MAX", Start: start, End: end})
	return intervals
}

// Month is one calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) String() string { return fmt.Sprintf("%d-%02d", m.Year, m.Month) }

// IterateMonths lists the calendar months touched by [start, end].
func IterateMonths(start, end Date) []Month {
	var months []Month
	year, month := start.Year(), start.Month()
	for year < end.Year() || (year == end.Year() && month <= end.Month()) {
		months = append(months, Month{Year: year, Month: month})
		if month == time.December {
			year, month = year+1, time.January
		} else {
			month++
		}
	}
	return months
}

// IterateYears lists the calendar years touched by [start, end].
func IterateYears(start, end Date) []int {
	var years []int
	for year := start.Year(); year <= end.Year(); year++ {
		years = append(years, year)
	}
	return years
}

// IntervalLabels returns the chart axis labels for a monthly or yearly
// bucketing of [start, end].
func IntervalLabels(interval string, start, end Date) ([]string, error) {
	switch interval {
	case "monthly":
		months := IterateMonths(start, end)
		labels := make([]string, len(months))
		for i, m := range months {
			labels[i] = m.String()
		}
		return labels, nil
	case "yearly":
		years := IterateYears(start, end)
		labels := make([]string, len(years))
		for i, y := range years {
			labels[i] = fmt.Sprintf("%d", y)
		}
		return labels, nil
	default:
		return nil, fmt.Errorf("invalid interval %q", interval)
	}
}
