package quarter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quarter is one of the four three-month periods of a calendar year.
type Quarter int

const (
	Q1 Quarter = iota + 1
	Q2
	Q3
	Q4
)

func (q Quarter) Valid() bool {
	return q >= Q1 && q <= Q4
}

func (q Quarter) String() string {
	return fmt.Sprintf("Q%d", int(q))
}

// FirstMonth returns the first calendar month of the quarter.
func (q Quarter) FirstMonth() time.Month {
	return time.Month((int(q)-1)*3 + 1)
}

// Parse accepts "1".."4" and "Q1".."Q4" in any case.
func Parse(raw string) (Quarter, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "Q")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid quarter %q", raw)
	}
	q := Quarter(n)
	if !q.Valid() {
		return 0, fmt.Errorf("quarter must be between 1 and 4, got %d", n)
	}
	return q, nil
}

// Range is the half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// MonthIndex reports which month of the range t falls in (0, 1 or 2), or -1
// when t lies outside the range.
func (r Range) MonthIndex(t time.Time) int {
	if !r.Contains(t) {
		return -1
	}
	local := t.In(r.Start.Location())
	idx := (local.Year()-r.Start.Year())*12 + int(local.Month()) - int(r.Start.Month())
	if idx < 0 || idx > 2 {
		return -1
	}
	return idx
}

// Months returns the first instant of each month in the range.
func (r Range) Months() []time.Time {
	months := make([]time.Time, 0, 3)
	for m := r.Start; m.Before(r.End); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}

// RangeOf returns the civil-time interval covering quarter q of year in loc.
// Q4 ends on the first instant of January of the following year. A nil loc
// means UTC.
func RangeOf(year int, q Quarter, loc *time.Location) Range {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, q.FirstMonth(), 1, 0, 0, 0, 0, loc)
	var end time.Time
	if q < Q4 {
		end = time.Date(year, time.Month(int(q)*3+1), 1, 0, 0, 0, 0, loc)
	} else {
		end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc)
	}
	return Range{Start: start, End: end}
}

// Current returns the year and quarter containing now, in now's location.
func Current(now time.Time) (int, Quarter) {
	return now.Year(), Quarter((int(now.Month())-1)/3 + 1)
}
