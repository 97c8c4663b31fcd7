package documents

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"invoicedesk/backend/internal/store"
)

var ErrInvalidFilter = errors.New("invalid filter")

const (
	FilterAll   = "all"
	FilterDate  = "date"
	FilterMonth = "month"
)

// Filter selects documents by their business date. The zero Filter selects
// everything.
type Filter struct {
	Type  string
	Date  time.Time
	Year  int
	Month time.Month
}

// ParseFilter reads the list query parameters. Day and month boundaries are
// drawn in loc.
func ParseFilter(kind, date, year, month string, loc *time.Location) (Filter, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", FilterAll:
		return Filter{Type: FilterAll}, nil
	case FilterDate:
		day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidFilter)
		}
		return Filter{Type: FilterDate, Date: day}, nil
	case FilterMonth:
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil || y < 1 || y > 9999 {
			return Filter{}, fmt.Errorf("%w: year is required", ErrInvalidFilter)
		}
		m, err := strconv.Atoi(strings.TrimSpace(month))
		if err != nil || m < 1 || m > 12 {
			return Filter{}, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidFilter)
		}
		return Filter{Type: FilterMonth, Year: y, Month: time.Month(m)}, nil
	}
	return Filter{}, fmt.Errorf("%w: unknown filter %q", ErrInvalidFilter, kind)
}

// window returns the half-open interval the filter covers on the date field.
func (f Filter) window(loc *time.Location) (start, end time.Time, ok bool) {
	switch f.Type {
	case FilterDate:
		day := f.Date.In(loc)
		start = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 0, 1), true
	case FilterMonth:
		start = time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), true
	}
	return time.Time{}, time.Time{}, false
}

type dated struct {
	record store.Record
	at     time.Time
	known  bool
}

// apply filters and orders records. Unfiltered lists are newest-created
// first; filtered lists are latest business date first. Records without a
// usable instant sort last.
func (f Filter) apply(records []store.Record, loc *time.Location) []store.Record {
	start, end, windowed := f.window(loc)
	field := store.FieldCreatedAt
	if windowed {
		field = "date"
	}

	selected := make([]dated, 0, len(records))
	for _, record := range records {
		at, ok := recordTime(record, field)
		if windowed && (!ok || at.Before(start) || !at.Before(end)) {
			continue
		}
		selected = append(selected, dated{record: record, at: at, known: ok})
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].known != selected[j].known {
			return selected[i].known
		}
		return selected[i].at.After(selected[j].at)
	})

	out := make([]store.Record, len(selected))
	for i, d := range selected {
		out[i] = d.record
	}
	return out
}
