// Package stats aggregates quarterly document counts and tax totals.
//
// Each Counter scans one whole collection, resolves every record's createdAt
// and keeps the records inside the quarter. Records whose createdAt cannot be
// resolved are skipped; tax values that are not numbers count as zero. Both
// anomalies are reported in Diagnostics rather than failing the count.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"invoicedesk/backend/internal/quarter"
	"invoicedesk/backend/internal/store"
	"invoicedesk/backend/internal/timestamp"
)

const fieldTaxTotal = "taxTotal"

// Fetcher reads a whole collection. store.DocumentStore satisfies it.
type Fetcher interface {
	FetchAll(ctx context.Context, collection string) ([]store.Record, error)
}

type Diagnostics struct {
	Scanned          int
	Matched          int
	SkippedTimestamp int
	MalformedTax     int
}

// Tally is the outcome of one Counter over one quarter. Months holds the
// same figures split by month of the quarter.
type Tally struct {
	Count       int
	TaxSum      decimal.Decimal
	Months      [3]MonthTally
	Diagnostics Diagnostics
}

type MonthTally struct {
	Count  int
	TaxSum decimal.Decimal
}

type Counter struct {
	fetcher    Fetcher
	collection string
	tracksTax  bool
}

func NewCounter(fetcher Fetcher, collection string, tracksTax bool) Counter {
	return Counter{fetcher: fetcher, collection: collection, tracksTax: tracksTax}
}

func (c Counter) Collection() string {
	return c.collection
}

// Count fetches the collection and tallies the records created inside r.
// A fetch failure is returned as is; nothing is retried.
func (c Counter) Count(ctx context.Context, r quarter.Range) (Tally, error) {
	records, err := c.fetcher.FetchAll(ctx, c.collection)
	if err != nil {
		return Tally{}, fmt.Errorf("fetch %s: %w", c.collection, err)
	}

	tally := Tally{TaxSum: decimal.Zero}
	for i := range tally.Months {
		tally.Months[i].TaxSum = decimal.Zero
	}
	for _, record := range records {
		tally.Diagnostics.Scanned++

		createdAt, ok := timestamp.NormalizeRaw(record[store.FieldCreatedAt])
		if !ok {
			tally.Diagnostics.SkippedTimestamp++
			continue
		}
		month := r.MonthIndex(createdAt)
		if month < 0 {
			continue
		}

		tally.Diagnostics.Matched++
		tally.Count++
		tally.Months[month].Count++
		if !c.tracksTax {
			continue
		}
		tax, malformed := CoerceTax(record[fieldTaxTotal])
		if malformed {
			tally.Diagnostics.MalformedTax++
		}
		tally.TaxSum = tally.TaxSum.Add(tax)
		tally.Months[month].TaxSum = tally.Months[month].TaxSum.Add(tax)
	}
	return tally, nil
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// CoerceTax turns a stored taxTotal into an amount. Numbers are used as they
// are; strings contribute their leading decimal number ("12.50 SAR" is 12.5).
// Missing values are zero. Anything else is zero and reported as malformed.
func CoerceTax(raw any) (amount decimal.Decimal, malformed bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false
	case int:
		return decimal.NewFromInt(int64(v)), false
	case int64:
		return decimal.NewFromInt(v), false
	case json.Number:
		return fromText(v.String())
	case string:
		return fromText(v)
	}
	if f, ok := timestamp.Number(raw); ok {
		return fromFloat(f)
	}
	return decimal.Zero, true
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, true
	}
	return decimal.NewFromFloat(f), false
}

func fromText(s string) (decimal.Decimal, bool) {
	prefix := numericPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return decimal.Zero, true
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		// Exponent overflow.
		return decimal.Zero, true
	}
	return fromFloat(f)
}

func decimalOf(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
