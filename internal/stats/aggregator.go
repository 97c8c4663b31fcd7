package stats

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"invoicedesk/backend/internal/domain"
	"invoicedesk/backend/internal/quarter"
)

// Aggregator runs the invoice, purchase and quotation counters side by side
// and merges them into one StatsResult. It holds no state between calls.
type Aggregator struct {
	invoices   Counter
	purchases  Counter
	quotations Counter
	location   *time.Location
	now        func() time.Time
}

type Option func(*Aggregator)

// WithLocation sets the timezone quarter boundaries are drawn in.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAggregator(fetcher Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		invoices:   NewCounter(fetcher, domain.KindInvoice, true),
		purchases:  NewCounter(fetcher, domain.KindPurchase, true),
		quotations: NewCounter(fetcher, domain.KindQuotation, false),
		location:   time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Location() *time.Location {
	return a.location
}

// Outcome is a full aggregation: the merged result, the per-collection
// tallies it came from and the range they were counted over.
type Outcome struct {
	Range      quarter.Range
	Result     domain.StatsResult
	Invoices   Tally
	Purchases  Tally
	Quotations Tally
}

// Diagnostics returns the per-collection anomaly counts keyed by collection.
func (o Outcome) Diagnostics() map[string]domain.CollectionDiagnostics {
	out := make(map[string]domain.CollectionDiagnostics, 3)
	for collection, tally := range map[string]Tally{
		domain.KindInvoice:   o.Invoices,
		domain.KindPurchase:  o.Purchases,
		domain.KindQuotation: o.Quotations,
	} {
		out[collection] = domain.CollectionDiagnostics{
			Scanned:          tally.Diagnostics.Scanned,
			Matched:          tally.Diagnostics.Matched,
			SkippedTimestamp: tally.Diagnostics.SkippedTimestamp,
			MalformedTax:     tally.Diagnostics.MalformedTax,
		}
	}
	return out
}

func (a *Aggregator) GetStats(ctx context.Context, year int, q quarter.Quarter) (domain.StatsResult, error) {
	outcome, err := a.Aggregate(ctx, year, q)
	if err != nil {
		return domain.StatsResult{}, err
	}
	return outcome.Result, nil
}

// GetCurrentStats aggregates the quarter containing the current time in the
// aggregator's location.
func (a *Aggregator) GetCurrentStats(ctx context.Context) (domain.StatsResult, error) {
	year, q := a.CurrentQuarter()
	return a.GetStats(ctx, year, q)
}

func (a *Aggregator) CurrentQuarter() (int, quarter.Quarter) {
	return quarter.Current(a.now().In(a.location))
}

// Aggregate counts all three collections concurrently. If any fetch fails the
// whole aggregation fails; no partial result is returned.
func (a *Aggregator) Aggregate(ctx context.Context, year int, q quarter.Quarter) (Outcome, error) {
	if !q.Valid() {
		return Outcome{}, fmt.Errorf("invalid quarter %d", int(q))
	}
	r := quarter.RangeOf(year, q, a.location)

	var outcome Outcome
	outcome.Range = r
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tally, err := a.invoices.Count(gctx, r)
		outcome.Invoices = tally
		return err
	})
	g.Go(func() error {
		tally, err := a.purchases.Count(gctx, r)
		outcome.Purchases = tally
		return err
	})
	g.Go(func() error {
		tally, err := a.quotations.Count(gctx, r)
		outcome.Quotations = tally
		return err
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}

	received := Round2(outcome.Invoices.TaxSum)
	paid := Round2(outcome.Purchases.TaxSum)
	outcome.Result = domain.StatsResult{
		InvoiceCount:     outcome.Invoices.Count,
		PurchaseCount:    outcome.Purchases.Count,
		QuotationCount:   outcome.Quotations.Count,
		TotalTaxReceived: received,
		TotalTaxPaid:     paid,
		NetTax:           NetTax(received, paid),
	}
	return outcome, nil
}

// NetTax is round2(received - paid), computed in decimal so that already
// rounded inputs subtract exactly.
func NetTax(received, paid float64) float64 {
	return Round2(decimalOf(received).Sub(decimalOf(paid)))
}

// Report aggregates the quarter and splits it by month.
func (a *Aggregator) Report(ctx context.Context, year int, q quarter.Quarter) (domain.QuarterlyReport, Outcome, error) {
	outcome, err := a.Aggregate(ctx, year, q)
	if err != nil {
		return domain.QuarterlyReport{}, Outcome{}, err
	}

	months := outcome.Range.Months()
	report := domain.QuarterlyReport{
		Year:    year,
		Quarter: int(q),
		Start:   outcome.Range.Start,
		End:     outcome.Range.End,
		Totals:  outcome.Result,
		Months:  make([]domain.MonthBreakdown, 0, len(months)),
	}
	for i, first := range months {
		report.Months = append(report.Months, domain.MonthBreakdown{
			Month:       first.Format("2006-01"),
			Invoices:    outcome.Invoices.Months[i].Count,
			Quotations:  outcome.Quotations.Months[i].Count,
			Purchases:   outcome.Purchases.Months[i].Count,
			TaxReceived: Round2(outcome.Invoices.Months[i].TaxSum),
			TaxPaid:     Round2(outcome.Purchases.Months[i].TaxSum),
		})
	}
	return report, outcome, nil
}
