package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"invoicedesk/backend/internal/cache"
	"invoicedesk/backend/internal/domain"
	"invoicedesk/backend/internal/metrics"
	"invoicedesk/backend/internal/quarter"
	"invoicedesk/backend/internal/stats"
)

var ErrInvalidQuery = errors.New("invalid stats query")

const (
	defaultStaleAfter     = 10 * time.Minute
	defaultRetention      = 24 * time.Hour
	backgroundLoadTimeout = 30 * time.Second
)

// Service serves quarterly statistics to the dashboard. Results are cached per
// (year, quarter); a stale entry is served immediately while one background
// aggregation replaces it.
type Service struct {
	aggregator *stats.Aggregator
	cache      cache.StatsCache
	logger     *zap.Logger
	staleAfter time.Duration
	retention  time.Duration
	now        func() time.Time

	group      singleflight.Group
	background sync.WaitGroup
}

type Option func(*Service)

func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// WithRetention bounds how long an entry stays in the cache at all.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(aggregator *stats.Aggregator, statsCache cache.StatsCache, logger *zap.Logger, opts ...Option) *Service {
	if statsCache == nil {
		statsCache = cache.NoopStatsCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		aggregator: aggregator,
		cache:      statsCache,
		logger:     logger,
		staleAfter: defaultStaleAfter,
		retention:  defaultRetention,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retention < s.staleAfter {
		s.retention = s.staleAfter
	}
	return s
}

// Stats returns the view for query. A zero query means the current quarter.
// On a failed aggregation the returned view has IsError set and the error is
// returned as well.
func (s *Service) Stats(ctx context.Context, query domain.StatsQuery) (domain.StatsView, error) {
	year, q, err := s.resolve(query)
	if err != nil {
		return domain.StatsView{}, err
	}
	key := cache.StatsKey(year, int(q))

	entry, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		ok = false
	}
	if ok {
		if s.now().Sub(entry.FetchedAt) < s.staleAfter {
			metrics.IncStatsCache(metrics.CacheHit)
			return view(year, q, entry, false), nil
		}
		metrics.IncStatsCache(metrics.CacheStale)
		s.refreshInBackground(key, year, q)
		return view(year, q, entry, true), nil
	}

	metrics.IncStatsCache(metrics.CacheMiss)
	// The load is shared by every caller joined on key, so it must not end
	// when the first caller's request does.
	result := s.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundLoadTimeout)
		defer cancel()
		return s.load(loadCtx, key, year, q)
	})
	var shared singleflight.Result
	select {
	case shared = <-result:
	case <-ctx.Done():
		return errorView(year, q, ctx.Err()), ctx.Err()
	}
	loaded, err := shared.Val, shared.Err
	if err != nil {
		return errorView(year, q, err), err
	}
	return view(year, q, loaded.(*cache.StatsEntry), false), nil
}

// RefetchStats recomputes the quarter regardless of cache state and replaces
// the cached entry.
func (s *Service) RefetchStats(ctx context.Context, query domain.StatsQuery) (domain.StatsView, error) {
	year, q, err := s.resolve(query)
	if err != nil {
		return domain.StatsView{}, err
	}
	entry, err := s.load(ctx, cache.StatsKey(year, int(q)), year, q)
	if err != nil {
		return errorView(year, q, err), err
	}
	return view(year, q, entry, false), nil
}

// QuarterlyReport aggregates the quarter with a per-month breakdown. The
// totals also refresh the cached stats for that quarter.
func (s *Service) QuarterlyReport(ctx context.Context, query domain.StatsQuery) (domain.QuarterlyReport, error) {
	year, q, err := s.resolve(query)
	if err != nil {
		return domain.QuarterlyReport{}, err
	}

	started := time.Now()
	report, outcome, err := s.aggregator.Report(ctx, year, q)
	if err != nil {
		metrics.ObserveAggregation(metrics.ResultError, time.Since(started))
		return domain.QuarterlyReport{}, err
	}
	metrics.ObserveAggregation(metrics.ResultSuccess, time.Since(started))
	recordAnomalies(outcome)

	s.store(ctx, cache.StatsKey(year, int(q)), &cache.StatsEntry{
		Result:      outcome.Result,
		Diagnostics: outcome.Diagnostics(),
		FetchedAt:   s.now(),
	})
	return report, nil
}

// Wait blocks until background refreshes started so far have finished.
func (s *Service) Wait() {
	s.background.Wait()
}

func (s *Service) resolve(query domain.StatsQuery) (int, quarter.Quarter, error) {
	if query.Year == 0 && query.Quarter == 0 {
		year, q := s.aggregator.CurrentQuarter()
		return year, q, nil
	}
	q := quarter.Quarter(query.Quarter)
	if !q.Valid() {
		return 0, 0, fmt.Errorf("%w: quarter must be between 1 and 4", ErrInvalidQuery)
	}
	if query.Year < 1 || query.Year > 9999 {
		return 0, 0, fmt.Errorf("%w: year must be between 1 and 9999", ErrInvalidQuery)
	}
	return query.Year, q, nil
}

func (s *Service) refreshInBackground(key string, year int, q quarter.Quarter) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundLoadTimeout)
		defer cancel()
		if _, err, _ := s.group.Do(key, func() (any, error) {
			return s.load(ctx, key, year, q)
		}); err != nil {
			s.logger.Warn("background stats refresh failed",
				zap.Int("year", year),
				zap.Stringer("quarter", q),
				zap.Error(err),
			)
		}
	}()
}

func (s *Service) load(ctx context.Context, key string, year int, q quarter.Quarter) (*cache.StatsEntry, error) {
	started := time.Now()
	outcome, err := s.aggregator.Aggregate(ctx, year, q)
	if err != nil {
		metrics.ObserveAggregation(metrics.ResultError, time.Since(started))
		return nil, err
	}
	metrics.ObserveAggregation(metrics.ResultSuccess, time.Since(started))
	recordAnomalies(outcome)

	entry := &cache.StatsEntry{
		Result:      outcome.Result,
		Diagnostics: outcome.Diagnostics(),
		FetchedAt:   s.now(),
	}
	s.store(ctx, key, entry)
	return entry, nil
}

func (s *Service) store(ctx context.Context, key string, entry *cache.StatsEntry) {
	if err := s.cache.Set(ctx, key, entry, s.retention); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func recordAnomalies(outcome stats.Outcome) {
	for collection, diag := range outcome.Diagnostics() {
		metrics.AddAnomalousRecords(collection, "timestamp", diag.SkippedTimestamp)
		metrics.AddAnomalousRecords(collection, "tax", diag.MalformedTax)
	}
}

func view(year int, q quarter.Quarter, entry *cache.StatsEntry, stale bool) domain.StatsView {
	return domain.StatsView{
		Year:        year,
		Quarter:     int(q),
		Data:        entry.Result,
		Stale:       stale,
		FetchedAt:   entry.FetchedAt,
		Diagnostics: entry.Diagnostics,
	}
}

func errorView(year int, q quarter.Quarter, err error) domain.StatsView {
	return domain.StatsView{
		Year:    year,
		Quarter: int(q),
		IsError: true,
		Error:   err.Error(),
	}
}
