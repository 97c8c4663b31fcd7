package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"invoicedesk/backend/internal/domain"
)

// Warmer refreshes the current quarter's stats on a cron schedule so the
// dashboard's first load after a quiet period is served from cache.
type Warmer struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewWarmer(svc *Service, schedule string, loc *time.Location, logger *zap.Logger) (*Warmer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))
	w := &Warmer{cron: c, logger: logger}

	if _, err := c.AddFunc(schedule, func() { w.warm(svc) }); err != nil {
		return nil, fmt.Errorf("parse warm schedule %q: %w", schedule, err)
	}
	return w, nil
}

func (w *Warmer) Start() {
	w.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish or ctx
// to end.
func (w *Warmer) Stop(ctx context.Context) {
	done := w.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (w *Warmer) warm(svc *Service) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundLoadTimeout)
	defer cancel()

	view, err := svc.RefetchStats(ctx, domain.StatsQuery{})
	if err != nil {
		w.logger.Warn("stats warmup failed", zap.Error(err))
		return
	}
	w.logger.Debug("stats warmed",
		zap.Int("year", view.Year),
		zap.Int("quarter", view.Quarter),
		zap.Int("invoices", view.Data.InvoiceCount),
	)
}
