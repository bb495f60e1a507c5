package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/miubank/go-miubank/internal/ledger"
)

// PriceAdvancer is the market engine surface the scheduler drives.
type PriceAdvancer interface {
	AdvancePrices(ctx context.Context) ([]ledger.Asset, error)
}

// Scheduler invokes the market engine's price advance on a fixed interval.
// A failed tick is logged and skipped; ticks are never queued or caught up.
type Scheduler struct {
	engine   PriceAdvancer
	interval time.Duration
	log      *zap.Logger
}

func New(engine PriceAdvancer, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{engine: engine, interval: interval, log: log}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("market update scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("market update scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	assets, err := s.engine.AdvancePrices(ctx)
	if err != nil {
		s.log.Error("asset price update failed", zap.Error(err))
		return
	}
	s.log.Info("asset prices updated", zap.Int("assets", len(assets)))
}
