package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultTickInterval is the wall-clock length of one auction tick
const DefaultTickInterval = time.Second

// AuctionClock owns the auction timers: the world only counts ticks, the
// clock decides when one elapses.
type AuctionClock struct {
	svc      GameService
	interval time.Duration
	onTick   func(TickResult)
	logger   *zap.Logger
}

// NewAuctionClock creates a clock; onTick sees every session it advanced
func NewAuctionClock(svc GameService, interval time.Duration, onTick func(TickResult), logger *zap.Logger) *AuctionClock {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuctionClock{svc: svc, interval: interval, onTick: onTick, logger: logger}
}

// Run ticks until ctx is cancelled
func (c *AuctionClock) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("auction clock started", zap.Duration("interval", c.interval))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("auction clock stopped")
			return
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Tick advances every open auction once and returns how many moved
func (c *AuctionClock) Tick(ctx context.Context) int {
	results, err := c.svc.TickAuctions(ctx)
	if err != nil && ctx.Err() == nil {
		c.logger.Warn("auction tick failed", zap.Error(err))
	}
	if c.onTick != nil {
		for _, r := range results {
			c.onTick(r)
		}
	}
	return len(results)
}
