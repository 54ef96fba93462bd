package provenance

import (
	"context"
	"time"
)

// Ticker is the subset of *time.Ticker the sweeper needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// NewSystemTicker wraps time.NewTicker.
func NewSystemTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

// RunSweeper clears the whole cache on every tick until ctx is done.
func (c *Cache) RunSweeper(ctx context.Context) {
	ticker := c.newTicker(c.sweepInterval)
	defer ticker.Stop()

	c.logger.Debug("Cache sweeper started", "interval", c.sweepInterval.String())

	for {
		select {
		case <-ticker.C():
			c.clear("sweep")
		case <-ctx.Done():
			c.logger.Debug("Cache sweeper stopped")
			return
		}
	}
}
