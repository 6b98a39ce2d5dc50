// Package purger periodically removes links whose expiry has passed.
package purger

import (
	"context"
	"log/slog"
	"time"

	"github.com/pvlink/pvlink/internal/repository"
)

// Purger deletes expired links on a fixed interval.
type Purger struct {
	links    repository.LinkRepository
	interval time.Duration
	log      *slog.Logger
}

// New creates a purger sweeping every interval.
func New(links repository.LinkRepository, interval time.Duration, log *slog.Logger) *Purger {
	return &Purger{links: links, interval: interval, log: log}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (p *Purger) Run(ctx context.Context) {
	p.log.Info("starting link purger", slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("link purger stopped")
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep deletes every link that has expired as of now.
func (p *Purger) Sweep(ctx context.Context) {
	purged, err := p.links.PurgeExpired(ctx, time.Now())
	if err != nil {
		p.log.Error("purge sweep failed", slog.String("error", err.Error()))
		return
	}
	if purged > 0 {
		p.log.Info("purged expired links", slog.Int64("count", purged))
	}
}
