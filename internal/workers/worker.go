// Package workers processes click events asynchronously so that click
// tracking never delays a redirect.
package workers

import (
	"context"
	"log/slog"

	"github.com/pvlink/pvlink/internal/geo"
	"github.com/pvlink/pvlink/internal/models"
	"github.com/pvlink/pvlink/internal/repository"
)

// StartClickWorkers launches a pool of goroutines draining the click event
// channel. Each event is resolved to a country and recorded in its own
// transaction. Workers exit when the channel is closed.
func StartClickWorkers(workerCount int, events <-chan models.ClickEvent, clicks repository.ClickRepository, countries geo.Resolver, log *slog.Logger) {
	log.Info("starting click workers", slog.Int("count", workerCount))
	for i := 0; i < workerCount; i++ {
		go clickWorker(events, clicks, countries, log)
	}
}

func clickWorker(events <-chan models.ClickEvent, clicks repository.ClickRepository, countries geo.Resolver, log *slog.Logger) {
	for event := range events {
		ctx := context.Background()

		country := geo.CountryUnknown
		if event.IPAddress != "" {
			country = countries.Resolve(ctx, event.IPAddress)
		}

		if err := clicks.RecordClick(ctx, event.ShortCode, country); err != nil {
			// Keep draining; one failed click must not stall the pool.
			log.Error("failed to record click",
				slog.String("short_code", event.ShortCode),
				slog.String("error", err.Error()))
		}
	}
}
