package services

import (
	"context"
	"encoding/json"

	"github.com/shashiranjanraj/inventory/pkg/event"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

// Broadcaster pushes a frame to every live feed subscriber.
type Broadcaster interface {
	Broadcast(data []byte) bool
}

// RegisterListeners counts every catalog event and, when feed is non-nil,
// forwards it to the live product feed.
func RegisterListeners(d *event.Dispatcher, feed Broadcaster) {
	for _, name := range []string{EventProductCreated, EventProductUpdated, EventProductDeleted, EventProductFavorited} {
		d.Listen(name, func(ctx context.Context, payload any) {
			metrics.CatalogEvents.WithLabelValues(name).Inc()
			if feed == nil {
				return
			}
			data, err := json.Marshal(payload)
			if err != nil {
				logger.WithCtx(ctx).Error("catalog: encode event", "event", name, "error", err)
				return
			}
			feed.Broadcast(data)
		})
	}
}
