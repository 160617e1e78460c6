package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/retailops/ledger_service/internal/core/domain"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/middleware"
)

// channelPrefix namespaces every event channel so consumers can pattern
// subscribe on "ledger.*".
const channelPrefix = "ledger.events."

// RedisPublisher fans domain events out over Redis pub/sub. Publishing is
// best effort: a failed publish is logged, never propagated, because events
// are emitted after the owning transaction already committed.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher on top of an existing Redis client.
func NewRedisPublisher(client *redis.Client) portssvc.EventPublisher {
	return &RedisPublisher{client: client}
}

var _ portssvc.EventPublisher = (*RedisPublisher)(nil)

func (p *RedisPublisher) Publish(ctx context.Context, event domain.Event) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal domain event",
			slog.String("event_type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	channel := channelPrefix + event.TenantID
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		logger.Error("Failed to publish domain event",
			slog.String("event_type", string(event.Type)),
			slog.String("channel", channel),
			slog.String("error", err.Error()))
		return
	}

	logger.Debug("Published domain event",
		slog.String("event_type", string(event.Type)),
		slog.String("entity_id", event.EntityID),
		slog.String("channel", channel))
}
