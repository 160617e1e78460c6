package events

import (
	"context"
	"log/slog"

	"github.com/retailops/ledger_service/internal/core/domain"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/middleware"
)

// LogPublisher writes domain events to the structured log. Used when no
// Redis endpoint is configured, e.g. local development and tests.
type LogPublisher struct{}

// NewLogPublisher creates a publisher that only logs events.
func NewLogPublisher() portssvc.EventPublisher {
	return &LogPublisher{}
}

var _ portssvc.EventPublisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) {
	middleware.GetLoggerFromCtx(ctx).Info("Domain event",
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.Type)),
		slog.String("tenant_id", event.TenantID),
		slog.String("entity_id", event.EntityID),
		slog.String("actor", event.Actor))
}
