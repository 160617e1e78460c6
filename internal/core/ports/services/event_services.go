package services

import (
	"context"

	"github.com/retailops/ledger_service/internal/core/domain"
)

// EventPublisher delivers domain events to downstream consumers after a
// successful commit. Implementations must be safe to call concurrently;
// delivery guarantees beyond best effort belong to the external messaging
// layer.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
