package usecases

import (
	"context"
	"io"
	"time"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantCache holds resolved tenants keyed by normalized host.
type TenantCache interface {
	Get(ctx context.Context, host string) (entities.TenantContext, bool)
	Set(ctx context.Context, host string, tenant entities.TenantContext)
	InvalidateAll(ctx context.Context)
}

// EventPublisher emits domain events after a committed change.
type EventPublisher interface {
	Publish(ctx context.Context, evt entities.DomainEvent) error
}

// CheckoutProvider creates a hosted checkout session and returns its URL.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, order *entities.Order, product *entities.Product) (string, error)
}

// FileSigner issues short-lived URLs for stored files.
type FileSigner interface {
	SignedURL(ctx context.Context, ref string, now time.Time) (string, time.Time, error)
}

// FileStore persists uploaded product files.
type FileStore interface {
	Save(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader) (string, error)
}

// publish is best effort; the state change is already committed.
func publish(ctx context.Context, publisher EventPublisher, evt entities.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, evt); err != nil {
		logger.Warn(ctx, "Domain event not published", zap.String("type", evt.Type), zap.String("key", evt.Key), zap.Error(err))
	}
}
