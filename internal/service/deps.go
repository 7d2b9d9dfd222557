package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mbenitez/tienda/internal/models"
)

// Mailer is the outbound notification boundary. Failures are logged by
// callers, never propagated to the request.
type Mailer interface {
	Send(to, subject, body string) error
	SendPurchaseReceipt(to, firstName string, ticket *models.Ticket) error
}

// EventPublisher pushes domain events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event map[string]any) error
}

// ProductIndexer keeps the search index in sync with the catalog.
type ProductIndexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	RemoveProduct(ctx context.Context, id uuid.UUID) error
}
