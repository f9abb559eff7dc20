package catalog

import "context"

// Repository exposes the two platform catalogs consulted per run.
type Repository interface {
	// ListEventTypes returns the event type catalog.
	ListEventTypes(ctx context.Context) ([]*EventType, error)

	// ListItems returns the integration item catalog.
	ListItems(ctx context.Context) ([]*IntegrationItem, error)
}
