package testutil

import (
	"context"
	"sync"

	"github.com/meterflow/meterflow/internal/domain/catalog"
)

// InMemoryCatalogStore is an in-memory implementation of the
// catalog.Repository interface
type InMemoryCatalogStore struct {
	mu         sync.Mutex
	eventTypes []*catalog.EventType
	items      []*catalog.IntegrationItem
}

// NewInMemoryCatalogStore creates a new instance of InMemoryCatalogStore
func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{}
}

// AddEventType registers an event type in the store
func (r *InMemoryCatalogStore) AddEventType(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventTypes = append(r.eventTypes, &catalog.EventType{ID: id, Name: name})
}

// AddItem registers an integration item in the store
func (r *InMemoryCatalogStore) AddItem(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, &catalog.IntegrationItem{ID: id, Name: name})
}

// ListEventTypes returns all registered event types
func (r *InMemoryCatalogStore) ListEventTypes(ctx context.Context) ([]*catalog.EventType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*catalog.EventType, len(r.eventTypes))
	copy(out, r.eventTypes)
	return out, nil
}

// ListItems returns all registered integration items
func (r *InMemoryCatalogStore) ListItems(ctx context.Context) ([]*catalog.IntegrationItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*catalog.IntegrationItem, len(r.items))
	copy(out, r.items)
	return out, nil
}

// Clear removes all catalog entries from the store
func (r *InMemoryCatalogStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventTypes = nil
	r.items = nil
}
