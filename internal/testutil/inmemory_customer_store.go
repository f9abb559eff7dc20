package testutil

import (
	"context"
	"sync"

	"github.com/meterflow/meterflow/internal/domain/customer"
)

// InMemoryCustomerStore is an in-memory implementation of the
// customer.Repository interface
type InMemoryCustomerStore struct {
	mu        sync.Mutex
	customers []*customer.Customer
}

// NewInMemoryCustomerStore creates a new instance of InMemoryCustomerStore
func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{}
}

// Add registers a customer in the store
func (r *InMemoryCustomerStore) Add(c *customer.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = append(r.customers, c)
}

// AddWithTenant registers a customer carrying the given tenant id in the
// named custom field
func (r *InMemoryCustomerStore) AddWithTenant(id, name, fieldName, tenantID string) {
	r.Add(&customer.Customer{
		ID:   id,
		Name: name,
		CustomFields: []customer.CustomField{
			{Name: fieldName, Value: tenantID},
		},
	})
}

// ListCustomers returns all registered customers
func (r *InMemoryCustomerStore) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*customer.Customer, len(r.customers))
	copy(out, r.customers)
	return out, nil
}

// Clear removes all customers from the store
func (r *InMemoryCustomerStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = nil
}
