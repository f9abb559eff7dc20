package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/meterflow/meterflow/internal/domain/contract"
)

// InMemoryContractStore is an in-memory implementation of the
// contract.Repository interface
type InMemoryContractStore struct {
	mu        sync.Mutex
	contracts []*contract.Contract

	// FailFor makes CreateContract fail for the listed customer IDs, for
	// exercising the degrade path.
	FailFor map[string]bool
}

// NewInMemoryContractStore creates a new instance of InMemoryContractStore
func NewInMemoryContractStore() *InMemoryContractStore {
	return &InMemoryContractStore{FailFor: make(map[string]bool)}
}

// CreateContract creates a contract with a deterministic sequential ID
func (r *InMemoryContractStore) CreateContract(ctx context.Context, customerID, name string) (*contract.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailFor[customerID] {
		return nil, fmt.Errorf("contract creation rejected for customer %s", customerID)
	}

	c := &contract.Contract{
		ID:         fmt.Sprintf("contract-%d", len(r.contracts)+1),
		CustomerID: customerID,
		Name:       name,
	}
	r.contracts = append(r.contracts, c)
	return c, nil
}

// Contracts returns all created contracts
func (r *InMemoryContractStore) Contracts() []*contract.Contract {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*contract.Contract, len(r.contracts))
	copy(out, r.contracts)
	return out
}

// Clear removes all contracts from the store
func (r *InMemoryContractStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = nil
	r.FailFor = make(map[string]bool)
}
