package contract

import "context"

// Repository creates contracts in the billing platform. The pipeline calls
// CreateContract once per unique customer per run; idempotency across runs
// is not guaranteed by this layer.
type Repository interface {
	// CreateContract creates a contract and returns its platform ID.
	CreateContract(ctx context.Context, customerID, name string) (*Contract, error)
}
