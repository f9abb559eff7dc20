package customer

import "context"

// Repository is the customer registry collaborator. The registry is read
// once per billing run; the resulting identity map is a snapshot with no
// invalidation contract beyond the run.
type Repository interface {
	// ListCustomers returns every customer visible to the API key.
	ListCustomers(ctx context.Context) ([]*Customer, error)
}
