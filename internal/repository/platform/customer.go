package platform

import (
	"context"

	"github.com/meterflow/meterflow/internal/domain/customer"
)

// ListCustomers reads the full customer registry. The endpoint paginates, so
// a first probe with limit=1 learns the registry size and the second call
// fetches everything in one page.
func (c *Client) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	probe, err := c.get(ctx, listPath("/v3/customers", 1))
	if err != nil {
		return nil, err
	}
	total, err := c.totalItems(probe)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	env, err := c.get(ctx, listPath("/v3/customers", total))
	if err != nil {
		return nil, err
	}
	var customers []*customer.Customer
	if err := c.listData(env, &customers); err != nil {
		return nil, err
	}

	c.logger.Debugf("listed %d customers", len(customers))
	return customers, nil
}
