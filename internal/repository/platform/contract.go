package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meterflow/meterflow/internal/domain/contract"
	ierr "github.com/meterflow/meterflow/internal/errors"
)

type createContractRequest struct {
	Name          string `json:"name"`
	CustomerID    string `json:"customerId"`
	ShouldProcess bool   `json:"shouldProcess"`
}

type contractActionRequest struct {
	Action string `json:"action"`
}

// CreateContract creates a contract and immediately marks it processed so
// the platform starts invoicing against it. A failed mark is logged but does
// not fail the creation; the contract exists and can be processed manually.
func (c *Client) CreateContract(ctx context.Context, customerID, name string) (*contract.Contract, error) {
	env, err := c.post(ctx, "/v3/contracts", createContractRequest{
		Name:          name,
		CustomerID:    customerID,
		ShouldProcess: false,
	})
	if err != nil {
		return nil, err
	}

	var created idPayload
	if err := json.Unmarshal(env.Payload, &created); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The contract creation payload could not be decoded").
			Mark(ierr.ErrHTTPClient)
	}
	if created.ID == "" {
		return nil, ierr.NewError("contract creation returned no id").
			WithHintf("Customer %s, contract name %q", customerID, name).
			Mark(ierr.ErrHTTPClient)
	}

	actionPath := fmt.Sprintf("/v3/contracts/%s/actions", created.ID)
	if _, err := c.post(ctx, actionPath, contractActionRequest{Action: "MARK_AS_PROCESSED"}); err != nil {
		c.logger.Warnf("contract %s created but could not be marked as processed: %v", created.ID, err)
	}

	c.logger.Infof("created contract %s (%q) for customer %s", created.ID, name, customerID)
	return &contract.Contract{
		ID:         created.ID,
		CustomerID: customerID,
		Name:       name,
	}, nil
}
