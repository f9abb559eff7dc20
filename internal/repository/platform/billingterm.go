package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/types"
)

type obligationRequest struct {
	ServiceStartDate string          `json:"serviceStartDate"`
	ServiceEndDate   string          `json:"serviceEndDate"`
	BillingSchedule  billingSchedule `json:"billingSchedule"`
}

type billingSchedule struct {
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	StartDate           string        `json:"startDate"`
	Duration            int           `json:"duration"`
	InvoiceDateStrategy string        `json:"invoiceDateStrategy"`
	IsRecurring         bool          `json:"isRecurring"`
	Interval            string        `json:"interval"`
	IntervalFrequency   int           `json:"intervalFrequency"`
	NetPaymentTerms     string        `json:"netPaymentTerms"`
	Quantity            int           `json:"quantity"`
	BillingType         string        `json:"billingType"`
	PricingType         string        `json:"pricingType"`
	EventTypeID         string        `json:"eventTypeId"`
	InvoiceType         string        `json:"invoiceType"`
	Pricing             []pricingTier `json:"pricing"`
	ItemID              string        `json:"itemId,omitempty"`
}

type pricingTier struct {
	Tier        int     `json:"tier"`
	Amount      float64 `json:"amount"`
	AmountType  string  `json:"amountType"`
	TierMinimum int     `json:"tierMinimum"`
}

// PushBillingTerms creates one obligation per term under its contract.
// Per-term failures accumulate; the batch never aborts part way.
func (c *Client) PushBillingTerms(ctx context.Context, terms []*billingterm.BillingTerm) (*billingterm.PushResult, error) {
	result := &billingterm.PushResult{Success: true}

	for i, term := range terms {
		if term.ContractID == "" {
			result.Failures = append(result.Failures, billingterm.RowFailure{
				Index: i,
				Err:   "missing contract id",
			})
			continue
		}

		amount, err := term.AmountDecimal()
		if err != nil {
			c.logger.Warnf("term %q for tenant %s has non-numeric amount %q, pushing 0", term.Name, term.TenantID, term.Amount)
		}

		req := obligationRequest{
			ServiceStartDate: types.FormatDate(term.RevenueStartDate),
			ServiceEndDate:   types.FormatDate(term.RevenueEndDate),
			BillingSchedule: billingSchedule{
				Name:                term.Name,
				Description:         term.Note,
				StartDate:           types.FormatDate(term.InvoiceDate),
				Duration:            term.Duration,
				InvoiceDateStrategy: string(term.Strategy),
				IsRecurring:         term.Recurring,
				Interval:            string(term.IntervalUnit),
				IntervalFrequency:   term.IntervalFrequency,
				NetPaymentTerms:     term.NetPaymentTerms,
				Quantity:            term.Quantity,
				BillingType:         "UNIT",
				PricingType:         "SIMPLE",
				EventTypeID:         term.EventTypeID.String(),
				InvoiceType:         string(term.InvoiceType),
				Pricing: []pricingTier{{
					Tier:        1,
					Amount:      amount.InexactFloat64(),
					AmountType:  "PER_ITEM",
					TierMinimum: 0,
				}},
				ItemID: term.IntegrationItemID.String(),
			},
		}

		path := fmt.Sprintf("/v3/contracts/%s/obligations", term.ContractID)
		env, err := c.post(ctx, path, req)
		if err != nil {
			result.Failures = append(result.Failures, billingterm.RowFailure{Index: i, Err: err.Error()})
			continue
		}

		var created idPayload
		if err := json.Unmarshal(env.Payload, &created); err == nil && created.ID != "" {
			result.CreatedIDs = append(result.CreatedIDs, created.ID)
		}
	}

	result.Success = len(result.Failures) == 0
	c.logger.Infof("pushed billing terms: %d created, %d failed", len(result.CreatedIDs), len(result.Failures))
	return result, nil
}
