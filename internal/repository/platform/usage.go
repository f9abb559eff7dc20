package platform

import (
	"context"
	"encoding/json"

	"github.com/meterflow/meterflow/internal/domain/usage"
	"github.com/meterflow/meterflow/internal/types"
)

type usageEventRequest struct {
	CustomerID     string `json:"customerId"`
	EventTypeID    string `json:"eventTypeId,omitempty"`
	EventTypeName  string `json:"eventTypeName"`
	Datetime       string `json:"datetime"`
	Value          string `json:"value"`
	Differentiator string `json:"differentiator,omitempty"`
	Invoice        int    `json:"invoice"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type bulkUsageRequest struct {
	Events []usageEventRequest `json:"events"`
}

type bulkUsagePayload struct {
	Results []struct {
		Index int    `json:"index"`
		Error string `json:"error"`
	} `json:"results"`
}

// PushUsageEvents bulk-ingests usage events. Values are serialized as
// decimal strings so the platform never sees float rounding. Per-event
// rejections come back in the payload and are surfaced as failures.
func (c *Client) PushUsageEvents(ctx context.Context, events []*usage.Event) (*usage.PushResult, error) {
	req := bulkUsageRequest{Events: make([]usageEventRequest, 0, len(events))}
	for _, event := range events {
		req.Events = append(req.Events, usageEventRequest{
			CustomerID:     event.CustomerID,
			EventTypeID:    event.EventTypeID.String(),
			EventTypeName:  event.EventTypeName,
			Datetime:       types.FormatDate(event.Datetime),
			Value:          event.Value.String(),
			Differentiator: event.Differentiator,
			Invoice:        event.Invoice,
			IdempotencyKey: event.IdempotencyKey,
		})
	}

	env, err := c.post(ctx, "/v3/events/bulk", req)
	if err != nil {
		return nil, err
	}

	result := &usage.PushResult{Total: len(events)}
	var payload bulkUsagePayload
	if err := json.Unmarshal(env.Payload, &payload); err == nil {
		for _, r := range payload.Results {
			if r.Error != "" {
				result.Failures = append(result.Failures, usage.EventFailure{Index: r.Index, Err: r.Error})
			}
		}
	}
	result.FailureCount = len(result.Failures)
	result.SuccessCount = result.Total - result.FailureCount
	result.Success = result.FailureCount == 0

	c.logger.Infof("pushed usage events: %d succeeded, %d failed", result.SuccessCount, result.FailureCount)
	return result, nil
}
