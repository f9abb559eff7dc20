package platform

import (
	"context"

	"github.com/meterflow/meterflow/internal/domain/catalog"
)

// ListEventTypes reads the event type catalog.
func (c *Client) ListEventTypes(ctx context.Context) ([]*catalog.EventType, error) {
	env, err := c.get(ctx, listPath("/v3/events/types", catalogPageLimit))
	if err != nil {
		return nil, err
	}
	var eventTypes []*catalog.EventType
	if err := c.listData(env, &eventTypes); err != nil {
		return nil, err
	}
	c.logger.Debugf("listed %d event types", len(eventTypes))
	return eventTypes, nil
}

// ListItems reads the integration item catalog.
func (c *Client) ListItems(ctx context.Context) ([]*catalog.IntegrationItem, error) {
	env, err := c.get(ctx, listPath("/v3/items", catalogPageLimit))
	if err != nil {
		return nil, err
	}
	var items []*catalog.IntegrationItem
	if err := c.listData(env, &items); err != nil {
		return nil, err
	}
	c.logger.Debugf("listed %d integration items", len(items))
	return items, nil
}
