// Package platform implements the billing platform API collaborators over
// its {success, payload} response envelope.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meterflow/meterflow/internal/config"
	ierr "github.com/meterflow/meterflow/internal/errors"
	"github.com/meterflow/meterflow/internal/httpclient"
	"github.com/meterflow/meterflow/internal/logger"
)

// catalogPageLimit bounds the single-page catalog reads. The catalogs are
// small; the customer registry instead uses a two-phase totalItems read.
const catalogPageLimit = 1000

// Client talks to the billing platform REST API. It implements the
// customer, catalog and contract repositories plus the billing term and
// usage event push collaborators.
type Client struct {
	http    httpclient.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

func NewClient(http httpclient.Client, cfg config.PlatformConfig, log *logger.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  log,
	}
}

// envelope is the platform's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload"`
}

// listPayload is the payload of paginated list endpoints.
type listPayload struct {
	Data       json.RawMessage `json:"data"`
	TotalItems int             `json:"totalItems"`
}

// idPayload is the payload of create endpoints.
type idPayload struct {
	ID string `json:"id"`
}

func (c *Client) get(ctx context.Context, path string) (*envelope, error) {
	return c.send(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + path,
	})
}

func (c *Client) post(ctx context.Context, path string, body any) (*envelope, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The request payload could not be serialized").
			Mark(ierr.ErrSystem)
	}
	return c.send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + path,
		Body:   encoded,
	})
}

func (c *Client) send(ctx context.Context, req *httpclient.Request) (*envelope, error) {
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers["Authorization"] = c.apiKey

	resp, err := c.http.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("The platform response for %s was not valid JSON", req.URL).
			Mark(ierr.ErrHTTPClient)
	}
	if !env.Success {
		return nil, ierr.NewErrorf("platform call %s reported success=false", req.URL).
			Mark(ierr.ErrHTTPClient)
	}
	return &env, nil
}

// listData decodes the data array of a paginated list payload into out.
func (c *Client) listData(env *envelope, out any) error {
	var page listPayload
	if err := json.Unmarshal(env.Payload, &page); err != nil {
		return ierr.WithError(err).
			WithHint("The platform list payload could not be decoded").
			Mark(ierr.ErrHTTPClient)
	}
	if page.Data == nil {
		return nil
	}
	if err := json.Unmarshal(page.Data, out); err != nil {
		return ierr.WithError(err).
			WithHint("The platform list data could not be decoded").
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}

// totalItems reads the item count of a paginated list payload.
func (c *Client) totalItems(env *envelope) (int, error) {
	var page listPayload
	if err := json.Unmarshal(env.Payload, &page); err != nil {
		return 0, ierr.WithError(err).
			WithHint("The platform list payload could not be decoded").
			Mark(ierr.ErrHTTPClient)
	}
	return page.TotalItems, nil
}

func listPath(resource string, limit int) string {
	return fmt.Sprintf("%s?limit=%d", resource, limit)
}
