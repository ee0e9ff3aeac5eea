package sparkpost

import (
	"context"
	"net/http"
)

// CreateRelayWebhook links an inbound domain to a consumer target URL.
// The match domain must name an existing inbound domain.
func (c *Client) CreateRelayWebhook(ctx context.Context, webhook RelayWebhook) (*RelayWebhook, error) {
	var created RelayWebhook
	if err := c.requestInto(ctx, http.MethodPost, "relay-webhooks", nil, webhook, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListRelayWebhooks lists every relay webhook.
func (c *Client) ListRelayWebhooks(ctx context.Context) ([]RelayWebhook, error) {
	var webhooks []RelayWebhook
	if err := c.requestInto(ctx, http.MethodGet, "relay-webhooks", nil, nil, &webhooks); err != nil {
		return nil, err
	}
	return webhooks, nil
}

// GetRelayWebhook fetches a relay webhook by id.
func (c *Client) GetRelayWebhook(ctx context.Context, id string) (*RelayWebhook, error) {
	var webhook RelayWebhook
	if err := c.requestInto(ctx, http.MethodGet, "relay-webhooks/"+id, nil, nil, &webhook); err != nil {
		return nil, err
	}
	return &webhook, nil
}

// UpdateRelayWebhook updates a relay webhook definition.
func (c *Client) UpdateRelayWebhook(ctx context.Context, id string, params Params) error {
	_, err := c.request(ctx, http.MethodPut, "relay-webhooks/"+id, nil, params)
	return err
}

// DeleteRelayWebhook removes a relay webhook.
func (c *Client) DeleteRelayWebhook(ctx context.Context, id string) error {
	_, err := c.request(ctx, http.MethodDelete, "relay-webhooks/"+id, nil, nil)
	return err
}
