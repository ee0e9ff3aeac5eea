package sparkpost

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// defaultWebhookEvents are the events a simple webhook subscribes to
// when the caller does not pick its own set.
var defaultWebhookEvents = []string{
	EventDelivery, EventInjection, EventOpen, EventClick,
	EventBounce, EventSpamComplaint, EventListUnsub, EventLinkUnsub,
}

// CreateWebhook registers a webhook. Events begin to be pushed to the
// target URL as soon as the call succeeds.
func (c *Client) CreateWebhook(ctx context.Context, webhook Webhook) (*Webhook, error) {
	var created Webhook
	if err := c.requestInto(ctx, http.MethodPost, "webhooks", nil, webhook, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateSimpleWebhook registers a webhook for the most commonly used
// events, optionally protected by basic auth. A nil credentials value
// with auth enabled falls back to sparkpost/sparkpost.
func (c *Client) CreateSimpleWebhook(ctx context.Context, name, target string, events []string, auth bool, credentials *WebhookBasicAuth) (*Webhook, error) {
	if events == nil {
		events = defaultWebhookEvents
	}
	webhook := Webhook{
		Name:   name,
		Target: target,
		Events: events,
	}
	if auth {
		if credentials == nil {
			credentials = &WebhookBasicAuth{Username: "sparkpost", Password: "sparkpost"}
		}
		webhook.AuthType = "basic"
		webhook.AuthCredentials = credentials
	}
	return c.CreateWebhook(ctx, webhook)
}

// ListWebhooks lists all webhooks. The timezone, when non-empty, is
// used to render the last success/failure timestamps.
func (c *Client) ListWebhooks(ctx context.Context, timezone string) ([]Webhook, error) {
	query := url.Values{}
	if timezone != "" {
		query.Set("timezone", timezone)
	}

	var webhooks []Webhook
	if err := c.requestInto(ctx, http.MethodGet, "webhooks", query, nil, &webhooks); err != nil {
		return nil, err
	}
	return webhooks, nil
}

// GetWebhook fetches a webhook by id.
func (c *Client) GetWebhook(ctx context.Context, id string) (*Webhook, error) {
	var webhook Webhook
	if err := c.requestInto(ctx, http.MethodGet, "webhooks/"+id, nil, nil, &webhook); err != nil {
		return nil, err
	}
	return &webhook, nil
}

// UpdateWebhook updates a webhook definition.
func (c *Client) UpdateWebhook(ctx context.Context, id string, params Params) error {
	_, err := c.request(ctx, http.MethodPut, "webhooks/"+id, nil, params)
	return err
}

// DeleteWebhook removes a webhook.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	_, err := c.request(ctx, http.MethodDelete, "webhooks/"+id, nil, nil)
	return err
}

// ValidateWebhook asks the provider to POST a test batch to the
// webhook's target. The body is the fixed probe the API requires.
func (c *Client) ValidateWebhook(ctx context.Context, id string) (map[string]any, error) {
	var result map[string]any
	body := map[string]any{"msys": map[string]any{}}
	if err := c.requestInto(ctx, http.MethodPost, "webhooks/"+id+"/validate", nil, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// WebhookBatchStatus retrieves the delivery status of recent batches
// generated for a webhook, including previously failed batches.
func (c *Client) WebhookBatchStatus(ctx context.Context, id string, limit int) ([]BatchStatus, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var batches []BatchStatus
	if err := c.requestInto(ctx, http.MethodGet, "webhooks/"+id+"/batch-status", query, nil, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// SampleEvents returns example event payloads for the given
// comma-delimited event names (all events when empty).
func (c *Client) SampleEvents(ctx context.Context, events string) ([]map[string]any, error) {
	query := url.Values{}
	if events != "" {
		query.Set("events", events)
	}

	var samples []map[string]any
	if err := c.requestInto(ctx, http.MethodGet, "webhooks/events/samples/", query, nil, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}
