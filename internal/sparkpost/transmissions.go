package sparkpost

import (
	"context"
	"net/http"
	"net/url"
)

// CreateTransmission sends a transmission. The parameter bag uses the
// SDK-style keys of transmissionMapping (campaign, replyTo, trackOpens,
// ...); they are remapped to the nested transmissions schema before the
// request goes out.
func (c *Client) CreateTransmission(ctx context.Context, data Params) (*TransmissionResult, error) {
	body := mapParams(data, transmissionMapping)

	var result TransmissionResult
	if err := c.requestInto(ctx, http.MethodPost, "transmissions", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTransmission fetches the detail of a transmission by id.
func (c *Client) GetTransmission(ctx context.Context, id string) (map[string]any, error) {
	var result map[string]any
	if err := c.requestInto(ctx, http.MethodGet, "transmissions/"+id, nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTransmission deletes a scheduled transmission by id.
func (c *Client) DeleteTransmission(ctx context.Context, id string) error {
	_, err := c.request(ctx, http.MethodDelete, "transmissions/"+id, nil, nil)
	return err
}

// ListTransmissions lists transmissions, optionally filtered by
// campaign and/or template id.
func (c *Client) ListTransmissions(ctx context.Context, campaignID, templateID string) ([]map[string]any, error) {
	query := url.Values{}
	if campaignID != "" {
		query.Set("campaign_id", campaignID)
	}
	if templateID != "" {
		query.Set("template_id", templateID)
	}

	var results []map[string]any
	if err := c.requestInto(ctx, http.MethodGet, "transmissions", query, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}
