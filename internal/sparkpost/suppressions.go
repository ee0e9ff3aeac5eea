package sparkpost

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// GetSuppression looks up the suppression state of a recipient. An
// empty slice means the address is not suppressed.
func (c *Client) GetSuppression(ctx context.Context, recipient string) ([]SuppressionEntry, error) {
	var entries []SuppressionEntry
	err := c.requestInto(ctx, http.MethodGet, "suppression-list/"+url.PathEscape(recipient), nil, nil, &entries)
	if err != nil {
		// The API answers 404 with a structured error when the
		// recipient is not on the list; that is not a failure.
		if apiErr, ok := err.(*APIError); ok && len(apiErr.Entries) > 0 && apiErr.Entries[0].Message == "Recipient could not be found" {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// CreateSuppression adds or updates a recipient on the suppression
// list.
func (c *Client) CreateSuppression(ctx context.Context, recipient string, transactional bool, description string) error {
	suppressionType := "non_transactional"
	if transactional {
		suppressionType = "transactional"
	}
	body := map[string]any{
		"type":        suppressionType,
		"description": description,
	}
	_, err := c.request(ctx, http.MethodPut, "suppression-list/"+url.PathEscape(recipient), nil, body)
	return err
}

// DeleteSuppression removes a recipient from the suppression list.
func (c *Client) DeleteSuppression(ctx context.Context, recipient string) error {
	_, err := c.request(ctx, http.MethodDelete, "suppression-list/"+url.PathEscape(recipient), nil, nil)
	return err
}

// SearchSuppressions searches the suppression list. Defaults: 10
// results per page over the last 30 days; caller parameters override.
// Supported filters include to, domain, sources, types and description.
func (c *Client) SearchSuppressions(ctx context.Context, params url.Values) ([]SuppressionEntry, error) {
	query := url.Values{}
	query.Set("per_page", "10")
	query.Set("from", validDatetime(time.Now().AddDate(0, 0, -30)))
	for k, vs := range params {
		query[k] = vs
	}

	var entries []SuppressionEntry
	if err := c.requestInto(ctx, http.MethodGet, "suppression-list", query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SuppressionSummaryReport returns suppression counts broken down by
// source.
func (c *Client) SuppressionSummaryReport(ctx context.Context) (*SuppressionSummary, error) {
	var summary SuppressionSummary
	if err := c.requestInto(ctx, http.MethodGet, "suppression-list/summary", nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
